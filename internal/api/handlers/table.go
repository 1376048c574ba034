package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

const noDataMessage = "No stocks were found for this screener in the processed batch. Try again later or raise the batch size."

var tableTemplate = template.Must(template.New("table").Parse(`<div class="screener-wrapper" data-screener="{{.Screener}}">
{{- if not .Rows}}
<p class="no-data-message">{{.NoData}}</p>
{{- else}}
<table class="screener-table">
<thead><tr><th>Rank</th><th>Company</th><th>Symbol</th><th>Price</th><th>Change</th>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr data-symbol="{{.Symbol}}"><td>{{.Rank}}</td><td>{{.Name}}</td><td>{{.Symbol}}</td><td class="price">{{.Price}}</td><td class="change {{.ChangeClass}}">{{.Change}}</td>{{range .Metrics}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
{{- end}}
<p class="generated-at">{{.Title}} · {{.GeneratedAt}}</p>
</div>
`))

// tableView is the template model for one screener table
type tableView struct {
	Screener    contracts.ScreenerID
	Title       string
	GeneratedAt string
	NoData      string
	Columns     []string
	Rows        []tableRow
}

type tableRow struct {
	Rank        int
	Name        string
	Symbol      string
	Price       string
	Change      string
	ChangeClass string
	Metrics     []string
}

// TableHandler renders the latest snapshot as an HTML table fragment
// ⭐ SSOT: 결과 테이블 렌더링은 이 핸들러에서만
type TableHandler struct {
	store  contracts.SnapshotStore
	logger *logger.Logger
}

// NewTableHandler creates a new table handler
func NewTableHandler(store contracts.SnapshotStore, log *logger.Logger) *TableHandler {
	return &TableHandler{
		store:  store,
		logger: log,
	}
}

// Table renders the latest snapshot
// GET /screeners/{id}/table
func (h *TableHandler) Table(w http.ResponseWriter, r *http.Request) {
	id, err := screenerID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.store.Latest(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).WithField("screener", string(id)).Error("Failed to load snapshot")
		http.Error(w, "Failed to retrieve snapshot", http.StatusInternalServerError)
		return
	}
	if report == nil {
		// 아직 실행 전: 빈 테이블
		report = &contracts.Report{Screener: id, Outcome: contracts.OutcomeNoResults}
	}

	var buf bytes.Buffer
	if err := RenderTable(&buf, report); err != nil {
		h.logger.WithError(err).Error("Failed to render table")
		http.Error(w, "Failed to render table", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// RenderTable writes the HTML table for a report
func RenderTable(w io.Writer, report *contracts.Report) error {
	return tableTemplate.Execute(w, buildTableView(report))
}

func buildTableView(report *contracts.Report) tableView {
	view := tableView{
		Screener: report.Screener,
		Title:    report.Screener.Title(),
		NoData:   noDataMessage,
	}
	if !report.GeneratedAt.IsZero() {
		view.GeneratedAt = report.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")
	}

	add := func(stock contracts.Stock, metrics ...string) {
		row := tableRow{
			Rank:    len(view.Rows) + 1,
			Name:    stock.Name,
			Symbol:  stock.Symbol,
			Price:   "--",
			Change:  "--",
			Metrics: metrics,
		}
		if q, ok := report.Quotes[stock.Symbol]; ok {
			row.Price = formatNumber(q.Price)
			row.Change = fmt.Sprintf("%s (%s%%)", formatNumber(q.Change), formatNumber(q.ChangesPercentage))
			row.ChangeClass = changeClass(q.Change)
		}
		view.Rows = append(view.Rows, row)
	}

	switch report.Screener {
	case contracts.MagicFormula:
		view.Columns = []string{"Earnings Yield", "Return on Capital"}
		for _, s := range report.MagicFormula {
			add(s.Stock, formatPercent(s.EarningsYield), formatPercent(s.ReturnOnCapital))
		}
	case contracts.Piotroski:
		view.Columns = []string{"F-Score"}
		for _, s := range report.Piotroski {
			add(s.Stock, fmt.Sprintf("%d / 9", s.FScore))
		}
	case contracts.ValueScan:
		view.Columns = []string{"P/E Ratio", "P/B Ratio", "Current Ratio"}
		for _, s := range report.Value {
			add(s.Stock, formatNumber(s.PERatio), formatNumber(s.PBRatio), formatNumber(s.CurrentRatio))
		}
	case contracts.Canslim:
		view.Columns = []string{"Criteria Met"}
		for _, s := range report.Canslim {
			add(s.Stock, s.Criteria)
		}
	}

	return view
}

func changeClass(change float64) string {
	switch {
	case change > 0:
		return "positive-change"
	case change < 0:
		return "negative-change"
	default:
		return ""
	}
}

func formatPercent(ratio float64) string {
	return formatNumber(ratio*100) + "%"
}

// formatNumber renders two decimals with thousands separators
func formatNumber(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}

	return sign + b.String() + "." + frac
}
