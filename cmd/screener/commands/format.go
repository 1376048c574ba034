package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/wonny/screener/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleRule = "═══════════════════════════════════════════════════════════"
	singleRule = "───────────────────────────────────────────────────────────"
)

// PrintReportHeader prints the run summary of a report
func PrintReportHeader(w io.Writer, r *contracts.Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleRule)
	fmt.Fprintf(w, "  %s\n", r.Screener.Title())
	fmt.Fprintln(w, singleRule)
	PrintKeyValue(w, "Run ID", r.RunID, 9)
	PrintKeyValue(w, "Generated", r.GeneratedAt.Format("2006-01-02 15:04:05"), 9)
	PrintKeyValue(w, "Outcome", string(r.Outcome), 9)
	PrintKeyValue(w, "Symbols", fmt.Sprintf("%d requested, %d kept", r.Stats.Requested, r.Stats.Kept), 9)
	if len(r.Stats.Dropped) > 0 {
		PrintKeyValue(w, "Dropped", formatDropped(r.Stats.Dropped), 9)
	}
	PrintKeyValue(w, "Duration", r.Stats.Duration.Round(time.Millisecond).String(), 9)
	fmt.Fprintln(w, singleRule)
}

// PrintReport prints the header and up to limit result rows (0 = all)
func PrintReport(w io.Writer, r *contracts.Report, limit int) {
	PrintReportHeader(w, r)

	if r.Len() == 0 {
		PrintWarning(w, "No stocks passed this screener in the processed batch")
		return
	}

	columns, rows := reportTable(r)
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	widths := columnWidths(columns, rows)
	PrintTableHeader(w, columns, widths)
	for _, row := range rows {
		PrintTableRow(w, row, widths)
	}
	fmt.Fprintln(w)
}

// reportTable flattens a report into display rows
func reportTable(r *contracts.Report) ([]string, [][]string) {
	var columns []string
	var rows [][]string

	price := func(symbol string) string {
		if q, ok := r.Quotes[symbol]; ok {
			return fmt.Sprintf("%.2f", q.Price)
		}
		return "--"
	}

	switch r.Screener {
	case contracts.MagicFormula:
		columns = []string{"#", "Symbol", "Company", "Price", "EY", "ROC", "Rank"}
		for i, s := range r.MagicFormula {
			rows = append(rows, []string{
				fmt.Sprint(i + 1), s.Symbol, s.Name, price(s.Symbol),
				fmt.Sprintf("%.2f%%", s.EarningsYield*100),
				fmt.Sprintf("%.2f%%", s.ReturnOnCapital*100),
				fmt.Sprint(s.CombinedRank),
			})
		}
	case contracts.Piotroski:
		columns = []string{"#", "Symbol", "Company", "Price", "F-Score"}
		for i, s := range r.Piotroski {
			rows = append(rows, []string{
				fmt.Sprint(i + 1), s.Symbol, s.Name, price(s.Symbol),
				fmt.Sprintf("%d / 9", s.FScore),
			})
		}
	case contracts.ValueScan:
		columns = []string{"#", "Symbol", "Company", "Price", "P/E", "P/B", "Current"}
		for i, s := range r.Value {
			rows = append(rows, []string{
				fmt.Sprint(i + 1), s.Symbol, s.Name, price(s.Symbol),
				fmt.Sprintf("%.2f", s.PERatio),
				fmt.Sprintf("%.2f", s.PBRatio),
				fmt.Sprintf("%.2f", s.CurrentRatio),
			})
		}
	case contracts.Canslim:
		columns = []string{"#", "Symbol", "Company", "Price", "Criteria"}
		for i, s := range r.Canslim {
			rows = append(rows, []string{
				fmt.Sprint(i + 1), s.Symbol, s.Name, price(s.Symbol), s.Criteria,
			})
		}
	}

	return columns, rows
}

func columnWidths(columns []string, rows [][]string) []int {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len([]rune(c))
	}
	for _, row := range rows {
		for i, v := range row {
			if n := len([]rune(v)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

func formatDropped(dropped map[string]int) string {
	reasons := make([]string, 0, len(dropped))
	for reason := range dropped {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)

	parts := make([]string, len(reasons))
	for i, reason := range reasons {
		parts[i] = fmt.Sprintf("%s=%d", reason, dropped[reason])
	}
	return strings.Join(parts, ", ")
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "⚠️  %s\n", message)
	fmt.Fprintln(w)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintError prints an error message
func PrintError(w io.Writer, message string) {
	fmt.Fprintf(w, "❌ %s\n", message)
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		fmt.Fprintf(w, "%-*s", widths[i], val)
		if i < len(values)-1 {
			fmt.Fprint(w, "  ")
		}
	}
	fmt.Fprintln(w)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}
