package fmp

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/wonny/screener/internal/contracts"
)

const (
	universeLimit  = 2000
	quoteChunkSize = 100
)

// compile-time check
var _ contracts.DataSource = (*Client)(nil)

// Symbols lists actively trading symbols on the configured exchange
func (c *Client) Symbols(ctx context.Context) ([]contracts.Stock, error) {
	params := url.Values{}
	params.Set("exchange", c.exchange)
	params.Set("isActivelyTrading", "true")
	params.Set("limit", strconv.Itoa(universeLimit))

	raw, err := c.Fetch(ctx, "stock-screener", params)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Symbol      string `json:"symbol"`
		CompanyName string `json:"companyName"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, decodeError("stock-screener", "", err)
	}

	stocks := make([]contracts.Stock, 0, len(rows))
	for _, r := range rows {
		if r.Symbol == "" {
			continue
		}
		name := r.CompanyName
		if name == "" {
			name = "N/A"
		}
		stocks = append(stocks, contracts.Stock{Symbol: r.Symbol, Name: name})
	}

	c.logger.WithField("count", len(stocks)).Info("Universe fetched")
	return stocks, nil
}

// KeyMetrics fetches key-metrics/{symbol}
func (c *Client) KeyMetrics(ctx context.Context, symbol string, limit int) (contracts.StatementSeries, error) {
	return c.series(ctx, "key-metrics", symbol, limitParams(limit))
}

// IncomeStatement fetches income-statement/{symbol} for the given period (annual|quarter)
func (c *Client) IncomeStatement(ctx context.Context, symbol, period string, limit int) (contracts.StatementSeries, error) {
	params := limitParams(limit)
	if period != "" {
		params.Set("period", period)
	}
	return c.series(ctx, "income-statement", symbol, params)
}

// BalanceSheet fetches balance-sheet-statement/{symbol}
func (c *Client) BalanceSheet(ctx context.Context, symbol string, limit int) (contracts.StatementSeries, error) {
	return c.series(ctx, "balance-sheet-statement", symbol, limitParams(limit))
}

// CashFlow fetches cash-flow-statement/{symbol}
func (c *Client) CashFlow(ctx context.Context, symbol string, limit int) (contracts.StatementSeries, error) {
	return c.series(ctx, "cash-flow-statement", symbol, limitParams(limit))
}

// Ratios fetches ratios/{symbol}
func (c *Client) Ratios(ctx context.Context, symbol string, limit int) (contracts.StatementSeries, error) {
	return c.series(ctx, "ratios", symbol, limitParams(limit))
}

// HistoricalPrices fetches historical-price-full/{symbol}, most recent day first
func (c *Client) HistoricalPrices(ctx context.Context, symbol string, days int) (contracts.StatementSeries, error) {
	params := url.Values{}
	params.Set("timeseries", strconv.Itoa(days))

	raw, err := c.Fetch(ctx, "historical-price-full/"+symbol, params)
	if err != nil {
		return nil, err
	}

	// unknown symbols come back as {}
	var body struct {
		Historical contracts.StatementSeries `json:"historical"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, decodeError("historical-price-full", symbol, err)
	}
	return body.Historical, nil
}

// Quotes fetches live quotes keyed by symbol, chunking long symbol lists
func (c *Client) Quotes(ctx context.Context, symbols []string) (map[string]contracts.Quote, error) {
	quotes := make(map[string]contracts.Quote, len(symbols))

	for start := 0; start < len(symbols); start += quoteChunkSize {
		end := min(start+quoteChunkSize, len(symbols))

		raw, err := c.Fetch(ctx, "quote/"+strings.Join(symbols[start:end], ","), nil)
		if err != nil {
			return nil, err
		}

		var rows []contracts.Quote
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, decodeError("quote", "", err)
		}
		for _, q := range rows {
			quotes[q.Symbol] = q
		}
	}

	return quotes, nil
}

func (c *Client) series(ctx context.Context, endpoint, symbol string, params url.Values) (contracts.StatementSeries, error) {
	raw, err := c.Fetch(ctx, endpoint+"/"+symbol, params)
	if err != nil {
		return nil, err
	}

	var s contracts.StatementSeries
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, decodeError(endpoint, symbol, err)
	}
	return s, nil
}

func limitParams(limit int) url.Values {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return params
}

func decodeError(op, symbol string, err error) error {
	return &contracts.DataSourceError{Op: op, Symbol: symbol, Message: "unexpected response shape", Err: err}
}
