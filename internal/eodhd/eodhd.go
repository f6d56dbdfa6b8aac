package eodhd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const baseURL = "https://eodhd.com/api"

// Client fetches end-of-day price data from the EODHD API.
// It wraps an HTTP client and carries the account's API token; both stock
// tickers and FOREX pairs go through the same EOD endpoint.
type Client struct {
	httpClient *http.Client
	token      string
}

// NewClient creates an EODHD client for the given API token.
func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      token,
	}
}

// QueryEOD fetches daily closing prices for a ticker within a date range,
// bounds included. Tickers use EODHD's exchange-suffixed format, e.g.
// "AAPL.US" or "VWRL.LSE".
func (c *Client) QueryEOD(ticker string, startDate, endDate time.Time) ([]PricePoint, error) {
	addr := fmt.Sprintf(
		"%s/eod/%s?fmt=json&api_token=%s&from=%s&to=%s",
		baseURL,
		url.PathEscape(ticker),
		url.QueryEscape(c.token),
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"),
	)

	records, err := c.queryEODHD(addr)
	if err != nil {
		return nil, fmt.Errorf("eodhd query for %s failed: %w", ticker, err)
	}

	points := make([]PricePoint, 0, len(records))
	for _, r := range records {
		date, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return nil, fmt.Errorf("eodhd returned malformed date %q for %s: %w", r.Date, ticker, err)
		}
		points = append(points, PricePoint{Date: date.UTC(), Close: r.AdjustedClose})
	}
	return points, nil
}

// QueryForex fetches daily exchange rates for a currency pair. EODHD
// exposes forex under the same EOD endpoint with a synthetic ticker,
// e.g. "EURUSD.FOREX".
func (c *Client) QueryForex(fromCurrency, toCurrency string, startDate, endDate time.Time) ([]PricePoint, error) {
	return c.QueryEOD(fromCurrency+toCurrency+".FOREX", startDate, endDate)
}

func (c *Client) queryEODHD(addr string) ([]EODRecord, error) {
	req, err := http.NewRequest("GET", addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("eodhd returned status %s", resp.Status)
	}

	var records []EODRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}
