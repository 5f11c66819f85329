package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Yahoo fetches the regular market price from the Yahoo Finance chart API.
type Yahoo struct {
	Client  *http.Client
	Symbol  string
	BaseURL string
}

// NewYahoo creates a Yahoo quote source for one symbol. proxyURL may be empty.
func NewYahoo(symbol, proxyURL string) *Yahoo {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &Yahoo{
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
		Symbol:  symbol,
		BaseURL: "https://query1.finance.yahoo.com",
	}
}

func (y *Yahoo) Name() string { return "yahoo" }

// yahooChart is the subset of the chart API response we read.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Quote returns the current regular market price for the configured symbol.
func (y *Yahoo) Quote(ctx context.Context) (float64, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1m&range=1d",
		y.BaseURL, url.PathEscape(y.Symbol))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := y.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return 0, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return 0, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return 0, fmt.Errorf("yahoo: no data returned")
	}

	price := chart.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("yahoo: missing regular market price for %s", y.Symbol)
	}
	return price, nil
}
