// Package yahoo collects the gold spot series and the USD/CNY rate from
// the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/minjia/goldgap/internal/collector"
	"github.com/minjia/goldgap/internal/snapshot"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

	goldSymbol = "GC=F"     // COMEX gold front-month futures
	fxSymbol   = "USDCNY=X" // USD to CNY exchange rate
)

// Yahoo implements the Yahoo Finance market collector
type Yahoo struct {
	client  *http.Client
	baseURL string
	config  collector.Config
}

// New creates a new Yahoo collector
func New() *Yahoo {
	return &Yahoo{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: defaultBaseURL,
	}
}

func (y *Yahoo) Name() string {
	return "yahoo"
}

func (y *Yahoo) Init(cfg collector.Config) error {
	y.config = cfg
	if cfg.BaseURL != "" {
		y.baseURL = cfg.BaseURL
	}
	return nil
}

// FetchGold fetches daily gold closes and maps the last three to
// T-2 / T-1 / now. Fewer than three closes leaves the early points
// absent, which the normalizer rejects as missing gold data.
func (y *Yahoo) FetchGold(ctx context.Context) (snapshot.RawGold, error) {
	closes, times, err := y.fetchDailyCloses(ctx, goldSymbol, "7d")
	if err != nil {
		return snapshot.RawGold{}, err
	}

	gold := snapshot.RawGold{Currency: "USD"}
	n := len(closes)
	if n >= 1 {
		gold.Now = &closes[n-1]
		gold.NowTime = times[n-1]
	}
	if n >= 2 {
		gold.TMinus1 = &closes[n-2]
		gold.TMinus1Time = times[n-2]
	}
	if n >= 3 {
		gold.TMinus2 = &closes[n-3]
		gold.TMinus2Time = times[n-3]
	}
	return gold, nil
}

// FetchFx fetches the latest USD/CNY close.
func (y *Yahoo) FetchFx(ctx context.Context) (snapshot.RawFx, error) {
	closes, _, err := y.fetchDailyCloses(ctx, fxSymbol, "1d")
	if err != nil {
		return snapshot.RawFx{}, err
	}
	if len(closes) == 0 {
		return snapshot.RawFx{}, nil
	}
	return snapshot.RawFx{UsdCny: &closes[len(closes)-1]}, nil
}

// fetchDailyCloses returns non-null daily closes with their timestamps,
// oldest first.
func (y *Yahoo) fetchDailyCloses(ctx context.Context, symbol, window string) ([]float64, []time.Time, error) {
	url := fmt.Sprintf("%s/%s?interval=1d&range=%s", y.baseURL, symbol, window)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status for %s: %d", symbol, resp.StatusCode)
	}

	var result chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, nil, fmt.Errorf("decoding response: %w", err)
	}

	if result.Chart.Error != nil {
		return nil, nil, fmt.Errorf("yahoo error: %s", result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 {
		return nil, nil, fmt.Errorf("no data for symbol: %s", symbol)
	}

	r := result.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, nil, fmt.Errorf("no quote data for symbol: %s", symbol)
	}

	raw := r.Indicators.Quote[0].Close
	closes := make([]float64, 0, len(raw))
	times := make([]time.Time, 0, len(raw))
	for i, c := range raw {
		if c == nil {
			continue // market holidays report null closes
		}
		closes = append(closes, *c)
		if i < len(r.Timestamp) {
			times = append(times, time.Unix(r.Timestamp[i], 0).UTC())
		} else {
			times = append(times, time.Time{})
		}
	}
	return closes, times, nil
}

// Response types
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Close []*float64 `json:"close"`
		} `json:"quote"`
	} `json:"indicators"`
}
