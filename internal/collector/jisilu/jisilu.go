// Package jisilu collects QDII fund quotes from the jisilu.cn list API.
package jisilu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/minjia/goldgap/internal/collector"
	"github.com/minjia/goldgap/internal/snapshot"
)

const defaultBaseURL = "https://www.jisilu.cn/data/qdii/qdii_list/"

// goldKeywords filter the QDII list down to gold-tracking funds.
var goldKeywords = []string{"黄金", "金", "Gold", "GOLD"}

// Jisilu implements the jisilu.cn QDII fund collector
type Jisilu struct {
	client  *http.Client
	baseURL string
	config  collector.Config
}

// New creates a new jisilu collector
func New() *Jisilu {
	return &Jisilu{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: defaultBaseURL,
	}
}

func (j *Jisilu) Name() string {
	return "jisilu"
}

func (j *Jisilu) Init(cfg collector.Config) error {
	j.config = cfg
	if cfg.BaseURL != "" {
		j.baseURL = cfg.BaseURL
	}
	return nil
}

// FetchFunds fetches the gold QDII fund list. Returned records are raw:
// absent numeric cells map to nil, and no validation happens here.
func (j *Jisilu) FetchFunds(ctx context.Context) ([]snapshot.RawFund, error) {
	params := url.Values{}
	params.Set("is_search", "Y")
	params.Set("fund_nm", "黄金")
	params.Set("rp", "50")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Referer", "https://www.jisilu.cn/data/qdii/")

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching fund list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result listResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	funds := make([]snapshot.RawFund, 0, len(result.Rows))
	for _, row := range result.Rows {
		c := row.Cell
		if !isGoldFund(c.FundName) {
			continue
		}
		funds = append(funds, snapshot.RawFund{
			Code:      c.FundCode,
			Name:      c.FundName,
			NavT2:     parseCell(c.UnitNav),
			NavT1:     parseCell(c.EstNav),
			PremiumT1: percentToRate(parseCell(c.PremiumRt)),
			LivePrice: parseCell(c.Price),
		})
	}

	return funds, nil
}

func isGoldFund(name string) bool {
	for _, kw := range goldKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// parseCell parses a jisilu numeric cell. The API returns numbers as
// strings; empty or dash cells mean absent.
func parseCell(s string) *float64 {
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	if s == "" || s == "-" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// percentToRate converts jisilu's percent premium (0.54 = 0.54%) to a
// decimal rate at the collector boundary.
func percentToRate(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := *v / 100
	return &r
}

// Response types
type listResponse struct {
	Rows []listRow `json:"rows"`
}

type listRow struct {
	ID   string   `json:"id"`
	Cell listCell `json:"cell"`
}

type listCell struct {
	FundCode  string `json:"fund_cd"`
	FundName  string `json:"fund_nm"`
	Price     string `json:"price"`
	UnitNav   string `json:"unit_nav"`
	EstNav    string `json:"est_nav"`
	PremiumRt string `json:"premium_rt"`
	Volume    string `json:"volume"`
}
