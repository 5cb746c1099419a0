package collector

import (
	"context"

	"github.com/minjia/goldgap/internal/snapshot"
)

// Config holds collector configuration
type Config struct {
	Enabled bool
	BaseURL string
	APIKey  string
	Extra   map[string]any
}

// FundCollector fetches raw QDII fund records from an external source.
// Records come back unvalidated; the snapshot normalizer owns validation.
type FundCollector interface {
	Name() string
	Init(cfg Config) error
	FetchFunds(ctx context.Context) ([]snapshot.RawFund, error)
}

// MarketCollector fetches the gold price series and the USD/CNY rate.
type MarketCollector interface {
	Name() string
	Init(cfg Config) error
	FetchGold(ctx context.Context) (snapshot.RawGold, error)
	FetchFx(ctx context.Context) (snapshot.RawFx, error)
}
