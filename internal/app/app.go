// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/minjia/goldgap/internal/collector"
	"github.com/minjia/goldgap/internal/config"
	"github.com/minjia/goldgap/internal/core"
	"github.com/minjia/goldgap/internal/metrics"
	"github.com/minjia/goldgap/internal/snapshot"
	"github.com/minjia/goldgap/internal/storage/archive"
	"github.com/minjia/goldgap/internal/storage/run"
	"github.com/minjia/goldgap/internal/valuation"
)

// App is the main application orchestrator. It pulls raw data from the
// registered collectors, normalizes it into a snapshot, runs the
// valuation engine and stores the resulting run.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	collectors *collector.Registry
	normalizer *snapshot.Normalizer
	engine     *valuation.Engine
	store      run.Store
	archiver   *archive.Archiver
	metrics    *metrics.Registry

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
}

// New creates a new App instance
func New(cfg *config.Config, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		collectors: collector.NewRegistry(),
		normalizer: snapshot.New(snapshot.DedupePolicy(cfg.Normalizer.DedupePolicy), logger),
		engine:     valuation.NewEngine(logger),
		store:      run.NewMemoryStore(cfg.Server.MaxRuns),
	}
}

// RegisterFundCollector adds a fund collector to the app
func (a *App) RegisterFundCollector(c collector.FundCollector) {
	a.collectors.RegisterFund(c)
}

// RegisterMarketCollector adds a market collector to the app
func (a *App) RegisterMarketCollector(c collector.MarketCollector) {
	a.collectors.RegisterMarket(c)
}

// SetArchiver sets the run archiver. Nil disables archiving.
func (a *App) SetArchiver(ar *archive.Archiver) {
	a.archiver = ar
}

// SetMetrics sets the metrics registry. Nil disables recording.
func (a *App) SetMetrics(reg *metrics.Registry) {
	a.metrics = reg
}

// Store returns the run store, for the API server.
func (a *App) Store() run.Store {
	return a.store
}

// thresholds builds the engine thresholds from config.
func (a *App) thresholds() valuation.Thresholds {
	return valuation.Thresholds{
		BuyBelow:  a.cfg.Thresholds.BuyBelow,
		SellAbove: a.cfg.Thresholds.SellAbove,
	}
}

// RunOnce performs a single collect-normalize-evaluate cycle and
// returns the stored run. Collector failures and fatal valuation
// errors abort the run; per-fund errors do not.
func (a *App) RunOnce(ctx context.Context) (*core.Run, error) {
	start := time.Now()

	r, err := a.runCycle(ctx)
	duration := time.Since(start).Seconds()

	if a.metrics != nil {
		if err != nil {
			a.metrics.RecordRun("error", duration)
		} else {
			a.metrics.RecordRun("ok", duration)
			a.metrics.SetFundsEvaluated(len(r.Table.Results))
			a.metrics.SetGoldReturn(r.Table.GoldReturn)
			for _, res := range r.Table.Results {
				a.metrics.RecordSignal(string(res.Signal))
			}
			for _, fe := range r.Table.Errors {
				reason := "UNKNOWN"
				var coreErr *core.Error
				if errors.As(fe.Err, &coreErr) {
					reason = coreErr.Code
				}
				a.metrics.RecordFundError(reason)
			}
		}
	}

	return r, err
}

func (a *App) runCycle(ctx context.Context) (*core.Run, error) {
	gold, fx, err := a.fetchMarket(ctx)
	if err != nil {
		return nil, err
	}

	funds, err := a.fetchFunds(ctx)
	if err != nil {
		return nil, err
	}

	snap, dropped, err := a.normalizer.Normalize(gold, fx, funds)
	if err != nil {
		return nil, err
	}
	for _, d := range dropped {
		a.logger.Warn("fund record dropped",
			zap.String("code", d.Code),
			zap.String("name", d.Name),
			zap.String("reason", d.Reason))
	}

	table, err := a.engine.Evaluate(snap, a.thresholds())
	if err != nil {
		return nil, err
	}

	if a.cfg.Output.SortByPremium {
		valuation.SortByPremium(table)
	}

	r := &core.Run{
		ID:       uuid.NewString(),
		At:       time.Now().UTC(),
		Snapshot: snap,
		Table:    table,
	}

	if err := a.store.Save(ctx, r); err != nil {
		return nil, err
	}

	if a.archiver != nil {
		if err := a.archiver.Archive(ctx, r); err != nil {
			// Archiving is best effort: the run already succeeded.
			a.logger.Error("archiving run failed", zap.String("run_id", r.ID), zap.Error(err))
		}
	}

	a.logger.Info("run completed",
		zap.String("run_id", r.ID),
		zap.Float64("gold_return", table.GoldReturn),
		zap.Int("funds", len(table.Results)),
		zap.Int("excluded", len(table.Errors)))

	return r, nil
}

// fetchMarket tries each registered market collector until one returns
// both the gold series and the FX rate.
func (a *App) fetchMarket(ctx context.Context) (snapshot.RawGold, snapshot.RawFx, error) {
	markets := a.collectors.MarketCollectors()
	if len(markets) == 0 {
		return snapshot.RawGold{}, snapshot.RawFx{}, core.WrapError(core.ErrCollectorFailed,
			fmt.Errorf("no market collectors registered"))
	}

	var lastErr error
	for _, c := range markets {
		gold, err := c.FetchGold(ctx)
		if err != nil {
			a.recordCollectorError(c.Name())
			a.logger.Warn("gold fetch failed", zap.String("collector", c.Name()), zap.Error(err))
			lastErr = err
			continue
		}
		fx, err := c.FetchFx(ctx)
		if err != nil {
			a.recordCollectorError(c.Name())
			a.logger.Warn("fx fetch failed", zap.String("collector", c.Name()), zap.Error(err))
			lastErr = err
			continue
		}
		return gold, fx, nil
	}
	return snapshot.RawGold{}, snapshot.RawFx{}, core.WrapError(core.ErrCollectorFailed, lastErr)
}

// fetchFunds merges fund records from every registered fund collector.
// A single failing collector does not abort the run as long as another
// one returned records.
func (a *App) fetchFunds(ctx context.Context) ([]snapshot.RawFund, error) {
	fundCollectors := a.collectors.FundCollectors()
	if len(fundCollectors) == 0 {
		return nil, core.WrapError(core.ErrCollectorFailed,
			fmt.Errorf("no fund collectors registered"))
	}

	var funds []snapshot.RawFund
	var lastErr error
	for _, c := range fundCollectors {
		records, err := c.FetchFunds(ctx)
		if err != nil {
			a.recordCollectorError(c.Name())
			a.logger.Warn("fund fetch failed", zap.String("collector", c.Name()), zap.Error(err))
			lastErr = err
			continue
		}
		funds = append(funds, records...)
	}

	if len(funds) == 0 {
		if lastErr != nil {
			return nil, core.WrapError(core.ErrCollectorFailed, lastErr)
		}
		return nil, core.ErrNoData
	}
	return funds, nil
}

func (a *App) recordCollectorError(name string) {
	if a.metrics != nil {
		a.metrics.RecordCollectorError(name)
	}
}

// Start begins the periodic refresh loop. It blocks until the context
// is cancelled or Stop is called.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app already running")
	}
	a.running = true

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()

	interval := a.cfg.Server.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	a.logger.Info("goldgap starting", zap.Duration("interval", interval))

	// Initial run
	if _, err := a.RunOnce(ctx); err != nil {
		a.logger.Error("initial run failed", zap.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("goldgap shutting down")
			a.mu.Lock()
			a.running = false
			a.mu.Unlock()
			return ctx.Err()
		case <-ticker.C:
			if _, err := a.RunOnce(ctx); err != nil {
				a.logger.Error("run failed", zap.Error(err))
			}
		}
	}
}

// Stop stops the refresh loop
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

// Running reports whether the refresh loop is active.
func (a *App) Running() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}
