// Package valuation implements the fair-value estimation model for
// gold-tracking QDII funds: a lagged official NAV scaled by the gold
// move since T-2, compared against the live market price.
package valuation

import (
	"fmt"
	"math"
	"sort"

	"github.com/minjia/goldgap/internal/core"
	"go.uber.org/zap"
)

// Thresholds holds the premium-rate boundaries for signal classification.
// A premium strictly below BuyBelow is a BUY, strictly above SellAbove a
// SELL; everything between, boundaries included, is a HOLD.
type Thresholds struct {
	BuyBelow  float64
	SellAbove float64
}

// DefaultThresholds returns the standard ±1% boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{BuyBelow: -0.01, SellAbove: 0.01}
}

// Validate checks the thresholds for consistency.
func (t Thresholds) Validate() error {
	if math.IsNaN(t.BuyBelow) || math.IsInf(t.BuyBelow, 0) ||
		math.IsNaN(t.SellAbove) || math.IsInf(t.SellAbove, 0) {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("thresholds must be finite"))
	}
	if t.BuyBelow > t.SellAbove {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("buy_below (%v) must not exceed sell_above (%v)", t.BuyBelow, t.SellAbove))
	}
	return nil
}

// Classify maps a premium rate to a signal.
func (t Thresholds) Classify(premium float64) core.Signal {
	switch {
	case premium < t.BuyBelow:
		return core.SignalBuy
	case premium > t.SellAbove:
		return core.SignalSell
	default:
		return core.SignalHold
	}
}

// Engine evaluates a snapshot into a result table. It is stateless:
// every invocation is a pure function of its snapshot and thresholds.
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a valuation engine
func NewEngine(logger ...*zap.Logger) *Engine {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Engine{logger: l}
}

// Evaluate computes estimated NAV, premium rate and signal for every
// fund in the snapshot.
//
// A zero T-2 gold price is a fatal run error: the gold return is
// undefined for every fund. A zero estimated NAV excludes only that
// fund, recorded in Table.Errors; the batch continues.
func (e *Engine) Evaluate(snap *core.Snapshot, th Thresholds) (*core.ResultTable, error) {
	if snap == nil {
		return nil, core.WrapError(core.ErrNoData, fmt.Errorf("nil snapshot"))
	}
	if err := th.Validate(); err != nil {
		return nil, err
	}

	// The gold return is undefined without a T-2 base price.
	if snap.Gold.TMinus2.Price == 0 {
		return nil, core.WrapError(core.ErrDivisionByZero, fmt.Errorf("t-2 gold price is zero"))
	}
	goldReturn := snap.Gold.Return()

	table := &core.ResultTable{
		GoldReturn: goldReturn,
		Results:    make([]core.ValuationResult, 0, len(snap.Funds)),
	}

	for _, fund := range snap.Funds {
		res, err := evaluateFund(fund, goldReturn, th)
		if err != nil {
			e.logger.Warn("fund excluded from result table",
				zap.String("code", fund.Code),
				zap.Error(err),
			)
			table.Errors = append(table.Errors, core.FundError{Code: fund.Code, Name: fund.Name, Err: err})
			continue
		}
		table.Results = append(table.Results, res)
	}

	return table, nil
}

func evaluateFund(fund core.FundQuote, goldReturn float64, th Thresholds) (core.ValuationResult, error) {
	estimatedNAV := fund.NavT2 * (1 + goldReturn)
	if estimatedNAV == 0 {
		return core.ValuationResult{}, core.WrapError(core.ErrZeroEstimatedNAV,
			fmt.Errorf("fund %s: t-2 nav %v, gold return %v", fund.Code, fund.NavT2, goldReturn))
	}

	premium := (fund.LivePrice - estimatedNAV) / estimatedNAV

	res := core.ValuationResult{
		Code:         fund.Code,
		Name:         fund.Name,
		NavT2:        fund.NavT2,
		LivePrice:    fund.LivePrice,
		EstimatedNAV: estimatedNAV,
		PremiumRate:  premium,
		PremiumT1:    fund.PremiumT1,
		Signal:       th.Classify(premium),
	}
	if fund.PremiumT1 != nil {
		change := premium - *fund.PremiumT1
		res.PremiumChange = &change
	}
	return res, nil
}

// SortByPremium re-orders the table's results by premium rate ascending,
// most discounted first. The sort is stable so equal premiums keep the
// snapshot order.
func SortByPremium(table *core.ResultTable) {
	sort.SliceStable(table.Results, func(i, j int) bool {
		return table.Results[i].PremiumRate < table.Results[j].PremiumRate
	})
}
