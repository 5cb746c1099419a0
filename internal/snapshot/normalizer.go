// Package snapshot assembles a validated core.Snapshot from the raw
// records produced by the collectors. All validation happens once at
// this boundary; downstream code trusts the snapshot's invariants.
package snapshot

import (
	"fmt"
	"math"
	"time"

	"github.com/minjia/goldgap/internal/core"
	"go.uber.org/zap"
)

// RawGold carries gold prices as delivered by a collector. Pointer
// fields distinguish an absent price from a literal zero.
type RawGold struct {
	TMinus2     *float64
	TMinus1     *float64
	Now         *float64
	TMinus2Time time.Time
	TMinus1Time time.Time
	NowTime     time.Time
	Currency    string
}

// RawFx carries the exchange rate as delivered by a collector.
type RawFx struct {
	UsdCny *float64
}

// RawFund is an unvalidated fund record. Absent numeric cells map to
// nil pointers, never to zero.
type RawFund struct {
	Code      string
	Name      string
	NavT2     *float64
	NavT1     *float64
	PremiumT1 *float64
	LivePrice *float64
}

// DedupePolicy selects how duplicate fund codes are resolved.
type DedupePolicy string

const (
	DedupeKeepLast  DedupePolicy = "keep-last"
	DedupeKeepFirst DedupePolicy = "keep-first"
	DedupeReject    DedupePolicy = "reject"
)

// ValidDedupePolicy reports whether p is a recognized policy.
func ValidDedupePolicy(p DedupePolicy) bool {
	switch p {
	case DedupeKeepLast, DedupeKeepFirst, DedupeReject:
		return true
	}
	return false
}

// Dropped records a fund rejected during normalization, with the reason.
type Dropped struct {
	Code   string
	Name   string
	Reason string
}

// Normalizer validates and shapes already-fetched values into a
// core.Snapshot. It performs no network or parsing work.
type Normalizer struct {
	policy DedupePolicy
	logger *zap.Logger
}

// New creates a Normalizer with the given duplicate policy.
func New(policy DedupePolicy, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !ValidDedupePolicy(policy) {
		policy = DedupeKeepLast
	}
	return &Normalizer{policy: policy, logger: logger}
}

// Normalize builds a snapshot from raw collector output.
//
// Gold and FX problems are fatal: without them no fund can be valued.
// Fund records missing code, T-2 NAV or live price are dropped with a
// warning; partial fund coverage is acceptable, total absence is not.
func (n *Normalizer) Normalize(gold RawGold, fx RawFx, funds []RawFund) (*core.Snapshot, []Dropped, error) {
	gq, err := n.normalizeGold(gold)
	if err != nil {
		return nil, nil, err
	}

	fxRate, err := normalizeFx(fx)
	if err != nil {
		return nil, nil, err
	}

	kept, dropped, err := n.normalizeFunds(funds)
	if err != nil {
		return nil, nil, err
	}
	if len(kept) == 0 {
		return nil, dropped, core.WrapError(core.ErrNoData, fmt.Errorf("no usable fund records out of %d", len(funds)))
	}

	return &core.Snapshot{
		Gold:    gq,
		Fx:      fxRate,
		Funds:   kept,
		TakenAt: gold.NowTime,
	}, dropped, nil
}

func (n *Normalizer) normalizeGold(gold RawGold) (core.GoldQuote, error) {
	points := []struct {
		label string
		price *float64
	}{
		{"t-2", gold.TMinus2},
		{"t-1", gold.TMinus1},
		{"now", gold.Now},
	}
	for _, p := range points {
		if p.price == nil {
			return core.GoldQuote{}, core.WrapError(core.ErrMissingGoldData, fmt.Errorf("gold price at %s is absent", p.label))
		}
		if !positiveFinite(*p.price) {
			return core.GoldQuote{}, core.WrapError(core.ErrMissingGoldData, fmt.Errorf("gold price at %s is not positive: %v", p.label, *p.price))
		}
	}

	// Timestamps are optional, but when present they must not run backwards.
	if !gold.TMinus1Time.IsZero() && !gold.TMinus2Time.IsZero() && gold.TMinus1Time.Before(gold.TMinus2Time) {
		return core.GoldQuote{}, core.WrapError(core.ErrMissingGoldData, fmt.Errorf("t-1 timestamp precedes t-2"))
	}
	if !gold.NowTime.IsZero() && !gold.TMinus1Time.IsZero() && gold.NowTime.Before(gold.TMinus1Time) {
		return core.GoldQuote{}, core.WrapError(core.ErrMissingGoldData, fmt.Errorf("now timestamp precedes t-1"))
	}

	currency := gold.Currency
	if currency == "" {
		currency = "USD"
	}

	return core.GoldQuote{
		TMinus2:  core.GoldPoint{Price: *gold.TMinus2, Time: gold.TMinus2Time},
		TMinus1:  core.GoldPoint{Price: *gold.TMinus1, Time: gold.TMinus1Time},
		Now:      core.GoldPoint{Price: *gold.Now, Time: gold.NowTime},
		Currency: currency,
	}, nil
}

func normalizeFx(fx RawFx) (core.FxRate, error) {
	if fx.UsdCny == nil {
		return core.FxRate{}, core.WrapError(core.ErrMissingFxData, fmt.Errorf("usd/cny rate is absent"))
	}
	if !positiveFinite(*fx.UsdCny) {
		return core.FxRate{}, core.WrapError(core.ErrMissingFxData, fmt.Errorf("usd/cny rate is not positive: %v", *fx.UsdCny))
	}
	return core.FxRate{UsdCny: *fx.UsdCny}, nil
}

func (n *Normalizer) normalizeFunds(funds []RawFund) ([]core.FundQuote, []Dropped, error) {
	var dropped []Dropped

	// First pass: field presence. NavT2 present-as-zero is accepted here;
	// the engine handles the resulting zero estimated NAV per fund.
	valid := make([]core.FundQuote, 0, len(funds))
	for _, raw := range funds {
		if reason := missingField(raw); reason != "" {
			dropped = append(dropped, Dropped{Code: raw.Code, Name: raw.Name, Reason: reason})
			n.logger.Warn("dropping fund record",
				zap.String("code", raw.Code),
				zap.String("name", raw.Name),
				zap.String("reason", reason),
			)
			continue
		}
		valid = append(valid, core.FundQuote{
			Code:      raw.Code,
			Name:      raw.Name,
			NavT2:     *raw.NavT2,
			NavT1:     raw.NavT1,
			PremiumT1: raw.PremiumT1,
			LivePrice: *raw.LivePrice,
		})
	}

	// Second pass: duplicate codes.
	switch n.policy {
	case DedupeReject:
		seen := make(map[string]struct{}, len(valid))
		for _, f := range valid {
			if _, dup := seen[f.Code]; dup {
				return nil, dropped, core.WrapError(core.ErrDuplicateFund, fmt.Errorf("code %s appears more than once", f.Code))
			}
			seen[f.Code] = struct{}{}
		}
		return valid, dropped, nil

	case DedupeKeepFirst:
		seen := make(map[string]struct{}, len(valid))
		kept := make([]core.FundQuote, 0, len(valid))
		for _, f := range valid {
			if _, dup := seen[f.Code]; dup {
				n.logger.Warn("duplicate fund code, keeping first occurrence", zap.String("code", f.Code))
				continue
			}
			seen[f.Code] = struct{}{}
			kept = append(kept, f)
		}
		return kept, dropped, nil

	default: // DedupeKeepLast
		last := make(map[string]int, len(valid))
		for i, f := range valid {
			if _, dup := last[f.Code]; dup {
				n.logger.Warn("duplicate fund code, keeping last occurrence", zap.String("code", f.Code))
			}
			last[f.Code] = i
		}
		kept := make([]core.FundQuote, 0, len(last))
		for i, f := range valid {
			if last[f.Code] == i {
				kept = append(kept, f)
			}
		}
		return kept, dropped, nil
	}
}

func missingField(raw RawFund) string {
	switch {
	case raw.Code == "":
		return "missing code"
	case raw.NavT2 == nil:
		return "missing t-2 nav"
	case raw.LivePrice == nil:
		return "missing live price"
	}
	return ""
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1) && !math.IsNaN(v)
}
