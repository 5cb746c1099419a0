package core

import "time"

// Signal represents a discrete arbitrage signal for a fund
type Signal string

const (
	SignalBuy  Signal = "BUY"
	SignalSell Signal = "SELL"
	SignalHold Signal = "HOLD"
)

// GoldPoint is a gold spot price observed at a point in time
type GoldPoint struct {
	Price float64
	Time  time.Time
}

// GoldQuote holds the gold spot price at the three reference points used
// by the valuation model: two trading days ago (T-2), one trading day
// ago (T-1), and now.
type GoldQuote struct {
	TMinus2  GoldPoint
	TMinus1  GoldPoint
	Now      GoldPoint
	Currency string
}

// Return computes the total gold return from T-2 to now. The caller is
// responsible for rejecting a zero T-2 price first.
func (g GoldQuote) Return() float64 {
	return (g.Now.Price - g.TMinus2.Price) / g.TMinus2.Price
}

// FxRate is the USD/CNY exchange rate for a run. One rate per run; no
// intraday path is modeled.
type FxRate struct {
	UsdCny float64
}

// FundQuote is a validated fund record inside a snapshot.
// NavT1 and PremiumT1 are informational and may be absent. PremiumT1 is
// a decimal rate (0.0054 = 0.54%), not a percentage.
type FundQuote struct {
	Code      string
	Name      string
	NavT2     float64
	NavT1     *float64
	PremiumT1 *float64
	LivePrice float64
}

// Snapshot is the validated input for one analysis run: one gold quote,
// one FX rate and the fund set, keyed by fund code. It is never mutated
// after construction; the engine derives results from it without side
// effects.
type Snapshot struct {
	Gold    GoldQuote
	Fx      FxRate
	Funds   []FundQuote
	TakenAt time.Time
}

// FundByCode returns the fund with the given code, if present.
func (s *Snapshot) FundByCode(code string) (FundQuote, bool) {
	for _, f := range s.Funds {
		if f.Code == code {
			return f, true
		}
	}
	return FundQuote{}, false
}

// ValuationResult is the per-fund output of a run: the estimated fair
// NAV, the premium of the live price over it, and the derived signal.
// PremiumChange is the current premium minus the published T-1 premium,
// present only when the input carried one.
type ValuationResult struct {
	Code          string
	Name          string
	NavT2         float64
	LivePrice     float64
	EstimatedNAV  float64
	PremiumRate   float64
	PremiumT1     *float64
	PremiumChange *float64
	Signal        Signal
}

// FundError records a fund excluded during evaluation, so callers can
// tell "no result for fund X because of Y" apart from a failed run.
type FundError struct {
	Code string
	Name string
	Err  error
}

// ResultTable is the ordered output of one run. Results preserve the
// snapshot's fund order unless the caller explicitly re-sorts; Errors
// holds the funds excluded by per-fund failures.
type ResultTable struct {
	GoldReturn float64
	Results    []ValuationResult
	Errors     []FundError
}

// Run pairs a snapshot with its result table, stamped by the
// orchestration layer. The engine itself never touches the clock.
type Run struct {
	ID       string
	At       time.Time
	Snapshot *Snapshot
	Table    *ResultTable
}
