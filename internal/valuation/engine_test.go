package valuation

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/minjia/goldgap/internal/core"
)

func f64(v float64) *float64 { return &v }

func snapWith(funds ...core.FundQuote) *core.Snapshot {
	return &core.Snapshot{
		Gold: core.GoldQuote{
			TMinus2:  core.GoldPoint{Price: 2020.50},
			TMinus1:  core.GoldPoint{Price: 2022.30},
			Now:      core.GoldPoint{Price: 2025.00},
			Currency: "USD",
		},
		Fx:    core.FxRate{UsdCny: 7.21},
		Funds: funds,
	}
}

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) < tolerance
}

func TestEvaluate_Scenario(t *testing.T) {
	// gold 2020.50 -> 2025.00, nav_t2 4.20, live 4.123:
	// return ≈ 0.0222, estimated nav ≈ 4.2933, premium ≈ -0.0399 -> BUY
	engine := NewEngine()
	snap := snapWith(core.FundQuote{Code: "518800", Name: "国泰黄金ETF", NavT2: 4.20, LivePrice: 4.123})

	table, err := engine.Evaluate(snap, DefaultThresholds())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(table.Results))
	}

	r := table.Results[0]
	if !almostEqual(table.GoldReturn, 0.0222, 0.0001) {
		t.Errorf("gold return = %v, want ≈0.0222", table.GoldReturn)
	}
	if !almostEqual(r.EstimatedNAV, 4.2933, 0.0005) {
		t.Errorf("estimated nav = %v, want ≈4.2933", r.EstimatedNAV)
	}
	if !almostEqual(r.PremiumRate, -0.0399, 0.0005) {
		t.Errorf("premium = %v, want ≈-0.0399", r.PremiumRate)
	}
	if r.Signal != core.SignalBuy {
		t.Errorf("signal = %s, want BUY", r.Signal)
	}
}

func TestEvaluate_ZeroGoldMove(t *testing.T) {
	engine := NewEngine()
	snap := snapWith(core.FundQuote{Code: "518800", NavT2: 4.0, LivePrice: 4.0})
	snap.Gold.Now.Price = snap.Gold.TMinus2.Price

	table, err := engine.Evaluate(snap, DefaultThresholds())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.GoldReturn != 0 {
		t.Errorf("flat gold should yield zero return, got %v", table.GoldReturn)
	}
	if table.Results[0].EstimatedNAV != 4.0 {
		t.Errorf("estimated nav should equal t-2 nav, got %v", table.Results[0].EstimatedNAV)
	}
	if table.Results[0].Signal != core.SignalHold {
		t.Errorf("zero premium should HOLD, got %s", table.Results[0].Signal)
	}
}

func TestEvaluate_ZeroTMinus2GoldIsFatal(t *testing.T) {
	engine := NewEngine()
	snap := snapWith(core.FundQuote{Code: "518800", NavT2: 4.0, LivePrice: 4.0})
	snap.Gold.TMinus2.Price = 0

	table, err := engine.Evaluate(snap, DefaultThresholds())
	if table != nil {
		t.Fatal("no table should be produced on fatal error")
	}
	if !errors.Is(err, core.ErrDivisionByZero) {
		t.Errorf("expected DIVISION_BY_ZERO, got %v", err)
	}
}

func TestEvaluate_ZeroEstimatedNAVExcludesFundOnly(t *testing.T) {
	engine := NewEngine()
	snap := snapWith(
		core.FundQuote{Code: "518800", Name: "国泰黄金ETF", NavT2: 4.20, LivePrice: 4.123},
		core.FundQuote{Code: "000216", Name: "华安黄金A", NavT2: 0, LivePrice: 1.0},
		core.FundQuote{Code: "159934", Name: "易方达黄金ETF", NavT2: 4.055, LivePrice: 4.087},
	)

	table, err := engine.Evaluate(snap, DefaultThresholds())
	if err != nil {
		t.Fatalf("one bad fund must not abort the batch: %v", err)
	}
	if len(table.Results) != 2 {
		t.Fatalf("expected 2 surviving results, got %d", len(table.Results))
	}
	if len(table.Errors) != 1 {
		t.Fatalf("expected 1 per-fund error, got %d", len(table.Errors))
	}
	if table.Errors[0].Code != "000216" {
		t.Errorf("wrong fund excluded: %s", table.Errors[0].Code)
	}
	if !errors.Is(table.Errors[0].Err, core.ErrZeroEstimatedNAV) {
		t.Errorf("expected ZERO_ESTIMATED_NAV, got %v", table.Errors[0].Err)
	}

	// len(Results) + exclusions == len(Funds)
	if len(table.Results)+len(table.Errors) != len(snap.Funds) {
		t.Error("result and error counts must partition the fund set")
	}

	// Order of survivors follows snapshot order.
	if table.Results[0].Code != "518800" || table.Results[1].Code != "159934" {
		t.Errorf("snapshot order not preserved: %+v", table.Results)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	engine := NewEngine()
	snap := snapWith(
		core.FundQuote{Code: "518800", NavT2: 4.20, LivePrice: 4.123, PremiumT1: f64(0.0054)},
		core.FundQuote{Code: "159934", NavT2: 4.055, LivePrice: 4.087},
	)

	first, err := engine.Evaluate(snap, DefaultThresholds())
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Evaluate(snap, DefaultThresholds())
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("evaluating the same snapshot twice must yield identical tables")
	}
}

func TestThresholds_Classify_Boundaries(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name    string
		premium float64
		want    core.Signal
	}{
		{"deep discount", -0.04, core.SignalBuy},
		{"exactly buy boundary", -0.01, core.SignalHold},
		{"just below buy boundary", -0.010000001, core.SignalBuy},
		{"flat", 0, core.SignalHold},
		{"exactly sell boundary", 0.01, core.SignalHold},
		{"just above sell boundary", 0.010000001, core.SignalSell},
		{"steep premium", 0.05, core.SignalSell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := th.Classify(tt.premium); got != tt.want {
				t.Errorf("Classify(%v) = %s, want %s", tt.premium, got, tt.want)
			}
		})
	}
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		th      Thresholds
		wantErr bool
	}{
		{"defaults", DefaultThresholds(), false},
		{"equal boundaries", Thresholds{BuyBelow: 0, SellAbove: 0}, false},
		{"inverted", Thresholds{BuyBelow: 0.02, SellAbove: 0.01}, true},
		{"nan", Thresholds{BuyBelow: math.NaN(), SellAbove: 0.01}, true},
		{"inf", Thresholds{BuyBelow: -0.01, SellAbove: math.Inf(1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.th.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEvaluate_CustomThresholds(t *testing.T) {
	engine := NewEngine()
	snap := snapWith(core.FundQuote{Code: "518800", NavT2: 4.20, LivePrice: 4.123})

	// Widen the buy boundary past the ≈-4% discount: signal becomes HOLD.
	table, err := engine.Evaluate(snap, Thresholds{BuyBelow: -0.05, SellAbove: 0.05})
	if err != nil {
		t.Fatal(err)
	}
	if table.Results[0].Signal != core.SignalHold {
		t.Errorf("expected HOLD with widened thresholds, got %s", table.Results[0].Signal)
	}
}

func TestEvaluate_PremiumChange(t *testing.T) {
	engine := NewEngine()
	snap := snapWith(
		core.FundQuote{Code: "518800", NavT2: 4.20, LivePrice: 4.123, PremiumT1: f64(0.0054)},
		core.FundQuote{Code: "159934", NavT2: 4.055, LivePrice: 4.087},
	)

	table, err := engine.Evaluate(snap, DefaultThresholds())
	if err != nil {
		t.Fatal(err)
	}

	withT1 := table.Results[0]
	if withT1.PremiumChange == nil {
		t.Fatal("premium change should be set when t-1 premium is known")
	}
	want := withT1.PremiumRate - 0.0054
	if !almostEqual(*withT1.PremiumChange, want, 1e-12) {
		t.Errorf("premium change = %v, want %v", *withT1.PremiumChange, want)
	}

	if table.Results[1].PremiumChange != nil {
		t.Error("premium change should be absent without a t-1 premium")
	}
}

func TestSortByPremium(t *testing.T) {
	table := &core.ResultTable{
		Results: []core.ValuationResult{
			{Code: "a", PremiumRate: 0.02},
			{Code: "b", PremiumRate: -0.03},
			{Code: "c", PremiumRate: 0.001},
		},
	}

	SortByPremium(table)

	got := []string{table.Results[0].Code, table.Results[1].Code, table.Results[2].Code}
	want := []string{"b", "c", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sort order = %v, want %v", got, want)
	}
}
