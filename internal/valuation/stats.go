package valuation

import (
	"math"
	"sort"

	"github.com/minjia/goldgap/internal/core"
)

// Summary aggregates premium statistics across one result table.
type Summary struct {
	TotalFunds    int
	AvgPremium    float64
	MedianPremium float64
	MinPremium    float64
	MaxPremium    float64
	StdPremium    float64
	AtDiscount    int
	AtPremium     int
	BuySignals    int
	SellSignals   int
}

// Summarize computes summary statistics for a result table. An empty
// table yields a zero summary.
func Summarize(table *core.ResultTable) Summary {
	if table == nil || len(table.Results) == 0 {
		return Summary{}
	}

	premiums := make([]float64, len(table.Results))
	var sum float64
	s := Summary{TotalFunds: len(table.Results)}

	for i, r := range table.Results {
		premiums[i] = r.PremiumRate
		sum += r.PremiumRate
		if r.PremiumRate < 0 {
			s.AtDiscount++
		} else if r.PremiumRate > 0 {
			s.AtPremium++
		}
		switch r.Signal {
		case core.SignalBuy:
			s.BuySignals++
		case core.SignalSell:
			s.SellSignals++
		}
	}

	s.AvgPremium = sum / float64(len(premiums))

	sorted := make([]float64, len(premiums))
	copy(sorted, premiums)
	sort.Float64s(sorted)
	s.MinPremium = sorted[0]
	s.MaxPremium = sorted[len(sorted)-1]
	if n := len(sorted); n%2 == 1 {
		s.MedianPremium = sorted[n/2]
	} else {
		s.MedianPremium = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	var sq float64
	for _, p := range premiums {
		d := p - s.AvgPremium
		sq += d * d
	}
	s.StdPremium = math.Sqrt(sq / float64(len(premiums)))

	return s
}
