package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/minjia/goldgap/internal/core"
)

// RunJSON is the JSON shape for one run, shared by file exports and the
// HTTP API.
type RunJSON struct {
	ID         string       `json:"id"`
	At         time.Time    `json:"at"`
	Gold       GoldJSON     `json:"gold"`
	UsdCny     float64      `json:"usd_cny"`
	GoldReturn float64      `json:"gold_return"`
	Results    []ResultJSON `json:"results"`
	Errors     []ErrorJSON  `json:"errors,omitempty"`
}

type GoldJSON struct {
	TMinus2  float64 `json:"t_minus_2"`
	TMinus1  float64 `json:"t_minus_1"`
	Now      float64 `json:"now"`
	Currency string  `json:"currency"`
}

type ResultJSON struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	NavT2         float64  `json:"nav_t2"`
	LivePrice     float64  `json:"live_price"`
	EstimatedNAV  float64  `json:"estimated_nav"`
	PremiumRate   float64  `json:"premium_rate"`
	PremiumT1     *float64 `json:"premium_t1,omitempty"`
	PremiumChange *float64 `json:"premium_change,omitempty"`
	Signal        string   `json:"signal"`
}

type ErrorJSON struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ToRunJSON converts a run to its JSON shape.
func ToRunJSON(run *core.Run) RunJSON {
	out := RunJSON{
		ID: run.ID,
		At: run.At,
		Gold: GoldJSON{
			TMinus2:  run.Snapshot.Gold.TMinus2.Price,
			TMinus1:  run.Snapshot.Gold.TMinus1.Price,
			Now:      run.Snapshot.Gold.Now.Price,
			Currency: run.Snapshot.Gold.Currency,
		},
		UsdCny:     run.Snapshot.Fx.UsdCny,
		GoldReturn: run.Table.GoldReturn,
		Results:    make([]ResultJSON, 0, len(run.Table.Results)),
	}

	for _, r := range run.Table.Results {
		out.Results = append(out.Results, ResultJSON{
			Code:          r.Code,
			Name:          r.Name,
			NavT2:         r.NavT2,
			LivePrice:     r.LivePrice,
			EstimatedNAV:  r.EstimatedNAV,
			PremiumRate:   r.PremiumRate,
			PremiumT1:     r.PremiumT1,
			PremiumChange: r.PremiumChange,
			Signal:        string(r.Signal),
		})
	}

	for _, fe := range run.Table.Errors {
		out.Errors = append(out.Errors, ErrorJSON{
			Code:   fe.Code,
			Name:   fe.Name,
			Reason: fe.Err.Error(),
		})
	}

	return out
}

// JSON writes the run as indented JSON.
func JSON(w io.Writer, run *core.Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ToRunJSON(run))
}
