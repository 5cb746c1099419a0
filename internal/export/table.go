// Package export renders a result table for the presentation surfaces:
// aligned text for the CLI, CSV and JSON for files and the API. All
// rounding lives here; the engine emits raw float64 values.
package export

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/minjia/goldgap/internal/core"
	"github.com/minjia/goldgap/internal/valuation"
)

// Table writes an aligned text rendering of the run: gold/FX header,
// per-fund rows, per-fund errors and the summary block.
func Table(w io.Writer, run *core.Run) error {
	snap := run.Snapshot
	table := run.Table

	fmt.Fprintf(w, "Gold (%s): t-2 %.2f  t-1 %.2f  now %.2f  return %+.2f%%\n",
		snap.Gold.Currency,
		snap.Gold.TMinus2.Price, snap.Gold.TMinus1.Price, snap.Gold.Now.Price,
		table.GoldReturn*100)
	fmt.Fprintf(w, "USD/CNY: %.4f\n\n", snap.Fx.UsdCny)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tPRICE\tEST NAV\tPREMIUM\tSIGNAL")
	for _, r := range table.Results {
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%.4f\t%+.2f%%\t%s\n",
			r.Code, r.Name, r.LivePrice, r.EstimatedNAV, r.PremiumRate*100, r.Signal)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, fe := range table.Errors {
		fmt.Fprintf(w, "! %s %s excluded: %v\n", fe.Code, fe.Name, fe.Err)
	}

	s := valuation.Summarize(table)
	if s.TotalFunds > 0 {
		fmt.Fprintf(w, "\n%d funds  avg %+.2f%%  median %+.2f%%  range [%+.2f%%, %+.2f%%]\n",
			s.TotalFunds, s.AvgPremium*100, s.MedianPremium*100, s.MinPremium*100, s.MaxPremium*100)
		fmt.Fprintf(w, "premium %d  discount %d  buy %d  sell %d\n",
			s.AtPremium, s.AtDiscount, s.BuySignals, s.SellSignals)
	}

	return nil
}
