package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/minjia/goldgap/internal/core"
)

// csvHeader is the stable column order for CSV exports.
var csvHeader = []string{
	"code", "name", "nav_t2", "live_price", "estimated_nav",
	"premium_rate", "premium_t1", "premium_change", "signal",
}

// CSV writes the result table as CSV with a fixed header row. Optional
// fields render as empty cells.
func CSV(w io.Writer, table *core.ResultTable) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range table.Results {
		record := []string{
			r.Code,
			r.Name,
			formatFloat(r.NavT2),
			formatFloat(r.LivePrice),
			formatFloat(r.EstimatedNAV),
			formatFloat(r.PremiumRate),
			formatOptional(r.PremiumT1),
			formatOptional(r.PremiumChange),
			string(r.Signal),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}
