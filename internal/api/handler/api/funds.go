// internal/api/handler/api/funds.go
package api

import (
	"net/http"

	"github.com/minjia/goldgap/internal/api/response"
	"github.com/minjia/goldgap/internal/core"
	"github.com/minjia/goldgap/internal/export"
	"github.com/minjia/goldgap/internal/storage/run"
)

// FundsHandler serves per-fund queries against the latest run.
type FundsHandler struct {
	store run.Store
}

// NewFundsHandler creates a new funds handler.
func NewFundsHandler(store run.Store) *FundsHandler {
	return &FundsHandler{store: store}
}

// GetByCode returns the latest valuation for one fund code. Funds that
// were excluded from the latest run report their exclusion reason.
func (h *FundsHandler) GetByCode(w http.ResponseWriter, r *http.Request, code string) {
	latest, err := h.store.Latest(r.Context())
	if err != nil {
		response.Error(w, http.StatusNotFound, err)
		return
	}

	for _, res := range latest.Table.Results {
		if res.Code == code {
			response.JSON(w, http.StatusOK, map[string]any{
				"run_id": latest.ID,
				"at":     latest.At,
				"fund":   toResultJSON(res),
			})
			return
		}
	}

	for _, fe := range latest.Table.Errors {
		if fe.Code == code {
			response.JSON(w, http.StatusOK, map[string]any{
				"run_id": latest.ID,
				"at":     latest.At,
				"fund": export.ErrorJSON{
					Code:   fe.Code,
					Name:   fe.Name,
					Reason: fe.Err.Error(),
				},
				"excluded": true,
			})
			return
		}
	}

	response.Error(w, http.StatusNotFound, core.ErrNotFound)
}

func toResultJSON(r core.ValuationResult) export.ResultJSON {
	return export.ResultJSON{
		Code:          r.Code,
		Name:          r.Name,
		NavT2:         r.NavT2,
		LivePrice:     r.LivePrice,
		EstimatedNAV:  r.EstimatedNAV,
		PremiumRate:   r.PremiumRate,
		PremiumT1:     r.PremiumT1,
		PremiumChange: r.PremiumChange,
		Signal:        string(r.Signal),
	}
}
