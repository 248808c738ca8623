package handler

import (
	"net/http"

	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
)

// HealthHandler reports process liveness and which store mode is active.
type HealthHandler struct {
	stores *repository.Stores
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(stores *repository.Stores) *HealthHandler {
	return &HealthHandler{stores: stores}
}

// HandleHealth answers liveness probes.
//
// GET /api/health
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"store":  h.stores.Mode,
	})
}
