package handler

import (
	"log/slog"
	"net/http"

	"github.com/SENODROOM/PublicBoard-Backend/internal/auth"
	"github.com/SENODROOM/PublicBoard-Backend/internal/service"
)

// DonationHandler serves the public donation endpoints.
type DonationHandler struct {
	donations *service.DonationService
	logger    *slog.Logger
}

// NewDonationHandler creates a DonationHandler.
func NewDonationHandler(donations *service.DonationService, logger *slog.Logger) *DonationHandler {
	return &DonationHandler{donations: donations, logger: logger}
}

// HandleList returns completed donations, newest first, anonymous donors
// sanitized.
//
// GET /api/donations
func (h *DonationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	donations, err := h.donations.ListCompleted(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"donations": donations})
}

// HandleStats returns the public donation counters.
//
// GET /api/donations/stats
func (h *DonationHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.donations.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalRaised":   stats.TotalRaised,
		"donationCount": stats.DonationCount,
	})
}

type createDonationRequest struct {
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Message      string  `json:"message"`
	IsAnonymous  bool    `json:"isAnonymous"`
	RelatedIssue string  `json:"relatedIssue"`
}

// HandleCreate records a donation through the simulated processor.
//
// POST /api/donations
func (h *DonationHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createDonationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	donation, err := h.donations.Create(r.Context(), principal, service.CreateDonationInput{
		DonorName:    req.Name,
		DonorEmail:   req.Email,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Message:      req.Message,
		IsAnonymous:  req.IsAnonymous,
		RelatedIssue: req.RelatedIssue,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"donation": donation,
		"message":  "Donation successful! Thank you for your contribution.",
	})
}
