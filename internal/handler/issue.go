package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/SENODROOM/PublicBoard-Backend/internal/auth"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
	"github.com/SENODROOM/PublicBoard-Backend/internal/service"
)

// IssueHandler serves the public issue endpoints.
type IssueHandler struct {
	issues  *service.IssueService
	reports *service.ReportService
	logger  *slog.Logger
}

// NewIssueHandler creates an IssueHandler.
func NewIssueHandler(issues *service.IssueService, reports *service.ReportService, logger *slog.Logger) *IssueHandler {
	return &IssueHandler{issues: issues, reports: reports, logger: logger}
}

// parseSort reads a sort query in the "-createdAt" / "createdAt" form.
func parseSort(r *http.Request) repository.Sort {
	raw := r.URL.Query().Get("sort")
	if raw == "" {
		return repository.DefaultSort
	}
	if strings.HasPrefix(raw, "-") {
		return repository.Sort{Field: raw[1:], Desc: true}
	}
	return repository.Sort{Field: raw}
}

func parsePage(r *http.Request) repository.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return repository.Page{Page: page, Limit: limit}
}

func parseIssueFilter(r *http.Request) repository.Filter {
	q := r.URL.Query()
	return repository.Filter{
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
}

// HandleList returns all issues matching the query.
//
// GET /api/issues?status=&category=&search=&sort=
func (h *IssueHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	issues, err := h.issues.List(r.Context(), parseIssueFilter(r), parseSort(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"issues": issues,
		"total":  len(issues),
	})
}

// HandleStats returns the public per-status counts.
//
// GET /api/issues/stats
func (h *IssueHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.IssueStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleGet returns one issue.
//
// GET /api/issues/{id}
func (h *IssueHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	issue, err := h.issues.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"issue": issue})
}

type createIssueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Reporter    struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"reporter"`
}

// HandleCreate files a new issue. Anonymous creates are allowed; an
// authenticated principal is linked as the owning reporter.
//
// POST /api/issues
func (h *IssueHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createIssueRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	issue, err := h.issues.Create(r.Context(), principal, service.CreateIssueInput{
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Location:      req.Location,
		ReporterName:  req.Reporter.Name,
		ReporterEmail: req.Reporter.Email,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"issue": issue})
}

// HandleSupport toggles the caller's support vote.
//
// POST /api/issues/{id}/support
func (h *IssueHandler) HandleSupport(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	issue, supported, err := h.issues.ToggleSupport(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"issue":     issue,
		"supported": supported,
	})
}

type updateStatusRequest struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HandleUpdateStatus moves an issue to a new status.
//
// PATCH /api/issues/{id}/status
func (h *IssueHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	issue, err := h.issues.UpdateStatus(r.Context(), principal, chi.URLParam(r, "id"), req.Status, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"issue": issue})
}
