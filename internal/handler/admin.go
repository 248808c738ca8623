package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/SENODROOM/PublicBoard-Backend/internal/auth"
	"github.com/SENODROOM/PublicBoard-Backend/internal/repository"
	"github.com/SENODROOM/PublicBoard-Backend/internal/service"
)

// AdminHandler serves the admin surface: listings, moderation, bulk actions,
// and the dashboard overview. Routes are mounted behind RequirePrincipal and
// RequireAdmin, but every service call re-checks the principal anyway.
type AdminHandler struct {
	issues    *service.IssueService
	users     *service.UserService
	donations *service.DonationService
	reports   *service.ReportService
	logger    *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(issues *service.IssueService, users *service.UserService, donations *service.DonationService, reports *service.ReportService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{issues: issues, users: users, donations: donations, reports: reports, logger: logger}
}

// HandleOverview returns the dashboard rollup.
//
// GET /api/admin/overview
func (h *AdminHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	overview, err := h.reports.Overview(r.Context(), principal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// HandleListUsers returns one page of accounts.
//
// GET /api/admin/users?role=&search=&sort=&page=&limit=
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	q := r.URL.Query()

	page, err := h.users.List(r.Context(), principal,
		repository.UserFilter{Role: q.Get("role"), Search: q.Get("search")},
		parseSort(r), parsePage(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records":    page.Records,
		"total":      page.Total,
		"page":       page.Page,
		"totalPages": page.TotalPages,
	})
}

// HandleGetUser returns one account and the issues it reported.
//
// GET /api/admin/users/{id}
func (h *AdminHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	detail, err := h.users.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

// HandleChangeRole sets an account's role.
//
// PATCH /api/admin/users/{id}/role
func (h *AdminHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	var req changeRoleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	user, err := h.users.ChangeRole(r.Context(), principal, chi.URLParam(r, "id"), req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// HandleDeleteUser removes an account.
//
// DELETE /api/admin/users/{id}
func (h *AdminHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	if err := h.users.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "User deleted"})
}

// HandleListIssues returns one page of issues for moderation.
//
// GET /api/admin/issues?status=&category=&search=&sort=&page=&limit=
func (h *AdminHandler) HandleListIssues(w http.ResponseWriter, r *http.Request) {
	page, err := h.issues.ListPaged(r.Context(), parseIssueFilter(r), parseSort(r), parsePage(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records":    page.Records,
		"total":      page.Total,
		"page":       page.Page,
		"totalPages": page.TotalPages,
	})
}

type patchIssueRequest struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HandlePatchIssue updates an issue's status with an optional log message.
//
// PATCH /api/admin/issues/{id}
func (h *AdminHandler) HandlePatchIssue(w http.ResponseWriter, r *http.Request) {
	var req patchIssueRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")

	status := req.Status
	if status == "" {
		current, err := h.issues.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		status = current.Status
	}

	issue, err := h.issues.UpdateStatus(r.Context(), principal, id, status, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"issue": issue})
}

// HandleDeleteIssue removes an issue.
//
// DELETE /api/admin/issues/{id}
func (h *AdminHandler) HandleDeleteIssue(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	if err := h.issues.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Issue deleted"})
}

// HandleListDonations returns one page of donations.
//
// GET /api/admin/donations?status=&sort=&page=&limit=
func (h *AdminHandler) HandleListDonations(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	page, err := h.donations.ListPaged(r.Context(), principal,
		repository.DonationFilter{Status: r.URL.Query().Get("status")},
		parseSort(r), parsePage(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records":    page.Records,
		"total":      page.Total,
		"page":       page.Page,
		"totalPages": page.TotalPages,
	})
}

type bulkStatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

// HandleBulkStatus applies a status to many issues.
//
// POST /api/admin/issues/bulk-status
func (h *AdminHandler) HandleBulkStatus(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	matched, err := h.issues.BulkStatus(r.Context(), principal, req.IDs, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"matched": matched,
		"message": fmt.Sprintf("%d issues updated to %s", matched, req.Status),
	})
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// HandleBulkDelete removes many issues.
//
// POST /api/admin/issues/bulk-delete
func (h *AdminHandler) HandleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())
	matched, err := h.issues.BulkDelete(r.Context(), principal, req.IDs)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"matched": matched,
		"message": fmt.Sprintf("%d issues deleted", matched),
	})
}
