package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/trove/backend/internal/middleware"
	"github.com/trove/backend/internal/models"
	"github.com/trove/backend/internal/services"
)

// ModerationHandler is the staff console's surface: the pending queue,
// decision previews, decisions, and bulk strike totals.
type ModerationHandler struct {
	controller *services.ReportController
}

func NewModerationHandler(controller *services.ReportController) *ModerationHandler {
	return &ModerationHandler{controller: controller}
}

// ListReports returns the pending queue, optionally narrowed to one reported
// user via ?user_id=.
func (h *ModerationHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	staffID := middleware.GetStaffID(r.Context())

	ctx, cancel := contextWithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if userID := r.URL.Query().Get("user_id"); userID != "" {
		reports, err := h.controller.PendingReportsForUser(ctx, staffID, userID)
		if err != nil {
			h.writeError(w, err, "Failed to list reports")
			return
		}
		writeJSON(w, http.StatusOK, models.NewSuccessResponse(reports))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	reports, err := h.controller.PendingReports(ctx, staffID, limit)
	if err != nil {
		h.writeError(w, err, "Failed to list reports")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(reports))
}

// PreviewDecision shows what the resolver recommends without changing
// anything.
func (h *ModerationHandler) PreviewDecision(w http.ResponseWriter, r *http.Request) {
	staffID := middleware.GetStaffID(r.Context())
	reportID := chi.URLParam(r, "reportId")

	ctx, cancel := contextWithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	preview, err := h.controller.Preview(ctx, staffID, reportID)
	if err != nil {
		h.writeError(w, err, "Failed to preview decision")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(preview))
}

// Decide applies an admin decision to a pending report.
func (h *ModerationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	staffID := middleware.GetStaffID(r.Context())
	reportID := chi.URLParam(r, "reportId")

	var req models.AdminDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.controller.Decide(ctx, staffID, reportID, &req)
	if err != nil {
		var partial *services.PartialFailureError
		if errors.As(err, &partial) {
			// The strike committed; the rest is queued for reconciliation.
			log.Printf("[Moderation] report=%s partial failure stage=%s repair=%s: %v", reportID, partial.Stage, partial.RepairID, partial.Err)
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(
				fmt.Sprintf("Enforcement partially applied; repair %s queued", partial.RepairID)))
			return
		}
		h.writeError(w, err, "Failed to apply decision")
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(result))
}

// StrikeHistory returns one user's ledger entries, newest first.
func (h *ModerationHandler) StrikeHistory(w http.ResponseWriter, r *http.Request) {
	staffID := middleware.GetStaffID(r.Context())
	userID := chi.URLParam(r, "userId")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	ctx, cancel := contextWithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	strikes, err := h.controller.StrikeHistory(ctx, staffID, userID, limit)
	if err != nil {
		h.writeError(w, err, "Failed to list strike history")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(strikes))
}

// StrikeTotals resolves current strike totals for a batch of user IDs.
func (h *ModerationHandler) StrikeTotals(w http.ResponseWriter, r *http.Request) {
	staffID := middleware.GetStaffID(r.Context())

	var req models.StrikeTotalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	totals, err := h.controller.StrikeTotals(ctx, staffID, req.UserIDs)
	if err != nil {
		h.writeError(w, err, "Failed to resolve strike totals")
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(totals))
}

func (h *ModerationHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrNotAdmin):
		writeJSON(w, http.StatusForbidden, models.NewErrorResponse("Admin access required"))
	case errors.Is(err, services.ErrReportNotFound):
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Report not found"))
	case errors.Is(err, services.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("User not found"))
	case errors.Is(err, services.ErrListingNotFound):
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Listing not found"))
	case errors.Is(err, services.ErrAlreadyProcessed):
		writeJSON(w, http.StatusConflict, models.NewErrorResponse("Report has already been processed"))
	case errors.Is(err, services.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse(err.Error()))
	default:
		log.Printf("[Moderation] %s: %v", fallback, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse(fallback))
	}
}
