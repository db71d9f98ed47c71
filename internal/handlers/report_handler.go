package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/trove/backend/internal/middleware"
	"github.com/trove/backend/internal/models"
	"github.com/trove/backend/internal/services"
)

// ReportHandler takes report submissions from marketplace users.
type ReportHandler struct {
	controller *services.ReportController
	recaptcha  *services.RecaptchaVerifier // optional
}

func NewReportHandler(controller *services.ReportController, recaptcha *services.RecaptchaVerifier) *ReportHandler {
	return &ReportHandler{controller: controller, recaptcha: recaptcha}
}

func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	var req models.CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if h.recaptcha != nil {
		remoteIP := clientIP(r)
		ok, reason, err := h.recaptcha.Verify(ctx, req.RecaptchaToken, remoteIP)
		if err != nil {
			log.Printf("[Report] recaptcha error ip=%s err=%v", remoteIP, err)
			writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to verify reCAPTCHA"))
			return
		}
		if !ok {
			log.Printf("[Report] recaptcha failed ip=%s reason=%s", remoteIP, reason)
			writeJSON(w, http.StatusForbidden, models.NewErrorResponse("reCAPTCHA verification failed"))
			return
		}
	}

	report, err := h.controller.Submit(ctx, userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrListingNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Listing not found"))
			return
		}
		if errors.Is(err, services.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid report"))
			return
		}
		log.Printf("[Report] submit failed user=%s err=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to submit report"))
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(report))
}
