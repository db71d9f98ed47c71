package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/trove/backend/internal/middleware"
	"github.com/trove/backend/internal/models"
	"github.com/trove/backend/internal/services"
)

type NotificationHandler struct {
	notifications *services.MongoNotificationService
}

func NewNotificationHandler(notifications *services.MongoNotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	ctx, cancel := contextWithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	notifications, err := h.notifications.ListForUser(ctx, userID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to list notifications"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(notifications))
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	notificationID := chi.URLParam(r, "notificationId")

	ctx, cancel := contextWithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.notifications.MarkRead(ctx, userID, notificationID); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Notification not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to mark notification read"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]bool{"read": true}))
}
