package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trove/backend/internal/models"
	"github.com/trove/backend/internal/services"
)

// AuthHandler signs moderation staff into the console. Marketplace users
// authenticate with Firebase instead and never hit this endpoint.
type AuthHandler struct {
	staff         *services.MongoStaffService
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthHandler(staff *services.MongoStaffService, jwtSecret string, jwtExpiration time.Duration) *AuthHandler {
	return &AuthHandler{
		staff:         staff,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.StaffLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errs))
		return
	}

	ctx, cancel := contextWithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, err := h.staff.Login(ctx, &req)
	if err != nil {
		if errors.Is(err, services.ErrStaffNotFound) || errors.Is(err, services.ErrInvalidPassword) {
			writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid email or password"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Login failed"))
		return
	}

	token, err := h.generateToken(user.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to generate token"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.StaffAuthResponse{
		Token: token,
		User:  *user,
	}))
}

func (h *AuthHandler) generateToken(staffID string) (string, error) {
	claims := jwt.MapClaims{
		"staff_id": staffID,
		"exp":      time.Now().Add(h.jwtExpiration).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
