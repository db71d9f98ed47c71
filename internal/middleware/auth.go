package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/trove/backend/internal/models"
)

type contextKey string

const (
	// UserIDKey holds the authenticated marketplace user's ID.
	UserIDKey contextKey = "userID"
	// StaffIDKey holds the authenticated moderation staff member's ID.
	StaffIDKey contextKey = "staffID"
)

// StaffAuth validates the moderation console's JWT and stores the staff ID on
// the request context. Tokens are HS256, issued by the staff login endpoint.
func StaffAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Authorization header required"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid authorization header format"))
				return
			}

			token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid or expired token"))
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid token claims"))
				return
			}

			staffID, ok := claims["staff_id"].(string)
			if !ok || staffID == "" {
				writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid staff ID in token"))
				return
			}

			ctx := context.WithValue(r.Context(), StaffIDKey, staffID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetStaffID extracts the staff ID from context.
func GetStaffID(ctx context.Context) string {
	staffID, ok := ctx.Value(StaffIDKey).(string)
	if !ok {
		return ""
	}
	return staffID
}

// GetUserID extracts the marketplace user ID from context.
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
