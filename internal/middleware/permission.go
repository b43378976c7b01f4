package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"pet-health-monitor/internal/domain/permissions"
)

// PermissionChecker lo implementa permissions.Service.
type PermissionChecker interface {
	Check(ctx context.Context, userID string, p permissions.Permission) error
}

// Guard arma un middleware que exige un permiso puntual.
type Guard func(p permissions.Permission) func(http.Handler) http.Handler

// RequirePermission devuelve un Guard:
// - sin claims => 401
// - usuario desconocido o sin permiso => 403
// Si checker == nil solo exige autenticación.
func RequirePermission(checker PermissionChecker) Guard {
	return func(p permissions.Permission) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, ok := GetClaims(r.Context())
				if !ok || strings.TrimSpace(claims.UserID) == "" {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				if checker != nil {
					if err := checker.Check(r.Context(), claims.UserID, p); err != nil {
						if errors.Is(err, permissions.ErrForbidden) || errors.Is(err, permissions.ErrUnknownUser) {
							http.Error(w, "forbidden", http.StatusForbidden)
							return
						}
						http.Error(w, "internal error", http.StatusInternalServerError)
						return
					}
				}
				next.ServeHTTP(w, r)
			})
		}
	}
}
