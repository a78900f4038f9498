package middleware

import (
	"net/http"

	"mesaclub/reservas/internal/auth"
	"mesaclub/reservas/internal/constants"
)

// RequireRole admits actors holding any of the listed roles. ADMIN
// always passes.
func RequireRole(roles ...constants.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.GetUserClaims(r.Context())
			if claims == nil {
				http.Error(w, "Unauthorized. Missing claims", http.StatusUnauthorized)
				return
			}

			if claims.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			for _, role := range roles {
				if claims.Role() == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			http.Error(w, "Forbidden. Insufficient role", http.StatusForbidden)
		})
	}
}

// IsAdminMiddleware admits only ADMIN actors.
func IsAdminMiddleware() func(http.Handler) http.Handler {
	return RequireRole()
}
