package middleware

import (
	"net/http"

	"homeledger-server/src/models"
)

func DemoModeMiddleware(isDemo bool) func(http.Handler) http.Handler {
	allowedPosts := map[string]bool{
		"/api/login":    true,
		"/api/register": true,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Admins are exempt. This runs before JWT auth, so read the
			// claims straight from the token.
			if claims, err := ParseTokenFromRequest(r); err == nil {
				if role, ok := claims["role"].(string); ok && role == models.RoleAdmin {
					next.ServeHTTP(w, r)
					return
				}
			}

			if isDemo && r.Method != http.MethodGet {
				if r.Method == http.MethodPost && allowedPosts[r.URL.Path] {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "Demo mode: only GET requests are allowed", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
