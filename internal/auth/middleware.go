package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const emailKey contextKey = "auth_email"

// RequireToken rejects requests without a valid bearer token before
// any store access. The header is split on whitespace and the second
// field is the token, so "Bearer <jwt>" parses regardless of extra
// spacing.
func RequireToken(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				http.Error(w, "unauthorized access", http.StatusUnauthorized)
				return
			}

			fields := strings.Fields(header)
			if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
				http.Error(w, "unauthorized access", http.StatusUnauthorized)
				return
			}

			email, err := issuer.Verify(fields[1])
			if err != nil {
				http.Error(w, "forbidden access", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), emailKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EmailFromContext returns the verified identity set by RequireToken.
func EmailFromContext(ctx context.Context) string {
	if email, ok := ctx.Value(emailKey).(string); ok {
		return email
	}
	return ""
}
