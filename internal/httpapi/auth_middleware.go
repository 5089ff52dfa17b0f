package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"

	"GameNightwebserver/internal/auth"
	"GameNightwebserver/internal/domain"
)

type authCtxKey int

const authContextKey authCtxKey = iota

func (a *api) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.BearerToken(r)
		if !ok {
			WriteDomainError(w, domain.ErrUnauthorized)
			return
		}

		ac, err := a.authSvc.Authenticate(r.Context(), token)
		if err != nil {
			WriteDomainError(w, err)
			return
		}

		setRequestUser(r.Context(), ac.UserID)
		ctx := context.WithValue(r.Context(), authContextKey, ac)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (a *api) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		ac, ok := CurrentAuth(r.Context())
		if !ok || !ac.IsAdmin {
			WriteDomainError(w, domain.ErrAdminOnly)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func CurrentAuth(ctx context.Context) (domain.AuthContext, bool) {
	ac, ok := ctx.Value(authContextKey).(domain.AuthContext)
	return ac, ok
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
