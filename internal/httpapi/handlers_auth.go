package httpapi

import (
	"net/http"
	"strings"
	"time"

	"GameNightwebserver/internal/domain"
	"GameNightwebserver/internal/service"
)

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func newAuthResponse(u domain.User, tok domain.IssuedToken) authResponse {
	return authResponse{User: newUserResponse(u), Token: tok.Token, ExpiresAt: tok.ExpiresAt}
}

func clientInfo(r *http.Request) service.ClientInfo {
	return service.ClientInfo{IP: clientIP(r), UserAgent: r.UserAgent()}
}

func (a *api) handleAuthRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	u, tok, err := a.authSvc.Register(r.Context(), req.Username, req.Password, clientInfo(r))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	a.logger.Info("auth: user registered", "user_id", u.ID)
	WriteJSON(w, http.StatusCreated, newAuthResponse(u, tok))
}

func (a *api) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	now := time.Now()
	ip := clientIP(r)
	if !a.loginLimiter.Allow("ip:"+ip, now) || !a.loginLimiter.Allow("login:"+strings.ToLower(strings.TrimSpace(req.Username)), now) {
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many attempts")
		return
	}

	u, tok, err := a.authSvc.Login(r.Context(), req.Username, req.Password, clientInfo(r))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, newAuthResponse(u, tok))
}

func (a *api) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	if err := a.authSvc.Logout(r.Context(), ac); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
