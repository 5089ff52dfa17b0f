package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"GameNightwebserver/internal/domain"
)

func (a *api) handleUsersSearch(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	limit := queryInt(r, "limit", 20)

	out, err := a.usersSvc.Search(r.Context(), ac.UserID, q, limit)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []domain.UserMatch{}
	}

	WriteJSON(w, http.StatusOK, out)
}

// queryInt falls back to def when the parameter is missing or not a number.
func queryInt(r *http.Request, name string, def int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
