package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"GameNightwebserver/internal/domain"
)

const adminPageSize = 50

func (a *api) handleAdminUsersList(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	limit := queryInt(r, "limit", adminPageSize)
	if limit <= 0 || limit > 200 {
		limit = adminPageSize
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	var (
		users []domain.User
		err   error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		users, err = a.adminSvc.SearchUsers(r.Context(), ac, q, limit, offset)
	} else {
		users, err = a.adminSvc.ListUsers(r.Context(), ac, limit, offset)
	}
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"users":  out,
		"limit":  limit,
		"offset": offset,
	})
}

func (a *api) handleAdminUsersExport(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	data, err := a.adminSvc.ExportUsers(r.Context(), ac)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	name := fmt.Sprintf("users-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (a *api) handleAdminUsersDelete(w http.ResponseWriter, r *http.Request) {
	a.adminDelete(w, r, "user", a.adminSvc.DeleteUser)
}

func (a *api) handleAdminEventsDelete(w http.ResponseWriter, r *http.Request) {
	a.adminDelete(w, r, "event", a.adminSvc.DeleteEvent)
}

func (a *api) handleAdminFriendshipsDelete(w http.ResponseWriter, r *http.Request) {
	a.adminDelete(w, r, "friendship", a.adminSvc.DeleteFriendship)
}

func (a *api) adminDelete(w http.ResponseWriter, r *http.Request, kind string, del func(ctx context.Context, actor domain.AuthContext, id string) error) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := del(r.Context(), ac, id); err != nil {
		WriteDomainError(w, err)
		return
	}
	a.logger.Info("admin: deleted "+kind, "id", id, "admin_id", ac.UserID)
	w.WriteHeader(http.StatusNoContent)
}
