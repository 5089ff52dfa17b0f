package httpapi

import (
	"net/http"
	"strings"

	"GameNightwebserver/internal/domain"
)

func (a *api) handleFriendsOverview(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	out, err := a.friendsSvc.ListOverview(r.Context(), ac.UserID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleFriendsList(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	friends, err := a.views.FriendList(r.Context(), ac.UserID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if friends == nil {
		friends = []domain.Friend{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"friends": friends})
}

type usernameRequest struct {
	Username string `json:"username" validate:"required"`
}

func (a *api) handleFriendsRequest(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req usernameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	fr, err := a.gateway.RequestFriendship(r.Context(), ac.UserID, req.Username)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, fr)
}

type respondRequest struct {
	RequesterID string `json:"requester_id"`
	EdgeID      string `json:"edge_id"`
	Decision    string `json:"decision" validate:"required,oneof=accepted rejected"`
}

func (a *api) handleFriendsRespond(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req respondRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	req.RequesterID = strings.TrimSpace(req.RequesterID)
	req.EdgeID = strings.TrimSpace(req.EdgeID)
	if (req.RequesterID == "") == (req.EdgeID == "") {
		WriteDomainError(w, validationField("requester_id", "exactly one of requester_id or edge_id is required"))
		return
	}

	decision := domain.FriendDecision(req.Decision)
	var (
		f   domain.Friendship
		err error
	)
	if req.EdgeID != "" {
		f, err = a.gateway.RespondToRequestByID(r.Context(), ac.UserID, req.EdgeID, decision)
	} else {
		f, err = a.gateway.RespondToRequest(r.Context(), ac.UserID, req.RequesterID, decision)
	}
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"decision": decision, "friendship": f})
}

func (a *api) handleFriendsRemove(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := a.gateway.RemoveFriendship(r.Context(), ac.UserID, id); err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"id": id, "status": "removed"})
}

func (a *api) handleFriendsBlock(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req usernameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	f, err := a.gateway.Block(r.Context(), ac.UserID, req.Username)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, f)
}

func (a *api) handleFriendsUnblock(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	username, ok := pathID(w, r, "username")
	if !ok {
		return
	}

	if err := a.gateway.Unblock(r.Context(), ac.UserID, username); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
