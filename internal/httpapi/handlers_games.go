package httpapi

import (
	"net/http"

	"GameNightwebserver/internal/domain"
)

func (a *api) handleGamesList(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	games, err := a.gamesSvc.ListGames(r.Context(), ac.UserID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if games == nil {
		games = []domain.UserGame{}
	}
	WriteJSON(w, http.StatusOK, games)
}

type createGameRequest struct {
	Title  string `json:"title" validate:"required"`
	Status string `json:"status" validate:"omitempty,oneof=owned want_to_play played"`
	Notes  string `json:"notes"`
}

func (a *api) handleGamesCreate(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req createGameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	status := domain.GameStatus(req.Status)
	if status == "" {
		status = domain.GameOwned
	}

	g, err := a.gamesSvc.AddGame(r.Context(), ac.UserID, req.Title, status, req.Notes)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, g)
}

type updateGameRequest struct {
	Title  *string `json:"title"`
	Status *string `json:"status" validate:"omitempty,oneof=owned want_to_play played"`
	Notes  *string `json:"notes"`
}

func (a *api) handleGamesUpdate(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateGameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	patch := domain.GamePatch{Title: req.Title, Notes: req.Notes}
	if req.Status != nil {
		s := domain.GameStatus(*req.Status)
		patch.Status = &s
	}

	g, err := a.gamesSvc.UpdateGame(r.Context(), ac.UserID, id, patch)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, g)
}

func (a *api) handleGamesDelete(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := a.gamesSvc.DeleteGame(r.Context(), ac.UserID, id); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
