package httpapi

import (
	"net/http"
	"strings"

	"GameNightwebserver/internal/domain"
)

type createEventRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Date        string `json:"date" validate:"required"`
	Time        string `json:"time" validate:"required"`
	Location    string `json:"location" validate:"required"`
	MaxPlayers  *int   `json:"max_players" validate:"omitempty,min=1"`
	GameID      string `json:"game_id"`
}

func (a *api) handleEventsCreate(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req createEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	e, err := a.gateway.CreateEvent(r.Context(), ac.UserID, domain.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		MaxPlayers:  req.MaxPlayers,
		GameID:      strings.TrimSpace(req.GameID),
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, e)
}

func (a *api) handleEventsList(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	out, err := a.eventsSvc.ListEventsForUser(r.Context(), ac.UserID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []domain.EventSummary{}
	}
	WriteJSON(w, http.StatusOK, out)
}

func (a *api) handleEventsCalendar(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	q := r.URL.Query()
	days, err := a.views.Calendar(r.Context(), ac.UserID, strings.TrimSpace(q.Get("from")), strings.TrimSpace(q.Get("to")))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (a *api) handleEventsGet(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	e, err := a.eventsSvc.GetEvent(r.Context(), ac.UserID, id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, e)
}

type updateEventRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Location    *string `json:"location"`
	MaxPlayers  *int    `json:"max_players" validate:"omitempty,min=1"`
	GameID      *string `json:"game_id"`
}

func (a *api) handleEventsUpdate(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	e, err := a.gateway.UpdateEvent(r.Context(), ac.UserID, id, domain.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
		Location:    req.Location,
		MaxPlayers:  req.MaxPlayers,
		GameID:      req.GameID,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, e)
}

func (a *api) handleEventsDelete(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := a.gateway.DeleteEvent(r.Context(), ac.UserID, id); err != nil {
		WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type inviteRequest struct {
	UserIDs []string `json:"user_ids" validate:"required,min=1,max=100,dive,required"`
}

func (a *api) handleEventsInvite(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req inviteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	n, err := a.gateway.InviteAttendees(r.Context(), ac.UserID, id, req.UserIDs)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"invited": n})
}

type rsvpRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted declined"`
}

func (a *api) handleEventsRSVP(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req rsvpRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	att, err := a.gateway.RespondToInvitation(r.Context(), ac.UserID, id, domain.AttendeeStatus(req.Status))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, att)
}

func (a *api) handleEventsCancel(w http.ResponseWriter, r *http.Request) {
	a.handleEventsTransition(w, r, domain.EventCancelled)
}

func (a *api) handleEventsComplete(w http.ResponseWriter, r *http.Request) {
	a.handleEventsTransition(w, r, domain.EventCompleted)
}

func (a *api) handleEventsTransition(w http.ResponseWriter, r *http.Request, to domain.EventStatus) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var (
		e   domain.Event
		err error
	)
	if to == domain.EventCancelled {
		e, err = a.gateway.CancelEvent(r.Context(), ac.UserID, id)
	} else {
		e, err = a.gateway.CompleteEvent(r.Context(), ac.UserID, id)
	}
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, e)
}

type attendedRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

func (a *api) handleEventsAttended(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req attendedRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	att, err := a.gateway.MarkAttended(r.Context(), ac.UserID, id, req.UserID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, att)
}

func (a *api) handleEventsRoster(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	roster, err := a.views.Roster(r.Context(), ac.UserID, id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, roster)
}
