package httpapi

import (
	"net/http"
	"time"

	"GameNightwebserver/internal/domain"
)

type userResponse struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	DisplayName    string     `json:"display_name"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	FavoriteGames  string     `json:"favorite_games,omitempty"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
	IsAdmin        bool       `json:"is_admin,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}

func newUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Username:       u.Username,
		DisplayName:    u.DisplayName(),
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Bio:            u.Bio,
		FavoriteGames:  u.FavoriteGames,
		ProfilePicture: u.ProfilePicture,
		IsAdmin:        u.IsAdmin,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
		LastLoginAt:    u.LastLoginAt,
	}
}

// publicProfile is what other users see: no admin flag, no login times.
type publicProfile struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	Bio            string `json:"bio,omitempty"`
	FavoriteGames  string `json:"favorite_games,omitempty"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

func (a *api) handleUsersMe(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	u, err := a.profileSvc.GetUser(r.Context(), ac.UserID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, newUserResponse(u))
}

type updateProfileRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Bio            *string `json:"bio"`
	FavoriteGames  *string `json:"favorite_games"`
	ProfilePicture *string `json:"profile_picture"`
}

func (a *api) handleUsersMeUpdate(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req updateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	u, err := a.profileSvc.UpdateProfile(r.Context(), ac.UserID, domain.ProfilePatch{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Bio:            req.Bio,
		FavoriteGames:  req.FavoriteGames,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, newUserResponse(u))
}

func (a *api) handleUsersMeDelete(w http.ResponseWriter, r *http.Request) {
	ac, ok := CurrentAuth(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	if err := a.authSvc.DeleteAccount(r.Context(), ac.UserID); err != nil {
		WriteDomainError(w, err)
		return
	}
	a.logger.Info("users: account deleted", "user_id", ac.UserID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) handleUsersGet(w http.ResponseWriter, r *http.Request) {
	if _, ok := CurrentAuth(r.Context()); !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	u, err := a.profileSvc.GetUser(r.Context(), id)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, publicProfile{
		ID:             u.ID,
		Username:       u.Username,
		DisplayName:    u.DisplayName(),
		Bio:            u.Bio,
		FavoriteGames:  u.FavoriteGames,
		ProfilePicture: u.ProfilePicture,
	})
}

func validationField(field, msg string) error {
	return domain.NewValidationError(map[string]string{field: msg})
}
