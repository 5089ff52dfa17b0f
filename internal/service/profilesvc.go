package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"GameNightwebserver/internal/domain"
)

type ProfileStore interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch, when time.Time) (domain.User, error)
}

const (
	nameMaxLen          = 48
	bioMaxLen           = 1000
	favoriteGamesMaxLen = 500
	pictureRefMaxLen    = 512
)

type ProfileService struct {
	Store ProfileStore
	Now   func() time.Time
}

func (s *ProfileService) GetUser(ctx context.Context, userID string) (domain.User, error) {
	return s.Store.GetUserByID(ctx, userID)
}

// UpdateProfile applies the non-nil fields of patch. Text fields are stored
// as plain text; the profile picture is kept as an opaque reference.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) (domain.User, error) {
	if patch.Empty() {
		return s.Store.GetUserByID(ctx, userID)
	}

	fields := map[string]string{}
	textField(fields, "first_name", patch.FirstName, nameMaxLen)
	textField(fields, "last_name", patch.LastName, nameMaxLen)
	textField(fields, "bio", patch.Bio, bioMaxLen)
	textField(fields, "favorite_games", patch.FavoriteGames, favoriteGamesMaxLen)
	if patch.ProfilePicture != nil {
		ref := strings.TrimSpace(*patch.ProfilePicture)
		if msg := checkPictureRef(ref); msg != "" {
			fields["profile_picture"] = msg
		}
		patch.ProfilePicture = &ref
	}
	if err := validationOrNil(fields); err != nil {
		return domain.User{}, err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return s.Store.UpdateProfile(ctx, userID, patch, now().UTC().Truncate(time.Millisecond))
}

// checkPictureRef accepts an empty value (clears the picture), an http(s) URL
// or a relative path such as the key an upload service hands back.
func checkPictureRef(ref string) string {
	if ref == "" {
		return ""
	}
	if len(ref) > pictureRefMaxLen {
		return "too long"
	}
	if strings.ContainsAny(ref, " \t\r\n<>\"") {
		return "invalid reference"
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "invalid reference"
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return "must be an http(s) url or a relative path"
	}
	return ""
}
