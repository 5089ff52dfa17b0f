package domain

import "time"

type GameStatus string

const (
	GameOwned      GameStatus = "owned"
	GameWantToPlay GameStatus = "want_to_play"
	GamePlayed     GameStatus = "played"
)

func (s GameStatus) Valid() bool {
	switch s {
	case GameOwned, GameWantToPlay, GamePlayed:
		return true
	}
	return false
}

type UserGame struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Status    GameStatus `json:"status"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type GamePatch struct {
	Title  *string
	Status *GameStatus
	Notes  *string
}
