// Package memory is a mutex-guarded store with the same contracts as the
// Postgres store. It backs local runs without a database and service tests.
package memory

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"GameNightwebserver/internal/domain"
)

type attendeeKey struct{ eventID, userID string }

type gameKey struct{ userID, title string }

type pairKey struct{ lo, hi string }

func pairOf(a, b string) pairKey {
	lo, hi := domain.PairKey(a, b)
	return pairKey{lo: lo, hi: hi}
}

// DB holds every table. One lock covers each store operation end to end,
// which gives the same all-or-nothing behaviour as a transaction.
type DB struct {
	mu sync.Mutex

	users      map[string]domain.UserWithPassword
	usernames  map[string]string
	sessions   map[string]sessionRow
	friendship map[string]domain.Friendship
	pairs      map[pairKey]string
	events     map[string]domain.Event
	attendees  map[attendeeKey]domain.Attendee
	games      map[string]domain.UserGame
	gameTitles map[gameKey]string
	tokens     map[string]domain.NotificationToken

	newID func() string
}

type sessionRow struct {
	domain.Session
	IP        string
	UserAgent string
}

func NewDB() *DB {
	return &DB{
		users:      map[string]domain.UserWithPassword{},
		usernames:  map[string]string{},
		sessions:   map[string]sessionRow{},
		friendship: map[string]domain.Friendship{},
		pairs:      map[pairKey]string{},
		events:     map[string]domain.Event{},
		attendees:  map[attendeeKey]domain.Attendee{},
		games:      map[string]domain.UserGame{},
		gameTitles: map[gameKey]string{},
		tokens:     map[string]domain.NotificationToken{},
		newID:      uuid.NewString,
	}
}

// deleteUserLocked removes a user and everything that references it,
// mirroring ON DELETE CASCADE in the SQL schema.
func (db *DB) deleteUserLocked(userID string) {
	u := db.users[userID]
	delete(db.usernames, u.Username)
	delete(db.users, userID)

	for id, s := range db.sessions {
		if s.UserID == userID {
			delete(db.sessions, id)
		}
	}
	for id, f := range db.friendship {
		if f.Involves(userID) {
			db.deleteFriendshipLocked(id)
		}
	}
	for id, e := range db.events {
		if e.HostID == userID {
			db.deleteEventLocked(id)
		}
	}
	for k := range db.attendees {
		if k.userID == userID {
			delete(db.attendees, k)
		}
	}
	for id, g := range db.games {
		if g.UserID == userID {
			db.deleteGameLocked(id)
		}
	}
	for tok, t := range db.tokens {
		if t.UserID == userID {
			delete(db.tokens, tok)
		}
	}
}

func (db *DB) deleteFriendshipLocked(id string) {
	f, ok := db.friendship[id]
	if !ok {
		return
	}
	delete(db.pairs, pairOf(f.RequesterID, f.AddresseeID))
	delete(db.friendship, id)
}

func (db *DB) deleteEventLocked(id string) {
	delete(db.events, id)
	for k := range db.attendees {
		if k.eventID == id {
			delete(db.attendees, k)
		}
	}
}

// deleteGameLocked clears the reference on events, like ON DELETE SET NULL.
// The cached title on the event stays.
func (db *DB) deleteGameLocked(id string) {
	g, ok := db.games[id]
	if !ok {
		return
	}
	delete(db.gameTitles, gameKey{g.UserID, g.Title})
	delete(db.games, id)
	for eid, e := range db.events {
		if e.GameID == id {
			e.GameID = ""
			db.events[eid] = e
		}
	}
}

func (db *DB) summaryLocked(userID string) domain.UserSummary {
	if u, ok := db.users[userID]; ok {
		return u.Summary()
	}
	return domain.UserSummary{ID: userID}
}

func (db *DB) seatsHeldLocked(eventID string) int {
	n := 1
	for k, a := range db.attendees {
		if k.eventID == eventID && a.Status.HoldsSeat() {
			n++
		}
	}
	return n
}

func sortFriendships(rows []domain.Friendship) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		return rows[i].ID < rows[j].ID
	})
}

func (db *DB) pairEdgeLocked(a, b string) (domain.Friendship, bool) {
	id, ok := db.pairs[pairOf(a, b)]
	if !ok {
		return domain.Friendship{}, false
	}
	f, ok := db.friendship[id]
	return f, ok
}

// pairStatusLocked returns the status of the edge between a and b, if any.
func (db *DB) pairStatusLocked(a, b string) (domain.FriendshipStatus, bool) {
	f, ok := db.pairEdgeLocked(a, b)
	return f.Status, ok
}
