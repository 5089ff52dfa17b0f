package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"GameNightwebserver/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventsStore struct {
	pool *pgxpool.Pool
}

func NewEventsStore(pool *pgxpool.Pool) *EventsStore {
	return &EventsStore{pool: pool}
}

const eventColumns = `e.id, e.host_id, e.title, e.description, e.event_date, e.event_time, e.location, e.max_players, e.game_id, e.game_title, e.status, e.created_at, e.updated_at`

func scanEvent(row pgx.Row, extra ...any) (domain.Event, error) {
	var (
		e        domain.Event
		idUUID   pgtype.UUID
		hostUUID pgtype.UUID
		date     pgtype.Date
		maxP     pgtype.Int4
		gameUUID pgtype.UUID
	)
	dest := []any{
		&idUUID,
		&hostUUID,
		&e.Title,
		&e.Description,
		&date,
		&e.Time,
		&e.Location,
		&maxP,
		&gameUUID,
		&e.GameTitle,
		&e.Status,
		&e.CreatedAt,
		&e.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.Event{}, err
	}
	e.ID = uuidOrEmpty(idUUID)
	e.HostID = uuidOrEmpty(hostUUID)
	e.Date = dateString(date)
	e.MaxPlayers = int4Ptr(maxP)
	e.GameID = uuidOrEmpty(gameUUID)
	return e, nil
}

func parseEventDate(s string) (time.Time, error) {
	d, err := time.Parse(domain.EventDateLayout, s)
	if err != nil {
		return time.Time{}, domain.NewValidationError(map[string]string{"date": "must be YYYY-MM-DD"})
	}
	return d, nil
}

func (s *EventsStore) CreateEvent(ctx context.Context, hostID string, in domain.EventInput, gameTitle string, when time.Time) (domain.Event, error) {
	date, err := parseEventDate(in.Date)
	if err != nil {
		return domain.Event{}, err
	}
	if in.GameID != "" && !validID(in.GameID) {
		return domain.Event{}, domain.ErrGameNotFound
	}

	const q = `
		WITH e AS (
			INSERT INTO events (host_id, title, description, event_date, event_time, location, max_players, game_id, game_title, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
			RETURNING *
		)
		SELECT ` + eventColumns + ` FROM e
	`
	// Catalog entries are private, so a game owned by someone else reads as missing.
	if in.GameID != "" {
		var owner pgtype.UUID
		err := s.pool.QueryRow(ctx, `SELECT user_id FROM user_games WHERE id = $1`, in.GameID).Scan(&owner)
		if errors.Is(err, pgx.ErrNoRows) || (err == nil && uuidOrEmpty(owner) != hostID) {
			return domain.Event{}, domain.ErrGameNotFound
		}
		if err != nil {
			return domain.Event{}, fmt.Errorf("check event game: %w", err)
		}
	}

	e, err := scanEvent(s.pool.QueryRow(ctx, q,
		hostID,
		in.Title,
		in.Description,
		date,
		in.Time,
		in.Location,
		intOrNil(in.MaxPlayers),
		nullIfEmpty(in.GameID),
		gameTitle,
		when,
	))
	if err != nil {
		if code, constraint := pgErrorCode(err); code == pgForeignKeyViolation {
			if constraint == "events_game_id_fkey" {
				return domain.Event{}, domain.ErrGameNotFound
			}
			return domain.Event{}, domain.ErrUserNotFound
		}
		return domain.Event{}, fmt.Errorf("create event: %w", err)
	}
	return e, nil
}

func (s *EventsStore) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	if !validID(eventID) {
		return domain.Event{}, domain.ErrEventNotFound
	}
	e, err := scanEvent(s.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// lockEvent reads the event row FOR UPDATE together with the seats
// currently held, counting the host.
func lockEvent(ctx context.Context, tx pgx.Tx, eventID string) (domain.Event, int, error) {
	if !validID(eventID) {
		return domain.Event{}, 0, domain.ErrEventNotFound
	}
	e, err := scanEvent(tx.QueryRow(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1 FOR UPDATE`, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, 0, domain.ErrEventNotFound
		}
		return domain.Event{}, 0, fmt.Errorf("lock event: %w", err)
	}

	const seatsQ = `
		SELECT 1 + count(*)
		FROM event_attendees
		WHERE event_id = $1 AND status IN ('invited', 'accepted', 'attended')
	`
	var seats int
	if err := tx.QueryRow(ctx, seatsQ, eventID).Scan(&seats); err != nil {
		return domain.Event{}, 0, fmt.Errorf("count seats: %w", err)
	}
	return e, seats, nil
}

func (s *EventsStore) UpdateEvent(ctx context.Context, eventID string, patch domain.EventPatch, gameTitle *string, when time.Time) (domain.Event, error) {
	var date any
	if patch.Date != nil {
		d, err := parseEventDate(*patch.Date)
		if err != nil {
			return domain.Event{}, err
		}
		date = d
	}
	var gameID any
	if patch.GameID != nil && *patch.GameID != "" {
		if !validID(*patch.GameID) {
			return domain.Event{}, domain.ErrGameNotFound
		}
		gameID = *patch.GameID
	}

	var out domain.Event
	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		e, seats, err := lockEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if e.Status != domain.EventScheduled {
			return domain.ErrEventClosed
		}
		if patch.MaxPlayers != nil && *patch.MaxPlayers < seats {
			return domain.ErrEventFull
		}

		const q = `
			WITH e AS (
				UPDATE events
				SET title = COALESCE($2, title),
					description = COALESCE($3, description),
					event_date = COALESCE($4, event_date),
					event_time = COALESCE($5, event_time),
					location = COALESCE($6, location),
					max_players = COALESCE($7, max_players),
					game_id = CASE WHEN $8 THEN $9::uuid ELSE game_id END,
					game_title = COALESCE($10, game_title),
					updated_at = $11
				WHERE id = $1
				RETURNING *
			)
			SELECT ` + eventColumns + ` FROM e
		`
		out, err = scanEvent(tx.QueryRow(ctx, q,
			eventID,
			patch.Title,
			patch.Description,
			date,
			patch.Time,
			patch.Location,
			intOrNil(patch.MaxPlayers),
			patch.GameID != nil,
			gameID,
			gameTitle,
			when,
		))
		if err != nil {
			if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
				return domain.ErrGameNotFound
			}
			return fmt.Errorf("update event: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}
	return out, nil
}

// SetEventStatus moves the event from -> to and reports false when it was not in from.
func (s *EventsStore) SetEventStatus(ctx context.Context, eventID string, from, to domain.EventStatus, when time.Time) (bool, error) {
	if !validID(eventID) {
		return false, domain.ErrEventNotFound
	}
	ct, err := s.pool.Exec(ctx, `UPDATE events SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`, eventID, string(from), string(to), when)
	if err != nil {
		return false, fmt.Errorf("set event status: %w", err)
	}
	if ct.RowsAffected() == 1 {
		return true, nil
	}
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return false, err
	}
	return false, nil
}

func (s *EventsStore) DeleteEvent(ctx context.Context, eventID string) error {
	if !validID(eventID) {
		return domain.ErrEventNotFound
	}
	ct, err := s.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, eventID)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// InviteAttendees runs as one transaction with the event row locked, so
// concurrent batches cannot overbook max_players. The host's edges to the
// invitees are re-read under the pair locks Block also takes. Users already
// on the roster are skipped by the unique (event_id, user_id) constraint.
func (s *EventsStore) InviteAttendees(ctx context.Context, eventID string, userIDs []string, policy domain.InvitePolicy, when time.Time) ([]string, error) {
	for _, id := range userIDs {
		if !validID(id) {
			return nil, domain.ErrUserNotFound
		}
	}

	var fresh []string
	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		e, seats, err := lockEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if e.Status != domain.EventScheduled {
			return domain.ErrEventClosed
		}

		var known int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM users WHERE id = ANY($1::uuid[])`, userIDs).Scan(&known); err != nil {
			return fmt.Errorf("check invitees: %w", err)
		}
		if known != len(userIDs) {
			return domain.ErrUserNotFound
		}

		if err := lockPairs(ctx, tx, e.HostID, userIDs, false); err != nil {
			return err
		}
		edges, err := pairStatuses(ctx, tx, e.HostID, userIDs)
		if err != nil {
			return err
		}
		for _, id := range userIDs {
			status, ok := edges[id]
			if ok && status == domain.FriendshipBlocked {
				return domain.ErrUserBlocked
			}
			if policy.FriendsOnly && id != e.HostID && (!ok || status != domain.FriendshipAccepted) {
				return domain.ErrNotFriends
			}
		}

		existing := map[string]struct{}{}
		rows, err := tx.Query(ctx, `SELECT user_id FROM event_attendees WHERE event_id = $1 AND user_id = ANY($2::uuid[])`, eventID, userIDs)
		if err != nil {
			return fmt.Errorf("list existing attendees: %w", err)
		}
		for rows.Next() {
			var u pgtype.UUID
			if err := rows.Scan(&u); err != nil {
				rows.Close()
				return fmt.Errorf("scan attendee: %w", err)
			}
			existing[uuidOrEmpty(u)] = struct{}{}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("list existing attendees: %w", err)
		}

		fresh = make([]string, 0, len(userIDs))
		for _, id := range userIDs {
			if _, ok := existing[id]; ok || id == e.HostID {
				continue
			}
			fresh = append(fresh, id)
		}
		if len(fresh) == 0 {
			return nil
		}
		if e.MaxPlayers != nil && seats+len(fresh) > *e.MaxPlayers {
			return domain.ErrEventFull
		}

		const insert = `
			INSERT INTO event_attendees (event_id, user_id, status, created_at)
			SELECT $1, u, 'invited', $3 FROM unnest($2::uuid[]) AS u
			ON CONFLICT (event_id, user_id) DO NOTHING
		`
		if _, err := tx.Exec(ctx, insert, eventID, fresh, when); err != nil {
			if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("invite attendees: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fresh, nil
}

const attendeeColumns = `id, event_id, user_id, status, created_at, responded_at`

func scanAttendee(row pgx.Row) (domain.Attendee, error) {
	var (
		a           domain.Attendee
		idUUID      pgtype.UUID
		eventUUID   pgtype.UUID
		userUUID    pgtype.UUID
		respondedTS pgtype.Timestamptz
	)
	if err := row.Scan(&idUUID, &eventUUID, &userUUID, &a.Status, &a.CreatedAt, &respondedTS); err != nil {
		return domain.Attendee{}, err
	}
	a.ID = uuidOrEmpty(idUUID)
	a.EventID = uuidOrEmpty(eventUUID)
	a.UserID = uuidOrEmpty(userUUID)
	a.RespondedAt = timestamptzPtr(respondedTS)
	return a, nil
}

func (s *EventsStore) GetAttendee(ctx context.Context, eventID, userID string) (domain.Attendee, error) {
	if !validID(eventID) || !validID(userID) {
		return domain.Attendee{}, domain.ErrNotInvited
	}
	const q = `SELECT ` + attendeeColumns + ` FROM event_attendees WHERE event_id = $1 AND user_id = $2`
	a, err := scanAttendee(s.pool.QueryRow(ctx, q, eventID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Attendee{}, domain.ErrNotInvited
		}
		return domain.Attendee{}, fmt.Errorf("get attendee: %w", err)
	}
	return a, nil
}

// AnswerInvitation holds the event row FOR SHARE, so a concurrent cancel
// either lands first and is seen, or waits for the answer to commit.
func (s *EventsStore) AnswerInvitation(ctx context.Context, eventID, userID string, to domain.AttendeeStatus, when time.Time) (domain.Attendee, error) {
	if !validID(eventID) || !validID(userID) {
		return domain.Attendee{}, domain.ErrNotInvited
	}

	var out domain.Attendee
	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		var (
			hostUUID pgtype.UUID
			status   domain.EventStatus
		)
		err := tx.QueryRow(ctx, `SELECT host_id, status FROM events WHERE id = $1 FOR SHARE`, eventID).Scan(&hostUUID, &status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotInvited
			}
			return fmt.Errorf("lock event: %w", err)
		}

		const edgeQ = `SELECT ` + attendeeColumns + ` FROM event_attendees WHERE event_id = $1 AND user_id = $2 FOR UPDATE`
		a, err := scanAttendee(tx.QueryRow(ctx, edgeQ, eventID, userID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotInvited
			}
			return fmt.Errorf("lock attendee: %w", err)
		}
		if a.Status != domain.AttendeeInvited {
			return domain.ErrNotInvited
		}
		if status != domain.EventScheduled {
			return domain.ErrEventClosed
		}

		if to == domain.AttendeeAccepted {
			hostID := uuidOrEmpty(hostUUID)
			if err := lockPairs(ctx, tx, userID, []string{hostID}, false); err != nil {
				return err
			}
			edges, err := pairStatuses(ctx, tx, userID, []string{hostID})
			if err != nil {
				return err
			}
			if edges[hostID] == domain.FriendshipBlocked {
				return domain.ErrUserBlocked
			}
		}

		const q = `
			UPDATE event_attendees
			SET status = $2, responded_at = $3
			WHERE id = $1
			RETURNING ` + attendeeColumns
		out, err = scanAttendee(tx.QueryRow(ctx, q, a.ID, string(to), when))
		if err != nil {
			return fmt.Errorf("answer invitation: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Attendee{}, err
	}
	return out, nil
}

// MarkAttended moves an accepted edge to attended. The conditional update
// joins the event so a cancellation committed first wins.
func (s *EventsStore) MarkAttended(ctx context.Context, eventID, userID string) (domain.Attendee, error) {
	if !validID(eventID) {
		return domain.Attendee{}, domain.ErrEventNotFound
	}
	if !validID(userID) {
		return domain.Attendee{}, domain.ErrNotInvited
	}

	const q = `
		UPDATE event_attendees a
		SET status = 'attended'
		FROM events e
		WHERE e.id = a.event_id
		  AND a.event_id = $1 AND a.user_id = $2
		  AND a.status = 'accepted'
		  AND e.status <> 'cancelled'
		RETURNING a.id, a.event_id, a.user_id, a.status, a.created_at, a.responded_at
	`
	a, err := scanAttendee(s.pool.QueryRow(ctx, q, eventID, userID))
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Attendee{}, fmt.Errorf("mark attended: %w", err)
	}

	e, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Attendee{}, err
	}
	if e.Status == domain.EventCancelled {
		return domain.Attendee{}, domain.ErrEventClosed
	}
	if _, err := s.GetAttendee(ctx, eventID, userID); err != nil {
		return domain.Attendee{}, err
	}
	return domain.Attendee{}, domain.ErrInvalidTransition
}

func (s *EventsStore) ListAttendees(ctx context.Context, eventID string) ([]domain.Attendee, error) {
	if !validID(eventID) {
		return []domain.Attendee{}, nil
	}
	const q = `SELECT ` + attendeeColumns + ` FROM event_attendees WHERE event_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := s.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	defer rows.Close()

	out := []domain.Attendee{}
	for rows.Next() {
		a, err := scanAttendee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return out, nil
}

// ListEventsForUser returns hosted events and events the user has an edge
// to, tagged with the role and, for the latter, the user's own status.
func (s *EventsStore) ListEventsForUser(ctx context.Context, userID string) ([]domain.EventSummary, error) {
	const q = `
		SELECT ` + eventColumns + `, 'host', ''
		FROM events e
		WHERE e.host_id = $1
		UNION ALL
		SELECT ` + eventColumns + `, 'attendee', a.status
		FROM events e
		JOIN event_attendees a ON a.event_id = e.id
		WHERE a.user_id = $1
		ORDER BY 5, 6, 1
	`
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list events for user: %w", err)
	}
	defer rows.Close()

	out := []domain.EventSummary{}
	for rows.Next() {
		var (
			role   string
			status string
		)
		e, err := scanEvent(rows, &role, &status)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, domain.EventSummary{
			Event:    e,
			Role:     domain.EventRole(role),
			MyStatus: domain.AttendeeStatus(status),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events for user: %w", err)
	}
	return out, nil
}
