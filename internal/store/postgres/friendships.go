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

// FriendshipsStore relies on friendships_pair_uq, a unique index over the
// unordered pair, so at most one edge exists between two users no matter
// who asked first. Conditional writes re-check the edge state.
type FriendshipsStore struct {
	pool *pgxpool.Pool
}

func NewFriendshipsStore(pool *pgxpool.Pool) *FriendshipsStore {
	return &FriendshipsStore{pool: pool}
}

const friendshipColumns = `id, requester_id, addressee_id, status, created_at, updated_at, responded_at`

func scanFriendship(row pgx.Row) (domain.Friendship, error) {
	var (
		f           domain.Friendship
		idUUID      pgtype.UUID
		requester   pgtype.UUID
		addressee   pgtype.UUID
		respondedTS pgtype.Timestamptz
	)
	if err := row.Scan(&idUUID, &requester, &addressee, &f.Status, &f.CreatedAt, &f.UpdatedAt, &respondedTS); err != nil {
		return domain.Friendship{}, err
	}
	f.ID = uuidOrEmpty(idUUID)
	f.RequesterID = uuidOrEmpty(requester)
	f.AddresseeID = uuidOrEmpty(addressee)
	f.RespondedAt = timestamptzPtr(respondedTS)
	return f, nil
}

func (s *FriendshipsStore) CreateRequest(ctx context.Context, requesterID, addresseeID string, when time.Time) (domain.Friendship, error) {
	if requesterID == addresseeID {
		return domain.Friendship{}, domain.ErrSelfFriendship
	}
	if !validID(requesterID) || !validID(addresseeID) {
		return domain.Friendship{}, domain.ErrUserNotFound
	}

	const q = `
		INSERT INTO friendships (requester_id, addressee_id, status, created_at, updated_at)
		VALUES ($1, $2, 'pending', $3, $3)
		RETURNING ` + friendshipColumns

	f, err := scanFriendship(s.pool.QueryRow(ctx, q, requesterID, addresseeID, when))
	if err == nil {
		return f, nil
	}

	code, constraint := pgErrorCode(err)
	switch {
	case code == pgUniqueViolation && constraint == "friendships_pair_uq":
		existing, getErr := s.GetBetween(ctx, requesterID, addresseeID)
		if getErr == nil && existing.Status == domain.FriendshipBlocked {
			return domain.Friendship{}, domain.ErrUserBlocked
		}
		return domain.Friendship{}, domain.ErrFriendshipExists
	case code == pgForeignKeyViolation:
		return domain.Friendship{}, domain.ErrUserNotFound
	}
	return domain.Friendship{}, fmt.Errorf("create friend request: %w", err)
}

func (s *FriendshipsStore) GetFriendship(ctx context.Context, id string) (domain.Friendship, error) {
	if !validID(id) {
		return domain.Friendship{}, domain.ErrFriendshipNotFound
	}
	f, err := scanFriendship(s.pool.QueryRow(ctx, `SELECT `+friendshipColumns+` FROM friendships WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Friendship{}, domain.ErrFriendshipNotFound
		}
		return domain.Friendship{}, fmt.Errorf("get friendship: %w", err)
	}
	return f, nil
}

func (s *FriendshipsStore) GetBetween(ctx context.Context, userA, userB string) (domain.Friendship, error) {
	if !validID(userA) || !validID(userB) {
		return domain.Friendship{}, domain.ErrFriendshipNotFound
	}
	const q = `
		SELECT ` + friendshipColumns + `
		FROM friendships
		WHERE LEAST(requester_id, addressee_id) = LEAST($1::uuid, $2::uuid)
		  AND GREATEST(requester_id, addressee_id) = GREATEST($1::uuid, $2::uuid)
	`
	f, err := scanFriendship(s.pool.QueryRow(ctx, q, userA, userB))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Friendship{}, domain.ErrFriendshipNotFound
		}
		return domain.Friendship{}, fmt.Errorf("get friendship between: %w", err)
	}
	return f, nil
}

func (s *FriendshipsStore) Accept(ctx context.Context, edgeID, addresseeID string, when time.Time) (domain.Friendship, error) {
	if !validID(edgeID) {
		return domain.Friendship{}, domain.ErrNoSuchRequest
	}
	const q = `
		UPDATE friendships
		SET status = 'accepted', responded_at = $3, updated_at = $3
		WHERE id = $1 AND addressee_id = $2 AND status = 'pending'
		RETURNING ` + friendshipColumns

	f, err := scanFriendship(s.pool.QueryRow(ctx, q, edgeID, addresseeID, when))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Friendship{}, domain.ErrNoSuchRequest
		}
		return domain.Friendship{}, fmt.Errorf("accept friend request: %w", err)
	}
	return f, nil
}

// Reject deletes the request so the pair can start over later.
func (s *FriendshipsStore) Reject(ctx context.Context, edgeID, addresseeID string) error {
	return s.deletePending(ctx, "reject friend request",
		`DELETE FROM friendships WHERE id = $1 AND addressee_id = $2 AND status = 'pending'`, edgeID, addresseeID)
}

func (s *FriendshipsStore) Cancel(ctx context.Context, edgeID, requesterID string) error {
	return s.deletePending(ctx, "cancel friend request",
		`DELETE FROM friendships WHERE id = $1 AND requester_id = $2 AND status = 'pending'`, edgeID, requesterID)
}

func (s *FriendshipsStore) deletePending(ctx context.Context, op, q, edgeID, userID string) error {
	if !validID(edgeID) {
		return domain.ErrNoSuchRequest
	}
	ct, err := s.pool.Exec(ctx, q, edgeID, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNoSuchRequest
	}
	return nil
}

func (s *FriendshipsStore) Unfriend(ctx context.Context, edgeID, userID string) error {
	if !validID(edgeID) {
		return domain.ErrFriendshipNotFound
	}
	const q = `
		DELETE FROM friendships
		WHERE id = $1 AND status = 'accepted' AND (requester_id = $2 OR addressee_id = $2)
	`
	ct, err := s.pool.Exec(ctx, q, edgeID, userID)
	if err != nil {
		return fmt.Errorf("unfriend: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrFriendshipNotFound
	}
	return nil
}

// Block replaces the pair's edge with one owned by blockerID. When the
// target already blocked the blocker, that edge is kept and returned.
func (s *FriendshipsStore) Block(ctx context.Context, blockerID, targetID string, when time.Time) (domain.Friendship, error) {
	if blockerID == targetID {
		return domain.Friendship{}, domain.ErrSelfFriendship
	}
	if !validID(targetID) {
		return domain.Friendship{}, domain.ErrUserNotFound
	}

	var out domain.Friendship
	err := withTx(ctx, s.pool, func(tx pgx.Tx) error {
		if err := lockPairs(ctx, tx, blockerID, []string{targetID}, true); err != nil {
			return err
		}

		const existing = `
			SELECT ` + friendshipColumns + `
			FROM friendships
			WHERE LEAST(requester_id, addressee_id) = LEAST($1::uuid, $2::uuid)
			  AND GREATEST(requester_id, addressee_id) = GREATEST($1::uuid, $2::uuid)
			FOR UPDATE
		`
		f, err := scanFriendship(tx.QueryRow(ctx, existing, blockerID, targetID))
		switch {
		case err == nil && f.Status == domain.FriendshipBlocked:
			out = f
			return nil
		case err == nil:
			if _, err := tx.Exec(ctx, `DELETE FROM friendships WHERE id = $1`, f.ID); err != nil {
				return fmt.Errorf("replace friendship: %w", err)
			}
		case !errors.Is(err, pgx.ErrNoRows):
			return fmt.Errorf("lock friendship: %w", err)
		}

		const insert = `
			INSERT INTO friendships (requester_id, addressee_id, status, created_at, updated_at)
			VALUES ($1, $2, 'blocked', $3, $3)
			RETURNING ` + friendshipColumns
		out, err = scanFriendship(tx.QueryRow(ctx, insert, blockerID, targetID, when))
		if err != nil {
			code, constraint := pgErrorCode(err)
			switch {
			case code == pgForeignKeyViolation:
				return domain.ErrUserNotFound
			case code == pgUniqueViolation && constraint == "friendships_pair_uq":
				return domain.ErrFriendshipExists
			}
			return fmt.Errorf("block user: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Friendship{}, err
	}
	return out, nil
}

func (s *FriendshipsStore) Unblock(ctx context.Context, blockerID, targetID string) error {
	if !validID(targetID) {
		return domain.ErrFriendshipNotFound
	}
	const q = `
		DELETE FROM friendships
		WHERE requester_id = $1 AND addressee_id = $2 AND status = 'blocked'
	`
	ct, err := s.pool.Exec(ctx, q, blockerID, targetID)
	if err != nil {
		return fmt.Errorf("unblock user: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrFriendshipNotFound
	}
	return nil
}

func (s *FriendshipsStore) DeleteFriendship(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrFriendshipNotFound
	}
	ct, err := s.pool.Exec(ctx, `DELETE FROM friendships WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrFriendshipNotFound
	}
	return nil
}

// lockPairs takes a transaction-scoped advisory lock on each unordered
// (userID, other) pair. Block holds it exclusively; invites and RSVPs hold
// it shared while they check the pair, so a block commits either before the
// check or after the guarded write.
func lockPairs(ctx context.Context, tx pgx.Tx, userID string, others []string, exclusive bool) error {
	fn := "pg_advisory_xact_lock_shared"
	if exclusive {
		fn = "pg_advisory_xact_lock"
	}
	q := `
		SELECT ` + fn + `(hashtextextended(LEAST($1::uuid, o)::text || ':' || GREATEST($1::uuid, o)::text, 0))
		FROM unnest($2::uuid[]) AS o
		ORDER BY LEAST($1::uuid, o), GREATEST($1::uuid, o)
	`
	if _, err := tx.Exec(ctx, q, userID, others); err != nil {
		return fmt.Errorf("lock friendship pairs: %w", err)
	}
	return nil
}

// pairStatuses maps each of others that has an edge with userID to its
// status. The edges are read FOR SHARE so they cannot change or disappear
// before the transaction ends.
func pairStatuses(ctx context.Context, tx pgx.Tx, userID string, others []string) (map[string]domain.FriendshipStatus, error) {
	const q = `
		SELECT CASE WHEN requester_id = $1 THEN addressee_id ELSE requester_id END, status
		FROM friendships
		WHERE (requester_id = $1 AND addressee_id = ANY($2::uuid[]))
		   OR (addressee_id = $1 AND requester_id = ANY($2::uuid[]))
		FOR SHARE
	`
	rows, err := tx.Query(ctx, q, userID, others)
	if err != nil {
		return nil, fmt.Errorf("read friendship pairs: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.FriendshipStatus, len(others))
	for rows.Next() {
		var (
			other  pgtype.UUID
			status domain.FriendshipStatus
		)
		if err := rows.Scan(&other, &status); err != nil {
			return nil, fmt.Errorf("scan friendship pair: %w", err)
		}
		out[uuidOrEmpty(other)] = status
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read friendship pairs: %w", err)
	}
	return out, nil
}

// summaryColumns selects the profile fields a UserSummary is built from,
// taken from the users row aliased u.
const summaryColumns = `u.id, u.username, u.first_name, u.last_name, u.profile_picture`

func summaryDest(u *domain.User, id *pgtype.UUID) []any {
	return []any{id, &u.Username, &u.FirstName, &u.LastName, &u.ProfilePicture}
}

func (s *FriendshipsStore) ListFriends(ctx context.Context, userID string) ([]domain.Friend, error) {
	const q = `
		SELECT f.id, COALESCE(f.responded_at, f.updated_at), ` + summaryColumns + `
		FROM friendships f
		JOIN users u ON u.id = CASE
			WHEN f.requester_id = $1 THEN f.addressee_id
			ELSE f.requester_id
		END
		WHERE f.status = 'accepted' AND (f.requester_id = $1 OR f.addressee_id = $1)
		ORDER BY f.created_at ASC, f.id ASC
	`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	defer rows.Close()

	out := []domain.Friend{}
	for rows.Next() {
		var (
			edgeUUID pgtype.UUID
			userUUID pgtype.UUID
			since    time.Time
			u        domain.User
		)
		if err := rows.Scan(append([]any{&edgeUUID, &since}, summaryDest(&u, &userUUID)...)...); err != nil {
			return nil, fmt.Errorf("scan friend: %w", err)
		}
		u.ID = uuidOrEmpty(userUUID)
		out = append(out, domain.Friend{FriendshipID: uuidOrEmpty(edgeUUID), User: u.Summary(), Since: since})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	return out, nil
}

func (s *FriendshipsStore) ListIncoming(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	const q = `
		SELECT f.id, f.created_at, ` + summaryColumns + `
		FROM friendships f
		JOIN users u ON u.id = f.requester_id
		WHERE f.status = 'pending' AND f.addressee_id = $1
		ORDER BY f.created_at ASC, f.id ASC
	`
	return s.listRequests(ctx, "list incoming requests", q, userID)
}

func (s *FriendshipsStore) ListOutgoing(ctx context.Context, userID string) ([]domain.FriendRequest, error) {
	const q = `
		SELECT f.id, f.created_at, ` + summaryColumns + `
		FROM friendships f
		JOIN users u ON u.id = f.addressee_id
		WHERE f.status = 'pending' AND f.requester_id = $1
		ORDER BY f.created_at ASC, f.id ASC
	`
	return s.listRequests(ctx, "list outgoing requests", q, userID)
}

func (s *FriendshipsStore) listRequests(ctx context.Context, op, q, userID string) ([]domain.FriendRequest, error) {
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []domain.FriendRequest{}
	for rows.Next() {
		var (
			reqUUID   pgtype.UUID
			userUUID  pgtype.UUID
			createdAt time.Time
			u         domain.User
		)
		if err := rows.Scan(append([]any{&reqUUID, &createdAt}, summaryDest(&u, &userUUID)...)...); err != nil {
			return nil, fmt.Errorf("scan friend request: %w", err)
		}
		u.ID = uuidOrEmpty(userUUID)
		out = append(out, domain.FriendRequest{ID: uuidOrEmpty(reqUUID), User: u.Summary(), CreatedAt: createdAt})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// ListBlocked returns the users the caller has blocked, not those blocking the caller.
func (s *FriendshipsStore) ListBlocked(ctx context.Context, userID string) ([]domain.UserSummary, error) {
	const q = `
		SELECT ` + summaryColumns + `
		FROM friendships f
		JOIN users u ON u.id = f.addressee_id
		WHERE f.status = 'blocked' AND f.requester_id = $1
		ORDER BY f.created_at ASC, f.id ASC
	`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list blocked: %w", err)
	}
	defer rows.Close()

	out := []domain.UserSummary{}
	for rows.Next() {
		var (
			userUUID pgtype.UUID
			u        domain.User
		)
		if err := rows.Scan(summaryDest(&u, &userUUID)...); err != nil {
			return nil, fmt.Errorf("scan blocked user: %w", err)
		}
		u.ID = uuidOrEmpty(userUUID)
		out = append(out, u.Summary())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list blocked: %w", err)
	}
	return out, nil
}
