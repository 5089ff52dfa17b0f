package postgres

import (
	"context"
	"fmt"
	"strings"

	"GameNightwebserver/internal/domain"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserSearchStore struct {
	pool *pgxpool.Pool
}

func NewUserSearchStore(pool *pgxpool.Pool) *UserSearchStore {
	return &UserSearchStore{pool: pool}
}

// SearchUsers matches username or name case-insensitively, leaving out the
// caller and anyone in a blocked pair with them.
func (s *UserSearchStore) SearchUsers(ctx context.Context, callerID, q string, limit int) ([]domain.UserMatch, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	q = strings.TrimSpace(q)
	if q == "" || !validID(callerID) {
		return []domain.UserMatch{}, nil
	}

	like := "%" + escapeLike(q) + "%"
	const query = `
		SELECT ` + summaryColumns + `, f.requester_id, f.addressee_id, f.status
		FROM users u
		LEFT JOIN friendships f
			ON LEAST(f.requester_id, f.addressee_id) = LEAST(u.id, $3::uuid)
			AND GREATEST(f.requester_id, f.addressee_id) = GREATEST(u.id, $3::uuid)
		WHERE u.id <> $3::uuid
		  AND (f.status IS NULL OR f.status <> 'blocked')
		  AND (u.username ILIKE $1 OR u.first_name ILIKE $1 OR u.last_name ILIKE $1)
		ORDER BY u.username ASC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, like, limit, callerID)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()

	out := []domain.UserMatch{}
	for rows.Next() {
		var (
			idUUID    pgtype.UUID
			u         domain.User
			requester pgtype.UUID
			addressee pgtype.UUID
			status    pgtype.Text
		)
		if err := rows.Scan(append(summaryDest(&u, &idUUID), &requester, &addressee, &status)...); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.ID = uuidOrEmpty(idUUID)

		rel := domain.RelationNone
		if status.Valid {
			edge := domain.Friendship{
				RequesterID: uuidOrEmpty(requester),
				AddresseeID: uuidOrEmpty(addressee),
				Status:      domain.FriendshipStatus(status.String),
			}
			rel = edge.RelationTo(callerID)
		}
		out = append(out, domain.UserMatch{UserSummary: u.Summary(), Relationship: rel})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}

	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
