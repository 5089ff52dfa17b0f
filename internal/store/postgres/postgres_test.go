package postgres

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestEmbeddedMigrations(t *testing.T) {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(names) == 0 || names[0] != "migrations/001_init.sql" {
		t.Fatalf("unexpected migrations: %v", names)
	}

	body, err := migrationFiles.ReadFile(names[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for _, constraint := range []string{
		"users_username_uq",
		"friendships_pair_uq",
		"event_attendees_pair_uq",
		"user_games_title_uq",
	} {
		if !strings.Contains(string(body), constraint) {
			t.Fatalf("schema is missing %s", constraint)
		}
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`50%_off\`); got != `50\%\_off\\` {
		t.Fatalf("escapeLike: got %q", got)
	}
}

func TestValidID(t *testing.T) {
	if validID("not-a-uuid") || validID("") {
		t.Fatalf("expected malformed ids to be rejected")
	}
	if !validID("6f1c3c1e-9a52-4c38-9d55-2f0d3f4b8a10") {
		t.Fatalf("expected uuid to be accepted")
	}
}

func TestScanHelpers(t *testing.T) {
	d := pgtype.Date{Time: time.Date(2030, 3, 14, 0, 0, 0, 0, time.UTC), Valid: true}
	if got := dateString(d); got != "2030-03-14" {
		t.Fatalf("dateString: got %q", got)
	}
	if dateString(pgtype.Date{}) != "" {
		t.Fatalf("expected empty string for NULL date")
	}

	id := pgtype.UUID{Bytes: [16]byte{0x6f, 0x1c, 0x3c, 0x1e, 0x9a, 0x52, 0x4c, 0x38, 0x9d, 0x55, 0x2f, 0x0d, 0x3f, 0x4b, 0x8a, 0x10}, Valid: true}
	if got := uuidOrEmpty(id); got != "6f1c3c1e-9a52-4c38-9d55-2f0d3f4b8a10" {
		t.Fatalf("uuidOrEmpty: got %q", got)
	}
	if int4Ptr(pgtype.Int4{}) != nil || *int4Ptr(pgtype.Int4{Int32: 4, Valid: true}) != 4 {
		t.Fatalf("int4Ptr mismatch")
	}
	if intOrNil(nil) != nil || nullIfEmpty("") != nil {
		t.Fatalf("expected nil for empty values")
	}
}
