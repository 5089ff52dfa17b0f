package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"GameNightwebserver/internal/domain"
)

func TestUsersXLSX(t *testing.T) {
	login := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	users := []domain.User{
		{ID: "u-1", Username: "alice", FirstName: "Alice", IsAdmin: true, CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), LastLoginAt: &login},
		{ID: "u-2", Username: "bob", CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
	}

	raw, err := UsersXLSX(users)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(usersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, userColumns, rows[0])
	assert.Equal(t, []string{"u-1", "alice", "Alice", "", "TRUE", "2025-01-01T00:00:00Z", "2025-02-03T04:05:06Z"}, rows[1])
	assert.Equal(t, "bob", rows[2][1])
	assert.Equal(t, "FALSE", rows[2][4])
}

func TestUsersXLSXEmpty(t *testing.T) {
	raw, err := UsersXLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(usersSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
