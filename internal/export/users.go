// Package export renders admin reports as spreadsheets.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"GameNightwebserver/internal/domain"
)

const usersSheet = "Users"

var userColumns = []string{"ID", "Username", "First name", "Last name", "Admin", "Created at", "Last login"}

// UsersXLSX writes one row per user under a bold header row.
func UsersXLSX(users []domain.User) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", usersSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(userColumns))
	for i, c := range userColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(usersSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(userColumns))
	if err := f.SetCellStyle(usersSheet, "A1", lastCol+"1", bold); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	for i, u := range users {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		lastLogin := ""
		if u.LastLoginAt != nil {
			lastLogin = u.LastLoginAt.UTC().Format(time.RFC3339)
		}
		row := []interface{}{
			u.ID,
			u.Username,
			u.FirstName,
			u.LastName,
			u.IsAdmin,
			u.CreatedAt.UTC().Format(time.RFC3339),
			lastLogin,
		}
		if err := f.SetSheetRow(usersSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(usersSheet, "A", "A", 38); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(usersSheet, "B", lastCol, 18); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}
