package load

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMissingColumn is returned when the header row has no column for a role
// the profile requires. Extraction failures abort the whole load before any
// database work starts.
var ErrMissingColumn = errors.New("required column not found")

// ExtractCSV reads a CSV stream into canonical rows using the profile's
// header aliases. The first record is the header; matching is
// case-insensitive and whitespace-trimmed. Cells are trimmed, short records
// are padded, and rows with every mapped cell blank are dropped.
func ExtractCSV(r io.Reader, profile Profile) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	positions, err := mapHeader(header, profile)
	if err != nil {
		return nil, err
	}

	var rows []Row
	index := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", index+1, err)
		}
		index++

		row := Row{
			Index:         index,
			ExternalID:    cellAt(record, positions[RoleBookID]),
			Name:          cellAt(record, positions[RoleName]),
			CategoryName:  cellAt(record, positions[RoleCategoryName]),
			CategoryLabel: cellAt(record, positions[RoleCategoryLabel]),
			LocationName:  cellAt(record, positions[RoleLocation]),
		}
		if row.ExternalID == "" && row.Name == "" && row.CategoryName == "" &&
			row.CategoryLabel == "" && row.LocationName == "" {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// mapHeader resolves each profile role to a column position. Only the name
// role is mandatory; other roles fall back to blank cells when their column
// is absent.
func mapHeader(header []string, profile Profile) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[normalizeHeader(h)] = i
	}

	positions := make(map[string]int, len(profile.Columns))
	for role, aliases := range profile.Columns {
		positions[role] = -1
		for _, alias := range aliases {
			if pos, ok := index[normalizeHeader(alias)]; ok {
				positions[role] = pos
				break
			}
		}
	}

	if positions[RoleName] < 0 {
		return nil, fmt.Errorf("%w: none of %v present in header",
			ErrMissingColumn, profile.Columns[RoleName])
	}

	return positions, nil
}

// normalizeHeader lowercases and trims a header cell, stripping the UTF-8
// BOM spreadsheet exports prepend to the first column.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\uFEFF")
	return strings.ToLower(strings.TrimSpace(h))
}

func cellAt(record []string, pos int) string {
	if pos < 0 || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
