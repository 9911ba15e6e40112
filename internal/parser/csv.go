package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/affigen/internal/casefile"
)

// ErrRosterHeader is returned when a roster lacks the badge or name column.
var ErrRosterHeader = errors.New("roster needs badge and name columns")

// rosterColumns maps accepted header spellings to officer fields.
var rosterColumns = map[string]string{
	"badge":          "badge",
	"badge_number":   "badge",
	"badgenumber":    "badge",
	"name":           "name",
	"full_name":      "name",
	"fullname":       "name",
	"rank":           "rank",
	"rankorposition": "rank",
	"position":       "rank",
	"unit":           "unit",
	"station":        "unit",
	"unitorstation":  "unit",
	"dob":            "dob",
	"date_of_birth":  "dob",
	"dateofbirth":    "dob",
	"address":        "address",
	"contact":        "contact",
	"contact_number": "contact",
	"email":          "email",
}

// ParseOfficerRoster reads officers from a CSV roster. The first row is the
// header; unknown columns are ignored and rows with no badge are skipped.
func ParseOfficerRoster(r io.Reader) ([]casefile.Officer, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrRosterHeader
	}

	cols := map[string]int{}
	for i, h := range records[0] {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		key = strings.ReplaceAll(key, " ", "_")
		if field, ok := rosterColumns[key]; ok {
			if _, dup := cols[field]; !dup {
				cols[field] = i
			}
		}
	}
	if _, ok := cols["badge"]; !ok {
		return nil, ErrRosterHeader
	}
	if _, ok := cols["name"]; !ok {
		return nil, ErrRosterHeader
	}

	officers := []casefile.Officer{}
	for _, row := range records[1:] {
		get := func(field string) string {
			i, ok := cols[field]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if get("badge") == "" {
			continue
		}
		var o casefile.Officer
		o.BadgeNumber = get("badge")
		o.FullName = get("name")
		o.RankOrPosition = get("rank")
		o.UnitOrStation = get("unit")
		o.DateOfBirth = get("dob")
		o.Address = get("address")
		o.ContactNumber = get("contact")
		o.Email = get("email")
		officers = append(officers, o)
	}
	return officers, nil
}
