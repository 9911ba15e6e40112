package placeholder

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/affigen/internal/casefile"
)

// Keys used by the arresting officer affidavit.
const (
	KeyOfficerName        = "ARRESTING_OFFICER_NAME"
	KeyOfficerAge         = "ARRESTING_OFFICER_AGE"
	KeyOfficerStation     = "ARRESTING_OFFICER_STATION"
	KeyOfficerHomeAddress = "ARRESTING_OFFICER_HOME_ADDRESS"
	KeyNarration          = "Narration"
	KeyDay                = "DAY"
	KeyMonth              = "MONTH"
	KeyYear               = "YEAR"
	KeyLocation           = "LOCATION"
	KeyAdministeringName  = "ADMINISTERING_OFFICER_NAME"
)

// BuildLookup derives the affidavit values from a case record. The date
// parts come from the report date, or now when it is missing or invalid.
// Narration is left empty for the caller to fill. Every key is present.
func BuildLookup(c *casefile.CaseDetails, now time.Time) Map {
	date, err := casefile.ParseDate(c.ReportDate)
	if err != nil {
		date = now
	}
	officer := c.AssignedOfficer

	admin := ""
	if c.AdministeringOfficer != nil {
		admin = c.AdministeringOfficer.FullName
	}

	return Map{
		KeyOfficerName:        officer.FullName,
		KeyOfficerAge:         OfficerAge(officer.Person, date),
		KeyOfficerStation:     officer.UnitOrStation,
		KeyOfficerHomeAddress: homeAddress(officer.Person),
		KeyNarration:          "",
		KeyDay:                strconv.Itoa(date.Day()),
		KeyMonth:              strconv.Itoa(int(date.Month())),
		KeyYear:               strconv.Itoa(date.Year()),
		KeyLocation:           c.IncidentLocation,
		KeyAdministeringName:  admin,
	}
}

func homeAddress(p casefile.Person) string {
	if p.Address != "" {
		return p.Address
	}
	return p.CompleteAddress.Format()
}

// OfficerAge renders a person's age as of asOf. An explicit age wins over
// the date of birth; an unknown age renders empty.
func OfficerAge(p casefile.Person, asOf time.Time) string {
	if p.Age != nil {
		return strconv.Itoa(*p.Age)
	}
	dob, err := casefile.ParseDate(p.DateOfBirth)
	if err != nil {
		return ""
	}
	return strconv.Itoa(ComputeAge(dob, asOf))
}

// ComputeAge returns whole years between dob and asOf, counting a year only
// once its birthday has been reached. A future dob yields zero.
func ComputeAge(dob, asOf time.Time) int {
	age := asOf.Year() - dob.Year()
	if asOf.Month() < dob.Month() || (asOf.Month() == dob.Month() && asOf.Day() < dob.Day()) {
		age--
	}
	return max(age, 0)
}

// PathLookup resolves dotted paths such as "complainant.fullName" or
// "witnesses[0].age" against the JSON form of a case record. Only scalar
// values resolve.
func PathLookup(c *casefile.CaseDetails) (Lookup, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode case details: %w", err)
	}
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode case details: %w", err)
	}
	return LookupFunc(func(key string) (string, bool) {
		return resolvePath(root, key)
	}), nil
}

func resolvePath(root any, path string) (string, bool) {
	cur := root
	for _, seg := range strings.Split(path, ".") {
		name, indexes, ok := splitIndexes(seg)
		if !ok {
			return "", false
		}
		if name != "" {
			obj, isObj := cur.(map[string]any)
			if !isObj {
				return "", false
			}
			if cur, ok = obj[name]; !ok {
				return "", false
			}
		}
		for _, i := range indexes {
			arr, isArr := cur.([]any)
			if !isArr || i < 0 || i >= len(arr) {
				return "", false
			}
			cur = arr[i]
		}
	}

	switch v := cur.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

// splitIndexes parses "name[0][1]" into its name and indexes.
func splitIndexes(seg string) (string, []int, bool) {
	open := strings.IndexByte(seg, '[')
	if open < 0 {
		return seg, nil, seg != ""
	}
	name, rest := seg[:open], seg[open:]
	var idx []int
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return "", nil, false
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		idx = append(idx, n)
		rest = rest[end+1:]
	}
	return name, idx, true
}
