package ingest

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/schema"
)

// PropertyRow is a fully validated listing. Treat it as read-only.
type PropertyRow struct {
	Address              string              `json:"property_address"`
	Rent                 decimal.Decimal     `json:"rent_per_month"`
	PropertyType         schema.PropertyType `json:"property_type"`
	AvailableDate        time.Time           `json:"available_date"`
	PreferredNationality string              `json:"preferred_nationality"`
	PreferredProfession  schema.Profession   `json:"preferred_profession"`
	PreferredRace        schema.Race         `json:"preferred_race"`
	PetsAllowed          bool                `json:"pets_allowed"`
	Extra                map[string]string   `json:"extra,omitempty"`

	Row  int `json:"row"`
	Line int `json:"line"`
}

// Rent must fit the NUMERIC(12,2) column used by the SQL stores.
const (
	RentScale         = 2
	RentIntegerDigits = 10
)

var rentLimit = decimal.New(1, RentIntegerDigits)

// rentFits reports whether d has at most RentScale decimal places and at
// most RentIntegerDigits integer digits.
func rentFits(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(RentScale)) && d.LessThan(rentLimit)
}

// dateLayouts are tried in order; the first that parses wins.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02/01/2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// parseDate returns the calendar date of s at UTC midnight.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// ValidateRow checks raw against the contract, first failing rule wins.
// index is the row's position among data rows; messages use index + 2.
func ValidateRow(raw RawRow, index int) (PropertyRow, error) {
	row := index + 2
	fail := func(field schema.Column, value, msg string) (PropertyRow, error) {
		return PropertyRow{}, &RowValidationError{Row: row, Field: string(field), Value: value, Message: msg}
	}

	address := strings.TrimSpace(raw.Address)
	if address == "" {
		return fail(schema.ColAddress, raw.Address, "Invalid property address")
	}

	if math.IsNaN(raw.Rent) || math.IsInf(raw.Rent, 0) || raw.Rent < 0 {
		return fail(schema.ColRent, raw.RentRaw, "Invalid rent amount")
	}
	rent, err := decimal.NewFromString(raw.RentRaw)
	if err != nil {
		rent = decimal.NewFromFloat(raw.Rent)
	}
	if !rentFits(rent) {
		return fail(schema.ColRent, raw.RentRaw, "Invalid rent amount")
	}

	ptype, ok := schema.PropertyTypes.Parse(raw.PropertyType)
	if !ok {
		return fail(schema.ColType, raw.PropertyType, "Invalid property type: "+raw.PropertyType)
	}

	date, ok := parseDate(raw.AvailableDate)
	if !ok {
		return fail(schema.ColAvailable, raw.AvailableDate, "Invalid date format")
	}

	nationality := strings.TrimSpace(raw.Nationality)
	if nationality == "" {
		return fail(schema.ColNationality, raw.Nationality, "Missing preferred nationality")
	}

	prof, ok := schema.Professions.Parse(raw.Profession)
	if !ok {
		return fail(schema.ColProfession, raw.Profession, "Invalid profession type: "+raw.Profession)
	}

	race, ok := schema.Races.Parse(raw.Race)
	if !ok {
		return fail(schema.ColRace, raw.Race, "Invalid race option: "+raw.Race)
	}

	if !schema.IsBoolToken(raw.PetsRaw) {
		return fail(schema.ColPets, raw.PetsRaw, "Invalid pets allowed value")
	}

	var extra map[string]string
	if raw.Extra != nil {
		extra = make(map[string]string, len(raw.Extra))
		for k, v := range raw.Extra {
			extra[k] = v
		}
	}

	return PropertyRow{
		Address:              address,
		Rent:                 rent,
		PropertyType:         ptype,
		AvailableDate:        date,
		PreferredNationality: nationality,
		PreferredProfession:  prof,
		PreferredRace:        race,
		PetsAllowed:          raw.Pets,
		Extra:                extra,
		Row:                  row,
		Line:                 raw.Line,
	}, nil
}

// ValidateRows validates every row in order. On the first failure it
// returns that error and no rows at all.
func ValidateRows(raws []RawRow) ([]PropertyRow, error) {
	out := make([]PropertyRow, 0, len(raws))
	for i, raw := range raws {
		pr, err := ValidateRow(raw, i)
		if err != nil {
			return nil, err
		}
		out = append(out, pr)
	}
	return out, nil
}
