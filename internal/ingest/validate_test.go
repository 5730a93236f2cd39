package ingest

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/schema"
)

func goodRaw() RawRow {
	return RawRow{
		Address:       "1 Main St",
		Rent:          2500,
		RentRaw:       "2500",
		PropertyType:  "HDB",
		AvailableDate: "2025-01-01",
		Nationality:   "Any",
		Profession:    "ANY",
		Race:          "ANY",
		Pets:          true,
		PetsRaw:       "true",
	}
}

func TestValidateRow_Rules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *RawRow)
		field   schema.Column
		message string
	}{
		{"blank address", func(r *RawRow) { r.Address = "   " }, schema.ColAddress, "Invalid property address"},
		{"nan rent", func(r *RawRow) { r.Rent, r.RentRaw = math.NaN(), "abc" }, schema.ColRent, "Invalid rent amount"},
		{"infinite rent", func(r *RawRow) { r.Rent, r.RentRaw = math.Inf(1), "Inf" }, schema.ColRent, "Invalid rent amount"},
		{"negative rent", func(r *RawRow) { r.Rent, r.RentRaw = -1, "-1" }, schema.ColRent, "Invalid rent amount"},
		{"too many decimals", func(r *RawRow) { r.Rent, r.RentRaw = 12.345, "12.345" }, schema.ColRent, "Invalid rent amount"},
		{"too many digits", func(r *RawRow) { r.Rent, r.RentRaw = 1e15, "1e15" }, schema.ColRent, "Invalid rent amount"},
		{"eleven integer digits", func(r *RawRow) { r.Rent, r.RentRaw = 1e10, "10000000000" }, schema.ColRent, "Invalid rent amount"},
		{"bad type", func(r *RawRow) { r.PropertyType = "VILLA" }, schema.ColType, "Invalid property type: VILLA"},
		{"bad date", func(r *RawRow) { r.AvailableDate = "next week" }, schema.ColAvailable, "Invalid date format"},
		{"empty date", func(r *RawRow) { r.AvailableDate = "" }, schema.ColAvailable, "Invalid date format"},
		{"no nationality", func(r *RawRow) { r.Nationality = "" }, schema.ColNationality, "Missing preferred nationality"},
		{"bad profession", func(r *RawRow) { r.Profession = "DOCTOR" }, schema.ColProfession, "Invalid profession type: DOCTOR"},
		{"bad race", func(r *RawRow) { r.Race = "OTHER" }, schema.ColRace, "Invalid race option: OTHER"},
		{"bad pets", func(r *RawRow) { r.Pets, r.PetsRaw = false, "maybe" }, schema.ColPets, "Invalid pets allowed value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := goodRaw()
			tt.mutate(&raw)

			_, err := ValidateRow(raw, 3)
			var ve *RowValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			require.Equal(t, 5, ve.Row)
			require.Equal(t, string(tt.field), ve.Field)
			require.Equal(t, "Row 5: "+tt.message, ve.Error())
		})
	}
}

// TestValidateRow_FirstRuleWins breaks several fields and expects the
// earliest rule in order to be reported.
func TestValidateRow_FirstRuleWins(t *testing.T) {
	raw := goodRaw()
	raw.PropertyType = "VILLA"
	raw.Race = "OTHER"
	raw.Nationality = ""

	_, err := ValidateRow(raw, 0)
	require.EqualError(t, err, "Row 2: Invalid property type: VILLA")
}

func TestValidateRow_Success(t *testing.T) {
	raw := goodRaw()
	raw.RentRaw = "2500.50"
	raw.Rent = 2500.5
	raw.Extra = map[string]string{"Notes": "corner unit"}

	pr, err := ValidateRow(raw, 0)
	require.NoError(t, err)
	require.Equal(t, "2500.5", pr.Rent.String())
	require.Equal(t, schema.PropertyHDB, pr.PropertyType)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), pr.AvailableDate)
	require.Equal(t, schema.ProfessionAny, pr.PreferredProfession)
	require.Equal(t, schema.RaceAny, pr.PreferredRace)
	require.True(t, pr.PetsAllowed)
	require.Equal(t, 2, pr.Row)

	// The validated row does not share the raw overflow map.
	raw.Extra["Notes"] = "changed"
	require.Equal(t, "corner unit", pr.Extra["Notes"])
}

func TestValidateRow_PetsEmptyMeansFalse(t *testing.T) {
	raw := goodRaw()
	raw.Pets, raw.PetsRaw = false, ""
	pr, err := ValidateRow(raw, 0)
	require.NoError(t, err)
	require.False(t, pr.PetsAllowed)
}

func TestValidateRow_ZeroRentAllowed(t *testing.T) {
	raw := goodRaw()
	raw.Rent, raw.RentRaw = 0, "0"
	_, err := ValidateRow(raw, 0)
	require.NoError(t, err)
}

func TestValidateRow_RentAtStorageLimits(t *testing.T) {
	for _, tok := range []string{"9999999999.99", "12.30", "12.300", "0.01"} {
		raw := goodRaw()
		raw.RentRaw = tok
		raw.Rent = parseRent(tok)
		pr, err := ValidateRow(raw, 0)
		require.NoError(t, err, "rent %q", tok)
		require.True(t, pr.Rent.Equal(pr.Rent.Round(2)), "rent %q", tok)
	}
}

func TestParseDate_Layouts(t *testing.T) {
	want := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2025-03-04",
		"2025-03-04T10:30:00Z",
		"2025-03-04T10:30:00+08:00",
		"2025-03-04T10:30:00",
		"2025/03/04",
		"04/03/2025",
		"4 Mar 2025",
		"Mar 4, 2025",
		"March 4, 2025",
	} {
		got, ok := parseDate(in)
		require.True(t, ok, in)
		require.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "2025-13-01", "tomorrow", "32/01/2025"} {
		_, ok := parseDate(in)
		require.False(t, ok, in)
	}
}

/*
TestValidateRows_AllOrNothing puts a bad row at display row 5 among ten and
expects no rows back and the error to name row 5.
*/
func TestValidateRows_AllOrNothing(t *testing.T) {
	raws := make([]RawRow, 10)
	for i := range raws {
		raws[i] = goodRaw()
		raws[i].Address = fmt.Sprintf("%d Main St", i)
	}
	raws[3].PropertyType = "CASTLE"

	rows, err := ValidateRows(raws)
	require.Nil(t, rows)
	require.EqualError(t, err, "Row 5: Invalid property type: CASTLE")
}

func TestValidateRows_Empty(t *testing.T) {
	rows, err := ValidateRows(nil)
	require.NoError(t, err)
	require.Empty(t, rows)
}
