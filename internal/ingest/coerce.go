package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	pcsv "github.com/markkevins109/prop-panda-webscape-05-sub000/internal/parser/csv"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/schema"
)

// RawRow is one data record mapped onto the header with per-column coercion
// applied. Nothing here has been validated yet.
type RawRow struct {
	// Row is the display row number (data index + 2); Line is the physical
	// line the record starts on.
	Row  int
	Line int

	Address       string
	Rent          float64 // NaN when the token is not numeric
	RentRaw       string
	PropertyType  string // upper-cased
	AvailableDate string
	Nationality   string
	Profession    string // upper-cased
	Race          string // upper-cased
	Pets          bool
	PetsRaw       string

	// Extra maps non-contract headers (original casing) to their values.
	// Nil when the header has no such columns.
	Extra map[string]string

	// Excess counts trailing tokens beyond the header width that were
	// dropped.
	Excess int
}

// colUnnamed marks a header cell with no name. Its values must be empty.
const colUnnamed schema.Column = "-"

// ParseRows maps each line onto headers. A line with fewer tokens than
// headers aborts the whole file, as does a value under an unnamed column;
// extra trailing tokens are dropped and counted in RawRow.Excess.
func ParseRows(lines []pcsv.Line, headers HeaderSet) ([]RawRow, error) {
	fields := make([]schema.Column, headers.Len())
	hasExtra := false
	for i, n := range headers.Normalized {
		switch f, ok := schema.Property.Lookup(n); {
		case ok:
			fields[i] = f.Name
		case n == "":
			fields[i] = colUnnamed
		default:
			hasExtra = true
		}
	}

	out := make([]RawRow, 0, len(lines))
	for idx, ln := range lines {
		row := idx + 2
		if len(ln.Fields) < headers.Len() {
			return nil, &RowParseError{
				Row:    row,
				Line:   ln.Number,
				Reason: fmt.Sprintf("expected %d values, found %d", headers.Len(), len(ln.Fields)),
			}
		}

		raw := RawRow{Row: row, Line: ln.Number, Excess: len(ln.Fields) - headers.Len()}
		if hasExtra {
			raw.Extra = make(map[string]string)
		}
		for i := 0; i < headers.Len(); i++ {
			v := strings.TrimSpace(ln.Fields[i])
			switch fields[i] {
			case colUnnamed:
				if v != "" {
					return nil, &RowParseError{
						Row:    row,
						Line:   ln.Number,
						Reason: fmt.Sprintf("value %q in column %d has no header", v, i+1),
					}
				}
			case "":
				raw.Extra[headers.Original[i]] = ln.Fields[i]
			case schema.ColAddress:
				raw.Address = unquote(v)
			case schema.ColRent:
				raw.RentRaw = v
				raw.Rent = parseRent(v)
			case schema.ColType:
				raw.PropertyType = strings.ToUpper(v)
			case schema.ColAvailable:
				raw.AvailableDate = unquote(v)
			case schema.ColNationality:
				raw.Nationality = unquote(v)
			case schema.ColProfession:
				raw.Profession = strings.ToUpper(v)
			case schema.ColRace:
				raw.Race = strings.ToUpper(v)
			case schema.ColPets:
				raw.PetsRaw = v
				raw.Pets = schema.IsTruthy(v)
			}
		}
		out = append(out, raw)
	}
	return out, nil
}

func parseRent(v string) float64 {
	if v == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// unquote strips one surrounding pair of double quotes.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
