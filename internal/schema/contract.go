// Package schema describes the property listing contract: the fixed set of
// required CSV columns, how each column is typed, and the enumerations the
// row validator enforces.
package schema

import "strings"

// Column is the canonical (lower-case) name of a required CSV column.
type Column string

const (
	ColAddress     Column = "property_address"
	ColRent        Column = "rent_per_month"
	ColType        Column = "property_type"
	ColAvailable   Column = "available_date"
	ColNationality Column = "preferred_nationality"
	ColProfession  Column = "preferred_profession"
	ColRace        Column = "preferred_race"
	ColPets        Column = "pets_allowed"
)

// Kind selects the coercion applied to a column's raw value.
type Kind string

const (
	KindText   Kind = "text"
	KindNumber Kind = "number"
	KindEnum   Kind = "enum"
	KindDate   Kind = "date"
	KindBool   Kind = "bool"
)

// Field is one column of the contract.
type Field struct {
	Name   Column   `json:"name"`
	Kind   Kind     `json:"kind"`
	Enum   []string `json:"enum,omitempty"`
	Truthy []string `json:"truthy,omitempty"`
	Falsy  []string `json:"falsy,omitempty"`
}

// Contract is the ordered list of required fields.
type Contract struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Property is the contract for property listing uploads. Field order is the
// order headers are reported in and the order rows are validated in.
var Property = Contract{
	Name: "property_listings",
	Fields: []Field{
		{Name: ColAddress, Kind: KindText},
		{Name: ColRent, Kind: KindNumber},
		{Name: ColType, Kind: KindEnum, Enum: PropertyTypes.Strings()},
		{Name: ColAvailable, Kind: KindDate},
		{Name: ColNationality, Kind: KindText},
		{Name: ColProfession, Kind: KindEnum, Enum: Professions.Strings()},
		{Name: ColRace, Kind: KindEnum, Enum: Races.Strings()},
		{Name: ColPets, Kind: KindBool, Truthy: []string{"true", "yes", "1"}, Falsy: []string{"false", "no", "0"}},
	},
}

// RequiredColumns lists the contract's column names in contract order.
func (c Contract) RequiredColumns() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = string(f.Name)
	}
	return out
}

// Lookup returns the field for a header name, matching case-insensitively.
func (c Contract) Lookup(header string) (Field, bool) {
	key := Column(strings.ToLower(strings.TrimSpace(header)))
	for _, f := range c.Fields {
		if f.Name == key {
			return f, true
		}
	}
	return Field{}, false
}

// ExpectedHeader renders the header line a user should put in the file.
func (c Contract) ExpectedHeader() string {
	return strings.Join(c.RequiredColumns(), ",")
}

var truthy, falsy = boolTokens(ColPets)

// boolTokens builds lookup sets from the Truthy and Falsy spellings of a
// bool field in Property.
func boolTokens(col Column) (t, f map[string]struct{}) {
	fld, _ := Property.Lookup(string(col))
	return tokenSet(fld.Truthy), tokenSet(fld.Falsy)
}

func tokenSet(tokens []string) map[string]struct{} {
	out := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		out[strings.ToLower(tok)] = struct{}{}
	}
	return out
}

// IsTruthy reports whether s (any case, surrounding space ignored) is one of
// the accepted "yes" spellings for a boolean column.
func IsTruthy(s string) bool {
	_, ok := truthy[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// IsBoolToken reports whether s is a recognised boolean spelling. The empty
// string counts as recognised and means false.
func IsBoolToken(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return true
	}
	if _, ok := truthy[v]; ok {
		return true
	}
	_, ok := falsy[v]
	return ok
}
