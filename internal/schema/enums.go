package schema

import "strings"

// PropertyType is the listing category.
type PropertyType string

const (
	PropertyHDB         PropertyType = "HDB"
	PropertyLanded      PropertyType = "LANDED"
	PropertyCondominium PropertyType = "CONDOMINIUM"
	PropertyShop        PropertyType = "SHOP"
)

// Profession is the preferred tenant occupation category.
type Profession string

const (
	ProfessionRetired      Profession = "RETIRED"
	ProfessionStudent      Profession = "STUDENT"
	ProfessionProfessional Profession = "PROFESSIONAL"
	ProfessionAny          Profession = "ANY"
)

// Race is the preferred tenant ethnicity category.
type Race string

const (
	RaceIndian  Race = "INDIAN"
	RaceChinese Race = "CHINESE"
	RaceMalay   Race = "MALAY"
	RaceAny     Race = "ANY"
)

// enumSet is an ordered set of allowed upper-case values.
type enumSet[T ~string] []T

func (s enumSet[T]) Strings() []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = string(v)
	}
	return out
}

// Parse upper-cases raw and returns it when it is a member of the set.
func (s enumSet[T]) Parse(raw string) (T, bool) {
	v := T(strings.ToUpper(strings.TrimSpace(raw)))
	for _, m := range s {
		if m == v {
			return m, true
		}
	}
	return "", false
}

var (
	PropertyTypes = enumSet[PropertyType]{PropertyHDB, PropertyLanded, PropertyCondominium, PropertyShop}
	Professions   = enumSet[Profession]{ProfessionRetired, ProfessionStudent, ProfessionProfessional, ProfessionAny}
	Races         = enumSet[Race]{RaceIndian, RaceChinese, RaceMalay, RaceAny}
)
