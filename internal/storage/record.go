package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/schema"
)

// PropertyRecord is one validated listing as handed to a Store.
type PropertyRecord struct {
	ID       uuid.UUID
	UploadID uuid.UUID
	OwnerID  uuid.UUID

	Address              string
	Rent                 decimal.Decimal
	PropertyType         schema.PropertyType
	AvailableDate        time.Time
	PreferredNationality string
	PreferredProfession  schema.Profession
	PreferredRace        schema.Race
	PetsAllowed          bool

	// Extra holds columns outside the contract, keyed by their header. Nil
	// when the upload had none.
	Extra map[string]string

	// SourceRow is the display row number in the upload.
	SourceRow int
	CreatedAt time.Time
}

// Columns is the insert column order shared by the SQL backends.
var Columns = []string{
	"id",
	"upload_id",
	"owner_id",
	"property_address",
	"rent_per_month",
	"property_type",
	"available_date",
	"preferred_nationality",
	"preferred_profession",
	"preferred_race",
	"pets_allowed",
	"extra",
	"source_row",
	"created_at",
}

// DateLayout is how AvailableDate is rendered for text-typed date columns.
const DateLayout = "2006-01-02"

// ExtraJSON encodes Extra as a JSON object, or nil when there is none.
func (r PropertyRecord) ExtraJSON() ([]byte, error) {
	if r.Extra == nil {
		return nil, nil
	}
	b, err := json.Marshal(r.Extra)
	if err != nil {
		return nil, fmt.Errorf("encode extra columns: %w", err)
	}
	return b, nil
}

// Validate checks the fields every backend relies on.
func (r PropertyRecord) Validate() error {
	if r.ID == uuid.Nil {
		return fmt.Errorf("record: missing id")
	}
	if r.OwnerID == uuid.Nil {
		return fmt.Errorf("record: missing owner id")
	}
	if r.Address == "" {
		return fmt.Errorf("record: empty address")
	}
	return nil
}
