package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PropertyStatus represents the status of a property analysis case
type PropertyStatus string

const (
	StatusDraft      PropertyStatus = "draft"
	StatusInProgress PropertyStatus = "in_progress"
	StatusCompleted  PropertyStatus = "completed"
	StatusArchived   PropertyStatus = "archived"
)

// Maatvoeringen represents the plot measurement rules stored on a property
type Maatvoeringen []Maatvoering

// Value implements driver.Valuer for JSONB
func (m Maatvoeringen) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB
func (m *Maatvoeringen) Scan(value interface{}) error {
	if value == nil {
		*m = make(Maatvoeringen, 0)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		*m = make(Maatvoeringen, 0)
		return nil
	}

	if len(bytes) == 0 {
		*m = make(Maatvoeringen, 0)
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Property represents a property analysis case: the address under review, its
// zoning designations, the resident's construction plan, and the latest
// assessment produced for it.
type Property struct {
	ID     uuid.UUID      `json:"id"`
	UserID uuid.UUID      `json:"user_id"`
	Status PropertyStatus `json:"status"`

	// Intake
	DisplayAddress string `json:"display_address"`
	Postcode       string `json:"postcode"`
	Municipality   string `json:"municipality"`

	// Source data
	PlanFileID    *uuid.UUID    `json:"plan_file_id"`
	Designations  []string      `json:"designations"`
	Maatvoeringen Maatvoeringen `json:"maatvoeringen"`

	// Resident plan
	Plan *ResidentPlan `json:"plan"`

	// Result
	Assessment *ZoningAssessment `json:"assessment"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
