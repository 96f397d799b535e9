package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// residentialUseMarkers are the intended-use phrases that mark a plan as
// creating living space. Matching is case-insensitive substring.
var residentialUseMarkers = []string{"verblijfsgebied", "living space", "woonfunctie"}

// ResidentPlan describes the construction a resident intends to carry out.
type ResidentPlan struct {
	Structure   string  `json:"structure"`
	AreaM2      float64 `json:"area_m2"`
	HeightM     float64 `json:"height_m"`
	IntendedUse string  `json:"intended_use"`
}

// DefaultResidentPlan returns the standard outbuilding-as-living-space plan
// used when a property has no explicit plan attached.
func DefaultResidentPlan() ResidentPlan {
	return ResidentPlan{
		Structure:   "bijbehorend bouwwerk (outbuilding)",
		AreaM2:      20.0,
		HeightM:     3.0,
		IntendedUse: "Living space (verblijfsgebied), subordinate to the main house",
	}
}

// AsText renders the plan for inclusion in a decision-maker request.
func (p ResidentPlan) AsText() string {
	return fmt.Sprintf("Structure: %s\nArea: %g m2\nHeight: %g m\nUse: %s\n",
		p.Structure, p.AreaM2, p.HeightM, p.IntendedUse)
}

// IsResidential reports whether the intended use indicates living space.
func (p ResidentPlan) IsResidential() bool {
	use := strings.ToLower(p.IntendedUse)
	for _, marker := range residentialUseMarkers {
		if strings.Contains(use, marker) {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer for JSONB
func (p ResidentPlan) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB
func (p *ResidentPlan) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		return nil
	}

	return json.Unmarshal(bytes, p)
}
