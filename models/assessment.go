package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// PermitStatus is the decision-maker's verdict on whether a plan is permit-free.
type PermitStatus string

const (
	PermitYes         PermitStatus = "Yes"
	PermitNo          PermitStatus = "No"
	PermitConditional PermitStatus = "Conditional"
)

// Valid reports whether the status is a member of the allowed set.
func (s PermitStatus) Valid() bool {
	switch s {
	case PermitYes, PermitNo, PermitConditional:
		return true
	}
	return false
}

// Evidence is one citation backing an assessment: a short excerpt from the
// supplied context plus the reason it matters.
type Evidence struct {
	SourceDocument string  `json:"source_document"`
	Article        *string `json:"article,omitempty"`
	Excerpt        string  `json:"excerpt"`
	Relevance      string  `json:"relevance"`
}

// ZoningAssessment is the structured decision returned by the external
// decision-maker. The grounding validator is the only component that amends a
// received assessment (status downgrade, appended notes and flags); everything
// else treats it as read-only.
type ZoningAssessment struct {
	PermitFree         PermitStatus `json:"permit_free"`
	Summary            string       `json:"summary"`
	CitedEvidence      []Evidence   `json:"cited_evidence"`
	SuggestedChanges   *string      `json:"suggested_changes,omitempty"`
	Assumptions        []string     `json:"assumptions"`
	MissingInformation []string     `json:"missing_information"`
	RiskFlags          []string     `json:"risk_flags"`
}

// Validate enforces the response contract on a decoded assessment. A violation
// is a hard failure: the core never repairs a malformed decision-maker response.
func (a *ZoningAssessment) Validate() error {
	if !a.PermitFree.Valid() {
		return fmt.Errorf("permit_free must be Yes, No or Conditional, got %q", a.PermitFree)
	}
	if a.Summary == "" {
		return fmt.Errorf("summary is required")
	}
	if len(a.CitedEvidence) == 0 {
		return fmt.Errorf("cited_evidence must not be empty")
	}
	for i, ev := range a.CitedEvidence {
		if ev.Excerpt == "" {
			return fmt.Errorf("cited_evidence[%d].excerpt is required", i)
		}
		if ev.SourceDocument == "" {
			return fmt.Errorf("cited_evidence[%d].source_document is required", i)
		}
	}
	return nil
}

// Value implements driver.Valuer for JSONB
func (a ZoningAssessment) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner for JSONB
func (a *ZoningAssessment) Scan(value interface{}) error {
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

	return json.Unmarshal(bytes, a)
}
