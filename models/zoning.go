package models

import (
	"fmt"
	"strings"
	"time"
)

// Address identifies the property a zoning plan file applies to.
type Address struct {
	DisplayAddress string `json:"display_address"`
	Postcode       string `json:"postcode"`
	Municipality   string `json:"municipality"`
	Province       string `json:"province"`
	Country        string `json:"country"`
}

// Maatvoering is a dimensional rule attached to the plot (e.g. maximum
// building height).
type Maatvoering struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ZoningMetadata holds the plot-level zoning designations and measurements.
type ZoningMetadata struct {
	Bestemmingsvlakken []string      `json:"bestemmingsvlakken"`
	Maatvoeringen      []Maatvoering `json:"maatvoeringen,omitempty"`
}

// AsText renders the metadata for inclusion in a decision-maker request.
func (m ZoningMetadata) AsText() string {
	var builder strings.Builder
	builder.WriteString("Bestemmingsvlakken: ")
	builder.WriteString(strings.Join(m.Bestemmingsvlakken, ", "))
	for _, mv := range m.Maatvoeringen {
		builder.WriteString(fmt.Sprintf("\nMaatvoering %s: %g", mv.Name, mv.Value))
	}
	return builder.String()
}

// ZoningDocument is one raw legal document from a zoning plan file.
type ZoningDocument struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`

	DocumentType            string  `json:"document_type"`
	DocumentTypeDescription *string `json:"document_type_description,omitempty"`
	EstablishedDate         *string `json:"established_date,omitempty"`
}

// EstablishedDatetime parses the established date, trying RFC 3339 first and
// falling back to a bare date. Returns the zero time when absent or unparseable
// so callers can sort unparseable documents last.
func (d ZoningDocument) EstablishedDatetime() time.Time {
	if d.EstablishedDate == nil {
		return time.Time{}
	}
	raw := strings.TrimSpace(*d.EstablishedDate)
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t
	}
	return time.Time{}
}

// ZoningPlanFile is the validated shape of one zoning plan JSON record: the
// property address, the legal documents covering it, and the plot metadata.
type ZoningPlanFile struct {
	Address         Address          `json:"address"`
	ZoningDocuments []ZoningDocument `json:"zoning_documents"`
	ZoningMetadata  ZoningMetadata   `json:"zoning_metadata"`
}

// Validate checks the required fields of a decoded zoning plan file.
func (f *ZoningPlanFile) Validate() error {
	if f.Address.DisplayAddress == "" {
		return fmt.Errorf("address.display_address is required")
	}
	if len(f.ZoningDocuments) == 0 {
		return fmt.Errorf("zoning_documents must not be empty")
	}
	for i, doc := range f.ZoningDocuments {
		if doc.ID == "" {
			return fmt.Errorf("zoning_documents[%d].id is required", i)
		}
		if doc.Title == "" {
			return fmt.Errorf("zoning_documents[%d].title is required", i)
		}
	}
	if f.ZoningMetadata.Bestemmingsvlakken == nil {
		return fmt.Errorf("zoning_metadata.bestemmingsvlakken is required")
	}
	return nil
}
