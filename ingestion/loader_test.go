package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zoningcheck-backend/models"
)

const validPlanJSON = `{
  "address": {
    "display_address": "Dorpsstraat 1, 1234 AB Ons Dorp",
    "postcode": "1234 AB",
    "municipality": "Ons Dorp",
    "province": "Utrecht",
    "country": "Nederland"
  },
  "zoning_documents": [
    {
      "id": "doc-1",
      "title": "Bestemmingsplan Centrum",
      "text": "## Artikel 1 Begripsbepalingen\nDefinities.",
      "document_type": "Bestemmingsplan",
      "established_date": "2021-06-15"
    }
  ],
  "zoning_metadata": {
    "bestemmingsvlakken": ["Wonen - Tuin"],
    "maatvoeringen": [{"name": "maximum bouwhoogte (m)", "value": 3}]
  }
}`

func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "zoning_plan_1.json", validPlanJSON)

	loader := NewLoader(dir)
	planFile, err := loader.LoadFile("zoning_plan_1.json")
	require.NoError(t, err)

	assert.Equal(t, "Dorpsstraat 1, 1234 AB Ons Dorp", planFile.Address.DisplayAddress)
	require.Len(t, planFile.ZoningDocuments, 1)
	assert.Equal(t, []string{"Wonen - Tuin"}, planFile.ZoningMetadata.Bestemmingsvlakken)
	require.Len(t, planFile.ZoningMetadata.Maatvoeringen, 1)
	assert.Equal(t, 3.0, planFile.ZoningMetadata.Maatvoeringen[0].Value)
}

func TestLoadFileMissing(t *testing.T) {
	loader := NewLoader(t.TempDir())
	_, err := loader.LoadFile("nope.json")
	assert.Error(t, err)
}

func TestLoadFileInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "broken.json", "{not json")

	loader := NewLoader(dir)
	_, err := loader.LoadFile("broken.json")
	assert.ErrorContains(t, err, "invalid zoning JSON")
}

func TestLoadFileSchemaViolation(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "empty.json", `{"address": {"display_address": ""}, "zoning_documents": [], "zoning_metadata": {"bestemmingsvlakken": []}}`)

	loader := NewLoader(dir)
	_, err := loader.LoadFile("empty.json")
	assert.ErrorContains(t, err, "invalid zoning JSON schema")
}

func TestListJSONFiles(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "zoning_plan_2.json", "{}")
	writeTestFile(t, dir, "zoning_plan_1.json", "{}")
	writeTestFile(t, dir, "notes.txt", "irrelevant")

	loader := NewLoader(dir)
	names, err := loader.ListJSONFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"zoning_plan_1.json", "zoning_plan_2.json"}, names)
}

func TestListJSONFilesMissingDir(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "does-not-exist"))
	_, err := loader.ListJSONFiles()
	assert.Error(t, err)
}

func TestFilterDocuments(t *testing.T) {
	d2019 := "2019-03-01"
	d2022 := "2022-11-20T00:00:00Z"
	docs := []models.ZoningDocument{
		{ID: "a", Title: "Bestemmingsplan Oud", DocumentType: "Bestemmingsplan", EstablishedDate: &d2019},
		{ID: "b", Title: "Parapluplan Parkeren", DocumentType: "Bestemmingsplan", EstablishedDate: &d2022},
		{ID: "c", Title: "Omgevingsplan Nieuw", DocumentType: "Omgevingsplan", EstablishedDate: &d2022},
		{ID: "d", Title: "Structuurvisie", DocumentType: "Structuurvisie", EstablishedDate: &d2022},
		{ID: "e", Title: "Bestemmingsplan Zonder Datum", DocumentType: "Bestemmingsplan"},
	}

	loader := NewLoader(t.TempDir())
	filtered := loader.FilterDocuments(docs)

	require.Len(t, filtered, 3)
	// Newest first; the undated document sorts last.
	assert.Equal(t, "c", filtered[0].ID)
	assert.Equal(t, "a", filtered[1].ID)
	assert.Equal(t, "e", filtered[2].ID)
}

func TestFilterDocumentsTypeMatchIsCaseInsensitive(t *testing.T) {
	docs := []models.ZoningDocument{
		{ID: "a", Title: "Plan", DocumentType: "bestemmingsplan"},
	}

	loader := NewLoader(t.TempDir())
	assert.Len(t, loader.FilterDocuments(docs), 1)
}
