package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zoningcheck-backend/models"
)

func TestExtractJSONFromMarkdownFence(t *testing.T) {
	content := "Here is the assessment:\n```json\n{\"permit_free\": \"No\"}\n```\nDone."
	assert.Equal(t, `{"permit_free": "No"}`, ExtractJSON(content))
}

func TestExtractJSONBareObject(t *testing.T) {
	content := `{"permit_free": "Yes", "summary": "ok"}`
	assert.Equal(t, content, ExtractJSON(content))
}

func TestExtractJSONStripsTrailingCommas(t *testing.T) {
	content := "{\"assumptions\": [\"a\", \"b\",], \"risk_flags\": [],}"
	out := ExtractJSON(content)
	assert.True(t, json.Valid([]byte(out)), "cleaned output must be valid JSON: %s", out)
}

func TestExtractJSONNoObject(t *testing.T) {
	assert.Equal(t, "", ExtractJSON("no json here"))
}

func TestExtractJSONDecodesAssessment(t *testing.T) {
	content := "```json\n" + `{
  "permit_free": "Conditional",
  "summary": "Unclear whether living space is allowed.",
  "cited_evidence": [
    {"source_document": "Omgevingsplan", "article": "3", "excerpt": "vergunningsvrij mits", "relevance": "condition"}
  ],
  "assumptions": [],
  "missing_information": ["scope of article 3"],
  "risk_flags": []
}` + "\n```"

	var a models.ZoningAssessment
	require.NoError(t, json.Unmarshal([]byte(ExtractJSON(content)), &a))
	require.NoError(t, a.Validate())
	assert.Equal(t, models.PermitConditional, a.PermitFree)
	require.NotNil(t, a.CitedEvidence[0].Article)
	assert.Equal(t, "3", *a.CitedEvidence[0].Article)
}
