package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zoningcheck-backend/models"
)

// stubAssessor returns a canned response, standing in for the Gemini API.
type stubAssessor struct {
	response string
	prompts  []string
}

func (s *stubAssessor) Assess(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, nil
}

func TestParseAssessment(t *testing.T) {
	raw := `{
		"permit_free": "Conditional",
		"summary": "Permit-free status depends on the living-space clause.",
		"cited_evidence": [
			{"source_document": "Bestemmingsplan Centrum", "article": "3", "excerpt": "vergunningsvrij mits", "relevance": "condition on use"}
		],
		"assumptions": [],
		"missing_information": ["complete text of article 3"],
		"risk_flags": []
	}`

	assessment, err := parseAssessment(raw)
	require.NoError(t, err)
	assert.Equal(t, models.PermitConditional, assessment.PermitFree)
	require.Len(t, assessment.CitedEvidence, 1)
}

func TestParseAssessmentMarkdownWrapped(t *testing.T) {
	raw := "```json\n{\"permit_free\": \"No\", \"summary\": \"Permit required.\", \"cited_evidence\": [{\"source_document\": \"Plan\", \"excerpt\": \"vergunningplicht\", \"relevance\": \"obligation\"}]}\n```"

	assessment, err := parseAssessment(raw)
	require.NoError(t, err)
	assert.Equal(t, models.PermitNo, assessment.PermitFree)
}

func TestParseAssessmentRejectsInvalidStatus(t *testing.T) {
	raw := `{"permit_free": "Maybe", "summary": "x", "cited_evidence": [{"source_document": "Plan", "excerpt": "y", "relevance": "z"}]}`

	_, err := parseAssessment(raw)
	assert.ErrorContains(t, err, "permit_free")
}

func TestParseAssessmentRejectsMissingEvidence(t *testing.T) {
	raw := `{"permit_free": "Yes", "summary": "x", "cited_evidence": []}`

	_, err := parseAssessment(raw)
	assert.Error(t, err)
}

func TestParseAssessmentNoJSON(t *testing.T) {
	_, err := parseAssessment("I could not produce an answer.")
	assert.Error(t, err)
}

func TestStubAssessorRoundTrip(t *testing.T) {
	stub := &stubAssessor{
		response: "```json\n{\"permit_free\": \"Yes\", \"summary\": \"Explicitly permit-free.\", \"cited_evidence\": [{\"source_document\": \"Omgevingsplan\", \"article\": \"3\", \"excerpt\": \"vergunningsvrij\", \"relevance\": \"direct permit-free language\"}]}\n```",
	}

	var assessor Assessor = stub
	raw, err := assessor.Assess(context.Background(), "prompt text")
	require.NoError(t, err)

	assessment, err := parseAssessment(raw)
	require.NoError(t, err)
	assert.Equal(t, models.PermitYes, assessment.PermitFree)
	require.Len(t, stub.prompts, 1)
	assert.Equal(t, "prompt text", stub.prompts[0])
}

func TestInitializeSteps(t *testing.T) {
	steps := initializeSteps()
	require.Len(t, steps, 6)
	assert.Equal(t, stepLoadingData, steps[0].Name)
	assert.Equal(t, stepStoringResult, steps[5].Name)
	for _, step := range steps {
		assert.Equal(t, "pending", step.Status)
	}
}
