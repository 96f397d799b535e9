package retrieval

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zoningcheck-backend/models"
)

func charEstimator(text, model string) int {
	return len(text)
}

func testDocuments() []models.ZoningDocument {
	date := "2023-05-01"
	return []models.ZoningDocument{
		{
			ID:           "doc-a",
			Title:        "Bestemmingsplan Centrum",
			DocumentType: "Bestemmingsplan",
			EstablishedDate: &date,
			Text: "## Artikel 1 Begripsbepalingen\nerf: al dan niet bebouwd perceel behorend bij een woning.\n" +
				"## Artikel 2 Bouwregels\nDe bouwhoogte van een bijbehorend bouwwerk bedraagt ten hoogste 3 m.\n" +
				"## Artikel 3 Vergunningsvrij bouwen\nEen bijgebouw is vergunningsvrij mits niet gebruikt als verblijfsgebied.",
		},
		{
			ID:           "doc-b",
			Title:        "Omgevingsplan Buitengebied",
			DocumentType: "Omgevingsplan",
			Text:         "## Artikel 1 Gebruiksregels\nGebruik als woonfunctie in een bijgebouw is niet toegestaan.",
		},
	}
}

func newTestAssembler(cfg Config) *Assembler {
	return NewAssembler(WithConfig(cfg), WithTokenEstimator(charEstimator))
}

func TestBuildContextForcedDefinitionsAndLivingSpace(t *testing.T) {
	a := newTestAssembler(DefaultConfig())
	ctx := a.BuildContext(testDocuments(), nil, residentialPlan())

	// Forced: definitions (doc-a art 1), living-space chunks (doc-a art 3,
	// doc-b art 1); ranked adds doc-a art 2.
	require.Len(t, ctx.Selected, 4)
	assert.Equal(t, "## Artikel 1 Begripsbepalingen", ctx.Selected[0].Heading)
	assert.Equal(t, "## Artikel 3 Vergunningsvrij bouwen", ctx.Selected[1].Heading)
	assert.Equal(t, "## Artikel 1 Gebruiksregels", ctx.Selected[2].Heading)
	assert.Equal(t, "## Artikel 2 Bouwregels", ctx.Selected[3].Heading)
}

func TestBuildContextForcedChunkNotDuplicatedByRanking(t *testing.T) {
	// Doc-a article 3 is both living-space forced and the top ranked chunk;
	// it must appear exactly once, among the forced entries.
	a := newTestAssembler(DefaultConfig())
	ctx := a.BuildContext(testDocuments(), nil, residentialPlan())

	count := 0
	for _, c := range ctx.Selected {
		if c.Heading == "## Artikel 3 Vergunningsvrij bouwen" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestBuildContextNoLivingSpaceForcingForStoragePlan(t *testing.T) {
	a := newTestAssembler(DefaultConfig())
	ctx := a.BuildContext(testDocuments(), nil, storagePlan())

	// Only the definitions chunk is forced; ranked chunks follow by score.
	require.NotEmpty(t, ctx.Selected)
	assert.Equal(t, "## Artikel 1 Begripsbepalingen", ctx.Selected[0].Heading)
	assert.Equal(t, "## Artikel 3 Vergunningsvrij bouwen", ctx.Selected[1].Heading)
}

func TestBuildContextTieBreakKeepsEncounterOrder(t *testing.T) {
	docs := []models.ZoningDocument{
		{
			ID:           "doc-t",
			Title:        "Bestemmingsplan Tuindorp",
			DocumentType: "Bestemmingsplan",
			Text: "## Artikel 4 Erfbebouwing\nRegels over erfbebouwing.\n" +
				"## Artikel 5 Erfbebouwing elders\nRegels over erfbebouwing.",
		},
	}

	a := newTestAssembler(DefaultConfig())
	ctx := a.BuildContext(docs, nil, storagePlan())

	require.Len(t, ctx.Selected, 2)
	assert.Equal(t, "4", *ctx.Selected[0].ArticleID)
	assert.Equal(t, "5", *ctx.Selected[1].ArticleID)
}

func TestBuildContextMaxChunksCapsRankedNotForced(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxChunks = 2
	a := newTestAssembler(cfg)

	ctx := a.BuildContext(testDocuments(), nil, residentialPlan())

	// Three chunks are forced; forced entries are exempt from the cap, so
	// they all survive, but no ranked chunk is added past the limit.
	require.Len(t, ctx.Selected, 3)
	for _, c := range ctx.Selected {
		assert.NotEqual(t, "## Artikel 2 Bouwregels", c.Heading)
	}
}

func TestBuildContextBudgetCutoffExposesBothLists(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxContextTokens = 1
	a := newTestAssembler(cfg)

	ctx := a.BuildContext(testDocuments(), nil, residentialPlan())

	// Budget too small for even one block: selection is unchanged but the
	// fitted context is empty.
	assert.Len(t, ctx.Selected, 4)
	assert.Empty(t, ctx.Fitted)
	assert.Equal(t, "", ctx.Text)
}

func TestBuildContextBudgetMonotonicity(t *testing.T) {
	docs := testDocuments()
	plan := residentialPlan()

	prev := 0
	for budget := 0; budget <= 2000; budget += 100 {
		cfg := DefaultConfig()
		cfg.MaxContextTokens = budget
		a := newTestAssembler(cfg)

		ctx := a.BuildContext(docs, nil, plan)
		fitted := len(ctx.Fitted)
		assert.GreaterOrEqual(t, fitted, prev, "fitted blocks must not shrink as budget grows (budget=%d)", budget)
		prev = fitted
	}
}

func TestBuildContextBlockFormat(t *testing.T) {
	a := newTestAssembler(DefaultConfig())
	ctx := a.BuildContext(testDocuments(), nil, residentialPlan())

	require.Len(t, ctx.Fitted, 4)
	assert.Contains(t, ctx.Text, "[SOURCE] Bestemmingsplan Centrum | doc_id=doc-a | type=Bestemmingsplan | date=2023-05-01")
	assert.Contains(t, ctx.Text, "[SOURCE] Omgevingsplan Buitengebied | doc_id=doc-b | type=Omgevingsplan | date=N/A")
	assert.Contains(t, ctx.Text, "[ARTICLE] 3")
	assert.Contains(t, ctx.Text, "[HEADING] ## Artikel 3 Vergunningsvrij bouwen")

	blocks := strings.Split(ctx.Text, "\n\n")
	assert.Len(t, blocks, 4)
}

func TestBuildContextDesignationTermsInfluenceRanking(t *testing.T) {
	docs := []models.ZoningDocument{
		{
			ID:           "doc-d",
			Title:        "Bestemmingsplan Dorp",
			DocumentType: "Bestemmingsplan",
			Text: "## Artikel 4 Tuin\nBinnen de bestemming tuin is een berging met een oppervlakte van 10 m2 toegestaan.\n" +
				"## Artikel 5 Verkeer\nBinnen de bestemming verkeer is een garage met een oppervlakte van 10 m2 toegestaan.",
		},
	}

	a := newTestAssembler(DefaultConfig())
	ctx := a.BuildContext(docs, []string{"Wonen - Tuin"}, storagePlan())

	require.Len(t, ctx.Selected, 2)
	// "tuin" is a designation variant, so article 4 outranks article 5.
	assert.Equal(t, "4", *ctx.Selected[0].ArticleID)
}
