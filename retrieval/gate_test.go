package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"zoningcheck-backend/models"
)

func chunk(heading, text string) models.LegalChunk {
	return models.LegalChunk{
		DocID:    "doc-1",
		DocTitle: "Bestemmingsplan Centrum",
		Heading:  heading,
		Text:     text,
	}
}

func residentialPlan() models.ResidentPlan {
	return models.DefaultResidentPlan()
}

func storagePlan() models.ResidentPlan {
	p := models.DefaultResidentPlan()
	p.IntendedUse = "Storage of garden tools"
	return p
}

func TestGateAdmitsPermitFreePhrase(t *testing.T) {
	c := chunk("## Artikel 5 Uitzonderingen", "Deze regel is niet van toepassing op kleine aanpassingen.")
	assert.True(t, PassesGate(c, nil, storagePlan()))
}

func TestGateAdmitsDesignationTerm(t *testing.T) {
	c := chunk("## Artikel 7 Groenvoorziening", "Binnen de groenzone geldt een plicht tot instandhouding.")
	terms := NormalizeDesignations([]string{"Groen"})
	assert.True(t, PassesGate(c, terms, storagePlan()))
}

func TestGateAdmitsConstructionKeyword(t *testing.T) {
	c := chunk("## Artikel 4", "Een carport mag worden geplaatst naast de woning.")
	assert.True(t, PassesGate(c, nil, storagePlan()))
}

func TestGateLivingSpaceBranchRequiresResidentialPlan(t *testing.T) {
	c := chunk("## Artikel 6", "Permanente bewoning van recreatieverblijven is verboden.")
	assert.True(t, PassesGate(c, nil, residentialPlan()))
	assert.False(t, PassesGate(c, nil, storagePlan()))
}

func TestGateRejectsIrrelevantChunk(t *testing.T) {
	c := chunk("## Artikel 12 Archeologie", "Bodemonderzoek is verplicht bij graafwerkzaamheden dieper dan 50 cm.")
	assert.False(t, PassesGate(c, nil, storagePlan()))
}

func TestScorePermitFreeSignals(t *testing.T) {
	c := chunk("## Artikel 3", "Een dakkapel is vergunningsvrij en een zonnepaneel zonder omgevingsvergunning toegestaan.")
	// Two distinct permit-free phrases; the construction keyword branch does
	// not score on its own.
	score := ScoreChunk(c, nil, storagePlan())
	assert.Equal(t, 100, score)
}

func TestScorePlanTermsAndDesignations(t *testing.T) {
	c := chunk("## Artikel 3 Bijbehorende bouwwerken",
		"De oppervlakte van een bijbehorend bouwwerk in de bestemming wonen bedraagt ten hoogste 30 m2.")
	terms := NormalizeDesignations([]string{"Wonen"})

	// plan terms: "bijbehorend bouwwerk", "oppervlakte", "m2" = 60;
	// designation "wonen" = 10.
	score := ScoreChunk(c, terms, storagePlan())
	assert.Equal(t, 70, score)
}

func TestScoreLivingSpaceOnlyForResidentialPlan(t *testing.T) {
	c := chunk("## Artikel 6", "Gebruik als verblijfsgebied is uitgesloten.")

	base := ScoreChunk(c, nil, storagePlan())
	residential := ScoreChunk(c, nil, residentialPlan())
	assert.Greater(t, residential, base)
}

func TestScoreExceptionAndObligationBonuses(t *testing.T) {
	c := chunk("## Artikel 8", "Een uitzondering op de vergunningplicht geldt voor bouwwerken achter de voorgevel.")
	// permit-free phrase "uitzondering op de vergunningplicht" = 50,
	// "uitzondering" bonus = 8, "vergunningplicht" bonus = 8.
	score := ScoreChunk(c, nil, storagePlan())
	assert.Equal(t, 66, score)
}

func TestGateIsSupersetOfScorer(t *testing.T) {
	chunks := []models.LegalChunk{
		chunk("## Artikel 1 Begripsbepalingen", "erf: al dan niet bebouwd perceel."),
		chunk("## Artikel 3 Bijbehorende bouwwerken", "Een bijgebouw is vergunningsvrij."),
		chunk("## Artikel 6 Wonen", "Gebruik als verblijfsgebied met woonfunctie."),
		chunk("## Artikel 12 Archeologie", "Bodemonderzoek is verplicht."),
	}
	terms := NormalizeDesignations([]string{"Wonen - Tuin"})
	plan := residentialPlan()

	for _, c := range chunks {
		if ScoreChunk(c, terms, plan) > 0 {
			assert.True(t, PassesGate(c, terms, plan), "scored chunk must pass gate: %s", c.Heading)
		}
	}
}
