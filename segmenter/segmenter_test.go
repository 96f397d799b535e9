package segmenter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zoningcheck-backend/models"
)

func testDoc(text string) models.ZoningDocument {
	return models.ZoningDocument{
		ID:           "doc-1",
		Title:        "Bestemmingsplan Centrum",
		Text:         text,
		DocumentType: "Bestemmingsplan",
	}
}

func TestSplitByArticleHeadingMarkers(t *testing.T) {
	text := "## Artikel 1 Begripsbepalingen\nIn dit plan wordt verstaan onder erf: het gebied achter de woning.\n" +
		"## Artikel 2 Bouwregels\nBouwwerken zijn toegestaan tot een bouwhoogte van 3 m.\n" +
		"## Artikel 3 Bijbehorende bouwwerken\nEen bijbehorend bouwwerk is vergunningsvrij mits niet voor bewoning."

	chunks := SplitByArticle(testDoc(text))
	require.Len(t, chunks, 3)

	require.NotNil(t, chunks[0].ArticleID)
	assert.Equal(t, "1", *chunks[0].ArticleID)
	assert.Equal(t, "## Artikel 1 Begripsbepalingen", chunks[0].Heading)
	assert.Equal(t, "2", *chunks[1].ArticleID)
	assert.Equal(t, "3", *chunks[2].ArticleID)
	assert.Contains(t, chunks[2].Text, "vergunningsvrij")

	for _, c := range chunks {
		assert.Equal(t, "doc-1", c.DocID)
		assert.Equal(t, "Bestemmingsplan Centrum", c.DocTitle)
	}
}

func TestSplitByArticleBoldFallback(t *testing.T) {
	text := "**Artikel 1 Begripsbepalingen**\nDefinitie van erf.\n" +
		"**Artikel 2 Bouwregels**\nRegels over bouwhoogte."

	chunks := SplitByArticle(testDoc(text))
	require.Len(t, chunks, 2)
	assert.Equal(t, "1", *chunks[0].ArticleID)
	assert.Equal(t, "**Artikel 1 Begripsbepalingen**", chunks[0].Heading)
	assert.Equal(t, "2", *chunks[1].ArticleID)
}

func TestSplitByArticlePlainFallback(t *testing.T) {
	text := "Artikel 2.1 Bouwregels\nRegels over bouwen.\n" +
		"Artikel 2.2 Gebruiksregels\nRegels over gebruik.\n" +
		"Artikel IV Overgangsrecht\nOvergangsbepalingen."

	chunks := SplitByArticle(testDoc(text))
	require.Len(t, chunks, 3)
	assert.Equal(t, "2.1", *chunks[0].ArticleID)
	assert.Equal(t, "2.2", *chunks[1].ArticleID)
	assert.Equal(t, "IV", *chunks[2].ArticleID)
}

func TestSplitByArticleMatcherPriority(t *testing.T) {
	// When heading-style markers exist, bold and plain markers elsewhere in
	// the same document must not produce boundaries.
	text := "## Artikel 1 Begripsbepalingen\nZie ook **Artikel 9 Slotregel** hieronder.\n" +
		"Artikel 10 wordt hier slechts genoemd.\n" +
		"## Artikel 2 Bouwregels\nRegels."

	chunks := SplitByArticle(testDoc(text))
	require.Len(t, chunks, 2)
	assert.Equal(t, "1", *chunks[0].ArticleID)
	assert.Equal(t, "2", *chunks[1].ArticleID)
	assert.Contains(t, chunks[0].Text, "Artikel 9")
	assert.Contains(t, chunks[0].Text, "Artikel 10")
}

func TestSplitByArticleNoBoundaries(t *testing.T) {
	text := "Dit document bevat geen artikelstructuur, alleen lopende tekst over het plangebied."

	chunks := SplitByArticle(testDoc(text))
	require.Len(t, chunks, 1)
	assert.Nil(t, chunks[0].ArticleID)
	assert.Equal(t, UnsegmentedHeading, chunks[0].Heading)
	assert.Equal(t, text, chunks[0].Text)
	assert.Equal(t, "N/A", chunks[0].ArticleLabel())
}

func TestSplitByArticleLossless(t *testing.T) {
	// Articles separated by single newlines: rejoining the trimmed chunk
	// texts with a newline reconstructs the normalized document exactly.
	text := "## Artikel 1 Begripsbepalingen\nDefinities.\n" +
		"## Artikel 2 Bouwregels\nRegels over bouwwerken.\n" +
		"## Artikel 3 Slotregel\nSlotbepaling."

	chunks := SplitByArticle(testDoc(text))
	require.Len(t, chunks, 3)

	parts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		parts = append(parts, c.Text)
	}
	assert.Equal(t, text, strings.Join(parts, "\n"))
}

func TestSplitByArticleNormalizesLineEndings(t *testing.T) {
	text := "## Artikel 1 Begripsbepalingen\r\nDefinities.\r\n## Artikel 2 Bouwregels\r\nRegels.\r\n"

	chunks := SplitByArticle(testDoc(text))
	require.Len(t, chunks, 2)
	assert.NotContains(t, chunks[0].Text, "\r")
	assert.Equal(t, "## Artikel 2 Bouwregels\nRegels.", chunks[1].Text)
}
