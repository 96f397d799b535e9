package segmenter

import (
	"log"
	"regexp"
	"strings"

	"zoningcheck-backend/models"
)

// UnsegmentedHeading is the placeholder heading used when a document contains
// no detectable article boundaries.
const UnsegmentedHeading = "(Unsegmented document)"

// Article boundary matchers, tried in strict priority order. The first matcher
// with at least one hit governs the whole document, so article numbers from
// incompatible formats never collide within one document.
var articleMatchers = []*regexp.Regexp{
	// Markdown heading: "## Artikel 3 Bijbehorende bouwwerken"
	regexp.MustCompile(`(?mi)^#{1,6}\s*artikel\s+(\d+(?:\.\d+)*|[IVXLCDM]+)\b[^\n]*$`),
	// Bold marker: "**Artikel 3 Bijbehorende bouwwerken**"
	regexp.MustCompile(`(?mi)^\*\*artikel\s+(\d+(?:\.\d+)*|[IVXLCDM]+)\b[^*\n]*\*\*.*$`),
	// Plain text: "Artikel 3 Bijbehorende bouwwerken"
	regexp.MustCompile(`(?mi)^artikel\s+(\d+(?:\.\d+)*|[IVXLCDM]+)\b[^\n]*$`),
}

func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}

// findArticleHeaders returns the submatch index pairs of the first matcher
// that produces any hit, or nil when no matcher applies.
func findArticleHeaders(text string) [][]int {
	for _, re := range articleMatchers {
		if matches := re.FindAllStringSubmatchIndex(text, -1); len(matches) > 0 {
			return matches
		}
	}
	return nil
}

// SplitByArticle partitions one document's text into an ordered sequence of
// legal chunks, one per detected article. A document with no detectable
// boundaries degrades to a single unsegmented chunk; that is expected for
// non-conforming documents and is not an error.
func SplitByArticle(doc models.ZoningDocument) []models.LegalChunk {
	text := normalizeText(doc.Text)
	matches := findArticleHeaders(text)

	if len(matches) == 0 {
		log.Printf("No article boundaries detected for doc='%s'. Returning single chunk.", doc.Title)
		return []models.LegalChunk{
			{
				DocID:           doc.ID,
				DocTitle:        doc.Title,
				DocumentType:    doc.DocumentType,
				EstablishedDate: doc.EstablishedDate,
				ArticleID:       nil,
				Heading:         UnsegmentedHeading,
				Text:            text,
			},
		}
	}

	chunks := make([]models.LegalChunk, 0, len(matches))
	for i, m := range matches {
		start := m[0]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		articleID := strings.TrimSpace(text[m[2]:m[3]])
		heading := strings.TrimSpace(text[m[0]:m[1]])

		chunks = append(chunks, models.LegalChunk{
			DocID:           doc.ID,
			DocTitle:        doc.Title,
			DocumentType:    doc.DocumentType,
			EstablishedDate: doc.EstablishedDate,
			ArticleID:       &articleID,
			Heading:         heading,
			Text:            strings.TrimSpace(text[start:end]),
		})
	}

	return chunks
}
