package retrieval

import (
	"strings"

	"zoningcheck-backend/models"
)

func chunkSearchText(chunk models.LegalChunk) string {
	return strings.ToLower(chunk.Heading + "\n" + chunk.Text)
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// PassesGate reports whether a chunk is plausibly relevant to the property and
// plan. This is a strict superset filter: it bounds the scoring step, it does
// not rank. A chunk is admitted when it mentions a permit-free phrase, one of
// the property's designation terms, a construction-domain keyword, or (for a
// residential plan) a living-space keyword.
func PassesGate(chunk models.LegalChunk, designationTerms []string, plan models.ResidentPlan) bool {
	text := chunkSearchText(chunk)

	if containsAny(text, permitFreeSignals) {
		return true
	}
	if containsAny(text, designationTerms) {
		return true
	}
	if containsAny(text, constructionGate) {
		return true
	}
	if plan.IsResidential() && containsAny(text, livingSpaceTerms) {
		return true
	}

	return false
}

// ScoreChunk computes the additive relevance score of a chunk. The absolute
// magnitude has no external meaning; scores only order admitted chunks.
// Permit-free phrases dominate, planning terms and designation matches add
// moderate weight, and living-space hits count only for residential plans.
func ScoreChunk(chunk models.LegalChunk, designationTerms []string, plan models.ResidentPlan) int {
	text := chunkSearchText(chunk)
	score := 0

	for _, sig := range permitFreeSignals {
		if strings.Contains(text, sig) {
			score += 50
		}
	}

	for _, t := range planTerms {
		if strings.Contains(text, t) {
			score += 20
		}
	}

	for _, t := range designationTerms {
		if t != "" && strings.Contains(text, t) {
			score += 10
		}
	}

	if plan.IsResidential() {
		for _, t := range livingSpaceTerms {
			if strings.Contains(text, t) {
				score += 25
			}
		}
	}

	if strings.Contains(text, "uitzondering") {
		score += 8
	}
	if strings.Contains(text, "vergunningplicht") {
		score += 8
	}

	return score
}
