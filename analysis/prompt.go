package analysis

import (
	"fmt"

	"zoningcheck-backend/models"
)

// systemPrompt instructs the decision-maker to answer strictly from the
// provided excerpts and to treat living space in an outbuilding as high-risk.
const systemPrompt = `You are a Dutch zoning & permitting expert (Ruimtelijke Ordening / Omgevingswet).
Your task: Decide if the resident's plan is PERMIT-FREE (vergunningsvrij) at the given address.

HARD RULES:
1) Use ONLY the provided 'Relevant Excerpts'.
2) Answer 'Yes' ONLY if the excerpts explicitly indicate permit-free, e.g. 'vergunningsvrij', 'zonder omgevingsvergunning', 'niet vergunningplichtig', or 'is niet van toepassing'.
3) If a rule allows building/usage but does NOT explicitly say permit-free, answer 'No' (permit required).

TRAP / HIGH-RISK NUANCE:
- The plan is an outbuilding (bijbehorend bouwwerk) used as Living Space (verblijfsgebied / woonfunctie).
- Outbuildings are often only permit-free for storage/hobby; living space frequently triggers permits.
- Therefore: you MUST explicitly check whether the permit-free clause (if any) allows a verblijfsgebied/woonfunctie inside the outbuilding. If unclear, answer 'No' or 'Conditional'.

OUTPUT REQUIREMENTS:
Respond with a single JSON object, no markdown, with exactly these fields:
- "permit_free": "Yes" | "No" | "Conditional"
- "summary": concise explanation referencing the evidence
- "cited_evidence": non-empty array of {"source_document", "article", "excerpt", "relevance"} with short excerpts (<= ~30 words each)
- "suggested_changes": optional string with minor changes that could make the plan permit-free
- "assumptions": array of strings
- "missing_information": array of strings (required when Conditional)
- "risk_flags": array of strings`

// BuildAssessmentPrompt renders the full decision-maker request for one
// property: address, plot metadata, resident plan and the assembled excerpts.
func BuildAssessmentPrompt(address string, metadata models.ZoningMetadata, plan models.ResidentPlan, contextText string) string {
	return fmt.Sprintf("%s\n\nAddress:\n%s\n\nPlot metadata (bestemmingsvlakken & maatvoeringen):\n%s\n\nResident plan:\n%s\n\nRelevant Excerpts (only source of truth):\n%s\n",
		systemPrompt, address, metadata.AsText(), plan.AsText(), contextText)
}
