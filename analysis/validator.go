package analysis

import (
	"log"
	"regexp"
	"strings"

	"zoningcheck-backend/models"
)

// permitFreePhraseRe matches the explicit permit-free phrases an affirmative
// decision must be grounded in.
var permitFreePhraseRe = regexp.MustCompile(
	`(?i)\b(vergunningsvrij|vergunningvrij|zonder omgevingsvergunning|geen omgevingsvergunning|niet vergunningplichtig|uitzondering op de vergunningplicht|is niet van toepassing)\b`,
)

const (
	groundingNote = "No explicit 'permit-free' language found in the provided excerpts; verify complete applicable articles."

	residentialRiskFlag = "Living space in outbuilding is high-risk"
)

// ValidateGrounding post-processes a decision-maker assessment against the
// context it was given. A "Yes" is only trustworthy when the context contains
// an explicit permit-free phrase; otherwise the decision is downgraded to
// "Conditional" with an explanatory note. Residential plans additionally get
// a high-risk flag, appended at most once. The input is never modified; an
// amended copy is returned. The decision is only ever downgraded, never
// upgraded.
func ValidateGrounding(assessment models.ZoningAssessment, plan models.ResidentPlan, contextText string) models.ZoningAssessment {
	out := assessment
	out.CitedEvidence = append([]models.Evidence(nil), assessment.CitedEvidence...)
	out.Assumptions = append([]string(nil), assessment.Assumptions...)
	out.MissingInformation = append([]string(nil), assessment.MissingInformation...)
	out.RiskFlags = append([]string(nil), assessment.RiskFlags...)

	if out.PermitFree == models.PermitYes && !permitFreePhraseRe.MatchString(strings.ToLower(contextText)) {
		log.Printf("Downgrading Yes -> Conditional: no explicit permit-free signal found in context")
		out.PermitFree = models.PermitConditional
		out.MissingInformation = append(out.MissingInformation, groundingNote)
	}

	if plan.IsResidential() && !containsFlag(out.RiskFlags, residentialRiskFlag) {
		out.RiskFlags = append(out.RiskFlags, residentialRiskFlag)
	}

	return out
}

func containsFlag(flags []string, flag string) bool {
	for _, f := range flags {
		if f == flag {
			return true
		}
	}
	return false
}
