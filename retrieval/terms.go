package retrieval

import (
	"regexp"
	"strings"
)

// permitFreeSignals are the explicit phrases meaning a construction or use is
// exempt from the permit obligation. These drive both gate admission and the
// grounding check on decision-maker output.
var permitFreeSignals = []string{
	"vergunningsvrij",
	"vergunningvrij",
	"zonder omgevingsvergunning",
	"geen omgevingsvergunning",
	"niet vergunningplichtig",
	"uitzondering op de vergunningplicht",
	"is niet van toepassing",
}

// constructionGate is the broad admission vocabulary: any chunk mentioning one
// of these construction-domain keywords is plausibly relevant.
var constructionGate = []string{
	"bouw", "bouwen", "bouwwerk", "bouwwerken",
	"bijbehorend", "bijgebouw", "erf", "achtererf",
	"aanbouw", "uitbouw", "erker", "berging", "schuur", "tuinhuis", "garage", "carport",
	"dakterras", "balkon",
	"omgevingsplanactiviteit", "bouwactiviteit",
	"vergunningplicht", "omgevingsvergunning",
}

// planTerms are designation-independent planning terms rewarded by the scorer.
var planTerms = []string{
	"bijbehorend bouwwerk",
	"bijgebouw",
	"erfbebouwing",
	"achtererfgebied",
	"oppervlakte",
	"bouwhoogte",
	"goothoogte",
	"m2",
}

// livingSpaceTerms mark rules about habitable use, which frequently trigger
// permit obligations for outbuildings.
var livingSpaceTerms = []string{
	"verblijfsgebied",
	"verblijfsruimte",
	"woonfunctie",
	"bewoning",
	"wonen",
	"permanente bewoning",
}

var trailingZoneIndexRe = regexp.MustCompile(`\s+\d+$`)

// PermitFreeSignals returns the fixed permit-free phrase set.
func PermitFreeSignals() []string {
	out := make([]string, len(permitFreeSignals))
	copy(out, permitFreeSignals)
	return out
}

// NormalizeDesignations expands raw zoning-designation labels into an ordered,
// duplicate-free list of lowercase lexical variants for substring matching.
// For a compound label like "Wonen - Tuin 2" this yields the full label, the
// segment after the last hyphen, and the label with its trailing zone index
// stripped.
func NormalizeDesignations(bestemmingsvlakken []string) []string {
	var terms []string
	for _, raw := range bestemmingsvlakken {
		s := strings.ToLower(strings.TrimSpace(raw))
		if s == "" {
			continue
		}
		terms = append(terms, s)

		if strings.Contains(s, "-") {
			var parts []string
			for _, p := range strings.Split(s, "-") {
				if p = strings.TrimSpace(p); p != "" {
					parts = append(parts, p)
				}
			}
			if len(parts) > 0 {
				terms = append(terms, parts[len(parts)-1])
			}
		}

		s2 := strings.TrimSpace(trailingZoneIndexRe.ReplaceAllString(s, ""))
		if s2 != "" && s2 != s {
			terms = append(terms, s2)
		}
	}

	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		out = append(out, t)
		seen[t] = struct{}{}
	}
	return out
}
