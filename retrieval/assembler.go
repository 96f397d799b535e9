package retrieval

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"zoningcheck-backend/models"
	"zoningcheck-backend/segmenter"
)

// Config controls context assembly.
type Config struct {
	ModelForTokenEstimation string
	MaxContextTokens        int
	MaxChunks               int

	// IncludeDefinitions forces the first definitions section into the
	// context so the decision-maker can resolve defined terms.
	IncludeDefinitions bool

	// ForceLivingSpaceChunks forces every living-space rule into the context
	// when the plan is residential.
	ForceLivingSpaceChunks bool
}

// DefaultConfig returns the standard assembly configuration.
func DefaultConfig() Config {
	return Config{
		ModelForTokenEstimation: "gpt-4o",
		MaxContextTokens:        10000,
		MaxChunks:               40,
		IncludeDefinitions:      true,
		ForceLivingSpaceChunks:  true,
	}
}

// Context is the result of one assembly run. Selected is the full pre-budget
// selection; Fitted is the subset whose rendered blocks fit the token budget
// and therefore make up Text. The two can diverge when a late selection falls
// past the budget cutoff, so both are exposed.
type Context struct {
	Text     string
	Selected []models.LegalChunk
	Fitted   []models.LegalChunk
}

// Assembler turns a set of zoning documents into a bounded context string for
// the decision-maker: segment, force-include, gate, score, rank, deduplicate,
// then greedily pack rendered blocks under the token budget.
type Assembler struct {
	cfg      Config
	estimate TokenEstimator
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithConfig sets the assembly configuration.
func WithConfig(cfg Config) AssemblerOption {
	return func(a *Assembler) {
		a.cfg = cfg
	}
}

// WithTokenEstimator sets the token estimation function.
func WithTokenEstimator(fn TokenEstimator) AssemblerOption {
	return func(a *Assembler) {
		a.estimate = fn
	}
}

// NewAssembler creates a new assembler with the given options.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		cfg:      DefaultConfig(),
		estimate: EstimateTokens,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type scoredChunk struct {
	score int
	chunk models.LegalChunk
}

// BuildContext assembles the retrieval context for one analysis run.
// Documents are processed in the given order; in-document order follows the
// segmenter. Equal-score chunks retain encounter order.
func (a *Assembler) BuildContext(documents []models.ZoningDocument, designations []string, plan models.ResidentPlan) Context {
	cfg := a.cfg
	designationTerms := NormalizeDesignations(designations)

	var allChunks []models.LegalChunk
	for _, doc := range documents {
		allChunks = append(allChunks, segmenter.SplitByArticle(doc)...)
	}

	var forced []models.LegalChunk
	if cfg.IncludeDefinitions {
		for _, c := range allChunks {
			h := strings.ToLower(c.Heading)
			if strings.Contains(h, "begrip") || strings.Contains(h, "begripsbepal") {
				forced = append(forced, c)
				break
			}
		}
	}

	if cfg.ForceLivingSpaceChunks && plan.IsResidential() {
		for _, c := range allChunks {
			text := chunkSearchText(c)
			if strings.Contains(text, "verblijfsgebied") || strings.Contains(text, "woonfunctie") {
				forced = append(forced, c)
			}
		}
	}

	var scored []scoredChunk
	for _, c := range allChunks {
		if !PassesGate(c, designationTerms, plan) {
			continue
		}
		if score := ScoreChunk(c, designationTerms, plan); score > 0 {
			scored = append(scored, scoredChunk{score: score, chunk: c})
		}
	}

	// Stable sort so equal scores keep encounter order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	var selected []models.LegalChunk
	seen := make(map[models.ChunkKey]struct{})

	addChunk := func(c models.LegalChunk) {
		key := c.Key()
		if _, ok := seen[key]; ok {
			return
		}
		selected = append(selected, c)
		seen[key] = struct{}{}
	}

	// Forced chunks first; they count toward but are never cut by MaxChunks.
	for _, c := range forced {
		addChunk(c)
	}

	for _, sc := range scored {
		if len(selected) >= cfg.MaxChunks {
			break
		}
		addChunk(sc.chunk)
	}

	var contextParts []string
	var fitted []models.LegalChunk
	tokensUsed := 0

	for _, c := range selected {
		block := renderBlock(c)
		blockTokens := a.estimate(block, cfg.ModelForTokenEstimation)
		if tokensUsed+blockTokens > cfg.MaxContextTokens {
			break
		}
		contextParts = append(contextParts, block)
		fitted = append(fitted, c)
		tokensUsed += blockTokens
	}

	context := strings.TrimSpace(strings.Join(contextParts, "\n\n"))

	log.Printf("Assembled context with %d of %d selected chunks (~%d tokens)",
		len(fitted), len(selected), tokensUsed)

	return Context{
		Text:     context,
		Selected: selected,
		Fitted:   fitted,
	}
}

// renderBlock renders one chunk as the fixed four-line context block.
func renderBlock(c models.LegalChunk) string {
	date := "N/A"
	if c.EstablishedDate != nil && *c.EstablishedDate != "" {
		date = *c.EstablishedDate
	}
	return fmt.Sprintf("[SOURCE] %s | doc_id=%s | type=%s | date=%s\n[ARTICLE] %s\n[HEADING] %s\n%s\n",
		c.DocTitle, c.DocID, c.DocumentType, date, c.ArticleLabel(), c.Heading, c.Text)
}
