package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"zoningcheck-backend/analysis"
	"zoningcheck-backend/ingestion"
	"zoningcheck-backend/models"
	"zoningcheck-backend/retrieval"
	"zoningcheck-backend/service"

	"github.com/joho/godotenv"
)

func main() {
	dataDir := flag.String("data-dir", "./data", "Directory containing zoning plan JSON files")
	files := flag.String("files", "", "Comma-separated list of files to analyze (default: all JSON files in data-dir)")
	model := flag.String("model", "gpt-4o", "Model hint for token estimation")
	maxContextTokens := flag.Int("max-context-tokens", 10000, "Token budget for the assembled context")
	maxChunks := flag.Int("max-chunks", 40, "Maximum number of chunks in the assembled context")
	outputJSON := flag.Bool("output-json", false, "Print the raw assessment JSON instead of a report")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: No .env file found, using environment variables")
	}

	loader := ingestion.NewLoader(*dataDir)

	var names []string
	if *files != "" {
		for _, name := range strings.Split(*files, ",") {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				names = append(names, trimmed)
			}
		}
	} else {
		var err error
		names, err = loader.ListJSONFiles()
		if err != nil {
			log.Fatalf("Failed to list zoning files: %v", err)
		}
	}
	if len(names) == 0 {
		log.Fatalf("No zoning files to analyze in %s", *dataDir)
	}

	cfg := retrieval.DefaultConfig()
	cfg.ModelForTokenEstimation = *model
	cfg.MaxContextTokens = *maxContextTokens
	cfg.MaxChunks = *maxChunks
	assembler := retrieval.NewAssembler(retrieval.WithConfig(cfg))

	assessor := service.NewGeminiAssessor(os.Getenv("GEMINI_API_KEY"))
	plan := models.DefaultResidentPlan()

	ctx := context.Background()
	failures := 0

	for _, name := range names {
		if err := analyzeFile(ctx, loader, assembler, assessor, plan, name, *outputJSON); err != nil {
			log.Printf("ERROR analyzing %s: %v", name, err)
			failures++
		}
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func analyzeFile(
	ctx context.Context,
	loader *ingestion.Loader,
	assembler *retrieval.Assembler,
	assessor *service.GeminiAssessor,
	plan models.ResidentPlan,
	name string,
	outputJSON bool,
) error {
	planFile, err := loader.LoadFile(name)
	if err != nil {
		return err
	}

	documents := loader.FilterDocuments(planFile.ZoningDocuments)
	log.Printf("%s: %d of %d documents after filtering", name, len(documents), len(planFile.ZoningDocuments))

	retrievalCtx := assembler.BuildContext(documents, planFile.ZoningMetadata.Bestemmingsvlakken, plan)

	prompt := analysis.BuildAssessmentPrompt(
		planFile.Address.DisplayAddress,
		planFile.ZoningMetadata,
		plan,
		retrievalCtx.Text,
	)

	raw, err := assessor.Assess(ctx, prompt)
	if err != nil {
		return fmt.Errorf("decision-maker call failed: %w", err)
	}

	payload := analysis.ExtractJSON(raw)
	if payload == "" {
		return fmt.Errorf("no JSON object found in response")
	}

	var assessment models.ZoningAssessment
	if err := json.Unmarshal([]byte(payload), &assessment); err != nil {
		return fmt.Errorf("failed to decode assessment: %w", err)
	}
	if err := assessment.Validate(); err != nil {
		return err
	}

	validated := analysis.ValidateGrounding(assessment, plan, retrievalCtx.Text)

	if outputJSON {
		out, err := json.MarshalIndent(validated, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	printReport(name, planFile.Address.DisplayAddress, validated)
	return nil
}

func printReport(name, address string, a models.ZoningAssessment) {
	fmt.Printf("\n==================================================\n")
	fmt.Printf("File:    %s\n", name)
	fmt.Printf("Address: %s\n", address)
	fmt.Printf("==================================================\n")
	fmt.Printf("Permit-free: %s\n", a.PermitFree)
	fmt.Printf("Summary:     %s\n", a.Summary)

	if len(a.CitedEvidence) > 0 {
		fmt.Println("\nCited evidence:")
		for _, ev := range a.CitedEvidence {
			article := ""
			if ev.Article != nil {
				article = fmt.Sprintf(" (artikel %s)", *ev.Article)
			}
			fmt.Printf("  - %s%s: %q\n    %s\n", ev.SourceDocument, article, ev.Excerpt, ev.Relevance)
		}
	}
	if a.SuggestedChanges != nil && *a.SuggestedChanges != "" {
		fmt.Printf("\nSuggested changes: %s\n", *a.SuggestedChanges)
	}
	if len(a.Assumptions) > 0 {
		fmt.Println("\nAssumptions:")
		for _, item := range a.Assumptions {
			fmt.Printf("  - %s\n", item)
		}
	}
	if len(a.MissingInformation) > 0 {
		fmt.Println("\nMissing information:")
		for _, item := range a.MissingInformation {
			fmt.Printf("  - %s\n", item)
		}
	}
	if len(a.RiskFlags) > 0 {
		fmt.Println("\nRisk flags:")
		for _, item := range a.RiskFlags {
			fmt.Printf("  - %s\n", item)
		}
	}
}
