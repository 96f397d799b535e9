package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"zoningcheck-backend/analysis"
	"zoningcheck-backend/ingestion"
	"zoningcheck-backend/models"
	"zoningcheck-backend/repository"
	"zoningcheck-backend/retrieval"
	"zoningcheck-backend/segmenter"
	"zoningcheck-backend/storage"

	"github.com/google/uuid"
)

// Assessor is the external decision-maker boundary: it receives a rendered
// prompt and returns the raw response text. Implemented against the Gemini
// API in production and stubbed in tests.
type Assessor interface {
	Assess(ctx context.Context, prompt string) (string, error)
}

// AnalysisService orchestrates the permit-free analysis pipeline
type AnalysisService struct {
	propertyRepo *repository.PropertyRepository
	jobRepo      *repository.AnalysisJobRepository
	fileRepo     *repository.FileRepository
	chunkRepo    *repository.LegalChunkRepository
	store        storage.Storage
	assembler    *retrieval.Assembler
	assessor     Assessor
	filterConfig ingestion.FilterConfig
}

// AnalysisServiceOption is a functional option for AnalysisService
type AnalysisServiceOption func(*AnalysisService)

// AnalysisWithPropertyRepository sets the property repository
func AnalysisWithPropertyRepository(repo *repository.PropertyRepository) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.propertyRepo = repo
	}
}

// AnalysisWithJobRepository sets the analysis job repository
func AnalysisWithJobRepository(repo *repository.AnalysisJobRepository) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.jobRepo = repo
	}
}

// AnalysisWithFileRepository sets the file repository
func AnalysisWithFileRepository(repo *repository.FileRepository) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.fileRepo = repo
	}
}

// AnalysisWithLegalChunkRepository sets the legal chunk repository
func AnalysisWithLegalChunkRepository(repo *repository.LegalChunkRepository) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.chunkRepo = repo
	}
}

// AnalysisWithStorage sets the file storage backend
func AnalysisWithStorage(store storage.Storage) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.store = store
	}
}

// AnalysisWithAssembler sets the context assembler
func AnalysisWithAssembler(assembler *retrieval.Assembler) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.assembler = assembler
	}
}

// AnalysisWithAssessor sets the decision-maker client
func AnalysisWithAssessor(assessor Assessor) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.assessor = assessor
	}
}

// AnalysisWithFilterConfig sets the document filter configuration
func AnalysisWithFilterConfig(cfg ingestion.FilterConfig) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.filterConfig = cfg
	}
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(opts ...AnalysisServiceOption) *AnalysisService {
	s := &AnalysisService{
		assembler:    retrieval.NewAssembler(),
		filterConfig: ingestion.DefaultFilterConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	ErrPropertyNotFound    = errors.New("property not found")
	ErrMissingPlanFile     = errors.New("property has no zoning plan file attached")
	ErrJobCreationFailed   = errors.New("failed to create analysis job")
	ErrAssessmentFailed    = errors.New("failed to obtain assessment")
	ErrMalformedAssessment = errors.New("decision-maker response does not match the assessment shape")
	ErrJobNotFound         = errors.New("analysis job not found")
)

const (
	generationAPI  = "https://generativelanguage.googleapis.com/v1beta/models/gemini-3-pro-preview:generateContent"
	maxRetries     = 3
	initialBackoff = time.Second
	maxPromptChars = 30000
)

// Analysis pipeline step names, in execution order.
const (
	stepLoadingData   = "Loading Zoning Data"
	stepFiltering     = "Filtering Documents"
	stepAssembling    = "Assembling Context"
	stepAssessing     = "Consulting Decision Maker"
	stepValidating    = "Validating Grounding"
	stepStoringResult = "Storing Assessment"
)

// GenerateAssessmentRequest represents a request to start an analysis
type GenerateAssessmentRequest struct {
	PropertyID uuid.UUID
}

// GenerateAssessmentResult represents the result of creating an analysis job
type GenerateAssessmentResult struct {
	JobID uuid.UUID
}

// GetJobStatusRequest represents a request to get job status
type GetJobStatusRequest struct {
	JobID uuid.UUID
}

// GetJobStatusResult represents the result of getting job status
type GetJobStatusResult struct {
	Job *models.AnalysisJob
}

// GenerateAssessment creates an analysis job and returns immediately.
// The actual work happens in ProcessAnalysis, run in a background goroutine.
func (s *AnalysisService) GenerateAssessment(
	ctx context.Context,
	req GenerateAssessmentRequest,
) (*GenerateAssessmentResult, error) {
	if s.propertyRepo == nil {
		return nil, errors.New("property repository not set")
	}
	if s.jobRepo == nil {
		return nil, errors.New("analysis job repository not set")
	}

	property, err := s.propertyRepo.GetByID(ctx, req.PropertyID)
	if err != nil {
		return nil, ErrPropertyNotFound
	}

	if property.PlanFileID == nil {
		return nil, ErrMissingPlanFile
	}

	job := &models.AnalysisJob{
		ID:         uuid.New(),
		PropertyID: req.PropertyID,
		Status:     models.JobStatusPending,
		Steps:      initializeSteps(),
	}

	err = s.jobRepo.Create(ctx, job)
	if err != nil {
		return nil, ErrJobCreationFailed
	}

	return &GenerateAssessmentResult{
		JobID: job.ID,
	}, nil
}

// GetJobStatus retrieves the status of an analysis job
func (s *AnalysisService) GetJobStatus(
	ctx context.Context,
	req GetJobStatusRequest,
) (*GetJobStatusResult, error) {
	if s.jobRepo == nil {
		return nil, errors.New("analysis job repository not set")
	}

	job, err := s.jobRepo.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, ErrJobNotFound
	}

	return &GetJobStatusResult{
		Job: job,
	}, nil
}

// initializeSteps creates the fixed analysis pipeline steps
func initializeSteps() models.AnalysisSteps {
	names := []string{
		stepLoadingData,
		stepFiltering,
		stepAssembling,
		stepAssessing,
		stepValidating,
		stepStoringResult,
	}

	steps := make(models.AnalysisSteps, 0, len(names))
	for _, name := range names {
		steps = append(steps, models.AnalysisStep{
			Name:   name,
			Status: "pending",
		})
	}
	return steps
}

// ProcessAnalysis performs the actual analysis work in the background.
// This method runs in a goroutine and can take tens of seconds.
func (s *AnalysisService) ProcessAnalysis(
	ctx context.Context,
	jobID uuid.UUID,
) error {
	if s.jobRepo == nil {
		return errors.New("analysis job repository not set")
	}
	if s.propertyRepo == nil {
		return errors.New("property repository not set")
	}
	if s.assessor == nil {
		return errors.New("assessor not set")
	}

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load analysis job: %w", err)
	}

	property, err := s.propertyRepo.GetByID(ctx, job.PropertyID)
	if err != nil {
		s.markJobFailed(ctx, jobID, "failed to load property: "+err.Error())
		return err
	}

	err = s.jobRepo.UpdateStatus(ctx, jobID, models.JobStatusInProgress)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	err = s.propertyRepo.UpdateStatus(ctx, job.PropertyID, models.StatusInProgress)
	if err != nil {
		s.markJobFailed(ctx, jobID, "failed to update property status: "+err.Error())
		return err
	}

	// 1. Load and validate the zoning plan file
	if err := s.updateStepStatus(ctx, jobID, stepLoadingData, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	planFile, err := s.loadPlanFile(ctx, property)
	if err != nil {
		s.markJobFailed(ctx, jobID, "failed to load zoning plan file: "+err.Error())
		return err
	}

	if err := s.updateStepStatus(ctx, jobID, stepLoadingData, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	// 2. Filter documents
	if err := s.updateStepStatus(ctx, jobID, stepFiltering, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	documents := ingestion.FilterDocuments(planFile.ZoningDocuments, s.filterConfig)
	log.Printf("Documents considered for property %s: %d of %d (after type/parapluplan filtering)",
		job.PropertyID, len(documents), len(planFile.ZoningDocuments))

	if err := s.updateStepStatus(ctx, jobID, stepFiltering, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	// 3. Assemble retrieval context
	if err := s.updateStepStatus(ctx, jobID, stepAssembling, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	plan := models.DefaultResidentPlan()
	if property.Plan != nil {
		plan = *property.Plan
	}

	retrievalCtx := s.assembler.BuildContext(documents, planFile.ZoningMetadata.Bestemmingsvlakken, plan)

	s.persistChunks(ctx, documents)

	if err := s.updateStepStatus(ctx, jobID, stepAssembling, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	// 4. Consult the decision-maker
	if err := s.updateStepStatus(ctx, jobID, stepAssessing, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	prompt := analysis.BuildAssessmentPrompt(
		planFile.Address.DisplayAddress,
		planFile.ZoningMetadata,
		plan,
		retrievalCtx.Text,
	)

	rawResponse, err := s.assessor.Assess(ctx, prompt)
	if err != nil {
		s.markJobFailed(ctx, jobID, "decision-maker call failed: "+err.Error())
		return fmt.Errorf("%w: %v", ErrAssessmentFailed, err)
	}

	if err := s.updateStepStatus(ctx, jobID, stepAssessing, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	// 5. Parse and validate grounding
	if err := s.updateStepStatus(ctx, jobID, stepValidating, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	assessment, err := parseAssessment(rawResponse)
	if err != nil {
		s.markJobFailed(ctx, jobID, "malformed assessment: "+err.Error())
		return fmt.Errorf("%w: %v", ErrMalformedAssessment, err)
	}

	validated := analysis.ValidateGrounding(*assessment, plan, retrievalCtx.Text)

	if err := s.updateStepStatus(ctx, jobID, stepValidating, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	// 6. Store the result
	if err := s.updateStepStatus(ctx, jobID, stepStoringResult, "in_progress"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	err = s.propertyRepo.UpdateAssessment(ctx, job.PropertyID, &validated)
	if err != nil {
		s.markJobFailed(ctx, jobID, "failed to store assessment: "+err.Error())
		return err
	}

	if err := s.updateStepStatus(ctx, jobID, stepStoringResult, "completed"); err != nil {
		s.markJobFailed(ctx, jobID, "failed to update step: "+err.Error())
		return err
	}

	err = s.jobRepo.Complete(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	return nil
}

// loadPlanFile downloads and decodes the property's zoning plan file
func (s *AnalysisService) loadPlanFile(ctx context.Context, property *models.Property) (*models.ZoningPlanFile, error) {
	if s.fileRepo == nil {
		return nil, errors.New("file repository not set")
	}
	if s.store == nil {
		return nil, errors.New("storage not set")
	}
	if property.PlanFileID == nil {
		return nil, ErrMissingPlanFile
	}

	file, err := s.fileRepo.GetByID(ctx, *property.PlanFileID)
	if err != nil {
		return nil, fmt.Errorf("failed to load file record: %w", err)
	}

	reader, err := s.store.Download(ctx, file.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", file.Filename, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file.Filename, err)
	}

	var planFile models.ZoningPlanFile
	if err := json.Unmarshal(data, &planFile); err != nil {
		return nil, fmt.Errorf("invalid zoning JSON in %s: %w", file.Filename, err)
	}
	if err := planFile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid zoning JSON schema in %s: %w", file.Filename, err)
	}

	return &planFile, nil
}

// persistChunks stores the segmentation of each document for audit queries.
// Failures are logged, not fatal: retrieval already happened in memory.
func (s *AnalysisService) persistChunks(ctx context.Context, documents []models.ZoningDocument) {
	if s.chunkRepo == nil {
		return
	}
	for _, doc := range documents {
		chunks := segmenter.SplitByArticle(doc)
		if err := s.chunkRepo.ReplaceForDocument(ctx, doc.ID, chunks); err != nil {
			log.Printf("Warning: failed to persist chunks for doc %s: %v", doc.ID, err)
		}
	}
}

// parseAssessment decodes and validates a raw decision-maker response
func parseAssessment(raw string) (*models.ZoningAssessment, error) {
	payload := analysis.ExtractJSON(raw)
	if payload == "" {
		return nil, errors.New("no JSON object found in response")
	}

	var assessment models.ZoningAssessment
	if err := json.Unmarshal([]byte(payload), &assessment); err != nil {
		return nil, fmt.Errorf("failed to decode assessment: %w", err)
	}
	if err := assessment.Validate(); err != nil {
		return nil, err
	}

	return &assessment, nil
}

// updateStepStatus updates the status of a specific step in the analysis job
func (s *AnalysisService) updateStepStatus(ctx context.Context, jobID uuid.UUID, stepName, status string) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	steps := job.Steps
	var currentStep string
	if job.CurrentStep != nil {
		currentStep = *job.CurrentStep
	}

	for i := range steps {
		if steps[i].Name == stepName {
			steps[i].Status = status
			if status == "in_progress" {
				currentStep = stepName
			}
			break
		}
	}

	return s.jobRepo.UpdateProgress(ctx, jobID, currentStep, steps)
}

// markJobFailed marks a job as failed with an error message
func (s *AnalysisService) markJobFailed(ctx context.Context, jobID uuid.UUID, errorMessage string) {
	if err := s.jobRepo.Fail(ctx, jobID, errorMessage); err != nil {
		log.Printf("Warning: failed to mark job %s as failed: %v", jobID, err)
	}
}

// GeminiAssessor calls the Gemini generation API directly via HTTP
type GeminiAssessor struct {
	apiKey string
}

// NewGeminiAssessor creates an assessor backed by the Gemini API.
// Falls back to the GEMINI_API_KEY environment variable when apiKey is empty.
func NewGeminiAssessor(apiKey string) *GeminiAssessor {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	return &GeminiAssessor{apiKey: apiKey}
}

// Assess sends the prompt and returns the raw response text, retrying
// transient failures with exponential backoff
func (g *GeminiAssessor) Assess(ctx context.Context, prompt string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set")
	}

	// Truncate prompt if too long to avoid context limits
	if len(prompt) > maxPromptChars {
		log.Printf("Warning: Prompt too long (%d chars), truncating to %d chars", len(prompt), maxPromptChars)
		prompt = prompt[:maxPromptChars] + "\n\n[Content truncated due to length...]"
	}

	var lastErr error
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		content, err := g.callGenerationAPI(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}
		if content != "" {
			return content, nil
		}
		lastErr = fmt.Errorf("API returned empty content")
	}

	return "", fmt.Errorf("failed to obtain response after %d attempts: %w", maxRetries, lastErr)
}

func (g *GeminiAssessor) callGenerationAPI(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"temperature":      0.0,
			"responseMimeType": "application/json",
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", generationAPI, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		log.Printf("Gemini API error: Status %d, Body: %s", resp.StatusCode, string(bodyBytes))
		return "", fmt.Errorf("API error: %d - %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason,omitempty"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason,omitempty"`
		} `json:"promptFeedback,omitempty"`
		Error struct {
			Code    int    `json:"code,omitempty"`
			Message string `json:"message,omitempty"`
		} `json:"error,omitempty"`
	}

	bodyBytes, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		log.Printf("Failed to decode response. Body: %s", string(bodyBytes))
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Error.Message != "" {
		return "", fmt.Errorf("API error: %s (code: %d)", apiResp.Error.Message, apiResp.Error.Code)
	}

	if apiResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("API blocked prompt: %s", apiResp.PromptFeedback.BlockReason)
	}

	if len(apiResp.Candidates) == 0 {
		log.Printf("API returned no candidates. Full response: %s", string(bodyBytes))
		return "", fmt.Errorf("API returned no candidates")
	}

	var responseText strings.Builder
	for i, candidate := range apiResp.Candidates {
		if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
			log.Printf("Warning: Candidate %d finished with reason: %s", i, candidate.FinishReason)
		}
		for _, part := range candidate.Content.Parts {
			responseText.WriteString(part.Text)
		}
	}

	return responseText.String(), nil
}
