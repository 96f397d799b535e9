package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"zoningcheck-backend/models"
)

// FilterConfig controls which zoning documents are considered for analysis.
// Umbrella amendments ("parapluplan") override specific themes and would
// pollute retrieval, so they are excluded by title.
type FilterConfig struct {
	AllowedDocumentTypes      []string
	ExcludeTitleContains      []string
	SortByEstablishedDateDesc bool
}

// DefaultFilterConfig returns the standard document filter.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		AllowedDocumentTypes:      []string{"Bestemmingsplan", "Omgevingsplan"},
		ExcludeTitleContains:      []string{"parapluplan"},
		SortByEstablishedDateDesc: true,
	}
}

// Loader reads zoning plan JSON files from a data directory.
type Loader struct {
	dataDir string
	filter  FilterConfig
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFilterConfig sets the document filter configuration.
func WithFilterConfig(cfg FilterConfig) LoaderOption {
	return func(l *Loader) {
		l.filter = cfg
	}
}

// NewLoader creates a loader rooted at the given data directory.
func NewLoader(dataDir string, opts ...LoaderOption) *Loader {
	l := &Loader{
		dataDir: dataDir,
		filter:  DefaultFilterConfig(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadFile reads and validates one zoning plan JSON file.
func (l *Loader) LoadFile(filename string) (*models.ZoningPlanFile, error) {
	path := filepath.Join(l.dataDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read zoning file %s: %w", filename, err)
	}

	var planFile models.ZoningPlanFile
	if err := json.Unmarshal(data, &planFile); err != nil {
		return nil, fmt.Errorf("invalid zoning JSON in %s: %w", filename, err)
	}
	if err := planFile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid zoning JSON schema in %s: %w", filename, err)
	}

	return &planFile, nil
}

// ListJSONFiles returns the names of all *.json files in the data directory,
// sorted for deterministic batch order.
func (l *Loader) ListJSONFiles() ([]string, error) {
	if _, err := os.Stat(l.dataDir); err != nil {
		return nil, fmt.Errorf("data directory does not exist: %s", l.dataDir)
	}

	names, err := doublestar.Glob(os.DirFS(l.dataDir), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list zoning files: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// FilterDocuments filters with the loader's configuration.
func (l *Loader) FilterDocuments(documents []models.ZoningDocument) []models.ZoningDocument {
	return FilterDocuments(documents, l.filter)
}

// FilterDocuments keeps only the allowed document types, drops excluded
// titles, and sorts the remainder newest-first by established date.
// Documents with a missing or unparseable date sort last.
func FilterDocuments(documents []models.ZoningDocument, cfg FilterConfig) []models.ZoningDocument {
	allowed := make(map[string]struct{}, len(cfg.AllowedDocumentTypes))
	for _, t := range cfg.AllowedDocumentTypes {
		allowed[strings.ToLower(t)] = struct{}{}
	}

	filtered := make([]models.ZoningDocument, 0, len(documents))
	for _, doc := range documents {
		title := strings.ToLower(doc.Title)
		excluded := false
		for _, bad := range cfg.ExcludeTitleContains {
			if strings.Contains(title, strings.ToLower(bad)) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		if _, ok := allowed[strings.ToLower(doc.DocumentType)]; !ok {
			continue
		}
		filtered = append(filtered, doc)
	}

	if cfg.SortByEstablishedDateDesc {
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].EstablishedDatetime().After(filtered[j].EstablishedDatetime())
		})
	}

	return filtered
}
