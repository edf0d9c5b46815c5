package detect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ScanConfig controls a folder scan.
type ScanConfig struct {
	Recursive         bool
	MaxDepth          int // directory levels below root entered when Recursive
	IncludeExtensions []string
	ExcludeExtensions []string
	ExcludePatterns   []string // case-insensitive substrings matched against full paths
	ExcludeGlobs      []string // glob patterns matched against slash-separated paths relative to root
	MinConfidence     float64
	RequiredLanguages []string
}

// DefaultScanConfig returns the scan defaults.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Recursive:         true,
		MaxDepth:          3,
		IncludeExtensions: []string{"docx", "doc"},
		ExcludeExtensions: []string{"tmp", "bak", "~"},
		ExcludePatterns:   []string{"$recycle", ".git", ".svn", "__pycache__", ".DS_Store", "thumbs.db"},
		MinConfidence:     0.5,
		RequiredLanguages: DefaultRequiredLanguages,
	}
}

// Document is one classified file from a scan.
type Document struct {
	Path       string    `json:"path"`
	Language   string    `json:"language"`
	Confidence float64   `json:"confidence"`
	Method     Method    `json:"method"`
	Pattern    string    `json:"pattern,omitempty"`
	BaseName   string    `json:"base_name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modified_at"`
}

// ScanStats summarizes one scan.
type ScanStats struct {
	TotalFiles        int            `json:"total_files"`
	SupportedFiles    int            `json:"supported_files"`
	CompleteSets      int            `json:"complete_sets"`
	IncompleteSets    int            `json:"incomplete_sets"`
	AverageConfidence float64        `json:"average_confidence"`
	Duration          time.Duration  `json:"duration"`
	ByLanguage        map[string]int `json:"by_language"`
}

// FolderScanResult holds everything a scan found. A missing or
// unreadable root is reported through Errors, not a returned error.
type FolderScanResult struct {
	Root         string                `json:"root"`
	ScannedAt    time.Time             `json:"scanned_at"`
	ByLanguage   map[string][]Document `json:"by_language"`
	Unclassified []string              `json:"unclassified,omitempty"`
	Sets         []LanguageSet         `json:"sets,omitempty"` // complete and incomplete
	Missing      map[string][]string   `json:"missing,omitempty"`
	Stats        ScanStats             `json:"stats"`
	Warnings     []string              `json:"warnings,omitempty"`
	Errors       []string              `json:"errors,omitempty"`
}

// Scanner walks folders and classifies the documents it finds.
type Scanner struct {
	registry *Registry
	log      zerolog.Logger
	workers  int
}

// NewScanner creates a scanner over the given registry.
func NewScanner(registry *Registry, log zerolog.Logger) *Scanner {
	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	}
	return &Scanner{registry: registry, log: log, workers: workers}
}

// Scan enumerates root per the config, classifies each surviving file,
// and groups the classified documents into language sets. Files below
// the confidence threshold land in Unclassified with a warning.
func (s *Scanner) Scan(ctx context.Context, root string, cfg ScanConfig) (*FolderScanResult, error) {
	start := time.Now()
	result := &FolderScanResult{
		Root:       root,
		ScannedAt:  start.UTC(),
		ByLanguage: make(map[string][]Document),
	}
	result.Stats.ByLanguage = make(map[string]int)

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		result.Errors = append(result.Errors, fmt.Sprintf("folder does not exist or is not a directory: %s", root))
		return result, nil
	}

	files := s.collectFiles(root, cfg, result)
	result.Stats.TotalFiles = len(files)

	docs := make([]Document, len(files))
	analyzeErrs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs[i], analyzeErrs[i] = s.analyze(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Aggregate in file order so results stay deterministic.
	var confidenceSum float64
	var detected []Document

	for i, path := range files {
		if analyzeErrs[i] != nil {
			result.Unclassified = append(result.Unclassified, path)
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to analyze %s: %v", path, analyzeErrs[i]))
			continue
		}

		doc := docs[i]
		result.Stats.SupportedFiles++

		if doc.Confidence < cfg.MinConfidence {
			result.Unclassified = append(result.Unclassified, path)
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s has low confidence (%.2f) for language detection", path, doc.Confidence))
			continue
		}

		result.ByLanguage[doc.Language] = append(result.ByLanguage[doc.Language], doc)
		result.Stats.ByLanguage[doc.Language]++
		confidenceSum += doc.Confidence
		detected = append(detected, doc)
	}

	if len(detected) > 0 {
		result.Stats.AverageConfidence = confidenceSum / float64(len(detected))
	}

	result.Sets, result.Missing = NewGrouper(cfg.RequiredLanguages).Group(detected)
	for _, set := range result.Sets {
		if set.Complete {
			result.Stats.CompleteSets++
		} else {
			result.Stats.IncompleteSets++
		}
	}

	result.Stats.Duration = time.Since(start)

	s.log.Debug().
		Str("root", root).
		Int("files", result.Stats.TotalFiles).
		Int("sets", len(result.Sets)).
		Dur("took", result.Stats.Duration).
		Msg("folder scan complete")

	return result, nil
}

func (s *Scanner) collectFiles(root string, cfg ScanConfig, result *FolderScanResult) []string {
	var files []string
	s.walk(root, root, cfg, 0, &files, result)
	return files
}

// walk descends depth-bounded; os.ReadDir returns sorted entries, so
// file order is stable across runs.
func (s *Scanner) walk(root, dir string, cfg ScanConfig, depth int, files *[]string, result *FolderScanResult) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("cannot read directory %s: %v", dir, err))
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if !cfg.Recursive || depth+1 > cfg.MaxDepth {
				continue
			}
			if s.excluded(root, path, cfg) {
				continue
			}
			s.walk(root, path, cfg, depth+1, files, result)
			continue
		}

		if s.includeFile(root, path, cfg) {
			*files = append(*files, path)
		}
	}
}

func (s *Scanner) excluded(root, path string, cfg ScanConfig) bool {
	lower := strings.ToLower(path)
	for _, pattern := range cfg.ExcludePatterns {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return true
		}
	}

	if len(cfg.ExcludeGlobs) > 0 {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return false
		}
		rel = filepath.ToSlash(rel)
		for _, glob := range cfg.ExcludeGlobs {
			if ok, err := doublestar.Match(glob, rel); err == nil && ok {
				return true
			}
		}
	}

	return false
}

func (s *Scanner) includeFile(root, path string, cfg ScanConfig) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")

	for _, excluded := range cfg.ExcludeExtensions {
		if strings.EqualFold(ext, excluded) {
			return false
		}
	}

	if len(cfg.IncludeExtensions) > 0 {
		found := false
		for _, included := range cfg.IncludeExtensions {
			if strings.EqualFold(ext, included) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return !s.excluded(root, path, cfg)
}

func (s *Scanner) analyze(path string) (Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Document{}, err
	}

	filename := filepath.Base(path)
	detection, _ := s.registry.Detect(filename)

	return Document{
		Path:       path,
		Language:   detection.Code,
		Confidence: detection.Confidence,
		Method:     detection.Method,
		Pattern:    detection.Pattern,
		BaseName:   s.registry.BaseName(filename),
		Size:       info.Size(),
		ModifiedAt: info.ModTime().UTC(),
	}, nil
}
