package tradoc

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tradocflow/tradocflow/internal/core/config"
	"github.com/tradocflow/tradocflow/internal/core/detect"
	"github.com/tradocflow/tradocflow/internal/core/eventbus"
	"github.com/tradocflow/tradocflow/internal/store/jsonfile"
)

// ScanService runs document folder scans: filename-based language
// classification, grouping into translation sets, and per-set
// validation. Results are persisted so the latest scan can be recalled
// without re-walking the folder.
type ScanService struct {
	registry *detect.Registry
	scanner  *detect.Scanner
	scans    *jsonfile.ScanStore
	bus      *eventbus.EventBus
	cfg      *config.Config
	log      zerolog.Logger
}

// NewScanService builds a scan service from the configuration: the
// built-in language registry extended with any configured custom
// languages, and scan defaults taken from the config's scan section.
func NewScanService(cfg *config.Config, scans *jsonfile.ScanStore, bus *eventbus.EventBus, log zerolog.Logger) *ScanService {
	registry := detect.NewRegistry()
	for _, lang := range cfg.Scan.Languages {
		registry.Register(detect.Language{
			Code:      lang.Code,
			Name:      lang.Name,
			Patterns:  lang.Patterns,
			ISOCodes:  lang.ISOCodes,
			FullNames: lang.FullNames,
		})
	}

	scanLog := log.With().Str("component", "scan-service").Logger()

	return &ScanService{
		registry: registry,
		scanner:  detect.NewScanner(registry, scanLog),
		scans:    scans,
		bus:      bus,
		cfg:      cfg,
		log:      scanLog,
	}
}

// Registry exposes the language registry, for commands that list the
// known languages.
func (s *ScanService) Registry() *detect.Registry { return s.registry }

// ScanOptions override the configured scan defaults for one run.
// Zero values fall back to the config.
type ScanOptions struct {
	Recursive         *bool
	MaxDepth          int
	Extensions        []string
	MinConfidence     float64
	RequiredLanguages []string
}

// Scan walks root, classifies documents, groups them into sets, and
// validates each set. The result is persisted as the latest scan and
// scan.completed is published.
func (s *ScanService) Scan(ctx context.Context, root string, opts ScanOptions) (*detect.FolderScanResult, error) {
	cfg := s.scanConfig(opts)

	result, err := s.scanner.Scan(ctx, root, cfg)
	if err != nil {
		return nil, fmt.Errorf("scan folder: %w", err)
	}

	for _, set := range result.Sets {
		result.Warnings = append(result.Warnings, detect.ValidateSet(set)...)
	}

	if s.scans != nil {
		if err := s.scans.Save(ctx, *result); err != nil {
			s.log.Warn().Err(err).Msg("failed to persist scan result")
		}
	}

	s.bus.PublishScanCompleted(eventbus.ScanCompletedPayload{
		Root:           result.Root,
		Documents:      result.Stats.SupportedFiles,
		CompleteSets:   result.Stats.CompleteSets,
		IncompleteSets: result.Stats.IncompleteSets,
	})

	s.log.Info().
		Str("root", root).
		Int("documents", result.Stats.SupportedFiles).
		Int("complete_sets", result.Stats.CompleteSets).
		Int("incomplete_sets", result.Stats.IncompleteSets).
		Msg("folder scan finished")

	return result, nil
}

// Latest returns the most recently persisted scan result.
func (s *ScanService) Latest(ctx context.Context) (detect.FolderScanResult, error) {
	return s.scans.Latest(ctx)
}

// History returns all retained scan results, newest first.
func (s *ScanService) History(ctx context.Context) ([]detect.FolderScanResult, error) {
	return s.scans.List(ctx)
}

// scanConfig merges one run's options over the configured defaults.
func (s *ScanService) scanConfig(opts ScanOptions) detect.ScanConfig {
	cfg := detect.DefaultScanConfig()

	cfg.Recursive = s.cfg.Scan.Recursive
	if s.cfg.Scan.MaxDepth > 0 {
		cfg.MaxDepth = s.cfg.Scan.MaxDepth
	}
	if len(s.cfg.Scan.Extensions) > 0 {
		cfg.IncludeExtensions = s.cfg.Scan.Extensions
	}
	if s.cfg.Scan.MinConfidence > 0 {
		cfg.MinConfidence = s.cfg.Scan.MinConfidence
	}
	if len(s.cfg.Scan.RequiredLanguages) > 0 {
		cfg.RequiredLanguages = s.cfg.Scan.RequiredLanguages
	}
	cfg.ExcludeGlobs = s.cfg.Scan.Exclude

	if opts.Recursive != nil {
		cfg.Recursive = *opts.Recursive
	}
	if opts.MaxDepth > 0 {
		cfg.MaxDepth = opts.MaxDepth
	}
	if len(opts.Extensions) > 0 {
		cfg.IncludeExtensions = opts.Extensions
	}
	if opts.MinConfidence > 0 {
		cfg.MinConfidence = opts.MinConfidence
	}
	if len(opts.RequiredLanguages) > 0 {
		cfg.RequiredLanguages = opts.RequiredLanguages
	}

	return cfg
}
