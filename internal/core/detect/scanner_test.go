package detect

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScanner(t *testing.T) *Scanner {
	t.Helper()
	return NewScanner(NewRegistry(), zerolog.Nop())
}

func writeDoc(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("translated content"), 0o644))
}

func TestScanner_Scan(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, name := range []string{"manual_EN.docx", "manual_DE.docx", "manual_ES.docx", "manual_FR.docx", "manual_NL.docx"} {
		writeDoc(t, filepath.Join(root, name))
	}

	result, err := newTestScanner(t).Scan(context.Background(), root, DefaultScanConfig())
	require.NoError(t, err)

	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Unclassified)
	assert.Equal(t, 5, result.Stats.TotalFiles)
	assert.Equal(t, 5, result.Stats.SupportedFiles)
	assert.InDelta(t, ConfidencePattern, result.Stats.AverageConfidence, 0.001)

	require.Len(t, result.Sets, 1)
	set := result.Sets[0]
	assert.Equal(t, "manual", set.BaseName)
	assert.True(t, set.Complete)
	assert.Equal(t, 5, set.FileCount)
	assert.Len(t, set.Documents, 5)
	assert.NotEmpty(t, set.ID)

	assert.Equal(t, 1, result.Stats.CompleteSets)
	assert.Equal(t, 0, result.Stats.IncompleteSets)
	assert.Empty(t, result.Missing)

	for _, lang := range []string{"en", "de", "es", "fr", "nl"} {
		assert.Len(t, result.ByLanguage[lang], 1, "language %s", lang)
	}
}

func TestScanner_ScanIncompleteSet(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, name := range []string{
		"manual_EN.docx", "manual_DE.docx", "manual_ES.docx", "manual_FR.docx", "manual_NL.docx",
		"guide_EN.docx", "guide_DE.docx",
	} {
		writeDoc(t, filepath.Join(root, name))
	}

	result, err := newTestScanner(t).Scan(context.Background(), root, DefaultScanConfig())
	require.NoError(t, err)

	require.Len(t, result.Sets, 2)
	assert.Equal(t, 1, result.Stats.CompleteSets)
	assert.Equal(t, 1, result.Stats.IncompleteSets)

	var guide *LanguageSet
	for i := range result.Sets {
		if result.Sets[i].BaseName == "guide" {
			guide = &result.Sets[i]
		}
	}
	require.NotNil(t, guide)
	assert.False(t, guide.Complete)
	assert.Equal(t, 2, guide.FileCount)
	assert.Equal(t, []string{"es", "fr", "nl"}, result.Missing["guide"])
}

func TestScanner_ScanMissingRoot(t *testing.T) {
	t.Parallel()

	result, err := newTestScanner(t).Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), DefaultScanConfig())
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "does not exist")
	assert.Empty(t, result.Sets)
}

func TestScanner_ScanRootIsFile(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "manual_EN.docx")
	writeDoc(t, root)

	result, err := newTestScanner(t).Scan(context.Background(), root, DefaultScanConfig())
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
}

func TestScanner_ScanDepthBound(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "manual_EN.docx"))
	writeDoc(t, filepath.Join(root, "sub", "manual_DE.docx"))
	writeDoc(t, filepath.Join(root, "sub", "deeper", "manual_ES.docx"))

	cfg := DefaultScanConfig()
	cfg.MaxDepth = 1

	result, err := newTestScanner(t).Scan(context.Background(), root, cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.TotalFiles)
	assert.Len(t, result.ByLanguage["en"], 1)
	assert.Len(t, result.ByLanguage["de"], 1)
	assert.Empty(t, result.ByLanguage["es"])
}

func TestScanner_ScanNonRecursive(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "manual_EN.docx"))
	writeDoc(t, filepath.Join(root, "sub", "manual_DE.docx"))

	cfg := DefaultScanConfig()
	cfg.Recursive = false

	result, err := newTestScanner(t).Scan(context.Background(), root, cfg)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.TotalFiles)
}

func TestScanner_ScanExcludedDirs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "manual_EN.docx"))
	writeDoc(t, filepath.Join(root, ".git", "manual_DE.docx"))
	writeDoc(t, filepath.Join(root, "__pycache__", "manual_FR.docx"))

	result, err := newTestScanner(t).Scan(context.Background(), root, DefaultScanConfig())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.TotalFiles)
	assert.Len(t, result.ByLanguage["en"], 1)
}

func TestScanner_ScanExcludeGlobs(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "manual_EN.docx"))
	writeDoc(t, filepath.Join(root, "drafts", "manual_DE.docx"))
	writeDoc(t, filepath.Join(root, "final", "manual_FR.docx"))

	cfg := DefaultScanConfig()
	cfg.ExcludeGlobs = []string{"drafts/**"}

	result, err := newTestScanner(t).Scan(context.Background(), root, cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.TotalFiles)
	assert.Empty(t, result.ByLanguage["de"])
	assert.Len(t, result.ByLanguage["fr"], 1)
}

func TestScanner_ScanExtensionFilters(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "manual_EN.docx"))
	writeDoc(t, filepath.Join(root, "manual_DE.DOCX"))
	writeDoc(t, filepath.Join(root, "manual_FR.txt"))
	writeDoc(t, filepath.Join(root, "manual_NL.docx.tmp"))
	writeDoc(t, filepath.Join(root, "manual_ES.bak"))

	result, err := newTestScanner(t).Scan(context.Background(), root, DefaultScanConfig())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.TotalFiles)
	assert.Len(t, result.ByLanguage["en"], 1)
	assert.Len(t, result.ByLanguage["de"], 1)
}

func TestScanner_ScanLowConfidence(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "manual_EN.docx"))
	writeDoc(t, filepath.Join(root, "presentation.docx")) // "en" inside a word, tier two only

	cfg := DefaultScanConfig()
	cfg.MinConfidence = 0.9

	result, err := newTestScanner(t).Scan(context.Background(), root, cfg)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Stats.SupportedFiles)
	require.Len(t, result.Unclassified, 1)
	assert.Contains(t, result.Unclassified[0], "presentation.docx")
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "low confidence")
	assert.Len(t, result.ByLanguage["en"], 1)
	assert.InDelta(t, ConfidencePattern, result.Stats.AverageConfidence, 0.001)
}

func TestScanner_ScanUndetectable(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "photo.docx"))

	result, err := newTestScanner(t).Scan(context.Background(), root, DefaultScanConfig())
	require.NoError(t, err)

	require.Len(t, result.Unclassified, 1)
	assert.Empty(t, result.Sets)
	assert.Zero(t, result.Stats.AverageConfidence)
}

// With the threshold at zero even undetected files pass the filter and
// land under "unknown", and the grouper ignores them.
func TestScanner_ScanZeroThresholdKeepsUnknown(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "photo.docx"))

	cfg := DefaultScanConfig()
	cfg.MinConfidence = 0

	result, err := newTestScanner(t).Scan(context.Background(), root, cfg)
	require.NoError(t, err)

	assert.Len(t, result.ByLanguage[LanguageUnknown], 1)
	assert.Empty(t, result.Sets)
}

func TestScanner_ScanDeterministic(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, name := range []string{
		"zeta_EN.docx", "zeta_DE.docx",
		"alpha_EN.docx", "alpha_DE.docx", "alpha_ES.docx", "alpha_FR.docx", "alpha_NL.docx",
		"beta_FR.docx",
	} {
		writeDoc(t, filepath.Join(root, name))
	}

	scanner := newTestScanner(t)

	type shape struct {
		bases   []string
		missing map[string][]string
		byLang  map[string]int
	}
	project := func(r *FolderScanResult) shape {
		s := shape{missing: r.Missing, byLang: r.Stats.ByLanguage}
		for _, set := range r.Sets {
			s.bases = append(s.bases, set.BaseName)
		}
		return s
	}

	first, err := scanner.Scan(context.Background(), root, DefaultScanConfig())
	require.NoError(t, err)
	for range 5 {
		again, err := scanner.Scan(context.Background(), root, DefaultScanConfig())
		require.NoError(t, err)
		require.Equal(t, project(first), project(again))
	}
}

func TestScanner_ScanCanceled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeDoc(t, filepath.Join(root, "manual_EN.docx"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestScanner(t).Scan(ctx, root, DefaultScanConfig())
	require.ErrorIs(t, err, context.Canceled)
}
