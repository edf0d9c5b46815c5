package detect

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DefaultRequiredLanguages is the language coverage a set needs to be
// considered complete when the caller doesn't specify its own.
var DefaultRequiredLanguages = []string{"en", "de", "es", "fr", "nl"}

// LanguageSet is a group of documents sharing a base name, at most one
// per language.
type LanguageSet struct {
	ID        string              `json:"id"`
	BaseName  string              `json:"base_name"`
	Documents map[string]Document `json:"documents"` // keyed by language code
	Complete  bool                `json:"complete"`
	FileCount int                 `json:"file_count"` // grouped documents before per-language dedup
}

// Grouper assembles classified documents into language sets.
type Grouper struct {
	required []string
}

// NewGrouper creates a grouper that checks completeness against the
// given languages, or DefaultRequiredLanguages when empty.
func NewGrouper(required []string) *Grouper {
	if len(required) == 0 {
		required = DefaultRequiredLanguages
	}
	return &Grouper{required: required}
}

// Group buckets documents by base name and picks the highest-confidence
// document per language within each bucket (first seen wins a tie).
// Documents classified unknown never join a set. The missing map lists,
// per base name, the required languages a set still lacks in required
// order. Sets come back in order of each base name's first appearance.
func (g *Grouper) Group(docs []Document) ([]LanguageSet, map[string][]string) {
	grouped := make(map[string][]Document)
	var order []string
	for _, doc := range docs {
		if _, seen := grouped[doc.BaseName]; !seen {
			order = append(order, doc.BaseName)
		}
		grouped[doc.BaseName] = append(grouped[doc.BaseName], doc)
	}

	var sets []LanguageSet
	missing := make(map[string][]string)

	for _, base := range order {
		members := grouped[base]

		byLang := make(map[string]Document)
		for _, doc := range members {
			if doc.Language == LanguageUnknown {
				continue
			}
			if existing, ok := byLang[doc.Language]; ok && existing.Confidence >= doc.Confidence {
				continue
			}
			byLang[doc.Language] = doc
		}
		if len(byLang) == 0 {
			continue
		}

		var absent []string
		for _, lang := range g.required {
			if _, ok := byLang[lang]; !ok {
				absent = append(absent, lang)
			}
		}
		if len(absent) > 0 {
			missing[base] = absent
		}

		sets = append(sets, LanguageSet{
			ID:        uuid.NewString(),
			BaseName:  base,
			Documents: byLang,
			Complete:  len(absent) == 0,
			FileCount: len(members),
		})
	}

	return sets, missing
}

const (
	validateLargeFileBytes = 100 * 1024 * 1024
	validateLowConfidence  = 0.8
	validateModifiedSpread = 7 * 24 * time.Hour
)

// ValidateSet flags suspicious members of a set: empty or oversized
// files, weak classifications, and modification times spread further
// apart than a translation batch normally is. Warnings come back in
// language order so repeated runs agree.
func ValidateSet(set LanguageSet) []string {
	var warnings []string

	langs := make([]string, 0, len(set.Documents))
	for lang := range set.Documents {
		langs = append(langs, lang)
	}
	sort.Strings(langs)

	var oldest, newest time.Time
	for _, lang := range langs {
		doc := set.Documents[lang]

		if doc.Size == 0 {
			warnings = append(warnings, fmt.Sprintf("document for language %q is empty: %s", lang, doc.Path))
		} else if doc.Size > validateLargeFileBytes {
			warnings = append(warnings, fmt.Sprintf("document for language %q is very large (%d MB): %s", lang, doc.Size/(1024*1024), doc.Path))
		}

		if doc.Confidence < validateLowConfidence {
			warnings = append(warnings, fmt.Sprintf("low confidence (%.1f%%) for language %q: %s", doc.Confidence*100, lang, doc.Path))
		}

		if doc.ModifiedAt.IsZero() {
			continue
		}
		if oldest.IsZero() || doc.ModifiedAt.Before(oldest) {
			oldest = doc.ModifiedAt
		}
		if newest.IsZero() || doc.ModifiedAt.After(newest) {
			newest = doc.ModifiedAt
		}
	}

	if !oldest.IsZero() {
		if spread := newest.Sub(oldest); spread > validateModifiedSpread {
			warnings = append(warnings, fmt.Sprintf("documents were modified at very different times (up to %d days apart)", int(spread.Hours()/24)))
		}
	}

	return warnings
}
