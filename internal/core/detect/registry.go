// Package detect classifies translated documents by filename and
// assembles them into multi-language sets.
package detect

import (
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// Detection confidence per matching tier.
const (
	ConfidencePattern  = 0.95
	ConfidenceISO      = 0.85
	ConfidenceFullName = 0.75
)

// LanguageUnknown is the code assigned when no tier matches.
const LanguageUnknown = "unknown"

// Method describes which tier produced a detection.
type Method string

const (
	MethodPattern  Method = "pattern"
	MethodISO      Method = "iso_code"
	MethodFullName Method = "full_name"
	MethodUnknown  Method = "unknown"
)

// Language holds the matchable strings for one language, strongest
// tier first.
type Language struct {
	Code      string
	Name      string
	Patterns  []string
	ISOCodes  []string
	FullNames []string
}

// Detection is the result of classifying one filename.
type Detection struct {
	Code       string
	Confidence float64
	Method     Method
	Pattern    string // the matched string
}

// Registry maps filenames to languages using per-language pattern
// tiers. Languages are tried in registration order so detection stays
// deterministic.
type Registry struct {
	mu    sync.RWMutex
	langs map[string]Language
	order []string
}

// NewRegistry returns a registry preloaded with the built-in
// languages: English, German, Spanish, French, Dutch.
func NewRegistry() *Registry {
	r := &Registry{langs: make(map[string]Language)}
	r.Register(Language{
		Code:      "en",
		Name:      "English",
		Patterns:  []string{"_en", "-en", ".en.", "_EN", "-EN", ".EN."},
		ISOCodes:  []string{"en", "EN", "eng", "ENG"},
		FullNames: []string{"english", "English", "ENGLISH"},
	})
	r.Register(Language{
		Code:      "de",
		Name:      "German",
		Patterns:  []string{"_de", "-de", ".de.", "_DE", "-DE", ".DE."},
		ISOCodes:  []string{"de", "DE", "deu", "DEU", "ger"},
		FullNames: []string{"german", "German", "GERMAN", "deutsch"},
	})
	r.Register(Language{
		Code:      "es",
		Name:      "Spanish",
		Patterns:  []string{"_es", "-es", ".es.", "_ES", "-ES", ".ES.", "_esp", "-esp"},
		ISOCodes:  []string{"es", "ES", "esp", "ESP", "spa"},
		FullNames: []string{"spanish", "Spanish", "SPANISH", "español"},
	})
	r.Register(Language{
		Code:      "fr",
		Name:      "French",
		Patterns:  []string{"_fr", "-fr", ".fr.", "_FR", "-FR", ".FR.", "_fra", "-fra"},
		ISOCodes:  []string{"fr", "FR", "fra", "FRA", "fre"},
		FullNames: []string{"french", "French", "FRENCH", "français"},
	})
	r.Register(Language{
		Code:      "nl",
		Name:      "Dutch",
		Patterns:  []string{"_nl", "-nl", ".nl.", "_NL", "-NL", ".NL.", "_nld", "-nld"},
		ISOCodes:  []string{"nl", "NL", "nld", "NLD", "dut"},
		FullNames: []string{"dutch", "Dutch", "DUTCH", "nederlands"},
	})
	return r
}

// Register adds a language or replaces an existing one. New codes are
// appended to the detection order.
func (r *Registry) Register(lang Language) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.langs[lang.Code]; !exists {
		r.order = append(r.order, lang.Code)
	}
	r.langs[lang.Code] = lang
}

// Languages returns all registered languages in detection order.
func (r *Registry) Languages() []Language {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Language, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.langs[code])
	}
	return out
}

// DisplayName returns the human-readable name for a language code.
func (r *Registry) DisplayName(code string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lang, ok := r.langs[code]
	if !ok {
		return "", false
	}
	return lang.Name, true
}

// Detect classifies a filename. Tiers are tried strongest first and
// the first match wins; within a tier, languages are tried in
// registration order. Matching is a case-insensitive substring test,
// which deliberately keeps the loose behavior of tier two (an ISO
// code can match mid-word).
func (r *Registry) Detect(filename string) (Detection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lower := strings.ToLower(filename)

	for _, code := range r.order {
		for _, p := range r.langs[code].Patterns {
			if strings.Contains(lower, strings.ToLower(p)) {
				return Detection{Code: code, Confidence: ConfidencePattern, Method: MethodPattern, Pattern: p}, true
			}
		}
	}

	for _, code := range r.order {
		for _, iso := range r.langs[code].ISOCodes {
			if strings.Contains(lower, strings.ToLower(iso)) {
				return Detection{Code: code, Confidence: ConfidenceISO, Method: MethodISO, Pattern: iso}, true
			}
		}
	}

	for _, code := range r.order {
		for _, name := range r.langs[code].FullNames {
			if strings.Contains(lower, strings.ToLower(name)) {
				return Detection{Code: code, Confidence: ConfidenceFullName, Method: MethodFullName, Pattern: name}, true
			}
		}
	}

	return Detection{Code: LanguageUnknown, Method: MethodUnknown}, false
}

var versionMarkers = []*regexp.Regexp{
	regexp.MustCompile(`_v\d+`),
	regexp.MustCompile(`-v\d+`),
	regexp.MustCompile(`_version_?\d+`),
	regexp.MustCompile(`-version-?\d+`),
}

// BaseName strips language indicators and version markers from a
// filename, leaving the shared document name files of one set have in
// common. An empty result falls back to "document".
func (r *Registry) BaseName(filename string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	for _, code := range r.order {
		lang := r.langs[code]
		for _, p := range lang.Patterns {
			base = strings.ReplaceAll(base, p, "")
		}
		for _, iso := range lang.ISOCodes {
			low := strings.ToLower(iso)
			base = strings.ReplaceAll(base, "_"+low, "")
			base = strings.ReplaceAll(base, "-"+low, "")
		}
	}

	for _, re := range versionMarkers {
		base = re.ReplaceAllString(base, "")
	}

	base = strings.ReplaceAll(base, "__", "_")
	base = strings.ReplaceAll(base, "--", "-")
	base = strings.Trim(base, "_-")
	base = strings.TrimSpace(base)

	if base == "" {
		return "document"
	}
	return base
}
