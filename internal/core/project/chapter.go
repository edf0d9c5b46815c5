package project

import (
	"strings"
	"time"
)

// ChapterStatus represents the lifecycle state of a chapter.
type ChapterStatus string

const (
	ChapterDraft         ChapterStatus = "draft"
	ChapterInTranslation ChapterStatus = "in_translation"
	ChapterInReview      ChapterStatus = "in_review"
	ChapterApproved      ChapterStatus = "approved"
	ChapterPublished     ChapterStatus = "published"
)

// DifficultyLevel grades how hard a chapter is to translate.
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
	DifficultyExpert       DifficultyLevel = "expert"
)

// ComplexityLevel grades a single translation unit.
type ComplexityLevel string

const (
	ComplexityLow    ComplexityLevel = "low"
	ComplexityMedium ComplexityLevel = "medium"
	ComplexityHigh   ComplexityLevel = "high"
	ComplexityExpert ComplexityLevel = "expert"
)

// UnitType classifies the document element a unit was extracted from.
type UnitType string

const (
	UnitParagraph UnitType = "paragraph"
	UnitHeading   UnitType = "heading"
	UnitListItem  UnitType = "list_item"
	UnitCode      UnitType = "code"
	UnitCaption   UnitType = "caption"
)

// TranslationStatus represents the review state of one language's
// translation of a unit.
type TranslationStatus string

const (
	TranslationDraft       TranslationStatus = "draft"
	TranslationInProgress  TranslationStatus = "in_progress"
	TranslationCompleted   TranslationStatus = "completed"
	TranslationUnderReview TranslationStatus = "under_review"
	TranslationApproved    TranslationStatus = "approved"
	TranslationRejected    TranslationStatus = "rejected"
	TranslationArchived    TranslationStatus = "archived"
)

// Done reports whether the translation counts toward language
// completion.
func (s TranslationStatus) Done() bool {
	return s == TranslationCompleted || s == TranslationApproved
}

// TranslationMethod records how a translation was produced.
type TranslationMethod string

const (
	MethodHuman      TranslationMethod = "human"
	MethodAIAssisted TranslationMethod = "ai_assisted"
	MethodMachine    TranslationMethod = "machine"
)

// DefaultConfidenceScore is the confidence assigned to a fresh
// translation version.
const DefaultConfidenceScore = 0.95

// ChapterData is the root structure of a chapter shard
// (content/chapters/<slug>.toml).
type ChapterData struct {
	Chapter ChapterMetadata   `toml:"chapter" json:"chapter"`
	Units   []TranslationUnit `toml:"units,omitempty" json:"units,omitempty"`
	Todos   []Todo            `toml:"todos,omitempty" json:"todos,omitempty"`
	// Comments holds chapter-scoped comments. Omitted when empty so
	// legacy shards round-trip unchanged.
	Comments []Comment `toml:"comments,omitempty" json:"comments,omitempty"`
}

// ChapterMetadata describes the chapter itself. Title and the
// per-language maps in Metadata are keyed by language code.
type ChapterMetadata struct {
	Number        int               `toml:"number" json:"number"`
	Slug          string            `toml:"slug" json:"slug"`
	Status        ChapterStatus     `toml:"status" json:"status"`
	CreatedAt     time.Time         `toml:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `toml:"updated_at" json:"updated_at"`
	GitBranch     string            `toml:"git_branch,omitempty" json:"git_branch,omitempty"`
	LastGitCommit string            `toml:"last_git_commit,omitempty" json:"last_git_commit,omitempty"`
	Title         map[string]string `toml:"title" json:"title"`
	Metadata      ChapterExtra      `toml:"metadata" json:"metadata"`
}

// ChapterExtra carries tracking fields that change as translation
// progresses.
type ChapterExtra struct {
	WordCount  map[string]int  `toml:"word_count" json:"word_count"`
	Difficulty DifficultyLevel `toml:"difficulty" json:"difficulty"`
	// EstimatedTranslationTime is hours per language.
	EstimatedTranslationTime map[string]int       `toml:"estimated_translation_time" json:"estimated_translation_time"`
	RequiresScreenshots      bool                 `toml:"requires_screenshots" json:"requires_screenshots"`
	ScreenshotCount          int                  `toml:"screenshot_count" json:"screenshot_count"`
	LastReviewed             map[string]time.Time `toml:"last_reviewed,omitempty" json:"last_reviewed,omitempty"`
}

// TranslationUnit is one translatable paragraph-level element.
// Translations is keyed by language code.
type TranslationUnit struct {
	ID             string                        `toml:"id" json:"id"`
	Order          int                           `toml:"order" json:"order"`
	SourceLanguage string                        `toml:"source_language" json:"source_language"`
	SourceText     string                        `toml:"source_text" json:"source_text"`
	Context        string                        `toml:"context,omitempty" json:"context,omitempty"`
	Complexity     ComplexityLevel               `toml:"complexity" json:"complexity"`
	RequiresReview bool                          `toml:"requires_review" json:"requires_review"`
	UnitType       UnitType                      `toml:"unit_type" json:"unit_type"`
	Translations   map[string]TranslationVersion `toml:"translations,omitempty" json:"translations,omitempty"`
	Todos          []Todo                        `toml:"todos,omitempty" json:"todos,omitempty"`
	Comments       []Comment                     `toml:"comments,omitempty" json:"comments,omitempty"`
	Notes          []TranslationNote             `toml:"notes,omitempty" json:"notes,omitempty"`
}

// TranslationVersion is one language's current translation of a unit.
type TranslationVersion struct {
	Text          string              `toml:"text" json:"text"`
	Translator    string              `toml:"translator" json:"translator"`
	Status        TranslationStatus   `toml:"status" json:"status"`
	QualityScore  *float64            `toml:"quality_score,omitempty" json:"quality_score,omitempty"`
	CreatedAt     time.Time           `toml:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `toml:"updated_at" json:"updated_at"`
	ReviewedAt    *time.Time          `toml:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	Reviewer      string              `toml:"reviewer,omitempty" json:"reviewer,omitempty"`
	RevisionCount int                 `toml:"revision_count" json:"revision_count"`
	Metadata      TranslationMetadata `toml:"metadata" json:"metadata"`
}

// TranslationMetadata carries review bookkeeping for one translation
// version.
type TranslationMetadata struct {
	TerminologyVerified bool              `toml:"terminology_verified" json:"terminology_verified"`
	StyleGuideCompliant bool              `toml:"style_guide_compliant" json:"style_guide_compliant"`
	ReviewNotes         string            `toml:"review_notes,omitempty" json:"review_notes,omitempty"`
	TranslationMethod   TranslationMethod `toml:"translation_method" json:"translation_method"`
	ConfidenceScore     float64           `toml:"confidence_score" json:"confidence_score"`
}

// NewChapterData builds a chapter shard in draft state with empty
// tracking maps.
func NewChapterData(number int, slug string, title map[string]string) ChapterData {
	now := time.Now().UTC()

	if title == nil {
		title = map[string]string{}
	}

	return ChapterData{
		Chapter: ChapterMetadata{
			Number:    number,
			Slug:      slug,
			Status:    ChapterDraft,
			CreatedAt: now,
			UpdatedAt: now,
			Title:     title,
			Metadata: ChapterExtra{
				WordCount:                map[string]int{},
				Difficulty:               DifficultyIntermediate,
				EstimatedTranslationTime: map[string]int{},
			},
		},
	}
}

// NewTranslationUnit builds a paragraph unit with default review
// settings.
func NewTranslationUnit(id string, order int, sourceLanguage, sourceText string) TranslationUnit {
	return TranslationUnit{
		ID:             id,
		Order:          order,
		SourceLanguage: sourceLanguage,
		SourceText:     sourceText,
		Complexity:     ComplexityMedium,
		RequiresReview: true,
		UnitType:       UnitParagraph,
		Translations:   map[string]TranslationVersion{},
	}
}

// NewTranslationVersion builds a draft translation by the given
// translator.
func NewTranslationVersion(text, translator string) TranslationVersion {
	now := time.Now().UTC()
	return TranslationVersion{
		Text:       text,
		Translator: translator,
		Status:     TranslationDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
		Metadata: TranslationMetadata{
			TranslationMethod: MethodHuman,
			ConfidenceScore:   DefaultConfidenceScore,
		},
	}
}

// Unit returns a pointer to the unit with the given id, or nil when the
// chapter has no such unit.
func (c *ChapterData) Unit(id string) *TranslationUnit {
	for i := range c.Units {
		if c.Units[i].ID == id {
			return &c.Units[i]
		}
	}
	return nil
}

// AddUnit appends a unit and stamps the chapter updated time.
func (c *ChapterData) AddUnit(u TranslationUnit) {
	c.Units = append(c.Units, u)
	c.Chapter.UpdatedAt = time.Now().UTC()
}

// UpdateWordCounts recomputes the per-language word counts from the
// current unit texts.
func (c *ChapterData) UpdateWordCounts() {
	counts := map[string]int{}
	for i := range c.Units {
		u := &c.Units[i]
		counts[u.SourceLanguage] += CountWords(u.SourceText)
		for lang, tr := range u.Translations {
			counts[lang] += CountWords(tr.Text)
		}
	}
	c.Chapter.Metadata.WordCount = counts
	c.Chapter.UpdatedAt = time.Now().UTC()
}

// CountWords counts whitespace-separated words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// SetTranslation stores or replaces a language's translation on the
// unit and stamps no chapter time; callers persist through the store.
func (u *TranslationUnit) SetTranslation(language string, v TranslationVersion) {
	if u.Translations == nil {
		u.Translations = map[string]TranslationVersion{}
	}
	u.Translations[language] = v
}

// UpdateText replaces the translation text, bumps the revision count,
// and resets the version to draft.
func (v *TranslationVersion) UpdateText(text string) {
	v.Text = text
	v.UpdatedAt = time.Now().UTC()
	v.RevisionCount++
	v.Status = TranslationDraft
}

// MarkReviewed records a completed review.
func (v *TranslationVersion) MarkReviewed(reviewer string, status TranslationStatus, notes string) {
	now := time.Now().UTC()
	v.Status = status
	v.Reviewer = reviewer
	v.ReviewedAt = &now
	v.UpdatedAt = now
	if notes != "" {
		v.Metadata.ReviewNotes = notes
	}
}
