package project

import "time"

// Priority orders todos by urgency.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// TodoStatus represents the lifecycle state of a todo.
type TodoStatus string

const (
	StatusOpen       TodoStatus = "open"
	StatusInProgress TodoStatus = "in_progress"
	StatusCompleted  TodoStatus = "completed"
	StatusCancelled  TodoStatus = "cancelled"
)

// IsValid reports whether s is a known status.
func (s TodoStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether the status ends a todo's lifecycle.
func (s TodoStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// TodoType classifies the kind of work a todo asks for.
type TodoType string

const (
	TypeTranslation TodoType = "translation"
	TypeReview      TodoType = "review"
	TypeTerminology TodoType = "terminology"
	TypeRevision    TodoType = "revision"
	TypeScreenshot  TodoType = "screenshot"
	TypeFormatting  TodoType = "formatting"
	TypeResearch    TodoType = "research"
)

// IsValid reports whether t is a known todo type.
func (t TodoType) IsValid() bool {
	switch t {
	case TypeTranslation, TypeReview, TypeTerminology, TypeRevision,
		TypeScreenshot, TypeFormatting, TypeResearch:
		return true
	}
	return false
}

// ContextType tags a TodoContext variant.
type ContextType string

const (
	ContextProject     ContextType = "project"
	ContextChapter     ContextType = "chapter"
	ContextParagraph   ContextType = "paragraph"
	ContextTranslation ContextType = "translation"
)

// TodoContext scopes a todo to the project, a chapter, a paragraph unit,
// or one language's translation of a unit. The Type tag is the closed
// discriminator; UnitID is set for paragraph and translation contexts,
// Language only for translation contexts.
type TodoContext struct {
	Type     ContextType `toml:"type" json:"type"`
	UnitID   string      `toml:"unit_id,omitempty" json:"unit_id,omitempty"`
	Language string      `toml:"language,omitempty" json:"language,omitempty"`
}

// ProjectContext returns a project-scoped context.
func ProjectContext() TodoContext {
	return TodoContext{Type: ContextProject}
}

// ChapterContext returns a chapter-scoped context.
func ChapterContext() TodoContext {
	return TodoContext{Type: ContextChapter}
}

// ParagraphContext returns a context scoped to a translation unit.
func ParagraphContext(unitID string) TodoContext {
	return TodoContext{Type: ContextParagraph, UnitID: unitID}
}

// TranslationContext returns a context scoped to one language's
// translation of a unit.
func TranslationContext(unitID, language string) TodoContext {
	return TodoContext{Type: ContextTranslation, UnitID: unitID, Language: language}
}

// IsValid reports whether the context is a well-formed variant: known
// tag, unit id present where the variant requires one, and language
// present for translation contexts.
func (c TodoContext) IsValid() bool {
	switch c.Type {
	case ContextProject, ContextChapter:
		return true
	case ContextParagraph:
		return c.UnitID != ""
	case ContextTranslation:
		return c.UnitID != "" && c.Language != ""
	}
	return false
}

// String renders the context in the compact form used in logs and
// commit trailers.
func (c TodoContext) String() string {
	switch c.Type {
	case ContextProject:
		return "project"
	case ContextChapter:
		return "chapter"
	case ContextParagraph:
		return "paragraph:" + c.UnitID
	case ContextTranslation:
		return "translation:" + c.UnitID + ":" + c.Language
	}
	return "unknown"
}

// Describe renders the context in the long form used in commit bodies
// and notifications.
func (c TodoContext) Describe() string {
	switch c.Type {
	case ContextProject:
		return "project-level"
	case ContextChapter:
		return "chapter-level"
	case ContextParagraph:
		return "paragraph-" + c.UnitID
	case ContextTranslation:
		return "translation-" + c.UnitID + "-" + c.Language
	}
	return "unknown"
}

// DefaultChapter is the chapter slug used when a context cannot be
// resolved to a specific chapter.
const DefaultChapter = "default_chapter"

// ChapterForUnit returns the chapter slug owning a unit, derived from
// the id prefix before the first underscore. Unit ids follow the
// <chapter>_<unit> convention (e.g. "intro_p001" belongs to "intro");
// ids without an underscore fall back to DefaultChapter.
func ChapterForUnit(unitID string) string {
	for i := 0; i < len(unitID); i++ {
		if unitID[i] == '_' {
			if i == 0 {
				return DefaultChapter
			}
			return unitID[:i]
		}
	}
	return DefaultChapter
}

// Todo is a tracked work item bound to a context. Mutations go through
// the task service, never through direct shard edits.
type Todo struct {
	ID          string        `toml:"id" json:"id"`
	Title       string        `toml:"title" json:"title"`
	Description string        `toml:"description,omitempty" json:"description,omitempty"`
	TodoType    TodoType      `toml:"type" json:"type"`
	Priority    Priority      `toml:"priority" json:"priority"`
	Status      TodoStatus    `toml:"status" json:"status"`
	CreatedBy   string        `toml:"created_by" json:"created_by"`
	AssignedTo  string        `toml:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	Context     TodoContext   `toml:"context" json:"context"`
	CreatedAt   time.Time     `toml:"created_at" json:"created_at"`
	DueDate     *time.Time    `toml:"due_date,omitempty" json:"due_date,omitempty"`
	ResolvedAt  *time.Time    `toml:"resolved_at,omitempty" json:"resolved_at,omitempty"`
	Resolution  string        `toml:"resolution,omitempty" json:"resolution,omitempty"`
	Metadata    *TodoMetadata `toml:"metadata,omitempty" json:"metadata,omitempty"`
}

// TodoMetadata carries optional effort-tracking fields.
type TodoMetadata struct {
	EstimatedHours  *float64 `toml:"estimated_hours,omitempty" json:"estimated_hours,omitempty"`
	ActualHours     *float64 `toml:"actual_hours,omitempty" json:"actual_hours,omitempty"`
	ProgressPercent *int     `toml:"progress_percent,omitempty" json:"progress_percent,omitempty"`
	Dependencies    []string `toml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// Overdue reports whether the todo is open past its due date at the
// given instant. Todos without a due date are never overdue.
func (t Todo) Overdue(now time.Time) bool {
	return t.Status == StatusOpen && t.DueDate != nil && t.DueDate.Before(now)
}
