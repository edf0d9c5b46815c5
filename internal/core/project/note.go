package project

import "time"

// NoteType classifies a translation note.
type NoteType string

const (
	NoteTerminology NoteType = "terminology"
	NoteGrammar     NoteType = "grammar"
	NoteContext     NoteType = "context"
	NoteCultural    NoteType = "cultural"
	NoteTechnical   NoteType = "technical"
)

// NoteVisibility controls who sees a note.
type NoteVisibility string

const (
	VisibilityPublic  NoteVisibility = "public"
	VisibilityTeam    NoteVisibility = "team"
	VisibilityPrivate NoteVisibility = "private"
)

// TranslationNote is free-form guidance attached to a unit for one
// language. Notes are informational and never gate workflow.
type TranslationNote struct {
	ID         string         `toml:"id" json:"id"`
	Author     string         `toml:"author" json:"author"`
	Content    string         `toml:"content" json:"content"`
	Type       NoteType       `toml:"type" json:"type"`
	CreatedAt  time.Time      `toml:"created_at" json:"created_at"`
	Language   string         `toml:"language" json:"language"`
	Visibility NoteVisibility `toml:"visibility" json:"visibility"`
}

// NewTranslationNote builds a team-visible note.
func NewTranslationNote(id, author, content string, noteType NoteType, language string) TranslationNote {
	return TranslationNote{
		ID:         id,
		Author:     author,
		Content:    content,
		Type:       noteType,
		CreatedAt:  time.Now().UTC(),
		Language:   language,
		Visibility: VisibilityTeam,
	}
}
