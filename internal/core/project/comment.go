package project

import "time"

// CommentType classifies the intent behind a comment.
type CommentType string

const (
	CommentSuggestion  CommentType = "suggestion"
	CommentQuestion    CommentType = "question"
	CommentApproval    CommentType = "approval"
	CommentIssue       CommentType = "issue"
	CommentContextInfo CommentType = "context"
	CommentTerminology CommentType = "terminology"
)

// IsValid reports whether t is a known comment type.
func (t CommentType) IsValid() bool {
	switch t {
	case CommentSuggestion, CommentQuestion, CommentApproval,
		CommentIssue, CommentContextInfo, CommentTerminology:
		return true
	}
	return false
}

// CommentContext scopes a comment to the project, a chapter, or one
// language's translation of a paragraph unit. The Type tag is the
// discriminator; Paragraph and Language are set only for translation
// contexts.
type CommentContext struct {
	Type      ContextType `toml:"type" json:"type"`
	Paragraph string      `toml:"paragraph,omitempty" json:"paragraph,omitempty"`
	Language  string      `toml:"language,omitempty" json:"language,omitempty"`
}

// ProjectCommentContext returns a project-scoped comment context.
func ProjectCommentContext() CommentContext {
	return CommentContext{Type: ContextProject}
}

// ChapterCommentContext returns a chapter-scoped comment context.
func ChapterCommentContext() CommentContext {
	return CommentContext{Type: ContextChapter}
}

// TranslationCommentContext returns a comment context scoped to one
// language's translation of a paragraph unit.
func TranslationCommentContext(paragraph, language string) CommentContext {
	return CommentContext{Type: ContextTranslation, Paragraph: paragraph, Language: language}
}

// IsValid reports whether the context is a well-formed variant.
func (c CommentContext) IsValid() bool {
	switch c.Type {
	case ContextProject, ContextChapter:
		return true
	case ContextTranslation:
		return c.Paragraph != "" && c.Language != ""
	}
	return false
}

// String renders the context in the compact form used in logs.
func (c CommentContext) String() string {
	switch c.Type {
	case ContextProject:
		return "project"
	case ContextChapter:
		return "chapter"
	case ContextTranslation:
		return "translation:" + c.Paragraph + ":" + c.Language
	}
	return "unknown"
}

// Comment is feedback attached to a scope. Threaded replies live on the
// comment itself rather than as separate records; ThreadID links related
// comments across units when set.
type Comment struct {
	ID        string         `toml:"id" json:"id"`
	Author    string         `toml:"author" json:"author"`
	Content   string         `toml:"content" json:"content"`
	Type      CommentType    `toml:"type" json:"type"`
	Context   CommentContext `toml:"context" json:"context"`
	CreatedAt time.Time      `toml:"created_at" json:"created_at"`
	Resolved  bool           `toml:"resolved" json:"resolved"`
	ThreadID  string         `toml:"thread_id,omitempty" json:"thread_id,omitempty"`
	Replies   []CommentReply `toml:"replies,omitempty" json:"replies,omitempty"`
}

// CommentReply is one threaded reply to a comment. ReplyTo names the
// author being answered when the thread branches.
type CommentReply struct {
	Author    string    `toml:"author" json:"author"`
	Content   string    `toml:"content" json:"content"`
	CreatedAt time.Time `toml:"created_at" json:"created_at"`
	ReplyTo   string    `toml:"reply_to,omitempty" json:"reply_to,omitempty"`
}
