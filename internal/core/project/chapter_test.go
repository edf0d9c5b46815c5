package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChapterData(t *testing.T) {
	ch := NewChapterData(1, "introduction", map[string]string{"en": "Introduction"})

	assert.Equal(t, 1, ch.Chapter.Number)
	assert.Equal(t, "introduction", ch.Chapter.Slug)
	assert.Equal(t, ChapterDraft, ch.Chapter.Status)
	assert.Equal(t, DifficultyIntermediate, ch.Chapter.Metadata.Difficulty)
	assert.Empty(t, ch.Units)
	assert.NotNil(t, ch.Chapter.Metadata.WordCount)
}

func TestChapterData_Unit(t *testing.T) {
	ch := NewChapterData(1, "introduction", map[string]string{"en": "Introduction"})
	ch.AddUnit(NewTranslationUnit("introduction_p001", 1, "en", "Welcome to the manual."))
	ch.AddUnit(NewTranslationUnit("introduction_p002", 2, "en", "Read this first."))

	unit := ch.Unit("introduction_p002")
	require.NotNil(t, unit)
	assert.Equal(t, 2, unit.Order)

	assert.Nil(t, ch.Unit("introduction_p999"))
}

func TestChapterData_UpdateWordCounts(t *testing.T) {
	ch := NewChapterData(1, "introduction", map[string]string{"en": "Introduction"})

	u1 := NewTranslationUnit("introduction_p001", 1, "en", "one two three")
	u1.SetTranslation("de", NewTranslationVersion("eins zwei drei vier", "translator-de"))
	ch.AddUnit(u1)

	u2 := NewTranslationUnit("introduction_p002", 2, "en", "four five")
	ch.AddUnit(u2)

	ch.UpdateWordCounts()

	assert.Equal(t, 5, ch.Chapter.Metadata.WordCount["en"])
	assert.Equal(t, 4, ch.Chapter.Metadata.WordCount["de"])
}

func TestTranslationVersion_UpdateText(t *testing.T) {
	v := NewTranslationVersion("erste Fassung", "translator-de")
	v.Status = TranslationCompleted

	v.UpdateText("zweite Fassung")

	assert.Equal(t, "zweite Fassung", v.Text)
	assert.Equal(t, 1, v.RevisionCount)
	assert.Equal(t, TranslationDraft, v.Status)
}

func TestTranslationVersion_MarkReviewed(t *testing.T) {
	v := NewTranslationVersion("texte traduit", "translator-fr")

	v.MarkReviewed("reviewer-fr", TranslationApproved, "looks good")

	assert.Equal(t, TranslationApproved, v.Status)
	assert.Equal(t, "reviewer-fr", v.Reviewer)
	require.NotNil(t, v.ReviewedAt)
	assert.Equal(t, "looks good", v.Metadata.ReviewNotes)
}

func TestTranslationStatus_Done(t *testing.T) {
	assert.True(t, TranslationCompleted.Done())
	assert.True(t, TranslationApproved.Done())
	assert.False(t, TranslationDraft.Done())
	assert.False(t, TranslationInProgress.Done())
	assert.False(t, TranslationUnderReview.Done())
	assert.False(t, TranslationRejected.Done())
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 0, CountWords("   "))
	assert.Equal(t, 3, CountWords("one two three"))
	assert.Equal(t, 3, CountWords("  one\ttwo\nthree  "))
}
