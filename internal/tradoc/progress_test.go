package tradoc

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradocflow/tradocflow/internal/core/project"
	"github.com/tradocflow/tradocflow/internal/store/tomlfile"
)

func writeMalformedChapter(t *testing.T, store *tomlfile.Store, slug string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(store.ChaptersDir(), 0o755))
	require.NoError(t, os.WriteFile(store.ChapterPath(slug), []byte("not = [valid"), 0o644))
}

func progressFixture(t *testing.T) (*ProgressService, *tomlfile.Store) {
	t.Helper()

	store := tomlfile.NewStore(t.TempDir(), "proj-progress")
	return NewProgressService(store, zerolog.Nop()), store
}

func seedProgressProject(t *testing.T, store *tomlfile.Store, todos []project.Todo) {
	t.Helper()

	data := project.NewProjectData("proj-progress", "Manual", "Printer manual", "en", []string{"de", "fr"}, "editor1")
	data.Todos = todos
	require.NoError(t, store.SaveProject(context.Background(), data))
}

// seedProgressChapter writes two units: de is fully done (one approved,
// one completed), fr is half done.
func seedProgressChapter(t *testing.T, store *tomlfile.Store) {
	t.Helper()

	err := store.SaveChapter(context.Background(), "intro", project.ChapterData{
		Chapter: project.ChapterMetadata{
			Number: 1,
			Slug:   "intro",
			Status: project.ChapterInTranslation,
			Title:  map[string]string{"en": "Introduction"},
		},
		Units: []project.TranslationUnit{
			{
				ID:             "intro_p001",
				Order:          1,
				SourceLanguage: "en",
				SourceText:     "Welcome to the manual.",
				Translations: map[string]project.TranslationVersion{
					"de": {Text: "Willkommen im Handbuch.", Translator: "translator1", Status: project.TranslationApproved},
					"fr": {Text: "Bienvenue dans le manuel.", Translator: "translator2", Status: project.TranslationCompleted},
				},
			},
			{
				ID:             "intro_p002",
				Order:          2,
				SourceLanguage: "en",
				SourceText:     "Read all safety instructions first.",
				Translations: map[string]project.TranslationVersion{
					"de": {Text: "Lesen Sie zuerst alle Sicherheitshinweise.", Translator: "translator1", Status: project.TranslationCompleted},
					"fr": {Text: "Lisez d'abord", Translator: "translator2", Status: project.TranslationInProgress},
				},
			},
		},
	})
	require.NoError(t, err)
}

func TestProgress_LanguageCompletion(t *testing.T) {
	t.Parallel()

	svc, store := progressFixture(t)
	seedProgressProject(t, store, nil)
	seedProgressChapter(t, store)

	progress, err := svc.Progress(context.Background())
	require.NoError(t, err)

	de := progress.Languages["de"]
	assert.Equal(t, 2, de.TotalUnits)
	assert.Equal(t, 1, de.ApprovedUnits)
	assert.Equal(t, 1, de.TranslatedUnits)
	assert.InDelta(t, 1.0, de.Completion, 1e-9)
	assert.Zero(t, de.EstimatedRemainingHours)

	fr := progress.Languages["fr"]
	assert.Equal(t, 2, fr.TotalUnits)
	assert.Equal(t, 0, fr.ApprovedUnits)
	assert.Equal(t, 1, fr.TranslatedUnits)
	assert.InDelta(t, 0.5, fr.Completion, 1e-9)
	assert.InDelta(t, 0.5, fr.EstimatedRemainingHours, 1e-9)

	// Overall is the mean of the per-language completions.
	assert.InDelta(t, 0.75, progress.OverallCompletion, 1e-9)
	assert.Greater(t, de.SourceWords, 0)
	assert.Greater(t, de.TranslatedWords, 0)
}

func TestProgress_Milestones(t *testing.T) {
	t.Parallel()

	svc, store := progressFixture(t)
	seedProgressProject(t, store, nil)
	seedProgressChapter(t, store)

	progress, err := svc.Progress(context.Background())
	require.NoError(t, err)

	require.Len(t, progress.Timeline.Milestones, 3)
	for _, m := range progress.Timeline.Milestones {
		assert.True(t, m.Reached, "overall 0.75 reaches every milestone: %s", m.Name)
	}
}

func TestProgress_ChapterStatus(t *testing.T) {
	t.Parallel()

	svc, store := progressFixture(t)
	seedProgressProject(t, store, nil)
	seedProgressChapter(t, store)

	progress, err := svc.Progress(context.Background())
	require.NoError(t, err)

	require.Len(t, progress.Chapters, 1)
	ch := progress.Chapters[0]
	assert.Equal(t, "intro", ch.Slug)
	assert.Equal(t, 2, ch.Units)

	// One approved unit out of two: approved, not yet published.
	assert.Equal(t, project.ChapterApproved, ch.Status["de"])
	assert.Equal(t, project.ChapterInTranslation, ch.Status["fr"])
	assert.InDelta(t, 1.0, ch.Completion["de"], 1e-9)
	assert.InDelta(t, 0.5, ch.Completion["fr"], 1e-9)
}

func TestProgress_TeamAndTodoStats(t *testing.T) {
	t.Parallel()

	svc, store := progressFixture(t)

	created := time.Now().UTC().Add(-72 * time.Hour)
	resolved := created.Add(24 * time.Hour)
	overdue := created.Add(12 * time.Hour)

	seedProgressProject(t, store, []project.Todo{
		{
			ID: "t1", Title: "Done todo", TodoType: project.TypeReview,
			Priority: project.PriorityHigh, Status: project.StatusCompleted,
			CreatedBy: "editor1", AssignedTo: "reviewer-de",
			Context: project.ProjectContext(), CreatedAt: created, ResolvedAt: &resolved,
		},
		{
			ID: "t2", Title: "Late todo", TodoType: project.TypeTranslation,
			Priority: project.PriorityMedium, Status: project.StatusOpen,
			CreatedBy: "editor1", AssignedTo: "reviewer-de",
			Context: project.ProjectContext(), CreatedAt: created, DueDate: &overdue,
		},
	})
	seedProgressChapter(t, store)

	progress, err := svc.Progress(context.Background())
	require.NoError(t, err)

	member := progress.Team.Members["reviewer-de"]
	assert.Equal(t, 2, member.Assigned)
	assert.Equal(t, 1, member.Completed)
	assert.Equal(t, 1, member.Open)
	assert.InDelta(t, 0.5, member.Productivity, 1e-9)

	require.Len(t, progress.Team.Overdue, 1)
	assert.Equal(t, "t2", progress.Team.Overdue[0].ID)

	assert.InDelta(t, 24.0, progress.Team.AvgCompletionHours[project.TypeReview], 1e-9)

	assert.Equal(t, 2, progress.Todos.Total)
	assert.Equal(t, 1, progress.Todos.Completed)
	assert.Equal(t, 1, progress.Todos.Remaining)
	assert.Equal(t, 1, progress.Todos.ByPriority[project.PriorityHigh])

	// One completed todo, project barely started: velocity is positive
	// and the projection is finite.
	assert.Greater(t, progress.Timeline.VelocityPerWeek, 0.0)
	assert.Less(t, progress.Timeline.WeeksRemaining, float64(fallbackProjectionWeeks))
}

func TestProgress_ZeroVelocityFallback(t *testing.T) {
	t.Parallel()

	svc, store := progressFixture(t)
	seedProgressProject(t, store, []project.Todo{
		{
			ID: "t1", Title: "Open todo", TodoType: project.TypeReview,
			Priority: project.PriorityMedium, Status: project.StatusOpen,
			CreatedBy: "editor1", Context: project.ProjectContext(),
			CreatedAt: time.Now().UTC(),
		},
	})

	progress, err := svc.Progress(context.Background())
	require.NoError(t, err)

	assert.Zero(t, progress.Timeline.VelocityPerWeek)
	assert.Equal(t, float64(fallbackProjectionWeeks), progress.Timeline.WeeksRemaining)
}

func TestProgress_QualityPlaceholder(t *testing.T) {
	t.Parallel()

	svc, store := progressFixture(t)
	seedProgressProject(t, store, nil)

	progress, err := svc.Progress(context.Background())
	require.NoError(t, err)

	assert.InDelta(t, project.DefaultQualityThreshold, progress.Quality.AverageScore, 1e-9)
	assert.Equal(t, "stable", progress.Quality.Trend)
}

func TestProgress_SkipsMalformedChapter(t *testing.T) {
	t.Parallel()

	svc, store := progressFixture(t)
	seedProgressProject(t, store, nil)
	seedProgressChapter(t, store)

	writeMalformedChapter(t, store, "broken")

	progress, err := svc.Progress(context.Background())
	require.NoError(t, err, "a malformed chapter must not fail the aggregate")
	require.Len(t, progress.Chapters, 1)
	assert.Equal(t, "intro", progress.Chapters[0].Slug)
}
