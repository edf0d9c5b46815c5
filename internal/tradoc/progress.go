package tradoc

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tradocflow/tradocflow/internal/core/project"
)

// hoursPerRemainingUnit is the flat effort estimate used for remaining
// translation work.
const hoursPerRemainingUnit = 0.5

// fallbackProjectionWeeks is the projection horizon used when no todo
// has been completed yet, so velocity is zero.
const fallbackProjectionWeeks = 52

// LanguageProgress summarizes one target language across all chapters.
type LanguageProgress struct {
	Language                string  `json:"language"`
	TotalUnits              int     `json:"total_units"`
	TranslatedUnits         int     `json:"translated_units"`
	ApprovedUnits           int     `json:"approved_units"`
	Completion              float64 `json:"completion"` // (approved+completed)/total
	SourceWords             int     `json:"source_words"`
	TranslatedWords         int     `json:"translated_words"`
	EstimatedRemainingHours float64 `json:"estimated_remaining_hours"`
}

// ChapterProgress summarizes one chapter, per target language.
type ChapterProgress struct {
	Slug       string                           `json:"slug"`
	Number     int                              `json:"number"`
	Title      map[string]string                `json:"title,omitempty"`
	Units      int                              `json:"units"`
	Completion map[string]float64               `json:"completion"`
	Status     map[string]project.ChapterStatus `json:"status"`
}

// MemberStats summarizes one team member's todo load.
type MemberStats struct {
	Assigned     int     `json:"assigned"`
	Completed    int     `json:"completed"`
	Open         int     `json:"open"`
	Productivity float64 `json:"productivity"` // completed/assigned
}

// TeamStats aggregates member workloads and overdue work.
type TeamStats struct {
	Members            map[string]MemberStats      `json:"members"`
	Overdue            []project.Todo              `json:"overdue,omitempty"`
	AvgCompletionHours map[project.TodoType]float64 `json:"avg_completion_hours,omitempty"`
}

// Milestone is one fixed point on the completion timeline.
type Milestone struct {
	Name          string  `json:"name"`
	TargetPercent float64 `json:"target_percent"`
	Reached       bool    `json:"reached"`
}

// Timeline projects when the remaining todos will be done at the
// observed completion velocity.
type Timeline struct {
	VelocityPerWeek     float64     `json:"velocity_per_week"` // completed todos per week
	WeeksRemaining      float64     `json:"weeks_remaining"`
	ProjectedCompletion time.Time   `json:"projected_completion"`
	Milestones          []Milestone `json:"milestones"`
}

// QualityMetrics carries review-quality aggregates. Scoring is not
// implemented yet; the average holds the project's quality threshold as
// a stand-in.
type QualityMetrics struct {
	AverageScore  float64 `json:"average_score"`
	Trend         string  `json:"trend"`
	ReviewedUnits int     `json:"reviewed_units"`
	RejectedUnits int     `json:"rejected_units"`
}

// TodoStats counts todos by dimension.
type TodoStats struct {
	Total      int                          `json:"total"`
	Completed  int                          `json:"completed"`
	Remaining  int                          `json:"remaining"` // open + in progress
	ByStatus   map[project.TodoStatus]int   `json:"by_status"`
	ByType     map[project.TodoType]int     `json:"by_type"`
	ByPriority map[project.Priority]int     `json:"by_priority"`
}

// ProjectProgress is the full derived progress view. It is computed
// from freshly loaded shards on every call and never cached.
type ProjectProgress struct {
	ProjectID         string                      `json:"project_id"`
	ProjectName       string                      `json:"project_name"`
	GeneratedAt       time.Time                   `json:"generated_at"`
	OverallCompletion float64                     `json:"overall_completion"` // mean of language completions
	Languages         map[string]LanguageProgress `json:"languages"`
	Chapters          []ChapterProgress           `json:"chapters"`
	Team              TeamStats                   `json:"team"`
	Timeline          Timeline                    `json:"timeline"`
	Quality           QualityMetrics              `json:"quality"`
	Todos             TodoStats                   `json:"todos"`
}

// ProgressService computes project analytics from the shards.
type ProgressService struct {
	store   project.Store
	log     zerolog.Logger
	workers int
}

// NewProgressService creates a progress service over the given store.
func NewProgressService(store project.Store, log zerolog.Logger) *ProgressService {
	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	}
	return &ProgressService{
		store:   store,
		log:     log.With().Str("component", "progress-service").Logger(),
		workers: workers,
	}
}

// Progress reloads every shard and derives the full progress view.
// Chapters that fail to load are skipped with a warning rather than
// failing the aggregate.
func (s *ProgressService) Progress(ctx context.Context) (ProjectProgress, error) {
	data, err := s.store.LoadProject(ctx)
	if err != nil {
		return ProjectProgress{}, fmt.Errorf("load project: %w", err)
	}

	chapters, err := s.loadChapters(ctx)
	if err != nil {
		return ProjectProgress{}, err
	}

	todos := collectAllTodos(data, chapters)

	progress := ProjectProgress{
		ProjectID:   data.Project.ID,
		ProjectName: data.Project.Name,
		GeneratedAt: time.Now().UTC(),
		Languages:   make(map[string]LanguageProgress),
		Quality: QualityMetrics{
			AverageScore: data.Project.Settings.QualityThreshold,
			Trend:        "stable",
		},
	}

	targets := data.Project.Languages.Targets
	for _, lang := range targets {
		progress.Languages[lang] = languageProgress(lang, chapters)
	}

	var completionSum float64
	for _, lang := range targets {
		completionSum += progress.Languages[lang].Completion
	}
	if len(targets) > 0 {
		progress.OverallCompletion = completionSum / float64(len(targets))
	}

	for _, ch := range chapters {
		progress.Chapters = append(progress.Chapters, chapterProgress(ch, targets))
	}

	progress.Quality.ReviewedUnits, progress.Quality.RejectedUnits = reviewCounts(chapters)
	progress.Team = teamStats(todos)
	progress.Todos = todoStats(todos)
	progress.Timeline = timeline(data.Project.CreatedAt, progress.Todos, progress.OverallCompletion)

	return progress, nil
}

// loadChapters loads every chapter shard concurrently, preserving slug
// order in the result and dropping chapters that fail to load.
func (s *ProgressService) loadChapters(ctx context.Context) ([]project.ChapterData, error) {
	slugs, err := s.store.ChapterSlugs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}

	loaded := make([]*project.ChapterData, len(slugs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, slug := range slugs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ch, err := s.store.LoadChapter(gctx, slug)
			if err != nil {
				s.log.Warn().Err(err).Str("chapter", slug).Msg("skipping unreadable chapter in progress aggregation")
				return nil
			}
			loaded[i] = &ch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	chapters := make([]project.ChapterData, 0, len(loaded))
	for _, ch := range loaded {
		if ch != nil {
			chapters = append(chapters, *ch)
		}
	}
	return chapters, nil
}

func collectAllTodos(data project.ProjectData, chapters []project.ChapterData) []project.Todo {
	all := append([]project.Todo{}, data.Todos...)
	for _, ch := range chapters {
		all = append(all, ch.Todos...)
		for _, unit := range ch.Units {
			all = append(all, unit.Todos...)
		}
	}
	return all
}

func languageProgress(lang string, chapters []project.ChapterData) LanguageProgress {
	lp := LanguageProgress{Language: lang}

	for _, ch := range chapters {
		for _, unit := range ch.Units {
			lp.TotalUnits++
			lp.SourceWords += project.CountWords(unit.SourceText)

			tr, ok := unit.Translations[lang]
			if !ok {
				continue
			}
			lp.TranslatedWords += project.CountWords(tr.Text)
			switch tr.Status {
			case project.TranslationApproved:
				lp.ApprovedUnits++
			case project.TranslationCompleted:
				lp.TranslatedUnits++
			}
		}
	}

	if lp.TotalUnits > 0 {
		lp.Completion = float64(lp.ApprovedUnits+lp.TranslatedUnits) / float64(lp.TotalUnits)
	}
	remaining := lp.TotalUnits - lp.ApprovedUnits - lp.TranslatedUnits
	lp.EstimatedRemainingHours = float64(remaining) * hoursPerRemainingUnit

	return lp
}

// chapterProgress derives per-language completion and status for one
// chapter. Published means every unit approved; approved means any
// approved or all done; in translation means any work done; else draft.
func chapterProgress(ch project.ChapterData, targets []string) ChapterProgress {
	cp := ChapterProgress{
		Slug:       ch.Chapter.Slug,
		Number:     ch.Chapter.Number,
		Title:      ch.Chapter.Title,
		Units:      len(ch.Units),
		Completion: make(map[string]float64),
		Status:     make(map[string]project.ChapterStatus),
	}

	for _, lang := range targets {
		var approved, completed, inProgress int
		for _, unit := range ch.Units {
			tr, ok := unit.Translations[lang]
			if !ok {
				continue
			}
			switch tr.Status {
			case project.TranslationApproved:
				approved++
			case project.TranslationCompleted:
				completed++
			case project.TranslationInProgress, project.TranslationUnderReview:
				inProgress++
			}
		}

		total := len(ch.Units)
		if total > 0 {
			cp.Completion[lang] = float64(approved+completed) / float64(total)
		}

		switch {
		case total > 0 && approved == total:
			cp.Status[lang] = project.ChapterPublished
		case approved > 0 || (total > 0 && completed == total):
			cp.Status[lang] = project.ChapterApproved
		case completed > 0 || inProgress > 0:
			cp.Status[lang] = project.ChapterInTranslation
		default:
			cp.Status[lang] = project.ChapterDraft
		}
	}

	return cp
}

func reviewCounts(chapters []project.ChapterData) (reviewed, rejected int) {
	for _, ch := range chapters {
		for _, unit := range ch.Units {
			for _, tr := range unit.Translations {
				if tr.ReviewedAt != nil {
					reviewed++
				}
				if tr.Status == project.TranslationRejected {
					rejected++
				}
			}
		}
	}
	return reviewed, rejected
}

func teamStats(todos []project.Todo) TeamStats {
	stats := TeamStats{
		Members:            make(map[string]MemberStats),
		AvgCompletionHours: make(map[project.TodoType]float64),
	}

	now := time.Now().UTC()
	completionHours := make(map[project.TodoType][]float64)

	for _, t := range todos {
		if t.AssignedTo != "" {
			m := stats.Members[t.AssignedTo]
			m.Assigned++
			switch t.Status {
			case project.StatusCompleted:
				m.Completed++
			case project.StatusOpen, project.StatusInProgress:
				m.Open++
			}
			stats.Members[t.AssignedTo] = m
		}

		if t.Overdue(now) {
			stats.Overdue = append(stats.Overdue, t)
		}

		if t.Status == project.StatusCompleted && t.ResolvedAt != nil {
			hours := t.ResolvedAt.Sub(t.CreatedAt).Hours()
			completionHours[t.TodoType] = append(completionHours[t.TodoType], hours)
		}
	}

	for member, m := range stats.Members {
		if m.Assigned > 0 {
			m.Productivity = float64(m.Completed) / float64(m.Assigned)
		}
		stats.Members[member] = m
	}

	for todoType, samples := range completionHours {
		var sum float64
		for _, h := range samples {
			sum += h
		}
		stats.AvgCompletionHours[todoType] = sum / float64(len(samples))
	}

	sort.Slice(stats.Overdue, func(i, j int) bool {
		return stats.Overdue[i].DueDate.Before(*stats.Overdue[j].DueDate)
	})

	return stats
}

func todoStats(todos []project.Todo) TodoStats {
	stats := TodoStats{
		ByStatus:   make(map[project.TodoStatus]int),
		ByType:     make(map[project.TodoType]int),
		ByPriority: make(map[project.Priority]int),
	}

	for _, t := range todos {
		stats.Total++
		stats.ByStatus[t.Status]++
		stats.ByType[t.TodoType]++
		stats.ByPriority[t.Priority]++

		switch t.Status {
		case project.StatusCompleted:
			stats.Completed++
		case project.StatusOpen, project.StatusInProgress:
			stats.Remaining++
		}
	}

	return stats
}

// timeline projects completion from the observed velocity: completed
// todos divided by weeks since the project started. Zero velocity falls
// back to a one-year horizon.
func timeline(projectStart time.Time, todos TodoStats, overall float64) Timeline {
	now := time.Now().UTC()

	weeks := now.Sub(projectStart).Hours() / (24 * 7)
	if weeks < 1 {
		weeks = 1
	}

	tl := Timeline{
		VelocityPerWeek: float64(todos.Completed) / weeks,
	}

	if tl.VelocityPerWeek > 0 {
		tl.WeeksRemaining = float64(todos.Remaining) / tl.VelocityPerWeek
	} else {
		tl.WeeksRemaining = fallbackProjectionWeeks
	}
	tl.ProjectedCompletion = now.Add(time.Duration(tl.WeeksRemaining * float64(7*24) * float64(time.Hour)))

	for _, target := range []float64{0.25, 0.50, 0.75} {
		tl.Milestones = append(tl.Milestones, Milestone{
			Name:          fmt.Sprintf("%.0f%% translated", target*100),
			TargetPercent: target,
			Reached:       overall >= target,
		})
	}

	return tl
}
