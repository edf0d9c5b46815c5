// Package tradoc is the service layer of tradocflow: task and comment
// workflows over the TOML shards, progress analytics, folder scanning,
// and the bridges wiring bus events to notifications and kanban sync.
package tradoc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tradocflow/tradocflow/internal/core/config"
	"github.com/tradocflow/tradocflow/internal/core/eventbus"
	"github.com/tradocflow/tradocflow/internal/core/git"
	"github.com/tradocflow/tradocflow/internal/core/permission"
	"github.com/tradocflow/tradocflow/internal/core/project"
	"github.com/tradocflow/tradocflow/pkg/executil"
	"github.com/tradocflow/tradocflow/pkg/kv"
	"github.com/tradocflow/tradocflow/pkg/tmpl"
)

// TaskService owns the todo and comment lifecycle: permission-gated
// mutations persisted to the TOML shards, each recorded as a git commit,
// mirrored into an in-memory cache, and announced on the event bus.
//
// The shards are the ground truth; the cache is a derived view refreshed
// on every write and populated lazily on read misses.
type TaskService struct {
	store project.Store
	perms *permission.Engine
	git   git.Git
	bus   *eventbus.EventBus
	cfg   *config.Config
	actor string
	cache *kv.Store[string, project.Todo]
	log   zerolog.Logger

	// commitMu serializes every mutate-then-commit sequence so a commit
	// always records exactly one mutation and rollback snapshots stay
	// coherent. Lock order is always commitMu, then the shard lock
	// inside the store, never the reverse.
	commitMu sync.Mutex
}

// NewTaskService creates a task service acting as the given user.
func NewTaskService(store project.Store, perms *permission.Engine, g git.Git, bus *eventbus.EventBus, cfg *config.Config, actor string, log zerolog.Logger) *TaskService {
	return &TaskService{
		store: store,
		perms: perms,
		git:   g,
		bus:   bus,
		cfg:   cfg,
		actor: actor,
		cache: kv.New[string, project.Todo](),
		log:   log.With().Str("component", "task-service").Logger(),
	}
}

// Actor returns the user id the service acts as.
func (s *TaskService) Actor() string { return s.actor }

// CreateTodoRequest carries the fields for a new todo.
type CreateTodoRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	TodoType    project.TodoType      `json:"type"`
	Priority    project.Priority      `json:"priority,omitempty"`
	Context     project.TodoContext   `json:"context"`
	AssignedTo  string                `json:"assigned_to,omitempty"`
	DueDate     *time.Time            `json:"due_date,omitempty"`
	Metadata    *project.TodoMetadata `json:"metadata,omitempty"`
}

// UpdateTodoRequest carries a partial todo update. Only non-nil fields
// are applied.
type UpdateTodoRequest struct {
	Title       *string             `json:"title,omitempty"`
	Description *string             `json:"description,omitempty"`
	Priority    *project.Priority   `json:"priority,omitempty"`
	Status      *project.TodoStatus `json:"status,omitempty"`
	AssignedTo  *string             `json:"assigned_to,omitempty"`
	DueDate     *time.Time          `json:"due_date,omitempty"`
	Resolution  *string             `json:"resolution,omitempty"`
}

// Create validates the request, persists the new todo into the shard
// its context maps to, records a commit, caches the result, and
// publishes todo.created. A failed commit rolls the shard back and the
// todo is not created.
func (s *TaskService) Create(ctx context.Context, req CreateTodoRequest) (project.Todo, error) {
	if req.Title == "" {
		return project.Todo{}, fmt.Errorf("todo title cannot be empty")
	}
	if !req.TodoType.IsValid() {
		return project.Todo{}, fmt.Errorf("invalid todo type %q", req.TodoType)
	}
	if !req.Context.IsValid() {
		return project.Todo{}, fmt.Errorf("%w: %s", project.ErrInvalidContext, req.Context)
	}
	if req.Priority == "" {
		req.Priority = project.PriorityMedium
	}
	if !req.Priority.IsValid() {
		return project.Todo{}, fmt.Errorf("invalid priority %q", req.Priority)
	}

	if err := s.perms.CanCreate(ctx, s.actor, req.TodoType, req.Context); err != nil {
		return project.Todo{}, fmt.Errorf("create todo: %w", err)
	}

	todo := project.Todo{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		TodoType:    req.TodoType,
		Priority:    req.Priority,
		Status:      project.StatusOpen,
		CreatedBy:   s.actor,
		AssignedTo:  req.AssignedTo,
		Context:     req.Context,
		CreatedAt:   time.Now().UTC(),
		DueDate:     req.DueDate,
		Metadata:    req.Metadata,
	}

	msg := NewCommitMessage("task: create %s todo '%s'", todo.TodoType, todo.Title).
		Line("Created a new %s todo in %s scope.", todo.TodoType, todo.Context.Describe())
	if todo.AssignedTo != "" {
		msg.Line("Assigned to %s.", todo.AssignedTo)
	}
	msg.Trailer("Created-By", s.actor).
		Trailer("Todo-ID", todo.ID).
		Trailer("Context", todo.Context.String())

	err := s.mutateShard(ctx, shardForTodoContext(todo.Context), msg, appendTodo(todo))
	if err != nil {
		return project.Todo{}, fmt.Errorf("create todo: %w", err)
	}

	s.cache.Set(todo.ID, todo)
	s.bus.PublishTodoCreated(eventbus.TodoCreatedPayload{Todo: todo})

	s.log.Info().
		Str("todo_id", todo.ID).
		Str("type", string(todo.TodoType)).
		Str("context", todo.Context.String()).
		Msg("todo created")

	return todo, nil
}

// Update applies the present request fields to a todo, building a
// change log. No changed field means no shard write and no commit; the
// cache still refreshes and todo.updated still fires. A transition to
// completed stamps the resolution, and an assignee change publishes
// todo.assigned before todo.updated.
func (s *TaskService) Update(ctx context.Context, id string, req UpdateTodoRequest) (project.Todo, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return project.Todo{}, err
	}

	if err := s.perms.CanUpdate(ctx, s.actor, current); err != nil {
		return project.Todo{}, fmt.Errorf("update todo: %w", err)
	}

	updated, changes := applyUpdate(current, req)

	if len(changes) > 0 {
		msg := NewCommitMessage("task: update todo '%s'", updated.Title)
		for _, change := range changes {
			msg.Line("%s", change)
		}
		msg.Trailer("Updated-By", s.actor).
			Trailer("Todo-ID", updated.ID).
			Trailer("Context", updated.Context.String())

		err := s.mutateShard(ctx, shardForTodoContext(updated.Context), msg, replaceTodo(updated))
		if err != nil {
			return project.Todo{}, fmt.Errorf("update todo: %w", err)
		}
	}

	s.cache.Set(updated.ID, updated)

	if updated.AssignedTo != current.AssignedTo && updated.AssignedTo != "" {
		s.bus.PublishTodoAssigned(eventbus.TodoAssignedPayload{Todo: updated, Assignee: updated.AssignedTo})
	}
	s.bus.PublishTodoUpdated(eventbus.TodoUpdatedPayload{Todo: updated, Changes: changes})
	if updated.Status != current.Status {
		switch updated.Status {
		case project.StatusCompleted:
			s.bus.PublishTodoCompleted(eventbus.TodoCompletedPayload{Todo: updated})
		case project.StatusCancelled:
			s.bus.PublishTodoCancelled(eventbus.TodoCancelledPayload{Todo: updated})
		}
	}

	return updated, nil
}

// applyUpdate returns the todo with the request applied plus one
// human-readable entry per changed field.
func applyUpdate(todo project.Todo, req UpdateTodoRequest) (project.Todo, []string) {
	var changes []string

	if req.Title != nil && *req.Title != todo.Title {
		changes = append(changes, fmt.Sprintf("Title changed from '%s' to '%s'", todo.Title, *req.Title))
		todo.Title = *req.Title
	}
	if req.Description != nil && *req.Description != todo.Description {
		changes = append(changes, "Description updated")
		todo.Description = *req.Description
	}
	if req.Priority != nil && *req.Priority != todo.Priority {
		changes = append(changes, fmt.Sprintf("Priority changed from %s to %s", todo.Priority, *req.Priority))
		todo.Priority = *req.Priority
	}
	if req.AssignedTo != nil && *req.AssignedTo != todo.AssignedTo {
		if *req.AssignedTo == "" {
			changes = append(changes, fmt.Sprintf("Unassigned from %s", todo.AssignedTo))
		} else {
			changes = append(changes, fmt.Sprintf("Assigned to %s", *req.AssignedTo))
		}
		todo.AssignedTo = *req.AssignedTo
	}
	if req.DueDate != nil && (todo.DueDate == nil || !req.DueDate.Equal(*todo.DueDate)) {
		changes = append(changes, fmt.Sprintf("Due date set to %s", req.DueDate.Format("2006-01-02")))
		todo.DueDate = req.DueDate
	}
	if req.Resolution != nil && *req.Resolution != todo.Resolution {
		changes = append(changes, "Resolution updated")
		todo.Resolution = *req.Resolution
	}
	if req.Status != nil && *req.Status != todo.Status {
		changes = append(changes, fmt.Sprintf("Status changed from %s to %s", todo.Status, *req.Status))
		todo.Status = *req.Status

		switch todo.Status {
		case project.StatusCompleted:
			now := time.Now().UTC()
			todo.ResolvedAt = &now
			if todo.Resolution == "" {
				todo.Resolution = "Completed"
			}
		case project.StatusCancelled:
			now := time.Now().UTC()
			todo.ResolvedAt = &now
		case project.StatusOpen, project.StatusInProgress:
			todo.ResolvedAt = nil
		}
	}

	return todo, changes
}

// Complete marks a todo completed with an optional resolution text.
func (s *TaskService) Complete(ctx context.Context, id, resolution string) (project.Todo, error) {
	status := project.StatusCompleted
	req := UpdateTodoRequest{Status: &status}
	if resolution != "" {
		req.Resolution = &resolution
	}
	return s.Update(ctx, id, req)
}

// Cancel marks a todo cancelled with an optional reason.
func (s *TaskService) Cancel(ctx context.Context, id, reason string) (project.Todo, error) {
	status := project.StatusCancelled
	req := UpdateTodoRequest{Status: &status}
	if reason != "" {
		req.Resolution = &reason
	}
	return s.Update(ctx, id, req)
}

// Delete soft-deletes a todo: only the creator or an admin may delete,
// and the record stays in its shard as cancelled. The cache entry is
// evicted.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.perms.CanDelete(ctx, s.actor, current); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}

	updated, changes := applyUpdate(current, UpdateTodoRequest{
		Status:     statusPtr(project.StatusCancelled),
		Resolution: strPtr("Deleted by user"),
	})

	if len(changes) > 0 {
		msg := NewCommitMessage("task: delete todo '%s'", updated.Title).
			Line("Todo soft-deleted (cancelled).").
			Trailer("Updated-By", s.actor).
			Trailer("Todo-ID", updated.ID).
			Trailer("Context", updated.Context.String())

		if err := s.mutateShard(ctx, shardForTodoContext(updated.Context), msg, replaceTodo(updated)); err != nil {
			return fmt.Errorf("delete todo: %w", err)
		}
	}

	s.cache.Delete(id)
	s.bus.PublishTodoCancelled(eventbus.TodoCancelledPayload{Todo: updated})

	return nil
}

// Assign sets a todo's assignee, then best-effort syncs the assignment
// to the kanban collaborator. Kanban failure is logged, never surfaced.
func (s *TaskService) Assign(ctx context.Context, id, assignee string, kanban Kanban) (project.Todo, error) {
	todo, err := s.Update(ctx, id, UpdateTodoRequest{AssignedTo: &assignee})
	if err != nil {
		return project.Todo{}, err
	}

	if kanban != nil {
		if err := kanban.SyncTodoAssignment(ctx, id, assignee); err != nil {
			s.log.Warn().Err(err).Str("todo_id", id).Msg("kanban assignment sync failed")
		}
	}

	return todo, nil
}

// Get returns a todo by id, from the cache when possible. A miss scans
// the project shard and then every chapter shard, caching the first
// match.
func (s *TaskService) Get(ctx context.Context, id string) (project.Todo, error) {
	if todo, ok := s.cache.Get(id); ok {
		return todo, nil
	}

	todo, err := s.findTodo(ctx, id)
	if err != nil {
		return project.Todo{}, err
	}

	s.cache.Set(id, todo)
	return todo, nil
}

// findTodo scans project todos, then each chapter's todos and unit
// todos in slug order. First match wins.
func (s *TaskService) findTodo(ctx context.Context, id string) (project.Todo, error) {
	data, err := s.store.LoadProject(ctx)
	if err != nil {
		return project.Todo{}, err
	}
	for _, t := range data.Todos {
		if t.ID == id {
			return t, nil
		}
	}

	slugs, err := s.store.ChapterSlugs(ctx)
	if err != nil {
		return project.Todo{}, err
	}

	for _, slug := range slugs {
		ch, err := s.store.LoadChapter(ctx, slug)
		if err != nil {
			s.log.Warn().Err(err).Str("chapter", slug).Msg("skipping unreadable chapter during todo lookup")
			continue
		}
		for _, t := range ch.Todos {
			if t.ID == id {
				return t, nil
			}
		}
		for _, unit := range ch.Units {
			for _, t := range unit.Todos {
				if t.ID == id {
					return t, nil
				}
			}
		}
	}

	return project.Todo{}, fmt.Errorf("%w: %s", project.ErrNotFound, id)
}

// List returns every todo matching the filter: project-level todos
// first, then each chapter's todos and unit-level todos in slug order.
func (s *TaskService) List(ctx context.Context, filter project.TodoFilter) ([]project.Todo, error) {
	all, err := s.collectTodos(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(all), nil
}

// ListForUser returns todos assigned to a user.
func (s *TaskService) ListForUser(ctx context.Context, userID string) ([]project.Todo, error) {
	return s.List(ctx, project.TodoFilter{AssignedTo: &userID})
}

// ListCreatedBy returns todos created by a user.
func (s *TaskService) ListCreatedBy(ctx context.Context, userID string) ([]project.Todo, error) {
	return s.List(ctx, project.TodoFilter{CreatedBy: &userID})
}

// ListOverdue returns open todos past their due date.
func (s *TaskService) ListOverdue(ctx context.Context) ([]project.Todo, error) {
	now := time.Now().UTC()
	status := project.StatusOpen
	return s.List(ctx, project.TodoFilter{Status: &status, DueBefore: &now})
}

func (s *TaskService) collectTodos(ctx context.Context) ([]project.Todo, error) {
	data, err := s.store.LoadProject(ctx)
	if err != nil {
		return nil, err
	}
	all := append([]project.Todo{}, data.Todos...)

	slugs, err := s.store.ChapterSlugs(ctx)
	if err != nil {
		return nil, err
	}

	for _, slug := range slugs {
		ch, err := s.store.LoadChapter(ctx, slug)
		if err != nil {
			s.log.Warn().Err(err).Str("chapter", slug).Msg("skipping unreadable chapter during todo listing")
			continue
		}
		all = append(all, ch.Todos...)
		for _, unit := range ch.Units {
			all = append(all, unit.Todos...)
		}
	}

	return all, nil
}

// shard addresses one TOML file. An empty slug means the project shard.
type shard struct {
	slug string
}

func (sh shard) name() string {
	if sh.slug == "" {
		return "project"
	}
	return sh.slug
}

// shardForTodoContext maps a todo context onto its owning shard.
// Chapter-scoped todos without a resolvable chapter land in the default
// chapter; unit-scoped todos follow the unit id's chapter prefix.
func shardForTodoContext(c project.TodoContext) shard {
	switch c.Type {
	case project.ContextProject:
		return shard{}
	case project.ContextChapter:
		return shard{slug: project.DefaultChapter}
	default:
		return shard{slug: project.ChapterForUnit(c.UnitID)}
	}
}

// appendTodo adds a todo to its shard. Unit-scoped todos attach to the
// unit itself; a missing unit aborts with ErrUnitNotFound before
// anything is written.
func appendTodo(todo project.Todo) shardMutation {
	return shardMutation{
		project: func(data *project.ProjectData) error {
			data.Todos = append(data.Todos, todo)
			data.Project.UpdatedAt = time.Now().UTC()
			return nil
		},
		chapter: func(data *project.ChapterData) error {
			switch todo.Context.Type {
			case project.ContextParagraph, project.ContextTranslation:
				unit := data.Unit(todo.Context.UnitID)
				if unit == nil {
					return fmt.Errorf("%w: %s", project.ErrUnitNotFound, todo.Context.UnitID)
				}
				unit.Todos = append(unit.Todos, todo)
			default:
				data.Todos = append(data.Todos, todo)
			}
			data.Chapter.UpdatedAt = time.Now().UTC()
			return nil
		},
	}
}

// replaceTodo swaps a stored todo for its updated version, wherever in
// the shard it lives.
func replaceTodo(todo project.Todo) shardMutation {
	replaceIn := func(todos []project.Todo) bool {
		for i := range todos {
			if todos[i].ID == todo.ID {
				todos[i] = todo
				return true
			}
		}
		return false
	}

	return shardMutation{
		project: func(data *project.ProjectData) error {
			if !replaceIn(data.Todos) {
				return fmt.Errorf("%w: %s", project.ErrNotFound, todo.ID)
			}
			data.Project.UpdatedAt = time.Now().UTC()
			return nil
		},
		chapter: func(data *project.ChapterData) error {
			if replaceIn(data.Todos) {
				data.Chapter.UpdatedAt = time.Now().UTC()
				return nil
			}
			for i := range data.Units {
				if replaceIn(data.Units[i].Todos) {
					data.Chapter.UpdatedAt = time.Now().UTC()
					return nil
				}
			}
			return fmt.Errorf("%w: %s", project.ErrNotFound, todo.ID)
		},
	}
}

// shardMutation carries one mutation in both shard shapes; mutateShard
// picks the right one for the addressed shard.
type shardMutation struct {
	project func(*project.ProjectData) error
	chapter func(*project.ChapterData) error
}

// mutateShard runs one locked load-mutate-save against the addressed
// shard and records the result as a git commit. On commit failure the
// pre-mutation shard is written back and the error wraps
// git.ErrCommitFailed; the mutation is then considered not to have
// happened.
func (s *TaskService) mutateShard(ctx context.Context, sh shard, msg *CommitMessage, mut shardMutation) error {
	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if sh.slug == "" {
		before, err := s.store.LoadProject(ctx)
		if err != nil {
			return err
		}
		if err := s.store.UpdateProject(ctx, mut.project); err != nil {
			return err
		}
		if err := s.commit(ctx, sh, msg); err != nil {
			if rbErr := s.store.SaveProject(ctx, before); rbErr != nil {
				s.log.Error().Err(rbErr).Msg("rollback of project shard failed; shard and git history disagree")
			}
			return err
		}
		return nil
	}

	before, err := s.store.LoadChapter(ctx, sh.slug)
	if err != nil {
		return err
	}
	if err := s.store.UpdateChapter(ctx, sh.slug, mut.chapter); err != nil {
		return err
	}
	if err := s.commit(ctx, sh, msg); err != nil {
		if rbErr := s.store.SaveChapter(ctx, sh.slug, before); rbErr != nil {
			s.log.Error().Err(rbErr).Str("chapter", sh.slug).Msg("rollback of chapter shard failed; shard and git history disagree")
		}
		return err
	}
	return nil
}

// commit records the staged shard change. With commits disabled the
// step is skipped entirely. On success commit.created fires and the
// configured post hook runs best-effort.
func (s *TaskService) commit(ctx context.Context, sh shard, msg *CommitMessage) error {
	if s.cfg.Commit.Disabled {
		return nil
	}

	// Diff stats describe the pending shard change, so read them before
	// the commit folds it into HEAD. Best-effort: a failure only costs
	// the log detail.
	additions, deletions, statsErr := s.git.DiffStats(ctx, s.cfg.RepoPath)

	sha, err := s.git.CommitAll(ctx, s.cfg.RepoPath, msg.String())
	if err != nil {
		return err
	}

	evt := s.log.Info().Str("shard", sh.name()).Str("sha", sha)
	if branch, branchErr := s.git.Branch(ctx, s.cfg.RepoPath); branchErr == nil && branch != "" {
		evt = evt.Str("branch", branch)
	}
	if statsErr == nil {
		evt = evt.Int("additions", additions).Int("deletions", deletions)
	}
	evt.Msg("mutation committed")

	s.bus.PublishCommitCreated(eventbus.CommitCreatedPayload{Title: msg.Summary(), Message: msg.String()})

	if s.cfg.Commit.PostHook != "" {
		s.runPostHook(ctx, sh, msg.Summary(), sha)
	}

	return nil
}

// runPostHook renders and runs the configured post-commit hook.
// Failures are logged and never fail the operation.
func (s *TaskService) runPostHook(ctx context.Context, sh shard, summary, sha string) {
	cmdline, err := tmpl.Render(s.cfg.Commit.PostHook, config.HookTemplateData{
		Message: summary,
		SHA:     sha,
		Shard:   sh.name(),
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("post hook template failed to render")
		return
	}

	if err := executil.RunSh(ctx, s.cfg.RepoPath, cmdline); err != nil {
		s.log.Warn().Err(err).Str("hook", cmdline).Msg("post hook failed")
	}
}

// EvictShard drops every cached todo belonging to the named shard
// ("project" or a chapter slug). The shard watcher calls this when a
// file changes outside the service's own writes.
func (s *TaskService) EvictShard(name string) int {
	var evicted int
	for _, id := range s.cache.Keys() {
		todo, ok := s.cache.Get(id)
		if !ok {
			continue
		}
		if shardForTodoContext(todo.Context).name() == name {
			s.cache.Delete(id)
			evicted++
		}
	}
	return evicted
}

func statusPtr(s project.TodoStatus) *project.TodoStatus { return &s }
func strPtr(s string) *string                            { return &s }
