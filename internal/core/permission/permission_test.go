package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradocflow/tradocflow/internal/core/project"
)

// staticResolver serves fixed memberships for tests.
type staticResolver map[string]Membership

func (r staticResolver) Resolve(_ context.Context, userID string) (Membership, error) {
	m, ok := r[userID]
	if !ok {
		return Membership{Role: RoleTranslator}, nil
	}
	return m, nil
}

func testEngine() *Engine {
	return NewEngine(staticResolver{
		"alice": {Role: RoleAdmin},
		"erik":  {Role: RoleEditor},
		"tina":  {Role: RoleTranslator, Languages: []string{"de", "nl"}},
		"rita":  {Role: RoleReviewer, Languages: []string{"fr"}},
	})
}

func TestEngine_CanCreate(t *testing.T) {
	e := testEngine()
	ctx := context.Background()

	tests := []struct {
		name     string
		user     string
		todoType project.TodoType
		todoCtx  project.TodoContext
		allowed  bool
	}{
		{name: "admin any", user: "alice", todoType: project.TypeResearch, todoCtx: project.ProjectContext(), allowed: true},
		{name: "editor any", user: "erik", todoType: project.TypeScreenshot, todoCtx: project.ChapterContext(), allowed: true},
		{name: "translator assigned language", user: "tina", todoType: project.TypeTranslation, todoCtx: project.TranslationContext("intro_p001", "de"), allowed: true},
		{name: "translator other language", user: "tina", todoType: project.TypeTranslation, todoCtx: project.TranslationContext("intro_p001", "fr"), allowed: false},
		{name: "translator wrong type", user: "tina", todoType: project.TypeReview, todoCtx: project.TranslationContext("intro_p001", "de"), allowed: false},
		{name: "translator wrong context", user: "tina", todoType: project.TypeTranslation, todoCtx: project.ChapterContext(), allowed: false},
		{name: "reviewer review todo", user: "rita", todoType: project.TypeReview, todoCtx: project.ProjectContext(), allowed: true},
		{name: "reviewer non-review todo", user: "rita", todoType: project.TypeTranslation, todoCtx: project.TranslationContext("intro_p001", "fr"), allowed: false},
		{name: "unknown user denied", user: "mallory", todoType: project.TypeTranslation, todoCtx: project.TranslationContext("intro_p001", "de"), allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.CanCreate(ctx, tt.user, tt.todoType, tt.todoCtx)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrDenied)
			}
		})
	}
}

func TestEngine_CanUpdate(t *testing.T) {
	e := testEngine()
	ctx := context.Background()

	projectTodo := project.Todo{ID: "t1", CreatedBy: "erik", Context: project.ProjectContext()}
	unitTodo := project.Todo{ID: "t2", CreatedBy: "erik", AssignedTo: "tina", Context: project.ParagraphContext("intro_p001")}

	tests := []struct {
		name    string
		user    string
		todo    project.Todo
		allowed bool
	}{
		{name: "admin any", user: "alice", todo: unitTodo, allowed: true},
		{name: "editor project scope", user: "erik", todo: projectTodo, allowed: true},
		{name: "editor unit scope denied", user: "erik", todo: project.Todo{ID: "t3", CreatedBy: "alice", Context: project.ParagraphContext("intro_p001")}, allowed: false},
		{name: "translator assignee", user: "tina", todo: unitTodo, allowed: true},
		{name: "translator creator", user: "tina", todo: project.Todo{ID: "t4", CreatedBy: "tina", Context: project.ProjectContext()}, allowed: true},
		{name: "translator unrelated", user: "tina", todo: projectTodo, allowed: false},
		{name: "reviewer unrelated", user: "rita", todo: unitTodo, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.CanUpdate(ctx, tt.user, tt.todo)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrDenied)
			}
		})
	}
}

func TestEngine_CanDelete(t *testing.T) {
	e := testEngine()
	ctx := context.Background()

	todo := project.Todo{ID: "t1", CreatedBy: "tina", AssignedTo: "rita", Context: project.ProjectContext()}

	assert.NoError(t, e.CanDelete(ctx, "tina", todo), "creator may delete")
	assert.NoError(t, e.CanDelete(ctx, "alice", todo), "admin may delete")
	assert.ErrorIs(t, e.CanDelete(ctx, "rita", todo), ErrDenied, "assignee may not delete")
	assert.ErrorIs(t, e.CanDelete(ctx, "erik", todo), ErrDenied, "editor may not delete")
}

func TestTeamResolver_Resolve(t *testing.T) {
	store := &fakeStore{data: teamProject()}
	r := NewTeamResolver(store, []string{"alice"})
	ctx := context.Background()

	tests := []struct {
		name string
		user string
		want Membership
	}{
		{name: "config admin", user: "alice", want: Membership{Role: RoleAdmin}},
		{name: "shard editor", user: "erik", want: Membership{Role: RoleEditor}},
		{name: "translator languages sorted", user: "tina", want: Membership{Role: RoleTranslator, Languages: []string{"de", "nl"}}},
		{name: "reviewer", user: "rita", want: Membership{Role: RoleReviewer, Languages: []string{"fr"}}},
		{name: "unknown user", user: "mallory", want: Membership{Role: RoleTranslator}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(ctx, tt.user)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func teamProject() project.ProjectData {
	data := project.NewProjectData("proj-1", "Manual", "", "en", []string{"de", "fr", "nl"}, "erik")
	data.Project.Team.Translators = map[string]string{"de": "tina", "nl": "tina", "fr": "frank"}
	data.Project.Team.Reviewers = map[string]string{"fr": "rita"}
	return data
}

// fakeStore serves a fixed project shard.
type fakeStore struct {
	data project.ProjectData
}

func (s *fakeStore) LoadProject(_ context.Context) (project.ProjectData, error) {
	return s.data, nil
}

func (s *fakeStore) SaveProject(_ context.Context, _ project.ProjectData) error { return nil }

func (s *fakeStore) UpdateProject(_ context.Context, _ func(*project.ProjectData) error) error {
	return nil
}

func (s *fakeStore) LoadChapter(_ context.Context, slug string) (project.ChapterData, error) {
	return project.ChapterData{}, nil
}

func (s *fakeStore) SaveChapter(_ context.Context, _ string, _ project.ChapterData) error {
	return nil
}

func (s *fakeStore) UpdateChapter(_ context.Context, _ string, _ func(*project.ChapterData) error) error {
	return nil
}

func (s *fakeStore) ChapterSlugs(_ context.Context) ([]string, error) { return nil, nil }
