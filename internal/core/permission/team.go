package permission

import (
	"context"
	"fmt"
	"sort"

	"github.com/tradocflow/tradocflow/internal/core/project"
)

// TeamResolver derives membership from the project shard's team table
// plus a configured admin list. Users not named anywhere resolve to
// translators with no language assignments.
type TeamResolver struct {
	store  project.Store
	admins []string
}

var _ Resolver = (*TeamResolver)(nil)

// NewTeamResolver creates a resolver backed by the project shard.
func NewTeamResolver(store project.Store, admins []string) *TeamResolver {
	return &TeamResolver{store: store, admins: admins}
}

// Resolve looks the user up in the admin list, then the project team
// table. Admin wins over editor, editor over translator and reviewer.
func (r *TeamResolver) Resolve(ctx context.Context, userID string) (Membership, error) {
	for _, admin := range r.admins {
		if admin == userID {
			return Membership{Role: RoleAdmin}, nil
		}
	}

	data, err := r.store.LoadProject(ctx)
	if err != nil {
		return Membership{}, fmt.Errorf("load project team: %w", err)
	}
	team := data.Project.Team

	if team.Editor == userID {
		return Membership{Role: RoleEditor}, nil
	}

	if languages := assignedLanguages(team.Translators, userID); len(languages) > 0 {
		return Membership{Role: RoleTranslator, Languages: languages}, nil
	}
	if languages := assignedLanguages(team.Reviewers, userID); len(languages) > 0 {
		return Membership{Role: RoleReviewer, Languages: languages}, nil
	}

	return Membership{Role: RoleTranslator}, nil
}

// assignedLanguages collects the languages mapping to userID, sorted
// for determinism.
func assignedLanguages(byLanguage map[string]string, userID string) []string {
	var languages []string
	for language, id := range byLanguage {
		if id == userID {
			languages = append(languages, language)
		}
	}
	sort.Strings(languages)
	return languages
}
