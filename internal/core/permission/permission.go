// Package permission gates task operations by project role. Roles come
// from a Resolver so the engine never guesses identity from user ids.
package permission

import (
	"context"
	"errors"
	"fmt"

	"github.com/tradocflow/tradocflow/internal/core/project"
)

// ErrDenied is returned when a user lacks permission for an operation.
var ErrDenied = errors.New("permission denied")

// Role is a user's standing within a project.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleEditor     Role = "editor"
	RoleTranslator Role = "translator"
	RoleReviewer   Role = "reviewer"
)

// Membership is one user's resolved role plus the languages they are
// assigned to. Languages matter only for translators and reviewers.
type Membership struct {
	Role      Role
	Languages []string
}

// AssignedTo reports whether the membership covers a language.
func (m Membership) AssignedTo(language string) bool {
	for _, l := range m.Languages {
		if l == language {
			return true
		}
	}
	return false
}

// Resolver resolves a user id to their project membership.
type Resolver interface {
	Resolve(ctx context.Context, userID string) (Membership, error)
}

// Engine evaluates task permissions against resolved memberships.
type Engine struct {
	resolver Resolver
}

// NewEngine creates a permission engine backed by the given resolver.
func NewEngine(resolver Resolver) *Engine {
	return &Engine{resolver: resolver}
}

// CanCreate reports whether a user may create a todo of the given type
// in the given context. Admins and editors may create anything;
// translators only translation todos for a language they are assigned
// to; reviewers only review todos.
func (e *Engine) CanCreate(ctx context.Context, userID string, todoType project.TodoType, todoCtx project.TodoContext) error {
	m, err := e.resolver.Resolve(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve role: %w", err)
	}

	switch m.Role {
	case RoleAdmin, RoleEditor:
		return nil

	case RoleTranslator:
		if todoCtx.Type == project.ContextTranslation && todoType == project.TypeTranslation {
			if m.AssignedTo(todoCtx.Language) {
				return nil
			}
			return fmt.Errorf("%w: not assigned to language %q", ErrDenied, todoCtx.Language)
		}
		return fmt.Errorf("%w: translators may only create translation todos for their language", ErrDenied)

	case RoleReviewer:
		if todoType == project.TypeReview {
			return nil
		}
		return fmt.Errorf("%w: reviewers may only create review todos", ErrDenied)
	}

	return fmt.Errorf("%w: unknown role %q", ErrDenied, m.Role)
}

// CanUpdate reports whether a user may update the todo. Admins may
// update anything, editors project- and chapter-scoped todos, everyone
// else only todos they created or are assigned to.
func (e *Engine) CanUpdate(ctx context.Context, userID string, todo project.Todo) error {
	m, err := e.resolver.Resolve(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve role: %w", err)
	}

	switch m.Role {
	case RoleAdmin:
		return nil

	case RoleEditor:
		if todo.Context.Type == project.ContextProject || todo.Context.Type == project.ContextChapter {
			return nil
		}
		return fmt.Errorf("%w: editors may not update unit-scoped todos", ErrDenied)

	case RoleTranslator, RoleReviewer:
		if todo.CreatedBy == userID || todo.AssignedTo == userID {
			return nil
		}
		return fmt.Errorf("%w: may only update todos you created or are assigned to", ErrDenied)
	}

	return fmt.Errorf("%w: unknown role %q", ErrDenied, m.Role)
}

// CanDelete reports whether a user may delete the todo. Only the
// creator and admins may delete.
func (e *Engine) CanDelete(ctx context.Context, userID string, todo project.Todo) error {
	if todo.CreatedBy == userID {
		return nil
	}

	m, err := e.resolver.Resolve(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve role: %w", err)
	}

	if m.Role == RoleAdmin {
		return nil
	}
	return fmt.Errorf("%w: only the creator or an admin may delete a todo", ErrDenied)
}
