package project

import "time"

// TodoFilter selects todos by matching every set field. Nil fields
// match everything, so the zero filter selects all todos.
type TodoFilter struct {
	Status       *TodoStatus
	Priority     *Priority
	TodoType     *TodoType
	ContextType  *ContextType
	AssignedTo   *string
	CreatedBy    *string
	DueBefore    *time.Time
	CreatedAfter *time.Time
}

// Matches reports whether the todo passes every set predicate.
// DueBefore excludes todos without a due date, CreatedAfter is a strict
// comparison.
func (f TodoFilter) Matches(t Todo) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.TodoType != nil && t.TodoType != *f.TodoType {
		return false
	}
	if f.ContextType != nil && t.Context.Type != *f.ContextType {
		return false
	}
	if f.AssignedTo != nil && t.AssignedTo != *f.AssignedTo {
		return false
	}
	if f.CreatedBy != nil && t.CreatedBy != *f.CreatedBy {
		return false
	}
	if f.DueBefore != nil {
		if t.DueDate == nil || !t.DueDate.Before(*f.DueBefore) {
			return false
		}
	}
	if f.CreatedAfter != nil && !t.CreatedAt.After(*f.CreatedAfter) {
		return false
	}
	return true
}

// Apply returns the todos matching the filter, preserving input order.
func (f TodoFilter) Apply(todos []Todo) []Todo {
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}
