package todo

import (
	"sort"

	"github.com/existflow/irontodo/internal/model"
)

// View returns the tasks passing filter whose title or description contains query
// (case-insensitive, ignored when blank), newest first. The result is a copy.
func (m *Manager) View(filter model.Filter, query string) []model.Todo {
	m.mu.Lock()
	out := make([]model.Todo, 0, len(m.todos))
	for _, t := range m.todos {
		if filter.Allows(t) && t.Matches(query) {
			out = append(out, t)
		}
	}
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}
