package task

import (
	"slices"

	"github.com/finlite/taskfocus/internal/models"
	"github.com/finlite/taskfocus/section"
)

// SectionGroup is one section heading plus the top-level nodes shown
// under it. Sections with no matching nodes are still emitted so
// surfaces render a stable layout.
type SectionGroup struct {
	Section models.Section
	Nodes   []Node
}

// ParentGroups splits the forest for the parent-based view.
type ParentGroups struct {
	Parents    []Node
	Standalone []Node
}

func matches(n Node, f models.Filter) bool {
	switch f {
	case models.FilterParentOnly:
		return n.Kind == KindParent
	case models.FilterStandalone:
		return n.Kind == KindStandalone
	default:
		return true
	}
}

func sortNodes(nodes []Node) {
	slices.SortStableFunc(nodes, func(a, b Node) int {
		return section.CompareDisplay(a.Task, b.Task)
	})
}

// GroupBySection returns the filtered forest grouped by display
// section. Within a section, incomplete nodes come first, then position
// ascending, then newest creation first.
func (r *Repository) GroupBySection(f models.Filter) []SectionGroup {
	r.mu.Lock()
	nodes := slices.Clone(r.topLevel)
	now := r.now()
	r.mu.Unlock()

	groups := make([]SectionGroup, len(section.Order))
	for i, s := range section.Order {
		groups[i].Section = s
	}

	index := make(map[models.Section]int, len(section.Order))
	for i, s := range section.Order {
		index[s] = i
	}

	for _, n := range nodes {
		if !matches(n, f) {
			continue
		}

		i := index[section.Classify(n.Task, now)]
		groups[i].Nodes = append(groups[i].Nodes, n)
	}

	for i := range groups {
		sortNodes(groups[i].Nodes)
	}

	return groups
}

// GroupByParent returns the filtered forest split into parents and
// standalone tasks, each internally in display order.
func (r *Repository) GroupByParent(f models.Filter) ParentGroups {
	r.mu.Lock()
	nodes := slices.Clone(r.topLevel)
	r.mu.Unlock()

	var out ParentGroups

	for _, n := range nodes {
		if !matches(n, f) {
			continue
		}

		if n.Kind == KindParent {
			out.Parents = append(out.Parents, n)
		} else {
			out.Standalone = append(out.Standalone, n)
		}
	}

	sortNodes(out.Parents)
	sortNodes(out.Standalone)

	return out
}
