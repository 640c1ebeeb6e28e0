package engine

import "slices"

// Selection is an ordered set of shape IDs.
type Selection struct {
	ids []string
}

func (sel *Selection) IDs() []string { return slices.Clone(sel.ids) }
func (sel *Selection) Len() int      { return len(sel.ids) }

func (sel *Selection) Contains(id string) bool {
	return slices.Contains(sel.ids, id)
}

// Set replaces the selection, dropping duplicates and empty IDs.
func (sel *Selection) Set(ids []string) {
	sel.ids = nil
	for _, id := range ids {
		sel.Add(id)
	}
}

func (sel *Selection) Add(id string) {
	if id != "" && !sel.Contains(id) {
		sel.ids = append(sel.ids, id)
	}
}

func (sel *Selection) Remove(id string) {
	sel.ids = slices.DeleteFunc(sel.ids, func(s string) bool { return s == id })
}

// Toggle adds id if absent and removes it otherwise.
func (sel *Selection) Toggle(id string) {
	if sel.Contains(id) {
		sel.Remove(id)
		return
	}
	sel.Add(id)
}

func (sel *Selection) Clear() {
	sel.ids = nil
}

// Single returns the only selected ID, or "" unless exactly one is selected.
func (sel *Selection) Single() string {
	if len(sel.ids) != 1 {
		return ""
	}
	return sel.ids[0]
}

// Prune drops IDs the scene no longer holds.
func (sel *Selection) Prune(s *Scene) {
	sel.ids = slices.DeleteFunc(sel.ids, func(id string) bool { return !s.Has(id) })
}
