package engine

import (
	"slices"
)

// BottomTarget as a reorder target moves the source to the bottom of the root list.
const BottomTarget = "__BOTTOM__"

// Reorder moves source next to target. An expanded group target receives
// source as its last child; any other target gets source inserted right
// after it in target's list. Moving a shape into its own subtree is a no-op.
func (s *Scene) Reorder(sourceID, targetID string, expanded func(id string) bool) bool {
	if !s.Has(sourceID) || sourceID == targetID {
		return false
	}

	if targetID == BottomTarget {
		s.detach(sourceID)
		s.insert(sourceID, "", 0)
		return true
	}
	if !s.Has(targetID) {
		return false
	}
	if slices.Contains(s.Ancestors(targetID), sourceID) {
		return false
	}

	if _, isGroup := s.Get(targetID).(*Group); isGroup && expanded != nil && expanded(targetID) {
		s.detach(sourceID)
		s.insert(sourceID, targetID, -1)
		return true
	}

	s.detach(sourceID)
	parentID := s.parent[targetID]
	idx := slices.Index(*s.listOf(parentID), targetID)
	s.insert(sourceID, parentID, idx+1)
	return true
}

// MoveToFront moves a root shape to the top of the z-order.
func (s *Scene) MoveToFront(id string) bool {
	if !s.IsRoot(id) {
		return false
	}
	s.detach(id)
	s.insert(id, "", -1)
	return true
}

// MoveToBack moves a root shape to the bottom of the z-order.
func (s *Scene) MoveToBack(id string) bool {
	if !s.IsRoot(id) {
		return false
	}
	s.detach(id)
	s.insert(id, "", 0)
	return true
}

// MoveForward swaps a shape with the sibling above it.
func (s *Scene) MoveForward(id string) bool {
	return s.swap(id, 1)
}

// MoveBackward swaps a shape with the sibling below it.
func (s *Scene) MoveBackward(id string) bool {
	return s.swap(id, -1)
}

func (s *Scene) swap(id string, step int) bool {
	if !s.Has(id) {
		return false
	}
	list := *s.siblings(id)
	i := slices.Index(list, id)
	j := i + step
	if i < 0 || j < 0 || j >= len(list) {
		return false
	}
	list[i], list[j] = list[j], list[i]
	return true
}
