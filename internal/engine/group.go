package engine

import (
	"slices"
)

// GroupShapes wraps the root-level shapes among ids into a new group with
// the given ID. Members keep their relative order and the group takes the
// z-position of the topmost member. Fewer than two members is a no-op.
func (s *Scene) GroupShapes(groupID string, ids []string) bool {
	var members []string
	top := -1
	for i, id := range s.roots {
		if slices.Contains(ids, id) {
			members = append(members, id)
			top = i
		}
	}
	if len(members) < 2 || s.Has(groupID) {
		return false
	}

	for _, id := range members {
		s.detach(id)
	}
	g := NewGroup(groupID)
	s.register(g)
	s.insert(groupID, "", top-(len(members)-1))
	for _, id := range members {
		s.insert(id, groupID, -1)
	}
	if b, ok := s.Bounds(g); ok {
		g.X, g.Y = b.X, b.Y
	}
	return true
}

// Ungroup dissolves each group among ids, splicing its children into the
// owning list at the group's former index. Nested groups are left intact.
// It returns the spliced children in order.
func (s *Scene) Ungroup(ids []string) []string {
	var released []string
	for _, id := range ids {
		g, ok := s.Get(id).(*Group)
		if !ok {
			continue
		}
		parentID, idx := s.detach(id)
		children := slices.Clone(g.Children)
		g.Children = nil
		for i, cid := range children {
			delete(s.parent, cid)
			s.insert(cid, parentID, idx+i)
		}
		delete(s.shapes, id)
		released = append(released, children...)
	}
	return released
}
