package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefixes of generated shape IDs. IDs read from stored boards may have
// any form and are kept as they are.
const (
	PrefixShape = "shape"
	PrefixGroup = "grp"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewShapeID() string { return New(PrefixShape) }
func NewGroupID() string { return New(PrefixGroup) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
