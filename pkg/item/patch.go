package item

import (
	"fmt"
	"strings"

	"tableflip.dev/stow/pkg/assoc"
)

// Patch is the partial field set submitted by a save. Nil fields are left
// untouched by the server.
type Patch struct {
	Name         *string     `json:"name,omitempty"`
	Deleted      *bool       `json:"is_deleted,omitempty"`
	Pinned       *bool       `json:"is_pinned,omitempty"`
	Associations *assoc.Mask `json:"associations,omitempty"`
}

// String returns a pointer to s.
func String(s string) *string { return &s }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Deleted == nil && p.Pinned == nil && p.Associations == nil
}

// Describe renders the patch for logs.
func (p Patch) Describe() string {
	var parts []string
	if p.Name != nil {
		parts = append(parts, fmt.Sprintf("name:%q", *p.Name))
	}
	if p.Deleted != nil {
		parts = append(parts, fmt.Sprintf("deleted:%t", *p.Deleted))
	}
	if p.Pinned != nil {
		parts = append(parts, fmt.Sprintf("pinned:%t", *p.Pinned))
	}
	if p.Associations != nil {
		parts = append(parts, fmt.Sprintf("associations:%q", p.Associations.String()))
	}
	return strings.Join(parts, " ")
}

// Apply returns r with the patch fields written over it.
func (p Patch) Apply(r Record) Record {
	if p.Name != nil {
		r.Name = *p.Name
		r.Mark(FieldName)
	}
	if p.Deleted != nil {
		r.Deleted = *p.Deleted
		r.Mark(FieldDeleted)
	}
	if p.Pinned != nil {
		r.Pinned = *p.Pinned
		r.Mark(FieldPinned)
	}
	if p.Associations != nil {
		r.Associations = *p.Associations
		r.Mark(FieldAssociations)
	}
	return r
}
