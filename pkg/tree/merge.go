package tree

import (
	"encoding/json"

	"tableflip.dev/stow/pkg/item"
)

// MergeData overlays the fields present on incoming onto current, incoming
// winning. Nested children on incoming are discarded: a node's children are
// owned by the forest, never by a single record payload.
func MergeData(current, incoming item.Record) item.Record {
	incoming.Children = nil
	out := current
	out.Children = nil
	if incoming.Has(item.FieldID) && incoming.ID != "" {
		out.ID = incoming.ID
		out.Mark(item.FieldID)
	}
	if incoming.Has(item.FieldName) {
		out.Name = incoming.Name
		out.Mark(item.FieldName)
	}
	if incoming.Has(item.FieldSlug) {
		out.Slug = incoming.Slug
		out.Mark(item.FieldSlug)
	}
	if incoming.Has(item.FieldAssociations) {
		out.Associations = incoming.Associations
		out.Mark(item.FieldAssociations)
	}
	if incoming.Has(item.FieldDeleted) {
		out.Deleted = incoming.Deleted
		out.Mark(item.FieldDeleted)
	}
	if incoming.Has(item.FieldPinned) {
		out.Pinned = incoming.Pinned
		out.Mark(item.FieldPinned)
	}
	if incoming.Containments != nil {
		out.Containments = make([]string, len(incoming.Containments))
		copy(out.Containments, incoming.Containments)
	}
	if len(incoming.Extra) > 0 {
		merged := cloneExtra(current.Extra)
		for k, v := range incoming.Extra {
			merged[k] = v
		}
		out.Extra = merged
	}
	return out
}

// Merge returns a node update that folds incoming into the node's data and
// leaves every other field, children included, alone.
func Merge(incoming item.Record) func(Node) Node {
	return func(n Node) Node {
		n.Data = MergeData(n.Data, incoming)
		return n
	}
}

func cloneExtra(in map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
