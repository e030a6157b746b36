// Package item holds the inventory item record exchanged with the remote
// service.
package item

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"tableflip.dev/stow/pkg/assoc"
)

// Field names a known record field for presence checks.
type Field uint8

const (
	FieldID Field = 1 << iota
	FieldName
	FieldSlug
	FieldAssociations
	FieldDeleted
	FieldPinned
)

const allFields = FieldID | FieldName | FieldSlug | FieldAssociations | FieldDeleted | FieldPinned

// Record is a single item as served by the inventory service.
//
// Records decoded from JSON remember which known fields were present in the
// payload. Records built in Go treat every known field as present.
// Containments is nil when the payload did not carry the list at all.
// Children holds nested records some endpoints embed; the tree never keeps
// them on a node.
type Record struct {
	ID           string
	Name         string
	Slug         string
	Associations assoc.Mask
	Deleted      bool
	Pinned       bool
	Containments []string
	Children     []Record

	// Extra keeps fields this client does not interpret so they survive a
	// merge and re-encode untouched.
	Extra map[string]json.RawMessage

	present Field
	decoded bool
}

// Has reports whether f was present in the payload the record came from.
func (r Record) Has(f Field) bool {
	if !r.decoded {
		return true
	}
	return r.present&f != 0
}

// Mark records f as present. Merge uses it to carry presence forward.
func (r *Record) Mark(f Field) {
	if r.decoded {
		r.present |= f
	}
}

// Decoded reports whether the record came from a JSON payload.
func (r Record) Decoded() bool { return r.decoded }

// Label is the best human name for the record.
func (r Record) Label() string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	if slug := strings.TrimSpace(r.Slug); slug != "" {
		return slug
	}
	return r.ID
}

// DisplayName is Label with a suffix for soft-deleted records.
func (r Record) DisplayName() string {
	if r.Deleted {
		return r.Label() + " (deleted)"
	}
	return r.Label()
}

// UnmarshalJSON decodes a record, tracking field presence. Ids may be sent as
// strings or numbers.
func (r *Record) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("item: decode record: %w", err)
	}
	out := Record{decoded: true}
	for key, val := range raw {
		var err error
		switch key {
		case "id":
			out.ID, err = decodeID(val)
			out.present |= FieldID
		case "name":
			err = decodeOptional(val, &out.Name)
			out.present |= FieldName
		case "slug":
			err = decodeOptional(val, &out.Slug)
			out.present |= FieldSlug
		case "associations":
			err = decodeOptional(val, &out.Associations)
			out.present |= FieldAssociations
		case "is_deleted":
			err = decodeOptional(val, &out.Deleted)
			out.present |= FieldDeleted
		case "is_pinned":
			err = decodeOptional(val, &out.Pinned)
			out.present |= FieldPinned
		case "containments":
			out.Containments, err = decodeIDs(val)
		case "children":
			err = decodeOptional(val, &out.Children)
		default:
			if out.Extra == nil {
				out.Extra = make(map[string]json.RawMessage)
			}
			out.Extra[key] = val
		}
		if err != nil {
			return fmt.Errorf("item: decode %s: %w", key, err)
		}
	}
	*r = out
	return nil
}

// MarshalJSON encodes the present fields plus any extra fields.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+8)
	for k, v := range r.Extra {
		out[k] = v
	}
	if r.Has(FieldID) {
		out["id"] = r.ID
	}
	if r.Has(FieldName) {
		out["name"] = r.Name
	}
	if r.Has(FieldSlug) {
		out["slug"] = r.Slug
	}
	if r.Has(FieldAssociations) {
		out["associations"] = r.Associations
	}
	if r.Has(FieldDeleted) {
		out["is_deleted"] = r.Deleted
	}
	if r.Has(FieldPinned) {
		out["is_pinned"] = r.Pinned
	}
	if r.Containments != nil {
		out["containments"] = r.Containments
	}
	if len(r.Children) > 0 {
		out["children"] = r.Children
	}
	return json.Marshal(out)
}

func decodeOptional(val json.RawMessage, target any) error {
	if bytes.Equal(bytes.TrimSpace(val), []byte("null")) {
		return nil
	}
	return json.Unmarshal(val, target)
}

func decodeID(val json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(val)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

func decodeIDs(val json.RawMessage) ([]string, error) {
	if bytes.Equal(bytes.TrimSpace(val), []byte("null")) {
		return nil, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(val, &raw); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		id, err := decodeID(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
