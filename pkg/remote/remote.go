// Package remote talks to the inventory service. Every failure, whether a
// network error, an unreadable body, or an error reported in the payload, is
// normalized into *Error.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"tableflip.dev/stow/pkg/item"
)

// ItemsTable is the search table holding inventory items.
const ItemsTable = "items"

// Service is the set of remote operations the tree engine consumes.
type Service interface {
	FetchRoots(ctx context.Context) ([]item.Record, error)
	FetchItem(ctx context.Context, id string, includeContainments bool) (item.Record, error)
	SaveItem(ctx context.Context, id string, patch item.Patch) (item.Record, error)
	MoveItem(ctx context.Context, itemID, destinationID string) error
	Search(ctx context.Context, query, table string) ([]item.Record, error)
}

// ErrNotFound matches (via errors.Is) any *Error for a missing record.
var ErrNotFound = errors.New("remote: not found")

// Kind classifies a remote failure.
type Kind int

const (
	// KindTransport covers network failures and non-success HTTP statuses.
	KindTransport Kind = iota
	// KindMalformed means the response body could not be decoded.
	KindMalformed
	// KindServer means a well-formed payload carried an error message.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindMalformed:
		return "malformed"
	case KindServer:
		return "server"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is the single error shape surfaced by Service implementations.
type Error struct {
	Kind    Kind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" && e.Status != 0 {
		msg = http.StatusText(e.Status)
	}
	if e.Status != 0 {
		return fmt.Sprintf("remote: %s: %s (status %d)", e.Op, msg, e.Status)
	}
	return fmt.Sprintf("remote: %s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// NotFound builds the error a Service returns for an unknown id.
func NotFound(op, id string) *Error {
	return &Error{Kind: KindTransport, Op: op, Status: http.StatusNotFound, Message: fmt.Sprintf("item %q not found", id)}
}

// Message extracts the human readable text from err for status lines.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var re *Error
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	return err.Error()
}
