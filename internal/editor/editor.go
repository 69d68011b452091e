// Package editor implements the edit session of a relay server node: it holds
// the edited state, validates it, and hands the reduced submission to the
// persistence layer.
package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/ameshkov/nodeadmin/internal/node"
)

const (
	// ErrNotFound is returned by loaders and committers when there is no
	// server with the requested id.
	ErrNotFound errors.Error = "server not found"

	// ErrBusy is returned by Commit when another commit of the same session
	// is in flight.
	ErrBusy errors.Error = "commit in progress"

	// ErrClosed is returned by a session after a successful commit or after
	// it has been abandoned.
	ErrClosed errors.Error = "edit session is closed"

	// ErrUnknownKind is returned when a protocol kind is not in the catalog.
	ErrUnknownKind errors.Error = "unknown protocol kind"
)

// ValidationError is returned by Commit when the edited state has invalid
// fields.
type ValidationError struct {
	// Errors maps field paths to their errors.  It is never empty.
	Errors node.Errors
}

// type check
var _ error = (*ValidationError)(nil)

// Error implements the error interface for *ValidationError.
func (e *ValidationError) Error() (msg string) {
	return fmt.Sprintf("invalid fields: %s", strings.Join(e.Errors.Paths(), ", "))
}

// Loader loads a previously committed server.
type Loader interface {
	// Load returns the stored submission of the server.  It returns an error
	// wrapping ErrNotFound if there is no such server.
	Load(ctx context.Context, id int64) (sub *node.Submission, err error)
}

// Committer persists submissions.
type Committer interface {
	// Commit creates a new server if id is zero and replaces the server with
	// the given id otherwise.  It returns the id of the saved server.
	Commit(ctx context.Context, id int64, sub *node.Submission) (savedID int64, err error)
}
