package adminsrv

import (
	"context"
	"net/netip"

	"github.com/ameshkov/nodeadmin/internal/editor"
	"github.com/ameshkov/nodeadmin/internal/store"
)

// Store is the persistence layer used by the admin API.
type Store interface {
	editor.Loader
	editor.Committer

	// List returns all stored servers ordered by id.
	List(ctx context.Context) (recs []*store.Record, err error)

	// Delete removes the server with the given id.  It returns an error
	// wrapping editor.ErrNotFound if there is no such server.
	Delete(ctx context.Context, id int64) (err error)
}

// Config represents the admin API server configuration.
type Config struct {
	// Store is where committed servers are kept.  Must not be nil.
	Store Store

	// ListenAddr is the address the admin API listens to.  Use port 0 to
	// pick a random one.
	ListenAddr netip.AddrPort
}
