// Package tablestore defines the interface for storing the exposing nodes an
// application publishes and handing out table snapshots to evaluation rounds.
//
// # Why Table Store Exists
//
// Components publish exposing nodes by name, and they can do so at any time:
// a feed goroutine may replace a value while a round is being prepared. The
// graph core, on the other hand, requires an immutable *node.Table for the
// duration of one evaluation. The table store sits between the two: writers
// mutate it, and the runtime takes a snapshot between rounds.
//
// # Versions
//
// Every write bumps a monotonic version. The runtime records the version it
// evaluated and asks ChangedSince on the next round, which is how it limits a
// round to the bindings affected by a change.
//
// # Snapshot Identity
//
// Nodes memoize dependency resolution by *node.Table identity. Implementations
// MUST return the same *node.Table from Snapshot for as long as no write has
// happened, so that an unchanged round reuses those memos.
package tablestore

import (
	"context"

	"github.com/specialistvlad/evalgraph/internal/node"
)

// Store is the interface for managing the exposing nodes of an application.
//
// # Thread-Safety Requirements
//
// Implementations MUST be safe for concurrent writers and readers.
type Store interface {
	// Set publishes n under name, replacing any previous node.
	Set(ctx context.Context, name string, n node.Node) error

	// Get returns the node published under name. The boolean is false when
	// nothing is published under that name.
	Get(ctx context.Context, name string) (node.Node, bool, error)

	// Delete removes the node published under name. Deleting an unknown name
	// is not an error.
	Delete(ctx context.Context, name string) error

	// Snapshot returns an immutable table of every published node.
	Snapshot(ctx context.Context) (*node.Table, error)

	// Version returns the number of writes applied so far.
	Version(ctx context.Context) (uint64, error)

	// ChangedSince returns, in lexical order, every name written or deleted
	// after version.
	ChangedSince(ctx context.Context, version uint64) ([]string, error)
}
