// Package ingest orchestrates batch ingestion: it takes the resources a
// format parser built, checks each against a Store for identifier
// collisions, validates it, and assembles a row-scoped error report. One
// bad row never aborts the rest of the batch.
package ingest

import (
	"errors"

	"github.com/McNamara84/ernie-sub002/graph"
)

// ErrDuplicateIdentifier is returned by Store.Put when the resource's
// identifier is already present.
var ErrDuplicateIdentifier = errors.New("identifier already exists")

// Store is the persistence boundary of the engine. Identifier uniqueness
// is the only cross-batch invariant it must uphold; anything beyond that
// (durability, indexing) is the implementation's concern.
type Store interface {
	// HasIdentifier reports whether a resource with the given public
	// identifier is already stored. Always false for the empty string.
	HasIdentifier(identifier string) bool

	// Put stores a resource. It fails with ErrDuplicateIdentifier when
	// the resource's identifier is already taken.
	Put(res *graph.Resource) error

	// Get returns the stored resource with the given public identifier.
	Get(identifier string) (*graph.Resource, bool)

	// Len returns the number of stored resources.
	Len() int
}
