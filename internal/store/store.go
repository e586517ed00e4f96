// Package store persists passport records by identifier. The keyspace is
// flat: one record per id. There is no update or delete path; records are
// append-once after publication.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/dppkit/passport-cli/internal/passport"
)

// Store defines the persistence interface for passport records.
//
// Load returns (nil, nil) when no record exists for the id: absence is an
// explicit result, not an error, so the public lookup path can render a
// "not found" state. Save overwrites an existing id as an implementation
// simplification; callers must not rely on update semantics.
type Store interface {
	// Save writes a record keyed by its id and returns the storage
	// location (file path or table key).
	Save(ctx context.Context, rec *passport.Record) (string, error)
	// Load returns the record for id, or (nil, nil) when absent.
	Load(ctx context.Context, id string) (*passport.Record, error)
	// List returns all stored record ids.
	List(ctx context.Context) ([]string, error)
	Close() error
}

// checkID rejects malformed record identifiers before they reach the
// keyspace.
func checkID(id string) error {
	if !passport.ValidID(id) {
		return eris.Errorf("store: invalid record id %q", id)
	}
	return nil
}
