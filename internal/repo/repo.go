// Package repo contains all persistence logic for the tags service.
// TagRepo is the narrow port the store is written against; this package
// provides a Postgres implementation and an embedded BadgerDB implementation.
// No business logic lives here: only storage, transactions and type mapping.
package repo

import (
	"context"
	"time"

	"github.com/pkordes/tagstore/internal/domain"
)

// TagRepo defines the persistence operations for tag records.
// Every mutating method runs in exactly one transaction of the backing engine.
type TagRepo interface {
	// EnsureContainer returns the id of the container called name, creating it
	// if it does not exist. When two callers race to create it, the loser
	// receives the winner's id.
	EnsureContainer(ctx context.Context, name string) (string, error)

	// Get returns the record with the given id regardless of its ValidTo.
	// Returns domain.ErrNotFound if no such record exists.
	Get(ctx context.Context, containerID, id string) (domain.TagRecord, error)

	// Insert persists a new record and returns it as stored.
	// Returns domain.ErrDuplicate if a record with rec.ID already exists.
	Insert(ctx context.Context, containerID string, rec domain.TagRecord) (domain.TagRecord, error)

	// Mutate loads the record, applies fn, and writes the result back in one
	// transaction. If fn or the write fails the transaction is rolled back and
	// the error is returned unchanged (wrapped with context).
	// Returns domain.ErrNotFound if no such record exists.
	Mutate(ctx context.Context, containerID, id string, fn func(*domain.TagRecord) error) (domain.TagRecord, error)

	// Each visits records visible at `at` in creation order, skipping the
	// first offset of them. Iteration stops when fn returns false or an error.
	Each(ctx context.Context, containerID string, at time.Time, offset int, fn func(domain.TagRecord) (bool, error)) error
}
