// Package store persists chart definitions for the HTTP service.
//
// Two backends implement [Store]: [MemoryStore] for tests and single-process
// use, and [MongoStore] for shared deployments. Records are keyed by a random
// UUID and carry a version that increases with every write.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/mosaic/pkg/errors"
	"github.com/matzehuels/mosaic/pkg/mosaic"
)

// ErrNotFound is returned when no chart has the requested id.
var ErrNotFound = errors.New(errors.ErrCodeChartNotFound, "chart not found")

// ErrConflict is returned when a record changed between read and write.
var ErrConflict = errors.New(errors.ErrCodeConflict, "chart was modified concurrently")

// Record is a stored chart.
type Record struct {
	ID         string            `json:"id" bson:"_id"`
	Definition mosaic.Definition `json:"definition" bson:"definition"`
	Version    int64             `json:"version" bson:"version"`
	CreatedAt  time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at" bson:"updated_at"`
}

// Summary is the listing form of a record.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store persists chart definitions.
type Store interface {
	// Create stores def under a new id.
	Create(ctx context.Context, def mosaic.Definition) (Record, error)
	// Get returns the record with the given id or ErrNotFound.
	Get(ctx context.Context, id string) (Record, error)
	// Put replaces the definition of an existing record.
	Put(ctx context.Context, id string, def mosaic.Definition) (Record, error)
	// Update applies fn to the stored definition and saves the result. If fn
	// returns an error nothing is written.
	Update(ctx context.Context, id string, fn func(*mosaic.Definition) error) (Record, error)
	// Delete removes a record. Deleting a missing id returns ErrNotFound.
	Delete(ctx context.Context, id string) error
	// List returns all records, oldest first.
	List(ctx context.Context) ([]Summary, error)
	Close() error
}

// NewID returns a random record id.
func NewID() string { return uuid.NewString() }

// ValidID reports whether id has the shape of a record id.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
