package record

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound covers both an absent record and a record owned by a
	// different caller; the two cases are deliberately indistinguishable.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned by the dedup intake path when an identical
	// (owner, type, description, date) record already exists.
	ErrDuplicate = errors.New("duplicate record")
	// ErrValidation wraps caller-input faults.
	ErrValidation = errors.New("invalid record")
)

type Repository interface {
	Create(ctx context.Context, r *Record) error
	// GetByOwner returns ErrNotFound for a record that does not exist or
	// belongs to another owner.
	GetByOwner(ctx context.Context, ownerID, id uuid.UUID) (*Record, error)
	// GetByID bypasses owner scoping. It serves only the emergency render
	// path, which is reachable without authentication by design.
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*Record, int, error)
	Update(ctx context.Context, ownerID uuid.UUID, r *Record) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	// FindDuplicate performs the exact-match dedup lookup. A nil result with
	// nil error means no duplicate exists.
	FindDuplicate(ctx context.Context, ownerID uuid.UUID, recordType, description string, date time.Time) (*Record, error)
}
