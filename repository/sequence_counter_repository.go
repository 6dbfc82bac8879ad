// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/miaobau/promo-api/models"
	"github.com/miaobau/promo-api/utils"
	"gorm.io/gorm"
)

var (
	// ErrSequenceNameRequired is returned for an empty sequence name.
	ErrSequenceNameRequired = errors.New("sequence name is required")
	// ErrSequenceValueInvalid is returned when the store yields a
	// non-positive post-increment value, which should never happen.
	ErrSequenceValueInvalid = errors.New("sequence counter returned a non-positive value")
)

// SequenceCounterRepositoryImpl implements SequenceCounterRepository on Postgres.
type SequenceCounterRepositoryImpl struct {
	db *gorm.DB
}

// NewSequenceCounterRepository creates a new sequence counter repository
func NewSequenceCounterRepository(db *gorm.DB) SequenceCounterRepository {
	return &SequenceCounterRepositoryImpl{db: db}
}

func (r *SequenceCounterRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}

// Next atomically increments the named counter and returns the new value.
// The insert-or-increment is one statement, so two concurrent callers on a
// brand-new name can never both observe "absent" and both start at 1: the
// conflict clause serializes them inside the database. The RETURNING value
// is the post-increment state; the pre-increment (absent/zero) row state is
// never observable through this method.
func (r *SequenceCounterRepositoryImpl) Next(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, ErrSequenceNameRequired
	}

	db := r.getDB(ctx)
	now := utils.UTCNow()

	var value int64
	err := db.WithContext(ctx).Raw(`
		INSERT INTO sequence_counters (name, value, created_at, updated_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT (name) DO UPDATE
		SET value = sequence_counters.value + 1, updated_at = EXCLUDED.updated_at
		RETURNING value`,
		name, now, now,
	).Scan(&value).Error
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence %q: %w", name, err)
	}

	if value <= 0 {
		return 0, fmt.Errorf("sequence %q: %w", name, ErrSequenceValueInvalid)
	}

	return value, nil
}

// Current returns the last handed-out value for name, 0 when unused.
func (r *SequenceCounterRepositoryImpl) Current(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, ErrSequenceNameRequired
	}

	db := r.getDB(ctx)

	var counter models.SequenceCounter
	err := db.WithContext(ctx).First(&counter, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read sequence %q: %w", name, err)
	}

	return counter.Value, nil
}
