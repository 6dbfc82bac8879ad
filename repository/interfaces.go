// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/miaobau/promo-api/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// SequenceCounterRepository hands out unique, strictly increasing integers
// per named sequence. Next is the only mutation path; the increment is a
// single atomic statement in the store, so any number of processes may call
// it concurrently without application-level locking.
type SequenceCounterRepository interface {
	// Next atomically increments the counter for name, creating it when
	// absent, and returns the post-increment value. The first call on a
	// fresh name returns 1. A failed call consumes nothing.
	Next(ctx context.Context, name string) (int64, error)
	// Current returns the last value handed out for name, or 0 when the
	// counter does not exist yet. Diagnostic use only.
	Current(ctx context.Context, name string) (int64, error)
}

// CouponRepository defines operations for issued coupons
type CouponRepository interface {
	Repository[models.Coupon, models.CouponFilter]
	ByCode(ctx context.Context, code string) (*models.Coupon, error)
}
