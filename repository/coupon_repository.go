// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/miaobau/promo-api/models"
	"gorm.io/gorm"
)

// CouponRepositoryImpl implements CouponRepository interface
type CouponRepositoryImpl struct {
	*BaseRepository[models.Coupon, models.CouponFilter]
}

// NewCouponRepository creates a new coupon repository
func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &CouponRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Coupon, models.CouponFilter](db),
	}
}

// ByCode retrieves a coupon by its code
func (r *CouponRepositoryImpl) ByCode(ctx context.Context, code string) (*models.Coupon, error) {
	filter := models.CouponFilter{Code: &code}
	items, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// applyFilter applies filter criteria to a GORM query
func (r *CouponRepositoryImpl) applyFilter(query *gorm.DB, filter models.CouponFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Code != nil {
		query = query.Where("code = ?", *filter.Code)
	}
	if filter.Channel != nil {
		query = query.Where("channel = ?", *filter.Channel)
	}
	if filter.Redeemed != nil {
		query = query.Where("redeemed = ?", *filter.Redeemed)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves coupons based on filter criteria
func (r *CouponRepositoryImpl) ByFilter(ctx context.Context, filter models.CouponFilter, orderBy string, limit, offset int) ([]*models.Coupon, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Coupon{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var coupons []*models.Coupon
	if err := query.Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

// Count returns the number of coupons matching the filter
func (r *CouponRepositoryImpl) Count(ctx context.Context, filter models.CouponFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Coupon{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any coupon matching the filter exists
func (r *CouponRepositoryImpl) Exists(ctx context.Context, filter models.CouponFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
