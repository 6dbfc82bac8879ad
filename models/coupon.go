package models

import (
	"time"

	"github.com/google/uuid"
)

// Coupon represents one issued promotional coupon code.
// Table: coupons
// Unique by code; one row per consumed sequence value. Rows are never
// mutated by this service after creation (redemption lives elsewhere).
type Coupon struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UUID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_coupons_uuid" json:"uuid"`
	Code      string    `gorm:"size:64;not null;uniqueIndex:uk_coupons_code" json:"code"`
	Channel   string    `gorm:"size:32;not null;default:'whatsapp';index:idx_coupons_channel" json:"channel"`
	Redeemed  *bool     `gorm:"default:false;index:idx_coupons_redeemed" json:"redeemed"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_coupons_created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Coupon) TableName() string { return "coupons" }

// CouponFilter represents filter criteria for coupon queries
type CouponFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Code          *string
	Channel       *string
	Redeemed      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
