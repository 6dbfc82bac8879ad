package models

import "time"

// SequenceCounter stores the current value for named monotonic counters.
// The row is mutated only through the atomic upsert-increment in the
// repository layer; the value is strictly increasing and starts at 1.
type SequenceCounter struct {
	Name      string    `gorm:"primaryKey;size:64" json:"name"`
	Value     int64     `gorm:"not null;default:0" json:"value"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (SequenceCounter) TableName() string { return "sequence_counters" }

// CouponSequenceName is the counter backing coupon code issuance.
const CouponSequenceName = "coupon"
