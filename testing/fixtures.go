// Package testing provides test utilities and database setup for testing the coupon service
package testing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/miaobau/promo-api/models"
	"github.com/miaobau/promo-api/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCoupon creates a coupon row for the given sequence value using the
// production code format
func (tf *TestFixtures) CreateTestCoupon(value int64) (*models.Coupon, error) {
	coupon := &models.Coupon{
		UUID:     uuid.New(),
		Code:     utils.FormatCouponCode(utils.DefaultCouponPrefix, utils.DefaultCouponPadWidth, value),
		Channel:  utils.DefaultCouponChannel,
		Redeemed: utils.ToPtr(false),
	}

	if err := tf.DB.DB.Create(coupon).Error; err != nil {
		return nil, fmt.Errorf("failed to create test coupon: %w", err)
	}

	return coupon, nil
}

// CreateTestCoupons creates n sequential coupons starting at value 1
func (tf *TestFixtures) CreateTestCoupons(n int) ([]*models.Coupon, error) {
	coupons := make([]*models.Coupon, 0, n)
	for i := 1; i <= n; i++ {
		c, err := tf.CreateTestCoupon(int64(i))
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	return coupons, nil
}

// SeedSequenceCounter sets the named counter to a specific value
func (tf *TestFixtures) SeedSequenceCounter(name string, value int64) error {
	counter := &models.SequenceCounter{
		Name:  name,
		Value: value,
	}
	if err := tf.DB.DB.Create(counter).Error; err != nil {
		return fmt.Errorf("failed to seed sequence counter %s: %w", name, err)
	}
	return nil
}
