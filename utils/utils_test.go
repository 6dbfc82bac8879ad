package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCouponCode(t *testing.T) {
	t.Run("PadsSmallValues", func(t *testing.T) {
		assert.Equal(t, "WBAU10DIC-000001", FormatCouponCode(DefaultCouponPrefix, DefaultCouponPadWidth, 1))
		assert.Equal(t, "WBAU10DIC-000007", FormatCouponCode(DefaultCouponPrefix, DefaultCouponPadWidth, 7))
		assert.Equal(t, "WBAU10DIC-000042", FormatCouponCode(DefaultCouponPrefix, DefaultCouponPadWidth, 42))
	})

	t.Run("ExactWidth", func(t *testing.T) {
		assert.Equal(t, "WBAU10DIC-999999", FormatCouponCode(DefaultCouponPrefix, DefaultCouponPadWidth, 999999))
	})

	t.Run("NeverTruncates", func(t *testing.T) {
		// Values wider than the pad width keep all their digits
		assert.Equal(t, "WBAU10DIC-1000000", FormatCouponCode(DefaultCouponPrefix, DefaultCouponPadWidth, 1000000))
		assert.Equal(t, "WBAU10DIC-123456789", FormatCouponCode(DefaultCouponPrefix, DefaultCouponPadWidth, 123456789))
	})

	t.Run("CustomPrefixAndWidth", func(t *testing.T) {
		assert.Equal(t, "PROMO-003", FormatCouponCode("PROMO-", 3, 3))
		// Non-positive widths fall back to the default pad width
		assert.Equal(t, "000005", FormatCouponCode("", 0, 5))
	})
}

func TestCouponImageFilename(t *testing.T) {
	assert.Equal(t, "miabaucoupon_WBAU10DIC-000001.png", CouponImageFilename("WBAU10DIC-000001"))
}

func TestToPtrAndIsTrue(t *testing.T) {
	v := ToPtr(true)
	assert.NotNil(t, v)
	assert.True(t, IsTrue(v))
	assert.False(t, IsTrue(ToPtr(false)))
	assert.False(t, IsTrue(nil))
}
