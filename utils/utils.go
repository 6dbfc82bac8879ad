// Package utils provides utility functions for the application.
package utils

import (
	"fmt"
	"strconv"
	"strings"
)

func ToPtr[T any](v T) *T {
	return &v
}

func IsTrue(b *bool) bool {
	return b != nil && *b
}

// FormatCouponCode builds a coupon code from the fixed promotional prefix and
// a sequence value, zero-padded to padWidth digits. Values wider than
// padWidth keep all their digits; padding never truncates.
func FormatCouponCode(prefix string, padWidth int, value int64) string {
	if padWidth <= 0 {
		padWidth = DefaultCouponPadWidth
	}
	digits := strconv.FormatInt(value, 10)
	if pad := padWidth - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return prefix + digits
}

// CouponImageFilename derives the download filename for a coupon image.
func CouponImageFilename(code string) string {
	return fmt.Sprintf("%s%s.png", CouponFilenamePrefix, code)
}
