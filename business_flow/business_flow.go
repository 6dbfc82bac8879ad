// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/miaobau/promo-api/app/dto"
	"github.com/miaobau/promo-api/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for request tracking
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToCouponDTO converts a coupon model to its API representation
func ToCouponDTO(coupon models.Coupon) dto.CouponDTO {
	return dto.CouponDTO{
		UUID:      coupon.UUID.String(),
		Code:      coupon.Code,
		Channel:   coupon.Channel,
		Redeemed:  coupon.Redeemed != nil && *coupon.Redeemed,
		CreatedAt: coupon.CreatedAt.Format(time.RFC3339),
	}
}
