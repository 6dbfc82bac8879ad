package utils

// Coupon issuance constants
const (
	// DefaultCouponPrefix is the promotional prefix prepended to sequence values
	DefaultCouponPrefix = "WBAU10DIC-"

	// DefaultCouponPadWidth is the zero-pad width for the sequence part of a code
	DefaultCouponPadWidth = 6

	// DefaultCouponChannel is the originating channel recorded on issued coupons
	DefaultCouponChannel = "whatsapp"

	// CouponFilenamePrefix is the prefix of the download filename for coupon images
	CouponFilenamePrefix = "miabaucoupon_"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Context keys carried on request-scoped contexts
type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)
