package dto

// IssueCouponRequest is the optional body of POST /coupon. An empty body is
// valid; the configured default channel is used when none is given.
type IssueCouponRequest struct {
	Channel string `json:"channel,omitempty" validate:"omitempty,min=2,max=32,alphanum"`
}

// IssueCouponResult carries one successful issuance: the generated code, the
// rendered PNG, and the filename the client should store it under.
type IssueCouponResult struct {
	Code     string `json:"code"`
	Filename string `json:"filename"`
	PNG      []byte `json:"-"`
}

// CouponDTO is the API representation of an issued coupon
type CouponDTO struct {
	UUID      string `json:"uuid"`
	Code      string `json:"code"`
	Channel   string `json:"channel"`
	Redeemed  bool   `json:"redeemed"`
	CreatedAt string `json:"created_at"`
}

// ListCouponsRequest captures query parameters of GET /api/v1/coupons
type ListCouponsRequest struct {
	Channel  string `query:"channel" validate:"omitempty,min=2,max=32"`
	Redeemed *bool  `query:"redeemed"`
	Page     int    `query:"page" validate:"omitempty,gte=1"`
	PageSize int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// ListCouponsResponse is the paginated coupon listing payload
type ListCouponsResponse struct {
	Message  string      `json:"message"`
	Items    []CouponDTO `json:"items"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}
