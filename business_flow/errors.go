// Package businessflow contains the core business logic and use cases for coupon issuance workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Sequencer errors
	ErrSequenceStorageUnavailable = errors.New("sequence counter store is unavailable")

	// Issuance errors
	ErrCouponPersistFailed = errors.New("coupon record could not be persisted")
	ErrRenderUnavailable   = errors.New("coupon image renderer is unavailable")
	ErrStoreNotConfigured  = errors.New("document store is not configured")

	// Lookup errors
	ErrCouponNotFound = errors.New("coupon not found")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsSequenceStorageUnavailable(err error) bool {
	return errors.Is(err, ErrSequenceStorageUnavailable)
}

func IsCouponPersistFailed(err error) bool {
	return errors.Is(err, ErrCouponPersistFailed)
}

func IsRenderUnavailable(err error) bool {
	return errors.Is(err, ErrRenderUnavailable)
}

func IsStoreNotConfigured(err error) bool {
	return errors.Is(err, ErrStoreNotConfigured)
}

func IsCouponNotFound(err error) bool {
	return errors.Is(err, ErrCouponNotFound)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
