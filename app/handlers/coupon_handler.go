package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/miaobau/promo-api/app/dto"
	businessflow "github.com/miaobau/promo-api/business_flow"
	"github.com/miaobau/promo-api/utils"
)

// CouponHandlerInterface defines the contract for coupon handlers
type CouponHandlerInterface interface {
	Issue(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Export(c fiber.Ctx) error
}

// CouponHandler handles coupon-related HTTP requests
type CouponHandler struct {
	flow      businessflow.CouponFlow
	validator *validator.Validate
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(flow businessflow.CouponFlow) CouponHandlerInterface {
	return &CouponHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *CouponHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CouponHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// Issue generates one coupon: next sequence value, persisted record, PNG artwork
// @Summary Issue Coupon
// @Description Issue a sequential coupon code and stream its PNG image
// @Tags Coupons
// @Accept json
// @Produce png
// @Success 200 {file} binary "Coupon image with X-Coupon-Code header"
// @Failure 500 {object} dto.APIResponse "Issuance failed"
// @Failure 503 {object} dto.APIResponse "Store or renderer unavailable"
// @Router /coupon [post]
func (h *CouponHandler) Issue(c fiber.Ctx) error {
	var req dto.IssueCouponRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
		if err := h.validator.Struct(&req); err != nil {
			var validationErrors []string
			for _, err := range err.(validator.ValidationErrors) {
				validationErrors = append(validationErrors, getValidationErrorMessage(err))
			}
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
		}
	}

	ctx := h.createRequestContext(c, "/coupon")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.flow.IssueCoupon(ctx, &req, metadata)
	if err != nil {
		log.Println("Coupon issuance failed", err)
		switch {
		case businessflow.IsStoreNotConfigured(err):
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Database not configured", "STORE_NOT_CONFIGURED", nil)
		case businessflow.IsSequenceStorageUnavailable(err):
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Coupon numbering is temporarily unavailable", "SEQUENCE_STORAGE_UNAVAILABLE", nil)
		case businessflow.IsCouponPersistFailed(err):
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record the coupon", "COUPON_PERSIST_FAILED", nil)
		case businessflow.IsRenderUnavailable(err):
			return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Image generator unavailable. Please try again later.", "COUPON_RENDER_UNAVAILABLE", nil)
		default:
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to issue coupon", "COUPON_ISSUE_FAILED", nil)
		}
	}

	c.Set("Content-Type", "image/png")
	c.Set("X-Coupon-Code", result.Code)
	c.Set("Content-Disposition", "attachment; filename="+result.Filename)
	return c.Send(result.PNG)
}

// Get returns one issued coupon by code
// @Summary Get Coupon
// @Tags Coupons
// @Produce json
// @Param code path string true "Coupon code"
// @Success 200 {object} dto.APIResponse{data=dto.CouponDTO}
// @Failure 404 {object} dto.APIResponse "Coupon not found"
// @Router /api/v1/coupons/{code} [get]
func (h *CouponHandler) Get(c fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Coupon code is required", "INVALID_REQUEST", nil)
	}

	ctx := h.createRequestContext(c, "/api/v1/coupons/:code")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.GetCoupon(ctx, code, metadata)
	if err != nil {
		if businessflow.IsCouponNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Coupon not found", "COUPON_NOT_FOUND", nil)
		}
		log.Println("Coupon lookup failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to look up coupon", "COUPON_LOOKUP_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Coupon retrieved", res)
}

// List returns issued coupons with pagination
// @Summary List Coupons
// @Tags Coupons
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListCouponsResponse}
// @Router /api/v1/coupons [get]
func (h *CouponHandler) List(c fiber.Ctx) error {
	var req dto.ListCouponsRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	ctx := h.createRequestContext(c, "/api/v1/coupons")
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.ListCoupons(ctx, &req, metadata)
	if err != nil {
		log.Println("List coupons failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list coupons", "LIST_COUPONS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Coupons retrieved", res)
}

// Export streams an XLSX workbook of issued coupons
// @Summary Export Coupons
// @Tags Coupons
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary "Coupon workbook"
// @Router /api/v1/coupons/export [get]
func (h *CouponHandler) Export(c fiber.Ctx) error {
	ctx := h.createRequestContextWithTimeout(c, "/api/v1/coupons/export", 2*time.Minute)
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	filename, data, err := h.flow.ExportCoupons(ctx, metadata)
	if err != nil {
		log.Println("Export coupons failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export coupons", "EXPORT_COUPONS_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

func (h *CouponHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *CouponHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
