package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/miaobau/promo-api/app/dto"
	businessflow "github.com/miaobau/promo-api/business_flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCouponFlow returns canned results so handler tests exercise only HTTP
// binding, status mapping, and headers.
type stubCouponFlow struct {
	issueResult *dto.IssueCouponResult
	issueErr    error
	getResult   *dto.CouponDTO
	getErr      error
	listResult  *dto.ListCouponsResponse
	listErr     error
}

func (s *stubCouponFlow) IssueCoupon(ctx context.Context, req *dto.IssueCouponRequest, metadata *businessflow.ClientMetadata) (*dto.IssueCouponResult, error) {
	return s.issueResult, s.issueErr
}

func (s *stubCouponFlow) GetCoupon(ctx context.Context, code string, metadata *businessflow.ClientMetadata) (*dto.CouponDTO, error) {
	return s.getResult, s.getErr
}

func (s *stubCouponFlow) ListCoupons(ctx context.Context, req *dto.ListCouponsRequest, metadata *businessflow.ClientMetadata) (*dto.ListCouponsResponse, error) {
	return s.listResult, s.listErr
}

func (s *stubCouponFlow) ExportCoupons(ctx context.Context, metadata *businessflow.ClientMetadata) (string, []byte, error) {
	return "coupons_20240101_000000.xlsx", []byte("workbook"), nil
}

// errorPayload mirrors the error envelope for decoding in assertions
type errorPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestApp(flow businessflow.CouponFlow) *fiber.App {
	handler := NewCouponHandler(flow)
	app := fiber.New()
	app.Post("/coupon", handler.Issue)
	app.Get("/api/v1/coupons", handler.List)
	app.Get("/api/v1/coupons/export", handler.Export)
	app.Get("/api/v1/coupons/:code", handler.Get)
	return app
}

func TestIssueHandler(t *testing.T) {
	t.Run("StreamsImageOnSuccess", func(t *testing.T) {
		flow := &stubCouponFlow{
			issueResult: &dto.IssueCouponResult{
				Code:     "WBAU10DIC-000001",
				Filename: "miabaucoupon_WBAU10DIC-000001.png",
				PNG:      []byte("fake-png"),
			},
		}
		app := newTestApp(flow)

		req := httptest.NewRequest("POST", "/coupon", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
		assert.Equal(t, "WBAU10DIC-000001", resp.Header.Get("X-Coupon-Code"))
		assert.Equal(t, "attachment; filename=miabaucoupon_WBAU10DIC-000001.png", resp.Header.Get("Content-Disposition"))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, []byte("fake-png"), body)
	})

	t.Run("SequenceUnavailableMapsTo503", func(t *testing.T) {
		flow := &stubCouponFlow{
			issueErr: businessflow.NewBusinessError("SEQUENCE_STORAGE_UNAVAILABLE", "no counter", businessflow.ErrSequenceStorageUnavailable),
		}
		app := newTestApp(flow)

		req := httptest.NewRequest("POST", "/coupon", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

		var payload errorPayload
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
		assert.False(t, payload.Success)
		assert.Equal(t, "SEQUENCE_STORAGE_UNAVAILABLE", payload.Error.Code)
	})

	t.Run("RenderUnavailableMapsTo503", func(t *testing.T) {
		flow := &stubCouponFlow{
			issueErr: businessflow.NewBusinessError("COUPON_RENDER_UNAVAILABLE", "no fonts", businessflow.ErrRenderUnavailable),
		}
		app := newTestApp(flow)

		req := httptest.NewRequest("POST", "/coupon", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)

		var payload errorPayload
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
		assert.Equal(t, "COUPON_RENDER_UNAVAILABLE", payload.Error.Code)
		assert.Equal(t, "Image generator unavailable. Please try again later.", payload.Message)
	})

	t.Run("PersistFailureMapsTo500", func(t *testing.T) {
		flow := &stubCouponFlow{
			issueErr: businessflow.NewBusinessError("COUPON_PERSIST_FAILED", "disk full", businessflow.ErrCouponPersistFailed),
		}
		app := newTestApp(flow)

		req := httptest.NewRequest("POST", "/coupon", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})

	t.Run("RejectsInvalidChannel", func(t *testing.T) {
		flow := &stubCouponFlow{}
		app := newTestApp(flow)

		req := httptest.NewRequest("POST", "/coupon", strings.NewReader(`{"channel":"x"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestGetHandler(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		flow := &stubCouponFlow{
			getResult: &dto.CouponDTO{Code: "WBAU10DIC-000001", Channel: "whatsapp"},
		}
		app := newTestApp(flow)

		req := httptest.NewRequest("GET", "/api/v1/coupons/WBAU10DIC-000001", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("NotFound", func(t *testing.T) {
		flow := &stubCouponFlow{
			getErr: businessflow.NewBusinessError("COUPON_NOT_FOUND", "missing", businessflow.ErrCouponNotFound),
		}
		app := newTestApp(flow)

		req := httptest.NewRequest("GET", "/api/v1/coupons/WBAU10DIC-999999", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestListHandler(t *testing.T) {
	flow := &stubCouponFlow{
		listResult: &dto.ListCouponsResponse{
			Message:  "Coupons retrieved successfully",
			Items:    []dto.CouponDTO{{Code: "WBAU10DIC-000001"}},
			Total:    1,
			Page:     1,
			PageSize: 20,
		},
	}
	app := newTestApp(flow)

	req := httptest.NewRequest("GET", "/api/v1/coupons?page=1&page_size=20", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestExportHandler(t *testing.T) {
	app := newTestApp(&stubCouponFlow{})

	req := httptest.NewRequest("GET", "/api/v1/coupons/export", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Equal(t, "attachment; filename=coupons_20240101_000000.xlsx", resp.Header.Get("Content-Disposition"))
}
