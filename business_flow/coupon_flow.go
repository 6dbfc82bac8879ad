// Package businessflow contains use cases for coupon issuance
package businessflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/miaobau/promo-api/app/dto"
	"github.com/miaobau/promo-api/app/services"
	"github.com/miaobau/promo-api/config"
	"github.com/miaobau/promo-api/models"
	"github.com/miaobau/promo-api/repository"
	"github.com/miaobau/promo-api/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/xuri/excelize/v2"
)

var (
	couponsIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coupons_issued_total",
		Help: "Total number of coupons issued successfully",
	})

	// Failures by pipeline stage: sequence, persist, render
	couponIssueFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coupon_issue_failures_total",
		Help: "Total number of failed issuance attempts by stage",
	}, []string{"stage"})
)

// CouponFlow defines coupon issuance and read operations
type CouponFlow interface {
	// IssueCoupon consumes one sequence value, persists one coupon record,
	// and renders the distributable PNG. Each failure stage maps to a
	// distinct business error; nothing is retried or rolled back here.
	IssueCoupon(ctx context.Context, req *dto.IssueCouponRequest, metadata *ClientMetadata) (*dto.IssueCouponResult, error)
	GetCoupon(ctx context.Context, code string, metadata *ClientMetadata) (*dto.CouponDTO, error)
	ListCoupons(ctx context.Context, req *dto.ListCouponsRequest, metadata *ClientMetadata) (*dto.ListCouponsResponse, error)
	ExportCoupons(ctx context.Context, metadata *ClientMetadata) (string, []byte, error)
}

type CouponFlowImpl struct {
	seqRepo    repository.SequenceCounterRepository
	couponRepo repository.CouponRepository
	renderer   services.CouponRenderer
	rc         *redis.Client
	cfg        config.CouponConfig
	cacheCfg   *config.CacheConfig
}

func NewCouponFlow(
	seqRepo repository.SequenceCounterRepository,
	couponRepo repository.CouponRepository,
	renderer services.CouponRenderer,
	rc *redis.Client,
	cfg config.CouponConfig,
	cacheCfg *config.CacheConfig,
) CouponFlow {
	return &CouponFlowImpl{
		seqRepo:    seqRepo,
		couponRepo: couponRepo,
		renderer:   renderer,
		rc:         rc,
		cfg:        cfg,
		cacheCfg:   cacheCfg,
	}
}

// IssueCoupon runs one issuance attempt end-to-end.
//
// Ordering is deliberate: the counter value and the coupon record are the
// durable, authoritative artifacts, so persistence happens before rendering.
// A render failure leaves a consumed-but-unrendered code behind; that is a
// permanent, accepted outcome, and a retry by the caller consumes a fresh
// value rather than reusing this one.
func (f *CouponFlowImpl) IssueCoupon(ctx context.Context, req *dto.IssueCouponRequest, metadata *ClientMetadata) (*dto.IssueCouponResult, error) {
	if f.seqRepo == nil || f.couponRepo == nil {
		return nil, NewBusinessError("STORE_NOT_CONFIGURED", "Document store is not configured", ErrStoreNotConfigured)
	}

	next, err := f.seqRepo.Next(ctx, f.cfg.SequenceName)
	if err != nil {
		couponIssueFailures.WithLabelValues("sequence").Inc()
		return nil, NewBusinessError("SEQUENCE_STORAGE_UNAVAILABLE", "Failed to obtain next coupon number", errors.Join(ErrSequenceStorageUnavailable, err))
	}

	code := utils.FormatCouponCode(f.cfg.Prefix, f.cfg.PadWidth, next)

	channel := f.cfg.DefaultChannel
	if req != nil && req.Channel != "" {
		channel = req.Channel
	}

	now := utils.UTCNow()
	coupon := &models.Coupon{
		UUID:      uuid.New(),
		Code:      code,
		Channel:   channel,
		Redeemed:  utils.ToPtr(false),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := f.couponRepo.Save(ctx, coupon); err != nil {
		// The sequence value is burned: no record exists for it and no
		// rollback happens. The next successful issuance moves on.
		couponIssueFailures.WithLabelValues("persist").Inc()
		return nil, NewBusinessError("COUPON_PERSIST_FAILED", "Failed to persist coupon record", errors.Join(ErrCouponPersistFailed, err))
	}

	pngBytes, err := f.renderer.Render(ctx, code)
	if err != nil {
		// The record stays: the code is spent whether or not the image
		// was delivered.
		couponIssueFailures.WithLabelValues("render").Inc()
		return nil, NewBusinessError("COUPON_RENDER_UNAVAILABLE", "Failed to render coupon image", errors.Join(ErrRenderUnavailable, err))
	}

	f.cacheIssuedCode(ctx, code)
	couponsIssuedTotal.Inc()

	return &dto.IssueCouponResult{
		Code:     code,
		Filename: utils.CouponImageFilename(code),
		PNG:      pngBytes,
	}, nil
}

// cacheIssuedCode records the code in Redis for diagnostics. Best effort:
// cache trouble never fails an issuance that already persisted.
func (f *CouponFlowImpl) cacheIssuedCode(ctx context.Context, code string) {
	if f.rc == nil || f.cacheCfg == nil || !f.cacheCfg.Enabled {
		return
	}

	prefix := f.cacheCfg.RedisPrefix
	pipe := f.rc.Pipeline()
	pipe.Set(ctx, prefix+"coupon:last", code, f.cacheCfg.DefaultTTL)
	pipe.LPush(ctx, prefix+"coupon:recent", code)
	pipe.LTrim(ctx, prefix+"coupon:recent", 0, 99)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Failed to cache issued coupon code %s: %v", code, err)
	}
}

// GetCoupon returns one issued coupon by code
func (f *CouponFlowImpl) GetCoupon(ctx context.Context, code string, metadata *ClientMetadata) (*dto.CouponDTO, error) {
	coupon, err := f.couponRepo.ByCode(ctx, code)
	if err != nil {
		return nil, NewBusinessError("COUPON_LOOKUP_FAILED", "Failed to look up coupon", err)
	}
	if coupon == nil {
		return nil, NewBusinessError("COUPON_NOT_FOUND", "Coupon not found", ErrCouponNotFound)
	}

	d := ToCouponDTO(*coupon)
	return &d, nil
}

// ListCoupons returns issued coupons with pagination and optional filters
func (f *CouponFlowImpl) ListCoupons(ctx context.Context, req *dto.ListCouponsRequest, metadata *ClientMetadata) (*dto.ListCouponsResponse, error) {
	page := 1
	pageSize := 20
	filter := models.CouponFilter{}

	if req != nil {
		if req.Page != 0 {
			page = req.Page
		}
		if req.PageSize != 0 {
			pageSize = req.PageSize
		}
		if req.Channel != "" {
			filter.Channel = &req.Channel
		}
		filter.Redeemed = req.Redeemed
	}
	if page < 1 {
		return nil, NewBusinessError("INVALID_PAGE", "Invalid page", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("INVALID_PAGE_SIZE", "Invalid page size", ErrInvalidPageSize)
	}

	total, err := f.couponRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("LIST_COUPONS_FAILED", "Failed to count coupons", err)
	}

	rows, err := f.couponRepo.ByFilter(ctx, filter, "id DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("LIST_COUPONS_FAILED", "Failed to list coupons", err)
	}

	items := make([]dto.CouponDTO, 0, len(rows))
	for _, r := range rows {
		items = append(items, ToCouponDTO(*r))
	}

	return &dto.ListCouponsResponse{
		Message:  "Coupons retrieved successfully",
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// ExportCoupons builds an XLSX workbook of all issued coupons
func (f *CouponFlowImpl) ExportCoupons(ctx context.Context, metadata *ClientMetadata) (string, []byte, error) {
	rows, err := f.couponRepo.ByFilter(ctx, models.CouponFilter{}, "id ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_COUPONS_FAILED", "Failed to load coupons for export", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := xl.GetSheetName(0)
	headers := []string{"Code", "Channel", "Redeemed", "Created At"}
	for i, hname := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = xl.SetCellValue(sheet, cell, hname)
	}

	for ri, r := range rows {
		values := []any{
			r.Code,
			r.Channel,
			utils.IsTrue(r.Redeemed),
			r.CreatedAt.Format(time.RFC3339),
		}
		for ci, v := range values {
			cell, _ := excelize.CoordinatesToCellName(ci+1, ri+2)
			_ = xl.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_COUPONS_FAILED", "Failed to write coupon workbook", err)
	}

	filename := fmt.Sprintf("coupons_%s.xlsx", utils.UTCNowFormat("20060102_150405"))
	return filename, buf.Bytes(), nil
}
