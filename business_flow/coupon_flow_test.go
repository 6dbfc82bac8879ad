package businessflow_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/miaobau/promo-api/app/dto"
	"github.com/miaobau/promo-api/app/services"
	businessflow "github.com/miaobau/promo-api/business_flow"
	"github.com/miaobau/promo-api/config"
	"github.com/miaobau/promo-api/models"
	"github.com/miaobau/promo-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// memSequenceRepo is an in-memory stand-in for the counter table. It mirrors
// the production contract: a failed Next consumes nothing, a successful one
// always hands out a fresh value.
type memSequenceRepo struct {
	mu       sync.Mutex
	counters map[string]int64
	failWith error
}

func newMemSequenceRepo() *memSequenceRepo {
	return &memSequenceRepo{counters: make(map[string]int64)}
}

func (r *memSequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return 0, r.failWith
	}
	r.counters[name]++
	return r.counters[name], nil
}

func (r *memSequenceRepo) Current(ctx context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counters[name], nil
}

type memCouponRepo struct {
	mu      sync.Mutex
	coupons []*models.Coupon
	saveErr error
	nextID  uint
}

func newMemCouponRepo() *memCouponRepo {
	return &memCouponRepo{}
}

func (r *memCouponRepo) ByID(ctx context.Context, id uint) (*models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.coupons {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memCouponRepo) ByCode(ctx context.Context, code string) (*models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.coupons {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memCouponRepo) Save(ctx context.Context, entity *models.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	for _, c := range r.coupons {
		if c.Code == entity.Code {
			return errors.New("duplicate key value violates unique constraint \"uk_coupons_code\"")
		}
	}
	r.nextID++
	entity.ID = r.nextID
	r.coupons = append(r.coupons, entity)
	return nil
}

func (r *memCouponRepo) matches(c *models.Coupon, filter models.CouponFilter) bool {
	if filter.Channel != nil && c.Channel != *filter.Channel {
		return false
	}
	if filter.Redeemed != nil && utils.IsTrue(c.Redeemed) != *filter.Redeemed {
		return false
	}
	return true
}

func (r *memCouponRepo) ByFilter(ctx context.Context, filter models.CouponFilter, orderBy string, limit, offset int) ([]*models.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]*models.Coupon, 0, len(r.coupons))
	for _, c := range r.coupons {
		if r.matches(c, filter) {
			matched = append(matched, c)
		}
	}
	if orderBy == "id DESC" {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}
	if offset > 0 {
		if offset >= len(matched) {
			return nil, nil
		}
		matched = matched[offset:]
	}
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *memCouponRepo) Count(ctx context.Context, filter models.CouponFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, c := range r.coupons {
		if r.matches(c, filter) {
			n++
		}
	}
	return n, nil
}

func (r *memCouponRepo) Exists(ctx context.Context, filter models.CouponFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func testCouponConfig() config.CouponConfig {
	return config.CouponConfig{
		Prefix:         utils.DefaultCouponPrefix,
		PadWidth:       utils.DefaultCouponPadWidth,
		SequenceName:   models.CouponSequenceName,
		DefaultChannel: utils.DefaultCouponChannel,
	}
}

func newTestFlow() (businessflow.CouponFlow, *memSequenceRepo, *memCouponRepo, *services.MockCouponRenderer) {
	seqRepo := newMemSequenceRepo()
	couponRepo := newMemCouponRepo()
	renderer := services.NewMockCouponRenderer()
	flow := businessflow.NewCouponFlow(seqRepo, couponRepo, renderer, nil, testCouponConfig(), nil)
	return flow, seqRepo, couponRepo, renderer
}

func TestIssueCoupon(t *testing.T) {
	ctx := context.Background()
	metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")

	t.Run("SequentialIssuance", func(t *testing.T) {
		flow, _, couponRepo, renderer := newTestFlow()

		want := []string{"WBAU10DIC-000001", "WBAU10DIC-000002", "WBAU10DIC-000003"}
		for _, code := range want {
			result, err := flow.IssueCoupon(ctx, nil, metadata)
			require.NoError(t, err)
			assert.Equal(t, code, result.Code)
			assert.Equal(t, "miabaucoupon_"+code+".png", result.Filename)
			assert.NotEmpty(t, result.PNG)
		}

		count, err := couponRepo.Count(ctx, models.CouponFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.Equal(t, want, renderer.RenderedCodes())
	})

	t.Run("DefaultAndOverrideChannel", func(t *testing.T) {
		flow, _, couponRepo, _ := newTestFlow()

		result, err := flow.IssueCoupon(ctx, nil, metadata)
		require.NoError(t, err)
		stored, err := couponRepo.ByCode(ctx, result.Code)
		require.NoError(t, err)
		assert.Equal(t, "whatsapp", stored.Channel)

		result, err = flow.IssueCoupon(ctx, &dto.IssueCouponRequest{Channel: "telegram"}, metadata)
		require.NoError(t, err)
		stored, err = couponRepo.ByCode(ctx, result.Code)
		require.NoError(t, err)
		assert.Equal(t, "telegram", stored.Channel)
	})

	t.Run("SequenceStorageFailure", func(t *testing.T) {
		flow, seqRepo, couponRepo, _ := newTestFlow()
		seqRepo.failWith = errors.New("connection refused")

		_, err := flow.IssueCoupon(ctx, nil, metadata)
		require.Error(t, err)
		assert.True(t, businessflow.IsSequenceStorageUnavailable(err))

		count, err := couponRepo.Count(ctx, models.CouponFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)

		// A failed attempt consumed no values
		seqRepo.failWith = nil
		result, err := flow.IssueCoupon(ctx, nil, metadata)
		require.NoError(t, err)
		assert.Equal(t, "WBAU10DIC-000001", result.Code)
	})

	t.Run("PersistFailureBurnsValue", func(t *testing.T) {
		flow, _, couponRepo, _ := newTestFlow()
		couponRepo.saveErr = errors.New("disk full")

		_, err := flow.IssueCoupon(ctx, nil, metadata)
		require.Error(t, err)
		assert.True(t, businessflow.IsCouponPersistFailed(err))

		// The consumed value is gone for good: the next success skips it
		couponRepo.saveErr = nil
		result, err := flow.IssueCoupon(ctx, nil, metadata)
		require.NoError(t, err)
		assert.Equal(t, "WBAU10DIC-000002", result.Code)

		missing, err := couponRepo.ByCode(ctx, "WBAU10DIC-000001")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("RenderFailureKeepsRecord", func(t *testing.T) {
		flow, _, couponRepo, renderer := newTestFlow()
		renderer.FailWith(errors.New("font corrupt"))

		_, err := flow.IssueCoupon(ctx, nil, metadata)
		require.Error(t, err)
		assert.True(t, businessflow.IsRenderUnavailable(err))

		// The record was persisted before rendering and stays
		stored, err := couponRepo.ByCode(ctx, "WBAU10DIC-000001")
		require.NoError(t, err)
		require.NotNil(t, stored)

		// A retry consumes a fresh value instead of reusing the spent one
		renderer.FailWith(nil)
		result, err := flow.IssueCoupon(ctx, nil, metadata)
		require.NoError(t, err)
		assert.Equal(t, "WBAU10DIC-000002", result.Code)
	})

	t.Run("StoreNotConfigured", func(t *testing.T) {
		flow := businessflow.NewCouponFlow(nil, nil, services.NewMockCouponRenderer(), nil, testCouponConfig(), nil)

		_, err := flow.IssueCoupon(ctx, nil, metadata)
		require.Error(t, err)
		assert.True(t, businessflow.IsStoreNotConfigured(err))
	})
}

func TestGetCoupon(t *testing.T) {
	ctx := context.Background()
	metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")
	flow, _, _, _ := newTestFlow()

	issued, err := flow.IssueCoupon(ctx, nil, metadata)
	require.NoError(t, err)

	t.Run("Found", func(t *testing.T) {
		coupon, err := flow.GetCoupon(ctx, issued.Code, metadata)
		require.NoError(t, err)
		assert.Equal(t, issued.Code, coupon.Code)
		assert.Equal(t, "whatsapp", coupon.Channel)
		assert.False(t, coupon.Redeemed)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := flow.GetCoupon(ctx, "WBAU10DIC-424242", metadata)
		require.Error(t, err)
		assert.True(t, businessflow.IsCouponNotFound(err))
	})
}

func TestListCoupons(t *testing.T) {
	ctx := context.Background()
	metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")
	flow, _, _, _ := newTestFlow()

	for i := 0; i < 5; i++ {
		_, err := flow.IssueCoupon(ctx, nil, metadata)
		require.NoError(t, err)
	}

	t.Run("DefaultsNewestFirst", func(t *testing.T) {
		resp, err := flow.ListCoupons(ctx, nil, metadata)
		require.NoError(t, err)
		assert.Equal(t, int64(5), resp.Total)
		assert.Equal(t, 1, resp.Page)
		assert.Equal(t, 20, resp.PageSize)
		require.Len(t, resp.Items, 5)
		assert.Equal(t, "WBAU10DIC-000005", resp.Items[0].Code)
	})

	t.Run("Pagination", func(t *testing.T) {
		resp, err := flow.ListCoupons(ctx, &dto.ListCouponsRequest{Page: 2, PageSize: 2}, metadata)
		require.NoError(t, err)
		assert.Equal(t, int64(5), resp.Total)
		require.Len(t, resp.Items, 2)
		assert.Equal(t, "WBAU10DIC-000003", resp.Items[0].Code)
		assert.Equal(t, "WBAU10DIC-000002", resp.Items[1].Code)
	})

	t.Run("ChannelFilter", func(t *testing.T) {
		resp, err := flow.ListCoupons(ctx, &dto.ListCouponsRequest{Channel: "telegram"}, metadata)
		require.NoError(t, err)
		assert.Equal(t, int64(0), resp.Total)
		assert.Empty(t, resp.Items)
	})

	t.Run("InvalidPage", func(t *testing.T) {
		_, err := flow.ListCoupons(ctx, &dto.ListCouponsRequest{Page: -1}, metadata)
		require.Error(t, err)
		assert.True(t, businessflow.IsInvalidPage(err))
	})

	t.Run("InvalidPageSize", func(t *testing.T) {
		_, err := flow.ListCoupons(ctx, &dto.ListCouponsRequest{PageSize: 500}, metadata)
		require.Error(t, err)
		assert.True(t, businessflow.IsInvalidPageSize(err))
	})
}

func TestExportCoupons(t *testing.T) {
	ctx := context.Background()
	metadata := businessflow.NewClientMetadata("127.0.0.1", "test-agent")
	flow, _, _, _ := newTestFlow()

	for i := 0; i < 3; i++ {
		_, err := flow.IssueCoupon(ctx, nil, metadata)
		require.NoError(t, err)
	}

	filename, payload, err := flow.ExportCoupons(ctx, metadata)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "coupons_"))
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))
	require.NotEmpty(t, payload)

	xl, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer xl.Close()

	sheet := xl.GetSheetName(0)
	rows, err := xl.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Code", "Channel", "Redeemed", "Created At"}, rows[0][:4])
	assert.Equal(t, "WBAU10DIC-000001", rows[1][0])
	assert.Equal(t, "WBAU10DIC-000003", rows[3][0])
}
