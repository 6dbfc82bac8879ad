package services

import (
	"context"
	"sync"
)

// MockCouponRenderer records render calls for testing and for running the
// service without font assets (RENDERER_PROVIDER=mock).
type MockCouponRenderer struct {
	mu       sync.Mutex
	rendered []string
	failWith error
}

// NewMockCouponRenderer creates a mock renderer that returns a tiny stub
// payload instead of real artwork.
func NewMockCouponRenderer() *MockCouponRenderer {
	return &MockCouponRenderer{}
}

func (m *MockCouponRenderer) Render(ctx context.Context, code string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	m.rendered = append(m.rendered, code)
	return []byte("PNG:" + code), nil
}

// FailWith makes every subsequent Render call return err (nil restores success).
func (m *MockCouponRenderer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// RenderedCodes returns the codes rendered so far.
func (m *MockCouponRenderer) RenderedCodes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.rendered))
	copy(out, m.rendered)
	return out
}

// ClearRendered resets the recorded calls.
func (m *MockCouponRenderer) ClearRendered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rendered = nil
}
