package services

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"testing"

	"github.com/miaobau/promo-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArtworkConfig() config.ArtworkConfig {
	return config.ArtworkConfig{
		Provider:    "image",
		Width:       1080,
		Height:      1350,
		Title:       "MIAO BAU",
		Subtitle:    "Il tuo sconto del 10%\nsu tutto il catalogo",
		CodeLabel:   "IL TUO CODICE",
		Instruction: "Mostralo in cassa o usalo online",
		Footer:      "Valido fino al 31 dicembre",
	}
}

func TestCouponRendererProducesPNG(t *testing.T) {
	renderer := NewCouponRenderer(testArtworkConfig())

	payload, err := renderer.Render(context.Background(), "WBAU10DIC-000001")
	require.NoError(t, err)
	require.NotEmpty(t, payload)

	img, err := png.Decode(bytes.NewReader(payload))
	require.NoError(t, err)
	bounds := img.Bounds()
	assert.Equal(t, 1080, bounds.Dx())
	assert.Equal(t, 1350, bounds.Dy())
}

func TestCouponRendererMissingFontFile(t *testing.T) {
	cfg := testArtworkConfig()
	cfg.RegularFontFile = "/nonexistent/font.ttf"
	renderer := NewCouponRenderer(cfg)

	_, err := renderer.Render(context.Background(), "WBAU10DIC-000001")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRendererUnavailable)
}

func TestCouponRendererCancelledContext(t *testing.T) {
	renderer := NewCouponRenderer(testArtworkConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := renderer.Render(ctx, "WBAU10DIC-000001")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockCouponRenderer(t *testing.T) {
	m := NewMockCouponRenderer()

	payload, err := m.Render(context.Background(), "WBAU10DIC-000001")
	require.NoError(t, err)
	assert.Equal(t, []byte("PNG:WBAU10DIC-000001"), payload)
	assert.Equal(t, []string{"WBAU10DIC-000001"}, m.RenderedCodes())

	boom := errors.New("boom")
	m.FailWith(boom)
	_, err = m.Render(context.Background(), "WBAU10DIC-000002")
	assert.ErrorIs(t, err, boom)

	m.ClearRendered()
	assert.Empty(t, m.RenderedCodes())
}
