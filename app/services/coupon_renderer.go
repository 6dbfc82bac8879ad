// Package services provides external service integrations and technical concerns like rendering and caching
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/miaobau/promo-api/config"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// ErrRendererUnavailable is returned when the renderer cannot produce output,
// typically because its font resources failed to load. Callers treat this as
// a recoverable condition, not a process crash.
var ErrRendererUnavailable = errors.New("coupon renderer unavailable")

// CouponRenderer produces a distributable raster image for a coupon code.
//
// Rendering is a disposable, derived presentation: a failed Render never
// affects the already-persisted coupon record or the sequence counter.
type CouponRenderer interface {
	Render(ctx context.Context, code string) ([]byte, error)
}

type couponRendererImpl struct {
	cfg config.ArtworkConfig

	loadOnce sync.Once
	loadErr  error
	regular  *truetype.Font
	bold     *truetype.Font
}

// NewCouponRenderer constructs the PNG coupon renderer. Font resources are
// loaded lazily on first Render so a missing TTF file degrades to a
// per-request failure instead of preventing startup.
func NewCouponRenderer(cfg config.ArtworkConfig) CouponRenderer {
	return &couponRendererImpl{cfg: cfg}
}

// Artwork palette
var (
	artRed   = color.RGBA{R: 216, G: 43, B: 43, A: 255}   // #D82B2B
	artCream = color.RGBA{R: 255, G: 246, B: 237, A: 255} // #FFF6ED
	artText  = color.RGBA{R: 30, G: 30, B: 30, A: 255}    // #1E1E1E
	artWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

func (r *couponRendererImpl) loadFonts() {
	r.regular, r.loadErr = loadFont(r.cfg.RegularFontFile, goregular.TTF)
	if r.loadErr != nil {
		return
	}
	r.bold, r.loadErr = loadFont(r.cfg.BoldFontFile, gobold.TTF)
}

// loadFont parses the configured TTF file, falling back to the embedded Go
// font when no file is configured.
func loadFont(path string, fallback []byte) (*truetype.Font, error) {
	data := fallback
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read font %s: %w", path, err)
		}
		data = b
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return f, nil
}

// Render draws the promotional artwork around the code and encodes it as PNG.
func (r *couponRendererImpl) Render(ctx context.Context, code string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.loadOnce.Do(r.loadFonts)
	if r.loadErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrRendererUnavailable, r.loadErr)
	}

	w, h := r.cfg.Width, r.cfg.Height
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: artWhite}, image.Point{}, draw.Src)

	// Top banner and body background
	bannerH := h / 6
	fillRect(img, 0, 0, w, bannerH, artRed)
	fillRect(img, 0, bannerH, w, h-bannerH, artCream)

	titleFace := r.face(r.bold, 72)
	subtitleFace := r.face(r.bold, 36)
	codeFace := r.face(r.bold, 84)
	smallFace := r.face(r.regular, 28)
	defer closeFaces(titleFace, subtitleFace, codeFace, smallFace)

	drawCentered(img, titleFace, r.cfg.Title, w, 60+72, artWhite)

	y := bannerH + 50
	for _, line := range strings.Split(r.cfg.Subtitle, "\n") {
		y += 50
		drawCentered(img, subtitleFace, line, w, y, artText)
	}

	// Coupon card with the code itself
	cardW, cardH := w-160, 520
	cardX, cardY := 80, y+80
	fillRect(img, cardX, cardY, cardW, cardH, artWhite)

	drawCentered(img, smallFace, r.cfg.CodeLabel, w, cardY+70, artText)
	drawCentered(img, codeFace, code, w, cardY+220, artRed)
	drawCentered(img, smallFace, r.cfg.Instruction, w, cardY+330, artText)

	drawCentered(img, smallFace, r.cfg.Footer, w, h-80, artText)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: png encoding failed: %v", ErrRendererUnavailable, err)
	}
	return buf.Bytes(), nil
}

func (r *couponRendererImpl) face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

func closeFaces(faces ...font.Face) {
	for _, f := range faces {
		_ = f.Close()
	}
}

// drawCentered draws text horizontally centered at the given baseline.
func drawCentered(dst *image.RGBA, face font.Face, text string, width, baseline int, c color.RGBA) {
	if text == "" {
		return
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  &image.Uniform{C: c},
		Face: face,
	}
	tw := d.MeasureString(text).Ceil()
	d.Dot = fixed.P((width-tw)/2, baseline)
	d.DrawString(text)
}

func fillRect(dst *image.RGBA, x, y, w, h int, c color.RGBA) {
	rect := image.Rect(x, y, x+w, y+h)
	draw.Draw(dst, rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
}
