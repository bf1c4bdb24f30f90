// Package poster rasterizes quotes into downloadable PNG images sized
// for phone screens. Rendering is an explicit two-phase operation:
// BuildLayout measures and places every text line, then Rasterize
// paints the finished layout. Keeping the phases separate means a
// failed or empty layout is an error the caller sees, never a blank
// image.
package poster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/aqwal-app/aqwal/internal/domain"
	"github.com/aqwal-app/aqwal/internal/ports"
)

const (
	defaultWidth  = 1080
	defaultHeight = 1920
	defaultScale  = 1

	// Text area margins as a fraction of the canvas width.
	horizontalMarginRatio = 0.12

	// Base font sizes at scale 1, in points.
	quoteFontSize  = 64.0
	authorFontSize = 40.0

	// Vertical gap between wrapped quote lines, relative to font size.
	lineSpacing = 1.5

	// Gap between the quote block and the author line, in quote lines.
	authorGap = 2.0
)

// Config configures the renderer.
type Config struct {
	// Width and Height are the logical canvas dimensions in pixels.
	Width  int
	Height int

	// Scale multiplies the canvas and font sizes for higher-density
	// output. Must be at least 1.
	Scale int

	// FontPath optionally points at a TTF file. Arabic text needs a
	// font with Arabic glyph coverage; without one the built-in Latin
	// fallback is used and non-Latin glyphs render as tofu.
	FontPath string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// Renderer implements ports.PosterRenderer.
type Renderer struct {
	width  int
	height int
	scale  int
	font   *opentype.Font
	logger *slog.Logger

	// now is overridable for deterministic filenames in tests.
	now func() time.Time
}

// New creates a poster renderer. The configured font file is loaded
// once at construction; a missing or unparsable file falls back to the
// bundled Go Regular face with a warning.
func New(cfg Config) (*Renderer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "poster.Renderer"))

	width := cfg.Width
	if width <= 0 {
		width = defaultWidth
	}

	height := cfg.Height
	if height <= 0 {
		height = defaultHeight
	}

	scale := cfg.Scale
	if scale < 1 {
		scale = defaultScale
	}

	fnt, err := loadFont(cfg.FontPath, logger)
	if err != nil {
		return nil, err
	}

	return &Renderer{
		width:  width,
		height: height,
		scale:  scale,
		font:   fnt,
		logger: logger,
		now:    time.Now,
	}, nil
}

func loadFont(path string, logger *slog.Logger) (*opentype.Font, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			fnt, parseErr := opentype.Parse(data)
			if parseErr == nil {
				return fnt, nil
			}

			logger.Warn("configured font failed to parse, using fallback",
				slog.String("path", path),
				slog.Any("error", parseErr))
		} else {
			logger.Warn("configured font not readable, using fallback",
				slog.String("path", path),
				slog.Any("error", err))
		}
	}

	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing fallback font: %w", err)
	}

	return fnt, nil
}

// Render lays out and rasterizes the quote.
// Implements ports.PosterRenderer.
func (r *Renderer) Render(ctx context.Context, quote domain.Quote) (*ports.Poster, error) {
	layout, err := r.BuildLayout(quote)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := r.Rasterize(layout)
	if err != nil {
		return nil, err
	}

	r.logger.DebugContext(ctx, "poster rendered",
		slog.String("quote_id", quote.ID),
		slog.Int("lines", len(layout.Lines)),
		slog.Int("bytes", len(data)))

	return &ports.Poster{
		PNG:      data,
		Filename: fmt.Sprintf("quote-%d.png", r.now().UnixMilli()),
	}, nil
}

// Line is a single positioned line of text in a finished layout.
type Line struct {
	Text string
	X    fixed.Int26_6
	Y    fixed.Int26_6
	Face font.Face
}

// Layout is the measured, positioned form of a poster before painting.
type Layout struct {
	Width  int
	Height int
	Lines  []Line
}

// BuildLayout measures the quote and produces a complete layout:
// the quote text wrapped and centered in the upper two thirds of the
// canvas, the author line beneath it. Text is reordered into visual
// order so right-to-left scripts paint correctly.
func (r *Renderer) BuildLayout(quote domain.Quote) (*Layout, error) {
	if strings.TrimSpace(quote.Text) == "" {
		return nil, domain.NewValidationError("text", "cannot render an empty quote")
	}

	width := r.width * r.scale
	height := r.height * r.scale

	quoteFace, err := r.newFace(quoteFontSize)
	if err != nil {
		return nil, err
	}

	authorFace, err := r.newFace(authorFontSize)
	if err != nil {
		return nil, err
	}

	margin := int(float64(width) * horizontalMarginRatio)
	maxLineWidth := fixed.I(width - 2*margin)

	wrapped := wrapText(quote.Text, quoteFace, maxLineWidth)
	if len(wrapped) == 0 {
		return nil, domain.NewValidationError("text", "no lines survived layout")
	}

	layout := &Layout{Width: width, Height: height}

	lineHeight := int(quoteFontSize * lineSpacing * float64(r.scale))
	blockHeight := lineHeight * len(wrapped)

	// Center the quote block vertically, biased slightly upward to
	// leave room for the author line.
	startY := (height-blockHeight)/2 - lineHeight/2
	if startY < lineHeight {
		startY = lineHeight
	}

	y := startY
	for _, line := range wrapped {
		visual := visualOrder(line)
		lineWidth := font.MeasureString(quoteFace, visual)

		layout.Lines = append(layout.Lines, Line{
			Text: visual,
			X:    (fixed.I(width) - lineWidth) / 2,
			Y:    fixed.I(y),
			Face: quoteFace,
		})

		y += lineHeight
	}

	author := visualOrder("— " + quote.Author)
	authorWidth := font.MeasureString(authorFace, author)

	layout.Lines = append(layout.Lines, Line{
		Text: author,
		X:    (fixed.I(width) - authorWidth) / 2,
		Y:    fixed.I(y + int(authorGap*float64(lineHeight))/2),
		Face: authorFace,
	})

	return layout, nil
}

// Rasterize paints a finished layout onto the gradient background and
// encodes it as PNG.
func (r *Renderer) Rasterize(layout *Layout) ([]byte, error) {
	if layout == nil || len(layout.Lines) == 0 {
		return nil, domain.NewValidationError("layout", "nothing to rasterize")
	}

	img := image.NewRGBA(image.Rect(0, 0, layout.Width, layout.Height))
	paintGradient(img)

	for _, line := range layout.Lines {
		drawer := &font.Drawer{
			Dst:  img,
			Src:  image.White,
			Face: line.Face,
			Dot:  fixed.Point26_6{X: line.X, Y: line.Y},
		}
		drawer.DrawString(line.Text)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding poster: %w", err)
	}

	return buf.Bytes(), nil
}

func (r *Renderer) newFace(size float64) (font.Face, error) {
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size * float64(r.scale),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("creating font face: %w", err)
	}

	return face, nil
}

// gradientTop and gradientBottom are the poster background colors,
// blended vertically.
var (
	gradientTop    = color.RGBA{R: 0x1f, G: 0x29, B: 0x4d, A: 0xff}
	gradientBottom = color.RGBA{R: 0x6d, G: 0x3a, B: 0x82, A: 0xff}
)

func paintGradient(img *image.RGBA) {
	bounds := img.Bounds()
	height := bounds.Dy()

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		t := float64(y-bounds.Min.Y) / float64(height-1)
		c := color.RGBA{
			R: lerp(gradientTop.R, gradientBottom.R, t),
			G: lerp(gradientTop.G, gradientBottom.G, t),
			B: lerp(gradientTop.B, gradientBottom.B, t),
			A: 0xff,
		}

		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}
