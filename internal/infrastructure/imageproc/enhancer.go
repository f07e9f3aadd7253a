package imageproc

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// Config controls the OCR preprocessing pipeline
type Config struct {
	// Images whose narrower side is below MinSide are upscaled so that side
	// becomes TargetSide; MaxSide caps the longer side while upscaling.
	MinSide    int
	TargetSide int
	MaxSide    int

	SharpenSigma float64
	// ClipPercent is the share of darkest and brightest pixels ignored when
	// stretching contrast.
	ClipPercent float64
}

// DefaultConfig mirrors the pipeline used for scanned invoices
func DefaultConfig() Config {
	return Config{
		MinSide:      1000,
		TargetSide:   2000,
		MaxSide:      8000,
		SharpenSigma: 1.0,
		ClipPercent:  0.5,
	}
}

// Enhancer prepares invoice photos and scans for OCR: grayscale, contrast
// stretch, sharpen and upscale small images. The output is PNG.
type Enhancer struct {
	cfg    Config
	logger *zap.Logger
}

// NewEnhancer creates an image enhancer
func NewEnhancer(cfg Config, logger *zap.Logger) *Enhancer {
	return &Enhancer{cfg: cfg, logger: logger}
}

// Enhance returns the processed image encoded as PNG
func (e *Enhancer) Enhance(ctx context.Context, data []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img := imaging.Grayscale(src)
	img = stretchContrast(img, e.cfg.ClipPercent)
	if e.cfg.SharpenSigma > 0 {
		img = imaging.Sharpen(img, e.cfg.SharpenSigma)
	}

	bounds := img.Bounds()
	if w, h, ok := e.upscaleSize(bounds.Dx(), bounds.Dy()); ok {
		img = imaging.Resize(img, w, h, imaging.Lanczos)
		e.logger.Debug("Upscaled image for OCR",
			zap.Int("from_width", bounds.Dx()),
			zap.Int("from_height", bounds.Dy()),
			zap.Int("to_width", w),
			zap.Int("to_height", h))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Enhancer) upscaleSize(w, h int) (int, int, bool) {
	narrow, wide := w, h
	if h < w {
		narrow, wide = h, w
	}
	if narrow == 0 || narrow >= e.cfg.MinSide || e.cfg.TargetSide <= narrow {
		return 0, 0, false
	}

	scale := float64(e.cfg.TargetSide) / float64(narrow)
	if e.cfg.MaxSide > 0 && float64(wide)*scale > float64(e.cfg.MaxSide) {
		scale = float64(e.cfg.MaxSide) / float64(wide)
	}
	if scale <= 1 {
		return 0, 0, false
	}
	return int(math.Round(float64(w) * scale)), int(math.Round(float64(h) * scale)), true
}

// stretchContrast maps the luminance range found in img, ignoring clip
// percent at both ends, onto 0-255.
func stretchContrast(img *image.NRGBA, clip float64) *image.NRGBA {
	var hist [256]int
	total := 0
	for i := 0; i+3 < len(img.Pix); i += 4 {
		hist[img.Pix[i]]++
		total++
	}
	if total == 0 {
		return img
	}

	cut := int(float64(total) * clip / 100)
	lo, hi := 0, 255
	for acc := 0; lo < 255; lo++ {
		acc += hist[lo]
		if acc > cut {
			break
		}
	}
	for acc := 0; hi > 0; hi-- {
		acc += hist[hi]
		if acc > cut {
			break
		}
	}
	if hi <= lo {
		return img
	}

	scale := 255.0 / float64(hi-lo)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: stretch(c.R, lo, scale),
			G: stretch(c.G, lo, scale),
			B: stretch(c.B, lo, scale),
			A: c.A,
		}
	})
}

func stretch(v uint8, lo int, scale float64) uint8 {
	x := (float64(v) - float64(lo)) * scale
	switch {
	case x <= 0:
		return 0
	case x >= 255:
		return 255
	}
	return uint8(x + 0.5)
}
