package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/fogleman/gg"

	"github.com/katalvlaran/lvgrid/field"
)

// Fixed colors for sentinel values.
var (
	SolidColor    = color.NRGBA{R: 0x20, G: 0x20, B: 0x20, A: 0xff}
	ObserverColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

var (
	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("render: invalid option supplied")
	// ErrTooLarge is returned when the raster would exceed Options.MaxPixels.
	ErrTooLarge = errors.New("render: image too large")
)

// Option configures rendering.
type Option func(*Options)

// Options holds rendering parameters.
type Options struct {
	// CellSize is the edge length of one cell in pixels.
	CellSize int
	// Layer selects the z slice of a 3D field.
	Layer int
	// Ramp, if nil, spans the field's non-sentinel range.
	Ramp *Ramp
	// MaxPixels caps width*height of the raster; 0 means no cap.
	MaxPixels int

	err error
}

// DefaultOptions returns 8-pixel cells, layer 0 and an automatic ramp.
func DefaultOptions() Options {
	return Options{CellSize: 8}
}

// WithCellSize sets the cell edge in pixels; px must be >= 1.
func WithCellSize(px int) Option {
	return func(o *Options) {
		if px < 1 {
			o.err = fmt.Errorf("%w: cell size must be >= 1, got %d", ErrOptionViolation, px)
			return
		}
		o.CellSize = px
	}
}

// WithLayer selects the z slice drawn from a 3D field.
func WithLayer(z int) Option {
	return func(o *Options) { o.Layer = z }
}

// WithMaxPixels refuses rasters larger than n pixels; n must be >= 0.
func WithMaxPixels(n int) Option {
	return func(o *Options) {
		if n < 0 {
			o.err = fmt.Errorf("%w: max pixels must be >= 0, got %d", ErrOptionViolation, n)
			return
		}
		o.MaxPixels = n
	}
}

// WithRamp fixes the value-to-color mapping.
func WithRamp(r Ramp) Option {
	return func(o *Options) { o.Ramp = &r }
}

// Image draws f (or its selected layer) and returns the raster.
func Image(f *field.Field, opts ...Option) (image.Image, error) {
	dc, err := draw(f, opts)
	if err != nil {
		return nil, err
	}

	return dc.Image(), nil
}

// PNG draws f and encodes it as PNG to w.
func PNG(w io.Writer, f *field.Field, opts ...Option) error {
	dc, err := draw(f, opts)
	if err != nil {
		return err
	}

	return dc.EncodePNG(w)
}

func draw(f *field.Field, opts []Option) (*gg.Context, error) {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.err != nil {
		return nil, cfg.err
	}

	plan := f
	switch f.Dims() {
	case 2:
	case 3:
		var err error
		if plan, err = f.Slice(cfg.Layer); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("render: need a 2D or 3D field, got %dD", f.Dims())
	}

	shape := plan.Shape()
	rows, cols, cs := shape[0], shape[1], cfg.CellSize
	if px := float64(rows) * float64(cols) * float64(cs) * float64(cs); cfg.MaxPixels > 0 && px > float64(cfg.MaxPixels) {
		return nil, fmt.Errorf("%w: %dx%d cells at %dpx exceed %d pixels", ErrTooLarge, cols, rows, cs, cfg.MaxPixels)
	}

	ramp := cfg.Ramp
	if ramp == nil {
		r := DefaultRamp(valueRange(plan.Data()))
		ramp = &r
	}

	dc := gg.NewContext(cols*cs, rows*cs)
	data := plan.Data()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			dc.SetColor(cellColor(data[r*cols+c], ramp))
			dc.DrawRectangle(float64(c*cs), float64(r*cs), float64(cs), float64(cs))
			dc.Fill()
		}
	}

	return dc, nil
}

func cellColor(v float64, r *Ramp) color.Color {
	switch v {
	case -1:
		return SolidColor
	case -2:
		return ObserverColor
	}

	return r.Color(v)
}

// valueRange returns the min and max over non-sentinel values.
func valueRange(data []float64) (lo, hi float64) {
	first := true
	for _, v := range data {
		if v == -1 || v == -2 {
			continue
		}
		if first {
			lo, hi, first = v, v, false
			continue
		}
		lo, hi = min(lo, v), max(hi, v)
	}

	return lo, hi
}
