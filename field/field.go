// SPDX-License-Identifier: MIT

package field

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ---------- error context tags ----------

const (
	ctxAt       = "At"
	ctxSet      = "Set"
	ctxIndex    = "Index"
	ctxSlice    = "Slice"
	ctxSetSlice = "SetSlice"
)

// ---------- formatting literals ----------

const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// fieldErrorf wraps err with the method name and the offending coordinate.
func fieldErrorf(method string, coord []int, err error) error {
	return fmt.Errorf("Field.%s(%s): %w", method, joinInts(coord), err)
}

// Field is a dense row-major float64 array of fixed shape.
type Field struct {
	shape   []int     // extents per axis, all > 0
	strides []int     // row-major strides, strides[last] == 1
	data    []float64 // contiguous buffer, len == prod(shape)
}

// New allocates a zero-filled field of the given shape.
// Returns ErrBadShape if shape is empty or any extent is <= 0.
func New(shape ...int) (*Field, error) {
	n, err := volume(shape)
	if err != nil {
		return nil, err
	}

	return &Field{
		shape:   append([]int(nil), shape...),
		strides: stridesOf(shape),
		data:    make([]float64, n),
	}, nil
}

// Filled allocates a field of the given shape with every element set to v.
func Filled(v float64, shape ...int) (*Field, error) {
	f, err := New(shape...)
	if err != nil {
		return nil, err
	}
	f.Fill(v)

	return f, nil
}

// FromData builds a field over a copy of data.
// Returns ErrShapeMismatch if len(data) != prod(shape).
func FromData(shape []int, data []float64) (*Field, error) {
	n, err := volume(shape)
	if err != nil {
		return nil, err
	}
	// checked before allocating: shape may come from untrusted JSON
	if len(data) != n {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrShapeMismatch, len(data), shape)
	}

	return &Field{
		shape:   append([]int(nil), shape...),
		strides: stridesOf(shape),
		data:    append([]float64(nil), data...),
	}, nil
}

// Shape returns a copy of the extents.
func (f *Field) Shape() []int { return append([]int(nil), f.shape...) }

// Dims returns the number of axes.
func (f *Field) Dims() int { return len(f.shape) }

// Len returns the total element count.
func (f *Field) Len() int { return len(f.data) }

// Data returns the live row-major buffer.
func (f *Field) Data() []float64 { return f.data }

// Index returns the flat offset of coord, or ErrOutOfRange.
func (f *Field) Index(coord ...int) (int, error) {
	off, ok := offsetOf(f.shape, f.strides, coord)
	if !ok {
		return 0, fieldErrorf(ctxIndex, coord, ErrOutOfRange)
	}

	return off, nil
}

// At returns the value at coord.
func (f *Field) At(coord ...int) (float64, error) {
	off, ok := offsetOf(f.shape, f.strides, coord)
	if !ok {
		return 0, fieldErrorf(ctxAt, coord, ErrOutOfRange)
	}

	return f.data[off], nil
}

// Set stores v at coord.
func (f *Field) Set(v float64, coord ...int) error {
	off, ok := offsetOf(f.shape, f.strides, coord)
	if !ok {
		return fieldErrorf(ctxSet, coord, ErrOutOfRange)
	}
	f.data[off] = v

	return nil
}

// Fill sets every element to v.
func (f *Field) Fill(v float64) {
	for i := range f.data {
		f.data[i] = v
	}
}

// Clone returns a deep copy.
func (f *Field) Clone() *Field {
	return &Field{
		shape:   append([]int(nil), f.shape...),
		strides: append([]int(nil), f.strides...),
		data:    append([]float64(nil), f.data...),
	}
}

// Add accumulates o into f elementwise.
// Returns ErrShapeMismatch if the shapes differ.
func (f *Field) Add(o *Field) error {
	if !sameShape(f.shape, o.shape) {
		return fmt.Errorf("%w: %v vs %v", ErrShapeMismatch, f.shape, o.shape)
	}
	for i, v := range o.data {
		f.data[i] += v
	}

	return nil
}

// Range returns the minimum and maximum finite values.
// A field with no finite values reports (0, 0).
func (f *Field) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range f.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo > hi {
		return 0, 0
	}

	return lo, hi
}

// Slice copies layer z along the last axis of a 3D field into a new 2D field.
func (f *Field) Slice(z int) (*Field, error) {
	if len(f.shape) != 3 {
		return nil, fmt.Errorf("Field.%s(%d): %w: need 3 axes, have %d", ctxSlice, z, ErrBadShape, len(f.shape))
	}
	depth := f.shape[2]
	if z < 0 || z >= depth {
		return nil, fmt.Errorf("Field.%s(%d): %w", ctxSlice, z, ErrOutOfRange)
	}
	out, err := New(f.shape[0], f.shape[1])
	if err != nil {
		return nil, err
	}
	for i := range out.data {
		out.data[i] = f.data[i*depth+z]
	}

	return out, nil
}

// SetSlice writes a 2D layer into slot z along the last axis of a 3D field.
func (f *Field) SetSlice(z int, layer *Field) error {
	if len(f.shape) != 3 {
		return fmt.Errorf("Field.%s(%d): %w: need 3 axes, have %d", ctxSetSlice, z, ErrBadShape, len(f.shape))
	}
	depth := f.shape[2]
	if z < 0 || z >= depth {
		return fmt.Errorf("Field.%s(%d): %w", ctxSetSlice, z, ErrOutOfRange)
	}
	if !sameShape(layer.shape, f.shape[:2]) {
		return fmt.Errorf("Field.%s(%d): %w: layer %v vs %v", ctxSetSlice, z, ErrShapeMismatch, layer.shape, f.shape[:2])
	}
	for i, v := range layer.data {
		f.data[i*depth+z] = v
	}

	return nil
}

// String prints one bracketed row per run of the last axis.
func (f *Field) String() string {
	var b strings.Builder
	width := f.shape[len(f.shape)-1]
	for base := 0; base < len(f.data); base += width {
		b.WriteString(_fmtRowOpen)
		for j := 0; j < width; j++ {
			b.WriteString(fmt.Sprintf("%g", f.data[base+j]))
			if j+1 < width {
				b.WriteString(_fmtSep)
			}
		}
		b.WriteString(_fmtRowClose)
	}

	return b.String()
}

// wireField is the JSON layout shared by Field and Mask.
type wireField[T any] struct {
	Shape []int `json:"shape"`
	Data  []T   `json:"data"`
}

// MarshalJSON encodes the field as {"shape": [...], "data": [...]}.
func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireField[float64]{Shape: f.shape, Data: f.data})
}

// UnmarshalJSON decodes the layout produced by MarshalJSON.
func (f *Field) UnmarshalJSON(b []byte) error {
	var w wireField[float64]
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	g, err := FromData(w.Shape, w.Data)
	if err != nil {
		return err
	}
	*f = *g

	return nil
}

// ---------- shape helpers ----------

func volume(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("%w: no axes", ErrBadShape)
	}
	n := 1
	for i, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("%w: axis %d has extent %d", ErrBadShape, i, d)
		}
		if n > math.MaxInt/d {
			return 0, fmt.Errorf("%w: %v overflows", ErrBadShape, shape)
		}
		n *= d
	}

	return n, nil
}

func stridesOf(shape []int) []int {
	s := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= shape[i]
	}

	return s
}

func offsetOf(shape, strides, coord []int) (int, bool) {
	if len(coord) != len(shape) {
		return 0, false
	}
	off := 0
	for i, c := range coord {
		if c < 0 || c >= shape[i] {
			return 0, false
		}
		off += c * strides[i]
	}

	return off, true
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}

	return strings.Join(parts, ",")
}
