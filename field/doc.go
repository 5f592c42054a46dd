// SPDX-License-Identifier: MIT

// Package field provides the dense value types returned by every lvgrid engine.
//
// A Field is an N-dimensional float64 array stored in one contiguous
// row-major buffer: for shape (d0, d1, ..., dn) the flat offset of
// (c0, c1, ..., cn) is ((c0*d1 + c1)*d2 + ...)*dn + cn. A Mask is the
// boolean counterpart with the same layout.
//
// Public accessors never panic on bad input. At/Set return ErrOutOfRange
// wrapped with the method name and coordinate; constructors return
// ErrBadShape for empty or non-positive shapes.
//
// Data() exposes the live buffer so that engines can fill large fields in
// tight loops without per-cell bounds checks. Callers that only read
// results should treat it as read-only.
//
// Complexity quicksheet:
//   - New/Filled/Clone: O(n); At/Set/Index: O(dims); Add: O(n); Slice: O(n/depth).
package field
