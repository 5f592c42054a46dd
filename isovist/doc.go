// Package isovist computes discrete visibility over 2D occupancy grids.
//
// From an observer cell, one Bresenham ray is cast towards every cell of the
// grid's boundary ring (top row left to right, right column top to bottom,
// bottom row right to left, left column bottom to top). Each ray marks the
// cells it traverses as visible until it reaches a solid cell, which stops
// the ray and is not marked, or leaves the grid.
//
// Output canvases use these values:
//
//	-1  solid cell
//	 0  free, not visible
//	 1  free, visible
//	-2  observer (only with WithMarkOrigin)
//
// Map runs the cast from every free cell and stores the visible share of free
// space as a percentage. CollisionMap does the same from every solid cell,
// treating only the query cell as free. Aggregate sums several observers.
//
// Complexity:
//   - FromPoint: O(P·L) for P boundary cells and ray length L ≤ max(rows, cols).
//   - Map: O(F·P·L) for F free cells; CollisionMap: O(S·P·L) for S solid cells.
//
// Map and CollisionMap accept WithWorkers for parallel origins and
// WithContext for cancellation, checked per origin and per ray.
package isovist
