// Package grid defines the occupancy grid shared by every lvgrid engine.
//
// A Grid is a 2D floor plan (rows × cols) or a 3D voxel volume (x × y × z)
// whose cells are either solid or void. Construction normalizes any numeric
// input: a cell is solid iff its value is > 0. The original positive value of
// each solid cell is kept as its label; void cells carry label 0.
//
// Coordinates are array index order: (row, col) in 2D and (x, y, z) in 3D.
// Storage is row-major, so the flat index of (x, y, z) is (x*ny + y)*nz + z.
// For 3D volumes the z axis is the layer axis: Layer(z) cuts a 2D plan out of
// the volume and Lift wraps a plan into a one-layer volume.
//
// A Grid is immutable once built. Engines receive it by pointer and may read
// it from any number of goroutines.
//
// Besides accessors the package offers boolean set operations (Union,
// Intersection, Difference), cyclic translation (Shift) and facade metrics
// (FacadeCount, FacadeMap, Compactness).
package grid
