// Package proximity assigns every void cell of a 2D or 3D occupancy grid to
// its nearest solid cell.
//
// Distance is Euclidean in grid index space. Among several solid cells at
// the same minimum distance the one that comes first in row-major order wins.
//
//   - DistanceField: distance to the nearest solid cell; solid cells hold 0.
//   - VoronoiField: label of the nearest solid cell; solid cells hold their own label.
//
// A grid without solid cells yields NoSite (-1) distances and label 0 everywhere.
//
// Two interchangeable indexes answer the nearest-site queries:
//
//   - IndexKDTree (default): a gonum k-d tree over the solid cells. The query
//     finds the nearest squared distance d, then every site within d, and
//     keeps the lowest row-major index.
//   - IndexBruteForce: a scan over all solid cells, O(V·S).
//
// Squared distances between integer coordinates are exact in float64, so
// both indexes return bit-identical fields.
package proximity
