// Package gridgraph treats the free cells of a 2D occupancy grid as a
// weighted graph and derives reachability fields from it.
//
// What:
//
//   - Each free cell is a node. It is joined to its in-bounds free neighbors
//     in the fixed order NW, N, NE, E, SE, S, SW, W: orthogonal edges weigh 1,
//     diagonal edges weigh √2. Solid cells are never nodes.
//   - ShortestPaths builds a distance field and predecessor tree from one source.
//   - ShortestPath draws the route between two cells as a mask.
//   - Centrality gives every free cell its mean distance to all cells it reaches.
//   - Traffic counts how many shortest paths (over all origin/target pairs)
//     run through every cell.
//   - Components lists connected regions of free space.
//   - Bridge finds the fewest solid cells to open so that two regions connect.
//
// Solvers:
//
//   - SolverFrontier (default): label-correcting relaxation in waves. Every
//     wave relaxes the cells improved by the previous wave; the run ends
//     when a wave improves nothing.
//   - SolverHeap: Dijkstra with a binary heap and lazy decrease-key.
//
// Both produce the same distances. Predecessors may differ where several
// shortest paths tie.
//
// Complexity:
//
//   - ShortestPaths: O(F·d·waves) frontier, O(F·d·log F) heap; F free cells, d ≤ 8.
//   - Centrality, Traffic: one ShortestPaths per free cell, O(F²) work.
//   - Components, Bridge: O(W×H×d).
//
// Options:
//
//   - WithContext, WithWorkers, WithProgress, WithSolver, WithConnectivity.
//
// Errors:
//
//   - grid.ErrInvalidDimension: the grid is not 2D.
//   - grid.ErrOutOfBounds: a coordinate is outside the grid.
//   - ErrInvalidSource: the source cell is solid.
//   - ErrUnreachable: the target cannot be reached from the source.
//   - ErrOptionViolation: an option value is invalid.
package gridgraph
