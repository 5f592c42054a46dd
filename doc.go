// Package lvgrid analyzes occupancy grids: 2D floor plans and 3D voxel
// volumes made of solid and void cells.
//
// 🚀 What is in the box?
//
//	• Visibility: isovists by discrete ray casting, per-cell visibility maps
//	• Movement: shortest-path distance fields, routes, closeness centrality,
//	  traffic (how many shortest paths cross a cell), free-space components
//	• Light: self-shadowing of solid voxels under a directional light
//	• Proximity: distance to the nearest solid cell and discrete Voronoi ownership
//
// Every engine takes an immutable *grid.Grid and returns a fresh *field.Field
// of the same shape; engines never call each other.
//
// Packages:
//
//	field/      - dense row-major float64 fields and boolean masks
//	grid/       - occupancy grid, coordinates, set operations, facade metrics
//	isovist/    - visibility from a point, visibility and collision maps
//	gridgraph/  - 8/4-connected grid graph: distances, paths, centrality, traffic
//	shadow/     - 3D directional shadow casting
//	proximity/  - nearest-solid distance and Voronoi fields (k-d tree or brute force)
//	layers/     - run a 2D analysis over every z layer of a volume
//	render/     - hue ramp and PNG output
//
// Binaries: cmd/lvgrid runs one JSON job; cmd/lvgridd serves the same jobs
// over HTTP and WebSocket.
//
// Quick ASCII example (# solid, . void, isovist from o):
//
//	. . . . .
//	. o . . .
//	. . # . .
//	. . . . .    cells behind # seen from o stay hidden
//
// Options follow one pattern everywhere: WithContext for cancellation,
// WithWorkers for parallel chunks, WithProgress for serialized progress
// callbacks, plus engine-specific switches.
package lvgrid
