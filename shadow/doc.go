// Package shadow marks self-shadowed voxels of a 3D occupancy volume under a
// directional light.
//
// Field collects the solid voxels, sorts them by their projection onto the
// light vector (stable, so ties keep row-major order) and, for every voxel
// not yet in shadow, traces a discrete ray along the light through the
// volume. Every voxel after the start of a ray is marked; a ray ends when it
// leaves the volume. The result is the marked canvas AND the solid mask: a
// solid voxel is shadowed when a ray from another solid voxel passes through
// it.
//
// Rays use an axis-dominant 3D Bresenham walk: the axis with the largest
// |component| advances by one voxel per step, and each of the two other axes
// accumulates |component/driving| and advances by one (in the direction of
// its sign) whenever the accumulator reaches 0.5.
//
// Map sums Field over several lights; lights are independent and may run in
// parallel with WithWorkers. One light's canvas is only touched by one
// goroutine.
package shadow
