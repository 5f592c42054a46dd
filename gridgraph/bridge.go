package gridgraph

import (
	"container/list"
	"math"

	"github.com/katalvlaran/lvgrid/grid"
	"github.com/katalvlaran/lvgrid/internal/workpool"
)

// Bridge finds the fewest solid cells that must be opened to connect source
// to target. It returns the connecting route as flat indices (both ends
// included) and the number of solid cells on it. Cells already connected
// through free space cost 0.
//
// Behavior:
//  1. Validate source (free) and target (free).
//  2. 0–1 BFS from source under the configured connectivity:
//     • moving into a free cell  → cost 0
//     • moving into a solid cell → cost 1
//  3. Stop when target is popped.
//  4. Reconstruct the route via predecessors.
//
// Complexity: O(W·H·d) time, O(W·H) memory.
func Bridge(g *grid.Grid, source, target grid.Coord, opts ...Option) (path []int, cost int, err error) {
	cfg, err := buildOptions(opts)
	if err != nil {
		return nil, 0, err
	}
	e, err := newEngine(g, cfg)
	if err != nil {
		return nil, 0, err
	}
	src, err := e.source(source)
	if err != nil {
		return nil, 0, err
	}
	dst, err := checkTarget(g, target)
	if err != nil {
		return nil, 0, err
	}

	n := g.Len()
	dist := make([]int, n)
	prev := make([]int, n)
	for i := range dist {
		dist[i] = math.MaxInt
		prev[i] = NoPredecessor
	}
	dist[src] = 0

	// 0–1 BFS: deque processes cost 0 at front, cost 1 at back
	dq := list.New()
	dq.PushFront(src)
	for dq.Len() > 0 {
		if err = workpool.Alive(cfg.Ctx); err != nil {
			return nil, 0, err
		}
		el := dq.Front()
		dq.Remove(el)
		u := el.Value.(int)
		if u == dst {
			break
		}
		r, c := u/e.cols, u%e.cols
		for _, m := range e.moves {
			nr, nc := r+m.dr, c+m.dc
			if nr < 0 || nr >= e.rows || nc < 0 || nc >= e.cols {
				continue
			}
			v := nr*e.cols + nc
			step := 0
			if g.SolidAt(v) {
				step = 1
			}
			nd := dist[u] + step
			if nd < dist[v] {
				dist[v] = nd
				prev[v] = u
				if step == 0 {
					dq.PushFront(v)
				} else {
					dq.PushBack(v)
				}
			}
		}
	}

	// target is always reachable through solids; walk back to the source
	for at := dst; at != NoPredecessor; at = prev[at] {
		path = append(path, at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, dist[dst], nil
}
