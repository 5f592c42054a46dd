package gridgraph

import (
	"container/heap"
	"context"

	"github.com/katalvlaran/lvgrid/internal/workpool"
)

// solveHeap runs Dijkstra from src. dist and pred must be initialized by solve.
func (e *engine) solveHeap(ctx context.Context, src int, dist []float64, pred []int) error {
	r := &runner{
		e:       e,
		dist:    dist,
		pred:    pred,
		visited: make([]bool, len(dist)),
		pq:      make(nodePQ, 0, 64),
	}
	r.init(src)

	return r.process(ctx)
}

// runner holds the mutable state for a single Dijkstra execution.
type runner struct {
	e       *engine
	dist    []float64 // best known distance per cell
	pred    []int     // predecessor per cell
	visited []bool    // finalized cells
	pq      nodePQ    // lazy min-heap
}

// init pushes the source with distance 0.
func (r *runner) init(src int) {
	heap.Init(&r.pq)
	heap.Push(&r.pq, &nodeItem{id: src, dist: 0})
}

// process pops cells in order of distance and relaxes their edges.
// Stale heap entries are skipped via visited.
func (r *runner) process(ctx context.Context) error {
	for r.pq.Len() > 0 {
		item := heap.Pop(&r.pq).(*nodeItem)
		u := item.id
		if r.visited[u] {
			continue
		}
		if err := workpool.Alive(ctx); err != nil {
			return err
		}
		r.visited[u] = true
		r.relax(u)
	}

	return nil
}

// relax improves every neighbor reachable through u and pushes it again.
func (r *runner) relax(u int) {
	du := r.dist[u]
	r.e.neighbors(u, func(v int, w float64) {
		if r.visited[v] {
			return
		}
		nd := du + w
		// strict: equal distances keep the first predecessor found
		if nd >= r.dist[v] {
			return
		}
		r.dist[v] = nd
		r.pred[v] = u
		heap.Push(&r.pq, &nodeItem{id: v, dist: nd})
	})
}

// nodeItem is a cell and its tentative distance.
type nodeItem struct {
	id   int
	dist float64
}

// nodePQ is a min-heap of *nodeItem ordered by dist, ties by id.
type nodePQ []*nodeItem

// Len returns the number of items in the heap.
func (pq nodePQ) Len() int { return len(pq) }

// Less orders by distance, then by cell index for deterministic pops.
func (pq nodePQ) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}

	return pq[i].id < pq[j].id
}

// Swap swaps two elements in the heap.
func (pq nodePQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

// Push adds x, which must be a *nodeItem.
func (pq *nodePQ) Push(x interface{}) { *pq = append(*pq, x.(*nodeItem)) }

// Pop removes and returns the last element.
func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]

	return item
}
