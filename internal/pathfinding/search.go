package pathfinding

import (
	"container/heap"
	"errors"
)

// ErrNoPath is returned when the frontier is exhausted before any state
// satisfies the goal test. It is a normal outcome, not a failure of the
// search itself.
var ErrNoPath = errors.New("pathfinding: no path")

// Search runs A* from initial towards (goalX, goalY) over the given grid
// snapshot. Successors outside region are never enqueued. A state reaches the
// goal when its footprint's bottom row is on goalY and spans goalX.
//
// The returned path starts with the contextualized initial state and ends
// with the first goal-satisfying state popped from the frontier.
func Search(grid *Grid, settings Settings, region Region, initial State, goalX, goalY int) ([]State, error) {
	settings = settings.Normalize()

	initial.Jump = 0
	grid.Contextualize(settings, &initial)

	start := &searchNode{state: initial}
	start.priority = heuristic(initial, goalX, goalY)

	frontier := &nodeHeap{}
	heap.Push(frontier, start)

	best := make(map[StateKey]int, 256)
	best[initial.Key()] = 0

	var (
		neighbors [MaxNeighbors]State
		seq       int
	)

	for frontier.Len() > 0 {
		current := heap.Pop(frontier).(*searchNode)

		// A cheaper route to this state was queued after this entry.
		if current.cost > best[current.state.Key()] {
			continue
		}

		if BottomRowContains(settings, current.state, goalX, goalY) {
			return current.path(), nil
		}

		n := grid.Neighbors(settings, current.state, &neighbors)
		for i := range n {
			next := neighbors[i]
			if !region.Contains(next.X, next.Y) {
				continue
			}

			cost := current.cost + grid.Cost(settings, current.state, next)
			key := next.Key()
			if prev, seen := best[key]; seen && cost >= prev {
				continue
			}
			best[key] = cost

			seq++
			heap.Push(frontier, &searchNode{
				state:    next,
				parent:   current,
				cost:     cost,
				priority: cost + heuristic(next, goalX, goalY),
				seq:      seq,
			})
		}
	}

	return nil, ErrNoPath
}

// heuristic is the Manhattan distance to the goal cell. Every edge costs at
// least one per unit of Manhattan distance covered, except ledge climbs of
// characters that cannot jump.
func heuristic(state State, goalX, goalY int) int {
	return abs(goalX-state.X) + abs(goalY-state.Y)
}

// searchNode is a frontier entry. Nodes are immutable once pushed.
type searchNode struct {
	state    State
	parent   *searchNode
	cost     int // accumulated from the initial state
	priority int // cost + heuristic
	seq      int // insertion order, breaks priority ties
	index    int // heap index
}

// path walks the parent chain and returns it initial-first.
func (n *searchNode) path() []State {
	depth := 0
	for cur := n; cur != nil; cur = cur.parent {
		depth++
	}

	path := make([]State, depth)
	for cur := n; cur != nil; cur = cur.parent {
		depth--
		path[depth] = cur.state
	}
	return path
}

// nodeHeap implements container/heap as a min-heap by priority, FIFO on ties.
type nodeHeap []*searchNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *nodeHeap) Push(x any)   { n := x.(*searchNode); n.index = len(*h); *h = append(*h, n) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[:n-1]
	return node
}
