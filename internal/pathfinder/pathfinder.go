// Package pathfinder runs path searches on a worker pool and hands results
// back on the caller's goroutine.
package pathfinder

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/jumppath/internal/gridmap"
	"github.com/udisondev/jumppath/internal/pathfinding"
)

const (
	// idSpace bounds request ids; the counter wraps to 0.
	idSpace = 1 << 30

	// DefaultFlushInterval is used by Run for a non-positive interval.
	DefaultFlushInterval = 16 * time.Millisecond
)

var (
	// ErrStopped is returned by Start once the pathfinder has been stopped.
	ErrStopped = errors.New("pathfinder: stopped")
	// ErrAlreadyStarted is returned by a second call to Start.
	ErrAlreadyStarted = errors.New("pathfinder: already started")
)

// Options configures a Pathfinder.
type Options struct {
	Workers   int
	Filtered  bool
	QueueSize int
}

// Request describes one path query. Positions and masses are in world units,
// Region is in grid cells. A nil Character routes a 1x1 character that cannot
// jump. An empty Region bounds the search by the level plus the jump reach.
type Request struct {
	Initial       gridmap.Vec2
	Goal          gridmap.Vec2
	Character     *pathfinding.Settings
	Region        pathfinding.Region
	DynamicMasses []gridmap.Rect
}

// Result is a found path in grid cells with the scenario of every waypoint.
// Both slices are empty when no path exists.
type Result struct {
	Path      []gridmap.Cell
	Scenarios []pathfinding.Scenario
}

// Empty reports whether the result carries no path.
func (r Result) Empty() bool {
	return len(r.Path) == 0
}

// Receiver gets the result of a request.
type Receiver interface {
	OnPath(id int, res Result)
}

// ReceiverFunc adapts a function to Receiver.
type ReceiverFunc func(id int, res Result)

// OnPath calls f.
func (f ReceiverFunc) OnPath(id int, res Result) { f(id, res) }

// Stats are cumulative request counters.
type Stats struct {
	Requests  int64
	Completed int64
	NoPath    int64
	Dropped   int64
}

type job struct {
	id       int
	grid     *pathfinding.Grid
	settings pathfinding.Settings
	region   pathfinding.Region
	initial  gridmap.Cell
	goal     gridmap.Cell
}

type delivery struct {
	id  int
	res Result
}

// Pathfinder dispatches searches to workers. Results are queued and handed to
// receivers by Flush.
type Pathfinder struct {
	opts  Options
	graph atomic.Pointer[gridmap.Graph]

	jobs     chan job
	stopCh   chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	// closed is set once no worker will read jobs again.
	closeMu sync.RWMutex
	closed  bool

	mu        sync.Mutex
	nextID    int
	receivers map[int]Receiver
	results   []delivery

	requests  atomic.Int64
	completed atomic.Int64
	noPath    atomic.Int64
	dropped   atomic.Int64
}

// New creates a stopped pathfinder.
func New(opts Options) *Pathfinder {
	opts.Workers = max(opts.Workers, 1)
	opts.QueueSize = max(opts.QueueSize, 1)

	return &Pathfinder{
		opts:      opts,
		jobs:      make(chan job, opts.QueueSize),
		stopCh:    make(chan struct{}),
		receivers: make(map[int]Receiver),
	}
}

// SetGraph replaces the graph used by subsequent requests. nil is allowed.
func (p *Pathfinder) SetGraph(g *gridmap.Graph) {
	p.graph.Store(g)
}

// Graph returns the current graph.
func (p *Pathfinder) Graph() *gridmap.Graph {
	return p.graph.Load()
}

// Start runs the workers (blocks until ctx is canceled or Stop is called).
// Jobs still queued on exit resolve to empty results.
func (p *Pathfinder) Start(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	defer p.shutdown()

	select {
	case <-p.stopCh:
		return ErrStopped
	default:
	}

	slog.Info("pathfinder started",
		"workers", p.opts.Workers,
		"queueSize", p.opts.QueueSize,
		"filtered", p.opts.Filtered)

	g, gctx := errgroup.WithContext(ctx)
	for worker := range p.opts.Workers {
		g.Go(func() error {
			return p.work(gctx, worker)
		})
	}

	err := g.Wait()
	if err != nil {
		slog.Info("pathfinder stopping", "reason", err)
	} else {
		slog.Info("pathfinder stopped")
	}
	return err
}

// Stop signals the workers to exit. Safe to call more than once.
func (p *Pathfinder) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
}

func (p *Pathfinder) shutdown() {
	p.Stop()

	p.closeMu.Lock()
	p.closed = true
	p.closeMu.Unlock()

	drained := 0
	for {
		select {
		case j := <-p.jobs:
			p.deliver(j.id, Result{})
			drained++
		default:
			if drained > 0 {
				slog.Debug("pending path requests resolved empty", "count", drained)
			}
			return
		}
	}
}

func (p *Pathfinder) work(ctx context.Context, worker int) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.stopCh:
			return nil
		case j := <-p.jobs:
			res := p.search(j)
			p.completed.Add(1)
			p.deliver(j.id, res)

			if slog.Default().Enabled(ctx, slog.LevelDebug) {
				slog.Debug("path computed", "worker", worker, "id", j.id)
			}
		}
	}
}

func (p *Pathfinder) search(j job) Result {
	path, err := pathfinding.Search(j.grid, j.settings, j.region,
		pathfinding.NewState(j.initial.X, j.initial.Y), j.goal.X, j.goal.Y)
	if err != nil {
		p.noPath.Add(1)
		return Result{}
	}

	if p.opts.Filtered {
		path = pathfinding.Filter(j.grid, path)
	}

	res := Result{
		Path:      make([]gridmap.Cell, len(path)),
		Scenarios: make([]pathfinding.Scenario, len(path)),
	}
	for i, state := range path {
		res.Path[i] = gridmap.Cell{X: state.X, Y: state.Y}
		res.Scenarios[i] = state.Scenario
	}
	return res
}

// ComputePath queues a search and returns its id. recv gets the result from
// a later Flush unless the id is canceled first. The grid snapshot, with the
// request's dynamic masses, is taken before ComputePath returns. Blocks while
// the queue is full.
func (p *Pathfinder) ComputePath(req Request, recv Receiver) int {
	p.requests.Add(1)

	p.mu.Lock()
	id := p.nextID
	p.nextID = (p.nextID + 1) % idSpace
	if recv != nil {
		p.receivers[id] = recv
	}
	p.mu.Unlock()

	graph := p.graph.Load()
	if graph == nil {
		p.deliver(id, Result{})
		return id
	}

	settings := pathfinding.DefaultSettings()
	if req.Character != nil {
		settings = req.Character.Normalize()
	}

	snapshot := graph.Snapshot()
	graph.MarkDynamicMasses(snapshot, req.DynamicMasses)

	j := job{
		id:       id,
		grid:     snapshot,
		settings: settings,
		region:   req.Region,
		initial:  graph.WorldToGraph(req.Initial),
		goal:     graph.WorldToGraph(req.Goal),
	}
	if j.region.Empty() {
		j.region = searchBounds(snapshot, settings, j.initial, j.goal)
	}

	p.closeMu.RLock()
	defer p.closeMu.RUnlock()

	if p.closed {
		p.deliver(id, Result{})
		return id
	}

	select {
	case p.jobs <- j:
	case <-p.stopCh:
		p.deliver(id, Result{})
	}
	return id
}

// searchBounds covers the grid, both endpoints and the jump reach around them.
func searchBounds(grid *pathfinding.Grid, settings pathfinding.Settings, initial, goal gridmap.Cell) pathfinding.Region {
	r := pathfinding.Region{X: initial.X, Y: initial.Y, W: 1, H: 1}
	r = r.Union(pathfinding.Region{X: goal.X, Y: goal.Y, W: 1, H: 1})
	if bounds, ok := grid.Bounds(); ok {
		r = r.Union(bounds)
	}
	return r.Grow(settings.Width+1, settings.JumpLimit()+settings.Height+1)
}

// Cancel forgets the receiver of id. The search may still run; its result is
// discarded.
func (p *Pathfinder) Cancel(id int) {
	p.mu.Lock()
	delete(p.receivers, id)
	p.mu.Unlock()
}

func (p *Pathfinder) deliver(id int, res Result) {
	p.mu.Lock()
	p.results = append(p.results, delivery{id: id, res: res})
	p.mu.Unlock()
}

// Flush hands every finished result to its receiver on the calling goroutine
// and returns how many were delivered.
func (p *Pathfinder) Flush() int {
	p.mu.Lock()
	pending := p.results
	p.results = nil
	p.mu.Unlock()

	delivered := 0
	for _, d := range pending {
		p.mu.Lock()
		recv, ok := p.receivers[d.id]
		delete(p.receivers, d.id)
		p.mu.Unlock()

		if !ok {
			p.dropped.Add(1)
			continue
		}

		recv.OnPath(d.id, d.res)
		delivered++
	}
	return delivered
}

// Run calls Flush every interval (blocks until ctx is canceled or Stop is
// called).
func (p *Pathfinder) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Flush()
			return ctx.Err()

		case <-p.stopCh:
			p.Flush()
			return nil

		case <-ticker.C:
			p.Flush()
		}
	}
}

// Stats returns the request counters.
func (p *Pathfinder) Stats() Stats {
	return Stats{
		Requests:  p.requests.Load(),
		Completed: p.completed.Load(),
		NoPath:    p.noPath.Load(),
		Dropped:   p.dropped.Load(),
	}
}
