package listquery

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

const (
	// DefaultPageSize is used when Config.InitialPageSize is not positive.
	DefaultPageSize = 10
	// DefaultDebounce is the quiet period filter and search input must reach
	// before it is reflected in the params.
	DefaultDebounce = 300 * time.Millisecond
)

// Phase is the debounce state of a controller.
type Phase int

const (
	// Idle means no debounce timer is pending.
	Idle Phase = iota
	// Debouncing means at least one debounced field has an unsettled change.
	Debouncing
)

func (p Phase) String() string {
	if p == Debouncing {
		return "debouncing"
	}
	return "idle"
}

// Config configures a Controller. The zero value is usable.
type Config struct {
	InitialPageIndex int
	InitialPageSize  int
	InitialSort      Sorting
	// InitialFilters and InitialSearch seed the state without a debounce delay.
	InitialFilters map[string]FilterValue
	InitialSearch  string
	// Columns restricts which columns may be sorted and filtered. When empty,
	// any column id is accepted.
	Columns  []Column
	Debounce time.Duration
	Logger   *slog.Logger
}

// Controller owns the state of one list view. All methods are safe for
// concurrent use. Listener callbacks run serially on a dedicated goroutine in
// emission order, so a callback may call back into the controller.
type Controller struct {
	wait    time.Duration
	columns map[string]Column
	log     *slog.Logger

	mu        sync.Mutex
	raw       State
	filters   debounced[map[string]FilterValue]
	search    debounced[string]
	emitted   Params
	listeners []listener
	nextID    uint64
	closed    bool

	dispatch *dispatcher
}

type listener struct {
	id uint64
	fn func(Params)
}

// New creates a controller from cfg. It performs no I/O and cannot fail.
func New(cfg Config) *Controller {
	if cfg.InitialPageSize <= 0 {
		cfg.InitialPageSize = DefaultPageSize
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	c := &Controller{
		wait: cfg.Debounce,
		log:  cfg.Logger,
		raw: State{
			PageIndex: max(cfg.InitialPageIndex, 0),
			PageSize:  cfg.InitialPageSize,
			Sorting:   slices.Clone(cfg.InitialSort),
		},
		dispatch: newDispatcher(),
	}
	if len(cfg.Columns) > 0 {
		c.columns = make(map[string]Column, len(cfg.Columns))
		for _, col := range cfg.Columns {
			c.columns[col.ID] = col
		}
		c.raw.Sorting = c.sortable(c.raw.Sorting)
	}

	c.raw.ColumnFilters = make(map[string]FilterValue)
	for id, v := range cfg.InitialFilters {
		if v = v.normalize(); len(v) > 0 && c.filterable(id) {
			c.raw.ColumnFilters[id] = v
		}
	}
	c.raw.GlobalFilter = cfg.InitialSearch

	c.filters.value = cloneFilters(c.raw.ColumnFilters)
	c.search.value = c.raw.GlobalFilter
	c.emitted = DeriveParams(c.settledLocked())
	return c
}

// CurrentParams returns the params derived from the debounced state.
func (c *Controller) CurrentParams() Params {
	c.mu.Lock()
	defer c.mu.Unlock()
	return DeriveParams(c.settledLocked())
}

// State returns a snapshot of the raw, undebounced state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.raw.Clone()
}

// Phase reports whether a debounce timer is pending.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.filters.pending() || c.search.pending() {
		return Debouncing
	}
	return Idle
}

// Debouncing reports whether a debounce timer is pending.
func (c *Controller) Debouncing() bool {
	return c.Phase() == Debouncing
}

// OnParamsChange registers fn. fn is invoked once right away with the current
// params and then once for every settled change. The returned function
// unregisters fn; invocations already queued for it are skipped.
func (c *Controller) OnParamsChange(fn func(Params)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	l := listener{id: c.nextID, fn: fn}
	c.listeners = append(c.listeners, l)
	if !c.closed {
		c.enqueueLocked(l, DeriveParams(c.settledLocked()))
	}

	var once sync.Once
	return func() {
		once.Do(func() { c.removeListener(l.id) })
	}
}

// SetPage moves to the zero-based page index i. Negative values are clamped to 0.
func (c *Controller) SetPage(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i = max(i, 0)
	if c.raw.PageIndex == i {
		return
	}
	c.raw.PageIndex = i
	c.recomputeLocked()
}

// SetPageSize changes the page size. Values below 1 are ignored.
func (c *Controller) SetPageSize(n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.raw.PageSize == n {
		return
	}
	c.raw.PageSize = n
	c.recomputeLocked()
}

// SetSort replaces the sorting. Fields on columns that are not sortable are dropped.
func (c *Controller) SetSort(s Sorting) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s = c.sortable(s)
	if slices.Equal(c.raw.Sorting, s) {
		return
	}
	c.raw.Sorting = s
	c.recomputeLocked()
}

// ToggleSort cycles a column through ascending, descending and unsorted, making
// it the only sort field.
func (c *Controller) ToggleSort(id string) {
	c.SetSort(c.State().Sorting.Toggle(id))
}

// SetColumnFilter sets or clears (empty v) the filter on column id. Changes
// are debounced. Filters on columns that are not filterable are ignored.
func (c *Controller) SetColumnFilter(id string, v FilterValue) {
	if id == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.filterable(id) {
		return
	}

	v = v.normalize()
	cur, ok := c.raw.ColumnFilters[id]
	switch {
	case len(v) == 0 && !ok:
		return
	case len(v) == 0:
		delete(c.raw.ColumnFilters, id)
	case slices.Equal(cur, v):
		return
	default:
		c.raw.ColumnFilters[id] = slices.Clone(v)
	}
	c.filters.restart(c.wait, c.settleFilters)
}

// SetGlobalFilter sets the free-text search term. Changes are debounced.
func (c *Controller) SetGlobalFilter(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.raw.GlobalFilter == term {
		return
	}
	c.raw.GlobalFilter = term
	c.search.restart(c.wait, c.settleSearch)
}

// Refetch invokes every listener with the params of the raw state, skipping
// any pending debounce delay. Each call issues one invocation per listener even
// when nothing changed.
func (c *Controller) Refetch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.filters.flush(cloneFilters(c.raw.ColumnFilters))
	c.search.flush(c.raw.GlobalFilter)

	p := DeriveParams(c.settledLocked())
	c.emitted = p
	c.log.Debug("list refetch", slog.String("params", p.Encode()))
	for _, l := range c.listeners {
		c.enqueueLocked(l, p)
	}
}

// Close stops pending timers and the callback goroutine. Callbacks that have
// not started yet are dropped. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.filters.stop()
	c.search.stop()
	c.listeners = nil
	c.mu.Unlock()

	c.dispatch.stop()
}

func (c *Controller) settleFilters(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.filters.settle(gen, cloneFilters(c.raw.ColumnFilters)) {
		return
	}
	c.recomputeLocked()
}

func (c *Controller) settleSearch(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.search.settle(gen, c.raw.GlobalFilter) {
		return
	}
	c.recomputeLocked()
}

// settledLocked is the raw state with the debounced fields replaced by their shadows.
func (c *Controller) settledLocked() State {
	s := c.raw
	s.ColumnFilters = c.filters.value
	s.GlobalFilter = c.search.value
	return s
}

// recomputeLocked derives params and notifies listeners if they changed.
func (c *Controller) recomputeLocked() {
	if c.closed {
		return
	}
	p := DeriveParams(c.settledLocked())
	if p.Equal(c.emitted) {
		return
	}
	c.emitted = p
	c.log.Debug("list params changed", slog.String("params", p.Encode()))
	for _, l := range c.listeners {
		c.enqueueLocked(l, p)
	}
}

func (c *Controller) enqueueLocked(l listener, p Params) {
	c.dispatch.push(func() {
		if c.registered(l.id) {
			l.fn(p.Clone())
		}
	})
}

func (c *Controller) registered(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.ContainsFunc(c.listeners, func(l listener) bool { return l.id == id })
}

func (c *Controller) removeListener(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = slices.DeleteFunc(c.listeners, func(l listener) bool { return l.id == id })
}

func (c *Controller) sortable(s Sorting) Sorting {
	if c.columns == nil {
		return slices.Clone(s)
	}
	var out Sorting
	for _, f := range s {
		if col, ok := c.columns[f.ID]; ok && col.Sortable {
			out = append(out, f)
		}
	}
	return out
}

func (c *Controller) filterable(id string) bool {
	if c.columns == nil {
		return true
	}
	col, ok := c.columns[id]
	return ok && col.Filterable
}
