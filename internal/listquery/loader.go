package listquery

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// FetchFunc loads the page described by p.
type FetchFunc[T any] func(ctx context.Context, p Params) (Page[T], error)

// LoaderOption configures a Loader.
type LoaderOption[T any] func(*Loader[T])

// WithLogger sets the logger used for discarded and failed fetches.
func WithLogger[T any](log *slog.Logger) LoaderOption[T] {
	return func(l *Loader[T]) {
		if log != nil {
			l.log = log
		}
	}
}

// WithRowID enables selection bookkeeping. id must be injective over one page.
func WithRowID[T any](id func(T) string) LoaderOption[T] {
	return func(l *Loader[T]) { l.rowID = id }
}

// WithoutClamp keeps the page index unchanged when a fetch reports fewer pages
// than the index requires.
func WithoutClamp[T any]() LoaderOption[T] {
	return func(l *Loader[T]) { l.clamp = false }
}

// Loader binds a Controller to a fetch function and holds what a table view
// renders: the current rows, the total page count and a loading flag.
//
// Every fetch is tagged with a sequence number and only the response of the
// most recently started fetch is applied; earlier responses are discarded when
// they arrive. A failed fetch keeps the previous rows.
type Loader[T any] struct {
	ctl   *Controller
	fetch FetchFunc[T]
	log   *slog.Logger
	rowID func(T) string
	clamp bool

	ctx    context.Context
	cancel context.CancelFunc
	unsub  func()

	mu       sync.Mutex
	seq      uint64
	page     Page[T]
	params   Params
	loading  bool
	err      error
	selected map[string]struct{}
	watchers []func()
}

// NewLoader registers a loader on ctl. The first fetch starts immediately.
func NewLoader[T any](ctl *Controller, fetch FetchFunc[T], opts ...LoaderOption[T]) *Loader[T] {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader[T]{
		ctl:      ctl,
		fetch:    fetch,
		log:      slog.Default(),
		clamp:    true,
		ctx:      ctx,
		cancel:   cancel,
		selected: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.unsub = ctl.OnParamsChange(l.load)
	return l
}

// Controller returns the controller the loader is bound to.
func (l *Loader[T]) Controller() *Controller { return l.ctl }

// Rows returns the rows of the displayed page.
func (l *Loader[T]) Rows() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.page.Rows)
}

// TotalPages returns the page count reported with the displayed page.
func (l *Loader[T]) TotalPages() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.page.TotalPages
}

// Loading reports whether the most recently started fetch is still running.
func (l *Loader[T]) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Err returns the error of the most recent fetch, or nil if it succeeded.
func (l *Loader[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Params returns the params of the displayed page.
func (l *Loader[T]) Params() Params {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.params.Clone()
}

// Refetch reloads the current page, bypassing the debounce delay.
func (l *Loader[T]) Refetch() { l.ctl.Refetch() }

// OnChange registers fn to run after the loading flag, rows or error change.
// fn may run on any goroutine.
func (l *Loader[T]) OnChange(fn func()) {
	l.mu.Lock()
	l.watchers = append(l.watchers, fn)
	l.mu.Unlock()
}

// Follow refetches every time n broadcasts. The returned function stops following.
func (l *Loader[T]) Follow(n *Notifier) (stop func()) {
	ch := n.Subscribe()
	done := make(chan struct{})
	go func() {
		defer n.Unsubscribe(ch)
		for {
			select {
			case <-ch:
				l.Refetch()
			case <-done:
				return
			case <-l.ctx.Done():
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

// ToggleSelected flips the selection of the row with the given id and reports
// whether it is now selected. It is a no-op without WithRowID or when no row
// on the displayed page has that id.
func (l *Loader[T]) ToggleSelected(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rowID == nil || !l.onPageLocked(id) {
		return false
	}
	if _, ok := l.selected[id]; ok {
		delete(l.selected, id)
		return false
	}
	l.selected[id] = struct{}{}
	return true
}

// IsSelected reports whether the row with the given id is selected.
func (l *Loader[T]) IsSelected(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.selected[id]
	return ok
}

// Selected returns the selected rows of the displayed page in page order.
func (l *Loader[T]) Selected() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rowID == nil {
		return nil
	}
	var out []T
	for _, r := range l.page.Rows {
		if _, ok := l.selected[l.rowID(r)]; ok {
			out = append(out, r)
		}
	}
	return out
}

// ClearSelection deselects every row.
func (l *Loader[T]) ClearSelection() {
	l.mu.Lock()
	clear(l.selected)
	l.mu.Unlock()
}

// Close unregisters the loader and cancels the context passed to running fetches.
// Responses that arrive afterwards are discarded.
func (l *Loader[T]) Close() {
	l.unsub()
	l.cancel()
}

func (l *Loader[T]) load(p Params) {
	l.mu.Lock()
	l.seq++
	seq := l.seq
	l.loading = true
	l.mu.Unlock()
	l.notify()

	go func() {
		page, err := l.fetch(l.ctx, p)
		l.apply(seq, p, page, err)
	}()
}

func (l *Loader[T]) apply(seq uint64, p Params, page Page[T], err error) {
	l.mu.Lock()
	if seq != l.seq || l.ctx.Err() != nil {
		l.mu.Unlock()
		l.log.Debug("discarding stale page", slog.String("params", p.Encode()))
		return
	}
	l.loading = false

	if err != nil {
		l.err = err
		l.mu.Unlock()
		l.log.Warn("list fetch failed", slog.String("params", p.Encode()), slog.Any("error", err))
		l.notify()
		return
	}

	if page.Rows == nil {
		page.Rows = []T{}
	}
	page.TotalPages = max(page.TotalPages, 0)
	l.page = page
	l.params = p
	l.err = nil
	l.pruneSelectionLocked()
	l.mu.Unlock()
	l.notify()

	if idx := p.PageIndex(); l.clamp && idx > 0 && idx >= page.TotalPages {
		target := max(0, page.TotalPages-1)
		l.log.Debug("page out of range, clamping",
			slog.Int("page_index", idx), slog.Int("total_pages", page.TotalPages), slog.Int("target", target))
		l.ctl.SetPage(target)
	}
}

func (l *Loader[T]) pruneSelectionLocked() {
	if l.rowID == nil || len(l.selected) == 0 {
		return
	}
	keep := make(map[string]struct{}, len(l.selected))
	for _, r := range l.page.Rows {
		id := l.rowID(r)
		if _, ok := l.selected[id]; ok {
			keep[id] = struct{}{}
		}
	}
	l.selected = keep
}

func (l *Loader[T]) onPageLocked(id string) bool {
	return slices.ContainsFunc(l.page.Rows, func(r T) bool { return l.rowID(r) == id })
}

func (l *Loader[T]) notify() {
	l.mu.Lock()
	watchers := slices.Clone(l.watchers)
	l.mu.Unlock()
	for _, fn := range watchers {
		fn()
	}
}
