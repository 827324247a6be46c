// Package session drives one user's view of the tracker. The controller
// reacts to auth transitions and store snapshots, recomputes every derived
// view from scratch on each event, and tears everything down on sign-out.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/export"
	"fintrack/internal/filter"
	"fintrack/internal/store"
	"fintrack/internal/view"
)

// ErrNotSignedIn is returned by operations that need an authenticated user.
var ErrNotSignedIn = errors.New("not signed in")

// Chart kinds passed to the renderer.
const (
	ChartCategoryPie    = "categoryPie"
	ChartExpenseTrend   = "expenseTrend"
	ChartYearlyCategory = "yearlyCategory"
	ChartYearlyTrend    = "yearlyTrend"
)

// ChartHandle is a live rendered chart. It must be destroyed before a new
// chart is drawn in its place.
type ChartHandle interface {
	Destroy()
}

// ChartRenderer draws chart series. Implementations are optional; a nil
// renderer leaves the computed series available on the views only.
type ChartRenderer interface {
	Render(kind string, series view.ChartSeries) ChartHandle
}

// Views is the complete derived state after the latest event.
type Views struct {
	List      view.ListView
	Dashboard view.DashboardView
	Yearly    view.YearlyView
}

// Controller owns the per-session state machine. All event handlers are
// serialized on one mutex, so the last event to arrive wins and no view mixes
// data from two snapshots.
type Controller struct {
	records  store.RecordStore
	renderer ChartRenderer
	now      func() time.Time

	mu       sync.Mutex
	uid      string
	handle   store.Handle
	active   bool
	snapshot store.Snapshot
	filters  filter.State
	views    Views
	charts   map[string]ChartHandle
}

func NewController(records store.RecordStore, renderer ChartRenderer) *Controller {
	return &Controller{
		records:  records,
		renderer: renderer,
		now:      time.Now,
		charts:   make(map[string]ChartHandle),
	}
}

// HandleAuthChange moves the controller between its unauthenticated and
// authenticated states. Signing in subscribes to the user's collection and
// resets filters to their defaults; signing out is a full teardown and is
// safe to repeat.
func (c *Controller) HandleAuthChange(u *auth.User) {
	c.mu.Lock()
	if c.active {
		// Leaving the previous session, whatever the next state is.
		c.records.Unsubscribe(c.handle)
		c.teardownLocked()
	}
	if u == nil {
		c.mu.Unlock()
		return
	}

	c.uid = u.UID
	c.active = true
	c.filters = filter.Defaults(c.now())
	path := store.TransactionsPath(u.UID)
	c.mu.Unlock()

	// Subscribe outside the lock: the store delivers the first snapshot
	// synchronously and the callback takes the lock itself.
	h := c.records.Subscribe(path, func(snap store.Snapshot) {
		c.applySnapshot(snap)
	})

	c.mu.Lock()
	if c.uid == u.UID && c.active {
		c.handle = h
	} else {
		// Signed out (or switched user) while subscribing.
		c.records.Unsubscribe(h)
	}
	c.mu.Unlock()

	slog.Info("Session started", "uid", u.UID)
}

// SetTypeFilter updates the type filter and re-derives the views.
func (c *Controller) SetTypeFilter(ctx context.Context, t string) {
	c.withRefresh(ctx, func() { c.filters.SetTypeFilter(t) })
}

// SetMonthFilter pins the list to a month and permanently disables the
// auto-follow of the summary period.
func (c *Controller) SetMonthFilter(ctx context.Context, month string) {
	c.withRefresh(ctx, func() { c.filters.SetMonthFilter(month) })
}

// SetSummaryPeriod changes the dashboard month. While auto-follow is latched
// the list filter moves with it.
func (c *Controller) SetSummaryPeriod(ctx context.Context, period string) {
	c.withRefresh(ctx, func() { c.filters.SetSummaryPeriod(period) })
}

// SetYear changes the yearly view's year.
func (c *Controller) SetYear(ctx context.Context, year int) {
	c.withRefresh(ctx, func() { c.filters.SetYear(year) })
}

// Views returns the derived state from the latest event.
func (c *Controller) Views() Views {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.views
}

// Filters returns a copy of the current filter state.
func (c *Controller) Filters() filter.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// ExportCSV serializes the latest snapshot and names the download file.
func (c *Controller) ExportCSV() (filename, content string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return "", "", ErrNotSignedIn
	}
	return export.Filename(c.now()), export.CSV(c.snapshot), nil
}

func (c *Controller) applySnapshot(snap store.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	c.snapshot = snap
	c.recomputeLocked()
}

// withRefresh applies a filter mutation, re-reads the collection so the views
// reflect the store, and recomputes. A failed read falls back to the last
// snapshot silently; the filters still apply to the data already on hand.
func (c *Controller) withRefresh(ctx context.Context, mutate func()) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	mutate()
	path := store.TransactionsPath(c.uid)
	c.mu.Unlock()

	snap, err := c.records.ReadOnce(ctx, path)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		return
	}
	if err != nil {
		slog.WarnContext(ctx, "Refresh read failed, reusing last snapshot", "error", err)
	} else {
		c.snapshot = snap
	}
	c.recomputeLocked()
}

// recomputeLocked derives every view from the current snapshot and filters.
// No incremental updates: each event rebuilds the whole thing.
func (c *Controller) recomputeLocked() {
	records := c.snapshot.List()
	now := c.now()

	c.views = Views{
		List:      view.TransactionList(records, c.filters),
		Dashboard: view.Dashboard(records, c.filters, now),
		Yearly:    view.Yearly(records, c.filters.SelectedYear),
	}
	c.renderChartsLocked()
}

func (c *Controller) renderChartsLocked() {
	if c.renderer == nil {
		return
	}
	series := map[string]view.ChartSeries{
		ChartCategoryPie:    c.views.Dashboard.CategoryPie,
		ChartExpenseTrend:   c.views.Dashboard.ExpenseTrend,
		ChartYearlyCategory: c.views.Yearly.CategoryBars,
		ChartYearlyTrend: {
			Labels: c.views.Yearly.TrendLabels,
			Values: c.views.Yearly.TrendExpense,
		},
	}
	for kind, s := range series {
		if h, ok := c.charts[kind]; ok && h != nil {
			h.Destroy()
		}
		c.charts[kind] = c.renderer.Render(kind, s)
	}
}

// teardownLocked zeroes all derived state and destroys live charts.
func (c *Controller) teardownLocked() {
	for kind, h := range c.charts {
		if h != nil {
			h.Destroy()
		}
		delete(c.charts, kind)
	}
	c.uid = ""
	c.handle = 0
	c.active = false
	c.snapshot = store.Snapshot{}
	c.filters = filter.State{}
	c.views = Views{}
}
