package listquery

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recorder collects every params value a listener receives.
type recorder struct {
	mu    sync.Mutex
	calls []Params
}

func (r *recorder) record(p Params) {
	r.mu.Lock()
	r.calls = append(r.calls, p)
	r.mu.Unlock()
}

func (r *recorder) all() []Params {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Params, len(r.calls))
	copy(out, r.calls)
	return out
}

func (r *recorder) last() Params {
	all := r.all()
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

func newTestController(t *testing.T, cfg Config) (*Controller, *recorder) {
	t.Helper()
	cfg.Logger = discardLogger()
	ctl := New(cfg)
	t.Cleanup(ctl.Close)
	rec := &recorder{}
	ctl.OnParamsChange(rec.record)
	return ctl, rec
}

func TestController_InitialEmission(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctl, rec := newTestController(t, Config{
			InitialSort: Sorting{{ID: "created_at", Desc: true}},
		})
		defer ctl.Close()
		synctest.Wait()

		require.Len(t, rec.all(), 1)
		assert.Equal(t, Params{"page": "1", "per_page": "10", "sort": "created_at:desc"}, rec.last())
		assert.Equal(t, rec.last(), ctl.CurrentParams())
		assert.Equal(t, Idle, ctl.Phase())
	})
}

func TestController_Defaults(t *testing.T) {
	ctl := New(Config{InitialPageIndex: -2, Logger: discardLogger()})
	defer ctl.Close()

	s := ctl.State()
	assert.Equal(t, 0, s.PageIndex)
	assert.Equal(t, DefaultPageSize, s.PageSize)
	assert.Empty(t, s.Sorting)
	assert.Empty(t, s.ColumnFilters)
}

func TestController_SearchDebounceCollapsesBurst(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctl, rec := newTestController(t, Config{})
		defer ctl.Close()
		synctest.Wait()

		ctl.SetGlobalFilter("al")
		time.Sleep(100 * time.Millisecond)
		ctl.SetGlobalFilter("alice")
		assert.True(t, ctl.Debouncing())

		time.Sleep(250 * time.Millisecond)
		synctest.Wait()
		require.Len(t, rec.all(), 1, "no emission before the window elapses")
		assert.NotContains(t, ctl.CurrentParams(), ParamSearch)

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		calls := rec.all()
		require.Len(t, calls, 2)
		assert.Equal(t, "alice", calls[1][ParamSearch])
		assert.False(t, ctl.Debouncing())
	})
}

func TestController_DebounceEmitsLastValueOnce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctl, rec := newTestController(t, Config{})
		defer ctl.Close()
		synctest.Wait()

		values := []string{"a", "ab", "abc", "abcd", "abcde", "abcdef"}
		for _, v := range values {
			ctl.SetGlobalFilter(v)
			time.Sleep(299 * time.Millisecond)
		}
		synctest.Wait()
		require.Len(t, rec.all(), 1)

		time.Sleep(time.Second)
		synctest.Wait()
		calls := rec.all()
		require.Len(t, calls, 2)
		assert.Equal(t, "abcdef", calls[1][ParamSearch])
	})
}

func TestController_MultiValueColumnFilter(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctl, rec := newTestController(t, Config{})
		defer ctl.Close()
		synctest.Wait()

		ctl.SetColumnFilter("status", Multi("ACTIVE", "PENDING"))
		time.Sleep(400 * time.Millisecond)
		synctest.Wait()

		require.Len(t, rec.all(), 2)
		assert.Equal(t, "ACTIVE,PENDING", rec.last()["status"])

		ctl.SetColumnFilter("status", nil)
		time.Sleep(400 * time.Millisecond)
		synctest.Wait()

		require.Len(t, rec.all(), 3)
		assert.NotContains(t, rec.last(), "status")
	})
}

func TestController_FilterAndSearchDebounceIndependently(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctl, rec := newTestController(t, Config{})
		defer ctl.Close()
		synctest.Wait()

		ctl.SetColumnFilter("status", Scalar("ACTIVE"))
		time.Sleep(200 * time.Millisecond)
		ctl.SetGlobalFilter("bob")
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		calls := rec.all()
		require.Len(t, calls, 2)
		assert.Equal(t, "ACTIVE", calls[1]["status"])
		assert.NotContains(t, calls[1], ParamSearch)

		time.Sleep(200 * time.Millisecond)
		synctest.Wait()
		calls = rec.all()
		require.Len(t, calls, 3)
		assert.Equal(t, "bob", calls[2][ParamSearch])
	})
}

func TestController_PagingIsNotDebounced(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctl, rec := newTestController(t, Config{})
		defer ctl.Close()
		synctest.Wait()

		ctl.SetPageSize(25)
		ctl.SetPage(4)
		synctest.Wait()

		calls := rec.all()
		require.Len(t, calls, 3)
		assert.Equal(t, Params{"page": "1", "per_page": "25"}, calls[1])
		assert.Equal(t, Params{"page": "5", "per_page": "25"}, calls[2])
	})
}

func TestController_NoEmissionWithoutChange(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctl, rec := newTestController(t, Config{})
		defer ctl.Close()
		synctest.Wait()

		ctl.SetPage(0)
		ctl.SetPageSize(10)
		ctl.SetSort(nil)
		ctl.SetGlobalFilter("x")
		time.Sleep(100 * time.Millisecond)
		ctl.SetGlobalFilter("")
		time.Sleep(time.Second)
		synctest.Wait()

		assert.Len(t, rec.all(), 1)
	})
}

func TestController_SetterEdgeCases(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctl, _ := newTestController(t, Config{InitialPageIndex: 3})
		defer ctl.Close()

		ctl.SetPage(-1)
		assert.Equal(t, 0, ctl.State().PageIndex)

		ctl.SetPageSize(0)
		ctl.SetPageSize(-5)
		assert.Equal(t, DefaultPageSize, ctl.State().PageSize)
	})
}

func TestController_ColumnRestrictions(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctl, _ := newTestController(t, Config{
			Columns: []Column{
				{ID: "name", Sortable: true, Filterable: true},
				{ID: "status", Filterable: true},
				{ID: "email", Sortable: true},
			},
			InitialSort: Sorting{{ID: "status"}, {ID: "email", Desc: true}},
		})
		defer ctl.Close()

		assert.Equal(t, Sorting{{ID: "email", Desc: true}}, ctl.State().Sorting)

		ctl.SetSort(Sorting{{ID: "status"}, {ID: "name"}})
		assert.Equal(t, Sorting{{ID: "name"}}, ctl.State().Sorting)

		ctl.SetColumnFilter("email", Scalar("x@example.com"))
		ctl.SetColumnFilter("unknown", Scalar("y"))
		assert.Empty(t, ctl.State().ColumnFilters)
		assert.False(t, ctl.Debouncing())

		ctl.SetColumnFilter("status", Scalar("ACTIVE"))
		assert.Equal(t, FilterValue{"ACTIVE"}, ctl.State().ColumnFilters["status"])
		assert.True(t, ctl.Debouncing())
	})
}

func TestController_ToggleSort(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctl, _ := newTestController(t, Config{})
		defer ctl.Close()

		ctl.ToggleSort("name")
		assert.Equal(t, Sorting{{ID: "name"}}, ctl.State().Sorting)
		ctl.ToggleSort("name")
		assert.Equal(t, Sorting{{ID: "name", Desc: true}}, ctl.State().Sorting)
		ctl.ToggleSort("name")
		assert.Empty(t, ctl.State().Sorting)
		ctl.ToggleSort("email")
		ctl.ToggleSort("name")
		assert.Equal(t, Sorting{{ID: "name"}}, ctl.State().Sorting)
	})
}

func TestController_RefetchIsIdempotent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctl, rec := newTestController(t, Config{InitialSort: Sorting{{ID: "id", Desc: true}}})
		defer ctl.Close()
		synctest.Wait()

		ctl.Refetch()
		ctl.Refetch()
		synctest.Wait()

		calls := rec.all()
		require.Len(t, calls, 3)
		assert.Equal(t, calls[1].Encode(), calls[2].Encode())
		assert.Equal(t, calls[0], calls[1])
	})
}

func TestController_RefetchBypassesDebounce(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctl, rec := newTestController(t, Config{})
		defer ctl.Close()
		synctest.Wait()

		ctl.SetGlobalFilter("bob")
		ctl.Refetch()
		synctest.Wait()

		require.Len(t, rec.all(), 2)
		assert.Equal(t, "bob", rec.last()[ParamSearch])
		assert.False(t, ctl.Debouncing())

		time.Sleep(time.Second)
		synctest.Wait()
		assert.Len(t, rec.all(), 2, "settling after a refetch must not emit again")
	})
}

func TestController_CallbackMayCallSetters(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctl := New(Config{Logger: discardLogger()})
		defer ctl.Close()

		rec := &recorder{}
		ctl.OnParamsChange(func(p Params) {
			rec.record(p)
			if p[ParamPage] == "1" {
				ctl.SetPage(2)
			}
		})
		synctest.Wait()

		calls := rec.all()
		require.Len(t, calls, 2)
		assert.Equal(t, "3", calls[1][ParamPage])
	})
}

func TestController_CallbacksRunInEmissionOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctl, rec := newTestController(t, Config{})
		defer ctl.Close()

		for i := 1; i <= 5; i++ {
			ctl.SetPage(i)
		}
		synctest.Wait()

		calls := rec.all()
		require.Len(t, calls, 6)
		for i, p := range calls {
			assert.Equal(t, i, p.PageIndex())
		}
	})
}

func TestController_CancelStopsInvocations(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctl := New(Config{Logger: discardLogger()})
		defer ctl.Close()

		rec := &recorder{}
		cancel := ctl.OnParamsChange(rec.record)
		synctest.Wait()
		cancel()
		cancel()

		ctl.SetPage(3)
		ctl.Refetch()
		synctest.Wait()
		assert.Len(t, rec.all(), 1)
	})
}

func TestController_CloseStopsTimers(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctl, rec := newTestController(t, Config{})
		synctest.Wait()

		ctl.SetGlobalFilter("late")
		ctl.Close()
		ctl.Close()
		assert.False(t, ctl.Debouncing())

		time.Sleep(time.Second)
		synctest.Wait()
		assert.Len(t, rec.all(), 1)
	})
}

func TestController_InitialFiltersNotDebounced(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctl, rec := newTestController(t, Config{
			InitialFilters: map[string]FilterValue{"status": Scalar("ACTIVE")},
			InitialSearch:  "x",
		})
		defer ctl.Close()
		synctest.Wait()

		require.Len(t, rec.all(), 1)
		assert.Equal(t, Params{"page": "1", "per_page": "10", "status": "ACTIVE", "search": "x"}, rec.last())
	})
}
