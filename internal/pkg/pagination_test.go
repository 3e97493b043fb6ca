package pkg

import (
	"math"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	dbtest "gorm.io/gorm/utils/tests"

	"github.com/simp-lee/backoffice/internal/domain"
)

func queryContext(rawQuery string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/vendors?"+rawQuery, nil)
	return c
}

func TestParsePageRequest(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantPage    int
		wantPerPage int
		wantSort    string
		wantSearch  string
		wantFilter  map[string][]string
	}{
		{name: "defaults", query: "", wantPage: 1, wantPerPage: 10, wantSort: "id:desc"},
		{
			name:        "everything set",
			query:       "page=3&per_page=50&sort=created_at:desc,name:asc&search=+acme+&status=ACTIVE,PENDING&name__like=glo",
			wantPage:    3,
			wantPerPage: 50,
			wantSort:    "created_at:desc,name:asc",
			wantSearch:  "acme",
			wantFilter:  map[string][]string{"status": {"ACTIVE", "PENDING"}, "name__like": {"glo"}},
		},
		{name: "zero page", query: "page=0", wantPage: 1, wantPerPage: 10, wantSort: "id:desc"},
		{name: "negative page", query: "page=-5", wantPage: 1, wantPerPage: 10, wantSort: "id:desc"},
		{name: "empty page", query: "page=", wantPage: 1, wantPerPage: 10, wantSort: "id:desc"},
		{name: "zero per_page", query: "per_page=0", wantPage: 1, wantPerPage: 10, wantSort: "id:desc"},
		{name: "per_page over max", query: "per_page=200", wantPage: 1, wantPerPage: 100, wantSort: "id:desc"},
		{name: "per_page not a number", query: "per_page=ten", wantPage: 1, wantPerPage: 10, wantSort: "id:desc"},
		{name: "blank sort", query: "sort=++", wantPage: 1, wantPerPage: 10, wantSort: "id:desc"},
		{
			name:        "repeated filter key merged",
			query:       "status=ACTIVE&status=PENDING,ENDED&status=&name__like=glo",
			wantPage:    1,
			wantPerPage: 10,
			wantSort:    "id:desc",
			wantFilter:  map[string][]string{"status": {"ACTIVE", "PENDING", "ENDED"}, "name__like": {"glo"}},
		},
		{name: "huge page capped", query: "page=9000000000&per_page=100", wantPage: math.MaxInt32 / 100, wantPerPage: 100, wantSort: "id:desc"},
		{name: "page beyond int", query: "page=99999999999999999999999", wantPage: 1, wantPerPage: 10, wantSort: "id:desc"},
		{
			name:        "blank filter values dropped",
			query:       "status=&tags=,,&city=Austin,+,Dallas",
			wantPage:    1,
			wantPerPage: 10,
			wantSort:    "id:desc",
			wantFilter:  map[string][]string{"city": {"Austin", "Dallas"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := ParsePageRequest(queryContext(tt.query))

			if req.Page != tt.wantPage || req.PerPage != tt.wantPerPage {
				t.Errorf("page/per_page = %d/%d, want %d/%d", req.Page, req.PerPage, tt.wantPage, tt.wantPerPage)
			}
			if req.Sort != tt.wantSort || req.Search != tt.wantSearch {
				t.Errorf("sort/search = %q/%q, want %q/%q", req.Sort, req.Search, tt.wantSort, tt.wantSearch)
			}
			if len(req.Filter) != len(tt.wantFilter) {
				t.Fatalf("filter = %v, want %v", req.Filter, tt.wantFilter)
			}
			for key, want := range tt.wantFilter {
				if !slices.Equal(req.Filter[key], want) {
					t.Errorf("filter[%q] = %v, want %v", key, req.Filter[key], want)
				}
			}
		})
	}
}

func TestParsePageRequestWithLimits(t *testing.T) {
	tests := []struct {
		name   string
		limits PageLimits
		query  string
		want   int
	}{
		{"configured default", PageLimits{DefaultPerPage: 25, MaxPerPage: 50}, "", 25},
		{"configured max", PageLimits{DefaultPerPage: 25, MaxPerPage: 50}, "per_page=80", 50},
		{"zero limits fall back", PageLimits{}, "per_page=500", 100},
		{"max below default", PageLimits{DefaultPerPage: 150, MaxPerPage: 5}, "per_page=500", 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePageRequestWithLimits(queryContext(tt.query), tt.limits).PerPage; got != tt.want {
				t.Errorf("PerPage = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParsePageRequestWithLimits_PageCap(t *testing.T) {
	limits := PageLimits{DefaultPerPage: 25, MaxPerPage: 50}
	req := ParsePageRequestWithLimits(queryContext("page=4294967296&per_page=50"), limits)
	if want := math.MaxInt32 / 50; req.Page != want {
		t.Fatalf("Page = %d, want %d", req.Page, want)
	}
	if offset := (req.Page - 1) * req.PerPage; offset < 0 || offset > math.MaxInt32 {
		t.Errorf("offset %d out of range", offset)
	}
	if req := ParsePageRequestWithLimits(queryContext("page=7"), limits); req.Page != 7 {
		t.Errorf("ordinary page = %d, want 7", req.Page)
	}
}

func TestNewPageResult(t *testing.T) {
	tests := []struct {
		name      string
		items     []string
		total     int64
		perPage   int
		wantPages int
	}{
		{"exact", []string{"a", "b"}, 10, 5, 2},
		{"remainder", []string{"a"}, 11, 5, 3},
		{"nothing", nil, 0, 20, 0},
		{"one short of a page", nil, 99, 10, 10},
		{"zero per page", nil, 5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewPageResult(tt.items, tt.total, domain.PageRequest{Page: 2, PerPage: tt.perPage})
			if res.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", res.TotalPages, tt.wantPages)
			}
			if res.Items == nil || len(res.Items) != len(tt.items) {
				t.Errorf("Items = %#v", res.Items)
			}
			if res.Total != tt.total || res.Page != 2 || res.PerPage != tt.perPage {
				t.Errorf("result = %+v", res)
			}
		})
	}
}

func dummyDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(dbtest.DummyDialector{}, &gorm.Config{})
	if err != nil {
		t.Fatalf("open dummy db: %v", err)
	}
	return db
}

func whereSQL(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	c, ok := db.Statement.Clauses["WHERE"]
	if !ok {
		return nil
	}
	where, ok := c.Expression.(clause.Where)
	if !ok {
		t.Fatalf("WHERE expression is %T", c.Expression)
	}
	var out []string
	for _, e := range where.Exprs {
		if expr, ok := e.(clause.Expr); ok {
			out = append(out, expr.SQL)
		}
	}
	return out
}

func orderColumns(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	c, ok := db.Statement.Clauses["ORDER BY"]
	if !ok {
		return nil
	}
	orderBy, ok := c.Expression.(clause.OrderBy)
	if !ok {
		t.Fatalf("ORDER BY expression is %T", c.Expression)
	}
	var out []string
	for _, col := range orderBy.Columns {
		out = append(out, col.Column.Name)
	}
	return out
}

func TestSort(t *testing.T) {
	allowed := []string{"id", "name", "created_at"}
	tests := []struct {
		sort string
		want []string
	}{
		{"name:asc", []string{"name asc"}},
		{"id:DESC", []string{"id desc"}},
		{"created_at:desc, name:asc", []string{"created_at desc", "name asc"}},
		{"password:asc,name:desc", []string{"name desc"}},
		{"name", []string{"name asc"}},
		{"created_at:desc, name", []string{"created_at desc", "name asc"}},
		{"password", nil},
		{",,", nil},
		{"name:", nil},
		{"name:up", nil},
		{":asc", nil},
		{"name;DROP TABLE vendors--:asc", nil},
	}
	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			db := Sort(domain.PageRequest{Sort: tt.sort}, allowed)(dummyDB(t))
			if got := orderColumns(t, db); !slices.Equal(got, tt.want) {
				t.Errorf("ORDER BY = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	allowed := []string{"status", "name"}
	tests := []struct {
		name   string
		filter map[string][]string
		want   []string
	}{
		{"equality", map[string][]string{"status": {"ACTIVE"}}, []string{"status = ?"}},
		{"several values", map[string][]string{"status": {"ACTIVE", "ENDED"}}, []string{"status IN ?"}},
		{"like", map[string][]string{"name__like": {"acm"}}, []string{"name LIKE ?"}},
		{"unknown column", map[string][]string{"password": {"x"}}, nil},
		{"unknown like column", map[string][]string{"password__like": {"x"}}, nil},
		{"injection in key", map[string][]string{"name;DROP TABLE--": {"x"}}, nil},
		{"no values", map[string][]string{"status": {}}, nil},
		{"key order", map[string][]string{"status": {"A"}, "name__like": {"g"}, "secret": {"s"}}, []string{"name LIKE ?", "status = ?"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := Filter(domain.PageRequest{Filter: tt.filter}, allowed)(dummyDB(t))
			if got := whereSQL(t, db); !slices.Equal(got, tt.want) {
				t.Errorf("WHERE = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name   string
		term   string
		fields []string
		want   []string
	}{
		{"no term", "", []string{"name", "code"}, nil},
		{"no fields", "acme", nil, nil},
		{"any field", "acme", []string{"name", "code"}, []string{"(name LIKE ? OR code LIKE ?)"}},
		{"bad field skipped", "acme", []string{"name", "a b"}, []string{"(name LIKE ?)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := Search(domain.PageRequest{Search: tt.term}, tt.fields)(dummyDB(t))
			if got := whereSQL(t, db); !slices.Equal(got, tt.want) {
				t.Errorf("WHERE = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct{ page, perPage, wantOffset int }{
		{1, 10, 0},
		{2, 20, 20},
		{100, 50, 4950},
		{0, 10, 0},
		{math.MaxInt, 100, math.MaxInt32 / 100 * 100},
		{3, 0, 0},
	}
	for _, tt := range tests {
		db := Paginate(domain.PageRequest{Page: tt.page, PerPage: tt.perPage})(dummyDB(t))
		limit, ok := db.Statement.Clauses["LIMIT"].Expression.(clause.Limit)
		if !ok {
			t.Fatalf("page %d: no LIMIT clause", tt.page)
		}
		if limit.Offset != tt.wantOffset || (tt.perPage > 0 && (limit.Limit == nil || *limit.Limit != tt.perPage)) {
			t.Errorf("page %d: offset %d limit %v, want %d %d", tt.page, limit.Offset, limit.Limit, tt.wantOffset, tt.perPage)
		}
	}
}
