// Package listquery implements the state controller behind every server-driven
// data table: paging, sorting, column filters and a free-text search term are
// translated into the query parameters of a collection endpoint, with filter and
// search input debounced so that only settled values reach the server.
package listquery

import (
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// Reserved parameter names. A column filter with one of these ids is shadowed.
const (
	ParamPage    = "page"
	ParamPerPage = "per_page"
	ParamSort    = "sort"
	ParamSearch  = "search"
)

const (
	sortAsc  = "asc"
	sortDesc = "desc"
)

// SortField orders rows by one column.
type SortField struct {
	ID   string
	Desc bool
}

// Sorting is an ordered list of sort fields; the first one is the primary key.
type Sorting []SortField

// String renders the sorting as the comma-joined "id:asc|desc" wire form.
func (s Sorting) String() string {
	parts := make([]string, 0, len(s))
	for _, f := range s {
		dir := sortAsc
		if f.Desc {
			dir = sortDesc
		}
		parts = append(parts, f.ID+":"+dir)
	}
	return strings.Join(parts, ",")
}

// Toggle cycles column id through ascending, descending and unsorted and
// returns the new sorting with id as its only field.
func (s Sorting) Toggle(id string) Sorting {
	switch {
	case len(s) == 0 || s[0].ID != id:
		return Sorting{{ID: id}}
	case !s[0].Desc:
		return Sorting{{ID: id, Desc: true}}
	default:
		return nil
	}
}

// Direction returns "asc" or "desc" when id is the primary sort column, else "".
func (s Sorting) Direction(id string) string {
	if len(s) == 0 || s[0].ID != id {
		return ""
	}
	if s[0].Desc {
		return sortDesc
	}
	return sortAsc
}

// ParseSorting parses the "id:asc|desc,..." wire form. Entries without a valid
// direction are skipped; a bare id sorts ascending.
func ParseSorting(raw string) Sorting {
	var out Sorting
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, dir, found := strings.Cut(part, ":")
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(dir)) {
		case sortDesc:
			out = append(out, SortField{ID: id, Desc: true})
		case sortAsc:
			out = append(out, SortField{ID: id})
		default:
			if !found {
				out = append(out, SortField{ID: id})
			}
		}
	}
	return out
}

// FilterValue is the value of one column filter. A scalar filter holds one
// element, a multi-value filter holds several. An empty value clears the filter.
type FilterValue []string

// Scalar returns a single-value filter.
func Scalar(v string) FilterValue { return FilterValue{v} }

// Multi returns a multi-value filter.
func Multi(vs ...string) FilterValue { return FilterValue(vs) }

// normalize drops empty elements and returns nil when nothing is left.
func (v FilterValue) normalize() FilterValue {
	var out FilterValue
	for _, s := range v {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// String joins the values with commas, the separator the server splits on.
func (v FilterValue) String() string {
	return strings.Join(v, ",")
}

// State is the view state of one list. The zero value is page 0 with no sorting,
// no filters and no search term, but PageSize must be positive to be useful.
type State struct {
	PageIndex     int
	PageSize      int
	Sorting       Sorting
	ColumnFilters map[string]FilterValue
	GlobalFilter  string
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Sorting = slices.Clone(s.Sorting)
	out.ColumnFilters = cloneFilters(s.ColumnFilters)
	return out
}

func cloneFilters(in map[string]FilterValue) map[string]FilterValue {
	out := make(map[string]FilterValue, len(in))
	for k, v := range in {
		out[k] = slices.Clone(v)
	}
	return out
}

func filtersEqual(a, b map[string]FilterValue) bool {
	return maps.EqualFunc(a, b, func(x, y FilterValue) bool { return slices.Equal(x, y) })
}

// Params is the query parameter map sent to a collection endpoint.
type Params map[string]string

// Values converts the params to url.Values.
func (p Params) Values() url.Values {
	v := make(url.Values, len(p))
	for k, s := range p {
		v.Set(k, s)
	}
	return v
}

// Encode renders the params as a URL query string with keys in sorted order.
func (p Params) Encode() string {
	return p.Values().Encode()
}

// Clone returns a copy of p.
func (p Params) Clone() Params {
	return maps.Clone(p)
}

// Equal reports whether p and o hold the same keys and values.
func (p Params) Equal(o Params) bool {
	return maps.Equal(p, o)
}

// PageIndex returns the zero-based page index encoded in p, or 0.
func (p Params) PageIndex() int {
	n, err := strconv.Atoi(p[ParamPage])
	if err != nil || n < 1 {
		return 0
	}
	return n - 1
}

// DeriveParams maps a state to query parameters:
//
//	page     = PageIndex + 1
//	per_page = PageSize
//	sort     = comma-joined "id:asc|desc", omitted when Sorting is empty
//	search   = GlobalFilter, omitted when empty
//	<column> = comma-joined filter values, omitted when empty
//
// Reserved keys take precedence over a column filter with the same id.
// DeriveParams is pure: equal states always yield equal params.
func DeriveParams(s State) Params {
	p := make(Params, 4+len(s.ColumnFilters))

	for id, v := range s.ColumnFilters {
		v = v.normalize()
		if id == "" || len(v) == 0 {
			continue
		}
		p[id] = v.String()
	}

	p[ParamPage] = strconv.Itoa(max(s.PageIndex, 0) + 1)
	p[ParamPerPage] = strconv.Itoa(s.PageSize)

	if len(s.Sorting) > 0 {
		p[ParamSort] = s.Sorting.String()
	} else {
		delete(p, ParamSort)
	}
	if s.GlobalFilter != "" {
		p[ParamSearch] = s.GlobalFilter
	} else {
		delete(p, ParamSearch)
	}
	return p
}

// Column describes a table column. Only Sortable and Filterable affect the controller.
type Column struct {
	ID         string
	Title      string
	Sortable   bool
	Filterable bool
}

// Page is one fetched page of rows. It replaces the previous page wholesale.
type Page[T any] struct {
	Rows       []T
	TotalPages int
}
