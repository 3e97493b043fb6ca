package pkg

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/backoffice/internal/domain"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
	defaultSort    = "id:desc"

	// name__like=acm filters with LIKE '%acm%' instead of equality.
	likeSuffix = "__like"
)

// Query keys that never become filters.
var reservedParams = []string{"page", "per_page", "sort", "search"}

var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PageLimits bounds the per_page parameter.
type PageLimits struct {
	DefaultPerPage int
	MaxPerPage     int
}

func DefaultPageLimits() PageLimits {
	return PageLimits{DefaultPerPage: defaultPerPage, MaxPerPage: maxPerPage}
}

func (l PageLimits) normalized() PageLimits {
	if l.DefaultPerPage < 1 {
		l.DefaultPerPage = defaultPerPage
	}
	if l.MaxPerPage < l.DefaultPerPage {
		l.MaxPerPage = max(l.DefaultPerPage, maxPerPage)
	}
	return l
}

// ParsePageRequest is ParsePageRequestWithLimits with DefaultPageLimits.
func ParsePageRequest(c *gin.Context) domain.PageRequest {
	return ParsePageRequestWithLimits(c, DefaultPageLimits())
}

// ParsePageRequestWithLimits reads page, per_page, sort and search from the
// query string. Unparsable or non-positive numbers fall back to the
// defaults, per_page is capped at limits.MaxPerPage and page at
// math.MaxInt32/limits.MaxPerPage so the offset stays in range.
//
// Every other key is a filter. Its values are split on commas and repeated
// keys are merged, so status=ACTIVE,PENDING and status=ACTIVE&status=PENDING
// both yield two values. Keys with no non-blank value are dropped.
func ParsePageRequestWithLimits(c *gin.Context, limits PageLimits) domain.PageRequest {
	limits = limits.normalized()
	query := c.Request.URL.Query()

	req := domain.PageRequest{
		Page:    min(positiveInt(query.Get("page"), 1), math.MaxInt32/limits.MaxPerPage),
		PerPage: min(positiveInt(query.Get("per_page"), limits.DefaultPerPage), limits.MaxPerPage),
		Sort:    strings.TrimSpace(query.Get("sort")),
		Search:  strings.TrimSpace(query.Get("search")),
		Filter:  make(map[string][]string),
	}
	if req.Sort == "" {
		req.Sort = defaultSort
	}

	for key, values := range query {
		if slices.Contains(reservedParams, key) {
			continue
		}
		var parts []string
		for _, v := range values {
			parts = append(parts, splitValues(v)...)
		}
		if len(parts) > 0 {
			req.Filter[key] = parts
		}
	}
	return req
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func splitValues(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// column reports whether name may be interpolated into SQL as a column.
func column(name string, allowed []string) bool {
	return validFieldName.MatchString(name) && slices.Contains(allowed, name)
}

// Paginate applies LIMIT/OFFSET for req.Page and req.PerPage. The offset
// never exceeds math.MaxInt32, whatever page is asked for.
func Paginate(req domain.PageRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		offset := 0
		if req.PerPage > 0 {
			offset = min(max(req.Page, 1)-1, math.MaxInt32/req.PerPage) * req.PerPage
		}
		return db.Offset(offset).Limit(req.PerPage)
	}
}

// Sort orders by each "field:dir" pair of req.Sort, left to right. A bare
// "field" sorts ascending. Pairs with a field outside allowed or a direction
// other than asc/desc are skipped.
func Sort(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, pair := range strings.Split(req.Sort, ",") {
			field, dir, ok := strings.Cut(pair, ":")
			field = strings.TrimSpace(field)
			dir = strings.ToLower(strings.TrimSpace(dir))
			if !ok {
				dir = "asc"
			}
			if (dir == "asc" || dir == "desc") && column(field, allowed) {
				db = db.Order(field + " " + dir)
			}
		}
		return db
	}
}

// Filter adds one WHERE condition per allowed filter key, in key order:
// LIKE for "__like" keys, = for a single value and IN for several.
// Unknown keys are ignored.
func Filter(req domain.PageRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		keys := make([]string, 0, len(req.Filter))
		for key := range req.Filter {
			keys = append(keys, key)
		}
		slices.Sort(keys)

		for _, key := range keys {
			values := req.Filter[key]
			field, like := strings.CutSuffix(key, likeSuffix)
			if len(values) == 0 || !column(field, allowed) {
				continue
			}
			switch {
			case like:
				db = db.Where(field+" LIKE ?", "%"+values[0]+"%")
			case len(values) == 1:
				db = db.Where(field+" = ?", values[0])
			default:
				db = db.Where(field+" IN ?", values)
			}
		}
		return db
	}
}

// Search matches req.Search as a substring of any of fields.
func Search(req domain.PageRequest, fields []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if req.Search == "" {
			return db
		}
		var ors []string
		var args []any
		for _, f := range fields {
			if validFieldName.MatchString(f) {
				ors = append(ors, f+" LIKE ?")
				args = append(args, "%"+req.Search+"%")
			}
		}
		if len(ors) == 0 {
			return db
		}
		return db.Where("("+strings.Join(ors, " OR ")+")", args...)
	}
}

// NewPageResult wraps items with the totals for req. Items is never nil.
func NewPageResult[T any](items []T, total int64, req domain.PageRequest) *domain.PageResult[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.PerPage > 0 {
		pages = int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	}
	return &domain.PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		PerPage:    req.PerPage,
		TotalPages: pages,
	}
}
