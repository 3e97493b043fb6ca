package resource

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/backoffice/internal/domain"
	"github.com/simp-lee/backoffice/internal/listquery"
)

// listTemplate is the shared read-only data table page.
const listTemplate = "resource/list.html"

// PageHandler renders the server-side HTML data table of a collection.
type PageHandler[T any] struct {
	def Definition[T]
	api *Handler[T]
}

// NewPageHandler creates a PageHandler that lists through h.
func NewPageHandler[T any](h *Handler[T]) *PageHandler[T] {
	return &PageHandler[T]{def: h.def, api: h}
}

// headerCell is one column header with the link that toggles its sort.
type headerCell struct {
	Title     string
	Sortable  bool
	Direction string
	SortURL   string
}

// ListPage renders the collection list page.
// GET /<collection>
func (h *PageHandler[T]) ListPage(c *gin.Context) {
	req := h.api.PageRequest(c)

	result, err := h.api.svc.List(c.Request.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "list page failed",
			slog.String("collection", h.def.Collection), slog.Any("error", err))
		c.HTML(http.StatusInternalServerError, "errors/500.html", gin.H{})
		return
	}

	rows, err := tableRows(result.Items, h.def.Columns)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "list page rows failed",
			slog.String("collection", h.def.Collection), slog.Any("error", err))
		c.HTML(http.StatusInternalServerError, "errors/500.html", gin.H{})
		return
	}

	query := c.Request.URL.Query()
	sorting := listquery.ParseSorting(req.Sort)
	headers := make([]headerCell, 0, len(h.def.Columns))
	for _, col := range h.def.Columns {
		cell := headerCell{Title: col.Title, Sortable: col.Sortable}
		if col.Sortable {
			cell.Direction = sorting.Direction(col.ID)
			cell.SortURL = h.linkWith(query, "sort", sorting.Toggle(col.ID).String())
		}
		headers = append(headers, cell)
	}

	data := gin.H{
		"Title":      h.def.Title,
		"Collection": h.def.Collection,
		"Headers":    headers,
		"Rows":       rows,
		"Search":     req.Search,
		"Pagination": pageLinks(h, query, result),
	}
	c.HTML(http.StatusOK, listTemplate, data)
}

// pagination is the view model of the pager partial.
type pagination struct {
	Page       int
	TotalPages int
	Total      int64
	PrevURL    string
	NextURL    string
}

func pageLinks[T any](h *PageHandler[T], query url.Values, result *domain.PageResult[T]) pagination {
	p := pagination{Page: result.Page, TotalPages: result.TotalPages, Total: result.Total}
	if result.Page > 1 {
		p.PrevURL = h.linkWith(query, "page", strconv.Itoa(result.Page-1))
	}
	if result.Page < result.TotalPages {
		p.NextURL = h.linkWith(query, "page", strconv.Itoa(result.Page+1))
	}
	return p
}

// linkWith returns the list URL with key set to value; an empty value removes key.
// Changing the sort returns to the first page.
func (h *PageHandler[T]) linkWith(query url.Values, key, value string) string {
	q := url.Values{}
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	if value == "" {
		q.Del(key)
	} else {
		q.Set(key, value)
	}
	if key == "sort" {
		q.Del("page")
	}
	if len(q) == 0 {
		return "/" + h.def.Collection
	}
	return "/" + h.def.Collection + "?" + q.Encode()
}

// tableRows renders items as string cells in column order. Items are
// round-tripped through their JSON form so the table shows exactly what the
// API returns.
func tableRows[T any](items []T, columns []listquery.Column) ([][]string, error) {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("marshal row: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var fields map[string]any
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}

		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = formatCell(fields[col.ID])
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any:
		var b bytes.Buffer
		for i, e := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatCell(e))
		}
		return b.String()
	default:
		return fmt.Sprint(x)
	}
}
