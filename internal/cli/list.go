package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/simp-lee/backoffice/internal/client"
	"github.com/simp-lee/backoffice/internal/console"
	"github.com/simp-lee/backoffice/internal/listquery"
)

type listOptions struct {
	page    int
	sort    string
	search  string
	filters []string
	output  string
	stateID uint
}

func newListCommand() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "Fetch and print one page of a collection",
		Example: `  # Second page of active users, newest first
  adminctl list users --page 2 --sort created_at:desc --filter status=ACTIVE

  # Users that are either active or banned, as JSON
  adminctl list users --filter status=ACTIVE,BANNED --output json

  # Cities of state 3
  adminctl list cities --state 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.page, "page", 1, "page number, starting at 1")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "sort order, e.g. name:asc,id:desc")
	cmd.Flags().StringVar(&opts.search, "search", "", "free text search")
	cmd.Flags().StringArrayVar(&opts.filters, "filter", nil, "column filter column=value[,value] (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "table", "output format (table|json)")
	cmd.Flags().UintVar(&opts.stateID, "state", 0, "list the cities of this state")

	_ = cmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func runList(cmd *cobra.Command, name string, opts *listOptions) error {
	if opts.output != "table" && opts.output != "json" {
		return fmt.Errorf("invalid output %q: must be table or json", opts.output)
	}
	if opts.page < 1 {
		return fmt.Errorf("invalid page %d: must be at least 1", opts.page)
	}
	coll, err := collectionFor(name, opts.stateID)
	if err != nil {
		return err
	}
	c, sess, err := newClient(cmd.Context())
	if err != nil {
		return err
	}

	state, err := buildState(coll, opts, sess.cfg.PerPage)
	if err != nil {
		return err
	}
	params := listquery.DeriveParams(state)
	sess.log.Debug("listing", "collection", coll.Name, "params", params.Encode())

	page, err := client.List(cmd.Context(), c, coll, params)
	if err != nil {
		return err
	}

	if opts.output == "json" {
		return renderJSON(cmd.OutOrStdout(), state, page)
	}
	return renderTable(cmd.OutOrStdout(), coll, state, page)
}

// buildState turns the flags into the list state the server is queried with.
// Sort and filter columns are checked against the collection.
func buildState(coll client.Collection[client.Records], opts *listOptions, perPage int) (listquery.State, error) {
	state := listquery.State{
		PageIndex:     opts.page - 1,
		PageSize:      perPage,
		Sorting:       listquery.ParseSorting(opts.sort),
		ColumnFilters: make(map[string]listquery.FilterValue),
		GlobalFilter:  opts.search,
	}

	for _, f := range state.Sorting {
		col, ok := findColumn(coll, f.ID)
		if !ok || !col.Sortable {
			return state, fmt.Errorf("column %q of %s cannot be sorted", f.ID, coll.Name)
		}
	}
	for _, raw := range opts.filters {
		id, v, err := console.ParseFilter(raw)
		if err != nil {
			return state, err
		}
		col, ok := findColumn(coll, id)
		if !ok || !col.Filterable {
			return state, fmt.Errorf("column %q of %s cannot be filtered", id, coll.Name)
		}
		if len(v) == 0 {
			delete(state.ColumnFilters, id)
			continue
		}
		state.ColumnFilters[id] = v
	}
	return state, nil
}

// findColumn looks id up among the collection's columns. A "__like" suffix
// asks the server for a substring match on the same column.
func findColumn(coll client.Collection[client.Records], id string) (listquery.Column, bool) {
	id = strings.TrimSuffix(id, "__like")
	i := slices.IndexFunc(coll.Columns, func(c listquery.Column) bool { return c.ID == id })
	if i < 0 {
		return listquery.Column{}, false
	}
	return coll.Columns[i], true
}

func renderTable(w io.Writer, coll client.Collection[client.Records], state listquery.State, page listquery.Page[client.Records]) error {
	if len(page.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(coll.Columns))
	for i, col := range coll.Columns {
		header[i] = col.Title
	}
	t.AppendHeader(header)

	for _, r := range page.Rows {
		row := make(table.Row, len(coll.Columns))
		for i, col := range coll.Columns {
			row[i] = console.Cell(r[col.ID])
		}
		t.AppendRow(row)
	}
	t.Render()

	_, _ = fmt.Fprintf(w, "page %d/%d (%d rows)\n", state.PageIndex+1, page.TotalPages, len(page.Rows))
	return nil
}

func renderJSON(w io.Writer, state listquery.State, page listquery.Page[client.Records]) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"page":        state.PageIndex + 1,
		"per_page":    state.PageSize,
		"total_pages": page.TotalPages,
		"rows":        page.Rows,
	})
}
