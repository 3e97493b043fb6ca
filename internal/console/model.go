// Package console is the interactive terminal data table behind
// "adminctl browse": one collection, paged, sorted, filtered and searched on
// the server through a listquery controller.
package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/simp-lee/backoffice/internal/client"
	"github.com/simp-lee/backoffice/internal/listquery"
)

const (
	pageSizeStep   = 5
	maxPageSize    = 100
	maxColumnWidth = 28
	deleteTimeout  = 10 * time.Second
	chromeHeight   = 9
)

// DeleteFunc removes one record by id.
type DeleteFunc func(ctx context.Context, id uint) error

// Config configures a Model.
type Config struct {
	Collection client.Collection[client.Records]
	Fetch      listquery.FetchFunc[client.Records]
	// Delete is optional; without it the delete key only reports an error.
	Delete DeleteFunc
	// Notifier is broadcast after deletions. Views sharing it refetch too.
	Notifier *listquery.Notifier
	PageSize int
	Debounce time.Duration
	Height   int
	Logger   *slog.Logger
}

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeFilter
	modeConfirm
)

type changedMsg struct{}

type deletedMsg struct {
	n   int
	err error
}

// Model is the bubbletea model of the data table.
type Model struct {
	coll     client.Collection[client.Records]
	ctl      *listquery.Controller
	loader   *listquery.Loader[client.Records]
	notifier *listquery.Notifier
	del      DeleteFunc
	log      *slog.Logger

	stopFollow func()
	changes    chan struct{}
	done       chan struct{}

	table    table.Model
	input    textinput.Model
	mode     mode
	sortable []listquery.Column
	sortCol  int
	rows     []client.Records
	pending  []uint
	notice   string
	problem  string
}

// New creates the model and starts the first fetch.
func New(cfg Config) (*Model, error) {
	if cfg.Fetch == nil {
		return nil, errors.New("console: fetch function is required")
	}
	if len(cfg.Collection.Columns) == 0 {
		return nil, fmt.Errorf("console: collection %q has no columns", cfg.Collection.Name)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = listquery.NewNotifier()
	}
	if cfg.Height <= 0 {
		cfg.Height = 15
	}

	m := &Model{
		coll:     cfg.Collection,
		notifier: cfg.Notifier,
		del:      cfg.Delete,
		log:      cfg.Logger,
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
		input:    textinput.New(),
	}
	for _, col := range cfg.Collection.Columns {
		if col.Sortable {
			m.sortable = append(m.sortable, col)
		}
	}

	m.ctl = listquery.New(listquery.Config{
		InitialPageSize: cfg.PageSize,
		Columns:         cfg.Collection.Columns,
		Debounce:        cfg.Debounce,
		Logger:          cfg.Logger,
	})
	m.table = table.New(
		table.WithColumns(m.columns(nil)),
		table.WithFocused(true),
		table.WithHeight(cfg.Height),
		table.WithStyles(tableStyles()),
		table.WithKeyMap(tableKeys()),
	)

	m.loader = listquery.NewLoader(m.ctl, cfg.Fetch,
		listquery.WithLogger[client.Records](cfg.Logger),
		listquery.WithRowID(recordID),
	)
	m.loader.OnChange(m.signal)
	m.stopFollow = m.loader.Follow(m.notifier)
	return m, nil
}

// tableKeys keeps row movement only; letters are taken by the view's own keys.
func tableKeys() table.KeyMap {
	km := table.DefaultKeyMap()
	km.LineUp = key.NewBinding(key.WithKeys("up", "k"))
	km.LineDown = key.NewBinding(key.WithKeys("down", "j"))
	km.PageUp = key.NewBinding(key.WithKeys("pgup"))
	km.PageDown = key.NewBinding(key.WithKeys("pgdown"))
	km.HalfPageUp = key.NewBinding(key.WithKeys("ctrl+u"))
	km.HalfPageDown = key.NewBinding(key.WithKeys("ctrl+d"))
	km.GotoTop = key.NewBinding(key.WithKeys("home"))
	km.GotoBottom = key.NewBinding(key.WithKeys("end"))
	return km
}

// Close stops the loader, the controller and the change feed.
func (m *Model) Close() {
	select {
	case <-m.done:
		return
	default:
	}
	close(m.done)
	m.stopFollow()
	m.loader.Close()
	m.ctl.Close()
}

// Run shows the table full-screen until the user quits or ctx ends.
func Run(ctx context.Context, cfg Config) error {
	m, err := New(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// signal is the loader's change callback; it may run on any goroutine.
func (m *Model) signal() {
	select {
	case m.changes <- struct{}{}:
	default:
	}
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changes:
			return changedMsg{}
		case <-m.done:
			return nil
		}
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.waitForChange(), func() tea.Msg { return changedMsg{} })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.sync()
		return m, m.waitForChange()

	case deletedMsg:
		m.loader.ClearSelection()
		m.notifier.Broadcast()
		if msg.err != nil {
			m.problem = fmt.Sprintf("deleted %d, then failed: %v", msg.n, msg.err)
		} else {
			m.notice = fmt.Sprintf("deleted %d record(s)", msg.n)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(max(msg.Height-chromeHeight, 3))
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeFilter:
			return m.updateFilter(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice, m.problem = "", ""
	state := m.ctl.State()

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "right", "l", "n":
		if state.PageIndex+1 < m.loader.TotalPages() {
			m.ctl.SetPage(state.PageIndex + 1)
		}
	case "left", "h", "p":
		if state.PageIndex > 0 {
			m.ctl.SetPage(state.PageIndex - 1)
		}
	case "+":
		m.ctl.SetPageSize(min(state.PageSize+pageSizeStep, maxPageSize))
	case "-":
		m.ctl.SetPageSize(max(state.PageSize-pageSizeStep, pageSizeStep))
	case "]", "tab":
		if len(m.sortable) > 0 {
			m.sortCol = (m.sortCol + 1) % len(m.sortable)
		}
		m.refreshColumns()
	case "[", "shift+tab":
		if len(m.sortable) > 0 {
			m.sortCol = (m.sortCol - 1 + len(m.sortable)) % len(m.sortable)
		}
		m.refreshColumns()
	case "s":
		if len(m.sortable) == 0 {
			m.problem = "no sortable columns"
			break
		}
		m.ctl.ToggleSort(m.sortable[m.sortCol].ID)
		m.refreshColumns()
	case "/":
		m.mode = modeSearch
		m.input.Prompt = "search> "
		m.input.Placeholder = "free text"
		m.input.SetValue(state.GlobalFilter)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "f":
		m.mode = modeFilter
		m.input.Prompt = "filter> "
		m.input.Placeholder = "column=value[,value]  (empty value clears)"
		m.input.Reset()
		return m, m.input.Focus()
	case " ":
		if r, ok := m.cursorRecord(); ok {
			m.loader.ToggleSelected(recordID(r))
			m.sync()
		}
	case "x":
		return m.askDelete()
	case "r":
		m.loader.Refetch()
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctl.SetGlobalFilter(m.input.Value())
	return m, cmd
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		m.mode = modeBrowse
		m.input.Blur()
		id, values, err := ParseFilter(m.input.Value())
		if err != nil {
			m.problem = err.Error()
			return m, nil
		}
		if !m.filterable(id) {
			m.problem = fmt.Sprintf("column %q cannot be filtered", id)
			return m, nil
		}
		m.ctl.SetColumnFilter(id, values)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) askDelete() (tea.Model, tea.Cmd) {
	if m.del == nil {
		m.problem = "delete is not available"
		return m, nil
	}
	targets := m.loader.Selected()
	if len(targets) == 0 {
		if r, ok := m.cursorRecord(); ok {
			targets = []client.Records{r}
		}
	}
	ids := make([]uint, 0, len(targets))
	for _, r := range targets {
		id, err := strconv.ParseUint(recordID(r), 10, 64)
		if err != nil || id == 0 {
			m.problem = fmt.Sprintf("record without a numeric id: %q", recordID(r))
			return m, nil
		}
		ids = append(ids, uint(id))
	}
	if len(ids) == 0 {
		m.problem = "nothing to delete"
		return m, nil
	}
	m.pending = ids
	m.mode = modeConfirm
	return m, nil
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeBrowse
	ids := m.pending
	m.pending = nil
	if msg.String() != "y" {
		m.notice = "delete cancelled"
		return m, nil
	}
	del, log := m.del, m.log
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), deleteTimeout)
		defer cancel()
		for i, id := range ids {
			if err := del(ctx, id); err != nil {
				log.Warn("delete failed", slog.Uint64("id", uint64(id)), slog.Any("error", err))
				return deletedMsg{n: i, err: err}
			}
		}
		return deletedMsg{n: len(ids)}
	}
}

// sync copies the loader's page into the table.
func (m *Model) sync() {
	m.rows = m.loader.Rows()
	rows := make([]table.Row, len(m.rows))
	for i, r := range m.rows {
		row := make(table.Row, 0, len(m.coll.Columns)+1)
		mark := ""
		if m.loader.IsSelected(recordID(r)) {
			mark = "*"
		}
		row = append(row, mark)
		for _, col := range m.coll.Columns {
			row = append(row, Cell(r[col.ID]))
		}
		rows[i] = row
	}
	m.table.SetRows(rows)
	m.table.SetColumns(m.columns(rows))
	if c := m.table.Cursor(); c >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func (m *Model) refreshColumns() {
	m.table.SetColumns(m.columns(m.table.Rows()))
}

// columns sizes every column to its widest cell, capped at maxColumnWidth.
func (m *Model) columns(rows []table.Row) []table.Column {
	sorting := m.ctl.State().Sorting
	cols := make([]table.Column, 0, len(m.coll.Columns)+1)
	cols = append(cols, table.Column{Title: "", Width: 1})
	for i, col := range m.coll.Columns {
		title := col.Title
		switch sorting.Direction(col.ID) {
		case "asc":
			title += " ▲"
		case "desc":
			title += " ▼"
		}
		if len(m.sortable) > 0 && m.sortable[m.sortCol].ID == col.ID {
			title = "›" + title
		}
		width := len([]rune(title))
		for _, r := range rows {
			if i+1 < len(r) {
				width = max(width, len([]rune(r[i+1])))
			}
		}
		cols = append(cols, table.Column{Title: title, Width: min(width, maxColumnWidth)})
	}
	return cols
}

func (m *Model) cursorRecord() (client.Records, bool) {
	c := m.table.Cursor()
	if c < 0 || c >= len(m.rows) {
		return nil, false
	}
	return m.rows[c], true
}

func (m *Model) filterable(id string) bool {
	for _, col := range m.coll.Columns {
		if col.ID == id {
			return col.Filterable
		}
	}
	return false
}

func recordID(r client.Records) string {
	return Cell(r["id"])
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	state := m.ctl.State()

	b.WriteString(titleStyle.Render(m.coll.Title))
	b.WriteString("\n\n")

	switch m.mode {
	case modeSearch, modeFilter:
		b.WriteString(promptStyle.Render(m.input.View()))
	default:
		b.WriteString(statusStyle.Render(queryLine(state)))
	}
	b.WriteString("\n")

	b.WriteString(tableBorder.Render(m.table.View()))
	b.WriteString("\n")

	b.WriteString(statusStyle.Render(m.statusLine(state)))
	b.WriteString("\n")

	switch {
	case m.mode == modeConfirm:
		b.WriteString(errorStyle.Render(fmt.Sprintf("delete %d record(s)? y/n", len(m.pending))))
	case m.problem != "":
		b.WriteString(errorStyle.Render(m.problem))
	case m.loader.Err() != nil:
		b.WriteString(errorStyle.Render("fetch failed: " + m.loader.Err().Error()))
	case m.notice != "":
		b.WriteString(noticeStyle.Render(m.notice))
	}
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("←/→ page  +/- size  [/] column  s sort  / search  f filter  space select  x delete  r refresh  q quit"))
	return b.String()
}

func queryLine(s listquery.State) string {
	parts := []string{}
	if s.GlobalFilter != "" {
		parts = append(parts, fmt.Sprintf("search %q", s.GlobalFilter))
	}
	params := listquery.DeriveParams(listquery.State{ColumnFilters: s.ColumnFilters})
	for _, k := range sortedParamKeys(params) {
		parts = append(parts, k+"="+params[k])
	}
	if len(parts) == 0 {
		return "no filters"
	}
	return strings.Join(parts, "  ")
}

func sortedParamKeys(p listquery.Params) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		switch k {
		case listquery.ParamPage, listquery.ParamPerPage, listquery.ParamSort, listquery.ParamSearch:
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (m *Model) statusLine(s listquery.State) string {
	total := m.loader.TotalPages()
	page := s.PageIndex + 1
	if total == 0 {
		page = 0
	}
	line := fmt.Sprintf("page %d/%d  %d per page", page, total, s.PageSize)
	if len(s.Sorting) > 0 {
		line += "  sort " + s.Sorting.String()
	}
	if n := len(m.loader.Selected()); n > 0 {
		line += fmt.Sprintf("  %d selected", n)
	}
	if m.loader.Loading() {
		line += "  loading…"
	} else if m.ctl.Debouncing() {
		line += "  typing…"
	}
	return line
}
