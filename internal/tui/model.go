// Package tui is a terminal browser over the link history. It drives the
// same history.Session as the daemon, rendering the session's view.List.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/runnerr0/linkhist/internal/history"
	"github.com/runnerr0/linkhist/internal/storage"
	"github.com/runnerr0/linkhist/internal/view"
)

// DefaultThreshold is how many rows from the end of the list the cursor
// may get before the next page is requested.
const DefaultThreshold = 10

type pageLoadedMsg struct {
	n   int
	err error
}

type searchDoneMsg struct {
	seq   int
	query string
	n     int
	err   error
}

type selectedMsg struct {
	id     string
	opened bool
	err    error
}

type deletedMsg struct {
	id  string
	err error
}

// listChangedMsg is sent when the list changes outside the model, e.g. a
// capture arriving while browsing.
type listChangedMsg struct{}

// Model is the bubbletea model of the browser.
type Model struct {
	ctx       context.Context
	session   *history.Session
	list      *view.List
	keys      KeyMap
	styles    styles
	threshold int

	width  int
	height int
	cursor int
	offset int

	searching bool
	input     textinput.Model
	searchSeq int

	loading bool
	status  string
	err     error

	now func() time.Time
}

// Option configures a Model.
type Option func(*Model)

// WithThreshold sets how close to the end of the list paging starts.
func WithThreshold(n int) Option {
	return func(m *Model) {
		if n >= 0 {
			m.threshold = n
		}
	}
}

// WithTheme replaces the default palette.
func WithTheme(t Theme) Option {
	return func(m *Model) { m.styles = newStyles(t) }
}

// NewModel returns a Model browsing list through session. list must be the
// presenter session was built with.
func NewModel(ctx context.Context, session *history.Session, list *view.List, opts ...Option) Model {
	input := textinput.New()
	input.Prompt = "/"
	input.Placeholder = "filename or link"
	input.CharLimit = 256
	input.Cursor.SetMode(cursor.CursorStatic)

	m := Model{
		ctx:       ctx,
		session:   session,
		list:      list,
		keys:      DefaultKeyMap,
		styles:    newStyles(DefaultTheme),
		threshold: DefaultThreshold,
		input:     input,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init loads the first page.
func (m Model) Init() tea.Cmd {
	return m.loadPageCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.clamp()
		return m, nil

	case pageLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.clamp()
		return m, nil

	case searchDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		// A slower, older search may have replaced the list last.
		if msg.seq != m.searchSeq && msg.query != m.input.Value() {
			if m.input.Value() == "" {
				m.session.Reset()
				cmd := m.loadPage()
				return m, cmd
			}
			cmd := m.search(m.input.Value())
			return m, cmd
		}
		m.err = nil
		m.cursor, m.offset = 0, 0
		m.status = fmt.Sprintf("%d matching", msg.n)
		return m, nil

	case selectedMsg:
		m.err = msg.err
		if errors.Is(msg.err, storage.ErrNotFound) {
			m.err = nil
			m.status = "link no longer stored"
		}
		return m, nil

	case deletedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = "deleted " + msg.id
		}
		m.clamp()
		cmd := m.maybeLoadMore()
		return m, cmd

	case listChangedMsg:
		m.clamp()
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKeys(msg)
		}
		return m.handleListKeys(msg)
	}
	return m, nil
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.list.Len()-1 {
			m.cursor++
		}
		m.scrollToCursor()
		cmd := m.maybeLoadMore()
		return m, cmd

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		m.scrollToCursor()
		return m, nil

	case key.Matches(msg, m.keys.Home):
		m.cursor, m.offset = 0, 0
		return m, nil

	case key.Matches(msg, m.keys.End):
		m.cursor = max(m.list.Len()-1, 0)
		m.scrollToCursor()
		cmd := m.maybeLoadMore()
		return m, cmd

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.status = ""
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Select):
		rec, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.selectRecord(rec.ID)

	case key.Matches(msg, m.keys.Delete):
		rec, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.deleteRecord(rec.ID)

	case key.Matches(msg, m.keys.Back):
		if _, open := m.list.Detail(); open {
			m.session.CloseDetail()
			return m, nil
		}
		if m.input.Value() != "" {
			return m.clearSearch()
		}
	}
	return m, nil
}

// handleSearchKeys edits the query. Every change runs a search; enter
// keeps the results and returns to the list, esc drops the query.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.searching = false
		m.input.Blur()
		return m, nil
	case tea.KeyEsc:
		return m.clearSearch()
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	searchCmd := m.search(m.input.Value())
	return m, tea.Batch(cmd, searchCmd)
}

// clearSearch leaves search mode and starts over from the first page.
func (m Model) clearSearch() (tea.Model, tea.Cmd) {
	m.searching = false
	m.input.Blur()
	m.input.SetValue("")
	m.searchSeq++
	m.session.Reset()
	m.cursor, m.offset = 0, 0
	m.status = ""
	cmd := m.loadPage()
	return m, cmd
}

func (m *Model) loadPage() tea.Cmd {
	m.loading = true
	return m.loadPageCmd()
}

func (m Model) loadPageCmd() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		n, err := session.LoadNextPage(ctx)
		return pageLoadedMsg{n: n, err: err}
	}
}

// maybeLoadMore requests the next page once the cursor is within the
// threshold of the end. Paging is off while a query is shown.
func (m *Model) maybeLoadMore() tea.Cmd {
	if m.loading || m.input.Value() != "" {
		return nil
	}
	if m.session.State().Pager.Exhausted {
		return nil
	}
	if !history.NearEnd(m.cursor, 1, m.list.Len(), m.threshold) {
		return nil
	}
	return m.loadPage()
}

func (m *Model) search(query string) tea.Cmd {
	m.searchSeq++
	seq, ctx, session := m.searchSeq, m.ctx, m.session
	return func() tea.Msg {
		results, err := session.Search(ctx, query)
		return searchDoneMsg{seq: seq, query: query, n: len(results), err: err}
	}
}

func (m Model) selectRecord(id string) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		rec, err := session.Select(ctx, id)
		return selectedMsg{id: id, opened: rec != nil, err: err}
	}
}

func (m Model) deleteRecord(id string) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		return deletedMsg{id: id, err: session.Delete(ctx, id)}
	}
}

func (m Model) selected() (storage.LinkRecord, bool) {
	items := m.list.Items()
	if m.cursor < 0 || m.cursor >= len(items) {
		return storage.LinkRecord{}, false
	}
	return items[m.cursor], true
}

// clamp keeps the cursor inside the list after it shrinks.
func (m *Model) clamp() {
	n := m.list.Len()
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	m.scrollToCursor()
}

func (m *Model) scrollToCursor() {
	visible := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// listHeight is the number of rows the list pane can show.
func (m Model) listHeight() int {
	h := m.height - 4
	if _, open := m.list.Detail(); open {
		h -= detailHeight
	}
	return max(h, 1)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	items := m.list.Items()
	if len(items) == 0 {
		if m.input.Value() != "" {
			b.WriteString(m.styles.faint.Render("No links match."))
		} else {
			b.WriteString(m.styles.faint.Render("No links captured yet."))
		}
		b.WriteString("\n")
	}

	end := min(m.offset+m.listHeight(), len(items))
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(items[i], i == m.cursor))
		b.WriteString("\n")
	}

	if rec, open := m.list.Detail(); open {
		b.WriteString(m.renderDetail(rec))
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	state := m.session.State()
	title := m.styles.header.Render("Link history")
	info := fmt.Sprintf("%d shown", m.list.Len())
	if state.Pager.Exhausted {
		info += ", all loaded"
	} else if m.loading {
		info += ", loading"
	}
	return title + "  " + m.styles.faint.Render(info)
}

func (m Model) renderRow(rec storage.LinkRecord, selected bool) string {
	row := view.NewRow(rec, m.list.Location())
	when := humanize.RelTime(rec.CapturedAt(), m.now(), "ago", "from now")

	nameWidth := max(m.width-44, 12)
	name := truncate(row.Filename, nameWidth)
	line := fmt.Sprintf("%-*s  %-10s %10s  %s", nameWidth, name, truncate(row.Host, 10), row.Size, when)

	switch {
	case selected:
		return m.styles.selected.Render(line)
	case rec.Expired:
		return m.styles.expired.Render(line)
	default:
		return m.styles.row.Render(line)
	}
}

const detailHeight = 9

func (m Model) renderDetail(rec storage.LinkRecord) string {
	row := view.NewRow(rec, m.list.Location())
	expired := "no"
	if row.Expired {
		expired = "yes"
	}
	lines := []string{
		m.field("ID", row.ID),
		m.field("Host", row.Host),
		m.field("Link", row.Link),
		m.field("Download", row.DownloadLink),
		m.field("Size", row.Size),
		m.field("Expired", expired),
		m.field("Time", row.Date),
	}
	return m.styles.detail.Width(max(m.width-2, 20)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, m.styles.label.Render(label), value)
}

func (m Model) renderFooter() string {
	if m.searching {
		return m.input.View()
	}
	if m.err != nil {
		return m.styles.err.Render("error: " + m.err.Error())
	}
	help := "j/k move  / search  enter details  d delete  q quit"
	if m.input.Value() != "" {
		help = fmt.Sprintf("search %q  esc clear  ", m.input.Value()) + help
	}
	if m.status != "" {
		help = m.status + "  " + help
	}
	return m.styles.faint.Render(help)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
