package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/gridx/internal/grid"
	"github.com/desertthunder/gridx/internal/services"
	"github.com/desertthunder/gridx/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PickerView ViewState = iota
	GridView
)

// loadMoreMargin is how close to the bottom the cursor gets before the next
// page is requested.
const loadMoreMargin = 10

// panelView holds the per-panel presentation state the registry doesn't track:
// cursor position, scroll offset, and marked rows.
type panelView struct {
	id           string
	playlistName string
	cursor       int
	offset       int
	marks        map[int]bool
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	svc      services.PlaylistService
	registry *grid.Registry
	executor *grid.Executor

	view    ViewState
	panels  []*panelView
	focused int

	picker      list.Model
	pickerReady bool

	// dragData is the encoded payload of the active grab, nil when idle.
	dragData []byte
	busy     bool

	notice    string
	noticeErr bool

	width  int
	height int
	help   help.Model
	keys   keyMap
	err    error
}

// NewModel creates a new TUI model over the given engine components,
// registering panelCount panels with the registry.
func NewModel(ctx context.Context, svc services.PlaylistService, registry *grid.Registry, executor *grid.Executor, panelCount int) *Model {
	if panelCount < 2 {
		panelCount = 2
	}

	panels := make([]*panelView, panelCount)
	for i := range panels {
		panels[i] = &panelView{
			id:    registry.Register(""),
			marks: make(map[int]bool),
		}
	}

	return &Model{
		ctx:      ctx,
		svc:      svc,
		registry: registry,
		executor: executor,
		view:     PickerView,
		panels:   panels,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init initializes the TUI by fetching the user's playlists for the picker.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.pickerReady {
			m.picker.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		m.notice = ""
		switch m.view {
		case PickerView:
			return m.handlePickerKeys(msg)
		case GridView:
			return m.handleGridKeys(msg)
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.picker = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.picker.Title = fmt.Sprintf("Choose a playlist for panel %d", m.focused+1)
		m.picker.SetSize(m.width-4, m.height-8)
		m.pickerReady = true
		return m, nil

	case panelBoundMsg:
		if msg.err != nil {
			m.setNotice(fmt.Sprintf("failed to open playlist: %v", msg.err), true)
			return m, nil
		}
		if err := m.registry.Bind(msg.panelID, msg.playlistID, msg.page); err != nil {
			m.setNotice(err.Error(), true)
			return m, nil
		}
		for _, p := range m.panels {
			if p.id == msg.panelID {
				p.cursor = 0
				p.offset = 0
				p.marks = make(map[int]bool)
			}
		}
		m.view = GridView
		return m, nil

	case pageLoadedMsg:
		if msg.err != nil {
			m.registry.FailLoadMore(msg.req)
			m.setNotice(fmt.Sprintf("failed to load more tracks: %v", msg.err), true)
			return m, nil
		}
		m.registry.CompleteLoadMore(msg.req, msg.page)
		return m, nil

	case transferDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.setNotice(transferNotice(msg.err), true)
			return m, nil
		}
		m.setNotice(fmt.Sprintf("%s committed (%d tracks)", msg.result.Plan.Drop.Mode, len(msg.result.Plan.Payload.TrackIDs)), false)
		return m, nil
	}

	if m.view == PickerView && m.pickerReady {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

// transferNotice maps executor errors to short, actionable banner text.
func transferNotice(err error) string {
	switch {
	case errors.Is(err, shared.ErrStaleTransfer):
		return "playlist changed since grab, try the drop again"
	case errors.Is(err, shared.ErrPartialTransfer):
		return "transfer partially applied, panels refreshed from Spotify"
	case errors.Is(err, shared.ErrRemoteOp):
		return fmt.Sprintf("transfer failed and was rolled back: %v", err)
	default:
		return err.Error()
	}
}

// Err returns the fatal error that ended the session, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

func (m *Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		// Back out only once the focused panel shows something.
		if p, err := m.registry.Panel(m.panels[m.focused].id); err == nil && p.PlaylistID != "" {
			m.view = GridView
		}
		return m, nil
	case "enter":
		if !m.pickerReady {
			return m, nil
		}
		if selected, ok := m.picker.SelectedItem().(playlistItem); ok {
			m.panels[m.focused].playlistName = selected.playlist.Name
			return m, m.bindPanel(m.panels[m.focused].id, selected.playlist.ID)
		}
		return m, nil
	}

	if !m.pickerReady {
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) handleGridKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pv := m.panels[m.focused]
	panel, err := m.registry.Panel(pv.id)
	if err != nil {
		m.setNotice(err.Error(), true)
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		m.focused = (m.focused + 1) % len(m.panels)
		return m, nil

	case "o":
		if m.pickerReady {
			m.picker.Title = fmt.Sprintf("Choose a playlist for panel %d", m.focused+1)
		}
		m.view = PickerView
		return m, nil

	case "up", "k":
		if pv.cursor > 0 {
			pv.cursor--
			if pv.cursor < pv.offset {
				pv.offset = pv.cursor
			}
		}
		return m, nil

	case "down", "j":
		if pv.cursor < len(panel.Tracks) {
			pv.cursor++
			if pv.cursor >= pv.offset+m.panelRows() {
				pv.offset++
			}
		}
		return m, m.maybeLoadMore(pv, panel)

	case " ":
		if pv.cursor < len(panel.Tracks) {
			if pv.marks[pv.cursor] {
				delete(pv.marks, pv.cursor)
			} else {
				pv.marks[pv.cursor] = true
			}
		}
		return m, nil

	case "g":
		m.grab(pv, panel)
		return m, nil

	case "m", "enter":
		return m, m.drop(grid.Move)

	case "c":
		return m, m.drop(grid.Copy)

	case "esc":
		m.dragData = nil
		return m, nil
	}

	return m, nil
}

// grab snapshots the marked tracks (or the cursor row) into an encoded drag
// payload. The payload pins IDs, URIs, and indices at grab time; the drop is
// validated against them later.
func (m *Model) grab(pv *panelView, panel grid.Panel) {
	indices := make([]int, 0, len(pv.marks))
	for idx := range pv.marks {
		if idx < len(panel.Tracks) {
			indices = append(indices, idx)
		}
	}
	if len(indices) == 0 {
		if pv.cursor >= len(panel.Tracks) {
			m.setNotice("nothing to grab here", true)
			return
		}
		indices = []int{pv.cursor}
	}

	ids := make([]string, len(indices))
	uris := make([]string, len(indices))
	for k, idx := range indices {
		ids[k] = panel.Tracks[idx].ID
		uris[k] = panel.Tracks[idx].URI
	}

	payload, err := grid.NewDragPayload(ids, uris, panel.PlaylistID, pv.id, indices)
	if err != nil {
		m.setNotice(err.Error(), true)
		return
	}

	m.dragData = payload.Encode()
	m.setNotice(fmt.Sprintf("grabbed %d track(s), drop with m (move) or c (copy)", len(indices)), false)
}

// drop executes the active grab against the focused panel at the cursor row.
func (m *Model) drop(mode grid.Mode) tea.Cmd {
	if m.busy {
		m.setNotice("a transfer is still committing", true)
		return nil
	}
	if !grid.IsDragData(m.dragData) {
		m.setNotice("nothing grabbed", true)
		return nil
	}

	pv := m.panels[m.focused]
	panel, err := m.registry.Panel(pv.id)
	if err != nil {
		m.setNotice(err.Error(), true)
		return nil
	}
	if panel.PlaylistID == "" {
		m.setNotice("bind this panel to a playlist first", true)
		return nil
	}

	drop := grid.DropResult{
		TargetPanelID:    pv.id,
		TargetPlaylistID: panel.PlaylistID,
		TargetIndex:      pv.cursor,
		Mode:             mode,
	}

	data := m.dragData
	m.dragData = nil
	m.busy = true
	for _, p := range m.panels {
		p.marks = make(map[int]bool)
	}

	return func() tea.Msg {
		payload, ok := grid.DecodeDragData(data)
		if !ok {
			return transferDoneMsg{err: fmt.Errorf("%w: drag payload corrupted", shared.ErrInvalidPayload)}
		}
		result, err := m.executor.Execute(m.ctx, payload, drop)
		return transferDoneMsg{result: result, err: err}
	}
}

// maybeLoadMore requests the next page once the cursor nears the bottom of
// what is already loaded.
func (m *Model) maybeLoadMore(pv *panelView, panel grid.Panel) tea.Cmd {
	if pv.cursor < len(panel.Tracks)-loadMoreMargin {
		return nil
	}

	req, ok, err := m.registry.BeginLoadMore(pv.id)
	if err != nil || !ok {
		return nil
	}

	return func() tea.Msg {
		page, err := m.svc.ListTracks(m.ctx, req.PlaylistID, req.Cursor)
		return pageLoadedMsg{req: req, page: page, err: err}
	}
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.svc.GetPlaylists(m.ctx)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) bindPanel(panelID, playlistID string) tea.Cmd {
	return func() tea.Msg {
		page, err := m.svc.ListTracks(m.ctx, playlistID, "")
		return panelBoundMsg{panelID: panelID, playlistID: playlistID, page: page, err: err}
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PickerView:
		return m.renderPicker()
	case GridView:
		return m.renderGrid()
	default:
		return ""
	}
}

func (m *Model) renderPicker() string {
	if !m.pickerReady {
		return "Loading playlists..."
	}
	return fmt.Sprintf("%s\n\n%s", m.picker.View(), m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m *Model) renderGrid() string {
	columns := make([]string, len(m.panels))
	for i, pv := range m.panels {
		columns[i] = m.renderPanel(i, pv)
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, columns...)

	var banner string
	if m.notice != "" {
		if m.noticeErr {
			banner = styles.err.Render(m.notice)
		} else {
			banner = styles.ok.Render(m.notice)
		}
	} else if m.busy {
		banner = styles.warn.Render("committing...")
	}

	return fmt.Sprintf("%s\n%s\n%s", row, banner, m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m *Model) renderPanel(i int, pv *panelView) string {
	panel, err := m.registry.Panel(pv.id)
	if err != nil {
		return styles.err.Render(err.Error())
	}

	title := pv.playlistName
	if title == "" {
		title = fmt.Sprintf("panel %d (empty, press o)", i+1)
	}

	rows := m.panelRows()
	var body string
	end := pv.offset + rows
	if end > len(panel.Tracks) {
		end = len(panel.Tracks)
	}

	for idx := pv.offset; idx < end; idx++ {
		track := panel.Tracks[idx]
		line := fmt.Sprintf("%s • %s", track.Title, track.Artist)

		prefix := "  "
		if i == m.focused && idx == pv.cursor {
			prefix = "> "
		}
		if pv.marks[idx] {
			line = styles.marked.Render("* " + line)
		}
		body += prefix + line + "\n"
	}
	if i == m.focused && pv.cursor == len(panel.Tracks) {
		body += styles.help.Render("> (end)") + "\n"
	}

	footer := fmt.Sprintf("%d of %d tracks", len(panel.Tracks), panel.Total)
	if panel.Loading {
		footer += " • loading..."
	}

	content := fmt.Sprintf("%s\n%s\n%s", styles.title.Render(title), body, styles.help.Render(footer))

	w := m.panelWidth()
	if i == m.focused {
		return styles.focused.Width(w).Render(content)
	}
	return styles.blurred.Width(w).Render(content)
}

func (m *Model) panelRows() int {
	rows := m.height - 10
	if rows < 5 {
		rows = 5
	}
	return rows
}

func (m *Model) panelWidth() int {
	if len(m.panels) == 0 {
		return 40
	}
	w := m.width/len(m.panels) - 4
	if w < 24 {
		w = 24
	}
	return w
}
