package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/PizzaHomicide/mirrorplay/internal/log"
	"github.com/PizzaHomicide/mirrorplay/internal/media"
	"github.com/PizzaHomicide/mirrorplay/internal/ui/tui/components"
	kb "github.com/PizzaHomicide/mirrorplay/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/mirrorplay/internal/ui/tui/styles"
	"github.com/PizzaHomicide/mirrorplay/internal/ui/tui/util"
)

// LibraryModel lists the videos in a folder and lets the user pick one
type LibraryModel struct {
	dir           string
	width, height int
	scanned       bool
	scanError     error
	cursor        int
	entries       []media.Entry // Every video in the folder
	filtered      []media.Entry // Videos matching the search query
	searchMode    bool
	searchInput   textinput.Model
}

// NewLibraryModel creates a picker for the videos in dir
func NewLibraryModel(dir string) *LibraryModel {
	ti := textinput.New()
	ti.Placeholder = "Search videos..."
	ti.CharLimit = 100
	ti.Width = 40

	return &LibraryModel{
		dir:         dir,
		searchInput: ti,
	}
}

func (m *LibraryModel) ViewType() View {
	return ViewLibrary
}

// Init starts the first scan of the folder
func (m *LibraryModel) Init() tea.Cmd {
	return m.scan()
}

func (m *LibraryModel) scan() tea.Cmd {
	dir := m.dir
	return func() tea.Msg {
		entries, err := media.Scan(dir)
		if err != nil {
			log.Warn("Failed to scan video folder", "dir", dir, "error", err)
		}
		return LibraryScannedMsg{Entries: entries, Error: err}
	}
}

// InSearchMode reports whether key presses are going to the search box
func (m *LibraryModel) InSearchMode() bool {
	return m.searchMode
}

// Update handles messages
func (m *LibraryModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd := m.handleSearchModeKeyMsg(msg); cmd != nil {
			return m, cmd
		}
		return m, m.handleKeyPress(msg)

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.moveCursor(-1)
		case tea.MouseButtonWheelDown:
			m.moveCursor(1)
		}
		return m, nil

	case LibraryScannedMsg:
		m.scanned = true
		m.scanError = msg.Error
		m.entries = msg.Entries
		m.applyFilter()
		log.Debug("Video folder scanned", "dir", m.dir, "count", len(m.entries))
		return m, nil

	case LibraryChangedMsg:
		log.Debug("Video folder changed, rescanning", "dir", m.dir)
		return m, m.scan()
	}

	return m, nil
}

func (m *LibraryModel) handleSearchModeKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if !m.searchMode {
		return nil
	}
	switch kb.GetActionByKey(msg, kb.ContextSearchMode) {
	case kb.ActionBack:
		// Cancels search, clearing the filter
		m.searchMode = false
		m.searchInput.SetValue("")
		m.searchInput.Blur()
		m.applyFilter()
		return Handled("search:exit")
	case kb.ActionSearchComplete:
		m.searchMode = false
		m.searchInput.Blur()
		m.applyFilter()
		return Handled("search:apply")
	}

	// Let the text input model handle other keys
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Filter as we type
	m.applyFilter()
	if cmd == nil {
		cmd = Handled("search:input")
	}
	return cmd
}

func (m *LibraryModel) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch kb.GetActionByKey(msg, kb.ContextLibrary) {
	case kb.ActionMoveUp:
		m.moveCursor(-1)
		return Handled("cursor_move:up")
	case kb.ActionMoveDown:
		m.moveCursor(1)
		return Handled("cursor_move:down")
	case kb.ActionPageUp:
		m.moveCursor(-m.visibleRows())
		return Handled("cursor_move:page_up")
	case kb.ActionPageDown:
		m.moveCursor(m.visibleRows())
		return Handled("cursor_move:page_down")
	case kb.ActionMoveTop:
		m.cursor = 0
		return Handled("cursor_move:top")
	case kb.ActionMoveBottom:
		m.cursor = max(len(m.filtered)-1, 0)
		return Handled("cursor_move:bottom")
	case kb.ActionEnableSearch:
		m.searchMode = true
		m.searchInput.Focus()
		return Handled("search:enable")
	case kb.ActionRefreshLibrary:
		return m.scan()
	case kb.ActionOpenVideo:
		entry := m.Selected()
		if entry == nil {
			return Handled("open_video:none_selected")
		}
		log.Info("Video selected", "path", entry.Path)
		path := entry.Path
		return func() tea.Msg {
			return LoadVideoMsg{Path: path}
		}
	}
	return nil
}

// Selected returns the entry under the cursor, or nil when the list is empty
func (m *LibraryModel) Selected() *media.Entry {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return nil
	}
	return &m.filtered[m.cursor]
}

func (m *LibraryModel) moveCursor(delta int) {
	if len(m.filtered) == 0 {
		m.cursor = 0
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.filtered)-1)
}

// applyFilter narrows the entries to the search query, keeping the cursor on the same file when possible
func (m *LibraryModel) applyFilter() {
	var selectedPath string
	if entry := m.Selected(); entry != nil {
		selectedPath = entry.Path
	}

	m.filtered = media.Filter(m.entries, m.searchInput.Value())

	m.cursor = 0
	for i, e := range m.filtered {
		if e.Path == selectedPath {
			m.cursor = i
			break
		}
	}
}

func (m *LibraryModel) visibleRows() int {
	// Header, folder line, search line, box borders, column header and footer
	return max(m.height-12, 1)
}

// View renders the library
func (m *LibraryModel) View() string {
	header := styles.Header(m.width, "mirrorplay: choose a video to practise with")
	folder := styles.Info.Render("Folder: ") + styles.Path.Render(util.TruncateString(m.dir, max(m.width-12, 10)))

	var search string
	if m.searchMode || m.searchInput.Value() != "" {
		search = m.searchInput.View()
	} else {
		search = styles.Muted.Render("Press / to search")
	}

	keyBindings := []components.KeyBinding{
		{Key: "↑/↓", Desc: "Navigate"},
		{Key: "enter", Desc: "Open"},
		{Key: "/", Desc: "Search"},
		{Key: "r", Desc: "Rescan"},
		{Key: "?", Desc: "Help"},
		{Key: "ctrl+c", Desc: "Quit"},
	}
	footer := components.KeyBindingsBar(m.width, keyBindings)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"",
		" "+folder,
		" "+search,
		m.renderList(),
		footer,
	)
}

func (m *LibraryModel) renderList() string {
	if !m.scanned {
		return styles.CenteredText(m.width, "Scanning folder...")
	}
	if m.scanError != nil {
		return styles.ContentBox(m.width-2, "Could not read the folder: "+m.scanError.Error(), 1)
	}
	if len(m.filtered) == 0 {
		if len(m.entries) == 0 {
			return styles.ContentBox(m.width-2, "No videos found. Supported formats: MP4, MOV, AVI, MPEG and WebM.\n"+
				"Run mirrorplay with a file path to open a video from elsewhere.", 1)
		}
		return styles.ContentBox(m.width-2, "No videos match the search", 1)
	}

	visibleCount := min(len(m.filtered), m.visibleRows())

	// Keep the cursor in view
	startIdx := 0
	if m.cursor >= visibleCount {
		startIdx = m.cursor - visibleCount + 1
	}
	endIdx := min(startIdx+visibleCount, len(m.filtered))

	rowWidth := max(m.width-6, 20)
	nameWidth := max(rowWidth-26, 10)

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Width(rowWidth)

	selectedStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.Accent).
		Width(rowWidth)

	normalStyle := lipgloss.NewStyle().
		Width(rowWidth)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s %9s %14s", util.PadRight("Name", nameWidth), "Size", "Modified")))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", rowWidth))
	b.WriteString("\n")

	for i := startIdx; i < endIdx; i++ {
		entry := m.filtered[i]
		row := fmt.Sprintf("%s %9s %14s",
			util.PadRight(util.TruncateString(entry.Name, nameWidth), nameWidth),
			humanize.Bytes(uint64(entry.Size)),
			util.TruncateString(humanize.Time(entry.ModTime), 14))

		if i == m.cursor {
			b.WriteString(selectedStyle.Render(row))
		} else {
			b.WriteString(normalStyle.Render(row))
		}
		b.WriteString("\n")
	}

	if len(m.filtered) > visibleCount {
		b.WriteString(styles.CenteredText(rowWidth, fmt.Sprintf("Showing %d-%d of %d", startIdx+1, endIdx, len(m.filtered))))
	}

	return styles.ContentBox(m.width-2, strings.TrimRight(b.String(), "\n"), 0)
}

// Resize updates the model with new dimensions
func (m *LibraryModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.searchInput.Width = max(width-10, 10)
}
