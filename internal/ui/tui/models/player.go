package models

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/PizzaHomicide/mirrorplay/internal/log"
	"github.com/PizzaHomicide/mirrorplay/internal/playback"
	"github.com/PizzaHomicide/mirrorplay/internal/ui/tui/components"
	kb "github.com/PizzaHomicide/mirrorplay/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/mirrorplay/internal/ui/tui/styles"
	"github.com/PizzaHomicide/mirrorplay/internal/ui/tui/util"
)

// Column where the progress bar starts
const progressMargin = 2

// PlayerModel shows the loaded video's controls: info, progress, transport and the keyboard surface
type PlayerModel struct {
	width, height int
	state         playback.State
	progress      progress.Model
	// Pointer is over the progress or transport rows
	hovering bool
}

// NewPlayerModel creates the player view
func NewPlayerModel() *PlayerModel {
	p := progress.New(
		progress.WithGradient("#7D56F4", "#FF9F43"),
		progress.WithoutPercentage(),
	)
	return &PlayerModel{
		progress: p,
		state:    playback.State{Phase: playback.PhaseIdle},
	}
}

func (m *PlayerModel) ViewType() View {
	return ViewPlayer
}

func (m *PlayerModel) Init() tea.Cmd {
	return nil
}

// SetState replaces the rendered controller state
func (m *PlayerModel) SetState(s playback.State) {
	m.state = s
}

// State returns the rendered controller state
func (m *PlayerModel) State() playback.State {
	return m.state
}

// Update turns key presses and pointer input into controller events
func (m *PlayerModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKeyPress(msg)
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	}
	return m, nil
}

func (m *PlayerModel) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch kb.GetActionByKey(msg, kb.ContextPlayer) {
	case kb.ActionTogglePlayPause:
		return dispatch(playback.InputTogglePlayPause)
	case kb.ActionToggleFlip:
		return dispatch(playback.InputToggleFlip)
	case kb.ActionToggleFullscreen:
		return dispatch(playback.InputToggleFullscreen)
	case kb.ActionRewind:
		return dispatch(playback.InputRewind)
	case kb.ActionForward:
		return dispatch(playback.InputForward)
	case kb.ActionExitFullscreen:
		return dispatch(playback.InputEscape)
	case kb.ActionChooseNewVideo:
		log.Info("New video requested")
		return dispatch(playback.ResetRequested{})
	}

	// Any other key still counts as activity while full-screen
	if m.state.FullscreenActive {
		return dispatch(playback.PointerActivity{})
	}
	return nil
}

func (m *PlayerModel) handleMouse(msg tea.MouseMsg) tea.Cmd {
	var cmds []tea.Cmd

	over := m.overControls(msg.Y)
	if over != m.hovering {
		m.hovering = over
		cmds = append(cmds, dispatch(playback.PointerOverControls{Over: over}))
	} else if msg.Action == tea.MouseActionMotion {
		cmds = append(cmds, dispatch(playback.PointerActivity{}))
	}

	seeking := msg.Button == tea.MouseButtonLeft &&
		(msg.Action == tea.MouseActionPress || msg.Action == tea.MouseActionMotion)
	if seeking && msg.Y == m.progressRow() {
		if !m.controlsShown() {
			// Hidden controls only wake up on a click
			if msg.Action == tea.MouseActionPress {
				cmds = append(cmds, dispatch(playback.PointerActivity{}))
			}
		} else if fraction, ok := m.fractionAt(msg.X); ok {
			cmds = append(cmds, dispatch(playback.SeekTo{Fraction: fraction}))
		}
	}

	return tea.Batch(cmds...)
}

func (m *PlayerModel) controlsShown() bool {
	return !m.state.FullscreenActive || m.state.ControlsVisible
}

func (m *PlayerModel) progressRow() int {
	return m.height - 4
}

func (m *PlayerModel) transportRow() int {
	return m.height - 3
}

func (m *PlayerModel) overControls(y int) bool {
	return y == m.progressRow() || y == m.transportRow()
}

// fractionAt maps a column on the progress row to a fraction of the duration
func (m *PlayerModel) fractionAt(x int) (float64, bool) {
	width := m.progress.Width
	if width <= 1 || x < progressMargin || x >= progressMargin+width {
		return 0, false
	}
	return lo.Clamp(float64(x-progressMargin)/float64(width-1), 0, 1), true
}

// View renders the player
func (m *PlayerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var top []string
	if m.state.FullscreenActive {
		top = m.fullscreenLines()
	} else {
		top = m.infoLines()
	}

	bodyHeight := max(m.progressRow(), 0)
	if len(top) > bodyHeight {
		top = top[:bodyHeight]
	}
	for len(top) < bodyHeight {
		top = append(top, "")
	}

	var bottom []string
	if !m.state.FullscreenActive || m.state.ControlsVisible {
		bottom = []string{m.progressLine(), m.transportLine()}
	} else {
		bottom = []string{"", styles.CenteredText(m.width, styles.Muted.Render("Controls hidden: move the mouse or press a key"))}
	}
	bottom = append(bottom, "", m.keyBar())

	return strings.Join(append(top, bottom...), "\n")
}

func (m *PlayerModel) infoLines() []string {
	s := m.state
	header := styles.Header(m.width, "mirrorplay")

	orientation := styles.Original.Render("Original")
	if s.Flipped {
		orientation = styles.Mirrored.Render("Mirrored")
	}

	name := util.TruncateString(s.File.Name, max(m.width-4, 10))
	details := fmt.Sprintf("%d × %d • %s • %s",
		s.Width, s.Height, playback.FormatDuration(s.Duration), s.File.HumanSize())

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.Path.Render(name),
		styles.Info.Render(details),
		"",
		"Orientation: "+orientation,
	)

	lines := []string{header, ""}
	return append(lines, strings.Split(styles.ContentBox(m.width-2, content, 1), "\n")...)
}

func (m *PlayerModel) fullscreenLines() []string {
	s := m.state
	header := styles.Header(m.width, "mirrorplay: full-screen")

	orientation := styles.Original.Render("Original")
	if s.Flipped {
		orientation = styles.Mirrored.Render("Mirrored")
	}

	body := lipgloss.JoinVertical(
		lipgloss.Center,
		styles.Info.Render("Playing full-screen in the mirror window"),
		orientation,
		styles.Muted.Render("Press esc to return"),
	)

	lines := []string{header, ""}
	return append(lines, strings.Split(styles.CenteredText(m.width, body), "\n")...)
}

func (m *PlayerModel) progressLine() string {
	return strings.Repeat(" ", progressMargin) + m.progress.ViewAs(m.state.Progress())
}

func (m *PlayerModel) transportLine() string {
	s := m.state

	playState := "▶ Playing"
	if s.Paused {
		playState = "⏸ Paused"
	}
	if s.Muted {
		playState += " (muted)"
	}

	times := fmt.Sprintf("%s / %s", playback.FormatDuration(s.Position), playback.FormatDuration(s.Duration))
	gap := max(m.width-2*progressMargin-lipgloss.Width(playState)-lipgloss.Width(times), 1)

	return strings.Repeat(" ", progressMargin) + styles.Info.Render(playState) + strings.Repeat(" ", gap) + styles.Muted.Render(times)
}

func (m *PlayerModel) keyBar() string {
	bindings := []components.KeyBinding{
		{Key: " ", Desc: "Play"},
		{Key: "f", Desc: "Mirror"},
		{Key: "ctrl+f", Desc: "Full-screen"},
		{Key: "←/→", Desc: "Seek"},
	}
	if m.state.FullscreenActive {
		bindings = append(bindings, components.KeyBinding{Key: "esc", Desc: "Exit"})
	} else {
		bindings = append(bindings, components.KeyBinding{Key: "n", Desc: "New"})
	}
	return components.KeyBindingsBar(m.width, bindings)
}

// Resize updates the dimensions
func (m *PlayerModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.progress.Width = max(width-2*progressMargin, 1)
}
