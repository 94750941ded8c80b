package models

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PizzaHomicide/mirrorplay/internal/ui/tui/styles"
)

// LoadingModel is shown while a video is being validated and its player window starts
type LoadingModel struct {
	width, height int
	message       string // Primary message displayed with the spinner
	contextInfo   string // Optional additional context, usually the file name
	spinner       spinner.Model
	startTime     time.Time
}

// NewLoadingModel creates a new loading model with the required message
func NewLoadingModel(message string) *LoadingModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Accent)

	return &LoadingModel{
		message:   message,
		spinner:   s,
		startTime: time.Now(),
	}
}

// Start resets the model for a new load and returns the spinner's first tick
func (m *LoadingModel) Start(contextInfo string) tea.Cmd {
	m.contextInfo = contextInfo
	m.startTime = time.Now()
	return m.spinner.Tick
}

// ViewType returns the type of view
func (m *LoadingModel) ViewType() View {
	return ViewLoading
}

func (m *LoadingModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update only advances the spinner
func (m *LoadingModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		return m, cmd
	}
	return m, nil
}

// View renders the loading box in the middle of the screen
func (m *LoadingModel) View() string {
	contentWidth := min(m.width-20, 70)
	if contentWidth < 40 {
		contentWidth = min(m.width-4, 40)
	}

	centerStyle := lipgloss.NewStyle().
		Width(contentWidth - 6).
		Align(lipgloss.Center)

	messageStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true)

	var b strings.Builder
	b.WriteString(centerStyle.Render(m.spinner.View() + " " + messageStyle.Render(m.message)))

	if m.contextInfo != "" {
		b.WriteString("\n\n")
		b.WriteString(centerStyle.Foreground(lipgloss.Color("#AAAAAA")).Italic(true).Render(m.contextInfo))
	}

	if elapsed := m.Elapsed(); elapsed > 5*time.Second {
		b.WriteString("\n\n")
		b.WriteString(centerStyle.Inherit(styles.Muted).Render("Still waiting for the player after " + elapsed.Truncate(time.Second).String()))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#9D86FF")).
		Padding(2, 3).
		Width(contentWidth).
		Render(b.String())

	return styles.CenteredView(m.width, m.height, box)
}

// Resize updates the dimensions of the loading model
func (m *LoadingModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

// Elapsed returns the time since the current load started
func (m *LoadingModel) Elapsed() time.Duration {
	return time.Since(m.startTime)
}
