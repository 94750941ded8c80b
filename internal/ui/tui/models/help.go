package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	kb "github.com/PizzaHomicide/mirrorplay/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/mirrorplay/internal/ui/tui/styles"
)

// HelpModel displays contextual help with scrolling
type HelpModel struct {
	width, height int
	context       View
	viewport      viewport.Model
}

// NewHelpModel creates a new help model for the given context
func NewHelpModel(context View) *HelpModel {
	return &HelpModel{
		context:  context,
		viewport: viewport.New(0, 0),
	}
}

// SetContext switches the help content to the given view
func (m *HelpModel) SetContext(context View) {
	if m.context == context {
		return
	}
	m.context = context
	m.updateContent()
}

func (m *HelpModel) ViewType() View {
	return ViewHelp
}

// Init initializes the model
func (m *HelpModel) Init() tea.Cmd {
	// Set initial content if dimensions are available
	if m.width > 0 && m.height > 0 {
		m.updateContent()
	}
	return nil
}

// Update handles messages
func (m *HelpModel) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch kb.GetActionByKey(msg, kb.ContextHelp) {
		case kb.ActionMoveUp, kb.ActionMoveDown, kb.ActionPageUp, kb.ActionPageDown:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case kb.ActionMoveTop:
			m.viewport.GotoTop()
			return m, cmd
		case kb.ActionMoveBottom:
			m.viewport.GotoBottom()
			return m, cmd
		}

	}
	return m, cmd
}

// Resize updates the dimensions
func (m *HelpModel) Resize(width, height int) {
	m.width = width
	m.height = height

	// Update viewport dimensions
	contentWidth := width - 4    // Account for borders
	contentHeight := height - 10 // Account for header, footer, spacing

	// Ensure we don't set negative dimensions
	if contentWidth < 1 {
		contentWidth = 1
	}
	if contentHeight < 1 {
		contentHeight = 1
	}

	m.viewport.Width = contentWidth
	m.viewport.Height = contentHeight

	// Update content for new dimensions
	m.updateContent()
}

// updateContent generates help content and updates the viewport
func (m *HelpModel) updateContent() {
	content := m.generateHelpContent()
	m.viewport.SetContent(content)
	// Reset to top when content changes
	m.viewport.GotoTop()
}

// View renders the help screen
func (m *HelpModel) View() string {
	title := m.getContextTitle()

	// Create header
	header := styles.Header(m.width, "Help: "+title)

	// Main content area with viewport
	contentView := m.viewport.View()

	// Footer with navigation help
	scrollText := "↑/↓: Scroll • PgUp/PgDn: Page scroll • Home/End: Goto top/bottom • ESC: Return"
	footer := styles.CenteredText(m.width, styles.Info.Render(scrollText))

	// Combine elements
	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"", // Spacing
		styles.ContentBox(m.width-2, contentView, 1),
		"", // Spacing
		footer,
	)
}

// getContextTitle returns a user-friendly title for the context
func (m *HelpModel) getContextTitle() string {
	switch m.context {
	case ViewLibrary:
		return "Video Library"
	case ViewPlayer:
		return "Player"
	default:
		return "General"
	}
}

// formatKeybindingSection formats a section of keybindings with aligned colons
func (m *HelpModel) formatKeybindingSection(title string, bindings []kb.Binding, skipActions map[kb.Action]bool) string {
	if len(bindings) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title))
	b.WriteString("\n\n")

	// First pass: determine the maximum key width for alignment
	maxKeyWidth := 0
	for _, binding := range bindings {
		if skipActions != nil && skipActions[binding.Action] {
			continue
		}

		keyText := kb.KeyLabel(binding.KeyMap.Primary)
		if binding.KeyMap.Secondary != "" {
			keyText += " or " + kb.KeyLabel(binding.KeyMap.Secondary)
		}

		if width := utf8.RuneCountInString(keyText); width > maxKeyWidth {
			maxKeyWidth = width
		}
	}

	// Second pass: format each binding with aligned colons
	for _, binding := range bindings {
		if skipActions != nil && skipActions[binding.Action] {
			continue
		}

		keyText := kb.KeyLabel(binding.KeyMap.Primary)
		if binding.KeyMap.Secondary != "" {
			keyText += " or " + kb.KeyLabel(binding.KeyMap.Secondary)
		}

		// Create padding for alignment
		padding := strings.Repeat(" ", maxKeyWidth-utf8.RuneCountInString(keyText))

		b.WriteString(fmt.Sprintf("• %s%s : %s\n",
			lipgloss.NewStyle().Bold(true).Render(keyText),
			padding,
			binding.KeyMap.Help))
	}

	return b.String()
}

// generateHelpContent builds the complete help content
func (m *HelpModel) generateHelpContent() string {
	var b strings.Builder

	// Title style for sections
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Accent)

	// Add context description section
	b.WriteString(titleStyle.Render(m.getContextTitle()))
	b.WriteString("\n\n")
	b.WriteString(m.getContextDescription())
	b.WriteString("\n\n")

	// Add keybindings section
	b.WriteString(titleStyle.Render("Keybindings"))
	b.WriteString("\n\n")

	// Global keybindings
	globalBindings := m.formatKeybindingSection("Global commands:", kb.ContextBindings[kb.ContextGlobal], nil)
	b.WriteString(globalBindings)

	// Build a map of global actions to avoid duplicating them in context-specific bindings
	globalActions := make(map[kb.Action]bool)
	for _, binding := range kb.ContextBindings[kb.ContextGlobal] {
		globalActions[binding.Action] = true
	}

	// Context-specific keybindings
	var contextName kb.ContextName

	switch m.context {
	case ViewLibrary:
		contextName = kb.ContextLibrary
	case ViewPlayer:
		contextName = kb.ContextPlayer
	}

	if contextName != "" {
		if globalBindings != "" {
			b.WriteString("\n")
		}

		sectionTitle := fmt.Sprintf("%s commands:", m.getContextTitle())
		b.WriteString(m.formatKeybindingSection(sectionTitle, kb.ContextBindings[contextName], globalActions))
	}

	if m.context == ViewLibrary {
		b.WriteString("\n")
		b.WriteString(m.formatKeybindingSection("When in search mode:", kb.ContextBindings[kb.ContextSearchMode], nil))
	}

	if m.context == ViewPlayer {
		b.WriteString("\n")
		b.WriteString(m.getMouseDetails())
	}

	return b.String()
}

// getMouseDetails explains the pointer controls of the player view
func (m *HelpModel) getMouseDetails() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Accent)
	b.WriteString(titleStyle.Render("Mouse"))
	b.WriteString("\n\n")

	b.WriteString("• Click or drag on the progress bar to jump to that point of the video\n")
	b.WriteString("• While full-screen, moving the mouse shows the controls; they hide again after a few seconds\n")
	b.WriteString("• The controls stay visible while the pointer rests on them or the video is paused\n")

	return b.String()
}

// getContextDescription returns help text for the current context
func (m *HelpModel) getContextDescription() string {
	switch m.context {
	case ViewLibrary:
		return "The library lists the videos in the configured folder.\n\n" +
			"Choose a file and press Enter to open it.  MP4, MOV, AVI, MPEG and WebM files up to 500 MB are accepted. " +
			"The list refreshes on its own when files are added or removed."

	case ViewPlayer:
		return "The player controls the open video.\n\n" +
			"Mirroring flips the picture horizontally so you can follow along like a reflection. " +
			"Full-screen opens a mirrored window that takes over sound and position; leaving it hands both back " +
			"to the main window exactly where you left off."

	default:
		return "mirrorplay plays dance and exercise videos with a one-key horizontal mirror."
	}
}
