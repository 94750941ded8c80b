package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/PizzaHomicide/mirrorplay/internal/playback"
	"github.com/PizzaHomicide/mirrorplay/internal/ui/tui/styles"
	"github.com/PizzaHomicide/mirrorplay/internal/ui/tui/util"
)

// Toast renders one notification, right aligned within width
func Toast(width int, n playback.Notification) string {
	style := styles.ToastInfo
	switch n.Severity {
	case playback.SeveritySuccess:
		style = styles.ToastSuccess
	case playback.SeverityError:
		style = styles.ToastError
	}

	maxText := width - 6
	if maxText < 10 {
		maxText = 10
	}
	toast := style.Render(util.TruncateString(n.Message, maxText))

	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Right).
		Render(toast)
}
