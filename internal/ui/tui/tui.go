package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/PizzaHomicide/mirrorplay/internal/config"
	"github.com/PizzaHomicide/mirrorplay/internal/ui/tui/models"
)

// Run starts the TUI and blocks until the user quits.  initialPath, when set, is opened straight away.
func Run(cfg *config.Config, initialPath string) error {
	p := tea.NewProgram(models.NewAppModel(cfg, initialPath), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
