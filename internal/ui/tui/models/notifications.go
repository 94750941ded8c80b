package models

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/PizzaHomicide/mirrorplay/internal/playback"
	"github.com/PizzaHomicide/mirrorplay/internal/ui/tui/components"
)

const maxToasts = 4

type toast struct {
	id           int
	notification playback.Notification
}

// NotificationsModel is a stack of toasts that dismiss themselves
type NotificationsModel struct {
	ttl    time.Duration
	items  []toast
	nextID int
	width  int
}

// NewNotificationsModel creates an empty stack.  Each toast lives for ttl.
func NewNotificationsModel(ttl time.Duration) *NotificationsModel {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &NotificationsModel{ttl: ttl}
}

// Push shows a notification and returns the command that dismisses it
func (m *NotificationsModel) Push(n playback.Notification) tea.Cmd {
	m.nextID++
	id := m.nextID
	m.items = append(m.items, toast{id: id, notification: n})
	if len(m.items) > maxToasts {
		m.items = m.items[len(m.items)-maxToasts:]
	}

	return tea.Tick(m.ttl, func(time.Time) tea.Msg {
		return toastExpiredMsg{ID: id}
	})
}

// Expire removes the toast with the given id, if it is still shown
func (m *NotificationsModel) Expire(id int) {
	for i, t := range m.items {
		if t.id == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return
		}
	}
}

// Len returns the number of toasts shown
func (m *NotificationsModel) Len() int {
	return len(m.items)
}

// Lines renders one line per toast, newest last
func (m *NotificationsModel) Lines() []string {
	lines := make([]string, 0, len(m.items))
	for _, t := range m.items {
		lines = append(lines, components.Toast(m.width, t.notification))
	}
	return lines
}

// Resize updates the dimensions
func (m *NotificationsModel) Resize(width, _ int) {
	m.width = width
}
