package models

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"

	"github.com/PizzaHomicide/mirrorplay/internal/config"
	"github.com/PizzaHomicide/mirrorplay/internal/log"
	"github.com/PizzaHomicide/mirrorplay/internal/media"
	"github.com/PizzaHomicide/mirrorplay/internal/playback"
	"github.com/PizzaHomicide/mirrorplay/internal/player"
	kb "github.com/PizzaHomicide/mirrorplay/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/mirrorplay/internal/version"
)

const inboxSize = 256

// AppModel is the main application model that coordinates all child models.  It is the high level wrapper, and
// the only place the playback controller is driven from.
type AppModel struct {
	config        *config.Config
	activeView    View  // Track the current active 'main view'
	activeModal   Modal // Track the current active 'modal overlay' if any
	width, height int
	initialPath   string

	// Models used for various views
	libraryModel  *LibraryModel
	playerModel   *PlayerModel
	helpModel     *HelpModel
	loadingModel  *LoadingModel
	notifications *NotificationsModel

	controller *playback.Controller
	loader     *playback.Loader
	presenter  *presenter
	// Events posted by view goroutines and timers, drained one at a time by Update
	inbox   chan playback.Event
	watcher *media.Watcher

	ctx    context.Context
	cancel context.CancelFunc
}

// NewAppModel creates the application model.  initialPath, when set, is loaded as soon as the program starts.
func NewAppModel(cfg *config.Config, initialPath string) AppModel {
	return newAppModel(cfg, initialPath, player.NewMPVFactory(cfg.Player), clockwork.NewRealClock())
}

func newAppModel(cfg *config.Config, initialPath string, factory player.ViewFactory, clock clockwork.Clock) AppModel {
	ctx, cancel := context.WithCancel(context.Background())
	inbox := make(chan playback.Event, inboxSize)
	pres := newPresenter()

	controller := playback.NewController(playback.Options{
		Factory:   factory,
		Presenter: pres,
		Clock:     clock,
		Post: func(ev playback.Event) {
			select {
			case inbox <- ev:
			case <-ctx.Done():
			}
		},
		SeekStep:  cfg.Playback.SeekStep(),
		HideDelay: cfg.Playback.ControlsHideDelay(),
	})

	watcher, err := media.Watch(cfg.Library.Dir)
	if err != nil {
		log.Warn("Unable to watch video folder, the list will only refresh on request", "dir", cfg.Library.Dir, "error", err)
		watcher = nil
	}

	return AppModel{
		config:        cfg,
		activeView:    ViewLibrary,
		activeModal:   ModalNone,
		initialPath:   initialPath,
		libraryModel:  NewLibraryModel(cfg.Library.Dir),
		playerModel:   NewPlayerModel(),
		helpModel:     NewHelpModel(ViewLibrary),
		loadingModel:  NewLoadingModel("Loading video..."),
		notifications: NewNotificationsModel(cfg.UI.NotificationTTL()),
		controller:    controller,
		loader:        playback.NewLoader(factory, cfg.Player.LoadTimeout()),
		presenter:     pres,
		inbox:         inbox,
		watcher:       watcher,
		ctx:           ctx,
		cancel:        cancel,
	}
}

func (m AppModel) Init() tea.Cmd {
	log.Info("Initialising mirrorplay TUI", "version", version.GetVersion(), "library", m.config.Library.Dir)

	cmds := []tea.Cmd{
		waitForInbox(m.inbox),
		m.libraryModel.Init(),
		waitForLibraryChange(m.watcher),
		notify(playback.SeveritySuccess, "mirrorplay is ready, choose a video to get started!"),
	}
	if m.initialPath != "" {
		path := m.initialPath
		cmds = append(cmds, func() tea.Msg {
			return LoadVideoMsg{Path: path}
		})
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the models as appropriate
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		switch {
		case m.activeModal == ModalHelp:
			_, cmd := m.helpModel.Update(msg)
			return m, cmd
		case m.activeModal == ModalLoading:
			return m, nil
		}
		_, cmd := m.activeModel().Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		log.Debug("Window size changed", "old_width", m.width, "new_width", msg.Width, "old_height", m.height, "new_height", msg.Height)
		m.width = msg.Width
		m.height = msg.Height

		// Propagate new window size to all views so they are aware and can render correctly
		m.libraryModel.Resize(msg.Width, msg.Height)
		m.playerModel.Resize(msg.Width, msg.Height)
		m.helpModel.Resize(msg.Width, msg.Height)
		m.loadingModel.Resize(msg.Width, msg.Height)
		m.notifications.Resize(msg.Width, msg.Height)
		return m, nil

	case LoadVideoMsg:
		if m.activeModal == ModalLoading {
			log.Warn("Ignoring load request, another video is loading", "path", msg.Path)
			return m, nil
		}
		log.Info("Loading video", "path", msg.Path)
		m.activeModal = ModalLoading
		return m, tea.Batch(
			m.loadingModel.Start(filepath.Base(msg.Path)),
			m.loadVideo(msg.Path),
			notify(playback.SeverityInfo, "Loading video..."),
		)

	case loadResultMsg:
		if m.activeModal == ModalLoading {
			m.activeModal = ModalNone
		}
		return m.dispatch(msg.Event)

	case inboxMsg:
		next, cmd := m.dispatch(msg.Event)
		return next, tea.Batch(cmd, waitForInbox(m.inbox))

	case PlaybackEventMsg:
		return m.dispatch(msg.Event)

	case NotifyMsg:
		return m, m.notifications.Push(msg.Notification)

	case toastExpiredMsg:
		m.notifications.Expire(msg.ID)
		return m, nil

	case LibraryScannedMsg:
		_, cmd := m.libraryModel.Update(msg)
		return m, cmd

	case LibraryChangedMsg:
		_, cmd := m.libraryModel.Update(msg)
		return m, tea.Batch(cmd, waitForLibraryChange(m.watcher))

	case spinner.TickMsg:
		if m.activeModal != ModalLoading {
			return m, nil
		}
		_, cmd := m.loadingModel.Update(msg)
		return m, cmd

	case HandledMsg:
		return m, nil
	}

	return m, nil
}

func (m AppModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if kb.GetActionByKey(msg, kb.ContextGlobal) == kb.ActionQuit {
		log.Info("Quit command received.  Shutting down...")
		m.shutdown()
		return m, tea.Quit
	}

	if m.activeModal == ModalLoading {
		return m, nil
	}

	// Global keys are text while typing a search
	searching := m.activeModal == ModalNone && m.activeView == ViewLibrary && m.libraryModel.InSearchMode()
	if !searching {
		switch kb.GetActionByKey(msg, kb.ContextGlobal) {
		case kb.ActionToggleHelp:
			log.Debug("Help requested", "active_view", m.activeView)
			if m.activeModal == ModalHelp {
				m.activeModal = ModalNone
			} else {
				m.helpModel.SetContext(m.activeView)
				m.activeModal = ModalHelp
			}
			return m, nil
		case kb.ActionBack:
			if m.activeModal != ModalNone {
				m.activeModal = ModalNone
				return m, nil
			}
		}
	}

	if m.activeModal == ModalHelp {
		_, cmd := m.helpModel.Update(msg)
		return m, cmd
	}

	_, cmd := m.activeModel().Update(msg)
	return m, cmd
}

func (m AppModel) activeModel() Model {
	if m.activeView == ViewPlayer {
		return m.playerModel
	}
	return m.libraryModel
}

// dispatch hands ev to the controller, then applies what it rendered
func (m AppModel) dispatch(ev playback.Event) (AppModel, tea.Cmd) {
	m.controller.Dispatch(ev)

	state := m.presenter.state
	m.playerModel.SetState(state)
	if state.Phase == playback.PhaseIdle {
		m.activeView = ViewLibrary
	} else {
		m.activeView = ViewPlayer
	}

	var cmds []tea.Cmd
	for _, n := range m.presenter.drain() {
		cmds = append(cmds, m.notifications.Push(n))
	}
	return m, tea.Batch(cmds...)
}

func (m AppModel) loadVideo(path string) tea.Cmd {
	loader := m.loader
	ctx := m.ctx
	return func() tea.Msg {
		handle, err := loader.Load(ctx, path)
		if err != nil {
			return loadResultMsg{Event: playback.LoadFailed{Path: path, Err: err}}
		}
		return loadResultMsg{Event: playback.MediaLoaded{Handle: handle}}
	}
}

// shutdown closes every player window and stops background work
func (m AppModel) shutdown() {
	m.controller.Reset()
	m.cancel()
	if m.watcher != nil {
		if err := m.watcher.Close(); err != nil {
			log.Warn("Failed to stop watching the video folder", "error", err)
		}
	}
}

func waitForInbox(inbox <-chan playback.Event) tea.Cmd {
	return func() tea.Msg {
		return inboxMsg{Event: <-inbox}
	}
}

func waitForLibraryChange(w *media.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-w.Changes(); !ok {
			return nil
		}
		return LibraryChangedMsg{}
	}
}

// View renders the active view or modal, with notifications over the top right
func (m AppModel) View() string {
	var content string
	switch {
	case m.activeModal == ModalHelp:
		content = m.helpModel.View()
	case m.activeModal == ModalLoading:
		content = m.loadingModel.View()
	default:
		content = m.activeModel().View()
	}
	return m.overlayNotifications(content)
}

func (m AppModel) overlayNotifications(content string) string {
	toasts := m.notifications.Lines()
	if len(toasts) == 0 {
		return content
	}

	// Below the header line
	lines := strings.Split(content, "\n")
	for i, t := range toasts {
		row := i + 1
		for len(lines) <= row {
			lines = append(lines, "")
		}
		lines[row] = t
	}
	return strings.Join(lines, "\n")
}
