package keybindings

import tea "github.com/charmbracelet/bubbletea"

// Action represents a specific action that can be triggered by a key
type Action string

// Define all possible actions
const (
	// Global actions
	ActionQuit       Action = "quit"
	ActionToggleHelp Action = "toggle_help"
	ActionBack       Action = "back" // General purpose "go back" or "cancel"

	// Navigation actions
	ActionMoveUp     Action = "move_up"
	ActionMoveDown   Action = "move_down"
	ActionPageUp     Action = "page_up"
	ActionPageDown   Action = "page_down"
	ActionMoveTop    Action = "move_top"
	ActionMoveBottom Action = "move_bottom"

	// Library actions
	ActionOpenVideo      Action = "open_video"
	ActionRefreshLibrary Action = "refresh_library"

	// Player actions
	ActionTogglePlayPause  Action = "toggle_play_pause"
	ActionToggleFlip       Action = "toggle_flip"
	ActionToggleFullscreen Action = "toggle_fullscreen"
	ActionRewind           Action = "rewind"
	ActionForward          Action = "forward"
	ActionExitFullscreen   Action = "exit_fullscreen"
	ActionChooseNewVideo   Action = "choose_new_video"

	// Search mode actions
	ActionEnableSearch   Action = "enable_search"
	ActionSearchComplete Action = "search_complete"
)

// ContextName represents a specific UI context in the application that has its own keybinds
type ContextName string

const (
	ContextGlobal     ContextName = "global"
	ContextLibrary    ContextName = "library"
	ContextPlayer     ContextName = "player"
	ContextSearchMode ContextName = "search_mode"
	ContextHelp       ContextName = "help"
)

var ContextBindings = map[ContextName][]Binding{
	ContextGlobal:     globalBindings,
	ContextLibrary:    libraryBindings,
	ContextPlayer:     playerBindings,
	ContextSearchMode: searchModeBindings,
	ContextHelp:       helpBindings,
}

// KeyMap stores the mappings from actions to key sequences for each context
type KeyMap struct {
	Primary   string
	Secondary string // Optional alternative key
	Help      string // Description for help screen
}

// Binding maps an action to its keys and help text
type Binding struct {
	Action Action
	KeyMap KeyMap
}

// navigationBindings contains general navigation bindings for consistent navigation across the app
var navigationBindings = []Binding{
	{
		Action: ActionMoveUp,
		KeyMap: KeyMap{
			Primary:   "up",
			Secondary: "k",
			Help:      "Move cursor up",
		},
	},
	{
		Action: ActionMoveDown,
		KeyMap: KeyMap{
			Primary:   "down",
			Secondary: "j",
			Help:      "Move cursor down",
		},
	},
	{
		Action: ActionPageUp,
		KeyMap: KeyMap{
			Primary: "pgup",
			Help:    "Move up one page",
		},
	},
	{
		Action: ActionPageDown,
		KeyMap: KeyMap{
			Primary: "pgdown",
			Help:    "Move down one page",
		},
	},
	{
		Action: ActionMoveTop,
		KeyMap: KeyMap{
			Primary: "home",
			Help:    "Move top of view",
		},
	},
	{
		Action: ActionMoveBottom,
		KeyMap: KeyMap{
			Primary: "end",
			Help:    "Move bottom of view",
		},
	},
}

// globalBindings contains key bindings that work across all views
var globalBindings = []Binding{
	{
		Action: ActionQuit,
		KeyMap: KeyMap{
			Primary: "ctrl+c",
			Help:    "Quit application",
		},
	},
	{
		Action: ActionToggleHelp,
		KeyMap: KeyMap{
			Primary:   "ctrl+h",
			Secondary: "?",
			Help:      "Toggle help screen",
		},
	},
	{
		Action: ActionBack,
		KeyMap: KeyMap{
			Primary: "esc",
			Help:    "Close help",
		},
	},
}

// helpBindings contains key bindings specific to the help view
var helpBindings = withNavigation([]Binding{})

// libraryBindings contains key bindings for the video picker
var libraryBindings = withNavigation([]Binding{
	{
		Action: ActionOpenVideo,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Open the selected video",
		},
	},
	{
		Action: ActionEnableSearch,
		KeyMap: KeyMap{
			Primary:   "/",
			Secondary: "ctrl+f",
			Help:      "Search videos",
		},
	},
	{
		Action: ActionRefreshLibrary,
		KeyMap: KeyMap{
			Primary: "r",
			Help:    "Rescan the video folder",
		},
	},
})

// playerBindings contains key bindings for the player view.  They mirror the keyboard surface of the player.
var playerBindings = []Binding{
	{
		Action: ActionTogglePlayPause,
		KeyMap: KeyMap{
			Primary: " ",
			Help:    "Play/pause",
		},
	},
	{
		Action: ActionToggleFlip,
		KeyMap: KeyMap{
			Primary:   "f",
			Secondary: "F",
			Help:      "Mirror the video horizontally",
		},
	},
	{
		Action: ActionToggleFullscreen,
		KeyMap: KeyMap{
			Primary: "ctrl+f",
			Help:    "Toggle full-screen",
		},
	},
	{
		Action: ActionRewind,
		KeyMap: KeyMap{
			Primary: "left",
			Help:    "Rewind 10 seconds",
		},
	},
	{
		Action: ActionForward,
		KeyMap: KeyMap{
			Primary: "right",
			Help:    "Forward 10 seconds",
		},
	},
	{
		Action: ActionExitFullscreen,
		KeyMap: KeyMap{
			Primary: "esc",
			Help:    "Exit full-screen",
		},
	},
	{
		Action: ActionChooseNewVideo,
		KeyMap: KeyMap{
			Primary: "n",
			Help:    "Choose a new video",
		},
	},
}

// searchModeBindings contains key bindings specific for when search mode is active
var searchModeBindings = []Binding{
	{
		Action: ActionBack,
		KeyMap: KeyMap{
			Primary:   "esc",
			Secondary: "ctrl+f",
			Help:      "Exit search mode and remove the filter",
		},
	},
	{
		Action: ActionSearchComplete,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Apply the search filter and return control to the list",
		},
	},
}

// GetActionByKey returns just the action for a given key, or an empty Action if not found
func GetActionByKey(keyMsg tea.KeyMsg, name ContextName) Action {
	if bindings, exists := ContextBindings[name]; exists {
		key := keyMsg.String()
		for _, binding := range bindings {
			if binding.KeyMap.Primary == key || binding.KeyMap.Secondary == key {
				return binding.Action
			}
		}
	}
	return ""
}

// KeyLabel returns a readable label for a key, so the space bar does not render as a blank
func KeyLabel(key string) string {
	if key == " " {
		return "space"
	}
	return key
}

// FormatKeyHelp formats a key binding for display in help text
func FormatKeyHelp(binding Binding) string {
	if binding.KeyMap.Secondary != "" {
		return KeyLabel(binding.KeyMap.Primary) + "/" + KeyLabel(binding.KeyMap.Secondary) + ": " + binding.KeyMap.Help
	}
	return KeyLabel(binding.KeyMap.Primary) + ": " + binding.KeyMap.Help
}

// withNavigation is a helper function to include navigation bindings in other binding sets
func withNavigation(bindings []Binding) []Binding {
	return append(append([]Binding{}, navigationBindings...), bindings...)
}
