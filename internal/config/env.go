package config

import (
	"os"
	"strconv"

	"github.com/PizzaHomicide/mirrorplay/internal/log"
)

// EnvConfigPath points at an alternative config file
const EnvConfigPath = "MIRRORPLAY_CONFIG_PATH"

// EnvVar documents a supported environment variable override
type EnvVar struct {
	Name  string
	Desc  string
	apply func(*Config, string)
}

var supportedEnvVars = []EnvVar{
	{
		// Documentation only, it is read before the config is loaded
		Name:  EnvConfigPath,
		Desc:  "Sets the path to the config file.  Default: OS-specific config directory",
		apply: func(c *Config, s string) {},
	},
	{
		Name:  "MIRRORPLAY_CONFIG_PLAYER_PATH",
		Desc:  "Sets the path to the mpv binary.  Default: mpv",
		apply: func(c *Config, s string) { c.Player.Path = s },
	},
	{
		Name:  "MIRRORPLAY_CONFIG_PLAYER_ARGS",
		Desc:  "Extra arguments passed to every mpv process.  Default: None",
		apply: func(c *Config, s string) { c.Player.Args = s },
	},
	{
		Name:  "MIRRORPLAY_CONFIG_PLAYER_LOAD_TIMEOUT_SECONDS",
		Desc:  "How long to wait for a video's metadata before giving up.  Default: 15",
		apply: intOverride(func(c *Config, v int) { c.Player.LoadTimeoutSeconds = v }),
	},
	{
		Name:  "MIRRORPLAY_CONFIG_PLAYBACK_SEEK_STEP_SECONDS",
		Desc:  "Seconds skipped by rewind/forward.  Default: 10",
		apply: intOverride(func(c *Config, v int) { c.Playback.SeekStepSeconds = v }),
	},
	{
		Name:  "MIRRORPLAY_CONFIG_PLAYBACK_CONTROLS_HIDE_SECONDS",
		Desc:  "Seconds of inactivity before full-screen controls hide.  Default: 3",
		apply: intOverride(func(c *Config, v int) { c.Playback.ControlsHideSeconds = v }),
	},
	{
		Name:  "MIRRORPLAY_CONFIG_LIBRARY_DIR",
		Desc:  "Directory listed when choosing a video.  Default: current directory",
		apply: func(c *Config, s string) { c.Library.Dir = s },
	},
	{
		Name:  "MIRRORPLAY_CONFIG_UI_NOTIFICATION_SECONDS",
		Desc:  "Seconds a notification stays on screen.  Default: 3",
		apply: intOverride(func(c *Config, v int) { c.UI.NotificationSeconds = v }),
	},
	{
		Name:  "MIRRORPLAY_CONFIG_LOGGING_LEVEL",
		Desc:  "Sets the logging level.  One of: trace, debug, info, warn, error.  Default: info",
		apply: func(c *Config, s string) { c.Logging.Level = s },
	},
	{
		Name:  "MIRRORPLAY_CONFIG_LOGGING_FILE_PATH",
		Desc:  "Sets the logging file path.  Default: OS-specific",
		apply: func(c *Config, s string) { c.Logging.FilePath = s },
	},
}

// SupportedEnvVars lists every environment variable the config understands
func SupportedEnvVars() []EnvVar {
	return append([]EnvVar(nil), supportedEnvVars...)
}

func intOverride(set func(*Config, int)) func(*Config, string) {
	return func(c *Config, s string) {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			log.Warn("Ignoring invalid numeric environment override", "value", s)
			return
		}
		set(c, v)
	}
}

func applyEnvVarOverrides(c *Config) {
	for _, envVar := range supportedEnvVars {
		if value := os.Getenv(envVar.Name); value != "" {
			envVar.apply(c, value)
		}
	}
}
