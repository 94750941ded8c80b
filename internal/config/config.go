package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

const appName = "mirrorplay"

// Config represents the application configuration
type Config struct {
	Player   PlayerConfig   `yaml:"player,omitempty"`
	Playback PlaybackConfig `yaml:"playback,omitempty"`
	Library  LibraryConfig  `yaml:"library,omitempty"`
	UI       UIConfig       `yaml:"ui,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// PlayerConfig contains settings for the mpv processes that render the video
type PlayerConfig struct {
	Path               string `yaml:"path,omitempty"`
	Args               string `yaml:"args,omitempty"`
	LoadTimeoutSeconds int    `yaml:"load_timeout_seconds,omitempty"`
}

// PlaybackConfig tunes the playback controller
type PlaybackConfig struct {
	SeekStepSeconds     int `yaml:"seek_step_seconds,omitempty"`
	ControlsHideSeconds int `yaml:"controls_hide_seconds,omitempty"`
}

// LibraryConfig controls where the open view looks for video files
type LibraryConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// UIConfig contains UI display preferences
type UIConfig struct {
	NotificationSeconds int `yaml:"notification_seconds,omitempty"`
}

// LoggingConfig contains log related settings
type LoggingConfig struct {
	Level    string `yaml:"level,omitempty"`
	FilePath string `yaml:"file_path,omitempty"`
}

// LoadTimeout returns the configured metadata wait as a duration
func (c PlayerConfig) LoadTimeout() time.Duration {
	return time.Duration(c.LoadTimeoutSeconds) * time.Second
}

// SeekStep returns the rewind/forward step
func (c PlaybackConfig) SeekStep() time.Duration {
	return time.Duration(c.SeekStepSeconds) * time.Second
}

// ControlsHideDelay returns how long full-screen controls stay up without activity
func (c PlaybackConfig) ControlsHideDelay() time.Duration {
	return time.Duration(c.ControlsHideSeconds) * time.Second
}

// NotificationTTL returns how long a toast stays on screen
func (c UIConfig) NotificationTTL() time.Duration {
	return time.Duration(c.NotificationSeconds) * time.Second
}

// Load builds a configuration struct from multiple sources using these steps:
// 1. Create a base config with default values
// 2. If no config file exists on disk, save the default config to that location
// 3. Apply 'dynamic' properties, those determined at runtime such as the per-OS log file location
// 4. Load & merge the config file, overwriting any defaults with user-specified values
// 5. Apply environment variable overrides
func Load() (*Config, error) {
	cfg := createBaseDefaultConfig()

	configPath, err := Path()
	if err != nil {
		return nil, fmt.Errorf("unable to determine config file path: %w", err)
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		// Still start up on the defaults if the file cannot be written
		_ = save(cfg, configPath)
	}

	applyDynamicDefaults(cfg)

	fileConfig, err := loadFromDisk(configPath)
	if err != nil {
		return nil, err
	}
	if err = mergo.Merge(cfg, fileConfig, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("error merging config loaded from disk: %w", err)
	}

	applyEnvVarOverrides(cfg)

	return cfg, nil
}

// applyDynamicDefaults sets runtime-determined defaults.  These are never written to the config file.
func applyDynamicDefaults(cfg *Config) {
	cfg.Logging.FilePath = defaultLogFilePath()
	if wd, err := os.Getwd(); err == nil {
		cfg.Library.Dir = wd
	}
}

// loadFromDisk loads the YAML config from disk and returns the unmarshalled Config
func loadFromDisk(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	return cfg, nil
}

func save(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0600)
}

// UpdateConfig reads the existing config, applies the update function, and saves it back to disk
func UpdateConfig(updateFn func(*Config)) error {
	configPath, err := Path()
	if err != nil {
		return fmt.Errorf("unable to determine config file path: %w", err)
	}

	cfg, err := loadFromDisk(configPath)
	if err != nil {
		return fmt.Errorf("error loading config file from disk: %w", err)
	}

	updateFn(cfg)

	return save(cfg, configPath)
}

// Path returns the path to the config file.  Uses the environment variable override if present, else the OS
// config location.
func Path() (string, error) {
	if configPath := os.Getenv(EnvConfigPath); configPath != "" {
		return configPath, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, appName, "config.yaml"), nil
}

// createBaseDefaultConfig creates a config with all static default values
func createBaseDefaultConfig() *Config {
	return &Config{
		Player: PlayerConfig{
			Path:               "mpv",
			LoadTimeoutSeconds: 15,
		},
		Playback: PlaybackConfig{
			SeekStepSeconds:     10,
			ControlsHideSeconds: 3,
		},
		UI: UIConfig{
			NotificationSeconds: 3,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultLogFilePath returns the path to the log file.  Tries to use expected OS location defaults.
func defaultLogFilePath() string {
	fallback := filepath.Join(".", appName+".log")

	homedir, err := os.UserHomeDir()
	if err != nil {
		return fallback
	}

	var basePath string
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			basePath = filepath.Join(appData, appName, "logs")
		} else {
			basePath = filepath.Join(homedir, "AppData", "local", appName, "logs")
		}
	case "darwin":
		basePath = filepath.Join(homedir, "Library", "Logs", appName)
	default:
		if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
			basePath = filepath.Join(xdgState, appName, "logs")
		} else {
			basePath = filepath.Join(homedir, ".local", "state", appName, "logs")
		}
	}

	if err := os.MkdirAll(basePath, 0700); err != nil {
		return fallback
	}
	return filepath.Join(basePath, appName+".log")
}
