package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const MockNativeEnv = "BACON_MOCK_NATIVE"

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name" yaml:"name"`
	// Window starting position x axis, if applicable.
	StartPosX int `toml:"start_pos_x" yaml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY int `toml:"start_pos_y" yaml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth int `toml:"start_width" yaml:"start_width"`
	// Window starting height, if applicable.
	StartHeight int  `toml:"start_height" yaml:"start_height"`
	Resizable   bool `toml:"resizable" yaml:"resizable"`
	Fullscreen  bool `toml:"fullscreen" yaml:"fullscreen"`
	// Frame rate limit when the platform has no vsync. 0 disables pacing.
	TargetFPS int    `toml:"target_fps" yaml:"target_fps"`
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	// glfw or headless
	Platform string `toml:"platform" yaml:"platform"`
	// pulse or null
	AudioSink         string `toml:"audio_sink" yaml:"audio_sink"`
	AudioSampleRate   int    `toml:"audio_sample_rate" yaml:"audio_sample_rate"`
	AudioBufferFrames int    `toml:"audio_buffer_frames" yaml:"audio_buffer_frames"`
	AssetsDir         string `toml:"assets_dir" yaml:"assets_dir"`
	HotReload         bool   `toml:"hot_reload" yaml:"hot_reload"`
}

func DefaultApplicationConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:              "bacon",
		StartPosX:         100,
		StartPosY:         100,
		StartWidth:        1280,
		StartHeight:       720,
		Resizable:         true,
		TargetFPS:         60,
		LogLevel:          "info",
		Platform:          "glfw",
		AudioSink:         "pulse",
		AudioSampleRate:   44100,
		AudioBufferFrames: 512,
		AssetsDir:         "assets",
	}
}

// LoadApplicationConfig reads the configuration on top of the defaults.
// Search order: path -> $XDG_CONFIG_HOME/bacon/bacon.toml -> ./bacon.toml -> defaults.
// An explicit path that cannot be read or parsed is an error; the other
// locations are skipped silently.
func LoadApplicationConfig(path string) (*ApplicationConfig, error) {
	cfg := DefaultApplicationConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := decodeConfig(path, data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		return cfg.applyEnv(), nil
	}

	for _, candidate := range []string{userConfigPath(), "bacon.toml"} {
		if candidate == "" {
			continue
		}
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		loaded := DefaultApplicationConfig()
		if err := decodeConfig(candidate, data, loaded); err == nil {
			return loaded.applyEnv(), nil
		}
	}
	return cfg.applyEnv(), nil
}

func decodeConfig(path string, data []byte, cfg *ApplicationConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return toml.Unmarshal(data, cfg)
	}
}

func userConfigPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "bacon", "bacon.toml")
}

// applyEnv forces the headless platform and the null sink when the mock
// native switch is set.
func (c *ApplicationConfig) applyEnv() *ApplicationConfig {
	if v := os.Getenv(MockNativeEnv); v != "" && v != "0" {
		c.Platform = "headless"
		c.AudioSink = "null"
	}
	return c
}

func (c *ApplicationConfig) validate() error {
	if c.StartWidth <= 0 || c.StartHeight <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.StartWidth, c.StartHeight)
	}
	if c.TargetFPS < 0 {
		return fmt.Errorf("target fps %d must not be negative", c.TargetFPS)
	}
	return nil
}
