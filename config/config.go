package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppDirName is the per-user directory holding config, database and logs.
const AppDirName = ".pb"

// Config is the top-level configuration of pb.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Player   PlayerConfig   `yaml:"player"`
	Lyrics   LyricsConfig   `yaml:"lyrics"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig points at the track cache file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// PlayerConfig selects and bounds the now-playing query.
type PlayerConfig struct {
	// App is the macOS application to ask: "Spotify" or "Music".
	App string `yaml:"app"`
	// MPRISService pins a D-Bus service name on Linux. Empty means auto-discover.
	MPRISService string        `yaml:"mpris_service"`
	Timeout      time.Duration `yaml:"timeout"`
}

// LyricsConfig lists the lookup providers in the order they are tried.
type LyricsConfig struct {
	Providers   []string      `yaml:"providers"`
	GeniusToken string        `yaml:"genius_token"`
	Timeout     time.Duration `yaml:"timeout"`
	LRCLIBURL   string        `yaml:"lrclib_url"`
	GeniusURL   string        `yaml:"genius_url"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

// Error is returned when a config file cannot be read or parsed.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string { return "config " + e.Path + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// AppDir returns ~/.pb.
func AppDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, AppDirName), nil
}

// EnsureAppDir creates ~/.pb if needed.
func EnsureAppDir() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	return dir, nil
}

// DefaultPath returns ~/.pb/config.yaml.
func DefaultPath() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the YAML file at path. ${VAR} references are expanded from the
// environment before parsing. When explicit is false a missing file yields
// the defaults instead of an error.
func Load(path string, explicit bool) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.Expand(string(data), os.Getenv)
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, &Error{Path: path, Err: fmt.Errorf("parse: %w", err)}
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, &Error{Path: path, Err: err}
	}

	setDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	dir, _ := AppDir()
	if dir == "" {
		dir = "./" + AppDirName
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(dir, "playbot.db")
	}
	if cfg.Player.App == "" {
		cfg.Player.App = "Spotify"
	}
	if cfg.Player.Timeout == 0 {
		cfg.Player.Timeout = 5 * time.Second
	}
	if len(cfg.Lyrics.Providers) == 0 {
		cfg.Lyrics.Providers = []string{"lrclib", "genius"}
	}
	if cfg.Lyrics.Timeout == 0 {
		cfg.Lyrics.Timeout = 10 * time.Second
	}
	if cfg.Lyrics.LRCLIBURL == "" {
		cfg.Lyrics.LRCLIBURL = "https://lrclib.net/api/get"
	}
	if cfg.Lyrics.GeniusURL == "" {
		cfg.Lyrics.GeniusURL = "https://api.genius.com"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(dir, "pb.log")
	}

	cfg.Database.Path = expandHome(cfg.Database.Path)
	cfg.Log.File = expandHome(cfg.Log.File)
	cfg.Lyrics.GeniusToken = strings.TrimSpace(cfg.Lyrics.GeniusToken)
}

func validate(cfg *Config) error {
	switch cfg.Player.App {
	case "Spotify", "Music":
	default:
		return fmt.Errorf("player.app must be Spotify or Music, got %q", cfg.Player.App)
	}
	if cfg.Player.Timeout < 0 || cfg.Lyrics.Timeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	for _, p := range cfg.Lyrics.Providers {
		switch strings.ToLower(p) {
		case "lrclib", "genius":
		default:
			return fmt.Errorf("unknown lyrics provider %q", p)
		}
	}
	return nil
}

// expandHome replaces a leading ~/ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, path[2:])
}
