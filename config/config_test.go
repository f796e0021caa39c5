package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSetDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	checks := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Player.App", cfg.Player.App, "Spotify"},
		{"Player.Timeout", cfg.Player.Timeout, 5 * time.Second},
		{"Lyrics.Timeout", cfg.Lyrics.Timeout, 10 * time.Second},
		{"Lyrics.LRCLIBURL", cfg.Lyrics.LRCLIBURL, "https://lrclib.net/api/get"},
		{"Lyrics.GeniusURL", cfg.Lyrics.GeniusURL, "https://api.genius.com"},
		{"Log.Level", cfg.Log.Level, "info"},
	}

	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
	if len(cfg.Lyrics.Providers) != 2 || cfg.Lyrics.Providers[0] != "lrclib" {
		t.Errorf("Lyrics.Providers: got %v", cfg.Lyrics.Providers)
	}
	if filepath.Base(cfg.Database.Path) != "playbot.db" {
		t.Errorf("Database.Path: got %s", cfg.Database.Path)
	}
}

func TestSetDefaults_DoesNotOverride(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Path: "/tmp/x.db"},
		Player:   PlayerConfig{App: "Music", Timeout: time.Second},
		Log:      LogConfig{Level: "debug"},
	}
	setDefaults(cfg)

	if cfg.Database.Path != "/tmp/x.db" {
		t.Errorf("Database.Path should not be overridden: got %s", cfg.Database.Path)
	}
	if cfg.Player.App != "Music" {
		t.Errorf("Player.App should not be overridden: got %s", cfg.Player.App)
	}
	if cfg.Player.Timeout != time.Second {
		t.Errorf("Player.Timeout should not be overridden: got %v", cfg.Player.Timeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level should not be overridden: got %s", cfg.Log.Level)
	}
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("PB_TEST_GENIUS_TOKEN", "  secret  ")
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database:
  path: /tmp/pb-test.db
player:
  app: Music
  timeout: 2s
lyrics:
  providers: [genius]
  genius_token: ${PB_TEST_GENIUS_TOKEN}
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Lyrics.GeniusToken != "secret" {
		t.Errorf("GeniusToken: got %q", cfg.Lyrics.GeniusToken)
	}
	if cfg.Player.Timeout != 2*time.Second {
		t.Errorf("Player.Timeout: got %v", cfg.Player.Timeout)
	}
	if cfg.Player.App != "Music" {
		t.Errorf("Player.App: got %q", cfg.Player.App)
	}
	if len(cfg.Lyrics.Providers) != 1 || cfg.Lyrics.Providers[0] != "genius" {
		t.Errorf("Lyrics.Providers: got %v", cfg.Lyrics.Providers)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	tests := []struct {
		name     string
		explicit bool
		wantErr  bool
	}{
		{name: "default location falls back to defaults", explicit: false, wantErr: false},
		{name: "explicit path must exist", explicit: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(path, tt.explicit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			var cfgErr *Error
			if tt.wantErr && !errors.As(err, &cfgErr) {
				t.Fatalf("expected *config.Error, got %T", err)
			}
		})
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown player", content: "player:\n  app: Winamp\n"},
		{name: "unknown lyrics provider", content: "lyrics:\n  providers: [azlyrics]\n"},
		{name: "broken yaml", content: "player: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path, true); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/music.db"); got != filepath.Join(home, "music.db") {
		t.Errorf("expandHome: got %s", got)
	}
	if got := expandHome("/abs/music.db"); got != "/abs/music.db" {
		t.Errorf("expandHome changed absolute path: %s", got)
	}
}
