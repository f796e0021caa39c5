package daemon

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const fieldSeparator = "||"

// Spotify's dictionary has no release date but does expose popularity.
const spotifyScript = `if application "Spotify" is running then
	tell application "Spotify"
		if player state is not stopped then
			set t to current track
			return (id of t) & "||" & (name of t) & "||" & (artist of t) & "||" & (album of t) & "||" & (duration of t) & "||" & (popularity of t)
		end if
	end tell
end if
return ""`

const musicScript = `if application "Music" is running then
	tell application "Music"
		if player state is not stopped then
			set t to current track
			return (persistent ID of t) & "||" & (name of t) & "||" & (artist of t) & "||" & (album of t) & "||" & (duration of t) & "||" & (year of t) & "||" & (genre of t)
		end if
	end tell
end if
return ""`

// AppleScript queries Spotify or Music through osascript.
type AppleScript struct {
	app     string
	timeout time.Duration
}

// NewAppleScript returns a macOS provider for app ("Spotify" or "Music").
func NewAppleScript(app string, timeout time.Duration) *AppleScript {
	if app == "" {
		app = "Spotify"
	}
	return &AppleScript{app: app, timeout: timeout}
}

func (a *AppleScript) Name() string { return a.app }

func (a *AppleScript) CurrentTrack(ctx context.Context) (*NowPlaying, error) {
	script := spotifyScript
	if a.app == "Music" {
		script = musicScript
	}

	out, err := scriptOutput(ctx, a.timeout, script)
	if err != nil {
		return nil, &Error{Player: a.app, Err: err}
	}
	if out == "" {
		return nil, nil
	}

	var np *NowPlaying
	if a.app == "Music" {
		np, err = parseMusicTrack(out)
	} else {
		np, err = parseSpotifyTrack(out)
	}
	if err != nil {
		return nil, &Error{Player: a.app, Err: err}
	}
	return np, nil
}

func scriptOutput(ctx context.Context, timeout time.Duration, script string) (string, error) {
	out, err := commandOutput(ctx, timeout, "osascript", "-e", script)
	var cmdErr *commandError
	if errors.As(err, &cmdErr) && strings.Contains(cmdErr.stderr, "-1743") {
		return "", fmt.Errorf("%w: allow automation in System Settings > Privacy & Security", ErrNotAuthorized)
	}
	return out, err
}

func splitFields(out string, want int) ([]string, error) {
	parts := strings.Split(strings.TrimSpace(out), fieldSeparator)
	if len(parts) < want {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformed, want, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: missing id or title", ErrMalformed)
	}
	return parts, nil
}

func parseSpotifyTrack(out string) (*NowPlaying, error) {
	parts, err := splitFields(out, 5)
	if err != nil {
		return nil, err
	}

	np := &NowPlaying{
		ID:     parts[0],
		Title:  parts[1],
		Artist: parts[2],
		Album:  parts[3],
	}
	np.fillUnknown()
	// Spotify reports milliseconds.
	if ms, err := parseNumber(parts[4]); err == nil {
		np.DurationMs = int64(ms)
	}
	if len(parts) > 5 {
		if p, err := strconv.Atoi(parts[5]); err == nil {
			np.Popularity = &p
		}
	}
	return np, nil
}

func parseMusicTrack(out string) (*NowPlaying, error) {
	parts, err := splitFields(out, 5)
	if err != nil {
		return nil, err
	}

	np := &NowPlaying{
		ID:     "music:" + parts[0],
		Title:  parts[1],
		Artist: parts[2],
		Album:  parts[3],
	}
	np.fillUnknown()
	// Music reports seconds as a real number.
	if secs, err := parseNumber(parts[4]); err == nil {
		np.DurationMs = int64(secs * 1000)
	}
	if len(parts) > 5 && parts[5] != "0" {
		np.ReleaseDate = parts[5]
	}
	if len(parts) > 6 && parts[6] != "" {
		np.Genres = []string{parts[6]}
	}
	return np, nil
}

// parseNumber accepts both "215.5" and locale formatted "215,5".
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}
