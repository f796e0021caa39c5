// Package daemon asks the host's media session what is currently playing.
//
// One Provider variant exists per platform; New picks it once from the host
// OS name. Every variant bounds its query with a timeout and reports
// "nothing playing" as a nil track with a nil error.
package daemon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTimeout bounds a single now-playing query.
const DefaultTimeout = 5 * time.Second

var (
	ErrTimeout       = errors.New("player query timed out")
	ErrNotAuthorized = errors.New("not authorized to control the player")
	ErrUnavailable   = errors.New("player query mechanism unavailable")
	ErrMalformed     = errors.New("malformed player response")
	ErrUnsupportedOS = errors.New("unsupported operating system")
)

// NowPlaying is the track reported live by the host.
type NowPlaying struct {
	ID          string
	Title       string
	Artist      string
	Album       string
	DurationMs  int64
	ReleaseDate string
	Popularity  *int
	Genres      []string
	Writers     []string
}

// Placeholders used when a player reports no artist or album.
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

func (n *NowPlaying) fillUnknown() {
	if n.Artist == "" {
		n.Artist = UnknownArtist
	}
	if n.Album == "" {
		n.Album = UnknownAlbum
	}
}

func (n NowPlaying) String() string {
	return fmt.Sprintf("(%s) %q by %s", n.ID, n.Title, n.Artist)
}

// Provider reports the currently playing track. A nil track with a nil
// error means the player is not running or nothing is playing.
type Provider interface {
	CurrentTrack(ctx context.Context) (*NowPlaying, error)
	Name() string
}

// Error is a failed now-playing query.
type Error struct {
	Player string
	Err    error
}

func (e *Error) Error() string { return e.Player + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Options configures provider selection.
type Options struct {
	// App is the macOS player: "Spotify" or "Music".
	App string
	// MPRISService pins the Linux D-Bus service; empty auto-discovers.
	MPRISService string
	Timeout      time.Duration
}

// New returns the provider for goos (a runtime.GOOS value).
func New(goos string, opts Options) (Provider, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	switch goos {
	case "darwin":
		return NewAppleScript(opts.App, opts.Timeout), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return NewMPRIS(opts.MPRISService, opts.Timeout), nil
	case "windows":
		return NewWindowTitle(opts.Timeout), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, goos)
}

// execCommand is swapped out by tests.
var execCommand = exec.CommandContext

// commandOutput runs name with a bounded wait and returns trimmed stdout.
func commandOutput(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := execCommand(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return strings.TrimSpace(stdout.String()), nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return "", fmt.Errorf("%w: %s not found", ErrUnavailable, name)
	}
	return "", &commandError{err: err, stderr: strings.TrimSpace(stderr.String())}
}

type commandError struct {
	err    error
	stderr string
}

func (e *commandError) Error() string {
	if e.stderr == "" {
		return e.err.Error()
	}
	return e.err.Error() + ": " + e.stderr
}

func (e *commandError) Unwrap() error { return e.err }

var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/chauveaul/playbot"))

// syntheticID derives a stable id for players that expose none.
func syntheticID(artist, title string) string {
	key := strings.ToLower(strings.TrimSpace(artist)) + "\x00" + strings.ToLower(strings.TrimSpace(title))
	return "local:" + uuid.NewSHA1(idNamespace, []byte(key)).String()
}
