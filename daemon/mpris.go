package daemon

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	mprisPrefix      = "org.mpris.MediaPlayer2."
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"
	mprisNoTrack     = "/org/mpris/MediaPlayer2/TrackList/NoTrack"
)

// busConn is the slice of the session bus the MPRIS provider needs.
type busConn interface {
	ListNames(ctx context.Context) ([]string, error)
	PlayerProperty(ctx context.Context, service, name string) (dbus.Variant, error)
	Close() error
}

type sessionBus struct {
	conn *dbus.Conn
}

// connectSessionBus ties the connection to ctx; the bus is closed when ctx
// is done.
func connectSessionBus(ctx context.Context) (busConn, error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return &sessionBus{conn: conn}, nil
}

func (b *sessionBus) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	err := b.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names)
	return names, err
}

func (b *sessionBus) PlayerProperty(ctx context.Context, service, name string) (dbus.Variant, error) {
	var v dbus.Variant
	err := b.conn.Object(service, mprisPath).
		CallWithContext(ctx, "org.freedesktop.DBus.Properties.Get", 0, mprisPlayerIface, name).
		Store(&v)
	return v, err
}

func (b *sessionBus) Close() error { return b.conn.Close() }

// MPRIS reads the now-playing track from any MPRIS-capable player on the
// session bus.
type MPRIS struct {
	service string
	timeout time.Duration
	connect func(ctx context.Context) (busConn, error)
}

// NewMPRIS returns a Linux provider. An empty service auto-discovers the
// player, preferring Spotify.
func NewMPRIS(service string, timeout time.Duration) *MPRIS {
	return &MPRIS{service: service, timeout: timeout, connect: connectSessionBus}
}

func (m *MPRIS) Name() string {
	if m.service != "" {
		return strings.TrimPrefix(m.service, mprisPrefix)
	}
	return "mpris"
}

func (m *MPRIS) CurrentTrack(ctx context.Context) (*NowPlaying, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	bus, err := m.dial(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w connecting to the session bus after %s", ErrTimeout, m.timeout)
		} else {
			err = fmt.Errorf("%w: session bus: %v", ErrUnavailable, err)
		}
		return nil, &Error{Player: m.Name(), Err: err}
	}
	defer bus.Close()

	np, err := m.query(ctx, bus)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %s", ErrTimeout, m.timeout)
		}
		return nil, &Error{Player: m.Name(), Err: err}
	}
	return np, nil
}

// dial runs connect but gives up when ctx is done, even if the connect
// itself does not watch ctx. A bus that arrives late is closed.
func (m *MPRIS) dial(ctx context.Context) (busConn, error) {
	type dialResult struct {
		bus busConn
		err error
	}
	done := make(chan dialResult, 1)
	go func() {
		bus, err := m.connect(ctx)
		done <- dialResult{bus, err}
	}()

	select {
	case r := <-done:
		return r.bus, r.err
	case <-ctx.Done():
		go func() {
			if r := <-done; r.bus != nil {
				r.bus.Close()
			}
		}()
		return nil, ctx.Err()
	}
}

func (m *MPRIS) query(ctx context.Context, bus busConn) (*NowPlaying, error) {
	names, err := bus.ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bus names: %w", err)
	}

	service, err := m.pickService(ctx, bus, names)
	if err != nil || service == "" {
		return nil, err
	}

	prop, err := bus.PlayerProperty(ctx, service, "Metadata")
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	metadata, ok := prop.Value().(map[string]dbus.Variant)
	if !ok {
		return nil, fmt.Errorf("%w: metadata type %T", ErrMalformed, prop.Value())
	}
	return parseMetadata(metadata)
}

// pickService returns the service to read, or "" when no player has a
// current track. A playing player beats a paused one.
func (m *MPRIS) pickService(ctx context.Context, bus busConn, names []string) (string, error) {
	var candidates []string
	for _, n := range names {
		if m.service != "" {
			if n == m.service {
				candidates = append(candidates, n)
			}
			continue
		}
		if strings.HasPrefix(n, mprisPrefix) {
			candidates = append(candidates, n)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return isSpotify(candidates[i]) && !isSpotify(candidates[j])
	})

	paused := ""
	for _, svc := range candidates {
		prop, err := bus.PlayerProperty(ctx, svc, "PlaybackStatus")
		if err != nil {
			if ctx.Err() != nil {
				return "", err
			}
			continue
		}
		status, _ := prop.Value().(string)
		switch status {
		case "Playing":
			return svc, nil
		case "Paused":
			if paused == "" {
				paused = svc
			}
		}
	}
	return paused, nil
}

func isSpotify(service string) bool {
	return strings.Contains(strings.ToLower(service), "spotify")
}

func parseMetadata(metadata map[string]dbus.Variant) (*NowPlaying, error) {
	np := &NowPlaying{
		Title:       variantString(metadata, "xesam:title"),
		Artist:      strings.Join(variantStrings(metadata, "xesam:artist"), ", "),
		Album:       variantString(metadata, "xesam:album"),
		DurationMs:  variantMicros(metadata, "mpris:length") / 1000,
		ReleaseDate: variantString(metadata, "xesam:contentCreated"),
		Genres:      variantStrings(metadata, "xesam:genre"),
	}
	np.Writers = append(variantStrings(metadata, "xesam:composer"), variantStrings(metadata, "xesam:lyricist")...)

	if np.Title == "" {
		return nil, fmt.Errorf("%w: missing title", ErrMalformed)
	}
	np.fillUnknown()

	np.ID = mprisTrackID(variantString(metadata, "mpris:trackid"))
	if np.ID == "" {
		np.ID = syntheticID(np.Artist, np.Title)
	}
	return np, nil
}

// mprisTrackID normalises Spotify's object path ids to spotify:track:<id>
// so they match the ids reported on macOS.
func mprisTrackID(raw string) string {
	if raw == "" || raw == mprisNoTrack {
		return ""
	}
	if rest, ok := strings.CutPrefix(raw, "/com/spotify/track/"); ok {
		return "spotify:track:" + rest
	}
	return raw
}

func variantString(metadata map[string]dbus.Variant, key string) string {
	v, ok := metadata[key]
	if !ok {
		return ""
	}
	switch x := v.Value().(type) {
	case string:
		return x
	case dbus.ObjectPath:
		return string(x)
	case []string:
		if len(x) > 0 {
			return x[0]
		}
	}
	return ""
}

func variantStrings(metadata map[string]dbus.Variant, key string) []string {
	v, ok := metadata[key]
	if !ok {
		return nil
	}
	switch x := v.Value().(type) {
	case []string:
		return x
	case string:
		if x != "" {
			return []string{x}
		}
	}
	return nil
}

func variantMicros(metadata map[string]dbus.Variant, key string) int64 {
	v, ok := metadata[key]
	if !ok {
		return 0
	}
	switch x := v.Value().(type) {
	case int64:
		if x > 0 {
			return x
		}
	case uint64:
		return int64(x)
	case int32:
		if x > 0 {
			return int64(x)
		}
	}
	return 0
}
