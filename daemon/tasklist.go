package daemon

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"
)

// idle titles shown by the Spotify desktop client when nothing plays.
var idleTitles = map[string]bool{
	"spotify":         true,
	"spotify free":    true,
	"spotify premium": true,
	"n/a":             true,
	"":                true,
}

// WindowTitle reads the Spotify desktop window title on Windows, which has
// the form "Artist - Title" while a track plays.
type WindowTitle struct {
	image   string
	timeout time.Duration
}

// NewWindowTitle returns a Windows provider.
func NewWindowTitle(timeout time.Duration) *WindowTitle {
	return &WindowTitle{image: "Spotify.exe", timeout: timeout}
}

func (w *WindowTitle) Name() string { return "Spotify" }

func (w *WindowTitle) CurrentTrack(ctx context.Context) (*NowPlaying, error) {
	out, err := commandOutput(ctx, w.timeout, "tasklist", "/v", "/fo", "csv", "/nh", "/fi", "imagename eq "+w.image)
	if err != nil {
		return nil, &Error{Player: w.Name(), Err: err}
	}

	title, err := playingTitle(out)
	if err != nil {
		return nil, &Error{Player: w.Name(), Err: err}
	}
	if title == "" {
		return nil, nil
	}
	return parseWindowTitle(title), nil
}

// playingTitle returns the first non-idle window title in tasklist CSV output.
func playingTitle(out string) (string, error) {
	if out == "" || strings.HasPrefix(out, "INFO:") {
		return "", nil
	}

	r := csv.NewReader(strings.NewReader(out))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: tasklist csv: %v", ErrMalformed, err)
	}

	for _, rec := range records {
		if len(rec) < 9 {
			continue
		}
		title := strings.TrimSpace(rec[len(rec)-1])
		if idleTitles[strings.ToLower(title)] {
			continue
		}
		return title, nil
	}
	return "", nil
}

func parseWindowTitle(title string) *NowPlaying {
	np := &NowPlaying{Title: title}
	if artist, song, ok := strings.Cut(title, " - "); ok {
		np.Artist = strings.TrimSpace(artist)
		np.Title = strings.TrimSpace(song)
	}
	np.fillUnknown()
	np.ID = syntheticID(np.Artist, np.Title)
	return np
}
