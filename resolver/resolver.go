// Package resolver answers "what is playing" from the live player and the
// track cache, fetching lyrics only when the cache cannot serve them.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/chauveaul/playbot/daemon"
	"github.com/chauveaul/playbot/logger"
	"github.com/chauveaul/playbot/store"
)

// Outcome is the terminal state of one Resolve run.
type Outcome int

const (
	NothingPlaying Outcome = iota
	ServedFromCache
	Fetched
)

func (o Outcome) String() string {
	switch o {
	case ServedFromCache:
		return "cached"
	case Fetched:
		return "fetched"
	default:
		return "nothing playing"
	}
}

// TrackSource reports the live track; nil, nil means nothing is playing.
type TrackSource interface {
	CurrentTrack(ctx context.Context) (*daemon.NowPlaying, error)
}

// LyricsFinder looks lyrics up. found is false when nothing matched.
type LyricsFinder interface {
	FindLyrics(ctx context.Context, title, artist string) (text string, found bool, err error)
}

// TrackCache is the part of the store the resolver reads and writes.
type TrackCache interface {
	Get(ctx context.Context, id string) (*store.Track, error)
	Upsert(ctx context.Context, t *store.Track) error
}

// Result is what Resolve hands back to the caller.
type Result struct {
	Outcome    Outcome
	NowPlaying *daemon.NowPlaying
	Track      *store.Track
	// LyricsErr records an absorbed lookup failure, for display only.
	LyricsErr error
}

// Resolver composes the player, the cache and the lyrics lookup.
type Resolver struct {
	source TrackSource
	cache  TrackCache
	lyrics LyricsFinder
}

// New returns a Resolver.
func New(source TrackSource, cache TrackCache, lyrics LyricsFinder) *Resolver {
	return &Resolver{source: source, cache: cache, lyrics: lyrics}
}

// Resolve runs the fetch-or-serve decision once.
//
// A cached record is served untouched only when refresh is false and the
// record already carries lyrics. Otherwise lyrics are looked up again and a
// fresh record built from the live fields replaces the cached one, so a
// record without lyrics is retried on every plain run until they are found.
// Player and store errors are returned; lyrics errors are not. When another
// writer stored a newer record first, that record is served instead.
func (r *Resolver) Resolve(ctx context.Context, refresh bool) (*Result, error) {
	np, err := r.source.CurrentTrack(ctx)
	if err != nil {
		return nil, fmt.Errorf("query player: %w", err)
	}
	if np == nil {
		logger.Infof("[resolver] nothing playing")
		return &Result{Outcome: NothingPlaying}, nil
	}

	cached, err := r.cache.Get(ctx, np.ID)
	if err != nil {
		return nil, err
	}
	if cached != nil && !refresh && cached.HasLyrics() {
		logger.Infof("[resolver] serving %s from cache", np.ID)
		return &Result{Outcome: ServedFromCache, NowPlaying: np, Track: cached}, nil
	}

	res := &Result{Outcome: Fetched, NowPlaying: np, Track: fromNowPlaying(np)}

	text, found, err := r.lyrics.FindLyrics(ctx, np.Title, np.Artist)
	switch {
	case err != nil:
		logger.Warnf("[resolver] lyrics lookup for %s failed: %v", np.ID, err)
		res.LyricsErr = err
	case found:
		res.Track.Lyrics = &text
	default:
		logger.Infof("[resolver] no lyrics for %s", np.ID)
	}

	if err := r.cache.Upsert(ctx, res.Track); err != nil {
		if !errors.Is(err, store.ErrSuperseded) {
			return nil, err
		}
		return r.serveWinner(ctx, np)
	}
	logger.Infof("[resolver] cached %s (refresh=%t, lyrics=%t)", np.ID, refresh, res.Track.HasLyrics())
	return res, nil
}

// serveWinner reads back the record that beat our write.
func (r *Resolver) serveWinner(ctx context.Context, np *daemon.NowPlaying) (*Result, error) {
	winner, err := r.cache.Get(ctx, np.ID)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, fmt.Errorf("read back %s: %w", np.ID, store.ErrSuperseded)
	}
	logger.Infof("[resolver] %s was written concurrently; serving the stored record", np.ID)
	return &Result{Outcome: ServedFromCache, NowPlaying: np, Track: winner}, nil
}

// fromNowPlaying builds a record from live fields only. Nothing is carried
// over from an older cached record.
func fromNowPlaying(np *daemon.NowPlaying) *store.Track {
	t := &store.Track{
		ID:          np.ID,
		Name:        np.Title,
		Artist:      np.Artist,
		Album:       np.Album,
		ReleaseDate: np.ReleaseDate,
		DurationMs:  np.DurationMs,
		Genres:      np.Genres,
		Writers:     np.Writers,
	}
	if np.Popularity != nil {
		p := *np.Popularity
		t.Popularity = &p
	}
	return t
}
