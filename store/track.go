package store

import (
	"fmt"
	"time"

	"github.com/chauveaul/playbot/util"
)

// Track is one cached, enriched track record keyed by ID.
type Track struct {
	ID     string // platform-native URI or id
	Name   string
	Artist string
	Album  string

	ReleaseDate string // stored verbatim, empty when unknown
	DurationMs  int64  // 0 when unknown
	Popularity  *int   // nil when the source has no such scale
	Genres      []string

	// Lyrics is nil when lookup was never attempted or found nothing.
	// A non-nil empty string is a distinct, stored value.
	Lyrics *string

	Producers []string
	Writers   []string

	CachedAt time.Time
}

// HasLyrics reports whether the lyrics field is populated.
func (t *Track) HasLyrics() bool {
	return t != nil && t.Lyrics != nil
}

// Field is one labelled display value of a Track.
type Field struct {
	Label string
	Value string
}

// Fields returns the populated display fields in a fixed order. Lyrics are
// not included.
func (t *Track) Fields() []Field {
	fields := []Field{
		{"Track", t.Name},
		{"Artist", t.Artist},
		{"Album", t.Album},
	}
	if t.ReleaseDate != "" {
		fields = append(fields, Field{"Release Date", t.ReleaseDate})
	}
	if t.DurationMs > 0 {
		fields = append(fields, Field{"Duration", util.FormatMillis(t.DurationMs)})
	}
	if t.Popularity != nil {
		fields = append(fields, Field{"Popularity", fmt.Sprintf("%d/100", *t.Popularity)})
	}
	if len(t.Genres) > 0 {
		fields = append(fields, Field{"Genres", util.JoinList(t.Genres)})
	}
	if len(t.Producers) > 0 {
		fields = append(fields, Field{"Producers", util.JoinList(t.Producers)})
	}
	if len(t.Writers) > 0 {
		fields = append(fields, Field{"Writers", util.JoinList(t.Writers)})
	}
	return fields
}
