package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chauveaul/playbot/logger"
	"github.com/chauveaul/playbot/util"
	"golang.org/x/text/cases"
	_ "modernc.org/sqlite"
)

// Error wraps any failure of the durable store.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "store " + e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// ErrSuperseded is returned by Upsert when a record with a newer CachedAt is
// already stored and the write was dropped.
var ErrSuperseded = errors.New("a newer record is already stored")

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// Store is the SQLite-backed track cache. It is safe for use by several
// goroutines and by several processes sharing the same file.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to stamp CachedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

const createTable = `CREATE TABLE IF NOT EXISTS tracks (
	track_id TEXT PRIMARY KEY,
	track_name TEXT NOT NULL,
	artist_name TEXT NOT NULL,
	album_name TEXT NOT NULL,
	release_date TEXT,
	duration_ms INTEGER,
	popularity INTEGER,
	genres TEXT,
	lyrics TEXT,
	producers TEXT,
	writers TEXT,
	cached_at INTEGER NOT NULL DEFAULT 0
)`

// optionalColumns are added to older files that predate them.
var optionalColumns = []struct{ name, decl string }{
	{"release_date", "TEXT"},
	{"duration_ms", "INTEGER"},
	{"popularity", "INTEGER"},
	{"genres", "TEXT"},
	{"lyrics", "TEXT"},
	{"producers", "TEXT"},
	{"writers", "TEXT"},
	{"cached_at", "INTEGER NOT NULL DEFAULT 0"},
}

const selectColumns = `track_id, track_name, artist_name, album_name, release_date,
	duration_ms, popularity, genres, lyrics, producers, writers, cached_at`

// Open opens or creates the store file at path.
func Open(path string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, wrap("open", fmt.Errorf("create directory: %w", err))
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, wrap("open", err)
	}

	s := &Store{db: db, path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	logger.Infof("[store] opened %s", path)
	return s, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error {
	return wrap("close", s.db.Close())
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return wrap("migrate", err)
	}

	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info(tracks)")
	if err != nil {
		return wrap("migrate", err)
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			rows.Close()
			return wrap("migrate", err)
		}
		existing[name] = true
	}
	if err := rows.Close(); err != nil {
		return wrap("migrate", err)
	}

	for _, col := range optionalColumns {
		if existing[col.name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE tracks ADD COLUMN %s %s", col.name, col.decl)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return wrap("migrate", err)
		}
		logger.Infof("[store] added column %s", col.name)
	}

	// Files written by older versions stamped cached_at as DATETIME text.
	_, err = s.db.ExecContext(ctx, `UPDATE tracks
		SET cached_at = CAST(strftime('%s', cached_at) AS INTEGER) * 1000000000
		WHERE typeof(cached_at) = 'text'`)
	return wrap("migrate", err)
}

// Get returns the record for id, or nil if none is cached.
func (s *Store) Get(ctx context.Context, id string) (*Track, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+selectColumns+" FROM tracks WHERE track_id = ?", id)
	t, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("get", err)
	}
	return t, nil
}

// Upsert writes t in full, replacing any record with the same ID, and stamps
// t.CachedAt with the current time. A write never merges fields with the
// previous record. When two writers race on the same ID the newer CachedAt
// wins; an older write that arrives late leaves the stored row untouched and
// returns ErrSuperseded.
func (s *Store) Upsert(ctx context.Context, t *Track) error {
	if t == nil || t.ID == "" {
		return wrap("upsert", errors.New("track id is required"))
	}

	t.CachedAt = s.now()

	res, err := s.db.ExecContext(ctx, `INSERT INTO tracks (
			track_id, track_name, artist_name, album_name, release_date,
			duration_ms, popularity, genres, lyrics, producers, writers, cached_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(track_id) DO UPDATE SET
			track_name = excluded.track_name,
			artist_name = excluded.artist_name,
			album_name = excluded.album_name,
			release_date = excluded.release_date,
			duration_ms = excluded.duration_ms,
			popularity = excluded.popularity,
			genres = excluded.genres,
			lyrics = excluded.lyrics,
			producers = excluded.producers,
			writers = excluded.writers,
			cached_at = excluded.cached_at
		WHERE excluded.cached_at >= tracks.cached_at`,
		t.ID, t.Name, t.Artist, t.Album,
		nullString(t.ReleaseDate),
		nullInt64(t.DurationMs),
		nullIntPtr(t.Popularity),
		nullString(util.EncodeList(t.Genres)),
		nullStringPtr(t.Lyrics),
		nullString(util.EncodeList(t.Producers)),
		nullString(util.EncodeList(t.Writers)),
		t.CachedAt.UnixNano(),
	)
	if err != nil {
		return wrap("upsert", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		logger.Warnf("[store] upsert %s skipped: %v", t.ID, ErrSuperseded)
		return wrap("upsert", ErrSuperseded)
	}
	logger.Debugf("[store] upserted %s", t.ID)
	return nil
}

// Search returns tracks whose name or artist contains query, compared under
// Unicode case folding, most recently cached first. The query is matched as
// given, spaces included; only the empty query matches every track.
func (s *Store) Search(ctx context.Context, query string) ([]Track, error) {
	all, err := s.list(ctx, "search", -1)
	if err != nil {
		return nil, err
	}

	if query == "" {
		return all, nil
	}

	fold := cases.Fold()
	needle := fold.String(query)
	matches := make([]Track, 0, len(all))
	for _, t := range all {
		if strings.Contains(fold.String(t.Name), needle) || strings.Contains(fold.String(t.Artist), needle) {
			matches = append(matches, t)
		}
	}
	return matches, nil
}

// Recent returns at most n tracks, most recently cached first.
func (s *Store) Recent(ctx context.Context, n int) ([]Track, error) {
	if n <= 0 {
		return []Track{}, nil
	}
	return s.list(ctx, "recent", n)
}

// Count returns the number of distinct cached tracks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tracks").Scan(&n); err != nil {
		return 0, wrap("count", err)
	}
	return n, nil
}

func (s *Store) list(ctx context.Context, op string, limit int) ([]Track, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM tracks ORDER BY cached_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, wrap(op, err)
	}
	defer rows.Close()

	tracks := make([]Track, 0)
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, wrap(op, err)
		}
		tracks = append(tracks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(op, err)
	}
	return tracks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrack(row scanner) (*Track, error) {
	var (
		t          Track
		release    sql.NullString
		duration   sql.NullInt64
		popularity sql.NullInt64
		genres     sql.NullString
		lyrics     sql.NullString
		producers  sql.NullString
		writers    sql.NullString
		cachedAt   any
	)
	err := row.Scan(&t.ID, &t.Name, &t.Artist, &t.Album, &release,
		&duration, &popularity, &genres, &lyrics, &producers, &writers, &cachedAt)
	if err != nil {
		return nil, err
	}

	t.ReleaseDate = release.String
	t.DurationMs = duration.Int64
	if popularity.Valid {
		p := int(popularity.Int64)
		t.Popularity = &p
	}
	t.Genres = util.DecodeList(genres.String)
	if lyrics.Valid {
		l := lyrics.String
		t.Lyrics = &l
	}
	t.Producers = util.DecodeList(producers.String)
	t.Writers = util.DecodeList(writers.String)
	t.CachedAt = decodeTime(cachedAt)
	return &t, nil
}

func decodeTime(v any) time.Time {
	switch x := v.(type) {
	case int64:
		if x == 0 {
			return time.Time{}
		}
		return time.Unix(0, x)
	case time.Time:
		return x
	case string:
		if ts, err := time.Parse("2006-01-02 15:04:05", x); err == nil {
			return ts
		}
	case []byte:
		return decodeTime(string(x))
	}
	return time.Time{}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(n int64) sql.NullInt64 {
	return sql.NullInt64{Int64: n, Valid: n > 0}
}

func nullIntPtr(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
