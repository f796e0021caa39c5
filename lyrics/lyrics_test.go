package lyrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCleanSearchQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Song Name", "Song Name"},
		{"  Song Name  ", "Song Name"},
		{"Song feat. Someone", "Song"},
		{"Song ft. Someone", "Song"},
		{"Song (Remastered 2011)", "Song"},
		{"Song [Live]", "Song"},
		{"Song - Remastered 2009", "Song"},
		{"(Untitled)", "(Untitled)"},
		{"Song FT. Someone", "Song"},
		{"Song featuring Someone", "Song"},
		{"Song feat", "Song"},
		{"Birds of a Feather", "Birds of a Feather"},
		{"Left Feet", "Left Feet"},
		{"İstanbul feat. Sezen Aksu", "İstanbul"},
		{"ȺȺȺȺȺȺ feat", "ȺȺȺȺȺȺ"},
	}
	for _, tt := range tests {
		if got := cleanSearchQuery(tt.in); got != tt.want {
			t.Errorf("cleanSearchQuery(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFindLyricsNonASCIITitle(t *testing.T) {
	var gotTrack, gotArtist string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTrack = r.URL.Query().Get("track_name")
		gotArtist = r.URL.Query().Get("artist_name")
		fmt.Fprint(w, `{"plainLyrics":"la"}`)
	}))
	defer srv.Close()

	c := NewClientWithProviders(NewLRCLIB(srv.Client(), srv.URL))
	text, ok, err := c.FindLyrics(context.Background(), "ȺȺȺȺȺȺ feat", "İstanbul Orkestrası ft. Guest")
	if err != nil || !ok || text != "la" {
		t.Fatalf("FindLyrics() = %q, %v, %v", text, ok, err)
	}
	if gotTrack != "ȺȺȺȺȺȺ" || gotArtist != "İstanbul Orkestrası" {
		t.Errorf("query = %q by %q", gotTrack, gotArtist)
	}
}

func TestStripTimestamps(t *testing.T) {
	in := "[00:01.00] first line\n[00:05.20][00:30.00] chorus\n"
	if got := stripTimestamps(in); got != "first line\nchorus" {
		t.Errorf("stripTimestamps = %q", got)
	}
}

func TestLRCLIBProvider(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantFound bool
		wantText  string
		wantErr   bool
	}{
		{
			name:      "plain lyrics",
			status:    http.StatusOK,
			body:      `{"trackName":"Song","plainLyrics":"hello\nworld"}`,
			wantFound: true,
			wantText:  "hello\nworld",
		},
		{
			name:      "instrumental",
			status:    http.StatusOK,
			body:      `{"instrumental":true}`,
			wantFound: true,
			wantText:  "[Instrumental]",
		},
		{name: "not found", status: http.StatusNotFound, body: `{}`},
		{name: "empty lyrics", status: http.StatusOK, body: `{"plainLyrics":"","syncedLyrics":""}`},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantErr: true},
		{name: "bad json", status: http.StatusOK, body: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("track_name"); got != "Song" {
					t.Errorf("track_name = %q, want Song", got)
				}
				if got := r.URL.Query().Get("artist_name"); got != "Artist" {
					t.Errorf("artist_name = %q, want Artist", got)
				}
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			p := NewLRCLIB(srv.Client(), srv.URL)
			got, err := p.GetLyrics(context.Background(), "Song (Live)", "Artist feat. Guest")
			if (err != nil) != tt.wantErr {
				t.Fatalf("GetLyrics() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Found != tt.wantFound || got.PlainLyrics != tt.wantText {
				t.Errorf("GetLyrics() = %+v", got)
			}
		})
	}
}

func newGeniusServer(t *testing.T, page string) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			if r.Header.Get("Authorization") != "Bearer token-123" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			fmt.Fprintf(w, `{"response":{"hits":[
				{"type":"song","result":{"id":1,"url":"%[1]s/wrong","primary_artist":{"name":"Cover Band"}}},
				{"type":"song","result":{"id":2,"url":"%[1]s/right","primary_artist":{"name":"The Beatles"}}}
			]}}`, srv.URL)
		case "/right":
			fmt.Fprint(w, page)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGeniusProvider(t *testing.T) {
	page := `<html><body>
		<div data-lyrics-container="true">Yesterday<br/>All my troubles seemed so far away<div data-exclude-from-selection="true">Embed</div></div>
		<div data-lyrics-container="true">Now it looks as though they're here to stay</div>
	</body></html>`
	srv := newGeniusServer(t, page)

	p := NewGenius(srv.Client(), srv.URL, "token-123")
	got, err := p.GetLyrics(context.Background(), "Yesterday", "The Beatles")
	if err != nil {
		t.Fatalf("GetLyrics() error = %v", err)
	}
	want := "Yesterday\nAll my troubles seemed so far away\n\nNow it looks as though they're here to stay"
	if !got.Found || got.PlainLyrics != want {
		t.Errorf("GetLyrics() = %q, want %q", got.PlainLyrics, want)
	}
}

func TestGeniusProviderUnauthorized(t *testing.T) {
	srv := newGeniusServer(t, "")

	p := NewGenius(srv.Client(), srv.URL, "wrong")
	if _, err := p.GetLyrics(context.Background(), "Yesterday", "The Beatles"); err == nil {
		t.Fatal("expected error for rejected token")
	}
}

type stubProvider struct {
	name   string
	result Result
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) GetLyrics(ctx context.Context, trackName, artistName string) (Result, error) {
	s.calls++
	return s.result, s.err
}

func TestClientFind(t *testing.T) {
	transport := errors.New("connection refused")

	tests := []struct {
		name      string
		providers []*stubProvider
		wantFound bool
		wantSrc   string
		wantErr   bool
		wantCalls []int
	}{
		{
			name: "first provider wins",
			providers: []*stubProvider{
				{name: "a", result: Result{PlainLyrics: "x", Found: true}},
				{name: "b", result: Result{PlainLyrics: "y", Found: true}},
			},
			wantFound: true,
			wantSrc:   "a",
			wantCalls: []int{1, 0},
		},
		{
			name: "falls back after failure",
			providers: []*stubProvider{
				{name: "a", err: transport},
				{name: "b", result: Result{PlainLyrics: "y", Found: true}},
			},
			wantFound: true,
			wantSrc:   "b",
			wantCalls: []int{1, 1},
		},
		{
			name: "all not found is not an error",
			providers: []*stubProvider{
				{name: "a"},
				{name: "b"},
			},
			wantCalls: []int{1, 1},
		},
		{
			name: "failure without any match is an error",
			providers: []*stubProvider{
				{name: "a"},
				{name: "b", err: transport},
			},
			wantErr:   true,
			wantCalls: []int{1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := make([]Provider, len(tt.providers))
			for i, p := range tt.providers {
				ps[i] = p
			}
			got, err := NewClientWithProviders(ps...).Find(context.Background(), "t", "a")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Find() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, transport) {
				t.Errorf("error should wrap the provider failure: %v", err)
			}
			if got.Found != tt.wantFound || got.Source != tt.wantSrc {
				t.Errorf("Find() = %+v", got)
			}
			for i, p := range tt.providers {
				if p.calls != tt.wantCalls[i] {
					t.Errorf("provider %s called %d times, want %d", p.name, p.calls, tt.wantCalls[i])
				}
			}
		})
	}
}

func TestClientFindLyricsPrefersPlainText(t *testing.T) {
	synced := &stubProvider{name: "s", result: Result{SyncedLyrics: "[00:01.00] la la", Found: true}}
	text, ok, err := NewClientWithProviders(synced).FindLyrics(context.Background(), "t", "a")
	if err != nil || !ok || text != "la la" {
		t.Fatalf("FindLyrics() = %q, %v, %v", text, ok, err)
	}
}

func TestNewClientSkipsGeniusWithoutToken(t *testing.T) {
	c := NewClient(Options{Providers: []string{"lrclib", "genius"}, Timeout: time.Second})
	if len(c.providers) != 1 || c.providers[0].Name() != "LRCLIB" {
		names := make([]string, 0, len(c.providers))
		for _, p := range c.providers {
			names = append(names, p.Name())
		}
		t.Fatalf("providers = %s", strings.Join(names, ","))
	}
}
