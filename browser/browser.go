// Package browser is the interactive history browser as a state machine.
//
// Engine applies events to a State; Project turns a State into what should
// be on screen. Neither draws anything, so both run without a terminal.
package browser

import (
	"context"
	"fmt"

	"github.com/chauveaul/playbot/logger"
	"github.com/chauveaul/playbot/store"
)

type Mode int

const (
	List Mode = iota
	Detail
	Search
)

func (m Mode) String() string {
	switch m {
	case Detail:
		return "detail"
	case Search:
		return "search"
	default:
		return "list"
	}
}

// EventKind names an input after key mapping.
type EventKind int

const (
	Up EventKind = iota
	Down
	PrevTrack
	NextTrack
	Enter
	Escape
	StartSearch
	Input
	Backspace
	Quit
)

// Event is one input. Rune is only read for Input.
type Event struct {
	Kind EventKind
	Rune rune
}

// Key returns an event without text.
func Key(k EventKind) Event { return Event{Kind: k} }

// Char returns a text input event.
func Char(r rune) Event { return Event{Kind: Input, Rune: r} }

// Searcher is the store query the browser runs on load and on every
// query change.
type Searcher interface {
	Search(ctx context.Context, query string) ([]store.Track, error)
}

// State is everything the screen depends on.
type State struct {
	Mode     Mode
	Selected int
	Tracks   []store.Track
	// Query is the search buffer. Outside Search mode it holds the
	// committed filter, empty when the full list is shown.
	Query        string
	DetailOffset int
	// Status is the last search failure, cleared by the next good load.
	Status string
}

// Current returns the selected track, or nil for an empty list.
func (s State) Current() *store.Track {
	if len(s.Tracks) == 0 || s.Selected < 0 || s.Selected >= len(s.Tracks) {
		return nil
	}
	return &s.Tracks[s.Selected]
}

// Engine owns a State and the store it queries.
type Engine struct {
	searcher Searcher
	state    State
}

// New loads the full track list and starts in List mode.
func New(ctx context.Context, searcher Searcher) (*Engine, error) {
	tracks, err := searcher.Search(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load tracks: %w", err)
	}
	return &Engine{searcher: searcher, state: State{Mode: List, Tracks: tracks}}, nil
}

// State returns a snapshot of the current state.
func (e *Engine) State() State {
	return e.state
}

// Handle applies ev and reports whether the browser should exit. Each event
// finishes, store query included, before Handle returns.
func (e *Engine) Handle(ctx context.Context, ev Event) (quit bool) {
	switch e.state.Mode {
	case List:
		return e.handleList(ctx, ev)
	case Detail:
		return e.handleDetail(ev)
	case Search:
		return e.handleSearch(ctx, ev)
	}
	return false
}

func (e *Engine) handleList(ctx context.Context, ev Event) bool {
	s := &e.state
	switch ev.Kind {
	case Quit:
		return true
	case Up:
		if s.Selected > 0 {
			s.Selected--
		}
	case Down:
		if s.Selected < len(s.Tracks)-1 {
			s.Selected++
		}
	case Enter:
		if len(s.Tracks) == 0 {
			return false
		}
		s.Mode = Detail
		s.DetailOffset = 0
	case StartSearch:
		s.Mode = Search
		if s.Query != "" {
			s.Query = ""
			e.load(ctx)
		}
	case Escape:
		if s.Query != "" {
			s.Query = ""
			e.load(ctx)
		}
	}
	return false
}

func (e *Engine) handleDetail(ev Event) bool {
	s := &e.state
	switch ev.Kind {
	case Quit:
		return true
	case Down:
		s.DetailOffset++
	case Up:
		if s.DetailOffset > 0 {
			s.DetailOffset--
		}
	case PrevTrack:
		if s.Selected > 0 {
			s.Selected--
			s.DetailOffset = 0
		}
	case NextTrack:
		if s.Selected < len(s.Tracks)-1 {
			s.Selected++
			s.DetailOffset = 0
		}
	case Enter, Escape:
		s.Mode = List
	}
	return false
}

func (e *Engine) handleSearch(ctx context.Context, ev Event) bool {
	s := &e.state
	switch ev.Kind {
	case Quit:
		return true
	case Input:
		s.Query += string(ev.Rune)
		e.load(ctx)
	case Backspace:
		if s.Query == "" {
			return false
		}
		r := []rune(s.Query)
		s.Query = string(r[:len(r)-1])
		e.load(ctx)
	case Enter:
		s.Mode = List
	case Escape:
		s.Mode = List
		s.Query = ""
		e.load(ctx)
	}
	return false
}

// load replaces the track list with the results for the current query. On
// failure the previous list stays and the error goes to Status.
func (e *Engine) load(ctx context.Context) {
	tracks, err := e.searcher.Search(ctx, e.state.Query)
	if err != nil {
		logger.Warnf("[browser] search %q failed: %v", e.state.Query, err)
		e.state.Status = "Search failed: " + err.Error()
		return
	}
	e.state.Tracks = tracks
	e.state.Selected = 0
	e.state.Status = ""
}
