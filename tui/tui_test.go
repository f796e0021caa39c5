package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chauveaul/playbot/browser"
	"github.com/chauveaul/playbot/store"
)

type memSearcher []store.Track

func (s memSearcher) Search(ctx context.Context, query string) ([]store.Track, error) {
	var out []store.Track
	for _, t := range s {
		if strings.Contains(strings.ToLower(t.Name+" "+t.Artist), strings.ToLower(query)) {
			out = append(out, t)
		}
	}
	return out, nil
}

func newTestModel(t *testing.T, tracks ...store.Track) Model {
	t.Helper()
	e, err := browser.New(context.Background(), memSearcher(tracks))
	if err != nil {
		t.Fatalf("browser.New: %v", err)
	}
	return NewModel(context.Background(), e)
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var model tea.Model
		model, cmd = m.Update(msg)
		m = model.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sampleTracks() []store.Track {
	return []store.Track{
		{ID: "1", Name: "Creep", Artist: "Radiohead", Album: "Pablo Honey"},
		{ID: "2", Name: "Karma Police", Artist: "Radiohead", Album: "OK Computer"},
		{ID: "3", Name: "Help!", Artist: "The Beatles", Album: "Help!"},
	}
}

func TestQuitKeys(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
		quit bool
	}{
		{name: "q in list", keys: []tea.KeyMsg{runes("q")}, quit: true},
		{name: "ctrl+c in list", keys: []tea.KeyMsg{{Type: tea.KeyCtrlC}}, quit: true},
		{name: "q while searching", keys: []tea.KeyMsg{runes("/"), runes("q")}, quit: false},
		{name: "ctrl+c while searching", keys: []tea.KeyMsg{runes("/"), {Type: tea.KeyCtrlC}}, quit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cmd := press(t, newTestModel(t, sampleTracks()...), tt.keys...)
			quit := false
			if cmd != nil {
				_, quit = cmd().(tea.QuitMsg)
			}
			if quit != tt.quit {
				t.Errorf("quit = %v, want %v", quit, tt.quit)
			}
		})
	}
}

func TestNavigationDrivesEngine(t *testing.T) {
	m, _ := press(t, newTestModel(t, sampleTracks()...),
		tea.KeyMsg{Type: tea.KeyDown},
		runes("j"),
		runes("k"),
	)
	if got := m.engine.State().Selected; got != 1 {
		t.Fatalf("Selected = %d, want 1", got)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.engine.State().Mode != browser.Detail {
		t.Fatalf("Mode = %v, want detail", m.engine.State().Mode)
	}

	m, _ = press(t, m, runes("l"), runes("j"))
	st := m.engine.State()
	if st.Selected != 2 || st.DetailOffset != 1 {
		t.Errorf("state = %+v", st)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.engine.State().Mode != browser.List {
		t.Errorf("Mode = %v, want list", m.engine.State().Mode)
	}
}

func TestSearchTyping(t *testing.T) {
	m, _ := press(t, newTestModel(t, sampleTracks()...),
		runes("/"),
		runes("radio"),
		tea.KeyMsg{Type: tea.KeySpace},
		tea.KeyMsg{Type: tea.KeyBackspace},
	)
	st := m.engine.State()
	if st.Mode != browser.Search || st.Query != "radio" || len(st.Tracks) != 2 {
		t.Fatalf("state = %+v", st)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if st := m.engine.State(); st.Mode != browser.List || st.Query != "radio" {
		t.Errorf("commit failed: %+v", st)
	}

	mm := m.boxer.ModelMap[searchLeaf].(searchModel)
	if mm.vm.SearchLine != "Filter: radio" {
		t.Errorf("search pane not synced: %q", mm.vm.SearchLine)
	}
}

func TestListViewKeepsSelectionVisible(t *testing.T) {
	var tracks []store.Track
	for i := 0; i < 20; i++ {
		tracks = append(tracks, store.Track{ID: fmt.Sprint(i), Name: fmt.Sprintf("Song %02d", i), Artist: "Band"})
	}
	st := browser.State{Mode: browser.List, Selected: 15, Tracks: tracks}

	m := mainModel{width: 40, height: 8, vm: browser.Project(st)}
	m.follow()
	out := m.View()

	if !strings.Contains(out, "> Song 15 by Band") {
		t.Errorf("selected row not visible:\n%s", out)
	}
	if strings.Contains(out, "Song 00") {
		t.Errorf("list did not scroll:\n%s", out)
	}
	if !strings.Contains(out, "[16/20]") {
		t.Errorf("missing scroll indicator:\n%s", out)
	}
	if n := strings.Count(out, "\n") + 1; n > 8 {
		t.Errorf("view has %d lines, want at most 8", n)
	}
}

func TestDetailViewClampsOffset(t *testing.T) {
	lyrics := "one\ntwo\nthree"
	st := browser.State{
		Mode:         browser.Detail,
		DetailOffset: 100,
		Tracks:       []store.Track{{ID: "1", Name: "Creep", Artist: "Radiohead", Album: "Pablo Honey", Lyrics: &lyrics}},
	}
	m := mainModel{width: 40, height: 6, vm: browser.Project(st)}
	out := m.View()

	if !strings.Contains(out, "three") {
		t.Errorf("clamped view should end on the last line:\n%s", out)
	}
	if !strings.Contains(out, "Track Details") {
		t.Errorf("missing title:\n%s", out)
	}
}

func TestEmptyListView(t *testing.T) {
	m := mainModel{width: 60, height: 5, vm: browser.Project(browser.State{})}
	if out := m.View(); !strings.Contains(out, "No tracks cached yet") {
		t.Errorf("empty view = %q", out)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a long track title", 10, "a long ..."},
		{"日本語のタイトル", 7, "日本..."},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestPaneHeights(t *testing.T) {
	got := paneHeights(24)
	if got[0] != 3 || got[1] != 19 || got[2] != 2 {
		t.Errorf("paneHeights(24) = %v", got)
	}
	if got := paneHeights(2); got[1] != 1 {
		t.Errorf("main pane collapsed: %v", got)
	}
}
