package browser

import (
	"fmt"
	"strings"
)

// Row is one list entry.
type Row struct {
	Text     string
	Selected bool
}

// ViewModel is the display content for one State.
type ViewModel struct {
	Mode  Mode
	Title string
	Rows  []Row
	// Selected is the highlighted row, -1 when the list is empty.
	Selected int
	// Empty is shown instead of rows when there are none.
	Empty string

	SearchLine   string
	SearchActive bool

	DetailTitle  string
	DetailLines  []string
	DetailOffset int

	Help   string
	Status string
}

const (
	listHelp   = "j/k or Up/Down: Navigate | Enter: View Details | /: Search | q: Quit"
	filterHelp = "j/k or Up/Down: Navigate | Enter: View Details | /: Search | Esc: Clear Filter | q: Quit"
	searchHelp = "Type to search | Enter: Finish | Esc: Cancel"
	detailHelp = "j/k: Scroll | h/l: Prev/Next Song | Enter/Esc: Back to List | q: Quit"
)

// Project maps a State to its ViewModel. Equal states give equal views.
func Project(s State) ViewModel {
	vm := ViewModel{
		Mode:         s.Mode,
		Title:        fmt.Sprintf("Tracks (%d)", len(s.Tracks)),
		Selected:     -1,
		SearchActive: s.Mode == Search,
		Status:       s.Status,
	}

	switch {
	case s.Mode == Search:
		vm.SearchLine = "Searching: " + s.Query
	case s.Query != "":
		vm.SearchLine = fmt.Sprintf("Filter: %s", s.Query)
	default:
		vm.SearchLine = "Press / to search"
	}

	vm.Rows = make([]Row, len(s.Tracks))
	for i, t := range s.Tracks {
		vm.Rows[i] = Row{Text: t.Name + " by " + t.Artist, Selected: i == s.Selected}
	}
	if cur := s.Current(); cur != nil {
		vm.Selected = s.Selected
	} else if s.Query != "" {
		vm.Empty = fmt.Sprintf("No results found for '%s'", s.Query)
	} else {
		vm.Empty = "No tracks cached yet. Run pb while something is playing."
	}

	switch s.Mode {
	case Detail:
		vm.Help = detailHelp
		vm.DetailTitle = "Track Details"
		vm.DetailLines = detailLines(s)
		vm.DetailOffset = s.DetailOffset
	case Search:
		vm.Help = searchHelp
	default:
		if s.Query != "" {
			vm.Help = filterHelp
		} else {
			vm.Help = listHelp
		}
	}
	return vm
}

func detailLines(s State) []string {
	t := s.Current()
	if t == nil {
		return nil
	}
	var lines []string
	for _, f := range t.Fields() {
		lines = append(lines, f.Label+": "+f.Value)
	}
	if t.HasLyrics() {
		lines = append(lines, "", "Lyrics:", "")
		lines = append(lines, strings.Split(*t.Lyrics, "\n")...)
	}
	return lines
}
