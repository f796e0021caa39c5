package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/chauveaul/playbot/resolver"
	"github.com/chauveaul/playbot/store"
)

var nowPlayingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))

var fieldIcons = map[string]string{
	"Track":        "📀",
	"Artist":       "👤",
	"Album":        "💿",
	"Release Date": "📅",
	"Duration":     "⏱️ ",
	"Popularity":   "⭐",
	"Genres":       "🎸",
	"Producers":    "🎛️ ",
	"Writers":      "✍️ ",
}

func printResult(w io.Writer, res *resolver.Result) {
	if res.Outcome == resolver.NothingPlaying {
		fmt.Fprintln(w, "⏸️  Nothing is playing right now.")
		return
	}

	fmt.Fprintf(w, "🎵 Now Playing: %s by %s\n", res.NowPlaying.Title, res.NowPlaying.Artist)
	if res.Outcome == resolver.ServedFromCache {
		fmt.Fprint(w, "\n📦 (Using cached data)\n\n")
	} else {
		fmt.Fprint(w, "\n✨ Fresh data fetched!\n\n")
	}
	printTrack(w, res.Track)
}

func printTrack(w io.Writer, t *store.Track) {
	for _, f := range t.Fields() {
		fmt.Fprintf(w, "%s %s: %s\n", fieldIcons[f.Label], f.Label, f.Value)
	}
	if t.HasLyrics() {
		fmt.Fprint(w, "\n📝 Lyrics:\n\n")
		fmt.Fprintln(w, *t.Lyrics)
	}
}

func celebration(n int) string {
	switch {
	case n <= 0:
		return "Your music library is empty! Time to start exploring!"
	case n == 1:
		return "You've got your first track! The journey begins!"
	case n <= 10:
		return "Nice start! You're building a collection!"
	case n <= 50:
		return "Great collection! You're really getting into it!"
	case n <= 100:
		return "Impressive library! You've got serious variety!"
	case n <= 500:
		return "Wow! You're a true music enthusiast!"
	case n <= 1000:
		return "Absolutely incredible! Your library is massive!"
	default:
		return "LEGENDARY STATUS! Your music collection is epic!"
	}
}

func printCount(w io.Writer, n int) {
	fmt.Fprintf(w, "🎵 Total tracks in database: %d\n", n)
	fmt.Fprintf(w, "🎉 %s\n", celebration(n))
}

// printSearch lists results, highlighting the one whose ID is currentID.
func printSearch(w io.Writer, query string, results []store.Track, currentID string) {
	if len(results) == 0 {
		fmt.Fprintf(w, "No results found for '%s'\n", query)
		return
	}

	fmt.Fprintf(w, "Found %d result(s) for '%s':\n\n", len(results), query)
	for i, t := range results {
		if currentID != "" && t.ID == currentID {
			fmt.Fprintln(w, nowPlayingStyle.Render(fmt.Sprintf("%d. 🎵 %s by %s ⚡ NOW PLAYING ⚡", i+1, t.Name, t.Artist)))
		} else {
			fmt.Fprintf(w, "%d. %s by %s\n", i+1, t.Name, t.Artist)
		}
		printEntryDetails(w, t)
	}
}

func printRecent(w io.Writer, tracks []store.Track) {
	if len(tracks) == 0 {
		fmt.Fprintln(w, "No recently queried songs found in the database.")
		return
	}

	fmt.Fprint(w, "📚 Recently Queried Songs:\n\n")
	for i, t := range tracks {
		fmt.Fprintf(w, "%d. %s by %s\n", i+1, t.Name, t.Artist)
		printEntryDetails(w, t)
	}
}

func printEntryDetails(w io.Writer, t store.Track) {
	fmt.Fprintf(w, "   Album: %s\n", t.Album)
	if t.ReleaseDate != "" {
		fmt.Fprintf(w, "   Released: %s\n", t.ReleaseDate)
	}
	fmt.Fprintln(w)
}
