package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chauveaul/playbot/browser"
)

type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Prev      key.Binding
	Next      key.Binding
	Open      key.Binding
	Back      key.Binding
	Search    key.Binding
	Delete    key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("k", "up")),
	Down:      key.NewBinding(key.WithKeys("j", "down")),
	Prev:      key.NewBinding(key.WithKeys("h", "left")),
	Next:      key.NewBinding(key.WithKeys("l", "right")),
	Open:      key.NewBinding(key.WithKeys("enter")),
	Back:      key.NewBinding(key.WithKeys("esc")),
	Search:    key.NewBinding(key.WithKeys("/")),
	Delete:    key.NewBinding(key.WithKeys("backspace")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
}

// events maps a key press to browser events. While typing a search every
// printable key is text, so only ctrl+c quits.
func (k keyMap) events(mode browser.Mode, msg tea.KeyMsg) []browser.Event {
	if mode == browser.Search {
		switch {
		case key.Matches(msg, k.ForceQuit):
			return []browser.Event{browser.Key(browser.Quit)}
		case key.Matches(msg, k.Back):
			return []browser.Event{browser.Key(browser.Escape)}
		case key.Matches(msg, k.Open):
			return []browser.Event{browser.Key(browser.Enter)}
		case key.Matches(msg, k.Delete):
			return []browser.Event{browser.Key(browser.Backspace)}
		case msg.Type == tea.KeySpace:
			return []browser.Event{browser.Char(' ')}
		case msg.Type == tea.KeyRunes:
			evs := make([]browser.Event, 0, len(msg.Runes))
			for _, r := range msg.Runes {
				evs = append(evs, browser.Char(r))
			}
			return evs
		}
		return nil
	}

	switch {
	case key.Matches(msg, k.Quit):
		return []browser.Event{browser.Key(browser.Quit)}
	case key.Matches(msg, k.Up):
		return []browser.Event{browser.Key(browser.Up)}
	case key.Matches(msg, k.Down):
		return []browser.Event{browser.Key(browser.Down)}
	case key.Matches(msg, k.Prev):
		return []browser.Event{browser.Key(browser.PrevTrack)}
	case key.Matches(msg, k.Next):
		return []browser.Event{browser.Key(browser.NextTrack)}
	case key.Matches(msg, k.Open):
		return []browser.Event{browser.Key(browser.Enter)}
	case key.Matches(msg, k.Back):
		return []browser.Event{browser.Key(browser.Escape)}
	case key.Matches(msg, k.Search):
		return []browser.Event{browser.Key(browser.StartSearch)}
	}
	return nil
}
