package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/treilik/bubbleboxer"

	"github.com/chauveaul/playbot/browser"
)

// Leaf addresses in the layout tree
const (
	searchLeaf = "search"
	mainLeaf   = "main"
	helpLeaf   = "help"
)

// Component models for bubbleboxer. Each renders its slice of the projection.
type searchModel struct {
	width, height int
	vm            browser.ViewModel
}

func (m searchModel) Init() tea.Cmd { return nil }
func (m searchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}
func (m searchModel) View() string {
	if m.height <= 0 || m.width <= 0 {
		return ""
	}

	line := truncate(m.vm.SearchLine, m.width)
	if m.vm.SearchActive {
		line = searchActiveStyle.Render(truncate(m.vm.SearchLine+"_", m.width))
	}
	return fitLines([]string{titleStyle.Render("Search"), line}, m.height)
}

type mainModel struct {
	width, height int
	vm            browser.ViewModel
	scrollOffset  int
}

func (m mainModel) Init() tea.Cmd { return nil }
func (m mainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.follow()
	}
	return m, nil
}

// visibleRows is the number of list rows that fit under the header.
func (m mainModel) visibleRows() int {
	visible := m.height - 2
	if len(m.vm.Rows) > visible {
		visible-- // scroll indicator
	}
	if visible < 0 {
		visible = 0
	}
	return visible
}

// follow scrolls the list so the selected row stays visible.
func (m *mainModel) follow() {
	if m.vm.Selected < 0 {
		m.scrollOffset = 0
		return
	}
	visible := m.visibleRows()
	if m.vm.Selected < m.scrollOffset {
		m.scrollOffset = m.vm.Selected
	}
	if visible > 0 && m.vm.Selected >= m.scrollOffset+visible {
		m.scrollOffset = m.vm.Selected - visible + 1
	}
	if m.scrollOffset > len(m.vm.Rows)-1 {
		m.scrollOffset = max(len(m.vm.Rows)-1, 0)
	}
}

func (m mainModel) View() string {
	if m.height <= 0 || m.width <= 0 {
		return ""
	}
	if m.vm.Mode == browser.Detail {
		return m.detailView()
	}
	return m.listView()
}

func (m mainModel) listView() string {
	lines := []string{titleStyle.Render(truncate(m.vm.Title, m.width)), ""}
	if len(m.vm.Rows) == 0 {
		lines = append(lines, truncate(m.vm.Empty, m.width))
		return fitLines(lines, m.height)
	}

	visible := m.visibleRows()
	end := min(m.scrollOffset+visible, len(m.vm.Rows))
	for i := m.scrollOffset; i < end; i++ {
		row := m.vm.Rows[i]
		if row.Selected {
			lines = append(lines, selectedItemStyle.Render(truncate("> "+row.Text, m.width)))
		} else {
			lines = append(lines, truncate("  "+row.Text, m.width))
		}
	}
	if len(m.vm.Rows) > visible {
		lines = append(lines, helpStyle.Render(fmt.Sprintf("[%d/%d]", m.vm.Selected+1, len(m.vm.Rows))))
	}
	return fitLines(lines, m.height)
}

func (m mainModel) detailView() string {
	var body []string
	for _, l := range m.vm.DetailLines {
		if l == "" {
			body = append(body, "")
			continue
		}
		body = append(body, strings.Split(runewidth.Wrap(l, m.width), "\n")...)
	}

	// The engine has no ceiling on the offset, so clamp to the content here.
	offset := m.vm.DetailOffset
	room := max(m.height-2, 1)
	if limit := max(len(body)-room, 0); offset > limit {
		offset = limit
	}

	lines := []string{titleStyle.Render(truncate(m.vm.DetailTitle, m.width)), ""}
	for _, l := range body[offset:] {
		if label, value, ok := strings.Cut(l, ": "); ok && detailLabels[label] {
			l = labelStyle.Render(label+":") + " " + value
		} else if l == "Lyrics:" {
			l = labelStyle.Render(l)
		}
		lines = append(lines, l)
	}
	return fitLines(lines, m.height)
}

var detailLabels = map[string]bool{
	"Track": true, "Artist": true, "Album": true, "Release Date": true, "Duration": true,
	"Popularity": true, "Genres": true, "Producers": true, "Writers": true,
}

type helpModel struct {
	width, height int
	vm            browser.ViewModel
}

func (m helpModel) Init() tea.Cmd { return nil }
func (m helpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}
func (m helpModel) View() string {
	if m.height <= 0 || m.width <= 0 {
		return ""
	}
	status := ""
	if m.vm.Status != "" {
		status = statusStyle.Render(truncate(m.vm.Status, m.width))
	}
	return fitLines([]string{status, helpStyle.Render(truncate(m.vm.Help, m.width))}, m.height)
}

// Model is the bubbletea program driving a browser.Engine.
type Model struct {
	ctx    context.Context
	engine *browser.Engine
	boxer  bubbleboxer.Boxer
}

// NewModel lays out the panes and renders the engine's current state.
func NewModel(ctx context.Context, engine *browser.Engine) Model {
	boxer := bubbleboxer.Boxer{
		ModelMap: make(map[string]tea.Model),
	}
	vm := browser.Project(engine.State())

	searchNode, _ := boxer.CreateLeaf(searchLeaf, searchModel{vm: vm})
	mainNode, _ := boxer.CreateLeaf(mainLeaf, mainModel{vm: vm})
	helpNode, _ := boxer.CreateLeaf(helpLeaf, helpModel{vm: vm})

	boxer.LayoutTree = bubbleboxer.Node{
		Children:        []bubbleboxer.Node{searchNode, mainNode, helpNode},
		VerticalStacked: true,
		SizeFunc: func(node bubbleboxer.Node, widthOrHeight int) []int {
			return paneHeights(widthOrHeight)
		},
	}

	return Model{ctx: ctx, engine: engine, boxer: boxer}
}

// paneHeights splits the screen: search box 3 rows, help/status 2 rows,
// the rest for the list or detail view.
func paneHeights(total int) []int {
	search, help := 3, 2
	main := total - search - help
	if main < 1 {
		main = 1
	}
	return []int{search, main, help}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		updated, cmd := m.boxer.Update(msg)
		m.boxer = updated.(bubbleboxer.Boxer)
		return m, cmd
	case tea.KeyMsg:
		for _, ev := range keys.events(m.engine.State().Mode, msg) {
			if m.engine.Handle(m.ctx, ev) {
				return m, tea.Quit
			}
		}
		m.sync()
	}
	return m, nil
}

// sync pushes the projection of the engine state into every pane.
func (m *Model) sync() {
	vm := browser.Project(m.engine.State())

	m.boxer.EditLeaf(searchLeaf, func(model tea.Model) (tea.Model, error) {
		s := model.(searchModel)
		s.vm = vm
		return s, nil
	})
	m.boxer.EditLeaf(mainLeaf, func(model tea.Model) (tea.Model, error) {
		mm := model.(mainModel)
		mm.vm = vm
		mm.follow()
		return mm, nil
	})
	m.boxer.EditLeaf(helpLeaf, func(model tea.Model) (tea.Model, error) {
		h := model.(helpModel)
		h.vm = vm
		return h, nil
	})
}

func (m Model) View() string {
	return m.boxer.View()
}

// Run starts the browser and blocks until the user quits.
func Run(ctx context.Context, engine *browser.Engine) error {
	p := tea.NewProgram(NewModel(ctx, engine), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

// fitLines joins at most height lines.
func fitLines(lines []string, height int) string {
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}
