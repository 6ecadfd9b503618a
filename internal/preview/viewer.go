// Package preview is the terminal UI for generated articles: a spinner while
// the pipeline runs and a split-pane viewer with the field report on the left
// and the rendered article on the right.
package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobpress/internal/model"
)

// Lines per field item in the list view (name + subtitle + blank separator).
const fieldItemHeight = 3

type viewState int

const (
	viewSplit viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	foundStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")) // green

	missingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")) // amber

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")). // bright white
			Background(lipgloss.Color("24"))  // dark blue bg

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(12)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// markdownRenderer turns Markdown into terminal output at the given width.
type markdownRenderer func(md string, width int) string

func glamourRenderer(style string) markdownRenderer {
	return func(md string, width int) string {
		opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
		if style == "" {
			opts = append(opts, glamour.WithAutoStyle())
		} else {
			opts = append(opts, glamour.WithStandardStyle(style))
		}
		r, err := glamour.NewTermRenderer(opts...)
		if err != nil {
			return md
		}
		out, err := r.Render(md)
		if err != nil {
			return md
		}
		return out
	}
}

type viewerModel struct {
	doc           *model.Document
	fields        []model.FieldRecord
	placeholders  map[string]bool
	leftViewport  viewport.Model
	rightViewport viewport.Model
	activePane    int // 0=fields, 1=article
	cursor        int
	width         int
	height        int
	ready         bool
	raw           bool
	render        markdownRenderer

	view           viewState
	detailViewport viewport.Model

	wantQuit bool
}

func newViewerModel(doc *model.Document, render markdownRenderer) viewerModel {
	m := viewerModel{
		doc:          doc,
		fields:       doc.Fields,
		placeholders: make(map[string]bool, len(doc.Missing)),
		render:       render,
	}
	for _, name := range doc.Missing {
		m.placeholders[name] = true
	}
	// Archived articles carry only the placeholder list.
	if len(m.fields) == 0 {
		for _, name := range doc.Missing {
			m.fields = append(m.fields, model.FieldRecord{Name: name, Missing: true})
		}
	}
	return m
}

func (m viewerModel) Init() tea.Cmd {
	return nil
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateSplitView(msg)
	}

	return m, nil
}

func (m viewerModel) updateSplitView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc":
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcFields()
		return m, nil
	case "m":
		m.raw = !m.raw
		m.recalcArticle()
		return m, nil
	case "up", "k":
		if m.activePane == 0 {
			m.cursor = clamp(m.cursor-1, 0, max(len(m.fields)-1, 0))
			m.recalcFields()
			m.ensureCursorVisible()
			return m, nil
		}
	case "down", "j":
		if m.activePane == 0 {
			m.cursor = clamp(m.cursor+1, 0, max(len(m.fields)-1, 0))
			m.recalcFields()
			m.ensureCursorVisible()
			return m, nil
		}
	case "enter":
		if m.activePane == 0 && len(m.fields) > 0 {
			m.view = viewDetail
			m.detailViewport = viewport.New(max(m.width-4, 20), max(m.height-4, 5))
			m.detailViewport.SetContent(m.renderDetail())
			return m, nil
		}
	}

	// Forward other keys (pgup/pgdn/home/end, arrows in the article) to the active viewport.
	var cmd tea.Cmd
	if m.activePane == 0 {
		m.leftViewport, cmd = m.leftViewport.Update(msg)
	} else {
		m.rightViewport, cmd = m.rightViewport.Update(msg)
	}
	return m, cmd
}

func (m viewerModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewSplit
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m *viewerModel) ensureCursorVisible() {
	vp := &m.leftViewport
	cursorTop := m.cursor * fieldItemHeight
	cursorBottom := cursorTop + fieldItemHeight - 1

	if cursorTop < vp.YOffset {
		vp.SetYOffset(cursorTop)
	} else if cursorBottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(cursorBottom - vp.Height + 1)
	}
}

func (m *viewerModel) recalcLayout() {
	// Field list takes a third, the article the rest; 2 border chars per pane + 1 gap.
	leftWidth := max((m.width-5)/3, 24)
	rightWidth := max(m.width-5-leftWidth, 30)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.leftViewport = viewport.New(leftWidth, paneHeight)
		m.rightViewport = viewport.New(rightWidth, paneHeight)
		m.ready = true
	} else {
		m.leftViewport.Width = leftWidth
		m.leftViewport.Height = paneHeight
		m.rightViewport.Width = rightWidth
		m.rightViewport.Height = paneHeight
	}

	m.recalcFields()
	m.recalcArticle()
}

func (m *viewerModel) recalcFields() {
	m.leftViewport.SetContent(renderFields(m.fields, m.placeholders, m.cursor, m.activePane == 0))
}

func (m *viewerModel) recalcArticle() {
	if m.raw || m.render == nil {
		m.rightViewport.SetContent(m.doc.Markdown)
		return
	}
	m.rightViewport.SetContent(m.render(m.doc.Markdown, m.rightViewport.Width-2))
}

func (m viewerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewSplit()
}

func (m viewerModel) viewSplit() string {
	missing := 0
	for _, f := range m.fields {
		if f.Missing {
			missing++
		}
	}

	leftHeader := fmt.Sprintf(" Fields (%d, %d missing)", len(m.fields), missing)
	rightHeader := fmt.Sprintf(" %s [%s]", m.doc.Topic, m.doc.Layout)
	if m.raw {
		rightHeader += " raw"
	}

	leftHeaderStyle, rightHeaderStyle := activeHeaderStyle, inactiveHeaderStyle
	leftBorder, rightBorder := activeBorderStyle, inactiveBorderStyle
	if m.activePane == 1 {
		leftHeaderStyle, rightHeaderStyle = inactiveHeaderStyle, activeHeaderStyle
		leftBorder, rightBorder = inactiveBorderStyle, activeBorderStyle
	}

	leftPane := leftBorder.Width(m.leftViewport.Width).Render(m.leftViewport.View())
	rightPane := rightBorder.Width(m.rightViewport.Width).Render(m.rightViewport.View())

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.leftViewport.Width+2).Render(leftHeaderStyle.Render(leftHeader)),
		" ",
		lipgloss.NewStyle().Width(m.rightViewport.Width+2).Render(rightHeaderStyle.Render(rightHeader)),
	)
	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, " ", rightPane)

	statusText := fmt.Sprintf(" %d placeholders | %d failed sources    Tab switch  ↑/↓ move  Enter field  m raw  q quit",
		len(m.doc.Missing), len(m.doc.Failures))
	if m.doc.Truncated {
		statusText = " input truncated |" + statusText
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func (m viewerModel) viewDetail() string {
	title := detailTitleStyle.Render("Field Details")
	border := activeBorderStyle.Width(m.width - 2)
	content := border.Render(m.detailViewport.View())
	statusBar := statusBarStyle.Width(m.width).Render(" esc/backspace back  ↑/↓ scroll  q quit")
	return title + "\n" + content + "\n" + statusBar
}

func (m viewerModel) renderDetail() string {
	if len(m.fields) == 0 {
		return ""
	}
	f := m.fields[clamp(m.cursor, 0, len(m.fields)-1)]
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Field", f.Name)
	addField("Shape", string(f.Shape))
	if f.Missing {
		reason := f.Reason
		if reason == "" {
			reason = "not recorded"
		}
		addField("Status", missingStyle.Render("missing ("+reason+")"))
	} else {
		addField("Status", foundStyle.Render("found"))
	}
	if m.placeholders[f.Name] {
		addField("Rendered", "as placeholder")
	}
	addField("Value", f.Value)
	addField("ISO", f.ISO)
	if f.Rephrased {
		addField("Rephrased", "yes")
	}

	divider := func(label string) string {
		return dividerStyle.Render(label + strings.Repeat("─", max(m.width-8-len(label), 3)))
	}
	if len(f.Items) > 0 {
		b.WriteString("\n" + divider("── Items ") + "\n")
		for _, it := range f.Items {
			b.WriteString("  • " + it + "\n")
		}
	}
	if len(f.Rows) > 0 {
		b.WriteString("\n" + divider("── Rows ") + "\n")
		for _, row := range f.Rows {
			b.WriteString("  " + strings.Join(row, " │ ") + "\n")
		}
	}
	if f.Span != "" {
		b.WriteString("\n" + divider("── Source ") + "\n")
		b.WriteString(subtitleStyle.Render(f.Span) + "\n")
	}
	return b.String()
}

// summary is the one-line subtitle under a field name.
func summary(f model.FieldRecord) string {
	switch {
	case f.Missing && f.Reason != "":
		return f.Reason
	case f.Missing:
		return "placeholder"
	case len(f.Rows) > 0:
		return fmt.Sprintf("%d rows", len(f.Rows))
	case len(f.Items) > 0:
		return fmt.Sprintf("%d items", len(f.Items))
	}
	v := strings.Join(strings.Fields(f.Value), " ")
	if r := []rune(v); len(r) > 40 {
		v = string(r[:40]) + "…"
	}
	return v
}

func renderFields(fields []model.FieldRecord, placeholders map[string]bool, cursor int, isActive bool) string {
	if len(fields) == 0 {
		return "  (no field report)"
	}

	var b strings.Builder
	for i, f := range fields {
		mark, nameSt := "✓ ", foundStyle
		if f.Missing {
			mark, nameSt = "✗ ", missingStyle
		}
		subSt := subtitleStyle
		prefix := "  "
		if isActive && i == cursor {
			nameSt = nameSt.Inherit(selectedStyle)
			subSt = selectedStyle
			prefix = "> "
		}

		name := f.Name
		if placeholders[f.Name] {
			name += " *"
		}
		b.WriteString(prefix)
		b.WriteString(nameSt.Render(mark + name))
		b.WriteByte('\n')
		b.WriteString(prefix)
		b.WriteString(subSt.Render("  " + summary(f)))
		b.WriteByte('\n')

		if i < len(fields)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RunViewer launches the interactive split-pane viewer for doc.
// Returns wantQuit=true if the user pressed q/ctrl+c, false if they pressed
// esc to go back to the caller.
func RunViewer(doc *model.Document) (bool, error) {
	m := newViewerModel(doc, glamourRenderer(""))

	p := tea.NewProgram(m, tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	final := result.(viewerModel)
	return final.wantQuit, nil
}

// ArticleDocument adapts an archived article for the viewer.
func ArticleDocument(a *model.Article) *model.Document {
	return &model.Document{
		RunID:    a.ID,
		Topic:    a.Topic,
		Layout:   a.Layout,
		Markdown: a.Markdown,
		Missing:  a.Missing,
	}
}
