package preview

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobpress/internal/model"
)

type generateDoneMsg struct {
	doc *model.Document
	err error
}

type loaderModel struct {
	topic   string
	ctx     context.Context
	cancel  context.CancelFunc
	genFn   func(ctx context.Context) (*model.Document, error)
	spinner spinner.Model
	result  *model.Document
	err     error
	done    bool
}

func newLoaderModel(ctx context.Context, topic string, genFn func(ctx context.Context) (*model.Document, error)) loaderModel {
	ctx, cancel := context.WithCancel(ctx)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	return loaderModel{topic: topic, ctx: ctx, cancel: cancel, genFn: genFn, spinner: sp}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doGenerate(), m.spinner.Tick)
}

func (m loaderModel) doGenerate() tea.Cmd {
	genFn, ctx := m.genFn, m.ctx
	return func() tea.Msg {
		doc, err := genFn(ctx)
		return generateDoneMsg{doc: doc, err: err}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case generateDoneMsg:
		m.result = msg.doc
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.done = true
			m.err = fmt.Errorf("cancelled")
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s Generating %q...\n", m.spinner.View(), m.topic)
}

// RunLoader shows a spinner while genFn runs. It renders inline (no alt screen).
// ctrl+c cancels the context passed to genFn.
func RunLoader(ctx context.Context, topic string, genFn func(ctx context.Context) (*model.Document, error)) (*model.Document, error) {
	m := newLoaderModel(ctx, topic, genFn)
	defer m.cancel()

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
