package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wippyai/console-monitor/console"
	"github.com/wippyai/console-monitor/monitor"
	"github.com/wippyai/console-monitor/resource"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Step through the monitor lifecycle in a terminal UI",
	Long:  WrapString("Starts a terminal UI over an in-memory console. Monitors can be constructed, written through, closed or forgotten one step at a time while the transcript and counters are shown."),
	RunE: func(cmd *cobra.Command, args []string) error {
		// The UI owns the screen; log output would tear it.
		setLoggers(nil)
		p := tea.NewProgram(newInteractiveModel(opts), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	transcriptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#666666")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const transcriptRows = 12

type action int

const (
	actionNew action = iota
	actionWrite
	actionClose
	actionForget
)

var actionNames = []string{
	actionNew:    "new      construct a monitor",
	actionWrite:  "write    write through the monitor",
	actionClose:  "close    release deterministically",
	actionForget: "forget   drop the monitor and force GC",
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Run    key.Binding
	Stream key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Run, k.Stream, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Run:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
	Stream: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "edit stream")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
}

type interactiveModel struct {
	err      error
	con      *console.Memory
	mon      *monitor.Monitor
	closed   <-chan resource.Handle
	stop     func()
	opts     *options
	status   string
	stream   textinput.Model
	help     help.Model
	selected int
	waiting  bool
}

type cleanupMsg struct {
	err    error
	handle resource.Handle
}

func newInteractiveModel(o *options) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "stream: "
	ti.Placeholder = "stdout"
	ti.SetValue(o.Stream.String())
	ti.Width = 10

	con := console.NewMemory()
	closed, stop := watchDrops(con)

	return &interactiveModel{
		con:    con,
		closed: closed,
		stop:   stop,
		opts:   o,
		stream: ti,
		help:   help.New(),
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.stream.Focused() {
			switch msg.String() {
			case "enter", "tab", "esc":
				m.stream.Blur()
				return m, nil
			case "ctrl+c":
				return m, m.quit()
			}
			var cmd tea.Cmd
			m.stream, cmd = m.stream.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return m, m.quit()
		case key.Matches(msg, keys.Up):
			if m.selected > 0 {
				m.selected--
			}
		case key.Matches(msg, keys.Down):
			if m.selected < len(actionNames)-1 {
				m.selected++
			}
		case key.Matches(msg, keys.Stream):
			return m, m.stream.Focus()
		case key.Matches(msg, keys.Run):
			if m.waiting {
				return m, nil
			}
			return m, m.run(action(m.selected))
		}

	case cleanupMsg:
		m.waiting = false
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.status = fmt.Sprintf("cleanup closed handle %d", msg.handle)
	}

	return m, nil
}

// quit closes the current monitor and stops watching for drops.
func (m *interactiveModel) quit() tea.Cmd {
	if m.mon != nil {
		_ = m.mon.Close()
	}
	m.stop()
	return tea.Quit
}

// run performs one action. Only forget returns a command, which waits for the
// cleanup off the UI goroutine.
func (m *interactiveModel) run(a action) tea.Cmd {
	m.err = nil
	m.status = ""

	if a != actionNew && m.mon == nil {
		m.err = fmt.Errorf("no monitor, construct one first")
		return nil
	}

	switch a {
	case actionNew:
		if m.mon != nil && !m.mon.Released() {
			m.err = fmt.Errorf("close or forget the current monitor first")
			return nil
		}
		s, err := console.ParseStream(m.stream.Value())
		if err != nil {
			m.err = err
			return nil
		}
		mon, err := monitor.New(m.con, monitor.DefaultConfig().
			WithStream(s).
			WithErrors(m.con.ErrorWriter()))
		if err != nil {
			m.err = err
			return nil
		}
		m.mon = mon
		m.status = fmt.Sprintf("monitor on %s, handle %d", s, mon.Handle())

	case actionWrite:
		m.err = m.mon.Write()

	case actionClose:
		m.err = m.mon.Close()
		m.status = "closed"

	case actionForget:
		if m.mon.Released() {
			m.mon = nil
			m.status = "dropped a released monitor, nothing to clean up"
			return nil
		}
		h := m.mon.Handle()
		m.drainClosed()
		m.mon = nil
		m.waiting = true
		m.status = "waiting for the runtime cleanup..."

		wait, closed := m.opts.Wait, m.closed
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), wait)
			defer cancel()
			return cleanupMsg{handle: h, err: awaitCleanup(ctx, h, closed)}
		}
	}
	return nil
}

// drainClosed discards drop events from earlier closes, since handles are
// reused.
func (m *interactiveModel) drainClosed() {
	for {
		select {
		case <-m.closed:
		default:
			return
		}
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Console Monitor"))
	b.WriteString(" ")
	b.WriteString(m.monitorState())
	b.WriteString("\n\n")

	b.WriteString(m.stream.View())
	b.WriteString("\n\n")

	for i, name := range actionNames {
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + name))
		} else {
			b.WriteString("  " + name)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	lines := m.con.Lines()
	if len(lines) > transcriptRows {
		lines = lines[len(lines)-transcriptRows:]
	}
	if len(lines) == 0 {
		lines = []string{"(empty)"}
	}
	b.WriteString(transcriptStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	case m.status != "":
		b.WriteString(activeStyle.Render(m.status))
	}
	b.WriteString("\n")

	st := monitor.ReadStats()
	b.WriteString(statsStyle.Render(fmt.Sprintf(
		"created %d • active %d • closed %d • cleaned up %d • failures %d • open handles %d",
		st.Created, st.Active(), st.ReleasedClose, st.ReleasedCleanup, st.ReleaseFailures, m.con.Open())))
	b.WriteString("\n\n")
	b.WriteString(m.help.View(keys))

	return b.String()
}

func (m *interactiveModel) monitorState() string {
	switch {
	case m.waiting:
		return "forgotten"
	case m.mon == nil:
		return "no monitor"
	case m.mon.Released():
		return "released"
	default:
		return activeStyle.Render(fmt.Sprintf("active (%s, handle %d)", m.mon.Stream(), m.mon.Handle()))
	}
}
