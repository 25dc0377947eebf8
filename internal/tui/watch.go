package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mjhall/arcticspa/internal/client"
	"github.com/mjhall/arcticspa/internal/protocol"
)

// Messages for async operations
type connectedMsg struct{}

type frameMsg struct {
	frame *protocol.Frame
}

type streamClosedMsg struct {
	err error
}

// watchModel is the bubbletea model for the live frame dashboard: one row
// per packet kind, updated in place as frames arrive.
type watchModel struct {
	host   string
	client *client.Client
	frames chan *protocol.Frame

	spinner   spinner.Model
	connected bool
	latest    map[protocol.TypeKey]*protocol.Frame
	counts    map[protocol.TypeKey]int
	err       error
	quitting  bool
}

// newWatchModel creates the model for a controller host.
func newWatchModel(host string) watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return watchModel{
		host:    host,
		client:  client.New(host),
		frames:  make(chan *protocol.Frame, 16),
		spinner: s,
		latest:  make(map[protocol.TypeKey]*protocol.Frame),
		counts:  make(map[protocol.TypeKey]int),
	}
}

// connect dials the controller and starts the reader goroutine feeding the
// frame channel. The channel closes when the stream dies.
func (m watchModel) connect() tea.Cmd {
	return func() tea.Msg {
		if err := m.client.Connect(context.Background()); err != nil {
			return streamClosedMsg{err: err}
		}

		go func() {
			defer close(m.frames)
			for {
				frames, err := m.client.ReadFrames()
				for _, frame := range frames {
					m.frames <- frame
				}
				if err != nil {
					// Framing errors drop the cycle; anything else
					// (including our own Close on quit) ends the stream.
					if _, ok := err.(*protocol.DecodeError); ok {
						continue
					}
					return
				}
			}
		}()

		return connectedMsg{}
	}
}

// waitForFrame returns a command that delivers the next streamed frame.
func (m watchModel) waitForFrame() tea.Cmd {
	return func() tea.Msg {
		frame, ok := <-m.frames
		if !ok {
			return streamClosedMsg{}
		}
		return frameMsg{frame: frame}
	}
}

// Init implements tea.Model.
func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.connect())
}

// Update implements tea.Model.
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			m.client.Close()
			return m, tea.Quit
		}
		return m, nil

	case connectedMsg:
		m.connected = true
		return m, m.waitForFrame()

	case frameMsg:
		m.latest[msg.frame.Kind] = msg.frame
		m.counts[msg.frame.Kind]++
		return m, m.waitForFrame()

	case streamClosedMsg:
		if !m.quitting {
			m.err = msg.err
		}
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("Arctic Spa %s", m.host)))
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("stream failed: %v", m.err)))
		b.WriteString("\n")

	case !m.connected:
		b.WriteString(fmt.Sprintf("%s Connecting...\n", m.spinner.View()))

	case len(m.latest) == 0:
		b.WriteString(fmt.Sprintf("%s Waiting for frames...\n", m.spinner.View()))

	default:
		kinds := make([]protocol.TypeKey, 0, len(m.latest))
		for kind := range m.latest {
			kinds = append(kinds, kind)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

		for _, kind := range kinds {
			frame := m.latest[kind]
			b.WriteString(kindStyle.Render(kind.String()))
			b.WriteString(counterStyle.Render(fmt.Sprintf("#%-6d x%-4d ", frame.Counter, m.counts[kind])))
			b.WriteString(payloadStyle.Render(frame.Decoded.String()))
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render("q: quit"))
	b.WriteString("\n")
	return b.String()
}

// Watch runs the live dashboard against a controller until the user quits or
// the stream dies.
func Watch(host string) error {
	model := newWatchModel(host)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("watch UI failed: %w", err)
	}

	if m, ok := final.(watchModel); ok && m.err != nil {
		return m.err
	}
	return nil
}
