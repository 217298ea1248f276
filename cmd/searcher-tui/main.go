package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/chat"
	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/config"
	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/instructions"
	llmclient "github.com/rsherod/DCI691Build2-InterventionSearcher/internal/llm/client"
	llm "github.com/rsherod/DCI691Build2-InterventionSearcher/internal/llm/middleware"
	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/search"
	"github.com/rsherod/DCI691Build2-InterventionSearcher/internal/store"
)

const turnTimeout = 90 * time.Second

type uiTheme struct {
	header    lipgloss.Style
	userTag   lipgloss.Style
	modelTag  lipgloss.Style
	status    lipgloss.Style
	errStatus lipgloss.Style
	help      lipgloss.Style
}

func newTheme() uiTheme {
	blue := lipgloss.Color("#5fafff")
	mint := lipgloss.Color("#5fffaf")
	pink := lipgloss.Color("#ff5f87")
	muted := lipgloss.Color("#808080")
	return uiTheme{
		header:    lipgloss.NewStyle().Foreground(blue).Bold(true),
		userTag:   lipgloss.NewStyle().Foreground(mint).Bold(true),
		modelTag:  lipgloss.NewStyle().Foreground(blue).Bold(true),
		status:    lipgloss.NewStyle().Foreground(blue),
		errStatus: lipgloss.NewStyle().Foreground(pink).Bold(true),
		help:      lipgloss.NewStyle().Foreground(muted),
	}
}

type turnDoneMsg struct {
	err error
}

type model struct {
	session *chat.Session

	// turns is the rendered snapshot of the transcript. The processor
	// mutates the transcript from the runTurn goroutine, so Update and View
	// only ever read this copy, refreshed once the turn settles.
	turns   []chat.Turn
	pending string

	width  int
	height int
	ready  bool

	inflight   bool
	statusLine string
	statusErr  bool

	input    textinput.Model
	timeline viewport.Model
	spinner  spinner.Model
	theme    uiTheme
}

func initialModel(session *chat.Session) model {
	ti := textinput.New()
	ti.Placeholder = "Ask about interventions, or /preset, /model, /clear, /quit"
	ti.Focus()
	ti.CharLimit = 4000

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		session: session,
		input:   ti,
		spinner: sp,
		theme:   newTheme(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m model) runTurn(run func(context.Context) (chat.Turn, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), turnTimeout)
		defer cancel()
		_, err := run(ctx)
		return turnDoneMsg{err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - 6
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.timeline = viewport.New(msg.Width-2, vpHeight)
			m.ready = true
		} else {
			m.timeline.Width = msg.Width - 2
			m.timeline.Height = vpHeight
		}
		m.timeline.SetContent(m.renderTranscript())
		m.timeline.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.inflight {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			if cmd, handled := m.handleCommand(text); handled {
				if cmd != nil {
					cmds = append(cmds, cmd)
				}
				m.timeline.SetContent(m.renderTranscript())
				m.timeline.GotoBottom()
				return m, tea.Batch(cmds...)
			}
			m.inflight = true
			m.pending = text
			m.statusLine = "thinking"
			m.statusErr = false
			cmds = append(cmds, m.runTurn(func(ctx context.Context) (chat.Turn, error) {
				return m.session.Processor.ProcessText(ctx, text)
			}), m.spinner.Tick)
			m.timeline.SetContent(m.renderTranscript())
			m.timeline.GotoBottom()
			return m, tea.Batch(cmds...)
		}

	case turnDoneMsg:
		m.inflight = false
		m.pending = ""
		m.turns = m.session.Transcript.Turns()
		if msg.err != nil {
			m.statusLine = msg.err.Error()
			m.statusErr = true
		} else {
			m.statusLine = ""
			m.statusErr = false
		}
		m.timeline.SetContent(m.renderTranscript())
		m.timeline.GotoBottom()
		return m, nil

	case spinner.TickMsg:
		if m.inflight {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.timeline, cmd = m.timeline.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// handleCommand intercepts slash commands. Reports whether the input was a
// command rather than a chat message.
func (m *model) handleCommand(text string) (tea.Cmd, bool) {
	if !strings.HasPrefix(text, "/") {
		return nil, false
	}
	fields := strings.Fields(text)
	switch strings.ToLower(fields[0]) {
	case "/quit", "/exit":
		return tea.Quit, true
	case "/clear":
		m.session.Reset()
		m.turns = nil
		m.statusLine = "chat cleared"
		m.statusErr = false
		return nil, true
	case "/model":
		if len(fields) < 2 {
			m.statusLine = "models: " + strings.Join(llmclient.Models(), ", ")
			m.statusErr = false
			return nil, true
		}
		name := fields[1]
		if !llmclient.KnownModel(name) {
			m.statusLine = "unknown model: " + name
			m.statusErr = true
			return nil, true
		}
		m.session.SetModel(name)
		m.turns = m.session.Transcript.Turns()
		m.statusLine = "model set to " + name
		m.statusErr = false
		return nil, true
	case "/preset":
		if len(fields) < 2 {
			names := make([]string, 0, len(chat.Presets()))
			for _, p := range chat.Presets() {
				names = append(names, p.Name)
			}
			m.statusLine = "presets: " + strings.Join(names, " | ")
			m.statusErr = false
			return nil, true
		}
		name := strings.TrimSpace(strings.TrimPrefix(text, fields[0]))
		preset, ok := chat.PresetByName(name)
		if !ok {
			m.statusLine = "unknown preset: " + name
			m.statusErr = true
			return nil, true
		}
		m.inflight = true
		m.pending = preset.Prompt
		m.statusLine = "thinking"
		m.statusErr = false
		return tea.Batch(m.runTurn(func(ctx context.Context) (chat.Turn, error) {
			return m.session.Processor.ProcessPreset(ctx, preset)
		}), m.spinner.Tick), true
	default:
		m.statusLine = "unknown command: " + fields[0]
		m.statusErr = true
		return nil, true
	}
}

func (m model) renderTranscript() string {
	if len(m.turns) == 0 && m.pending == "" {
		return m.theme.help.Render("No messages yet. Type below to start.")
	}
	var b strings.Builder
	for _, turn := range m.turns {
		tag := m.theme.modelTag.Render("assistant")
		if turn.Role == chat.RoleUser {
			tag = m.theme.userTag.Render("you")
		}
		b.WriteString(tag)
		b.WriteString(": ")
		b.WriteString(turn.Text)
		b.WriteString("\n\n")
	}
	if m.pending != "" {
		b.WriteString(m.theme.userTag.Render("you"))
		b.WriteString(": ")
		b.WriteString(m.pending)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m model) View() string {
	if !m.ready {
		return "starting..."
	}
	cfg := m.session.Manager.Config()
	header := m.theme.header.Render(fmt.Sprintf("Intervention Grid Searcher — %s", cfg.Model))

	status := ""
	switch {
	case m.inflight:
		status = m.theme.status.Render(m.spinner.View() + " thinking")
	case m.statusErr:
		status = m.theme.errStatus.Render(m.statusLine)
	case m.statusLine != "":
		status = m.theme.status.Render(m.statusLine)
	}

	help := m.theme.help.Render("enter: send · /preset /model /clear · esc: quit")
	return strings.Join([]string{
		header,
		m.timeline.View(),
		status,
		m.input.View(),
		help,
	}, "\n")
}

func main() {
	logger := log.New(os.Stderr, "[searcher-tui] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	gemini, err := llmclient.NewGeminiClient(ctx, cfg.GoogleAPIKey)
	if err != nil {
		logger.Fatalf("gemini client: %v", err)
	}

	var searcher chat.Searcher
	if cfg.PerplexityAPIKey != "" {
		px, err := search.NewPerplexityClient(cfg.PerplexityAPIKey)
		if err != nil {
			logger.Fatalf("perplexity client: %v", err)
		}
		searcher = px
	}

	instr, _ := instructions.Load(cfg.InstructionsPath)

	snapshots := store.NewFromEnv(cfg.SnapshotPath)
	defer snapshots.Close()

	session := chat.NewSession(chat.SessionOptions{
		Transport:    llm.Chain(gemini, llm.WithHooks()),
		Searcher:     searcher,
		Saver:        snapshots,
		Instructions: instr,
		Config:       chat.ModelConfig{Model: cfg.Model, Temperature: 0.5},
		AttachMode:   cfg.AttachMode,
	})

	p := tea.NewProgram(initialModel(session), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Fatalf("tui: %v", err)
	}
}
