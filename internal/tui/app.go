package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gitchat/internal/app"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

type phase int

const (
	phasePicker phase = iota
	phaseLoading
	phaseChat
)

// Model is the bubbletea front end over the session core. All conversation
// state lives in the injected Application; the model only holds view state.
type Model struct {
	app   *app.Application
	phase phase

	picker     textinput.Model
	input      textarea.Model
	transcript viewport.Model
	spin       spinner.Model
	keys       keyMap
	help       help.Model

	width     int
	height    int
	ready     bool
	pickerErr string
	notice    string
}

type repoReadyMsg struct {
	err error
}

type replyMsg struct {
	err error
}

func New(application *app.Application, initialRepo string) *Model {
	ti := textinput.New()
	ti.Placeholder = "owner/repo or a GitHub URL"
	ti.CharLimit = 200
	ti.Width = 48
	ti.Focus()
	if initialRepo != "" {
		ti.SetValue(initialRepo)
	}

	ta := textarea.New()
	ta.Placeholder = "Ask something about this repository..."
	ta.CharLimit = 4000
	ta.SetWidth(80)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle))

	return &Model{
		app:    application,
		phase:  phasePicker,
		picker: ti,
		input:  ta,
		spin:   sp,
		keys:   newKeyMap(),
		help:   help.New(),
		width:  80,
		height: 24,
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.app.SaveTranscript()
			return m, tea.Quit
		}
		switch m.phase {
		case phasePicker:
			return m.updatePicker(msg)
		case phaseChat:
			return m.updateChat(msg)
		}
		return m, nil

	case repoReadyMsg:
		if msg.err != nil {
			m.phase = phasePicker
			m.pickerErr = msg.err.Error()
			m.picker.Focus()
			return m, textinput.Blink
		}
		m.phase = phaseChat
		m.pickerErr = ""
		m.notice = ""
		m.layout()
		m.refreshTranscript()
		m.input.Focus()
		return m, textarea.Blink

	case replyMsg:
		if msg.err != nil {
			m.notice = msg.err.Error()
		} else {
			m.notice = ""
		}
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		if m.app.Session.Loading() || m.app.Session.Typing() {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	return m.updateComponents(msg)
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		input := strings.TrimSpace(m.picker.Value())
		if input == "" {
			m.pickerErr = "Enter a repository to analyze."
			return m, nil
		}
		if _, err := app.ParseRepoInput(input); err != nil {
			// Validation error stays local to the field; the session is untouched.
			m.pickerErr = err.Error()
			return m, nil
		}
		m.pickerErr = ""
		m.phase = phaseLoading
		return m, tea.Batch(m.initializeCmd(input), m.spin.Tick)
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Clear):
		m.app.Session.ClearChat()
		m.notice = ""
		m.refreshTranscript()
		return m, nil

	case key.Matches(msg, m.keys.Back):
		m.app.SaveTranscript()
		m.app.Session.Reset()
		m.phase = phasePicker
		m.picker.Reset()
		m.picker.Focus()
		m.notice = ""
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Send):
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			return m, nil
		}
		if m.app.Session.Typing() {
			// One exchange at a time; drop the keypress, keep the draft.
			return m, nil
		}
		m.input.Reset()
		m.notice = ""
		return m, tea.Batch(m.sendCmd(query), m.spin.Tick)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	switch m.phase {
	case phasePicker:
		m.picker, cmd = m.picker.Update(msg)
		cmds = append(cmds, cmd)
	case phaseChat:
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		m.transcript, cmd = m.transcript.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// initializeCmd runs repository initialization off the event loop. The Chat
// orchestrator owns all session mutations; the resulting message only tells
// the view which phase to show.
func (m *Model) initializeCmd(input string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.requestTimeout())
		defer cancel()
		_, err := m.app.Chat.Initialize(ctx, input)
		return repoReadyMsg{err: err}
	}
}

func (m *Model) sendCmd(query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.requestTimeout())
		defer cancel()
		_, err := m.app.Chat.Send(ctx, query)
		return replyMsg{err: err}
	}
}

func (m *Model) requestTimeout() time.Duration {
	return time.Duration(m.app.Config.RequestTimeoutSeconds) * time.Second
}

func (m *Model) layout() {
	sidebar := m.sidebarWidth()
	chatWidth := m.width - sidebar - 4
	if chatWidth < 20 {
		chatWidth = 20
	}
	inputHeight := 5
	transcriptHeight := m.height - inputHeight - 5
	if transcriptHeight < 5 {
		transcriptHeight = 5
	}
	if !m.ready {
		m.transcript = viewport.New(chatWidth, transcriptHeight)
		m.ready = true
	} else {
		m.transcript.Width = chatWidth
		m.transcript.Height = transcriptHeight
	}
	m.input.SetWidth(chatWidth)
}

func (m *Model) sidebarWidth() int {
	if m.width < 80 {
		return 0
	}
	return 30
}

func (m *Model) refreshTranscript() {
	m.transcript.SetContent(renderTranscript(m.app.Session.Transcript(), m.transcript.Width))
	m.transcript.GotoBottom()
}

func (m *Model) View() string {
	switch m.phase {
	case phasePicker:
		return m.viewPicker()
	case phaseLoading:
		return m.viewLoading()
	default:
		return m.viewChat()
	}
}

func (m *Model) viewPicker() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("gitchat — talk to a GitHub repository"))
	b.WriteString("\n\n")
	b.WriteString(inputStyle.Render(m.picker.View()))
	b.WriteString("\n")
	if m.pickerErr != "" {
		b.WriteString(errorStyle.Render(m.pickerErr))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("enter to analyze • ctrl+c to quit"))
	return b.String()
}

func (m *Model) viewLoading() string {
	return fmt.Sprintf("\n %s Analyzing repository... this can take a while on first visit.\n", m.spin.View())
}

func (m *Model) viewChat() string {
	repo, _ := m.app.Session.Repository()

	var main strings.Builder
	main.WriteString(titleStyle.Render(repo.Owner + "/" + repo.Name))
	main.WriteString("\n")
	main.WriteString(m.transcript.View())
	main.WriteString("\n")
	if m.app.Session.Typing() {
		main.WriteString(spinnerStyle.Render(m.spin.View() + " thinking..."))
		main.WriteString("\n")
	}
	if m.notice != "" {
		main.WriteString(errorStyle.Render(m.notice))
		main.WriteString("\n")
	}
	main.WriteString(inputStyle.Render(m.input.View()))
	main.WriteString("\n")
	main.WriteString(statusStyle.Render(statusLine(repo)))
	main.WriteString("\n")
	main.WriteString(m.help.View(m.keys))

	if w := m.sidebarWidth(); w > 0 {
		side := sidebarStyle.Width(w - 2).Render(renderSidebar(repo))
		return lipgloss.JoinHorizontal(lipgloss.Top, side, " ", main.String())
	}
	return main.String()
}

// renderTranscript renders the message list for the viewport. The transcript
// is the rendering source; the compact history never reaches the view.
func renderTranscript(messages []app.Message, width int) string {
	if len(messages) == 0 {
		return mutedStyle.Render("No messages yet. Ask away.")
	}
	var b strings.Builder
	for _, msg := range messages {
		stamp := msg.Timestamp.Format("15:04:05")
		switch msg.Role {
		case app.RoleUser:
			b.WriteString(userHeaderStyle.Render("You • " + stamp))
		default:
			b.WriteString(assistantHeaderStyle.Render("Assistant • " + stamp))
		}
		b.WriteString("\n")
		b.WriteString(messageBodyStyle.Width(width).Render(msg.Content))
		b.WriteString("\n")
		for _, src := range msg.Sources {
			b.WriteString(mutedStyle.Render("  ↳ " + formatSource(src)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatSource(src app.Source) string {
	switch src.Type {
	case app.SourceCode:
		return fmt.Sprintf("%s:%d-%d", src.File, src.LineStart, src.LineEnd)
	default:
		return fmt.Sprintf("%s (%s)", src.Title, src.URL)
	}
}

// renderSidebar shows the parsed directory listing, capped for display; the
// status line keeps the full counts.
func renderSidebar(repo app.Repository) string {
	var b strings.Builder
	b.WriteString(sidebarFolderStyle.Render("Files"))
	b.WriteString("\n")

	nodes := app.ParseTree(repo.Tree)
	if len(nodes) == 0 {
		b.WriteString(mutedStyle.Render("(no tree available)"))
		return b.String()
	}
	shown := app.DisplayNodes(nodes)
	for _, n := range shown {
		b.WriteString(strings.Repeat("  ", n.Indent))
		if n.Type == app.NodeFolder {
			b.WriteString(sidebarFolderStyle.Render("▸ " + n.Name + "/"))
		} else {
			b.WriteString("· " + n.Name)
		}
		b.WriteString("\n")
	}
	if rest := len(nodes) - len(shown); rest > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("… and %d more", rest)))
	}
	return b.String()
}

func statusLine(repo app.Repository) string {
	stats := app.ParseRepoStats(repo.Summary)
	parts := []string{repo.URL}
	if stats.FilesAnalyzed > 0 {
		parts = append(parts, humanize.Comma(int64(stats.FilesAnalyzed))+" files analyzed")
	}
	if stats.EstimatedKTokens > 0 {
		parts = append(parts, humanize.CommafWithDigits(stats.EstimatedKTokens, 1)+"k tokens")
	}
	return strings.Join(parts, " • ")
}
