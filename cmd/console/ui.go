package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/verdant-hollow/pkg/story"
)

const (
	PlaceHolderText = "Type a choice or a command..."
	maxNameLength   = 40
)

type lineKind int

const (
	lineStory lineKind = iota
	lineUser
	lineInfo
	lineError
)

type transcriptLine struct {
	kind lineKind
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	view         *story.View
	transcript   []transcriptLine
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	loading      bool

	// Name entry state
	showNameModal bool
	nameInput     textinput.Model
	nameErr       error

	// Quit confirmation state
	showQuitModal bool

	// Progress bar state
	progressTick int
}

type viewMsg struct {
	view *story.View
	err  error
}

type sessionStartedMsg struct {
	view *story.View
	err  error
}

type exportMsg struct {
	path string
	err  error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")). // forest green
			Bold(true)

	storyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")) // light grey

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("28")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true).
			Align(lipgloss.Center)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	ni := textinput.New()
	ni.Placeholder = "Adventurer"
	ni.CharLimit = maxNameLength
	ni.Width = 30
	ni.Focus()

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	return ConsoleUI{
		config:        cfg,
		client:        client,
		textarea:      ta,
		nameInput:     ni,
		chatViewport:  chatVp,
		metaViewport:  viewport.New(20, 20),
		showNameModal: true,
	}
}

// appendView adds a turn's narration to the transcript.
func (m *ConsoleUI) appendView(v *story.View) {
	for _, l := range v.Lines {
		m.transcript = append(m.transcript, transcriptLine{lineStory, l})
	}
}

func (m *ConsoleUI) info(lines ...string) {
	for _, l := range lines {
		m.transcript = append(m.transcript, transcriptLine{lineInfo, l})
	}
}

// promptBlock renders the current scene and its numbered choices.
func promptBlock(v *story.View, width int) string {
	if v == nil {
		return ""
	}
	var b strings.Builder
	if v.Ended {
		b.WriteString(titleStyle.Render("THE END") + "\n")
		b.WriteString(infoStyle.Render(wordwrap.String("Type /new to begin another adventure, /export to keep a chronicle, or Ctrl+C to quit.", width)))
		return b.String()
	}
	if v.Prompt != "" {
		b.WriteString(wordwrap.String(v.Prompt, width) + "\n")
	}
	for i, c := range v.Choices {
		b.WriteString(choiceStyle.Render(fmt.Sprintf("  %d. ", i+1)) + c + "\n")
	}
	if v.Node == story.NodeBattle {
		b.WriteString(infoStyle.Render("Attack with a number, r to run, p to drink a potion.") + "\n")
	} else if v.Node == story.NodeEncounter {
		b.WriteString(infoStyle.Render("Pick a number, or /act followed by anything you want to try.") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// sceneText is what ctrl+y copies.
func sceneText(v *story.View) string {
	if v == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(v.Prompt)
	for i, c := range v.Choices {
		fmt.Fprintf(&b, "\n%d. %s", i+1, c)
	}
	return strings.TrimSpace(b.String())
}

func statsText(v *story.View) []string {
	p := v.Player
	lines := []string{
		fmt.Sprintf("%s, level %d", p.Name, p.Level),
		fmt.Sprintf("Health %d/%d", p.Health, p.MaxHealth),
		fmt.Sprintf("Strength %d, Luck %d, Agility %d (max %d)", p.Strength, p.Luck, p.Agility, p.MaxStat),
		fmt.Sprintf("Reputation %d, Corruption %d, Sanity %d", p.Reputation, p.Corruption, p.Sanity),
		fmt.Sprintf("Points %d", v.Points),
	}
	if p.StatPoints > 0 {
		lines = append(lines, fmt.Sprintf("%d stat points to spend. Try /train.", p.StatPoints))
	}
	if len(p.AvailableRoles) > 0 {
		roles := make([]string, len(p.AvailableRoles))
		for i, r := range p.AvailableRoles {
			roles[i] = string(r)
		}
		lines = append(lines, "Roles: "+strings.Join(roles, ", "))
	}
	if p.HordesUnlocked {
		lines = append(lines, "Hordes roam the Hollow.")
	}
	return lines
}

func inventoryText(v *story.View) []string {
	if len(v.Player.Inventory) == 0 {
		return []string{"Your pack is empty."}
	}
	lines := []string{"You carry:"}
	for _, item := range v.Player.Inventory {
		lines = append(lines, "• "+item)
	}
	return lines
}

func writeMetadata(v *story.View) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("ADVENTURER") + "\n\n")
	if v == nil {
		return content.String()
	}
	p := v.Player

	content.WriteString(p.Name + "\n")
	content.WriteString(fmt.Sprintf("Level %d\n\n", p.Level))
	content.WriteString(fmt.Sprintf("Health:  %d/%d\n", p.Health, p.MaxHealth))
	content.WriteString(fmt.Sprintf("Str:     %d\n", p.Strength))
	content.WriteString(fmt.Sprintf("Luck:    %d\n", p.Luck))
	content.WriteString(fmt.Sprintf("Agility: %d\n", p.Agility))
	content.WriteString(fmt.Sprintf("Points:  %d\n\n", v.Points))

	if v.Stage != "" {
		content.WriteString("Last milestone:\n")
		content.WriteString(strings.ReplaceAll(v.Stage, "_", " ") + "\n\n")
	}

	content.WriteString("Inventory:\n")
	if len(p.Inventory) == 0 {
		content.WriteString("Empty\n")
	}
	for _, item := range p.Inventory {
		content.WriteString("• " + item + "\n")
	}

	content.WriteString("\nCommands:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+Y: Copy scene\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• Ctrl+C: Quit\n")
	return content.String()
}

// writeChatContent builds the transcript for the current viewport width
func (m *ConsoleUI) writeChatContent() {
	width := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("VERDANT HOLLOW") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, l := range m.transcript {
		switch l.kind {
		case lineUser:
			content.WriteString(userStyle.Render("> ") + wordwrap.String(l.text, width-2) + "\n\n")
		case lineInfo:
			content.WriteString(infoStyle.Render(wordwrap.String(l.text, width)) + "\n")
		case lineError:
			content.WriteString(errorStyle.Render(wordwrap.String("Error: "+l.text, width)) + "\n\n")
		default:
			content.WriteString(storyStyle.Render(wordwrap.String(l.text, width)) + "\n")
		}
	}

	if m.loading {
		content.WriteString("\n" + m.renderProgressBar())
	} else if block := promptBlock(m.view, width); block != "" {
		content.WriteString("\n" + block + "\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - chatWidth - 6
	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 6
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

func (m ConsoleUI) Init() tea.Cmd {
	return textinput.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showNameModal {
		return m.updateNameModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(writeMetadata(m.view))

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlY:
			if err := clipboard.WriteAll(sceneText(m.view)); err != nil {
				m.transcript = append(m.transcript, transcriptLine{lineError, "could not copy: " + err.Error()})
			} else {
				m.info("Scene copied to clipboard.")
			}
			m.writeChatContent()
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			if isLocalCommand(input) {
				return m.handleCommand(input)
			}
			if m.view != nil && m.view.Ended {
				m.info("Your adventure has ended. Type /new to start again.")
				m.writeChatContent()
				return m, nil
			}

			m.transcript = append(m.transcript, transcriptLine{lineUser, input})
			m.loading = true
			m.progressTick = 0
			m.writeChatContent()
			return m, tea.Batch(m.sendInput(input), progressTick())
		}

	case viewMsg:
		m.loading = false
		if msg.err != nil {
			m.transcript = append(m.transcript, transcriptLine{lineError, msg.err.Error()})
		} else {
			m.view = msg.view
			m.appendView(msg.view)
			m.metaViewport.SetContent(writeMetadata(m.view))
		}
		m.writeChatContent()
		return m, nil

	case sessionStartedMsg:
		m.loading = false
		if msg.err != nil {
			m.transcript = append(m.transcript, transcriptLine{lineError, msg.err.Error()})
		} else {
			m.view = msg.view
			m.transcript = append(m.transcript, transcriptLine{lineInfo, strings.Repeat("─", 12)})
			m.appendView(msg.view)
			m.metaViewport.SetContent(writeMetadata(m.view))
		}
		m.writeChatContent()
		return m, nil

	case exportMsg:
		if msg.err != nil {
			m.transcript = append(m.transcript, transcriptLine{lineError, msg.err.Error()})
		} else {
			m.info("Chronicle saved to " + msg.path)
		}
		m.writeChatContent()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
		return m, nil
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

// isLocalCommand reports whether the console handles input itself rather
// than sending it to the game.
func isLocalCommand(input string) bool {
	if !strings.HasPrefix(input, "/") {
		return false
	}
	lower := strings.ToLower(input)
	return !strings.HasPrefix(lower, story.ActCommand) && !strings.HasPrefix(lower, story.TrainCommand)
}

const helpText = `Commands:
• /help - Show this help
• /stats - Show your stats
• /train <strength|luck|agility> - Spend a stat point
• /inventory - Show what you carry
• /export - Save a PDF chronicle of this adventure
• /new - Start a new adventure after this one ends
• Ctrl+Y - Copy the current scene
• Ctrl+C - Quit

How to play:
• Type the number or name of a choice and press Enter
• In encounters, /act <anything> tries a free-form action`

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.Fields(input)[0])

	switch cmd {
	case "/help":
		m.info(strings.Split(helpText, "\n")...)
	case "/stats":
		if m.view != nil {
			m.info(statsText(m.view)...)
		}
	case "/inventory", "/inv":
		if m.view != nil {
			m.info(inventoryText(m.view)...)
		}
	case "/export":
		if m.view != nil {
			m.writeChatContent()
			return m, m.exportChronicle()
		}
	case "/new":
		if m.view == nil || !m.view.Ended {
			m.info("Finish this adventure first.")
			break
		}
		m.loading = true
		m.writeChatContent()
		return m, tea.Batch(m.restart(), progressTick())
	default:
		m.info(fmt.Sprintf("Unknown command %s. Type /help for commands.", cmd))
	}

	m.writeChatContent()
	return m, nil
}

func (m ConsoleUI) sendInput(input string) tea.Cmd {
	id := m.view.SessionID
	return func() tea.Msg {
		v, err := sendInput(m.client, m.config.APIBaseURL, id, input)
		return viewMsg{v, err}
	}
}

func (m ConsoleUI) startSession(name string) tea.Cmd {
	return func() tea.Msg {
		v, err := startSession(m.client, m.config.APIBaseURL, name)
		return sessionStartedMsg{v, err}
	}
}

func (m ConsoleUI) restart() tea.Cmd {
	id, name := m.view.SessionID, m.view.Player.Name
	return func() tea.Msg {
		if err := endSession(m.client, m.config.APIBaseURL, id); err != nil {
			return sessionStartedMsg{nil, err}
		}
		v, err := startSession(m.client, m.config.APIBaseURL, name)
		return sessionStartedMsg{v, err}
	}
}

func (m ConsoleUI) exportChronicle() tea.Cmd {
	id, dir := m.view.SessionID, m.config.ExportDir
	return func() tea.Msg {
		pdf, name, err := downloadChronicle(m.client, m.config.APIBaseURL, id)
		if err != nil {
			return exportMsg{err: err}
		}
		path := filepath.Join(dir, filepath.Base(name))
		if err := os.WriteFile(path, pdf, 0o644); err != nil {
			return exportMsg{err: fmt.Errorf("failed to write chronicle: %w", err)}
		}
		return exportMsg{path: path}
	}
}

func (m ConsoleUI) updateNameModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionStartedMsg:
		m.loading = false
		if msg.err != nil {
			m.nameErr = msg.err
			return m, nil
		}
		m.view = msg.view
		m.appendView(msg.view)
		m.showNameModal = false
		if m.width > 0 && m.height > 0 {
			m.resize()
		}
		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(writeMetadata(m.view))
		m.textarea.Focus()
		return m, textarea.Blink

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			name := strings.TrimSpace(m.nameInput.Value())
			if name == "" {
				name = m.nameInput.Placeholder
			}
			m.loading = true
			m.nameErr = nil
			return m, m.startSession(name)
		}
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Hollow?"))
	content.WriteString("\n\n")
	content.WriteString("Your progress is saved at each milestone.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderNameModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Verdant Hollow"))
	content.WriteString("\n\n")
	switch {
	case m.loading:
		content.WriteString(loadingStyle.Render("Entering the forest..."))
	default:
		content.WriteString("What is your name, traveller?\n\n")
		content.WriteString(m.nameInput.View())
		if m.nameErr != nil {
			content.WriteString("\n\n" + errorStyle.Render(m.nameErr.Error()))
		}
		content.WriteString("\n\n")
		content.WriteString(promptStyle.Render("Enter to begin, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(56).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showNameModal {
		return m.renderNameModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && frame%4 < 2:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

// progressTick creates a command that sends a progress tick message
func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
