package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/willfong/atmsim/internal/simulator"
)

type screenMode int

const (
	modeLogin screenMode = iota
	modeMain
)

type tone int

const (
	toneInfo tone = iota
	toneSuccess
	toneWarning
	toneError
)

// Menu actions on the main screen, in display order
const (
	actionWithdraw = iota
	actionDeposit
	actionBalance
	actionInterest
	actionReset
	actionLogout
)

var menuLabels = []string{
	actionWithdraw: "Withdraw",
	actionDeposit:  "Deposit",
	actionBalance:  "Check Balance",
	actionInterest: "Calculate Interest",
	actionReset:    "Reset",
	actionLogout:   "Logout",
}

// Screen is the full-screen ATM front end. It owns no account state;
// every action goes through the engine.
type Screen struct {
	engine *simulator.Engine
	msgs   Messages
	ui     *UI
	gauge  *Gauge

	mode     screenMode
	username textinput.Model
	pin      textinput.Model
	amount   textinput.Model
	focus    int // login field: 0 username, 1 pin
	cursor   int // selected menu action

	message string
	tone    tone
}

// NewScreen creates the screen in login mode
func NewScreen(engine *simulator.Engine, msgs Messages, u *UI) *Screen {
	username := textinput.New()
	username.Prompt = ""
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	pin := textinput.New()
	pin.Prompt = ""
	pin.Placeholder = "PIN"
	pin.CharLimit = 16
	pin.EchoMode = textinput.EchoPassword
	pin.EchoCharacter = '•'

	amount := textinput.New()
	amount.Prompt = ""
	amount.Placeholder = "0.00"
	amount.CharLimit = 32

	return &Screen{
		engine:   engine,
		msgs:     msgs,
		ui:       u,
		gauge:    u.NewGauge("History", 20),
		username: username,
		pin:      pin,
		amount:   amount,
	}
}

// Init implements tea.Model
func (s *Screen) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (s *Screen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.ui.Width = msg.Width
		return s, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			s.engine.Logout()
			return s, tea.Quit
		}
		if s.mode == modeLogin {
			return s.updateLogin(msg)
		}
		return s.updateMain(msg)
	}

	return s.forward(msg)
}

func (s *Screen) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return s, tea.Quit
	case "tab", "shift+tab", "up", "down":
		return s, s.focusLogin(1 - s.focus)
	case "enter":
		if s.focus == 0 {
			return s, s.focusLogin(1)
		}
		return s, s.submitLogin()
	}
	return s.forward(msg)
}

func (s *Screen) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return s, s.logout()
	case "up", "shift+tab":
		s.cursor = (s.cursor - 1 + len(menuLabels)) % len(menuLabels)
		return s, nil
	case "down", "tab":
		s.cursor = (s.cursor + 1) % len(menuLabels)
		return s, nil
	case "enter":
		return s, s.run(s.cursor)
	}
	return s.forward(msg)
}

// forward passes msg to the focused input
func (s *Screen) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case s.mode == modeMain:
		s.amount, cmd = s.amount.Update(msg)
	case s.focus == 0:
		s.username, cmd = s.username.Update(msg)
	default:
		s.pin, cmd = s.pin.Update(msg)
	}
	return s, cmd
}

func (s *Screen) focusLogin(field int) tea.Cmd {
	s.focus = field
	if field == 0 {
		s.pin.Blur()
		return s.username.Focus()
	}
	s.username.Blur()
	return s.pin.Focus()
}

func (s *Screen) submitLogin() tea.Cmd {
	id := s.username.Value()
	if err := s.engine.Login(id, s.pin.Value()); err != nil {
		s.show(s.msgs.Error(err), toneError)
		s.pin.Reset()
		if id == "" {
			return s.focusLogin(0)
		}
		return s.focusLogin(1)
	}

	s.mode = modeMain
	s.cursor = actionWithdraw
	s.username.Reset()
	s.pin.Reset()
	s.username.Blur()
	s.pin.Blur()
	s.show(s.msgs.Welcome(id), toneInfo)
	return s.amount.Focus()
}

func (s *Screen) logout() tea.Cmd {
	s.engine.Logout()
	s.mode = modeLogin
	s.amount.Reset()
	s.amount.Blur()
	s.show("", toneInfo)
	return s.focusLogin(0)
}

// run performs a menu action against the engine
func (s *Screen) run(action int) tea.Cmd {
	switch action {
	case actionWithdraw:
		balance, err := s.engine.Withdraw(s.amount.Value())
		if err != nil {
			s.fail(err)
			return nil
		}
		s.amount.Reset()
		s.show(s.msgs.Withdrawn(balance), toneSuccess)

	case actionDeposit:
		balance, err := s.engine.Deposit(s.amount.Value())
		if err != nil {
			s.fail(err)
			return nil
		}
		s.amount.Reset()
		s.show(s.msgs.Deposited(balance), toneSuccess)

	case actionBalance:
		balance, err := s.engine.CheckBalance()
		if err != nil {
			s.fail(err)
			return nil
		}
		s.show(s.msgs.Balance(balance), toneInfo)

	case actionInterest:
		report, err := s.engine.CalculateInterest()
		if err != nil {
			s.fail(err)
			return nil
		}
		if !report.Applicable {
			s.show(s.msgs.Interest(report), toneWarning)
			return nil
		}
		s.show(s.msgs.Interest(report), toneInfo)

	case actionReset:
		s.amount.Reset()
		s.show("", toneInfo)

	case actionLogout:
		return s.logout()
	}
	return nil
}

func (s *Screen) fail(err error) {
	s.show(s.msgs.Error(err), toneError)
	if errors.Is(err, simulator.ErrNoActiveSession) {
		s.mode = modeLogin
		s.amount.Blur()
		s.focusLogin(0)
	}
}

func (s *Screen) show(message string, t tone) {
	s.message = message
	s.tone = t
}

// View implements tea.Model
func (s *Screen) View() string {
	var b strings.Builder
	b.WriteString(s.ui.Header("ATM Simulator"))
	b.WriteString("\n\n")
	b.WriteString(s.ui.Display("", s.styledMessage()))
	b.WriteString("\n\n")

	if s.mode == modeLogin {
		s.viewLogin(&b)
	} else {
		s.viewMain(&b)
	}
	return b.String()
}

func (s *Screen) viewLogin(b *strings.Builder) {
	b.WriteString(s.ui.KeyValue("Username", s.username.View()))
	b.WriteString("\n")
	b.WriteString(s.ui.KeyValue("PIN", s.pin.View()))
	b.WriteString("\n\n")
	b.WriteString(s.ui.Muted("tab switch field • enter login • esc quit"))
	b.WriteString("\n")
}

func (s *Screen) viewMain(b *strings.Builder) {
	if acc, ok := s.engine.Active(); ok {
		b.WriteString(s.ui.KeyValue("Account", acc.ID+" ("+acc.Kind.String()+")"))
		b.WriteString("\n")
	}
	b.WriteString(s.ui.KeyValue("Amount", s.amount.View()))
	b.WriteString("\n\n")

	for i, label := range menuLabels {
		if i == s.cursor {
			b.WriteString(StyleSelected.Render(SymbolCursor + " " + label))
		} else {
			b.WriteString("  " + label)
		}
		b.WriteString("\n")
	}

	entries := s.engine.Entries()
	b.WriteString("\n")
	b.WriteString(s.ui.Bold(s.msgs.HistoryTitle()))
	b.WriteString("\n")
	for _, line := range s.msgs.HistoryLines(entries) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(s.gauge.Render(len(entries), s.engine.HistoryCapacity()))
	b.WriteString("\n\n")
	b.WriteString(s.ui.Muted("↑/↓ select • enter run • esc logout • ctrl+c quit"))
	b.WriteString("\n")
}

func (s *Screen) styledMessage() string {
	if s.message == "" || !s.ui.shouldStyle() {
		return s.message
	}
	switch s.tone {
	case toneSuccess:
		return StyleSuccess.Render(s.message)
	case toneWarning:
		return StyleWarning.Render(s.message)
	case toneError:
		return StyleError.Render(s.message)
	}
	return s.message
}

// RunScreen runs the full-screen session until the customer quits or ctx ends
func RunScreen(ctx context.Context, engine *simulator.Engine, msgs Messages, u *UI) error {
	p := tea.NewProgram(NewScreen(engine, msgs, u), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
