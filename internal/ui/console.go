package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/willfong/atmsim/internal/simulator"
)

// consoleHelp lists the commands the line console accepts
const consoleHelp = `Commands:
  login <id> <pin>   start a session
  withdraw <amount>  withdraw cash
  deposit <amount>   deposit cash
  balance            show the current balance
  interest           project monthly interest (savings only)
  history            show recent transactions
  reset              clear the display
  logout             end the session
  help               show this help
  quit               exit`

// Console drives the engine from line-oriented input. It is used when
// stdin is not a terminal or when a full-screen session is not wanted.
type Console struct {
	engine *simulator.Engine
	msgs   Messages
	ui     *UI
	out    io.Writer
	prompt bool
}

// NewConsole creates a console writing to out. When prompt is set a "> "
// prompt is printed before each line is read.
func NewConsole(engine *simulator.Engine, msgs Messages, u *UI, out io.Writer, prompt bool) *Console {
	return &Console{
		engine: engine,
		msgs:   msgs,
		ui:     u,
		out:    out,
		prompt: prompt,
	}
}

// Run reads commands from in until quit, EOF, or ctx is cancelled
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	c.println(c.ui.Header("ATM Simulator"))
	c.println(c.ui.Muted("Type 'help' for commands."))

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if c.prompt {
			fmt.Fprint(c.out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		if quit := c.Execute(scanner.Text()); quit {
			return nil
		}
	}
}

// Execute runs one command line. It returns true when the console should exit.
func (c *Console) Execute(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "login":
		id, pin := argAt(args, 0), argAt(args, 1)
		if err := c.engine.Login(id, pin); err != nil {
			c.fail(err)
			return false
		}
		c.println(c.ui.Success(c.msgs.Welcome(id)))
		c.printHistory()

	case "logout":
		c.engine.Logout()
		c.println(c.ui.Muted("Logged out."))

	case "withdraw":
		balance, err := c.engine.Withdraw(argAt(args, 0))
		if err != nil {
			c.fail(err)
			return false
		}
		c.println(c.ui.Success(c.msgs.Withdrawn(balance)))

	case "deposit":
		balance, err := c.engine.Deposit(argAt(args, 0))
		if err != nil {
			c.fail(err)
			return false
		}
		c.println(c.ui.Success(c.msgs.Deposited(balance)))

	case "balance":
		balance, err := c.engine.CheckBalance()
		if err != nil {
			c.fail(err)
			return false
		}
		c.println(c.msgs.Balance(balance))

	case "interest":
		report, err := c.engine.CalculateInterest()
		if err != nil {
			c.fail(err)
			return false
		}
		if !report.Applicable {
			c.println(c.ui.Warning(c.msgs.Interest(report)))
			return false
		}
		c.println(c.msgs.Interest(report))

	case "history":
		if !c.engine.LoggedIn() {
			c.fail(simulator.ErrNoActiveSession)
			return false
		}
		c.printHistory()

	case "reset":
		c.println(c.ui.Muted("Display cleared."))

	case "help", "?":
		c.println(consoleHelp)

	case "quit", "exit":
		c.engine.Logout()
		return true

	default:
		c.println(c.ui.Error(fmt.Sprintf("Unknown command %q. Type 'help' for commands.", cmd)))
	}

	return false
}

func (c *Console) fail(err error) {
	c.println(c.ui.Error(c.msgs.Error(err)))
}

func (c *Console) printHistory() {
	c.println(c.ui.Bold(c.msgs.HistoryTitle()))
	for _, line := range c.msgs.HistoryLines(c.engine.Entries()) {
		c.println(line)
	}
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

// argAt returns args[i] or "" so missing arguments reach the engine's validation
func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
