// Package shell is an interactive developer console for playing against a running engine.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"wagering/infrastructure"
	"wagering/locale"
	"wagering/service"
)

// DefaultStake is used when a game command omits the amount
const DefaultStake int64 = 1000

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// Shell reads commands line by line and plays them as a single user
type Shell struct {
	wagers   service.WagerService
	accounts service.AccountService
	recent   infrastructure.RecentPlayers
	loc      *locale.Localizer
	userID   int64
	in       io.Reader
	out      io.Writer
	commands map[string]Command
	running  bool
}

// Command is one shell verb
type Command struct {
	Handler     CommandHandler
	Description string
	Usage       string
	Category    string // "game", "account", "utility"
}

// CommandHandler runs a command with the words after its name
type CommandHandler func(ctx context.Context, args []string) error

// Options configures a new shell
type Options struct {
	Wagers   service.WagerService
	Accounts service.AccountService
	Recent   infrastructure.RecentPlayers
	Locale   *locale.Localizer
	UserID   int64
	In       io.Reader
	Out      io.Writer
}

// New creates a shell playing as opts.UserID
func New(opts Options) *Shell {
	loc := opts.Locale
	if loc == nil {
		loc = locale.New("en")
	}
	s := &Shell{
		wagers:   opts.Wagers,
		accounts: opts.Accounts,
		recent:   opts.Recent,
		loc:      loc,
		userID:   opts.UserID,
		in:       opts.In,
		out:      opts.Out,
		running:  true,
	}
	s.initializeCommands()
	return s
}

// Run reads commands until exit, end of input or ctx cancellation
func (s *Shell) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)

	s.printf("🎰 Wagering Shell, playing as user %d. Type 'help' for commands.\n", s.userID)

	for s.running {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		s.printf("\n🎲 user:%d> ", s.userID)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		s.Execute(ctx, input)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}
	return nil
}

// Execute runs a single command line
func (s *Shell) Execute(ctx context.Context, input string) {
	parts := strings.Fields(strings.ToLower(input))
	if len(parts) == 0 {
		return
	}

	cmdName, args := parts[0], parts[1:]
	switch cmdName {
	case "exit", "quit":
		s.running = false
		s.printf("👋 Bye\n")
		return
	}

	cmd, exists := s.commands[cmdName]
	if !exists {
		s.printError(fmt.Errorf("unknown command: %s. Type 'help' for available commands", cmdName))
		return
	}

	if err := cmd.Handler(ctx, args); err != nil {
		s.printError(err)
	}
}

func (s *Shell) handleHelp(ctx context.Context, args []string) error {
	if len(args) > 0 {
		cmd, exists := s.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		s.printf("\n📖 %s\n   %s\n   Usage: %s\n", args[0], cmd.Description, cmd.Usage)
		return nil
	}

	byCategory := map[string][]string{}
	for name, cmd := range s.commands {
		byCategory[cmd.Category] = append(byCategory[cmd.Category], name)
	}

	s.printf("\n📚 Available Commands:\n")
	for _, category := range []string{"game", "account", "utility"} {
		names := byCategory[category]
		sort.Strings(names)
		s.printf("\n%s%s%s\n", colorCyan, strings.ToUpper(category), colorReset)
		for _, name := range names {
			s.printf("  %-10s %s\n", name, s.commands[name].Description)
		}
	}
	s.printf("  %-10s %s\n", "exit", "Leave the shell")
	return nil
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) printError(err error) {
	s.printf("%s❌ %s%s\n", colorRed, describeError(err), colorReset)
}

// describeError turns business errors into player-facing text
func describeError(err error) string {
	var tooSmall *service.BetTooSmallError
	var insufficient *service.InsufficientFundsError
	var invalidBet *service.InvalidBetTypeError

	switch {
	case errors.As(err, &tooSmall):
		return fmt.Sprintf("Minimum bet is %d", tooSmall.Min)
	case errors.As(err, &insufficient):
		return fmt.Sprintf("Not enough funds: balance %d, need %d", insufficient.Balance, insufficient.Required)
	case errors.As(err, &invalidBet):
		return fmt.Sprintf("Unknown roulette bet %q. Try red, black, green, even, odd, 1-12, 13-24, 25-36 or a number 0-36", invalidBet.Value)
	case errors.Is(err, service.ErrMissingBetType):
		return "Roulette needs a bet: roulette <bet> [amount]"
	case errors.Is(err, service.ErrNoActiveSession):
		return "No game in progress"
	case errors.Is(err, service.ErrSessionAlreadyActive):
		return "Finish your current game first"
	case errors.Is(err, service.ErrWagerClosed):
		return "That game expired and the stake was forfeited"
	case errors.Is(err, service.ErrTransient):
		return "Temporary storage problem, try again"
	default:
		return err.Error()
	}
}
