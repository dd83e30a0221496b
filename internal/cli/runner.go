package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"budgeter/internal/core"
	"budgeter/internal/format"
	"budgeter/internal/log"
	"budgeter/internal/services"
	"budgeter/internal/session"
)

// Runner drives one ledger from line-oriented input and prints the ledger after every change.
type Runner struct {
	service *services.BudgetService
	session *session.Session
	out     io.Writer
	logger  *log.Logger
	now     func() time.Time
}

// NewRunner creates a runner with a fresh session.
func NewRunner(svc *services.BudgetService, out io.Writer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Discard()
	}
	return &Runner{
		service: svc,
		session: session.New(),
		out:     out,
		logger:  logger.WithComponent(log.ComponentCLI),
		now:     time.Now,
	}
}

// Run reads commands until EOF, a quit command or ctx cancellation. Rejected lines are
// reported and skipped; only read and write failures stop the run. Cancellation is
// honoured while waiting for input.
func (r *Runner) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	lineNo := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("read commands: %w", err)
				}
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			lineNo++
			quit, err := r.runLine(ctx, lineNo, line)
			if err != nil || quit {
				return err
			}
		}
	}
}

// runLine parses and executes one line. Invalid input is printed, not returned.
func (r *Runner) runLine(ctx context.Context, lineNo int, line string) (bool, error) {
	cmd, err := ParseCommand(line)
	if err == nil {
		var quit bool
		quit, err = r.Execute(ctx, cmd)
		if quit {
			return true, nil
		}
	}
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, core.ErrInvalidInput) {
		return false, err
	}
	r.logger.DebugContext(ctx, "Rejected command", "line", lineNo, log.FieldError, err.Error())
	_, werr := fmt.Fprintln(r.out, RenderError(err))
	return false, werr
}

// Execute applies one command. It reports whether the caller should stop.
func (r *Runner) Execute(ctx context.Context, cmd Command) (bool, error) {
	switch cmd.Op {
	case OpNone:
		return false, nil
	case OpQuit:
		return true, nil
	case OpHelp:
		_, err := fmt.Fprintln(r.out, Usage)
		return false, err
	case OpShow:
		return false, r.print(r.service.Snapshot(r.session))
	case OpAdd:
		_, snap, err := r.service.AddEntry(ctx, r.session, cmd.Kind, cmd.Description, cmd.Value)
		if err != nil {
			return false, err
		}
		return false, r.print(snap)
	case OpDelete:
		snap, removed := r.service.DeleteEntry(ctx, r.session, cmd.Kind, cmd.ID)
		if !removed {
			if _, err := fmt.Fprintln(r.out, mutedStyle.Render("no entry "+core.Entry{Kind: cmd.Kind, ID: cmd.ID}.Ref())); err != nil {
				return false, err
			}
		}
		return false, r.print(snap)
	default:
		return false, fmt.Errorf("unsupported command %d", cmd.Op)
	}
}

// Snapshot returns the current state of the runner's ledger.
func (r *Runner) Snapshot() services.Snapshot {
	return r.service.Snapshot(r.session)
}

func (r *Runner) print(snap services.Snapshot) error {
	_, err := fmt.Fprintln(r.out, RenderLedger(format.MonthTitle(r.now()), snap))
	return err
}
