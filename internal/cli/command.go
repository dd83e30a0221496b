package cli

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"budgeter/internal/core"
)

// Op is what a terminal command asks the ledger to do.
type Op int

const (
	OpNone Op = iota
	OpAdd
	OpDelete
	OpShow
	OpHelp
	OpQuit
)

// Command is one parsed input line.
type Command struct {
	Op          Op
	Kind        core.Kind
	ID          int
	Description string
	Value       decimal.Decimal
}

// Usage lists the accepted commands.
const Usage = `commands:
  inc <description> <value>   add an income, e.g. inc Salary 2500
  exp <description> <value>   add an expense, e.g. exp Rent 900,50
  del <inc-N|exp-N>           delete an entry
  show                        print the ledger
  help                        print this help
  quit                        leave`

// ParseCommand parses a single line. Blank lines and lines starting with '#' yield OpNone.
// Every rejected line returns an error wrapping core.ErrInvalidInput.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return Command{Op: OpNone}, nil
	}

	verb := strings.ToLower(fields[0])
	switch verb {
	case "show", "ls":
		return Command{Op: OpShow}, nil
	case "help", "?":
		return Command{Op: OpHelp}, nil
	case "quit", "exit", "q":
		return Command{Op: OpQuit}, nil
	case "del", "delete", "rm":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("%w: usage: del <inc-N|exp-N>", core.ErrInvalidInput)
		}
		kind, id, err := core.ParseRef(fields[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Op: OpDelete, Kind: kind, ID: id}, nil
	}

	kind, err := core.ParseKind(verb)
	if err != nil {
		return Command{}, fmt.Errorf("%w: unknown command %q", core.ErrInvalidInput, fields[0])
	}
	if len(fields) < 3 {
		return Command{}, fmt.Errorf("%w: usage: %s <description> <value>", core.ErrInvalidInput, kind)
	}

	value, err := core.ParseAmount(fields[len(fields)-1])
	if err != nil {
		return Command{}, err
	}
	return Command{
		Op:          OpAdd,
		Kind:        kind,
		Description: strings.Join(fields[1:len(fields)-1], " "),
		Value:       value,
	}, nil
}
