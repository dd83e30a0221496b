package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"budgeter/internal/core"
	"budgeter/internal/format"
	"budgeter/internal/services"
)

var (
	ColorBorder  = lipgloss.Color("#575653")
	ColorText    = lipgloss.Color("#FFFCF0")
	ColorMuted   = lipgloss.Color("#6F6E69")
	ColorIncome  = lipgloss.Color("#28B9B5")
	ColorExpense = lipgloss.Color("#FF5049")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText)

	headerStyle = lipgloss.NewStyle().
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	incomeStyle = lipgloss.NewStyle().
			Foreground(ColorIncome)

	expenseStyle = lipgloss.NewStyle().
			Foreground(ColorExpense)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorExpense)
)

func kindStyle(k core.Kind) lipgloss.Style {
	if k == core.KindExpense {
		return expenseStyle
	}
	return incomeStyle
}

// RenderTitle renders the month header in a rounded box.
func RenderTitle(month string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 2).
		Render(titleStyle.Render("Available budget in " + month))
}

// RenderSummary renders the balance, both totals and the overall expense percentage.
func RenderSummary(s core.BudgetSummary) string {
	label := func(text string) string { return mutedStyle.Render(padRight(text, 10)) }

	lines := []string{
		label("Budget") + kindStyle(format.BudgetKind(s)).Bold(true).Render(format.Budget(s)),
		label("Income") + incomeStyle.Render(format.Amount(s.TotalIncome, core.KindIncome)),
		label("Expenses") + expenseStyle.Render(format.Amount(s.TotalExpense, core.KindExpense)) +
			"  " + mutedStyle.Render(format.Percentage(s.ExpensePercentage)),
	}
	return strings.Join(lines, "\n")
}

// RenderEntries renders one table per kind. Empty kinds are shown as a muted line.
func RenderEntries(snap services.Snapshot) string {
	var b strings.Builder
	b.WriteString(renderKind(core.KindIncome, snap.Incomes))
	b.WriteString("\n")
	b.WriteString(renderKind(core.KindExpense, snap.Expenses))
	return b.String()
}

func renderKind(kind core.Kind, entries []core.Entry) string {
	title := headerStyle.Inherit(kindStyle(kind)).Render(kind.Label())
	if len(entries) == 0 {
		return title + "\n" + mutedStyle.Render("  (none)") + "\n"
	}

	t := Table{Headers: []string{"ID", "Description", "Value"}}
	if kind == core.KindExpense {
		t.Headers = append(t.Headers, "%")
	}
	for _, e := range entries {
		row := []string{e.Ref(), e.Description, format.Amount(e.Value, e.Kind)}
		if kind == core.KindExpense {
			row = append(row, format.Percentage(e.Percentage))
		}
		t.Rows = append(t.Rows, row)
	}
	return title + "\n" + RenderTable(t)
}

// RenderLedger renders the whole ledger view printed after each command.
func RenderLedger(month string, snap services.Snapshot) string {
	return RenderTitle(month) + "\n" + RenderSummary(snap.Summary) + "\n\n" + RenderEntries(snap)
}

// RenderError renders a rejected command.
func RenderError(err error) string {
	return errorStyle.Render("error: ") + err.Error()
}

// Table represents a bordered text table for CLI output.
type Table struct {
	Headers []string
	Rows    [][]string
}

// RenderTable renders a bordered table. The id and description columns are left aligned, figures right aligned.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	border := func(left, mid, right string) string {
		var b strings.Builder
		b.WriteString(left)
		for i, w := range widths {
			b.WriteString(strings.Repeat("─", w+2))
			if i < numCols-1 {
				b.WriteString(mid)
			}
		}
		b.WriteString(right)
		return mutedStyle.Render(b.String()) + "\n"
	}
	line := func(cells []string, style lipgloss.Style) string {
		var b strings.Builder
		b.WriteString(mutedStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i == 0 || i == 1 {
				cell = padRight(cell, widths[i])
			} else {
				cell = padLeft(cell, widths[i])
			}
			b.WriteString(style.Render(" " + cell + " "))
			b.WriteString(mutedStyle.Render("│"))
		}
		return b.String() + "\n"
	}

	var b strings.Builder
	b.WriteString(border("╭", "┬", "╮"))
	b.WriteString(line(t.Headers, headerStyle))
	b.WriteString(border("├", "┼", "┤"))
	for _, row := range t.Rows {
		b.WriteString(line(row, lipgloss.NewStyle()))
	}
	b.WriteString(border("╰", "┴", "╯"))
	return b.String()
}

func padRight(s string, w int) string {
	if n := lipgloss.Width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func padLeft(s string, w int) string {
	if n := lipgloss.Width(s); n < w {
		return strings.Repeat(" ", w-n) + s
	}
	return s
}
