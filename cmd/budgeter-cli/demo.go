package main

import (
	"strings"

	"github.com/spf13/cobra"
)

// demoScript walks through adding, correcting and removing entries.
const demoScript = `# incomes
inc Salary 2500
inc Side project 320,50
# expenses
exp Rent 900
exp Groceries 245.30
exp Gym 39,99
# mistake, then fix it
exp Concert 1200
del exp-4
exp Concert 120
`

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Replay a sample month",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runFrom(cmd, strings.NewReader(demoScript))
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}
