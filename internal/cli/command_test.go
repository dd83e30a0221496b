package cli

import (
	"errors"
	"testing"

	"budgeter/internal/core"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line     string
		wantOp   Op
		wantKind core.Kind
		wantID   int
		wantDesc string
		wantVal  string
	}{
		{line: "", wantOp: OpNone},
		{line: "   # comment", wantOp: OpNone},
		{line: "show", wantOp: OpShow},
		{line: "LS", wantOp: OpShow},
		{line: "help", wantOp: OpHelp},
		{line: "quit", wantOp: OpQuit},
		{line: "inc Salary 2500", wantOp: OpAdd, wantKind: core.KindIncome, wantDesc: "Salary", wantVal: "2500"},
		{line: "exp Monthly rent  900,50", wantOp: OpAdd, wantKind: core.KindExpense, wantDesc: "Monthly rent", wantVal: "900.5"},
		{line: "+ Gift 10", wantOp: OpAdd, wantKind: core.KindIncome, wantDesc: "Gift", wantVal: "10"},
		{line: "del exp-1", wantOp: OpDelete, wantKind: core.KindExpense, wantID: 1},
		{line: "rm inc-12", wantOp: OpDelete, wantKind: core.KindIncome, wantID: 12},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			if err != nil {
				t.Fatalf("ParseCommand(%q) error = %v", tt.line, err)
			}
			if got.Op != tt.wantOp || got.Kind != tt.wantKind || got.ID != tt.wantID || got.Description != tt.wantDesc {
				t.Fatalf("ParseCommand(%q) = %+v", tt.line, got)
			}
			if tt.wantVal != "" && got.Value.String() != tt.wantVal {
				t.Fatalf("value = %s, want %s", got.Value, tt.wantVal)
			}
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	lines := []string{
		"spend Rent 10",
		"inc 2500",
		"inc Salary",
		"exp Rent ten",
		"exp Rent -10",
		"del",
		"del exp",
		"del exp-1 exp-2",
		"del sav-1",
	}
	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			if _, err := ParseCommand(line); !errors.Is(err, core.ErrInvalidInput) {
				t.Fatalf("ParseCommand(%q) error = %v, want ErrInvalidInput", line, err)
			}
		})
	}
}
