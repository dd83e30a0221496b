package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"budgeter/internal/worker"
)

func TestDemoCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"demo", "--no-events", "--log-level", "error"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("demo failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Salary", "Concert", "exp-5", "+ 2,820.50"} {
		if !strings.Contains(got, want) {
			t.Errorf("demo output missing %q", want)
		}
	}
}

func TestRenderTotals(t *testing.T) {
	table := renderTotals([]worker.SessionTotals{{
		SessionID:         "abc",
		Budget:            "10.00",
		Added:             2,
		Deleted:           1,
		ExpensePercentage: 0,
		UpdatedAt:         time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC),
	}})
	for _, want := range []string{"abc", "09:30:00", "10.00", "---"} {
		if !strings.Contains(table, want) {
			t.Errorf("table missing %q:\n%s", want, table)
		}
	}
}

func TestEventsCommandValidatesConfig(t *testing.T) {
	t.Setenv("AMQP_URL", "http://broker.local:5672")

	var stderr bytes.Buffer
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"events", "--log-level", "error"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	if err == nil {
		t.Fatal("expected a configuration error")
	}
	if !strings.Contains(err.Error(), "AMQP URL scheme") {
		t.Fatalf("error = %v, want AMQP URL scheme complaint", err)
	}
}
