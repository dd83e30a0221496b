package core

import (
	"errors"
	"testing"
)

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"inc", KindIncome, true},
		{"Income", KindIncome, true},
		{"exp", KindExpense, true},
		{" expense ", KindExpense, true},
		{"+", KindIncome, true},
		{"-", KindExpense, true},
		{"", "", false},
		{"transfer", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidKind) {
			t.Fatalf("%q expected ErrInvalidKind, got %v", tc.in, err)
		}
	}
}

func TestRefRoundTrip(t *testing.T) {
	e := Entry{Kind: KindExpense, ID: 12}
	if e.Ref() != "exp-12" {
		t.Fatalf("unexpected ref %q", e.Ref())
	}
	kind, id, err := ParseRef(e.Ref())
	if err != nil || kind != KindExpense || id != 12 {
		t.Fatalf("ParseRef(%q) = %q, %d, %v", e.Ref(), kind, id, err)
	}
}

func TestParseRefRejectsMalformed(t *testing.T) {
	for _, ref := range []string{"", "exp", "exp-", "exp-x", "exp-0", "exp--1", "foo-1", "inc1"} {
		if _, _, err := ParseRef(ref); !errors.Is(err, ErrInvalidRef) {
			t.Errorf("ParseRef(%q) expected ErrInvalidRef, got %v", ref, err)
		}
	}
}
