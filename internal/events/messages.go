// Package events publishes ledger changes to an AMQP exchange.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"budgeter/internal/core"
)

// EventType names what happened to a ledger.
type EventType string

const (
	EntryAdded   EventType = "entry.added"
	EntryDeleted EventType = "entry.deleted"
)

// LedgerEvent describes one mutation and the summary it produced.
type LedgerEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id"`
	Entry     EntryPayload   `json:"entry"`
	Summary   SummaryPayload `json:"summary"`
	Timestamp time.Time      `json:"timestamp"`
}

// EntryPayload carries the affected entry. Description and Value are empty for deletions.
type EntryPayload struct {
	Kind        string `json:"kind"`
	ID          int    `json:"id"`
	Description string `json:"description,omitempty"`
	Value       string `json:"value,omitempty"`
}

// SummaryPayload is core.BudgetSummary with amounts as decimal strings.
type SummaryPayload struct {
	Budget            string `json:"budget"`
	TotalIncome       string `json:"total_income"`
	TotalExpense      string `json:"total_expense"`
	ExpensePercentage int    `json:"expense_percentage"`
	Percentages       []int  `json:"percentages"`
}

func newSummaryPayload(s core.BudgetSummary, percentages []int) SummaryPayload {
	if percentages == nil {
		percentages = []int{}
	}
	return SummaryPayload{
		Budget:            s.Budget.StringFixed(2),
		TotalIncome:       s.TotalIncome.StringFixed(2),
		TotalExpense:      s.TotalExpense.StringFixed(2),
		ExpensePercentage: s.ExpensePercentage,
		Percentages:       percentages,
	}
}

// NewEntryAddedEvent builds the event published after an entry is added.
func NewEntryAddedEvent(sessionID string, e core.Entry, s core.BudgetSummary, percentages []int) LedgerEvent {
	return LedgerEvent{
		ID:        uuid.NewString(),
		Type:      EntryAdded,
		SessionID: sessionID,
		Entry: EntryPayload{
			Kind:        e.Kind.String(),
			ID:          e.ID,
			Description: e.Description,
			Value:       e.Value.StringFixed(2),
		},
		Summary:   newSummaryPayload(s, percentages),
		Timestamp: time.Now().UTC(),
	}
}

// NewEntryDeletedEvent builds the event published after a delete request.
func NewEntryDeletedEvent(sessionID string, kind core.Kind, id int, s core.BudgetSummary, percentages []int) LedgerEvent {
	return LedgerEvent{
		ID:        uuid.NewString(),
		Type:      EntryDeleted,
		SessionID: sessionID,
		Entry:     EntryPayload{Kind: kind.String(), ID: id},
		Summary:   newSummaryPayload(s, percentages),
		Timestamp: time.Now().UTC(),
	}
}

// RoutingKey returns the key an event is published under, e.g. "ledger.events.entry.added".
func RoutingKey(base string, t EventType) string {
	return base + "." + string(t)
}

// ToJSON converts the event to JSON bytes
func (e LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event and checks it names a known type.
func LedgerEventFromJSON(data []byte) (LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return LedgerEvent{}, err
	}
	switch ev.Type {
	case EntryAdded, EntryDeleted:
	default:
		return LedgerEvent{}, fmt.Errorf("unknown event type %q", ev.Type)
	}
	return ev, nil
}
