package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"budgeter/internal/core"
	"budgeter/internal/events"
	"budgeter/internal/log"
	"budgeter/internal/session"
)

// EventPublisher delivers ledger events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev events.LedgerEvent) error
}

// Snapshot is everything a view needs to render a ledger after a recalculation.
type Snapshot struct {
	Summary     core.BudgetSummary
	Incomes     []core.Entry
	Expenses    []core.Entry
	Percentages []int
}

// BudgetService coordinates ledger mutations: it applies the change, recalculates,
// and publishes an event. Publishing is best effort.
type BudgetService struct {
	publisher EventPublisher
	logger    *log.StructuredLogger
}

// NewBudgetService creates the coordinator. publisher may be nil to disable events.
func NewBudgetService(publisher EventPublisher, logger *log.Logger) *BudgetService {
	if logger == nil {
		logger = log.Discard()
	}
	return &BudgetService{
		publisher: publisher,
		logger:    log.NewStructuredLogger(logger),
	}
}

// AddEntry adds an entry to the session's ledger and returns the created entry with
// the refreshed snapshot.
func (s *BudgetService) AddEntry(ctx context.Context, sess *session.Session, kind core.Kind, description string, value decimal.Decimal) (core.Entry, Snapshot, error) {
	var (
		entry core.Entry
		snap  Snapshot
		err   error
	)
	sess.Do(func(l *core.Ledger) {
		entry, err = l.AddEntry(kind, description, value)
		if err != nil {
			return
		}
		snap = recalculate(l)
	})
	if err != nil {
		return core.Entry{}, Snapshot{}, fmt.Errorf("add %s entry: %w", kind, err)
	}

	// Expense percentages are only known after the recalculation.
	if entry.Kind == core.KindExpense {
		entry.Percentage = snap.Expenses[len(snap.Expenses)-1].Percentage
	}

	s.logger.LogEntryChanged(ctx, log.OpCreate, entryFields(sess.ID, entry.Kind, entry.ID, snap.Summary).
		WithEntry(entry.Kind.String(), entry.ID, entry.Description, entry.Value.StringFixed(2)))
	s.publish(ctx, events.NewEntryAddedEvent(sess.ID, entry, snap.Summary, snap.Percentages))

	return entry, snap, nil
}

// DeleteEntry removes an entry from the session's ledger and reports whether it existed.
// Unknown ids are not an error.
func (s *BudgetService) DeleteEntry(ctx context.Context, sess *session.Session, kind core.Kind, id int) (Snapshot, bool) {
	var (
		snap    Snapshot
		removed bool
	)
	sess.Do(func(l *core.Ledger) {
		before := l.Len()
		l.DeleteEntry(kind, id)
		removed = l.Len() < before
		snap = recalculate(l)
	})

	if !removed {
		return snap, false
	}

	s.logger.LogEntryChanged(ctx, log.OpDelete, entryFields(sess.ID, kind, id, snap.Summary))
	s.publish(ctx, events.NewEntryDeletedEvent(sess.ID, kind, id, snap.Summary, snap.Percentages))

	return snap, true
}

// Snapshot recalculates the session's ledger and returns its current state.
func (s *BudgetService) Snapshot(sess *session.Session) Snapshot {
	var snap Snapshot
	sess.Do(func(l *core.Ledger) {
		snap = recalculate(l)
	})
	return snap
}

func (s *BudgetService) publish(ctx context.Context, ev events.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.LogError(ctx, "Failed to publish ledger event", err, log.ComponentEvents, log.OpPublish,
			log.NewFields().WithSessionID(ev.SessionID))
	}
}

func recalculate(l *core.Ledger) Snapshot {
	summary := l.Recalculate()
	return Snapshot{
		Summary:     summary,
		Incomes:     l.Incomes(),
		Expenses:    l.Expenses(),
		Percentages: l.ExpensePercentages(),
	}
}

func entryFields(sessionID string, kind core.Kind, id int, sum core.BudgetSummary) log.LogFields {
	return log.NewFields().
		WithSessionID(sessionID).
		WithEntry(kind.String(), id, "", "").
		WithSummary(sum.Budget.StringFixed(2), sum.TotalIncome.StringFixed(2), sum.TotalExpense.StringFixed(2), sum.ExpensePercentage)
}
