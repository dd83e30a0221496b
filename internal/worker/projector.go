// Package worker consumes ledger events published by the web server.
package worker

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"budgeter/internal/events"
	"budgeter/internal/log"
)

// SessionTotals is the latest known state of one session's ledger.
type SessionTotals struct {
	SessionID         string
	Budget            string
	TotalIncome       string
	TotalExpense      string
	ExpensePercentage int
	Added             int
	Deleted           int
	UpdatedAt         time.Time
}

// Projector folds the event stream into per-session totals and optionally
// prints one line per event.
type Projector struct {
	mu       sync.Mutex
	sessions map[string]*SessionTotals
	applied  map[string]struct{}
	out      io.Writer
	logger   *log.Logger
}

// NewProjector creates a projector. out may be nil.
func NewProjector(out io.Writer, logger *log.Logger) *Projector {
	if logger == nil {
		logger = log.Discard()
	}
	return &Projector{
		sessions: make(map[string]*SessionTotals),
		applied:  make(map[string]struct{}),
		out:      out,
		logger:   logger.WithComponent(log.ComponentEvents),
	}
}

// Handler adapts the projector to events.Client.Consume.
func (p *Projector) Handler(ctx context.Context) func(events.LedgerEvent) error {
	return func(ev events.LedgerEvent) error {
		return p.Handle(ctx, ev)
	}
}

// Handle applies one event. Events older than the last one seen for the same
// session are counted but do not overwrite the totals. A redelivered event
// (same ID) is printed again but not applied twice.
func (p *Projector) Handle(ctx context.Context, ev events.LedgerEvent) error {
	p.mu.Lock()
	if _, dup := p.applied[ev.ID]; dup && ev.ID != "" {
		p.mu.Unlock()
		p.logger.DebugContext(ctx, "Ledger event already applied", "event_id", ev.ID, log.FieldSessionID, ev.SessionID)
		return p.print(ev)
	}
	if ev.ID != "" {
		p.applied[ev.ID] = struct{}{}
	}

	st, ok := p.sessions[ev.SessionID]
	if !ok {
		st = &SessionTotals{SessionID: ev.SessionID}
		p.sessions[ev.SessionID] = st
	}

	switch ev.Type {
	case events.EntryAdded:
		st.Added++
	case events.EntryDeleted:
		st.Deleted++
	}

	stale := ev.Timestamp.Before(st.UpdatedAt)
	if !stale {
		st.Budget = ev.Summary.Budget
		st.TotalIncome = ev.Summary.TotalIncome
		st.TotalExpense = ev.Summary.TotalExpense
		st.ExpensePercentage = ev.Summary.ExpensePercentage
		st.UpdatedAt = ev.Timestamp
	}
	p.mu.Unlock()

	p.logger.DebugContext(ctx, "Ledger event applied",
		log.FieldEventType, ev.Type,
		log.FieldSessionID, ev.SessionID,
		log.FieldEntryKind, ev.Entry.Kind,
		log.FieldEntryID, ev.Entry.ID,
		"stale", stale)

	return p.print(ev)
}

func (p *Projector) print(ev events.LedgerEvent) error {
	if p.out == nil {
		return nil
	}
	_, err := fmt.Fprintf(p.out, "%s %-13s %s %s-%d budget=%s income=%s expense=%s\n",
		ev.Timestamp.Format(time.RFC3339), ev.Type, shortID(ev.SessionID), ev.Entry.Kind, ev.Entry.ID,
		ev.Summary.Budget, ev.Summary.TotalIncome, ev.Summary.TotalExpense)
	if err != nil {
		return fmt.Errorf("write event line: %w", err)
	}
	return nil
}

// Totals returns a copy of the totals for a session.
func (p *Projector) Totals(sessionID string) (SessionTotals, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.sessions[sessionID]
	if !ok {
		return SessionTotals{}, false
	}
	return *st, true
}

// Snapshot returns every session's totals ordered by session id.
func (p *Projector) Snapshot() []SessionTotals {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]SessionTotals, 0, len(p.sessions))
	for _, st := range p.sessions {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
