package http

import (
	"errors"
	"net/http"
	"strings"

	"budgeter/internal/core"
	"budgeter/internal/log"
	"budgeter/internal/services"
)

// handleEntries dispatches /entries: POST adds, DELETE removes.
func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateEntry(w, r)
	case http.MethodDelete:
		s.handleDeleteEntry(w, r)
	default:
		MethodNotAllowedError("POST, DELETE").Write(w)
	}
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	if fail := RequirePOST(r); fail != nil {
		fail.Write(w)
		return
	}
	p, fail := ParseBodyOrFail(r)
	if fail != nil {
		fail.Write(w)
		return
	}

	in, err := NewAddEntryRequest(p).Parse()
	if err != nil {
		s.inputError(w, r, err)
		return
	}

	sess := s.session(w, r)
	entry, snap, err := s.service.AddEntry(r.Context(), sess, in.Kind, in.Description, in.Value)
	if err != nil {
		s.inputError(w, r, err)
		return
	}
	s.metrics.added.Add(1)

	switch {
	case p.IsJSON():
		writeJSON(w, http.StatusCreated, entryResponse{ID: entry.Ref(), Summary: newSummaryResponse(snap)})
	case isHTMX(r):
		s.writeLedger(w, r, snap, ledgerChanged(snap).
			TriggerFormReset().
			TriggerEntryAdded(entry.Ref()).
			TriggerSuccessNotification(entry.Kind.Label()+" added"))
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if fail := RequireDeleteOrPOST(r); fail != nil {
		fail.Write(w)
		return
	}
	p, fail := ParseBodyOrFail(r)
	if fail != nil {
		fail.Write(w)
		return
	}

	kind, id, err := ParseEntryRef(r, p)
	if err != nil {
		s.inputError(w, r, err)
		return
	}

	sess := s.session(w, r)
	snap, removed := s.service.DeleteEntry(r.Context(), sess, kind, id)
	if removed {
		s.metrics.deleted.Add(1)
	}

	switch {
	case p.IsJSON():
		writeJSON(w, http.StatusOK, newSummaryResponse(snap))
	case isHTMX(r):
		s.writeLedger(w, r, snap, ledgerChanged(snap).
			TriggerEntryDeleted(core.Entry{Kind: kind, ID: id}.Ref()))
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func ledgerChanged(snap services.Snapshot) *HTMXResponseBuilder {
	return NewHTMXResponse().TriggerLedgerUpdated(snap.Summary.Budget.StringFixed(2), snap.Summary.ExpensePercentage)
}

// inputError answers 422 for rejected input and 500 for anything else.
// htmx clients also get an error notification.
func (s *Server) inputError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	if !errors.Is(err, core.ErrInvalidInput) {
		log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Ledger update failed", err, log.ComponentLedger, log.OpCreate,
			log.LogFields{"error_type": log.ErrorTypeInternal})
		const msg = "Unable to update the budget"
		notifyHTMX(r, InternalServerError(msg), msg).Write(w)
		return
	}

	log.FromContext(ctx).DebugContext(ctx, "Rejected ledger input",
		log.FieldError, err.Error(),
		"error_type", log.ErrorTypeValidation)
	msg := userMessage(err)
	notifyHTMX(r, UnprocessableEntityError(msg), msg).Write(w)
}

// notifyHTMX adds an error notification for htmx requests.
func notifyHTMX(r *http.Request, resp *HTMXResponseBuilder, message string) *HTMXResponseBuilder {
	if isHTMX(r) {
		resp.TriggerErrorNotification(message)
	}
	return resp
}

// userMessage strips the wrapping prefixes from a validation error.
func userMessage(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, core.ErrInvalidInput.Error()+": "); i >= 0 {
		msg = msg[i+len(core.ErrInvalidInput.Error())+2:]
	}
	if msg == "" {
		return "Invalid input"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
