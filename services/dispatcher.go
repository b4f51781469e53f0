package services

import (
	"strings"

	"docchat/data"
	"docchat/logger"
	"docchat/remote"

	"github.com/google/uuid"
)

const (
	NoDatabaseText   = "No database selected."
	NoResponseText   = "No response."
	NetworkErrorText = "Network error."
)

// Outcome tells the caller what Submit did.
type Outcome int

const (
	// OutcomeIgnored: the trimmed input was empty, nothing changed.
	OutcomeIgnored Outcome = iota
	// OutcomeNoDatabase: a synthetic bot turn was appended, no request issued.
	OutcomeNoDatabase
	// OutcomeBusy: another query is in flight, nothing changed.
	OutcomeBusy
	// OutcomeDispatched: the user turn was appended and the request must be executed.
	OutcomeDispatched
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeNoDatabase:
		return "no-database"
	case OutcomeBusy:
		return "busy"
	case OutcomeDispatched:
		return "dispatched"
	}
	return "unknown"
}

// Request is one validated submit, with the selection captured at submit time.
type Request struct {
	ID       string
	Query    string
	Database string
}

// Result is the settled remote call for a Request.
type Result struct {
	RequestID string
	Response  remote.QueryResponse
	Err       error
}

// QueryDispatcher runs the submit-to-resolution cycle against a conversation
// and a database selection. Submit and Resolve are state transitions only;
// the remote call itself is performed by Execute.
type QueryDispatcher struct {
	store    *data.ConversationStore
	selector *DatabaseSelector

	busy     bool
	inflight string

	busyObservers []func(bool)
}

func NewQueryDispatcher(store *data.ConversationStore, selector *DatabaseSelector) *QueryDispatcher {
	return &QueryDispatcher{store: store, selector: selector}
}

func (d *QueryDispatcher) Busy() bool {
	return d.busy
}

// OnBusyChange registers fn to be called after the busy flag flips.
func (d *QueryDispatcher) OnBusyChange(fn func(bool)) {
	if fn != nil {
		d.busyObservers = append(d.busyObservers, fn)
	}
}

// Submit validates rawText and, when a query has to be issued, appends the
// user turn and sets the busy flag before returning the request.
func (d *QueryDispatcher) Submit(rawText string) (Request, Outcome) {
	if strings.TrimSpace(rawText) == "" {
		return Request{}, OutcomeIgnored
	}

	if d.busy {
		logger.Log.Warnw("submit rejected while busy", "inflight", d.inflight)
		return Request{}, OutcomeBusy
	}

	database, ok := d.selector.Selected()
	if !ok {
		d.store.Append(data.BotTurn(NoDatabaseText))
		return Request{}, OutcomeNoDatabase
	}

	req := Request{
		ID:       uuid.NewString(),
		Query:    rawText,
		Database: database,
	}

	d.store.Append(data.UserTurn(rawText))
	d.inflight = req.ID
	d.setBusy(true)

	logger.Log.Infow("query dispatched", "request", req.ID, "database", database)
	return req, OutcomeDispatched
}

// Resolve reconciles the result of the in-flight request into the
// conversation and clears the busy flag. Results for any other request are
// dropped and false is returned.
func (d *QueryDispatcher) Resolve(res Result) bool {
	if !d.busy || res.RequestID != d.inflight {
		logger.Log.Warnw("stale result dropped", "request", res.RequestID, "inflight", d.inflight)
		return false
	}

	if res.Err != nil {
		logger.Log.Errorw("query failed", "request", res.RequestID, "error", res.Err)
		d.store.Append(data.BotTurn(NetworkErrorText))
	} else {
		d.store.Append(answerTurn(res.Response))
		logger.Log.Infow("query answered", "request", res.RequestID)
	}

	d.inflight = ""
	d.setBusy(false)
	return true
}

func answerTurn(resp remote.QueryResponse) data.Turn {
	text := string(resp.Answer)
	if text == "" {
		text = NoResponseText
	}
	return data.EvidenceTurn(text, string(resp.Image), string(resp.Source))
}

func (d *QueryDispatcher) setBusy(busy bool) {
	if d.busy == busy {
		return
	}
	d.busy = busy
	for _, fn := range d.busyObservers {
		fn(busy)
	}
}
