package services

import (
	"context"
	"errors"
	"testing"

	"docchat/data"
	"docchat/remote"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	calls     []remote.QueryRequest
	resp      remote.QueryResponse
	err       error
	panicWith any
	onCall    func()
}

func (f *fakeQuerier) Query(ctx context.Context, q remote.QueryRequest) (remote.QueryResponse, error) {
	f.calls = append(f.calls, q)
	if f.onCall != nil {
		f.onCall()
	}
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.resp, f.err
}

func newDispatcher(selected ...string) (*QueryDispatcher, *data.ConversationStore, *DatabaseSelector) {
	store := data.NewConversationStore()
	selector := NewDatabaseSelector()
	selector.SetAvailable(selected)
	return NewQueryDispatcher(store, selector), store, selector
}

func TestSubmit_WhitespaceIsIgnored(t *testing.T) {
	d, store, _ := newDispatcher("docs")

	for _, input := range []string{"", "   ", "\t\n "} {
		req, outcome := d.Submit(input)
		assert.Equal(t, OutcomeIgnored, outcome)
		assert.Equal(t, Request{}, req)
	}

	assert.Equal(t, 0, store.Len())
	assert.False(t, d.Busy())
}

func TestSubmit_NoDatabaseSelected(t *testing.T) {
	d, store, _ := newDispatcher()
	q := &fakeQuerier{}

	outcome := d.Run(context.Background(), q, "what is the fee?")

	assert.Equal(t, OutcomeNoDatabase, outcome)
	assert.Empty(t, q.calls)
	assert.False(t, d.Busy())
	assert.Equal(t, []data.Turn{data.BotTurn(NoDatabaseText)}, store.Turns())
}

func TestSubmit_NoDatabaseNeverTouchesBusy(t *testing.T) {
	d, _, _ := newDispatcher()

	var flips []bool
	d.OnBusyChange(func(b bool) { flips = append(flips, b) })

	_, outcome := d.Submit("hello")
	assert.Equal(t, OutcomeNoDatabase, outcome)
	assert.Empty(t, flips)
}

func TestSubmit_AppendsUserTurnBeforeResolution(t *testing.T) {
	d, store, _ := newDispatcher("docs")

	req, outcome := d.Submit("hello")
	require.Equal(t, OutcomeDispatched, outcome)

	assert.True(t, d.Busy())
	assert.Equal(t, []data.Turn{{Sender: data.SenderUser, Text: "hello"}}, store.Turns())
	assert.Equal(t, "hello", req.Query)
	assert.Equal(t, "docs", req.Database)
	assert.NotEmpty(t, req.ID)

	q := &fakeQuerier{resp: remote.QueryResponse{Answer: "42"}}
	require.True(t, d.Resolve(Execute(context.Background(), q, req)))

	assert.False(t, d.Busy())
	want := []data.Turn{
		{Sender: data.SenderUser, Text: "hello"},
		{Sender: data.SenderBot, Text: "42"},
	}
	if diff := cmp.Diff(want, store.Turns()); diff != "" {
		t.Errorf("turns mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []remote.QueryRequest{{Query: "hello", Database: "docs"}}, q.calls)
}

func TestRun_StateDuringRemoteCall(t *testing.T) {
	d, store, _ := newDispatcher("docs")

	q := &fakeQuerier{resp: remote.QueryResponse{Answer: "42"}}
	q.onCall = func() {
		assert.True(t, d.Busy())
		last, ok := store.Last()
		require.True(t, ok)
		assert.Equal(t, data.UserTurn("hello"), last)
	}

	assert.Equal(t, OutcomeDispatched, d.Run(context.Background(), q, "hello"))
	assert.False(t, d.Busy())
	assert.Equal(t, 2, store.Len())
}

func TestSubmit_KeepsRawText(t *testing.T) {
	d, store, _ := newDispatcher("docs")
	q := &fakeQuerier{resp: remote.QueryResponse{Answer: "ok"}}

	d.Run(context.Background(), q, "  padded question ")

	first, _ := store.At(0)
	assert.Equal(t, "  padded question ", first.Text)
	assert.Equal(t, "  padded question ", q.calls[0].Query)
}

func TestResolve_EmptyPayloadFallsBack(t *testing.T) {
	d, store, _ := newDispatcher("docs")

	d.Run(context.Background(), &fakeQuerier{}, "hello")

	last, ok := store.Last()
	require.True(t, ok)
	assert.Equal(t, data.BotTurn(NoResponseText), last)
}

func TestResolve_CarriesImageAndSource(t *testing.T) {
	d, store, _ := newDispatcher("docs")
	q := &fakeQuerier{resp: remote.QueryResponse{
		Answer: "Fees are 2%.",
		Image:  "manual_p4.png",
		Source: "manual.pdf, p. 4",
	}}

	d.Run(context.Background(), q, "fees?")

	last, _ := store.Last()
	assert.Equal(t, data.EvidenceTurn("Fees are 2%.", "manual_p4.png", "manual.pdf, p. 4"), last)
}

func TestResolve_ImageWithoutAnswer(t *testing.T) {
	d, store, _ := newDispatcher("docs")

	d.Run(context.Background(), &fakeQuerier{resp: remote.QueryResponse{Image: "p.png"}}, "q")

	last, _ := store.Last()
	assert.Equal(t, NoResponseText, last.Text)
	assert.Equal(t, "p.png", last.Image)
}

func TestResolve_FailureBecomesNetworkError(t *testing.T) {
	d, store, _ := newDispatcher("docs")

	var flips []bool
	d.OnBusyChange(func(b bool) { flips = append(flips, b) })

	q := &fakeQuerier{
		resp: remote.QueryResponse{Answer: "ignored", Image: "x.png"},
		err:  errors.New("connection refused"),
	}
	d.Run(context.Background(), q, "hello")

	last, _ := store.Last()
	assert.Equal(t, data.BotTurn(NetworkErrorText), last)
	assert.False(t, d.Busy())
	assert.Equal(t, []bool{true, false}, flips)
}

func TestResolve_MalformedPayloadBecomesNetworkError(t *testing.T) {
	d, store, _ := newDispatcher("docs")

	d.Run(context.Background(), &fakeQuerier{err: remote.ErrMalformedPayload}, "hello")

	last, _ := store.Last()
	assert.Equal(t, NetworkErrorText, last.Text)
	assert.False(t, d.Busy())
}

func TestExecute_RecoversPanics(t *testing.T) {
	d, store, _ := newDispatcher("docs")

	assert.NotPanics(t, func() {
		d.Run(context.Background(), &fakeQuerier{panicWith: "boom"}, "hello")
	})

	last, _ := store.Last()
	assert.Equal(t, NetworkErrorText, last.Text)
	assert.False(t, d.Busy())
}

func TestSubmit_RejectedWhileBusy(t *testing.T) {
	d, store, _ := newDispatcher("docs")

	first, outcome := d.Submit("first")
	require.Equal(t, OutcomeDispatched, outcome)

	_, outcome = d.Submit("second")
	assert.Equal(t, OutcomeBusy, outcome)
	assert.Equal(t, 1, store.Len())
	assert.True(t, d.Busy())

	require.True(t, d.Resolve(Result{RequestID: first.ID, Response: remote.QueryResponse{Answer: "a"}}))

	_, outcome = d.Submit("second")
	assert.Equal(t, OutcomeDispatched, outcome)
}

func TestResolve_StaleResultIgnored(t *testing.T) {
	d, store, _ := newDispatcher("docs")

	req, _ := d.Submit("hello")

	assert.False(t, d.Resolve(Result{RequestID: "someone-else", Response: remote.QueryResponse{Answer: "x"}}))
	assert.True(t, d.Busy())
	assert.Equal(t, 1, store.Len())

	assert.True(t, d.Resolve(Result{RequestID: req.ID}))
	assert.False(t, d.Resolve(Result{RequestID: req.ID}), "a result is reconciled once")
	assert.Equal(t, 2, store.Len())
}

func TestSubmit_CapturesSelectionAtSubmitTime(t *testing.T) {
	d, _, selector := newDispatcher("docs", "manuals")
	q := &fakeQuerier{resp: remote.QueryResponse{Answer: "ok"}}

	req, _ := d.Submit("hello")
	selector.Select("manuals")
	d.Resolve(Execute(context.Background(), q, req))

	assert.Equal(t, "docs", q.calls[0].Database)
}

func TestConversationOrder_NoInterleaving(t *testing.T) {
	d, store, _ := newDispatcher("docs")
	q := &fakeQuerier{resp: remote.QueryResponse{Answer: "answer"}}

	for _, input := range []string{"one", "  ", "two", "three"} {
		d.Run(context.Background(), q, input)
	}

	turns := store.Turns()
	require.Len(t, turns, 6)
	for i := 0; i < len(turns); i += 2 {
		assert.Equal(t, data.SenderUser, turns[i].Sender)
		assert.Equal(t, data.SenderBot, turns[i+1].Sender)
	}
	assert.Equal(t, []string{"one", "two", "three"}, []string{turns[0].Text, turns[2].Text, turns[4].Text})
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "ignored", OutcomeIgnored.String())
	assert.Equal(t, "no-database", OutcomeNoDatabase.String())
	assert.Equal(t, "busy", OutcomeBusy.String())
	assert.Equal(t, "dispatched", OutcomeDispatched.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}
