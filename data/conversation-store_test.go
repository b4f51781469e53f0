package data

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppend_KeepsChronologicalOrder(t *testing.T) {
	store := NewConversationStore()

	store.Append(UserTurn("hello"))
	store.Append(BotTurn("hi"))
	store.Append(EvidenceTurn("see page 4", "manual_p4.png", "manual.pdf, p. 4"))

	want := []Turn{
		{Sender: SenderUser, Text: "hello"},
		{Sender: SenderBot, Text: "hi"},
		{Sender: SenderBot, Text: "see page 4", Image: "manual_p4.png", Source: "manual.pdf, p. 4"},
	}
	if diff := cmp.Diff(want, store.Turns()); diff != "" {
		t.Errorf("turns mismatch (-want +got):\n%s", diff)
	}
}

func TestAppend_AcceptsEmptyText(t *testing.T) {
	store := NewConversationStore()

	store.Append(BotTurn(""))

	assert.Equal(t, 1, store.Len())
	last, ok := store.Last()
	require.True(t, ok)
	assert.Equal(t, "", last.Text)
}

func TestAppend_NotifiesObserversAfterCommit(t *testing.T) {
	store := NewConversationStore()

	var seenLens []int
	var seenTurns []Turn
	store.Subscribe(func(turn Turn) {
		seenLens = append(seenLens, store.Len())
		seenTurns = append(seenTurns, turn)
	})
	store.Subscribe(nil)

	store.Append(UserTurn("a"))
	store.Append(BotTurn("b"))

	assert.Equal(t, []int{1, 2}, seenLens)
	assert.Equal(t, []Turn{UserTurn("a"), BotTurn("b")}, seenTurns)
}

func TestTurns_ReturnsCopy(t *testing.T) {
	store := NewConversationStore()
	store.Append(UserTurn("original"))

	turns := store.Turns()
	turns[0].Text = "changed"

	got, ok := store.At(0)
	require.True(t, ok)
	assert.Equal(t, "original", got.Text)
}

func TestAt_OutOfRange(t *testing.T) {
	store := NewConversationStore()

	_, ok := store.At(0)
	assert.False(t, ok)
	_, ok = store.At(-1)
	assert.False(t, ok)
	_, ok = store.Last()
	assert.False(t, ok)
}

func TestLastWhere(t *testing.T) {
	store := NewConversationStore()
	store.Append(EvidenceTurn("first", "a.png", ""))
	store.Append(UserTurn("q"))
	store.Append(EvidenceTurn("second", "b.png", ""))
	store.Append(BotTurn("no evidence"))

	turn, idx, ok := store.LastWhere(Turn.HasImage)
	require.True(t, ok)
	assert.Equal(t, 2, idx)
	assert.Equal(t, "b.png", turn.Image)

	_, idx, ok = store.LastWhere(func(Turn) bool { return false })
	assert.False(t, ok)
	assert.Equal(t, -1, idx)
}

func TestTurnPredicates(t *testing.T) {
	assert.True(t, UserTurn("x").IsUser())
	assert.False(t, BotTurn("x").IsUser())
	assert.False(t, BotTurn("x").HasImage())
	assert.True(t, EvidenceTurn("x", "p.png", "src").HasImage())
	assert.True(t, EvidenceTurn("x", "", "src").HasSource())
}
