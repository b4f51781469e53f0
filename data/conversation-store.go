package data

// ConversationStore holds the ordered, append-only turn history of a session.
// It is not safe for concurrent use; all access happens on the update loop.
type ConversationStore struct {
	turns     []Turn
	observers []func(Turn)
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{}
}

// Append adds turn to the tail and then notifies observers.
func (s *ConversationStore) Append(turn Turn) {
	s.turns = append(s.turns, turn)

	for _, fn := range s.observers {
		fn(turn)
	}
}

// Subscribe registers fn to be called after every Append.
func (s *ConversationStore) Subscribe(fn func(Turn)) {
	if fn == nil {
		return
	}
	s.observers = append(s.observers, fn)
}

// Turns returns a copy of the history in chronological order.
func (s *ConversationStore) Turns() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

func (s *ConversationStore) Len() int {
	return len(s.turns)
}

func (s *ConversationStore) At(i int) (Turn, bool) {
	if i < 0 || i >= len(s.turns) {
		return Turn{}, false
	}
	return s.turns[i], true
}

func (s *ConversationStore) Last() (Turn, bool) {
	return s.At(len(s.turns) - 1)
}

// LastWhere walks the history backwards and returns the newest turn matching fn.
func (s *ConversationStore) LastWhere(fn func(Turn) bool) (Turn, int, bool) {
	for i := len(s.turns) - 1; i >= 0; i-- {
		if fn(s.turns[i]) {
			return s.turns[i], i, true
		}
	}
	return Turn{}, -1, false
}
