package data

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Turn is one conversational entry. Turns are passed by value and never
// modified after construction.
type Turn struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
	Image  string `json:"image,omitempty"`
	Source string `json:"source,omitempty"`
}

func UserTurn(text string) Turn {
	return Turn{Sender: SenderUser, Text: text}
}

func BotTurn(text string) Turn {
	return Turn{Sender: SenderBot, Text: text}
}

// EvidenceTurn is a bot answer that may carry an image reference and a source label.
func EvidenceTurn(text, image, source string) Turn {
	return Turn{Sender: SenderBot, Text: text, Image: image, Source: source}
}

func (t Turn) IsUser() bool {
	return t.Sender == SenderUser
}

func (t Turn) HasImage() bool {
	return t.Image != ""
}

func (t Turn) HasSource() bool {
	return t.Source != ""
}
