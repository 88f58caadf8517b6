package chat

import "time"

// Message is a single turn in the conversation log. Identifiers are assigned
// by the store at append time and increase strictly within one store instance.
type Message struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Incoming  bool      `json:"isIncoming"`
	CreatedAt time.Time `json:"createdAt"`
}

// UIState is the projection of store + input state consumed by clients.
type UIState struct {
	Messages  []Message `json:"messages"`
	DraftText string    `json:"draftText"`
	IsSending bool      `json:"isSending"`
}
