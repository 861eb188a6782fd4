package chat

import (
	"encoding/json"
	"time"
)

// Chat is a named room that users can be members of.
type Chat struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Message is a durably stored chat message. ID and SentAt are assigned by the store.
type Message struct {
	ID      int64     `json:"id"`
	RoomID  int64     `json:"room_id"`
	UserID  int64     `json:"user_id"`
	Content string    `json:"content"`
	SentAt  time.Time `json:"sent_at"`
}

// MarshalJSON renders SentAt as RFC 3339 in UTC so the zone is always explicit.
func (m Message) MarshalJSON() ([]byte, error) {
	type wire Message
	w := wire(m)
	w.SentAt = m.SentAt.UTC()
	return json.Marshal(w)
}
