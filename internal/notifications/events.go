package notifications

import "encoding/json"

// Event types sent over the realtime channel. Each carries the changed row
// so clients merge it in place instead of re-fetching.
const (
	EventNotificationCreated  = "notification_created"
	EventNotificationUpdated  = "notification_updated"
	EventNotificationsReadAll = "notifications_read_all"
	EventMessageCreated       = "message_created"
	EventMessagesRead         = "messages_read"
	EventMessagesDropped      = "messages_dropped"
	EventPong                 = "pong"
)

// Event is the envelope published to a user channel and written to sockets.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ReadAllPayload accompanies EventNotificationsReadAll.
type ReadAllPayload struct {
	Count int64 `json:"count"`
}

// MessagesReadPayload tells a sender that the reader caught up.
type MessagesReadPayload struct {
	ReaderID uint  `json:"reader_id"`
	Count    int64 `json:"count"`
}

// Encode marshals an event envelope.
func Encode(eventType string, payload interface{}) ([]byte, error) {
	return json.Marshal(Event{Type: eventType, Payload: payload})
}

var dropNotice = mustEncode(EventMessagesDropped, map[string]string{"reason": "buffer_full"})

func mustEncode(eventType string, payload interface{}) []byte {
	b, err := Encode(eventType, payload)
	if err != nil {
		panic(err)
	}
	return b
}
