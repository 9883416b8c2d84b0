package chat

import "modelhub/internal/provider"

// EventType names the kind of a stream event
type EventType string

const (
	EventStart        EventType = "start"
	EventChunk        EventType = "chunk"
	EventDone         EventType = "done"
	EventStopped      EventType = "stopped"
	EventNotification EventType = "notification"
)

// Notification is a user-visible message raised by the orchestrator
type Notification struct {
	Level   string `json:"level"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Event is one frame delivered to a Send sink
type Event struct {
	Type           EventType       `json:"type"`
	Content        string          `json:"content,omitempty"`
	ConversationID string          `json:"conversation_id,omitempty"`
	Provider       string          `json:"provider,omitempty"`
	Model          string          `json:"model,omitempty"`
	Usage          *provider.Usage `json:"usage,omitempty"`
	Notification   *Notification   `json:"notification,omitempty"`
}

// Sink receives stream events; returning an error aborts the stream
type Sink func(Event) error
