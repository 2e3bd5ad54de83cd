package models

import "time"

// Notification types carried in push payloads.
const (
	NotifTypeChat = "chat"
	NotifTypeTask = "notification"
)

// Notification messages for task-scoped events.
const (
	MsgOfferReceived = "received offer"
	MsgOfferAccepted = "offer accepted"
	MsgTaskCancelled = "task cancelled"
	MsgTaskCompleted = "task completed"
)

type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message,omitempty"`
	TaskID    string    `json:"taskId,omitempty"`
	ChatID    string    `json:"chatId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Category is the badge dimension a notification counts toward: "chat" for
// chat messages, otherwise the task-scoped message.
func (n Notification) Category() string {
	if n.Type == NotifTypeChat {
		return "chat"
	}
	return n.Message
}
