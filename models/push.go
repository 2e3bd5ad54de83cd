package models

// PushData is the open-ended data section of a push delivery. Type is the
// only field ingestion requires; everything else is optional.
type PushData struct {
	Type        string `json:"type"`
	MessageType string `json:"messageType,omitempty"`
	TaskID      string `json:"taskId,omitempty"`
	ChatID      string `json:"chatId,omitempty"`
	Screen      string `json:"screen,omitempty"`
	Params      string `json:"params,omitempty"`
}

// PushAlert is the user-visible portion of a delivery, rendered by the OS.
type PushAlert struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// PushPayload is one delivery from the push gateway. MessageID is unique per
// delivery and is what makes re-deliveries detectable.
type PushPayload struct {
	MessageID    string     `json:"messageId"`
	Notification *PushAlert `json:"notification,omitempty"`
	Data         PushData   `json:"data"`
}
