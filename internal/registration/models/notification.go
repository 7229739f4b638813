package models

// Notification is an immutable message from one user to another, created by
// lifecycle transitions. Only the dismissed flag changes after creation.
// Notifications are deleted independently of the events they reference.
type Notification struct {
	ID               int64  `json:"id"`
	SenderDeviceID   string `json:"senderDeviceID"`
	ReceiverDeviceID string `json:"receiverDeviceID"`
	Header           string `json:"header"`
	Body             string `json:"body"`
	EventID          *int64 `json:"eventID,omitempty"`
	Dismissed        bool   `json:"dismissed"`
}
