package models

import "time"

const (
	OfferStatusPending  = "pending"
	OfferStatusAccepted = "accepted"
	OfferStatusDeclined = "declined"
)

type Offer struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId"`
	TaskerID  string    `json:"taskerId"`
	Amount    float64   `json:"amount"`
	Message   string    `json:"message,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
