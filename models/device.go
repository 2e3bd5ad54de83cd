package models

import "time"

// Device is the registration record forwarded to the marketplace API so the
// backend can address pushes at this installation.
type Device struct {
	DeviceID     string    `json:"deviceId"`
	PushToken    string    `json:"pushToken"`
	Platform     string    `json:"platform,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
}
