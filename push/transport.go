package push

import (
	"context"

	"taskmate/models"
)

// Handler consumes one push delivery. Delivery is at-least-once with no
// ordering guarantee; handlers must tolerate duplicates.
type Handler func(models.PushPayload)

// Transport is the external push delivery collaborator: it forwards gateway
// deliveries to registered handlers and manages the device token lifecycle.
type Transport interface {
	OnMessage(fn Handler)
	Token(ctx context.Context) (string, error)
	OnTokenRefresh(fn func(token string))
}
