package push

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"taskmate/models"
	"taskmate/services/session"
)

// Registrar forwards the device token to the marketplace API so the backend
// can address pushes at this installation. Re-run on every token rotation.
type Registrar struct {
	API       *session.Client
	Transport Transport
	DeviceID  string
}

// Register reads the current device token and registers it upstream.
func (r *Registrar) Register(ctx context.Context) error {
	token, err := r.Transport.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to read device token: %w", err)
	}
	return r.register(ctx, token)
}

// Watch re-registers whenever the transport rotates its token.
func (r *Registrar) Watch() {
	r.Transport.OnTokenRefresh(func(token string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// Best effort: a failed registration is retried on next rotation
		// or agent restart.
		_ = r.register(ctx, token)
	})
}

func (r *Registrar) register(ctx context.Context, token string) error {
	device := models.Device{
		DeviceID:     r.DeviceID,
		PushToken:    token,
		Platform:     runtime.GOOS,
		RegisteredAt: time.Now(),
	}
	resp, err := r.API.Do(ctx, session.Operation{
		Method: http.MethodPost,
		Path:   "/api/devices",
		Body:   device,
	})
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	if !resp.OK() {
		return fmt.Errorf("device registration rejected with status %d", resp.Status)
	}
	return nil
}
