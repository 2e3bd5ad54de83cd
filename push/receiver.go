package push

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskmate/models"
	"taskmate/services/session"
	"taskmate/utils"
)

// GatewayReceiver implements Transport over HTTP: the push gateway POSTs
// deliveries to this agent's local endpoint. The device token identifies
// this installation to the gateway and is persisted across restarts under
// the fcmToken key.
type GatewayReceiver struct {
	store  session.TokenStore
	logger *zap.Logger

	mu        sync.Mutex
	handlers  []Handler
	listeners []func(token string)
}

func NewGatewayReceiver(store session.TokenStore) *GatewayReceiver {
	return &GatewayReceiver{
		store:  store,
		logger: utils.GetLogger(),
	}
}

func (r *GatewayReceiver) OnMessage(fn Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, fn)
}

// Token returns the device token, minting and persisting one on first use.
func (r *GatewayReceiver) Token(ctx context.Context) (string, error) {
	token, err := r.store.Get(ctx, session.FCMTokenKey)
	if err != nil {
		return "", err
	}
	if token != "" {
		return token, nil
	}
	token = uuid.New().String()
	if err := r.store.Set(ctx, session.FCMTokenKey, token); err != nil {
		return "", fmt.Errorf("failed to persist device token: %w", err)
	}
	return token, nil
}

func (r *GatewayReceiver) OnTokenRefresh(fn func(token string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// RotateToken mints a replacement device token and notifies listeners so the
// new token gets re-registered with the marketplace API.
func (r *GatewayReceiver) RotateToken(ctx context.Context) (string, error) {
	token := uuid.New().String()
	if err := r.store.Set(ctx, session.FCMTokenKey, token); err != nil {
		return "", fmt.Errorf("failed to persist rotated device token: %w", err)
	}

	r.mu.Lock()
	listeners := append([]func(string){}, r.listeners...)
	r.mu.Unlock()
	for _, fn := range listeners {
		fn(token)
	}
	return token, nil
}

// HandleDelivery accepts one gateway delivery and dispatches it to the
// registered handlers. Malformed payloads are acknowledged and dropped; the
// gateway would otherwise redeliver them forever.
func (r *GatewayReceiver) HandleDelivery(c *gin.Context) {
	var payload models.PushPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		r.logger.Debug("Dropping malformed push delivery", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "dropped"})
		return
	}
	if payload.MessageID == "" {
		c.JSON(http.StatusOK, gin.H{"status": "dropped"})
		return
	}

	r.mu.Lock()
	handlers := append([]Handler{}, r.handlers...)
	r.mu.Unlock()
	for _, fn := range handlers {
		fn(payload)
	}
	c.JSON(http.StatusOK, gin.H{"status": "delivered"})
}

// HandleRotate exposes token rotation to the gateway.
func (r *GatewayReceiver) HandleRotate(c *gin.Context) {
	token, err := r.RotateToken(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to rotate device token", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
