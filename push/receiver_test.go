package push

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmate/models"
	"taskmate/services/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(r *GatewayReceiver) *gin.Engine {
	router := gin.New()
	router.POST("/push/deliver", r.HandleDelivery)
	router.POST("/push/rotate", r.HandleRotate)
	return router
}

func TestGatewayReceiver_DeliveryReachesHandlers(t *testing.T) {
	t.Parallel()

	receiver := NewGatewayReceiver(session.NewMemoryTokenStore())
	var got []models.PushPayload
	receiver.OnMessage(func(p models.PushPayload) { got = append(got, p) })

	router := newTestRouter(receiver)
	body := `{"messageId":"m1","data":{"type":"chat","chatId":"7"}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/push/deliver", bytes.NewBufferString(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].MessageID)
	assert.Equal(t, "chat", got[0].Data.Type)
	assert.Equal(t, "7", got[0].Data.ChatID)
}

func TestGatewayReceiver_MalformedDeliveryDropped(t *testing.T) {
	t.Parallel()

	receiver := NewGatewayReceiver(session.NewMemoryTokenStore())
	var calls int
	receiver.OnMessage(func(models.PushPayload) { calls++ })

	router := newTestRouter(receiver)
	for _, body := range []string{`not json`, `{"data":{"type":"chat"}}`} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/push/deliver", bytes.NewBufferString(body))
		router.ServeHTTP(w, req)
		// Acknowledged so the gateway stops redelivering.
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Zero(t, calls)
}

func TestGatewayReceiver_TokenMintedOnceAndPersisted(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryTokenStore()
	receiver := NewGatewayReceiver(store)

	first, err := receiver.Token(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := receiver.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stored, err := store.Get(context.Background(), session.FCMTokenKey)
	require.NoError(t, err)
	assert.Equal(t, first, stored)
}

func TestGatewayReceiver_RotateNotifiesListeners(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryTokenStore()
	receiver := NewGatewayReceiver(store)

	old, err := receiver.Token(context.Background())
	require.NoError(t, err)

	var rotatedTo string
	receiver.OnTokenRefresh(func(token string) { rotatedTo = token })

	fresh, err := receiver.RotateToken(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, old, fresh)
	assert.Equal(t, fresh, rotatedTo)

	stored, err := store.Get(context.Background(), session.FCMTokenKey)
	require.NoError(t, err)
	assert.Equal(t, fresh, stored)
}
