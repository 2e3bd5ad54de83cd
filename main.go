package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskmate/config"
	"taskmate/handlers"
	"taskmate/push"
	"taskmate/routes"
	"taskmate/services/chat"
	"taskmate/services/notification"
	"taskmate/services/offer"
	"taskmate/services/session"
	"taskmate/services/task"
	"taskmate/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	// Token store: Redis when reachable, in-process otherwise.
	var store session.TokenStore
	redisClient, err := session.NewRedisClient(
		config.AppConfig.RedisAddr,
		config.AppConfig.RedisPassword,
		config.AppConfig.RedisTokenDB,
	)
	if err != nil {
		logger.Sugar().Warnf("main: redis unavailable, tokens will not survive restarts: %v", err)
		store = session.NewMemoryTokenStore()
	} else {
		store = session.NewRedisTokenStore(redisClient)
	}

	provider := session.NewFirebaseProvider(
		config.AppConfig.FirebaseAPIKey,
		config.AppConfig.FirebaseAuthURL,
		config.AppConfig.FirebaseTokenURL,
	)
	apiClient := session.NewClient(
		config.AppConfig.APIBaseURL,
		provider,
		store,
		config.AppConfig.APIRateLimit,
		config.AppConfig.APIBurst,
	)

	// services.
	taskService := &task.DefaultTaskService{API: apiClient}
	offerService := &offer.DefaultOfferService{API: apiClient}
	chatService := &chat.DefaultChatService{API: apiClient}
	aggregator := notification.NewAggregator(notification.NewAPIFetcher(apiClient))

	// A terminal auth failure drops the session's notifications with it.
	apiClient.OnSessionReset(aggregator.Reset)

	// Push transport: deliveries feed the aggregator, token rotations are
	// re-registered upstream.
	receiver := push.NewGatewayReceiver(store)
	receiver.OnMessage(aggregator.Ingest)
	registrar := &push.Registrar{
		API:       apiClient,
		Transport: receiver,
		DeviceID:  uuid.New().String(),
	}
	registrar.Watch()
	if err := registrar.Register(context.Background()); err != nil {
		logger.Sugar().Warnf("main: device registration failed, pushes may not arrive: %v", err)
	}

	// Create the Gin router for the local UI surface.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	routes.RegisterRoutes(router, &routes.Handlers{
		Session:      handlers.NewSessionHandler(apiClient),
		Notification: handlers.NewNotificationHandler(aggregator, taskService, apiClient),
		Task:         handlers.NewTaskHandler(taskService),
		Offer:        handlers.NewOfferHandler(offerService),
		Chat:         handlers.NewChatHandler(chatService),
		Receiver:     receiver,
	})

	// Start the local HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "4780"
	}
	srv := &http.Server{
		Addr:    "127.0.0.1:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting agent on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: agent failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: agent is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: agent forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: agent stopped gracefully")
}
