package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"taskmate/config"
	"taskmate/handlers"
	"taskmate/push"
)

// Handlers bundles everything the local surface serves.
type Handlers struct {
	Session      *handlers.SessionHandler
	Notification *handlers.NotificationHandler
	Task         *handlers.TaskHandler
	Offer        *handlers.OfferHandler
	Chat         *handlers.ChatHandler
	Receiver     *push.GatewayReceiver
}

// RegisterRoutes wires the local UI surface and the push gateway endpoints.
func RegisterRoutes(r *gin.Engine, h *Handlers) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.AppConfig.UIOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	session := r.Group("/api/session")
	{
		session.POST("/signin", h.Session.SignInHandler)
		session.POST("/signup", h.Session.SignUpHandler)
		session.POST("/signout", h.Session.SignOutHandler)
		session.GET("/status", h.Session.StatusHandler)
	}

	notifications := r.Group("/api/notifications")
	{
		notifications.GET("", h.Notification.ListHandler)
		notifications.POST("/refresh", h.Notification.RefreshHandler)
		notifications.POST("/read/:id", h.Notification.MarkReadHandler)
		notifications.POST("/clear", h.Notification.ClearHandler)
		notifications.GET("/badges", h.Notification.BadgesHandler)
	}

	tasks := r.Group("/api/tasks")
	{
		tasks.POST("", h.Task.PostTaskHandler)
		tasks.GET("", h.Task.ListTasksHandler)
		tasks.GET("/:id", h.Task.GetTaskHandler)
		tasks.POST("/:id/cancel", h.Task.CancelTaskHandler)
		tasks.POST("/:id/complete", h.Task.CompleteTaskHandler)
		tasks.POST("/:id/reviews", h.Task.PostReviewHandler)
		tasks.POST("/:id/offers", h.Offer.SubmitOfferHandler)
		tasks.GET("/:id/offers", h.Offer.ListOffersHandler)
		tasks.POST("/:id/offers/:offerId/accept", h.Offer.AcceptOfferHandler)
	}

	chats := r.Group("/api/chats")
	{
		chats.POST("/:id/messages", h.Chat.SendMessageHandler)
		chats.GET("/:id/messages", h.Chat.ListMessagesHandler)
	}

	gateway := r.Group("/push")
	{
		gateway.POST("/deliver", h.Receiver.HandleDelivery)
		gateway.POST("/rotate", h.Receiver.HandleRotate)
	}
}
