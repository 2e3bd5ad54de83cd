package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmate/config"
	"taskmate/services/notification"
	"taskmate/services/session"
	"taskmate/services/task"
	"taskmate/utils"
)

type NotificationHandler struct {
	Aggregator *notification.Aggregator
	Tasks      task.TaskService
	Client     *session.Client
}

func NewNotificationHandler(agg *notification.Aggregator, tasks task.TaskService, client *session.Client) *NotificationHandler {
	return &NotificationHandler{Aggregator: agg, Tasks: tasks, Client: client}
}

// ListHandler returns the session's notification records, most recent first.
func (h *NotificationHandler) ListHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.Aggregator.All()})
}

// RefreshHandler resyncs the collection against the server's canonical list.
// Called by the UI on cold start and screen focus.
func (h *NotificationHandler) RefreshHandler(c *gin.Context) {
	if err := h.Aggregator.FetchAll(c.Request.Context()); err != nil {
		utils.JSONError(c, http.StatusBadGateway, "Failed to refresh notifications", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": h.Aggregator.All()})
}

func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		utils.JSONError(c, http.StatusBadRequest, "Missing notification id", "")
		return
	}
	h.Aggregator.MarkRead(id)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type clearRequest struct {
	Category string `json:"category" binding:"required"`
	TaskID   string `json:"taskId" binding:"required"`
}

// ClearHandler dismisses every notification scoped to one task and category,
// used when the user opens that task's detail view.
func (h *NotificationHandler) ClearHandler(c *gin.Context) {
	var req clearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid clear request", err.Error())
		return
	}
	h.Aggregator.ClearByCategoryAndTask(req.Category, req.TaskID)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// BadgesHandler derives the per-tab and per-task unread counts. The task
// list fetch is best-effort: on failure the badge derivation runs over
// whatever role split an empty list yields rather than erroring the UI.
func (h *NotificationHandler) BadgesHandler(c *gin.Context) {
	user := h.Client.CurrentUser()
	if user == nil {
		c.JSON(http.StatusOK, notification.TabBadges{PerTask: map[string]int{}})
		return
	}

	tasks, err := h.Tasks.ListTasks(c.Request.Context(), task.Filter{})
	if err != nil {
		tasks = nil
	}
	requester, tasker := task.SplitByRole(tasks, user.UID)

	mapping := notification.TabMapping{
		Requester: config.AppConfig.RequesterBadgeTypes,
		Tasker:    config.AppConfig.TaskerBadgeTypes,
	}
	c.JSON(http.StatusOK, h.Aggregator.TabCounts(mapping, requester, tasker))
}
