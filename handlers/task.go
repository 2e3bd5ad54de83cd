package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"taskmate/models"
	"taskmate/services/task"
	"taskmate/utils"
)

type TaskHandler struct {
	Service task.TaskService
}

func NewTaskHandler(service task.TaskService) *TaskHandler {
	return &TaskHandler{Service: service}
}

func (h *TaskHandler) PostTaskHandler(c *gin.Context) {
	var t models.Task
	if err := c.ShouldBindJSON(&t); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid task", err.Error())
		return
	}
	created, err := h.Service.PostTask(c.Request.Context(), t)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "Failed to post task", err.Error())
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *TaskHandler) ListTasksHandler(c *gin.Context) {
	f := task.Filter{
		Status: c.Query("status"),
		Query:  c.Query("q"),
		SortBy: c.Query("sort"),
	}
	if v := c.Query("minBudget"); v != "" {
		f.MinBudget, _ = strconv.ParseFloat(v, 64)
	}
	if v := c.Query("maxBudget"); v != "" {
		f.MaxBudget, _ = strconv.ParseFloat(v, 64)
	}

	tasks, err := h.Service.ListTasks(c.Request.Context(), f)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "Failed to list tasks", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TaskHandler) GetTaskHandler(c *gin.Context) {
	t, err := h.Service.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "Failed to fetch task", err.Error())
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TaskHandler) CancelTaskHandler(c *gin.Context) {
	if err := h.Service.CancelTask(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusBadGateway, "Failed to cancel task", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

func (h *TaskHandler) CompleteTaskHandler(c *gin.Context) {
	if err := h.Service.CompleteTask(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusBadGateway, "Failed to complete task", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "completed"})
}

func (h *TaskHandler) PostReviewHandler(c *gin.Context) {
	var r models.Review
	if err := c.ShouldBindJSON(&r); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid review", err.Error())
		return
	}
	r.TaskID = c.Param("id")
	if err := h.Service.PostReview(c.Request.Context(), r); err != nil {
		utils.JSONError(c, http.StatusBadGateway, "Failed to post review", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "ok"})
}
