package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmate/models"
	"taskmate/services/chat"
	"taskmate/utils"
)

type ChatHandler struct {
	Service chat.ChatService
}

func NewChatHandler(service chat.ChatService) *ChatHandler {
	return &ChatHandler{Service: service}
}

func (h *ChatHandler) SendMessageHandler(c *gin.Context) {
	var m models.ChatMessage
	if err := c.ShouldBindJSON(&m); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid message", err.Error())
		return
	}
	m.ChatID = c.Param("id")
	sent, err := h.Service.SendMessage(c.Request.Context(), m)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "Failed to send message", err.Error())
		return
	}
	c.JSON(http.StatusCreated, sent)
}

func (h *ChatHandler) ListMessagesHandler(c *gin.Context) {
	messages, err := h.Service.ListMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "Failed to list messages", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
