package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmate/services/session"
	"taskmate/utils"
)

type SessionHandler struct {
	Client *session.Client
}

func NewSessionHandler(client *session.Client) *SessionHandler {
	return &SessionHandler{Client: client}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *SessionHandler) SignInHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid sign-in request", err.Error())
		return
	}
	user, err := h.Client.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.JSONError(c, http.StatusUnauthorized, "Sign-in failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "state": h.Client.State()})
}

func (h *SessionHandler) SignUpHandler(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid sign-up request", err.Error())
		return
	}
	user, err := h.Client.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.JSONError(c, http.StatusUnauthorized, "Sign-up failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "state": h.Client.State()})
}

func (h *SessionHandler) SignOutHandler(c *gin.Context) {
	h.Client.SignOut(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"state": h.Client.State()})
}

// StatusHandler reports the session state and current user for the UI shell.
func (h *SessionHandler) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"state": h.Client.State(),
		"user":  h.Client.CurrentUser(),
	})
}
