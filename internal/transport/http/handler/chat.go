package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"studyreels/internal/app"
	"studyreels/internal/transport/http/middleware"
	"studyreels/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
	log         logrus.FieldLogger
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

func NewChatHandler(chatService *app.ChatService, log logrus.FieldLogger) *ChatHandler {
	return &ChatHandler{chatService: chatService, log: log}
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), middleware.UserID(c), req.Content)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.OK(c, result)
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, parseErr := strconv.Atoi(raw); parseErr == nil {
			limit = parsed
		}
	}

	history, err := h.chatService.History(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	response.OK(c, history)
}
