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

type ReelHandler struct {
	generator *app.GenerationService
	reels     *app.ReelService
	log       logrus.FieldLogger
}

type GenerateRequest struct {
	Content  string `json:"content" binding:"required"`
	Title    string `json:"title" binding:"max=255"`
	UploadID string `json:"uploadId"`
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

func NewReelHandler(generator *app.GenerationService, reels *app.ReelService, log logrus.FieldLogger) *ReelHandler {
	return &ReelHandler{generator: generator, reels: reels, log: log}
}

// Generate answers {success, reelId, questionCount} on success and an error
// envelope with a non-2xx status otherwise.
func (h *ReelHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), app.GenerateInput{
		UserID:   middleware.UserID(c),
		Title:    req.Title,
		Content:  req.Content,
		UploadID: req.UploadID,
	})
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"reelId":        result.ReelID,
		"questionCount": result.QuestionCount,
	})
}

func (h *ReelHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	reels, err := h.reels.List(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.OK(c, reels)
}

func (h *ReelHandler) Get(c *gin.Context) {
	reel, err := h.reels.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.OK(c, reel)
}

func (h *ReelHandler) Delete(c *gin.Context) {
	if err := h.reels.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"deleted": c.Param("id")})
}

func (h *ReelHandler) SubmitAnswer(c *gin.Context) {
	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.reels.SubmitAnswer(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Answer)
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.OK(c, result)
}

func (h *ReelHandler) AnswerStats(c *gin.Context) {
	stats, err := h.reels.AnswerStats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.OK(c, stats)
}
