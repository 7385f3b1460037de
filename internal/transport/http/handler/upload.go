package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"studyreels/internal/app"
	"studyreels/internal/transport/http/middleware"
	"studyreels/internal/transport/http/response"
)

type UploadHandler struct {
	ingest   *app.IngestService
	pipeline *app.DocumentPipeline
	maxBytes int64
	log      logrus.FieldLogger
}

func NewUploadHandler(ingest *app.IngestService, pipeline *app.DocumentPipeline, maxBytes int64, log logrus.FieldLogger) *UploadHandler {
	return &UploadHandler{
		ingest:   ingest,
		pipeline: pipeline,
		maxBytes: maxBytes,
		log:      log,
	}
}

// Create accepts a multipart form with "file" and optional "title" and
// "generate". With generate=true the document goes through the whole
// pipeline and the response carries the new reel as well.
func (h *UploadHandler) Create(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file (form field 'file')")
		return
	}
	if h.maxBytes > 0 && file.Size > h.maxBytes {
		writeError(c, h.log, app.ErrFileTooLarge)
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to open uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to read uploaded file")
		return
	}

	userID := middleware.UserID(c)
	declared := file.Header.Get("Content-Type")
	generate, _ := strconv.ParseBool(c.DefaultPostForm("generate", "false"))

	if !generate {
		upload, err := h.ingest.Ingest(c.Request.Context(), app.IngestInput{
			UserID:       userID,
			FileName:     file.Filename,
			DeclaredType: declared,
			Data:         data,
		})
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		response.OK(c, gin.H{"upload": h.ingest.View(*upload)})
		return
	}

	result, err := h.pipeline.Process(c.Request.Context(), app.ProcessInput{
		UserID:       userID,
		FileName:     file.Filename,
		DeclaredType: declared,
		Data:         data,
		Title:        strings.TrimSpace(c.PostForm("title")),
	})
	if err != nil {
		// a stored upload survives later failures; hand its id back
		if result != nil {
			writeErrorWithData(c, h.log, err, gin.H{"upload": result.Upload})
			return
		}
		writeError(c, h.log, err)
		return
	}
	response.OK(c, result)
}

func (h *UploadHandler) List(c *gin.Context) {
	uploads, err := h.ingest.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.OK(c, uploads)
}

func (h *UploadHandler) Delete(c *gin.Context) {
	if err := h.ingest.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		writeError(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"deleted": c.Param("id")})
}

func (h *UploadHandler) DeleteAll(c *gin.Context) {
	n, err := h.ingest.DeleteAll(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	response.OK(c, gin.H{"deleted": n})
}
