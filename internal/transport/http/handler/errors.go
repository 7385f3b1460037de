package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"studyreels/internal/ai"
	"studyreels/internal/app"
	"studyreels/internal/pkg/textextract"
	"studyreels/internal/quiz"
	"studyreels/internal/transport/http/response"
)

type errorMapping struct {
	target error
	status int
	code   int
	// expose the wrapped error text instead of a generic message
	detailed bool
	message  string
}

var errorMappings = []errorMapping{
	{target: app.ErrNotAuthenticated, status: http.StatusUnauthorized, code: response.CodeUnauthorized, message: "not authenticated"},
	{target: app.ErrInvalidInput, status: http.StatusBadRequest, code: response.CodeBadRequest, detailed: true},
	{target: app.ErrEmptyContent, status: http.StatusBadRequest, code: response.CodeBadRequest, detailed: true},
	{target: app.ErrMessageEmpty, status: http.StatusBadRequest, code: response.CodeBadRequest, detailed: true},
	{target: app.ErrUsernameExists, status: http.StatusBadRequest, code: response.CodeUsernameExists, detailed: true},
	{target: app.ErrEmailExists, status: http.StatusBadRequest, code: response.CodeEmailExists, detailed: true},
	{target: app.ErrInvalidCredential, status: http.StatusUnauthorized, code: response.CodeInvalidCredentials, detailed: true},
	{target: app.ErrReelNotFound, status: http.StatusNotFound, code: response.CodeReelNotFound, detailed: true},
	{target: app.ErrUploadNotFound, status: http.StatusNotFound, code: response.CodeUploadNotFound, detailed: true},
	{target: app.ErrQuestionNotFound, status: http.StatusNotFound, code: response.CodeQuestionNotFound, detailed: true},
	{target: app.ErrFileTooLarge, status: http.StatusRequestEntityTooLarge, code: response.CodePayloadTooLarge, detailed: true},
	{target: app.ErrUnsupportedType, status: http.StatusUnsupportedMediaType, code: response.CodeUnsupportedType, detailed: true},
	{target: textextract.ErrExtractionFailed, status: http.StatusUnprocessableEntity, code: response.CodeExtractionFailed, detailed: true},
	{target: quiz.ErrNoJSONFound, status: http.StatusUnprocessableEntity, code: response.CodeNoJSONFound, detailed: true},
	{target: quiz.ErrJSONParseFailed, status: http.StatusUnprocessableEntity, code: response.CodeJSONParseFailed, detailed: true},
	{target: quiz.ErrValidationFailed, status: http.StatusUnprocessableEntity, code: response.CodeValidationFailed, detailed: true},
	{target: ai.ErrQuotaExceeded, status: http.StatusTooManyRequests, code: response.CodeQuotaExceeded, message: "llm quota exceeded, try again later"},
	{target: ai.ErrRequestFailed, status: http.StatusBadGateway, code: response.CodeLLMRequestFailed, message: "llm request failed"},
	{target: app.ErrStorageWriteFailed, status: http.StatusInternalServerError, code: response.CodeStorageFailed, message: "storage write failed"},
	{target: app.ErrMessageEnqueue, status: http.StatusInternalServerError, code: response.CodeMessageEnqueue, message: "message enqueue failed"},
}

// classify maps a service error to its HTTP status, business code and the
// message shown to the client.
func classify(err error) (int, int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.detailed {
				return m.status, m.code, err.Error()
			}
			return m.status, m.code, m.message
		}
	}
	return http.StatusInternalServerError, response.CodeInternalServer, "internal server error"
}

func writeError(c *gin.Context, log logrus.FieldLogger, err error) {
	writeErrorWithData(c, log, err, nil)
}

func writeErrorWithData(c *gin.Context, log logrus.FieldLogger, err error, data interface{}) {
	status, code, message := classify(err)
	entry := log.WithError(err).WithFields(logrus.Fields{
		"path":   c.FullPath(),
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	response.ErrorWithData(c, status, code, message, data)
}
