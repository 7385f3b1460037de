package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeUsernameExists     = 40001
	CodeEmailExists        = 40002
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeNotFound           = 40400
	CodeReelNotFound       = 40401
	CodeUploadNotFound     = 40402
	CodeQuestionNotFound   = 40403
	CodePayloadTooLarge    = 41300
	CodeUnsupportedType    = 41500
	CodeExtractionFailed   = 42201
	CodeNoJSONFound        = 42202
	CodeJSONParseFailed    = 42203
	CodeValidationFailed   = 42204
	CodeQuotaExceeded      = 42900
	CodeInternalServer     = 50000
	CodeStorageFailed      = 50001
	CodeMessageEnqueue     = 50002
	CodeLLMRequestFailed   = 50200
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

// Error writes a failure envelope. The message is repeated under "error" so
// clients that only look for that key still see it.
func Error(c *gin.Context, httpStatus, code int, message string) {
	ErrorWithData(c, httpStatus, code, message, nil)
}

// ErrorWithData is Error plus a payload describing what was kept, such as
// an upload stored before a later stage failed.
func ErrorWithData(c *gin.Context, httpStatus, code int, message string, data interface{}) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
		Error:   message,
		Data:    data,
	})
}
