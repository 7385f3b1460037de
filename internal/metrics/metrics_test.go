package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordPipeline(t *testing.T) {
	before := testutil.ToFloat64(PipelineRuns.WithLabelValues("no_json_found"))
	RecordPipeline("no_json_found", 0)
	assert.Equal(t, before+1, testutil.ToFloat64(PipelineRuns.WithLabelValues("no_json_found")))

	generated := testutil.ToFloat64(QuestionsGenerated)
	RecordPipeline(OutcomeSuccess, 5)
	assert.Equal(t, generated+5, testutil.ToFloat64(QuestionsGenerated))
}

func TestObserveLLM(t *testing.T) {
	ObserveLLM("openai", time.Second, errors.New("boom"))
	assert.Equal(t, 1, testutil.CollectAndCount(LLMRequestDuration, "llm_request_duration_seconds"))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	before := testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodGet, "/ping", "200"))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodGet, "/ping", "200")))
}
