package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/auth"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/telemetry"
)

// lastLogLine serves req through r and decodes the final log record.
func lastLogLine(t *testing.T, r http.Handler, req *http.Request) (map[string]any, string) {
	t.Helper()
	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	t.Cleanup(func() { telemetry.SetOutput(os.Stdout) })

	r.ServeHTTP(httptest.NewRecorder(), req)

	raw := strings.TrimSpace(buf.String())
	require.NotEmpty(t, raw, "expected log output")
	lines := strings.Split(raw, "\n")
	record := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &record))
	return record, raw
}

func TestLoggingRecordsRequestContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	iss := newIssuer(t)
	token, err := iss.IssueAccess(auth.Principal{UserID: "user-1"})
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestID(), Auth(iss), Logging())
	r.GET("/api/v1/documents/:id", func(c *gin.Context) {
		c.Set("documentId", c.Param("id"))
		c.Set("folderId", "folder-1")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/doc-1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	record, _ := lastLogLine(t, r, req)

	assert.Equal(t, "request.complete", record["msg"])
	assert.Equal(t, "info", record["level"])
	assert.Equal(t, "user-1", record["user_id"])
	assert.Equal(t, "doc-1", record["document_id"])
	assert.Equal(t, "folder-1", record["folder_id"])
	assert.EqualValues(t, http.StatusOK, record["status"])
	for _, key := range []string{"request_id", "duration_ms", "bytes_out"} {
		assert.Contains(t, record, key)
	}
}

func TestLoggingLevelFollowsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := map[int]string{
		http.StatusCreated:             "info",
		http.StatusNotFound:            "warn",
		http.StatusInternalServerError: "error",
	}
	for status, level := range tests {
		r := gin.New()
		r.Use(Logging())
		r.GET("/x", func(c *gin.Context) { c.Status(status) })

		record, _ := lastLogLine(t, r, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, level, record["level"], "status %d", status)
	}
}

func TestLoggingRedactsShareTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logging())
	r.GET("/api/v1/public/:token", func(c *gin.Context) { c.Status(http.StatusGone) })

	record, raw := lastLogLine(t, r, httptest.NewRequest(http.MethodGet, "/api/v1/public/deadbeefcafe", nil))
	assert.NotContains(t, raw, "deadbeefcafe")
	assert.Equal(t, "warn", record["level"])
}
