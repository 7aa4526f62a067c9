package respond

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Sulaiman-F/wthqh-backend/internal/shared/apperr"
	"github.com/Sulaiman-F/wthqh-backend/internal/shared/telemetry"
)

func TestFromErrorMapsKinds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", apperr.Validation("title is required"), http.StatusBadRequest, "title is required"},
		{"forbidden", apperr.Forbidden("forbidden"), http.StatusForbidden, "forbidden"},
		{"wrapped not found", fmt.Errorf("load: %w", apperr.NotFound("document not found")), http.StatusNotFound, "document not found"},
		{"conflict", apperr.Conflict("folder is not empty"), http.StatusConflict, "folder is not empty"},
		{"gone", apperr.Gone("share link expired"), http.StatusGone, "share link expired"},
		{"unknown", errors.New("pq: connection reset"), http.StatusInternalServerError, "Internal server error"},
		{"internal", apperr.Internal("insert", errors.New("boom")), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			FromError(c, tc.err)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Success {
				t.Fatalf("expected success=false")
			}
			if body.Message != tc.message {
				t.Fatalf("expected message %q, got %q", tc.message, body.Message)
			}
		})
	}
}

func TestFromErrorLogsInternalOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	t.Cleanup(func() { telemetry.SetOutput(os.Stdout) })

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/documents", nil)

	FromError(c, apperr.Internal("insert document", errors.New("disk full")))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one log line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if entry["level"] != "error" || entry["msg"] != "http.error" {
		t.Fatalf("unexpected log entry: %v", entry)
	}
	if detail, _ := entry["error"].(string); !strings.Contains(detail, "disk full") {
		t.Fatalf("expected error detail in log, got %v", entry["error"])
	}
	if strings.Contains(rec.Body.String(), "disk full") {
		t.Fatalf("internal detail leaked to response: %s", rec.Body.String())
	}
}
