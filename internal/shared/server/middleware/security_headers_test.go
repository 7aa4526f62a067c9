package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSecurityHeadersPresent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SecurityHeaders())
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Referrer-Policy"} {
		if resp.Header().Get(h) == "" {
			t.Fatalf("expected %s header", h)
		}
	}
}

func TestSecurityHeadersLetShareLinksEmbed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(SecurityHeaders())
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	router.GET("/api/v1/public/:token", ok)
	router.GET("/api/v1/documents/:id", ok)

	cases := map[string]string{
		"/api/v1/public/abc":  "cross-origin",
		"/api/v1/documents/1": "same-origin",
	}
	for path, want := range cases {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if got := resp.Header().Get("Cross-Origin-Resource-Policy"); got != want {
			t.Fatalf("%s: expected CORP %q, got %q", path, want, got)
		}
	}
}
