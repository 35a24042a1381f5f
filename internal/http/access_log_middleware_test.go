package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func runRequestWithMiddleware(t *testing.T, middleware gin.HandlerFunc, path string, status int) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware)
	router.GET("/items", func(c *gin.Context) {
		c.Status(status)
	})

	responseRecorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(responseRecorder, req)
	return responseRecorder
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	level := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(level)
	})
	return &buf
}

func TestAccessLogMiddlewareMasksTokens(t *testing.T) {
	buf := captureLogs(t)

	recorder := runRequestWithMiddleware(t, AccessLogMiddleware(), "/items?token=abcdefghijkl", http.StatusNoContent)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", recorder.Code)
	}
	out := buf.String()
	if strings.Contains(out, "abcdefghijkl") {
		t.Fatalf("token leaked into logs: %s", out)
	}
	if !strings.Contains(out, "request served") {
		t.Fatalf("expected debug entry, got %s", out)
	}
}

func TestAccessLogMiddlewareWarnsOnClientErrors(t *testing.T) {
	buf := captureLogs(t)

	runRequestWithMiddleware(t, AccessLogMiddleware(), "/items", http.StatusNotFound)
	if !strings.Contains(buf.String(), "request rejected") {
		t.Fatalf("expected warn entry, got %s", buf.String())
	}

	buf.Reset()
	runRequestWithMiddleware(t, AccessLogMiddleware(), "/missing", http.StatusOK)
	if !strings.Contains(buf.String(), "request rejected") {
		t.Fatalf("expected unmatched route to be logged as rejected, got %s", buf.String())
	}
}
