package logstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestHookFeedsConnectedClient(t *testing.T) {
	b := NewBroker()
	logger := logrus.New()
	logger.AddHook(b.Hook())

	req := httptest.NewRequest(http.MethodGet, "/logs", nil)
	ctx, cancel := context.WithCancel(req.Context())
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(rec, req)
		close(done)
	}()

	// Give ServeHTTP time to register the client before firing a log line.
	time.Sleep(20 * time.Millisecond)
	logger.Info("hello from the engine")
	time.Sleep(20 * time.Millisecond)

	cancel()
	<-done

	if !strings.Contains(rec.Body.String(), "hello from the engine") {
		t.Fatalf("expected streamed body to contain the log line, got %q", rec.Body.String())
	}
}

func TestInstallMountsHandler(t *testing.T) {
	b := NewBroker()
	mux := http.NewServeMux()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	Install(ctx, mux, "/logs", b)

	req := httptest.NewRequest(http.MethodGet, "/logs", nil)
	reqCtx, reqCancel := context.WithTimeout(req.Context(), 10*time.Millisecond)
	defer reqCancel()
	req = req.WithContext(reqCtx)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
