package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func execute(mw echo.MiddlewareFunc, handler echo.HandlerFunc, target string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(handler)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func okHandler(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestRequestID_GeneratesHeader(t *testing.T) {
	rec := execute(RequestID(), okHandler, "/")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
}

func TestRequestID_PreservesIncoming(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := RequestID()(okHandler)(c); err != nil {
		t.Fatal(err)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("request id %q, want req-42", got)
	}
}

func TestRecovery_ConvertsPanic(t *testing.T) {
	rec := execute(Recovery(zerolog.Nop()), func(echo.Context) error {
		panic("boom")
	}, "/")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status %d, want 500", rec.Code)
	}
}

func TestRateLimit_AllowsWithinBurst(t *testing.T) {
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 2})
	for i := 0; i < 2; i++ {
		rec := execute(mw, okHandler, "/")
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i, rec.Code)
		}
	}
}

func TestRateLimit_RejectsBeyondBurst(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.1, BurstSize: 1})
	handler := mw(okHandler)

	issue := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.7:1234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := handler(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		return rec
	}

	if rec := issue(); rec.Code != http.StatusOK {
		t.Fatalf("first request: status %d, want 200", rec.Code)
	}
	rec := issue()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on rejection")
	}
}

func TestRequestTimeout_SlowHandler(t *testing.T) {
	rec := execute(RequestTimeout(20*time.Millisecond), func(c echo.Context) error {
		select {
		case <-c.Request().Context().Done():
		case <-time.After(time.Second):
		}
		return nil
	}, "/")
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status %d, want 504", rec.Code)
	}
}

func TestRequestTimeout_FastHandler(t *testing.T) {
	rec := execute(RequestTimeout(time.Second), okHandler, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
}

func TestRequestTimeout_SkipsWebSocketPaths(t *testing.T) {
	rec := execute(RequestTimeout(time.Nanosecond), func(c echo.Context) error {
		time.Sleep(5 * time.Millisecond)
		return c.NoContent(http.StatusOK)
	}, "/ws/notifications")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200 for excluded path", rec.Code)
	}
}
