package echoapi

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	logsvc "github.com/ndishimyeemilien/report-sub001/services/logger"
	testutil "github.com/ndishimyeemilien/report-sub001/tests"
)

func TestTimeoutMiddleware(t *testing.T) {
	e := echo.New()

	var deadline time.Time
	var bounded bool
	next := func(ctx echo.Context) error {
		deadline, bounded = ctx.Request().Context().Deadline()
		return nil
	}

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := timeoutMiddleware(5 * time.Second)(next)(c); err != nil {
		t.Fatalf("timeoutMiddleware() failed: %v", err)
	}
	if !bounded {
		t.Fatal("expected the request context to carry a deadline")
	}
	if remaining := time.Until(deadline); remaining <= 0 || remaining > 5*time.Second {
		t.Errorf("deadline out of range: %v remaining", remaining)
	}

	// a zero timeout disables the bound
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if err := timeoutMiddleware(0)(next)(c); err != nil {
		t.Fatalf("timeoutMiddleware() failed: %v", err)
	}
	if bounded {
		t.Error("zero timeout should leave the request context unbounded")
	}
}

func TestDeadlineExceededIsRetryable(t *testing.T) {
	_, translator := testutil.NewValidator(t)
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))

	e := echo.New()
	e.HTTPErrorHandler = newAppHTTPErrorHandler(logger, translator, func() {})
	e.GET("/slow", func(ctx echo.Context) error {
		return errors.Wrap(context.DeadlineExceeded, "querying documents")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}
