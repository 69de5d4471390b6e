package reporting

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisabledByDefault(t *testing.T) {
	assert.NoError(t, Init("", "test", ""))
	assert.False(t, Enabled())

	// No client: these must be harmless.
	CaptureError(httptest.NewRequest(http.MethodGet, "/parse", nil), errors.New("boom"), map[string]string{"code": "ERR000"})
	Flush(time.Millisecond)
}

func TestMiddleware_PassesThroughWhenDisabled(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMiddleware_PanicPropagatesWhenDisabled(t *testing.T) {
	handler := Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	assert.Panics(t, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestInit_InvalidDSN(t *testing.T) {
	assert.Error(t, Init("not a dsn", "test", ""))
	assert.False(t, Enabled())
}
