package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mytheresa/go-shop-catalog/app/logger"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	var seen string
	handler := Logger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.WithCtx(r.Context()).Info("inside")
		seen = w.Header().Get(RequestIDHeader)
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates a request id", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/products", nil))

		id := rec.Header().Get(RequestIDHeader)
		assert.Len(t, id, 32)
		assert.Equal(t, id, seen)

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		require.Len(t, lines, 2)
		for _, line := range lines {
			var entry map[string]any
			require.NoError(t, json.Unmarshal(line, &entry))
			assert.Equal(t, id, entry["request_id"])
		}

		var access map[string]any
		require.NoError(t, json.Unmarshal(lines[1], &access))
		assert.Equal(t, "request", access["msg"])
		assert.Equal(t, float64(http.StatusTeapot), access["status"])
		assert.Equal(t, "/products", access["path"])
	})

	t.Run("reuses an upstream request id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/products", nil)
		req.Header.Set(RequestIDHeader, "upstream-id")
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "upstream-id", rec.Header().Get(RequestIDHeader))
	})
}

func TestRecovery(t *testing.T) {
	handler := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	req := httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(logger.Inject(req.Context(), logger.Discard()))
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}
