// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/log"
)

// recordingLogger keeps the context of every Info and Warn record.
type recordingLogger struct {
	infos [][]any
	warns [][]any
}

func (m *recordingLogger) With(_ ...any) log.Logger                     { return m }
func (m *recordingLogger) New(_ ...any) log.Logger                      { return m }
func (m *recordingLogger) Trace(_ string, _ ...any)                     {}
func (m *recordingLogger) Debug(_ string, _ ...any)                     {}
func (m *recordingLogger) Error(_ string, _ ...any)                     {}
func (m *recordingLogger) Crit(_ string, _ ...any)                      {}
func (m *recordingLogger) Enabled(_ context.Context, _ slog.Level) bool { return true }
func (m *recordingLogger) Handler() slog.Handler                        { return nil }

func (m *recordingLogger) Info(_ string, ctx ...any) { m.infos = append(m.infos, ctx) }
func (m *recordingLogger) Warn(_ string, ctx ...any) { m.warns = append(m.warns, ctx) }

func (m *recordingLogger) records() [][]any {
	return append(append([][]any{}, m.infos...), m.warns...)
}

func value(ctx []any, key string) any {
	for i := 0; i+1 < len(ctx); i += 2 {
		if ctx[i] == key {
			return ctx[i+1]
		}
	}
	return nil
}

func respond(status int, delay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(delay)
		w.WriteHeader(status)
		w.Write([]byte(http.StatusText(status)))
	}
}

func TestRequestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name                 string
		handler              http.HandlerFunc
		enabled              bool
		slowQueriesThreshold time.Duration
		log5xxErrors         bool
		wantInfo             bool
		wantWarn             bool
	}{
		{"enabled, fast 2xx", respond(http.StatusOK, 0), true, 0, false, true, false},
		{"disabled, fast 2xx", respond(http.StatusOK, 0), false, 0, false, false, false},
		{"slow request over threshold", respond(http.StatusOK, 15*time.Millisecond), false, 10 * time.Millisecond, false, true, false},
		{"fast request under threshold", respond(http.StatusOK, 0), false, time.Second, false, false, false},
		{"5xx with error logging", respond(http.StatusInternalServerError, 0), false, 0, true, false, true},
		{"503 with error logging", respond(http.StatusServiceUnavailable, 0), false, 0, true, false, true},
		{"5xx without error logging", respond(http.StatusInternalServerError, 0), false, 0, false, false, false},
		{"rejected operation is not an error", respond(http.StatusConflict, 0), false, 0, true, false, false},
		{"slow 5xx", respond(http.StatusInternalServerError, 15*time.Millisecond), false, 10 * time.Millisecond, true, false, true},
		{"implicit 200", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("OK")) }, false, 0, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &recordingLogger{}
			var enabled atomic.Bool
			enabled.Store(tt.enabled)

			handler := RequestLoggerMiddleware(logger, &enabled, tt.slowQueriesThreshold, tt.log5xxErrors)(tt.handler)
			req := httptest.NewRequest(http.MethodPost, "http://example.com/pool/delegate", strings.NewReader(`{"caller":"0x01"}`))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantInfo, len(logger.infos) > 0)
			assert.Equal(t, tt.wantWarn, len(logger.warns) > 0)

			for _, ctx := range logger.records() {
				assert.Equal(t, "http://example.com/pool/delegate", value(ctx, "URI"))
				assert.Equal(t, http.MethodPost, value(ctx, "Method"))
				assert.Equal(t, `{"caller":"0x01"}`, value(ctx, "Body"))
				assert.Equal(t, rr.Code, value(ctx, "StatusCode"))
				assert.Equal(t, rr.Header().Get(RequestIDHeader), value(ctx, "RequestID"))
				_, ok := value(ctx, "Timestamp").(int64)
				assert.True(t, ok, "timestamp should be an int64")
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	logger := &recordingLogger{}
	var enabled atomic.Bool
	enabled.Store(true)
	handler := RequestLoggerMiddleware(logger, &enabled, 0, false)(respond(http.StatusOK, 0))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/pool", nil))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/pool", nil))

	require.NotEmpty(t, first.Header().Get(RequestIDHeader))
	assert.NotEqual(t, first.Header().Get(RequestIDHeader), second.Header().Get(RequestIDHeader))

	// a caller supplied id is kept
	req := httptest.NewRequest(http.MethodGet, "/pool", nil)
	req.Header.Set(RequestIDHeader, "trace-42")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "trace-42", rr.Header().Get(RequestIDHeader))
}

func TestRequestLoggerDisabledSkipsBody(t *testing.T) {
	logger := &recordingLogger{}
	var enabled atomic.Bool
	handler := RequestLoggerMiddleware(logger, &enabled, 0, false)(respond(http.StatusOK, 0))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pool", nil))
	assert.Empty(t, rr.Header().Get(RequestIDHeader))
	assert.Empty(t, logger.records())

	// switching on at runtime takes effect for the next request
	enabled.Store(true)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pool", nil))
	assert.Len(t, logger.infos, 1)
}
