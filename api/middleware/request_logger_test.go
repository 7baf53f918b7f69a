// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/revpool/log"
)

// mockLogger is a simple logger implementation for testing purposes
type mockLogger struct {
	loggedData []any
}

func (m *mockLogger) With(_ ...any) log.Logger { return m }

func (m *mockLogger) New(_ ...any) log.Logger { return m }

func (m *mockLogger) Log(_ slog.Level, _ string, _ ...any) {}

func (m *mockLogger) Trace(_ string, _ ...any) {}

func (m *mockLogger) Debug(_ string, _ ...any) {}

func (m *mockLogger) Error(_ string, _ ...any) {}

func (m *mockLogger) Crit(_ string, _ ...any) {}

func (m *mockLogger) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (m *mockLogger) Handler() slog.Handler { return nil }

func (m *mockLogger) Info(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func (m *mockLogger) Warn(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func TestRequestLoggerMiddleware(t *testing.T) {
	slow := func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}
	fast := func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	tests := []struct {
		name      string
		handler   http.HandlerFunc
		enabled   bool
		threshold time.Duration
		shouldLog bool
	}{
		{"enabled", fast, true, 0, true},
		{"disabled", fast, false, 0, false},
		{"disabled fast under threshold", fast, false, time.Second, false},
		{"disabled slow over threshold", slow, false, 5 * time.Millisecond, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			handler := RequestID(RequestLoggerMiddleware(logger, tt.enabled, tt.threshold)(tt.handler))

			req := httptest.NewRequest(http.MethodPost, "/stake", strings.NewReader(`{"amount":"1"}`))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			if !tt.shouldLog {
				assert.Empty(t, logger.loggedData)
				return
			}
			require.NotEmpty(t, logger.loggedData)
			assert.Contains(t, logger.loggedData, "RequestID")
			assert.Contains(t, logger.loggedData, rr.Header().Get(RequestIDHeader))
			assert.Contains(t, logger.loggedData, "/stake")
			assert.Contains(t, logger.loggedData, `{"amount":"1"}`)
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/house", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/house", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, "client-id", seen)
	assert.Equal(t, "client-id", rr.Header().Get(RequestIDHeader))
}
