package middleware

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shravanasati/ledgerdash/internal/request"
	"github.com/shravanasati/ledgerdash/internal/response"
)

func notFound(*request.Request) response.Response {
	return response.NewStatusTextResponse(response.StatusNotFound)
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := LoggingMiddleware(zap.New(core))(notFound)

	req := request.New("GET", "/api/missing", nil)
	req.ID = "abc"
	resp := handler(req)

	assert.Equal(t, response.StatusNotFound, resp.GetStatusCode())
	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "abc", fields["request_id"])
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/api/missing", fields["target"])
	assert.EqualValues(t, 404, fields["status"])
	assert.Contains(t, fields, "duration")
}

func TestLoggingMiddlewareColored(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	handler := LoggingMiddlewareColored(zap.New(core))(notFound)

	handler(request.New("POST", "/api/import", nil))

	entries := logs.AllUntimed()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Message, "/api/import")
	assert.Contains(t, entries[0].Message, "404")
}

func TestGetStatusCodeStyle(t *testing.T) {
	tests := map[int]lipgloss.TerminalColor{
		200: lipgloss.Color("46"),
		304: lipgloss.Color("226"),
		404: lipgloss.Color("208"),
		500: lipgloss.Color("196"),
		101: lipgloss.Color("15"),
	}
	for code, want := range tests {
		assert.Equal(t, want, getStatusCodeStyle(code).GetForeground(), "status %d", code)
	}
}
