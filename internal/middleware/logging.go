// Package middleware holds handler decorators shared by the server and the
// application router.
package middleware

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/shravanasati/ledgerdash/internal/request"
	"github.com/shravanasati/ledgerdash/internal/response"
	"github.com/shravanasati/ledgerdash/internal/server"
)

// LoggingMiddleware writes one structured access log entry per request.
// The duration covers the handler only; the body is streamed afterwards.
func LoggingMiddleware(logger *zap.Logger) func(server.Handler) server.Handler {
	return func(next server.Handler) server.Handler {
		return func(r *request.Request) response.Response {
			now := time.Now()
			resp := next(r)
			logger.Info("request",
				zap.String("request_id", r.ID),
				zap.String("method", r.Method),
				zap.String("target", r.Target),
				zap.Int("status", int(resp.GetStatusCode())),
				zap.Duration("duration", time.Since(now)),
			)
			return resp
		}
	}
}

// LoggingMiddlewareColored renders the access line with terminal colors,
// for interactive use.
func LoggingMiddlewareColored(logger *zap.Logger) func(server.Handler) server.Handler {
	methodStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true).Background(lipgloss.Color("12")).Width(8).Align(lipgloss.Center)

	return func(next server.Handler) server.Handler {
		return func(r *request.Request) response.Response {
			now := time.Now()
			resp := next(r)

			statusCode := int(resp.GetStatusCode())
			styledStatus := getStatusCodeStyle(statusCode).Render(fmt.Sprintf("%d", statusCode))
			styledMethod := methodStyle.Render(r.Method)

			logger.Info(fmt.Sprintf("%s %s %s in %s", styledMethod, r.Target, styledStatus, time.Since(now)),
				zap.String("request_id", r.ID))
			return resp
		}
	}
}

// getStatusCodeStyle returns a lipgloss style for HTTP status codes
func getStatusCodeStyle(statusCode int) lipgloss.Style {
	switch {
	case statusCode >= 200 && statusCode < 300:
		// 2xx Success - Green
		return lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	case statusCode >= 300 && statusCode < 400:
		// 3xx Redirection - Yellow
		return lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	case statusCode >= 400 && statusCode < 500:
		// 4xx Client Error - Orange
		return lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	case statusCode >= 500:
		// 5xx Server Error - Bright Red
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	}
}
