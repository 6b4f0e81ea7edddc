package server

import (
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/shravanasati/ledgerdash/internal/response"
)

const (
	defaultAddress        = ":4173"
	defaultMaxHeaderBytes = 8 << 10
)

type ServerOpts struct {
	// The address for the server to listen on.
	Address string

	// ReadTimeout bounds reading one request head and body.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing one response.
	WriteTimeout time.Duration

	// KeepAliveTimeout is how long an idle persistent connection waits for
	// the next request. Zero closes the connection after every response.
	KeepAliveTimeout time.Duration

	// MaxHeaderBytes caps the length of the request line and of each header
	// field line.
	MaxHeaderBytes int

	// Recovery takes the value recovered from a panicking handler and
	// returns the response written in its place. The connection is closed
	// afterwards.
	Recovery func(any) response.Response

	Logger *zap.Logger
}

func (o ServerOpts) withDefaults() ServerOpts {
	if o.Address == "" {
		o.Address = defaultAddress
	}
	if o.MaxHeaderBytes <= 0 {
		o.MaxHeaderBytes = defaultMaxHeaderBytes
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Recovery == nil {
		o.Recovery = defaultRecovery(o.Logger)
	}
	return o
}

func defaultRecovery(logger *zap.Logger) func(any) response.Response {
	return func(r any) response.Response {
		logger.Error("recovered from panic", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
		return response.NewStatusTextResponse(response.StatusInternalServerError)
	}
}
