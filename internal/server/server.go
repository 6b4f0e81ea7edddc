// Package server accepts TCP connections and speaks HTTP/1.1 on them,
// handing every parsed request to a single Handler.
package server

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shravanasati/ledgerdash/internal/request"
	"github.com/shravanasati/ledgerdash/internal/response"
)

// dateFormat is the IMF-fixdate layout required for the Date header.
const dateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"

const (
	lingerTimeout  = 500 * time.Millisecond
	lingerMaxBytes = 256 << 10
)

var ErrServerClosed = errors.New("server closed")

type Server struct {
	opts     ServerOpts
	handler  Handler
	logger   *zap.Logger
	listener net.Listener
	closed   atomic.Bool

	// ctx is the parent of every request context and is cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// New returns an unstarted server.
func New(opts ServerOpts, handler Handler) *Server {
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		opts:    opts,
		handler: handler,
		logger:  opts.Logger,
		ctx:     ctx,
		cancel:  cancel,
		conns:   make(map[net.Conn]struct{}),
	}
}

// Listen binds the listening socket.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return err
	}
	s.listener = listener
	s.logger.Info("listening", zap.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until Close is called, in which case it
// returns ErrServerClosed. Listen must have succeeded first.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return ErrServerClosed
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				s.logger.Warn("temporary accept failure", zap.Error(err))
				time.Sleep(5 * time.Millisecond)
				continue
			}
			s.logger.Error("unable to accept connection", zap.Error(err))
			return err
		}

		if !s.track(conn) {
			conn.Close()
			return ErrServerClosed
		}
		go s.handle(conn)
	}
}

// Shutdown the server. Close stops accepting, cancels in-flight request
// contexts, closes open connections and waits for their goroutines.
func (s *Server) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.cancel()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}

	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return false
	}
	s.conns[conn] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Server) handle(conn net.Conn) {
	defer s.untrack(conn)
	defer conn.Close()

	log := s.logger.With(zap.String("remote", conn.RemoteAddr().String()))
	br := bufio.NewReaderSize(conn, s.opts.MaxHeaderBytes)

	for first := true; ; first = false {
		s.setIdleDeadline(conn, first)

		req, err := request.RequestFromReader(br)
		if err != nil {
			if !s.closed.Load() && !isQuietReadError(err) {
				log.Debug("invalid request", zap.Error(err))
				s.reject(conn, statusForParseError(err))
			}
			return
		}

		if s.opts.ReadTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
		}

		if code, ok := validate(req); !ok {
			log.Debug("rejected request", zap.String("method", req.Method), zap.String("target", req.Target), zap.Int("status", int(code)))
			s.reject(conn, code)
			return
		}

		keepAlive := s.opts.KeepAliveTimeout > 0 && wantsKeepAlive(req)
		if !s.serveOne(conn, req, keepAlive, log) || !keepAlive {
			return
		}

		// discard what the handler left unread so the next request starts
		// at a message boundary
		if err := req.Body().Close(); err != nil {
			log.Debug("unable to drain request body", zap.Error(err))
			return
		}
	}
}

// serveOne runs the handler for req and writes its response. It reports
// whether the connection is still usable.
func (s *Server) serveOne(conn net.Conn, req *request.Request, keepAlive bool, log *zap.Logger) bool {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	req.ID = uuid.NewString()
	req = req.WithContext(ctx)

	resp, panicked := s.call(req)
	if panicked {
		keepAlive = false
	}

	h := resp.GetHeaders()
	h.Set("date", time.Now().UTC().Format(dateFormat))
	h.Set("x-request-id", req.ID)
	switch {
	case !keepAlive:
		h.Set("connection", "close")
	case req.HTTPVersion == "1.0":
		h.Set("connection", "keep-alive")
	}

	if s.opts.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	}

	var err error
	if req.Method == string(request.HEAD) {
		err = resp.WriteHead(conn)
	} else {
		err = resp.Write(conn)
	}
	if err != nil {
		fields := []zap.Field{zap.String("request_id", req.ID), zap.Error(err)}
		if errors.Is(err, response.ErrBodySource) {
			log.Error("response body failed mid-stream", fields...)
		} else {
			log.Debug("unable to write response to connection", fields...)
		}
		return false
	}
	return !panicked
}

func (s *Server) call(req *request.Request) (resp response.Response, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			resp, panicked = s.opts.Recovery(r), true
		}
	}()
	resp = s.handler(req)
	if resp == nil {
		resp = response.NewStatusTextResponse(response.StatusInternalServerError)
	}
	return resp, false
}

func (s *Server) setIdleDeadline(conn net.Conn, first bool) {
	switch {
	case !first && s.opts.KeepAliveTimeout > 0:
		conn.SetReadDeadline(time.Now().Add(s.opts.KeepAliveTimeout))
	case s.opts.ReadTimeout > 0:
		conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	default:
		conn.SetReadDeadline(time.Time{})
	}
}

func (s *Server) reject(conn net.Conn, code response.StatusCode) {
	if s.opts.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout))
	}
	resp := response.NewStatusTextResponse(code).WithHeader("connection", "close")
	if err := resp.Write(conn); err != nil {
		s.logger.Debug("unable to write rejection", zap.Error(err))
		return
	}
	lingerClose(conn)
}

// lingerClose half-closes conn and discards what the peer still sends.
// Closing with unread input makes the kernel send a reset, which can
// destroy the response before the peer reads it.
func lingerClose(conn net.Conn) {
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		cw.CloseWrite()
	}
	conn.SetReadDeadline(time.Now().Add(lingerTimeout))
	io.Copy(io.Discard, io.LimitReader(conn, lingerMaxBytes))
}

// validate applies the message-level checks the parser leaves to the server.
func validate(req *request.Request) (response.StatusCode, bool) {
	hosts := req.Headers.Values("host")
	switch {
	case len(hosts) > 1 || strings.Contains(req.Headers.Get("host"), ","):
		// more than one host not allowed
		return response.StatusBadRequest, false
	case len(hosts) == 0 && req.HTTPVersion == "1.1":
		return response.StatusBadRequest, false
	}

	if req.Headers.Has("content-length") && req.Headers.Has("transfer-encoding") {
		// requests containing both content length and transfer encoding
		// headers MAY be rejected by the server as per the RFC
		// https://datatracker.ietf.org/doc/html/rfc9112#section-6.1-15
		return response.StatusBadRequest, false
	}
	return 0, true
}

func wantsKeepAlive(req *request.Request) bool {
	conn := strings.ToLower(req.Headers.Get("connection"))
	if req.HTTPVersion == "1.0" {
		return hasToken(conn, "keep-alive")
	}
	return !hasToken(conn, "close")
}

func hasToken(list, token string) bool {
	for t := range strings.SplitSeq(list, ",") {
		if strings.TrimSpace(t) == token {
			return true
		}
	}
	return false
}

func statusForParseError(err error) response.StatusCode {
	switch {
	case errors.Is(err, request.ErrLineTooLong), errors.Is(err, request.ErrTooManyHeaders):
		return response.StatusRequestHeaderFieldsTooLarge
	case errors.Is(err, request.ErrUnsupportedTransferEncoding):
		return response.StatusNotImplemented
	}
	return response.StatusBadRequest
}

// isQuietReadError reports errors that end a connection without a
// response: the peer closed it or went idle.
func isQuietReadError(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Serve binds opts.Address and starts accepting in the background.
func Serve(opts ServerOpts, handler Handler) (*Server, error) {
	s := New(opts, handler)
	if err := s.Listen(); err != nil {
		return nil, err
	}
	go s.Serve()
	return s, nil
}
