package response

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/shravanasati/ledgerdash/internal/headers"
)

// Response is a transport-level HTTP response built with fluent setters.
type Response interface {
	GetStatusCode() StatusCode
	GetHeaders() *headers.Headers
	GetBody() io.Reader

	WithStatusCode(StatusCode) Response
	WithHeader(key, value string) Response
	WithHeaders(map[string]string) Response
	WithBody(io.Reader) Response

	// Write writes the full response and closes the body.
	Write(io.Writer) error
	// WriteHead writes the status line and headers only and closes the body.
	WriteHead(io.Writer) error
}

// ResponseWriter writes a response in order: status line, headers, body.
type ResponseWriter struct {
	conn  io.Writer
	state writerState
}

func NewResponseWriter(conn io.Writer) *ResponseWriter {
	return &ResponseWriter{conn: conn, state: stateStatusLine}
}

// HeadersWritten reports whether the header section has gone out, after
// which the status can no longer change.
func (rw *ResponseWriter) HeadersWritten() bool {
	return rw.state == stateBody || rw.state == stateDone
}

func (rw *ResponseWriter) WriteStatusLine(statusCode StatusCode) error {
	if rw.state != stateStatusLine {
		return ErrStatusLineAlreadyWritten
	}
	_, err := fmt.Fprintf(rw.conn, "HTTP/1.1 %d %s\r\n", statusCode, GetStatusReason(statusCode))
	if err != nil {
		return err
	}

	rw.state = rw.state.advance()
	return nil
}

func (rw *ResponseWriter) WriteHeaders(h *headers.Headers) error {
	if rw.state != stateHeaders {
		return ErrHeadersAlreadyWritten
	}
	bw := bufio.NewWriter(rw.conn)
	for _, k := range h.Keys() {
		for _, v := range h.Values(k) {
			fmt.Fprintf(bw, "%s: %s\r\n", k, v)
		}
	}
	bw.WriteString("\r\n")
	if err := bw.Flush(); err != nil {
		return err
	}
	rw.state = rw.state.advance()
	return nil
}

// WriteBody copies b to the connection unchanged.
func (rw *ResponseWriter) WriteBody(b io.Reader) error {
	if rw.state != stateBody {
		return ErrNoBodyState
	}
	_, err := io.Copy(rw.conn, sourceReader{b})
	if err != nil {
		return err
	}
	rw.state = rw.state.advance()
	return nil
}

// WriteFixedBody copies exactly n bytes of b to the connection.
func (rw *ResponseWriter) WriteFixedBody(b io.Reader, n int64) error {
	if rw.state != stateBody {
		return ErrNoBodyState
	}
	_, err := io.CopyN(rw.conn, sourceReader{b}, n)
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", ErrBodySource, ErrShortBody)
	}
	if err != nil {
		return err
	}
	rw.state = rw.state.advance()
	return nil
}

// WriteChunkedBody frames b with the chunked transfer coding as it is read.
func (rw *ResponseWriter) WriteChunkedBody(b io.Reader) error {
	if rw.state != stateBody {
		return ErrNoBodyState
	}
	cw := &chunkedWriter{w: rw.conn}
	if _, err := io.Copy(cw, sourceReader{b}); err != nil {
		return err
	}
	if err := cw.Close(); err != nil {
		return err
	}
	rw.state = rw.state.advance()
	return nil
}

// End marks a response without content as complete.
func (rw *ResponseWriter) End() error {
	if rw.state != stateBody {
		return ErrNoBodyState
	}
	rw.state = rw.state.advance()
	return nil
}

// sourceReader tags read failures so callers can tell a broken body
// source from a broken peer.
type sourceReader struct {
	r io.Reader
}

func (s sourceReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = fmt.Errorf("%w: %w", ErrBodySource, err)
	}
	return n, err
}
