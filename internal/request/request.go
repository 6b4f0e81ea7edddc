package request

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/shravanasati/ledgerdash/internal/headers"
)

type MethodType string

const (
	GET     MethodType = "GET"
	HEAD    MethodType = "HEAD"
	POST    MethodType = "POST"
	PUT     MethodType = "PUT"
	PATCH   MethodType = "PATCH"
	DELETE  MethodType = "DELETE"
	TRACE   MethodType = "TRACE"
	OPTIONS MethodType = "OPTIONS"
)

// DefaultHost is used to build the request URL when the client sent no
// Host header (HTTP/1.0).
const DefaultHost = "localhost"

const maxHeaderFields = 100

var registeredNurse = []byte("\r\n")

type RequestLine struct {
	Method      string
	Target      string
	HTTPVersion string
}

type Request struct {
	RequestLine
	Headers *headers.Headers

	// ID correlates log entries and is echoed in X-Request-Id.
	ID string

	body io.ReadCloser
	ctx  context.Context
}

var requestLineRegex = regexp.MustCompile(`^([!#$%&'*+\-.^_\x60|~0-9A-Za-z]+) ([^\s]+) HTTP/(1\.[01])$`)

func parseRequestLine(reqLine []byte) (*RequestLine, error) {
	matches := requestLineRegex.FindSubmatch(reqLine)
	if len(matches) != 4 {
		return nil, ErrIncorrectRequestLine
	}

	return &RequestLine{
		Method:      string(matches[1]),
		Target:      string(matches[2]),
		HTTPVersion: string(matches[3]),
	}, nil
}

// readLine reads one CRLF terminated line without the terminator.
// The returned slice is only valid until the next read.
func readLine(br *bufio.Reader) ([]byte, error) {
	line, err := br.ReadSlice('\n')
	if err != nil {
		if errors.Is(err, bufio.ErrBufferFull) {
			return nil, ErrLineTooLong
		}
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return nil, ErrIncompleteRequest
		}
		return nil, err
	}
	if !bytes.HasSuffix(line, registeredNurse) {
		return nil, ErrIncompleteRequest
	}
	return line[:len(line)-2], nil
}

// RequestFromReader parses the request line and header section from br and
// prepares a lazy body reader. The body is not consumed; on a persistent
// connection the caller must Close it before parsing the next request.
func RequestFromReader(br *bufio.Reader) (*Request, error) {
	line, err := readLine(br)
	if err != nil {
		return nil, err
	}
	requestLine, err := parseRequestLine(line)
	if err != nil {
		return nil, err
	}

	hs := headers.NewHeaders()
	for fields := 0; ; fields++ {
		line, err := readLine(br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrIncompleteRequest
			}
			return nil, err
		}
		if len(line) == 0 {
			break
		}
		if fields >= maxHeaderFields {
			return nil, ErrTooManyHeaders
		}
		if err := hs.ParseFieldLine(line); err != nil {
			return nil, err
		}
	}

	req := &Request{
		RequestLine: *requestLine,
		Headers:     hs,
		ctx:         context.Background(),
	}
	if err := req.prepareBody(br); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *Request) prepareBody(br *bufio.Reader) error {
	codings, err := r.TransferEncodings()
	if err != nil {
		return err
	}
	if len(codings) > 0 {
		r.body = newChunkedReader(br)
		return nil
	}

	cl := r.Headers.Get("content-length")
	if cl == "" {
		r.body = noBody{}
		return nil
	}
	n, err := strconv.ParseInt(cl, 10, 64)
	if err != nil || n < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidContentLength, cl)
	}
	if n == 0 {
		r.body = noBody{}
		return nil
	}
	r.body = newBodyReader(br, n)
	return nil
}

// TransferEncodings returns the lower-cased transfer codings in order.
// The last coding must be chunked.
// https://datatracker.ietf.org/doc/html/rfc9112#section-6.3-2.4.3
func (r *Request) TransferEncodings() ([]string, error) {
	te := r.Headers.Get("transfer-encoding")
	if te == "" {
		return nil, nil
	}
	var codings []string
	for c := range strings.SplitSeq(te, ",") {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			codings = append(codings, c)
		}
	}
	if len(codings) == 0 || codings[len(codings)-1] != "chunked" {
		return nil, ErrUnsupportedTransferEncoding
	}
	return codings, nil
}

// Body returns the request body. It is never nil.
func (r *Request) Body() io.ReadCloser {
	if r.body == nil {
		return noBody{}
	}
	return r.body
}

// SetBody replaces the body, mostly for tests.
func (r *Request) SetBody(b io.ReadCloser) {
	r.body = b
}

// Context returns the request's context, never nil.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext returns a shallow copy of r with its context changed to ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	r2 := *r
	r2.ctx = ctx
	return &r2
}

// URL parses the request target. Origin-form targets get the scheme "http"
// and the Host header as authority, DefaultHost when the header is absent.
func (r *Request) URL() (*url.URL, error) {
	u, err := url.ParseRequestURI(r.Target)
	if err != nil {
		return nil, err
	}
	if u.Host == "" {
		u.Host = r.Headers.Get("host")
		if u.Host == "" {
			u.Host = DefaultHost
		}
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	return u, nil
}

// New builds a request for handlers and tests. body may be nil.
func New(method, target string, body io.Reader) *Request {
	req := &Request{
		RequestLine: RequestLine{Method: method, Target: target, HTTPVersion: "1.1"},
		Headers:     headers.NewHeaders(),
		ctx:         context.Background(),
	}
	if body != nil {
		rc, ok := body.(io.ReadCloser)
		if !ok {
			rc = io.NopCloser(body)
		}
		req.body = rc
	}
	return req
}

type noBody struct{}

func (noBody) Read([]byte) (int, error) { return 0, io.EOF }
func (noBody) Close() error             { return nil }
