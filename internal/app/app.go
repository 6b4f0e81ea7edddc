// Package app holds the protocol-neutral request/response pair handed to
// application logic, and the single-method Handler contract it implements.
package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/shravanasati/ledgerdash/internal/headers"
)

// Request is what application logic sees of an incoming request.
type Request struct {
	Method  string
	URL     *url.URL
	Headers *headers.Headers
	// Body is nil for GET and HEAD.
	Body io.ReadCloser

	// PathParams is filled by the router.
	PathParams map[string]string

	ctx context.Context
}

// NewRequest builds a Request. body may be nil.
func NewRequest(ctx context.Context, method string, u *url.URL, h *headers.Headers, body io.ReadCloser) *Request {
	if h == nil {
		h = headers.NewHeaders()
	}
	return &Request{Method: method, URL: u, Headers: h, Body: body, ctx: ctx}
}

// Context returns the request's context, never nil.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// Query returns the first value of the query parameter key.
func (r *Request) Query(key string) string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Query().Get(key)
}

// Response is returned by application logic. A nil Body means no payload.
type Response struct {
	StatusCode int
	Headers    *headers.Headers
	Body       io.ReadCloser
}

// NewResponse returns an empty response with the given status.
func NewResponse(status int) *Response {
	return &Response{StatusCode: status, Headers: headers.NewHeaders()}
}

// Handler is the boundary to application logic. Handle is called at most
// once per request; an error means no response was produced.
type Handler interface {
	Handle(ctx context.Context, r *Request) (*Response, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, r *Request) (*Response, error)

func (f HandlerFunc) Handle(ctx context.Context, r *Request) (*Response, error) {
	return f(ctx, r)
}

// Bytes returns a response with a fixed body and content type.
func Bytes(status int, contentType string, body []byte) *Response {
	resp := NewResponse(status)
	resp.Headers.Set("content-type", contentType)
	resp.Headers.Set("content-length", strconv.Itoa(len(body)))
	resp.Body = io.NopCloser(bytes.NewReader(body))
	return resp
}

// Text returns a plain-text response.
func Text(status int, body string) *Response {
	resp := NewResponse(status)
	resp.Headers.Set("content-type", "text/plain; charset=utf-8")
	resp.Headers.Set("content-length", strconv.Itoa(len(body)))
	resp.Body = io.NopCloser(strings.NewReader(body))
	return resp
}

// JSON encodes v as the response body.
func JSON(status int, v any) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Bytes(status, "application/json", body), nil
}
