package response

import (
	"io"
	"strconv"
	"strings"

	"github.com/shravanasati/ledgerdash/internal/headers"
)

// BaseResponse struct for fluent method chaining.
type BaseResponse struct {
	StatusCode StatusCode
	Headers    *headers.Headers
	Body       io.Reader
}

func NewBaseResponse() Response {
	return &BaseResponse{
		Headers:    headers.NewHeaders(),
		StatusCode: StatusOK,
	}
}

func (r *BaseResponse) GetStatusCode() StatusCode {
	return r.StatusCode
}

func (r *BaseResponse) GetHeaders() *headers.Headers {
	return r.Headers
}

func (r *BaseResponse) GetBody() io.Reader {
	return r.Body
}

func (r *BaseResponse) WithStatusCode(code StatusCode) Response {
	r.StatusCode = code
	return r
}

func (r *BaseResponse) WithHeader(key, value string) Response {
	r.Headers.Add(key, value)
	return r
}

func (r *BaseResponse) WithHeaders(headers map[string]string) Response {
	for key, value := range headers {
		r.Headers.Add(key, value)
	}
	return r
}

func (r *BaseResponse) WithBody(body io.Reader) Response {
	r.Body = body
	return r
}

func (r *BaseResponse) Write(w io.Writer) error {
	return r.write(w, false)
}

func (r *BaseResponse) WriteHead(w io.Writer) error {
	return r.write(w, true)
}

// CloseBody releases the body if it holds a resource.
func (r *BaseResponse) CloseBody() error {
	if c, ok := r.Body.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (r *BaseResponse) write(w io.Writer, headOnly bool) error {
	// the body is released on every exit path, including a peer that
	// went away halfway through
	defer r.CloseBody()

	withContent := bodyAllowed(r.StatusCode)
	chunked := false
	var contentLength int64 = -1

	if withContent {
		if cl := r.Headers.Get("content-length"); cl != "" {
			if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n >= 0 {
				contentLength = n
			}
		}
		switch {
		case isChunked(r.Headers):
			chunked = true
			r.Headers.Remove("content-length")
		case contentLength >= 0:
		case r.Body == nil:
			contentLength = 0
			r.Headers.Set("content-length", "0")
		case !headOnly:
			chunked = true
			r.Headers.Set("transfer-encoding", "chunked")
		}
	}

	rw := NewResponseWriter(w)
	if err := rw.WriteStatusLine(r.StatusCode); err != nil {
		return err
	}
	if err := rw.WriteHeaders(r.Headers); err != nil {
		return err
	}

	if headOnly || !withContent || r.Body == nil {
		return rw.End()
	}
	if chunked {
		return rw.WriteChunkedBody(r.Body)
	}
	return rw.WriteFixedBody(r.Body, contentLength)
}

func isChunked(h *headers.Headers) bool {
	te := strings.ToLower(h.Get("transfer-encoding"))
	return strings.HasSuffix(strings.TrimSpace(te), "chunked")
}
