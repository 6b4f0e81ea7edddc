package request

import (
	"bufio"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chunkReader struct {
	data            string
	numBytesPerRead int
	pos             int
}

// Read reads up to len(p) or numBytesPerRead bytes from the string per call
// its useful for simulating reading a variable number of bytes per chunk from a network connection
func (cr *chunkReader) Read(p []byte) (n int, err error) {
	if cr.pos >= len(cr.data) {
		return 0, io.EOF
	}
	endIndex := min(cr.pos+cr.numBytesPerRead, len(cr.data))
	n = copy(p, cr.data[cr.pos:endIndex])
	cr.pos += n

	return n, nil
}

func parse(data string, perRead int) (*Request, error) {
	return RequestFromReader(bufio.NewReader(&chunkReader{data: data, numBytesPerRead: perRead}))
}

func TestRequestLineParse(t *testing.T) {
	// Test: Good GET Request line
	r, err := parse("GET / HTTP/1.1\r\nHost: localhost:4173\r\nUser-Agent: curl/7.81.0\r\nAccept: */*\r\n\r\n", 3)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "GET", r.Method)
	assert.Equal(t, "/", r.Target)
	assert.Equal(t, "1.1", r.HTTPVersion)

	// Test: Good GET Request line with path
	r, err = parse("GET /assets/app.js HTTP/1.1\r\nHost: localhost:4173\r\n\r\n", 1)
	require.NoError(t, err)
	assert.Equal(t, "/assets/app.js", r.Target)

	// Test: HTTP/1.0 is accepted
	r, err = parse("GET /robots.txt HTTP/1.0\r\n\r\n", 4)
	require.NoError(t, err)
	assert.Equal(t, "1.0", r.HTTPVersion)

	// Test: Invalid number of parts in request line
	_, err = parse("/coffee HTTP/1.1\r\nHost: localhost:4173\r\n\r\n", 5)
	require.ErrorIs(t, err, ErrIncorrectRequestLine)

	// Test: Invalid method (out of order) Request line
	_, err = parse("HTTP/1.1 GET /\r\nHost: localhost:4173\r\n\r\n", 2)
	require.Error(t, err)

	// Test: Invalid version in Request line
	_, err = parse("GET / HTTP/1\r\nHost: localhost:4173\r\n\r\n", 6)
	require.Error(t, err)

	// Test: HTTP/2 preface is not HTTP/1.x
	_, err = parse("GET / HTTP/2.0\r\n\r\n", 6)
	require.Error(t, err)
}

func TestHeadersParse(t *testing.T) {
	// Test: Standard Headers
	r, err := parse("GET / HTTP/1.1\r\nHost: localhost:4173\r\nUser-Agent: curl/7.81.0\r\nAccept: */*\r\n\r\n", 3)
	require.NoError(t, err)
	assert.Equal(t, "localhost:4173", r.Headers.Get("host"))
	assert.Equal(t, "curl/7.81.0", r.Headers.Get("user-agent"))
	assert.Equal(t, "*/*", r.Headers.Get("accept"))

	// Test: Empty Headers
	r, err = parse("GET / HTTP/1.1\r\n\r\n", 2)
	require.NoError(t, err)
	assert.Equal(t, "", r.Headers.Get("host"))

	// Test: Malformed Header
	_, err = parse("GET / HTTP/1.1\r\nHost localhost:4173\r\n\r\n", 3)
	require.Error(t, err)

	// Test: Duplicate Headers
	r, err = parse("GET / HTTP/1.1\r\nAccept: text/html\r\nAccept: application/json\r\n\r\n", 5)
	require.NoError(t, err)
	assert.Equal(t, "text/html, application/json", r.Headers.Get("accept"))

	// Test: Case Insensitive Headers
	r, err = parse("GET / HTTP/1.1\r\nHOST: localhost:4173\r\nuser-agent: curl/7.81.0\r\n\r\n", 4)
	require.NoError(t, err)
	assert.Equal(t, "localhost:4173", r.Headers.Get("host"))
	assert.Equal(t, "curl/7.81.0", r.Headers.Get("USER-AGENT"))

	// Test: Missing End of Headers
	_, err = parse("GET / HTTP/1.1\r\nHost: localhost:4173\r\n", 3)
	require.ErrorIs(t, err, ErrIncompleteRequest)
}

func TestLineTooLong(t *testing.T) {
	long := make([]byte, 8192)
	for i := range long {
		long[i] = 'a'
	}
	_, err := RequestFromReader(bufio.NewReaderSize(&chunkReader{
		data:            "GET /" + string(long) + " HTTP/1.1\r\n\r\n",
		numBytesPerRead: 512,
	}, 4096))
	require.ErrorIs(t, err, ErrLineTooLong)
}

func TestBodyParse(t *testing.T) {
	// Test: Standard Body
	r, err := parse("POST /submit HTTP/1.1\r\n"+
		"Host: localhost:4173\r\n"+
		"Content-Length: 13\r\n"+
		"\r\n"+
		"hello world!\n", 3)
	require.NoError(t, err)
	b, err := io.ReadAll(r.Body())
	require.NoError(t, err)
	assert.Equal(t, "hello world!\n", string(b))

	// Test: Empty Body
	r, err = parse("POST /submit HTTP/1.1\r\nHost: localhost:4173\r\nContent-Length: 0\r\n\r\n", 2)
	require.NoError(t, err)
	b, err = io.ReadAll(r.Body())
	require.NoError(t, err)
	assert.Empty(t, b)

	// Test: Body shorter than reported content length
	r, err = parse("POST /submit HTTP/1.1\r\n"+
		"Host: localhost:4173\r\n"+
		"Content-Length: 20\r\n"+
		"\r\n"+
		"partial content", 3)
	require.NoError(t, err)
	_, err = io.ReadAll(r.Body())
	require.ErrorIs(t, err, ErrIncompleteRequest)

	// Test: No Content-Length header
	r, err = parse("POST /submit HTTP/1.1\r\nHost: localhost:4173\r\n\r\nbody without content length", 5)
	require.NoError(t, err)
	b, err = io.ReadAll(r.Body())
	require.NoError(t, err)
	assert.Empty(t, b)

	// Test: Invalid Content-Length header
	_, err = parse("POST /submit HTTP/1.1\r\nHost: localhost:4173\r\nContent-Length: invalid\r\n\r\nsome body", 6)
	require.ErrorIs(t, err, ErrInvalidContentLength)
}

func TestChunkedBody(t *testing.T) {
	raw := "POST /submit HTTP/1.1\r\n" +
		"Host: localhost:4173\r\n" +
		"Transfer-Encoding: chunked\r\n" +
		"\r\n" +
		"5\r\nhello\r\n" +
		"7;ext=1\r\n world!\r\n" +
		"0\r\n" +
		"X-Checksum: abc\r\n" +
		"\r\n"

	r, err := parse(raw, 3)
	require.NoError(t, err)
	b, err := io.ReadAll(r.Body())
	require.NoError(t, err)
	assert.Equal(t, "hello world!", string(b))
}

func TestChunkedBodyMalformed(t *testing.T) {
	raw := "POST /submit HTTP/1.1\r\n" +
		"Transfer-Encoding: chunked\r\n" +
		"\r\n" +
		"zz\r\nhello\r\n0\r\n\r\n"

	r, err := parse(raw, 7)
	require.NoError(t, err)
	_, err = io.ReadAll(r.Body())
	require.ErrorIs(t, err, ErrMalformedChunk)
}

func TestChunkedBodyTruncated(t *testing.T) {
	raw := "POST /submit HTTP/1.1\r\n" +
		"Transfer-Encoding: chunked\r\n" +
		"\r\n" +
		"a\r\nhel"

	r, err := parse(raw, 7)
	require.NoError(t, err)
	_, err = io.ReadAll(r.Body())
	require.ErrorIs(t, err, ErrIncompleteRequest)
}

func TestTransferEncodingLastMustBeChunked(t *testing.T) {
	_, err := parse("POST / HTTP/1.1\r\nTransfer-Encoding: chunked, gzip\r\n\r\n", 8)
	require.ErrorIs(t, err, ErrUnsupportedTransferEncoding)
}

func TestBodyCloseDrainsForNextRequest(t *testing.T) {
	raw := "POST /a HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello" +
		"GET /b HTTP/1.1\r\nHost: x\r\n\r\n"
	br := bufio.NewReader(&chunkReader{data: raw, numBytesPerRead: 4})

	first, err := RequestFromReader(br)
	require.NoError(t, err)
	require.NoError(t, first.Body().Close())

	second, err := RequestFromReader(br)
	require.NoError(t, err)
	assert.Equal(t, "/b", second.Target)
}

func TestRequestURL(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		host     string
		wantHost string
		wantPath string
		wantErr  bool
	}{
		{name: "host header", target: "/assets/app.js?v=1", host: "dash.local:4173", wantHost: "dash.local:4173", wantPath: "/assets/app.js"},
		{name: "no host header", target: "/robots.txt", wantHost: DefaultHost, wantPath: "/robots.txt"},
		{name: "percent decoded", target: "/assets/a%20b.css", wantHost: DefaultHost, wantPath: "/assets/a b.css"},
		{name: "absolute form", target: "http://example.com/x", host: "other", wantHost: "example.com", wantPath: "/x"},
		{name: "relative target", target: "assets/app.js", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New("GET", tt.target, nil)
			if tt.host != "" {
				r.Headers.Add("Host", tt.host)
			}
			u, err := r.URL()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "http", u.Scheme)
			assert.Equal(t, tt.wantHost, u.Host)
			assert.Equal(t, tt.wantPath, u.Path)
		})
	}
}
