package response

import (
	"fmt"
	"io"
	"io/fs"
	"strconv"
)

// File is an open file handle. It is compatible with [os.File].
type File interface {
	io.ReadCloser
	Stat() (fs.FileInfo, error)
}

// NewFileResponse creates a response streaming f with its size as the
// content length. f must be a regular file. On error f is left open for the
// caller to close; otherwise it is closed once the response has been written.
func NewFileResponse(f File, contentType string) (Response, error) {
	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if !st.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotRegularFile, st.Name(), st.Mode().Type())
	}
	return NewBaseResponse().
		WithHeader("content-type", contentType).
		WithHeader("content-length", strconv.FormatInt(st.Size(), 10)).
		WithBody(f), nil
}
