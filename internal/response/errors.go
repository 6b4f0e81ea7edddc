package response

import "errors"

var ErrStatusLineAlreadyWritten = errors.New("status line already written")
var ErrHeadersAlreadyWritten = errors.New("headers already written")
var ErrNoBodyState = errors.New("body already written")

// ErrBodySource wraps failures reading a response body, as opposed to
// failures writing to the peer.
var ErrBodySource = errors.New("response body source failed")

// ErrShortBody is returned when a body ends before its declared content-length.
var ErrShortBody = errors.New("response body shorter than content-length")

// ErrNotRegularFile is returned when a file response is built from a
// directory or other non-regular file.
var ErrNotRegularFile = errors.New("not a regular file")
