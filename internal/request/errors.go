package request

import "errors"

var (
	ErrIncorrectRequestLine        = errors.New("incorrect request line")
	ErrIncompleteRequest           = errors.New("incomplete request")
	ErrLineTooLong                 = errors.New("request line or header field too long")
	ErrTooManyHeaders              = errors.New("too many header fields")
	ErrInvalidContentLength        = errors.New("invalid content-length")
	ErrUnsupportedTransferEncoding = errors.New("last transfer coding must be chunked")
	ErrMalformedChunk              = errors.New("malformed chunk")
)
