package request

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"
)

// chunkedReader decodes a chunked request body as it is read.
// Trailer fields are read and dropped.
type chunkedReader struct {
	br        *bufio.Reader
	remaining int64 // bytes left in the current chunk
	needCRLF  bool  // a chunk's data has been consumed but not its CRLF
	done      bool
	err       error
}

func newChunkedReader(br *bufio.Reader) *chunkedReader {
	return &chunkedReader{br: br}
}

func parseHexadecimal(hex []byte) (int64, error) {
	return strconv.ParseInt(string(hex), 16, 64)
}

func (cr *chunkedReader) beginChunk() error {
	if cr.needCRLF {
		line, err := readLine(cr.br)
		if err != nil {
			return err
		}
		if len(line) != 0 {
			return ErrMalformedChunk
		}
		cr.needCRLF = false
	}

	line, err := readLine(cr.br)
	if err != nil {
		return err
	}
	size, _, _ := bytes.Cut(line, []byte(";"))
	n, err := parseHexadecimal(bytes.TrimSpace(size))
	if err != nil || n < 0 {
		return ErrMalformedChunk
	}
	if n > 0 {
		cr.remaining = n
		return nil
	}

	// last chunk, then optional trailer section up to an empty line
	for {
		line, err := readLine(cr.br)
		if err != nil {
			return err
		}
		if len(line) == 0 {
			break
		}
	}
	cr.done = true
	return nil
}

func (cr *chunkedReader) Read(p []byte) (int, error) {
	if cr.err != nil {
		return 0, cr.err
	}
	for cr.remaining == 0 {
		if cr.done {
			return 0, io.EOF
		}
		if err := cr.beginChunk(); err != nil {
			if errors.Is(err, io.EOF) {
				err = ErrIncompleteRequest
			}
			cr.err = err
			return 0, err
		}
	}

	if int64(len(p)) > cr.remaining {
		p = p[:cr.remaining]
	}
	n, err := cr.br.Read(p)
	cr.remaining -= int64(n)
	if cr.remaining == 0 {
		cr.needCRLF = true
	}
	if errors.Is(err, io.EOF) {
		err = ErrIncompleteRequest
		cr.err = err
	}
	return n, err
}

// Close discards the rest of the body so the connection can be reused.
func (cr *chunkedReader) Close() error {
	_, err := io.Copy(io.Discard, cr)
	return err
}
