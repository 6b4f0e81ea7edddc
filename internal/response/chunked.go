package response

import (
	"fmt"
	"io"
)

// chunkedWriter writes each Write call as a single chunk.
type chunkedWriter struct {
	w io.Writer
}

func (cw *chunkedWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		// a zero-size chunk would end the body
		return 0, nil
	}
	if _, err := fmt.Fprintf(cw.w, "%x\r\n", len(p)); err != nil {
		return 0, err
	}
	n, err := cw.w.Write(p)
	if err != nil {
		return n, err
	}
	if _, err := io.WriteString(cw.w, "\r\n"); err != nil {
		return n, err
	}
	return n, nil
}

// Close writes the last chunk and the empty trailer section.
func (cw *chunkedWriter) Close() error {
	_, err := io.WriteString(cw.w, "0\r\n\r\n")
	return err
}
