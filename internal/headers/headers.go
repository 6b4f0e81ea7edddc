package headers

import (
	"bytes"
	"iter"
	"maps"
	"regexp"
	"slices"
	"strings"
)

// https://datatracker.ietf.org/doc/html/rfc9110#name-tokens
var fieldNameRegex = regexp.MustCompile(`^[a-zA-Z0-9!#$%&'*\+\-.^_\x60\|~]+$`)

// Headers is a case-insensitive collection of HTTP header fields.
// A field may carry several values; they are kept apart so that fields
// like set-cookie survive a round trip unchanged.
type Headers struct {
	headers map[string][]string
}

func isValidFieldName(key string) bool {
	return fieldNameRegex.MatchString(key)
}

func validHeaderValueByte(c byte) bool {
	switch {
	case c == 0x09: // HTAB
		return true
	case c == 0x20: // SP
		return true
	case 0x21 <= c && c <= 0x7E: // VCHAR
		return true
	case c >= 0x80: // obs-text
		return true
	}
	return false
}

func isValidFieldValue(val []byte) bool {
	for _, b := range val {
		if !validHeaderValueByte(b) {
			return false
		}
	}
	return true
}

func normalizeKey(key string) string {
	return strings.ToLower(key)
}

// Add appends a value to the field. Invalid names or values are dropped
// to prevent response splitting.
func (h *Headers) Add(key, value string) {
	if !isValidFieldName(key) || !isValidFieldValue([]byte(value)) {
		return
	}
	key = normalizeKey(key)
	h.headers[key] = append(h.headers[key], value)
}

// Set replaces every value of the field with value.
func (h *Headers) Set(key, value string) {
	if !isValidFieldName(key) || !isValidFieldValue([]byte(value)) {
		return
	}
	h.headers[normalizeKey(key)] = []string{value}
}

// Get returns the field's values joined by ", ", or "" when absent.
func (h *Headers) Get(key string) string {
	return strings.Join(h.headers[normalizeKey(key)], ", ")
}

// Values returns a copy of the individual values of the field.
func (h *Headers) Values(key string) []string {
	return slices.Clone(h.headers[normalizeKey(key)])
}

// Has reports whether the field is present.
func (h *Headers) Has(key string) bool {
	_, ok := h.headers[normalizeKey(key)]
	return ok
}

// Remove deletes the field.
func (h *Headers) Remove(key string) {
	delete(h.headers, normalizeKey(key))
}

// All yields every (name, value) pair. Names are lower case; a field with
// several values is yielded once per value.
func (h *Headers) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for k, vs := range h.headers {
			for _, v := range vs {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// Keys returns the field names in sorted order.
func (h *Headers) Keys() []string {
	return slices.Sorted(maps.Keys(h.headers))
}

// Clone returns a deep copy.
func (h *Headers) Clone() *Headers {
	c := NewHeaders()
	for k, vs := range h.headers {
		c.headers[k] = slices.Clone(vs)
	}
	return c
}

// ParseFieldLine parses a single header line and adds it to the headers.
func (h *Headers) ParseFieldLine(data []byte) (err error) {
	colonPos := bytes.IndexByte(data, ':')
	if colonPos == -1 {
		return ErrMalformedHeader
	}

	// leading whitespace would make this an obs-fold continuation
	hkey := data[:colonPos]
	if len(hkey) == 0 || hkey[0] == ' ' || hkey[0] == '\t' {
		return ErrMalformedHeader
	}
	hvalue := bytes.Trim(data[colonPos+1:], " \t")

	if !fieldNameRegex.Match(hkey) || !isValidFieldValue(hvalue) {
		return ErrMalformedHeader
	}

	h.Add(string(hkey), string(hvalue))
	return nil
}

// Size returns the number of distinct fields.
func (h *Headers) Size() int {
	return len(h.headers)
}

// NewHeaders creates an empty Headers.
func NewHeaders() *Headers {
	return &Headers{
		headers: map[string][]string{},
	}
}
