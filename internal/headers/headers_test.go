package headers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderParsing(t *testing.T) {
	// Test: Valid single header
	headers := NewHeaders()
	err := headers.ParseFieldLine([]byte("Host: localhost:4173"))
	require.NoError(t, err)
	assert.Equal(t, "localhost:4173", headers.Get("Host"))
	assert.Equal(t, "", headers.Get("Missing"))

	// Test: Valid single header with extra whitespace
	headers = NewHeaders()
	err = headers.ParseFieldLine([]byte("Host:   localhost:4173   "))
	require.NoError(t, err)
	assert.Equal(t, "localhost:4173", headers.Get("Host"))

	// Test: Empty line
	headers = NewHeaders()
	require.Error(t, headers.ParseFieldLine([]byte("")))

	// Test: Invalid spacing header
	// https://datatracker.ietf.org/doc/html/rfc9112#section-5
	headers = NewHeaders()
	require.Error(t, headers.ParseFieldLine([]byte("       Host : localhost:4173       ")))
	require.Error(t, headers.ParseFieldLine([]byte("Host : localhost:4173")))

	// Test: Invalid character in header key
	headers = NewHeaders()
	require.Error(t, headers.ParseFieldLine([]byte("HÂ©st: localhost:4173")))

	// Test: Multiple values of the same header
	headers = NewHeaders()
	require.NoError(t, headers.ParseFieldLine([]byte("Accept: text/html")))
	require.NoError(t, headers.ParseFieldLine([]byte("Accept: application/json")))
	assert.Equal(t, "text/html, application/json", headers.Get("Accept"))
	assert.Equal(t, []string{"text/html", "application/json"}, headers.Values("accept"))

	// Test: folded continuation line
	headers = NewHeaders()
	require.NoError(t, headers.ParseFieldLine([]byte("X-Long-Header: part1")))
	require.Error(t, headers.ParseFieldLine([]byte(" part2")))
	require.Error(t, headers.ParseFieldLine([]byte("\tX-Folded: part2")))

	t.Run("Invalid Header Names", func(t *testing.T) {
		invalidNames := []string{
			"Invalid Name:",
			"Invalid@Name:",
			"Invalid/Name:",
			"Name\x00:",
			"Name\x7f:",
		}

		for _, name := range invalidNames {
			headers := NewHeaders()
			err := headers.ParseFieldLine([]byte(name + " value"))
			assert.Error(t, err, "Expected error for header name: `%s`", name)
		}
	})

	t.Run("Invalid Header Values", func(t *testing.T) {
		invalidValues := []string{
			"Value with\x00null",
			"Value with\x07bell",
			"Value with\x1funit separator",
		}

		for _, value := range invalidValues {
			headers := NewHeaders()
			err := headers.ParseFieldLine([]byte("Valid-Name: " + value))
			assert.Error(t, err, "Expected error for header value: %q", value)
		}
	})
}

func TestHeadersCaseInsensitive(t *testing.T) {
	h := NewHeaders()
	h.Add("Content-Type", "text/css")

	assert.Equal(t, "text/css", h.Get("content-type"))
	assert.Equal(t, "text/css", h.Get("CONTENT-TYPE"))
	assert.True(t, h.Has("Content-type"))

	h.Remove("CONTENT-TYPE")
	assert.False(t, h.Has("content-type"))
	assert.Equal(t, 0, h.Size())
}

func TestHeadersSetReplaces(t *testing.T) {
	h := NewHeaders()
	h.Add("Vary", "Accept")
	h.Add("Vary", "Origin")
	h.Set("vary", "Cookie")

	assert.Equal(t, []string{"Cookie"}, h.Values("Vary"))
}

func TestHeadersDropInvalid(t *testing.T) {
	h := NewHeaders()
	h.Add("X-Evil", "a\r\nSet-Cookie: x=1")
	h.Set("Bad Name", "v")

	assert.Equal(t, 0, h.Size())
}

func TestHeadersAllYieldsEachValue(t *testing.T) {
	h := NewHeaders()
	h.Add("Set-Cookie", "a=1")
	h.Add("Set-Cookie", "b=2")
	h.Add("Content-Length", "0")

	var cookies []string
	for k, v := range h.All() {
		if k == "set-cookie" {
			cookies = append(cookies, v)
		}
	}
	assert.ElementsMatch(t, []string{"a=1", "b=2"}, cookies)
	assert.Equal(t, []string{"content-length", "set-cookie"}, h.Keys())
}

func TestHeadersClone(t *testing.T) {
	h := NewHeaders()
	h.Add("X-A", "1")

	c := h.Clone()
	c.Add("X-A", "2")
	c.Set("X-B", "3")

	assert.Equal(t, "1", h.Get("x-a"))
	assert.False(t, h.Has("x-b"))
	assert.Equal(t, map[string]string{"x-a": "1, 2", "x-b": "3"}, collect(c))
}

func collect(h *Headers) map[string]string {
	out := map[string]string{}
	for _, k := range h.Keys() {
		out[k] = h.Get(k)
	}
	return out
}
