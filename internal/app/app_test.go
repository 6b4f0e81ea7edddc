package app

import (
	"context"
	"io"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerFunc(t *testing.T) {
	var seen *Request
	h := HandlerFunc(func(ctx context.Context, r *Request) (*Response, error) {
		seen = r
		return Text(200, "ok"), nil
	})

	u, err := url.Parse("http://localhost/api/flows?limit=5")
	require.NoError(t, err)
	req := NewRequest(context.Background(), "GET", u, nil, nil)

	resp, err := h.Handle(req.Context(), req)
	require.NoError(t, err)
	assert.Same(t, req, seen)
	assert.Equal(t, "5", req.Query("limit"))
	assert.NotNil(t, req.Headers)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestJSON(t *testing.T) {
	resp, err := JSON(201, map[string]int{"count": 3})
	require.NoError(t, err)

	assert.Equal(t, 201, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers.Get("content-type"))
	assert.Equal(t, "11", resp.Headers.Get("content-length"))
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":3}`, string(b))
}

func TestJSONUnsupportedValue(t *testing.T) {
	_, err := JSON(200, make(chan int))
	assert.Error(t, err)
}

func TestNilContextAndURL(t *testing.T) {
	req := &Request{}
	assert.NotNil(t, req.Context())
	assert.Equal(t, "", req.Query("x"))
}
