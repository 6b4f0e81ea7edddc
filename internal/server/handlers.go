package server

import (
	"github.com/shravanasati/ledgerdash/internal/request"
	"github.com/shravanasati/ledgerdash/internal/response"
)

// Represents a request handler function. Takes a request and returns a response.
type Handler func(*request.Request) response.Response
