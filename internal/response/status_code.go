package response

// StatusCode defines HTTP status codes as enums
type StatusCode int

const (
	StatusContinue           StatusCode = 100
	StatusSwitchingProtocols StatusCode = 101

	StatusOK             StatusCode = 200
	StatusCreated        StatusCode = 201
	StatusAccepted       StatusCode = 202
	StatusNoContent      StatusCode = 204
	StatusPartialContent StatusCode = 206

	StatusMovedPermanently  StatusCode = 301
	StatusFound             StatusCode = 302
	StatusSeeOther          StatusCode = 303
	StatusNotModified       StatusCode = 304
	StatusTemporaryRedirect StatusCode = 307
	StatusPermanentRedirect StatusCode = 308

	StatusBadRequest                  StatusCode = 400
	StatusUnauthorized                StatusCode = 401
	StatusForbidden                   StatusCode = 403
	StatusNotFound                    StatusCode = 404
	StatusMethodNotAllowed            StatusCode = 405
	StatusRequestTimeout              StatusCode = 408
	StatusGone                        StatusCode = 410
	StatusLengthRequired              StatusCode = 411
	StatusPayloadTooLarge             StatusCode = 413
	StatusURITooLong                  StatusCode = 414
	StatusUnsupportedMediaType        StatusCode = 415
	StatusUnprocessableEntity         StatusCode = 422
	StatusTooManyRequests             StatusCode = 429
	StatusRequestHeaderFieldsTooLarge StatusCode = 431

	StatusInternalServerError     StatusCode = 500
	StatusNotImplemented          StatusCode = 501
	StatusBadGateway              StatusCode = 502
	StatusServiceUnavailable      StatusCode = 503
	StatusGatewayTimeout          StatusCode = 504
	StatusHTTPVersionNotSupported StatusCode = 505
)

var reasonPhrases = map[StatusCode]string{
	StatusContinue:           "Continue",
	StatusSwitchingProtocols: "Switching Protocols",

	StatusOK:             "OK",
	StatusCreated:        "Created",
	StatusAccepted:       "Accepted",
	StatusNoContent:      "No Content",
	StatusPartialContent: "Partial Content",

	StatusMovedPermanently:  "Moved Permanently",
	StatusFound:             "Found",
	StatusSeeOther:          "See Other",
	StatusNotModified:       "Not Modified",
	StatusTemporaryRedirect: "Temporary Redirect",
	StatusPermanentRedirect: "Permanent Redirect",

	StatusBadRequest:                  "Bad Request",
	StatusUnauthorized:                "Unauthorized",
	StatusForbidden:                   "Forbidden",
	StatusNotFound:                    "Not Found",
	StatusMethodNotAllowed:            "Method Not Allowed",
	StatusRequestTimeout:              "Request Timeout",
	StatusGone:                        "Gone",
	StatusLengthRequired:              "Length Required",
	StatusPayloadTooLarge:             "Payload Too Large",
	StatusURITooLong:                  "URI Too Long",
	StatusUnsupportedMediaType:        "Unsupported Media Type",
	StatusUnprocessableEntity:         "Unprocessable Entity",
	StatusTooManyRequests:             "Too Many Requests",
	StatusRequestHeaderFieldsTooLarge: "Request Header Fields Too Large",

	StatusInternalServerError:     "Internal Server Error",
	StatusNotImplemented:          "Not Implemented",
	StatusBadGateway:              "Bad Gateway",
	StatusServiceUnavailable:      "Service Unavailable",
	StatusGatewayTimeout:          "Gateway Timeout",
	StatusHTTPVersionNotSupported: "HTTP Version Not Supported",
}

// GetStatusReason returns the reason phrase for the given status code,
// or "" when the code is not known. An empty reason phrase is valid on
// the wire.
func GetStatusReason(s StatusCode) string {
	return reasonPhrases[s]
}

// bodyAllowed reports whether a response with this status may carry content.
// https://datatracker.ietf.org/doc/html/rfc9112#section-6.3-2.1
func bodyAllowed(s StatusCode) bool {
	return s >= 200 && s != StatusNoContent && s != StatusNotModified
}
