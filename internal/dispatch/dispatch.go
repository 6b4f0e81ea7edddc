// Package dispatch is the front door of the server: every request is first
// offered to the static asset resolver and otherwise handed, once, to the
// application handler.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"

	"go.uber.org/zap"

	"github.com/shravanasati/ledgerdash/internal/app"
	"github.com/shravanasati/ledgerdash/internal/request"
	"github.com/shravanasati/ledgerdash/internal/response"
	"github.com/shravanasati/ledgerdash/internal/static"
)

var (
	ErrHandlerPanic  = errors.New("handler panicked")
	ErrNilResponse   = errors.New("handler returned no response")
	ErrInvalidStatus = errors.New("handler returned an invalid status code")
)

// InternalErrorBody is the fixed body of every 500 produced here.
const InternalErrorBody = "Internal Server Error"

// AssetResolver maps a URL path to a file on disk. *static.Resolver
// implements it.
type AssetResolver interface {
	Resolve(urlPath string) (string, bool)
}

// Dispatcher routes requests to static files or to the application.
// It holds no per-request state and is safe for concurrent use.
type Dispatcher struct {
	assets AssetResolver
	mimes  static.MimeTable
	next   app.Handler
	logger *zap.Logger
}

// New returns a Dispatcher. A nil mimes uses static.DefaultMimeTable and a
// nil logger discards output.
func New(assets AssetResolver, mimes static.MimeTable, next app.Handler, logger *zap.Logger) *Dispatcher {
	if mimes == nil {
		mimes = static.DefaultMimeTable()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{assets: assets, mimes: mimes, next: next, logger: logger}
}

// Dispatch serves one request. It always returns a response; failures are
// logged once and become a plain-text 500.
func (d *Dispatcher) Dispatch(req *request.Request) response.Response {
	log := d.logger.With(
		zap.String("request_id", req.ID),
		zap.String("method", req.Method),
		zap.String("target", req.Target),
	)
	st := stateReceived

	u, err := req.URL()
	if err != nil {
		log.Debug("unparseable request target", zap.Error(err))
		return response.NewStatusTextResponse(response.StatusBadRequest)
	}

	st = st.to(stateResolving)
	if file, ok := d.assets.Resolve(u.Path); ok {
		st = st.to(stateStaticStreaming)
		resp, err := d.serveFile(file)
		if err != nil {
			return d.fail(log, st, err)
		}
		log.Debug("dispatched", zap.Stringer("state", st.to(stateCompleted)), zap.String("file", file))
		return resp
	}

	st = st.to(stateDelegating)
	resp, err := d.delegate(req, u)
	if err != nil {
		return d.fail(log, st, err)
	}
	log.Debug("dispatched", zap.Stringer("state", st.to(stateCompleted)), zap.Int("status", int(resp.GetStatusCode())))
	return resp
}

func (d *Dispatcher) serveFile(name string) (response.Response, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open resolved asset: %w", err)
	}
	resp, err := response.NewFileResponse(f, d.mimes.ContentType(name))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("resolved asset %s: %w", name, err)
	}
	return resp.WithHeader("cache-control", static.CacheControl), nil
}

func (d *Dispatcher) delegate(req *request.Request, u *url.URL) (response.Response, error) {
	// only methods that may carry content get a body
	body := req.Body()
	if req.Method == string(request.GET) || req.Method == string(request.HEAD) {
		body = nil
	}
	ar := app.NewRequest(req.Context(), req.Method, u, req.Headers.Clone(), body)

	resp, err := d.invoke(req.Context(), ar)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, err
	}
	if resp == nil {
		return nil, ErrNilResponse
	}
	if resp.StatusCode < 100 || resp.StatusCode > 999 {
		if resp.Body != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, resp.StatusCode)
	}

	out := response.NewBaseResponse().WithStatusCode(response.StatusCode(resp.StatusCode))
	if resp.Headers != nil {
		h := out.GetHeaders()
		for k, v := range resp.Headers.All() {
			h.Add(k, v)
		}
	}
	if resp.Body != nil {
		out.WithBody(resp.Body)
	}
	return out, nil
}

// invoke calls the application exactly once and turns a panic into an error.
func (d *Dispatcher) invoke(ctx context.Context, r *app.Request) (resp *app.Response, err error) {
	defer func() {
		if p := recover(); p != nil {
			resp, err = nil, fmt.Errorf("%w: %v", ErrHandlerPanic, p)
		}
	}()
	return d.next.Handle(ctx, r)
}

func (d *Dispatcher) fail(log *zap.Logger, st state, err error) response.Response {
	log.Error("request failed", zap.Stringer("state", st), zap.Stringer("next", st.to(stateFailed)), zap.Error(err))
	return response.NewTextResponse(InternalErrorBody).
		WithStatusCode(response.StatusInternalServerError)
}
