// Package router maps method and path onto application handlers.
package router

import (
	"context"
	"strings"

	"github.com/shravanasati/ledgerdash/internal/app"
)

var defaultNotFoundHandler app.HandlerFunc = func(ctx context.Context, r *app.Request) (*app.Response, error) {
	return app.Text(404, "Not Found"), nil
}

type Middleware func(app.Handler) app.Handler

// Router dispatches on a table of path patterns. Patterns are static
// segments and :name parameters, whose values land in app.Request.PathParams.
type Router struct {
	root            *routeNode
	notFoundHandler app.Handler
	middlewares     []Middleware
}

// Creates a new router.
func NewRouter() *Router {
	return &Router{root: newRouteNode(), notFoundHandler: defaultNotFoundHandler}
}

// Get registers a GET route. HEAD requests are answered by it too.
func (r *Router) Get(pattern string, handler app.Handler) {
	r.root.insert("GET", pattern, handler)
}

// NotFound sets the handler for when no route is found.
func (r *Router) NotFound(handler app.Handler) {
	r.notFoundHandler = handler
}

// Use adds middleware to the router.
func (r *Router) Use(m ...Middleware) {
	r.middlewares = append(r.middlewares, m...)
}

func (r *Router) chain(h app.Handler) app.Handler {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](h)
	}
	return h
}

// Handler returns an app.Handler that routes requests by path and method:
// an unknown path goes to the not found handler, a known path without a
// handler for the method gets 405 with an Allow header, and HEAD uses the
// GET handler when none is registered for it. The server writes only the
// head for HEAD.
//
// Middleware registered with Use wraps the whole routing step, so it also
// sees 404 and 405 responses.
func (router *Router) Handler() app.Handler {
	var routingHandler app.HandlerFunc = func(ctx context.Context, r *app.Request) (*app.Response, error) {
		path := "/"
		if r.URL != nil {
			path = r.URL.Path
		}

		params := make(map[string]string)
		node := router.root.lookup(splitPath(path), params)
		if node == nil {
			return router.notFoundHandler.Handle(ctx, r)
		}

		handler, ok := node.methods[r.Method]
		if !ok && r.Method == "HEAD" {
			handler, ok = node.methods["GET"]
		}
		if !ok {
			resp := app.Text(405, "Method Not Allowed")
			resp.Headers.Set("allow", strings.Join(node.allowed(), ", "))
			return resp, nil
		}

		r.PathParams = params
		return handler.Handle(ctx, r)
	}

	return router.chain(routingHandler)
}
