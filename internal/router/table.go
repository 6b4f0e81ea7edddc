package router

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shravanasati/ledgerdash/internal/app"
)

// routeNode is one path segment of the route table. A node that ends a
// registered pattern holds its handlers keyed by method.
type routeNode struct {
	static map[string]*routeNode

	// param captures any single segment under paramKey, eg. :token
	param    *routeNode
	paramKey string

	methods map[string]app.Handler
}

func newRouteNode() *routeNode {
	return &routeNode{static: make(map[string]*routeNode)}
}

func splitPath(p string) []string {
	var segs []string
	for s := range strings.SplitSeq(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// insert registers h for method on pattern. Two patterns may not name the
// same parameter position differently.
func (n *routeNode) insert(method, pattern string, h app.Handler) {
	node := n
	for _, seg := range splitPath(pattern) {
		key, isParam := strings.CutPrefix(seg, ":")
		if !isParam {
			child, ok := node.static[seg]
			if !ok {
				child = newRouteNode()
				node.static[seg] = child
			}
			node = child
			continue
		}

		switch {
		case node.param == nil:
			node.param = newRouteNode()
			node.paramKey = key
		case node.paramKey != key:
			panic(fmt.Sprintf("router: %s %q names parameter :%s, already registered as :%s", method, pattern, key, node.paramKey))
		}
		node = node.param
	}

	if node.methods == nil {
		node.methods = make(map[string]app.Handler)
	}
	node.methods[method] = h
}

// lookup finds the node registered for segs, filling params on the way.
// Static segments are tried before the parameter, and a dead end below a
// static match falls back to the parameter.
func (n *routeNode) lookup(segs []string, params map[string]string) *routeNode {
	if len(segs) == 0 {
		if n.methods == nil {
			return nil
		}
		return n
	}

	if child, ok := n.static[segs[0]]; ok {
		if found := child.lookup(segs[1:], params); found != nil {
			return found
		}
	}
	if n.param != nil {
		if found := n.param.lookup(segs[1:], params); found != nil {
			params[n.paramKey] = segs[0]
			return found
		}
	}
	return nil
}

// allowed lists the methods the node answers, HEAD included wherever GET is.
func (n *routeNode) allowed() []string {
	methods := make([]string, 0, len(n.methods)+1)
	for m := range n.methods {
		methods = append(methods, m)
	}
	if _, ok := n.methods["GET"]; ok && !slices.Contains(methods, "HEAD") {
		methods = append(methods, "HEAD")
	}
	slices.Sort(methods)
	return methods
}
