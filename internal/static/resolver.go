// Package static decides which request paths name files of the built
// client bundle and maps them onto the asset root without letting a path
// escape it.
package static

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// AssetPrefix marks request paths that are always static candidates.
const AssetPrefix = "/assets/"

// AllowList is the set of bare file names served from the root of the
// asset directory.
type AllowList map[string]struct{}

// NewAllowList builds an AllowList from names.
func NewAllowList(names ...string) AllowList {
	al := make(AllowList, len(names))
	for _, n := range names {
		al[n] = struct{}{}
	}
	return al
}

// Contains reports whether name is allowed.
func (al AllowList) Contains(name string) bool {
	_, ok := al[name]
	return ok
}

// DefaultAllowList returns the root-level files shipped with the client bundle.
func DefaultAllowList() AllowList {
	return NewAllowList(
		"favicon.ico",
		"manifest.json",
		"robots.txt",
		"logo.png",
		"logo192.png",
		"logo512.png",
		"apple-touch-icon.png",
		"og-image.png",
	)
}

// Resolver maps request paths onto regular files below a fixed root.
// It is immutable and safe for concurrent use.
type Resolver struct {
	root  string
	allow AllowList
}

// NewResolver returns a Resolver rooted at root, which is made absolute
// once here. The directory need not exist yet; lookups simply miss.
func NewResolver(root string, allow AllowList) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve asset root %q: %w", root, err)
	}
	if allow == nil {
		allow = AllowList{}
	}
	return &Resolver{root: filepath.Clean(abs), allow: allow}, nil
}

// Root returns the absolute asset root.
func (r *Resolver) Root() string {
	return r.root
}

// IsCandidate reports whether urlPath may name a static asset. It never
// touches the filesystem.
func (r *Resolver) IsCandidate(urlPath string) bool {
	if strings.HasPrefix(urlPath, AssetPrefix) {
		return true
	}
	name, ok := strings.CutPrefix(urlPath, "/")
	return ok && r.allow.Contains(name)
}

// Resolve returns the file that urlPath names, or false when it is not a
// servable asset. Missing files, directories and stat errors all count as
// "not an asset"; Resolve never fails.
//
// Normalization and the containment check run before the filesystem is
// consulted, and the normalized path must still be a candidate, so
// /assets/../data.db is rejected rather than resolved to the root.
func (r *Resolver) Resolve(urlPath string) (string, bool) {
	if !r.IsCandidate(urlPath) || strings.IndexByte(urlPath, 0) >= 0 {
		return "", false
	}

	cleaned := path.Clean("/" + urlPath)
	if !r.IsCandidate(cleaned) {
		return "", false
	}

	rel := strings.TrimLeft(cleaned, "/")
	full, ok := r.join(rel)
	if !ok {
		return "", false
	}

	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return full, true
}

// join appends rel to the root and checks that the result stays below it.
func (r *Resolver) join(rel string) (string, bool) {
	full := filepath.Join(r.root, filepath.FromSlash(rel))
	within, err := filepath.Rel(r.root, full)
	if err != nil || within == "." || within == ".." ||
		strings.HasPrefix(within, ".."+string(filepath.Separator)) || filepath.IsAbs(within) {
		return "", false
	}
	return full, true
}
