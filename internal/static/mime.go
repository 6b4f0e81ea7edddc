package static

import "path/filepath"

// DefaultContentType is used for extensions missing from a MimeTable.
const DefaultContentType = "application/octet-stream"

// CacheControl is sent with every static asset; file names under /assets/
// are content hashed by the client build.
const CacheControl = "public, max-age=31536000, immutable"

// MimeTable maps a file extension, dot included, to a content type.
// Lookups are case-sensitive.
type MimeTable map[string]string

// DefaultMimeTable returns the content types of the client bundle.
func DefaultMimeTable() MimeTable {
	return MimeTable{
		".html":  "text/html",
		".js":    "application/javascript",
		".css":   "text/css",
		".json":  "application/json",
		".ico":   "image/x-icon",
		".png":   "image/png",
		".svg":   "image/svg+xml",
		".txt":   "text/plain",
		".woff2": "font/woff2",
		".webp":  "image/webp",
		".avif":  "image/avif",
	}
}

// ContentType returns the content type for name by its extension.
func (m MimeTable) ContentType(name string) string {
	if ct, ok := m[filepath.Ext(name)]; ok {
		return ct
	}
	return DefaultContentType
}
