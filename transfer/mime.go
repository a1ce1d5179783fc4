package transfer

import (
	"mime"
	"path"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// wellKnownMIME maps extensions found in generated documentation which the
// system MIME database may not know about
var wellKnownMIME = map[string]string{
	".html":  "text/html; charset=utf-8",
	".css":   "text/css; charset=utf-8",
	".js":    "text/javascript; charset=utf-8",
	".json":  "application/json",
	".svg":   "image/svg+xml",
	".md":    "text/markdown",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".ico":   "image/x-icon",
	".zip":   "application/zip",
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// MIMEByName returns the MIME type for a file name, consulting wellKnownMIME
// first and then the system MIME database. An empty string is returned if
// the type is unknown, which leaves detection to the bucket driver.
func MIMEByName(name string) string {
	ext := path.Ext(name)
	if ct, ok := wellKnownMIME[ext]; ok {
		return ct
	}
	return mime.TypeByExtension(ext)
}
