package docuploader

import (
	"context"
	"net/http"

	// Packages
	schema "github.com/mutablelogic/go-docuploader/schema"
)

////////////////////////////////////////////////////////////////////////////////
// INTERFACES

// Transfer moves files between the local filesystem and object storage
type Transfer interface {
	// Sync makes the destination folder a mirror of the local folder. When
	// delete is true, objects in the destination which are not in the source
	// are removed. The progress function is called serially with a
	// non-decreasing fraction between zero and one, and may be nil.
	Sync(ctx context.Context, from string, to schema.Folder, delete bool, progress func(float64)) error

	// Copy downloads an object to a local file
	Copy(ctx context.Context, from schema.Key, to string) error

	// Put uploads a local file as an object
	Put(ctx context.Context, from string, to schema.Key) error

	// Delete removes an object
	Delete(ctx context.Context, key schema.Key) error
}

// Doer sends an HTTP request and returns the response. A response with
// any status code is not an error.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

////////////////////////////////////////////////////////////////////////////////
// TYPES

// DoerFunc adapts a function to the Doer interface
type DoerFunc func(*http.Request) (*http.Response, error)

// Do calls fn(req)
func (fn DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return fn(req)
}
