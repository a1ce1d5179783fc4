package schema

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Key identifies a single object (or prefix) in a bucket
type Key struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
}

// Folder identifies a directory-like destination in a bucket. The path
// never carries a leading or trailing slash.
type Folder struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

var (
	reBucket = regexp.MustCompile(`^[a-z0-9][a-z0-9.\-]{1,61}[a-z0-9]$`)
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// ParseKey parses a key of the form s3://bucket/path
func ParseKey(raw string) (Key, error) {
	if raw == "" {
		return Key{}, ErrInvalidKey.With("empty key")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Key{}, ErrInvalidKey.Withf("%q: %v", raw, err)
	} else if u.Scheme != KeyScheme {
		return Key{}, ErrInvalidKey.Withf("%q: unsupported scheme %q", raw, u.Scheme)
	} else if u.User != nil || u.Port() != "" || u.RawQuery != "" || u.Fragment != "" {
		return Key{}, ErrInvalidKey.Withf("%q: unexpected URL component", raw)
	}
	return NewKey(u.Host, strings.TrimPrefix(u.Path, "/"))
}

// NewKey returns a key for a bucket and path within the bucket
func NewKey(bucket, path string) (Key, error) {
	if bucket == "" {
		return Key{}, ErrInvalidKey.With("missing bucket")
	} else if !IsBucketName(bucket) {
		return Key{}, ErrInvalidKey.Withf("invalid bucket name %q", bucket)
	} else if path == "" || path == "/" {
		return Key{}, ErrInvalidKey.Withf("missing path in bucket %q", bucket)
	} else if strings.HasPrefix(path, "/") {
		return Key{}, ErrInvalidKey.Withf("path %q must be relative to the bucket", path)
	}
	return Key{Bucket: bucket, Path: path}, nil
}

// ParseFolder parses a folder of the form s3://bucket/path/
func ParseFolder(raw string) (Folder, error) {
	key, err := ParseKey(raw)
	if err != nil {
		return Folder{}, err
	}
	return FolderFromKey(key)
}

// FolderFromKey interprets a key as a directory
func FolderFromKey(key Key) (Folder, error) {
	if _, err := NewKey(key.Bucket, key.Path); err != nil {
		return Folder{}, err
	}
	path := strings.Trim(key.Path, "/")
	if path == "" {
		return Folder{}, ErrInvalidKey.Withf("missing path in bucket %q", key.Bucket)
	}
	return Folder{Bucket: key.Bucket, Path: path}, nil
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// IsBucketName returns true if the name is a valid S3 bucket name. Names
// formatted as IP addresses are not valid.
func IsBucketName(name string) bool {
	if !reBucket.MatchString(name) {
		return false
	}
	if strings.Contains(name, "..") || net.ParseIP(name) != nil {
		return false
	}
	return true
}

// Validate returns ErrInvalidKey unless the folder names a valid bucket and
// a non-empty path without leading or trailing slashes
func (f Folder) Validate() error {
	normal, err := FolderFromKey(f.Key())
	if err != nil {
		return err
	}
	if normal != f {
		return ErrInvalidKey.Withf("folder path %q has leading or trailing slashes", f.Path)
	}
	return nil
}

// URL returns the key in s3://bucket/path form
func (k Key) URL() string {
	return KeyScheme + "://" + k.Bucket + "/" + k.Path
}

// Key returns the key for the folder, with a trailing slash
func (f Folder) Key() Key {
	return Key{Bucket: f.Bucket, Path: f.Path + "/"}
}

// Prefix returns the object key prefix for objects within the folder
func (f Folder) Prefix() string {
	return f.Path + "/"
}

// URL returns the folder in s3://bucket/path/ form
func (f Folder) URL() string {
	return f.Key().URL()
}

// ObjectKey returns the key of an object, given a slash-separated path
// relative to the folder
func (f Folder) ObjectKey(rel string) Key {
	return Key{Bucket: f.Bucket, Path: f.Prefix() + strings.TrimPrefix(rel, "/")}
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (k Key) String() string {
	return k.URL()
}

func (f Folder) String() string {
	return types.Stringify(f)
}
