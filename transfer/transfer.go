package transfer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"sync"

	// Packages
	s3 "github.com/aws/aws-sdk-go-v2/service/s3"
	docuploader "github.com/mutablelogic/go-docuploader"
	blob "gocloud.dev/blob"
	memblob "gocloud.dev/blob/memblob"
	s3blob "gocloud.dev/blob/s3blob"

	// Drivers
	_ "gocloud.dev/blob/fileblob" // file:// URLs
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Transfer moves files between the local filesystem and buckets, using the
// Go CDK blob abstraction. Buckets are opened on first use by name.
type Transfer struct {
	*opt
	sync.Mutex
	s3     *s3.Client
	opened map[string]*blob.Bucket
}

var _ docuploader.Transfer = (*Transfer)(nil)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a transfer. By default buckets are S3 buckets, with
// configuration loaded from the environment on first use.
func New(opts ...Opt) (*Transfer, error) {
	self := new(Transfer)
	if opt, err := applyOpts(opts...); err != nil {
		return nil, err
	} else {
		self.opt = opt
	}
	self.opened = make(map[string]*blob.Bucket)

	// Return success
	return self, nil
}

// Close the buckets opened by the transfer
func (t *Transfer) Close() error {
	t.Lock()
	defer t.Unlock()

	var result error
	for name, bucket := range t.opened {
		result = errors.Join(result, bucket.Close())
		delete(t.opened, name)
	}

	// Return any errors
	return result
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Scheme returns the storage scheme: s3, file or mem
func (t *Transfer) Scheme() string {
	return t.scheme
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// bucket returns the named bucket, opening it if necessary
func (t *Transfer) bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	t.Lock()
	defer t.Unlock()

	if bucket, exists := t.buckets[name]; exists {
		return bucket, nil
	} else if bucket, exists := t.opened[name]; exists {
		return bucket, nil
	}

	var bucket *blob.Bucket
	var err error
	switch t.scheme {
	case "s3":
		if t.s3 == nil {
			if t.s3, err = t.newS3Client(ctx); err != nil {
				return nil, err
			}
		}
		bucket, err = s3blob.OpenBucket(ctx, t.s3, name, nil)
	case "file":
		openURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(t.root, name)), RawQuery: "create_dir=true"}
		bucket, err = blob.OpenBucket(ctx, openURL.String())
	case "mem":
		bucket = memblob.OpenBucket(nil)
	default:
		err = fmt.Errorf("unsupported scheme %q", t.scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %q: %w", name, err)
	}

	// Cache the bucket
	t.opened[name] = bucket

	// Return success
	return bucket, nil
}
