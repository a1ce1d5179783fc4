package transfer

import (
	"context"
	"os"
	"path/filepath"

	// Packages
	schema "github.com/mutablelogic/go-docuploader/schema"
	blob "gocloud.dev/blob"
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Copy downloads an object to a local file, creating parent directories.
// A partial file is removed on error.
func (t *Transfer) Copy(ctx context.Context, from schema.Key, to string) error {
	bucket, err := t.bucket(ctx, from.Bucket)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return err
	}

	w, err := os.Create(to)
	if err != nil {
		return err
	}
	if err := bucket.Download(ctx, from.Path, w, nil); err != nil {
		w.Close()
		os.Remove(to)
		return blobErr(err, from.URL())
	}
	if err := w.Close(); err != nil {
		os.Remove(to)
		return err
	}

	// Return success
	return nil
}

// Put uploads a local file as an object
func (t *Transfer) Put(ctx context.Context, from string, to schema.Key) error {
	bucket, err := t.bucket(ctx, to.Bucket)
	if err != nil {
		return err
	}

	r, err := os.Open(from)
	if err != nil {
		return err
	}
	defer r.Close()

	return blobErr(bucket.Upload(ctx, to.Path, r, &blob.WriterOptions{
		ContentType: MIMEByName(to.Path),
	}), to.URL())
}

// Delete removes an object. Removing an object which does not exist is
// an error.
func (t *Transfer) Delete(ctx context.Context, key schema.Key) error {
	bucket, err := t.bucket(ctx, key.Bucket)
	if err != nil {
		return err
	}
	return blobErr(bucket.Delete(ctx, key.Path), key.URL())
}

// Exists returns true if an object exists
func (t *Transfer) Exists(ctx context.Context, key schema.Key) (bool, error) {
	bucket, err := t.bucket(ctx, key.Bucket)
	if err != nil {
		return false, err
	}
	exists, err := bucket.Exists(ctx, key.Path)
	if err != nil {
		return false, blobErr(err, key.URL())
	}
	return exists, nil
}
