package transfer

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	// Packages
	schema "github.com/mutablelogic/go-docuploader/schema"
	blob "gocloud.dev/blob"
	errgroup "golang.org/x/sync/errgroup"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// localFile is a regular file found under the sync source
type localFile struct {
	path string // path on the local filesystem
	rel  string // slash-separated path relative to the source
	info fs.FileInfo
}

// tracker accumulates bytes written by parallel uploads and reports the
// overall fraction serially
type tracker struct {
	sync.Mutex
	total   int64
	written int64
	last    float64
	fn      func(float64)
}

// progressReader counts bytes read into a tracker
type progressReader struct {
	r io.Reader
	t *tracker
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Sync makes the folder a mirror of the local directory. Files are uploaded
// when missing remotely, when their size differs, or when the local copy is
// newer. When del is true, objects under the folder which have no local
// counterpart are deleted. Progress is reported as the fraction of bytes
// uploaded, and always ends at one on success.
func (t *Transfer) Sync(ctx context.Context, from string, to schema.Folder, del bool, progress func(float64)) error {
	bucket, err := t.bucket(ctx, to.Bucket)
	if err != nil {
		return err
	}

	// Gather local files and remote objects
	local, err := walkLocal(from)
	if err != nil {
		return err
	}
	remote, err := listRemote(ctx, bucket, to.Prefix())
	if err != nil {
		return err
	}

	// Determine which files to upload
	var uploads []localFile
	var total int64
	for _, file := range local {
		if obj, exists := remote[file.rel]; exists && unchanged(file.info, obj) {
			continue
		}
		uploads = append(uploads, file)
		total += file.info.Size()
	}

	// Determine which objects to delete
	var deletes []string
	if del {
		seen := make(map[string]bool, len(local))
		for _, file := range local {
			seen[file.rel] = true
		}
		for rel := range remote {
			if !seen[rel] {
				deletes = append(deletes, to.Prefix()+rel)
			}
		}
	}

	// Transfer in parallel
	tracker := newTracker(total, progress)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)
	for _, file := range uploads {
		g.Go(func() error {
			return upload(gctx, bucket, file, to.Prefix()+file.rel, tracker)
		})
	}
	for _, key := range deletes {
		g.Go(func() error {
			return blobErr(bucket.Delete(gctx, key), key)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Report completion
	tracker.done()

	// Return success
	return nil
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func upload(ctx context.Context, bucket *blob.Bucket, file localFile, key string, t *tracker) error {
	r, err := os.Open(file.path)
	if err != nil {
		return err
	}
	defer r.Close()

	return blobErr(bucket.Upload(ctx, key, &progressReader{r: r, t: t}, &blob.WriterOptions{
		ContentType: MIMEByName(file.rel),
	}), key)
}

// walkLocal returns the regular files under root
func walkLocal(root string) ([]localFile, error) {
	var result []localFile
	if err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		result = append(result, localFile{path: p, rel: filepath.ToSlash(rel), info: info})
		return nil
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// listRemote returns the objects under prefix, keyed by the path relative
// to the prefix
func listRemote(ctx context.Context, bucket *blob.Bucket, prefix string) (map[string]*blob.ListObject, error) {
	result := make(map[string]*blob.ListObject)
	iter := bucket.List(&blob.ListOptions{Prefix: prefix})
	for {
		obj, err := iter.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, blobErr(err, prefix)
		}
		if obj.IsDir {
			continue
		}
		if rel := strings.TrimPrefix(obj.Key, prefix); rel != "" {
			result[rel] = obj
		}
	}
	return result, nil
}

// unchanged returns true when the remote object has the same size as the
// local file and is not older than it
func unchanged(info fs.FileInfo, obj *blob.ListObject) bool {
	if info.Size() != obj.Size {
		return false
	}
	if obj.ModTime.IsZero() {
		return false
	}
	return !info.ModTime().After(obj.ModTime)
}

////////////////////////////////////////////////////////////////////////////////
// TRACKER

func newTracker(total int64, fn func(float64)) *tracker {
	return &tracker{total: total, fn: fn}
}

func (t *tracker) add(n int64) {
	if t.fn == nil || t.total <= 0 || n <= 0 {
		return
	}

	t.Lock()
	defer t.Unlock()

	t.written += n
	fraction := float64(t.written) / float64(t.total)
	if fraction > 1 {
		fraction = 1
	}
	if fraction > t.last {
		t.last = fraction
		t.fn(fraction)
	}
}

func (t *tracker) done() {
	if t.fn == nil {
		return
	}

	t.Lock()
	defer t.Unlock()

	if t.last < 1 {
		t.last = 1
		t.fn(1)
	}
}

func (r *progressReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.t.add(int64(n))
	return n, err
}
