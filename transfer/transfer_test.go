package transfer_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	// Packages
	schema "github.com/mutablelogic/go-docuploader/schema"
	transfer "github.com/mutablelogic/go-docuploader/transfer"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
	blob "gocloud.dev/blob"
	memblob "gocloud.dev/blob/memblob"
)

////////////////////////////////////////////////////////////////////////////////
// HELPERS

func newTransfer(t *testing.T, opts ...transfer.Opt) (*transfer.Transfer, *blob.Bucket) {
	t.Helper()
	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { bucket.Close() })
	tr, err := transfer.New(append([]transfer.Opt{transfer.WithBucket("docs", bucket)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { tr.Close() })
	return tr, bucket
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func listKeys(t *testing.T, bucket *blob.Bucket) []string {
	t.Helper()
	var keys []string
	iter := bucket.List(nil)
	for {
		obj, err := iter.Next(context.Background())
		if err != nil {
			break
		}
		keys = append(keys, obj.Key)
	}
	sort.Strings(keys)
	return keys
}

// progress records fractions and checks they are delivered serially
type progress struct {
	sync.Mutex
	values []float64
}

func (p *progress) fn(f float64) {
	if !p.TryLock() {
		panic("progress called concurrently")
	}
	defer p.Unlock()
	p.values = append(p.values, f)
}

////////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_Transfer_New(t *testing.T) {
	assert := assert.New(t)

	tr, err := transfer.New()
	assert.NoError(err)
	assert.Equal("s3", tr.Scheme())
	assert.NoError(tr.Close())

	_, err = transfer.New(transfer.WithConcurrency(0))
	assert.Error(err)

	_, err = transfer.New(transfer.WithEndpoint("ftp://localhost"))
	assert.Error(err)

	_, err = transfer.New(transfer.WithCredentials("", "secret", ""))
	assert.Error(err)

	_, err = transfer.New(transfer.WithBucket("NOT_VALID", memblob.OpenBucket(nil)))
	assert.ErrorIs(err, schema.ErrInvalidKey)
}

func Test_Transfer_Sync(t *testing.T) {
	assert := assert.New(t)
	tr, bucket := newTransfer(t, transfer.WithConcurrency(3))
	ctx := context.Background()

	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"index.html":              "<html></html>",
		"css/main.css":            strings.Repeat("c", 100_000),
		"js/app.js":               strings.Repeat("j", 250_000),
		"data/documentation.json": "{}",
	})
	folder := schema.Folder{Bucket: "docs", Path: "owner/name/branch"}

	var p progress
	require.NoError(t, tr.Sync(ctx, src, folder, true, p.fn))
	assert.Equal([]string{
		"owner/name/branch/css/main.css",
		"owner/name/branch/data/documentation.json",
		"owner/name/branch/index.html",
		"owner/name/branch/js/app.js",
	}, listKeys(t, bucket))

	// Progress is non-decreasing and ends at one
	require.NotEmpty(t, p.values)
	assert.True(sort.Float64sAreSorted(p.values))
	assert.Equal(1.0, p.values[len(p.values)-1])
	for _, v := range p.values {
		assert.True(v > 0 && v <= 1)
	}

	// Content and type
	data, err := bucket.ReadAll(ctx, "owner/name/branch/index.html")
	assert.NoError(err)
	assert.Equal("<html></html>", string(data))
	attrs, err := bucket.Attributes(ctx, "owner/name/branch/css/main.css")
	if assert.NoError(err) {
		assert.Equal("text/css; charset=utf-8", attrs.ContentType)
	}
}

func Test_Transfer_SyncUnchanged(t *testing.T) {
	assert := assert.New(t)
	tr, bucket := newTransfer(t)
	ctx := context.Background()

	src := t.TempDir()
	writeTree(t, src, map[string]string{"index.html": "v1"})
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(src, "index.html"), past, past))
	folder := schema.Folder{Bucket: "docs", Path: "a"}
	require.NoError(t, tr.Sync(ctx, src, folder, true, nil))

	// Overwrite the remote object; the local file is older and the same size
	require.NoError(t, bucket.WriteAll(ctx, "a/index.html", []byte("v2"), nil))
	var p progress
	require.NoError(t, tr.Sync(ctx, src, folder, true, p.fn))
	data, err := bucket.ReadAll(ctx, "a/index.html")
	assert.NoError(err)
	assert.Equal("v2", string(data))

	// Nothing to upload still completes the progress
	assert.Equal([]float64{1}, p.values)

	// A changed size is uploaded
	writeTree(t, src, map[string]string{"index.html": "version 3"})
	require.NoError(t, tr.Sync(ctx, src, folder, true, nil))
	data, err = bucket.ReadAll(ctx, "a/index.html")
	assert.NoError(err)
	assert.Equal("version 3", string(data))
}

func Test_Transfer_SyncDelete(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	src := t.TempDir()
	writeTree(t, src, map[string]string{"index.html": "x"})
	folder := schema.Folder{Bucket: "docs", Path: "owner/name/branch"}

	for _, del := range []bool{false, true} {
		tr, bucket := newTransfer(t)
		require.NoError(t, bucket.WriteAll(ctx, "owner/name/branch/stale.html", []byte("stale"), nil))
		require.NoError(t, bucket.WriteAll(ctx, "owner/name/branch-2/keep.html", []byte("keep"), nil))
		require.NoError(t, bucket.WriteAll(ctx, "other/keep.html", []byte("keep"), nil))

		require.NoError(t, tr.Sync(ctx, src, folder, del, nil))
		keys := listKeys(t, bucket)
		assert.Contains(keys, "owner/name/branch/index.html")
		assert.Contains(keys, "owner/name/branch-2/keep.html")
		assert.Contains(keys, "other/keep.html")
		if del {
			assert.NotContains(keys, "owner/name/branch/stale.html")
		} else {
			assert.Contains(keys, "owner/name/branch/stale.html")
		}
	}
}

func Test_Transfer_SyncErrors(t *testing.T) {
	assert := assert.New(t)
	tr, _ := newTransfer(t)
	folder := schema.Folder{Bucket: "docs", Path: "a"}

	// Missing source
	assert.Error(tr.Sync(context.Background(), filepath.Join(t.TempDir(), "missing"), folder, true, nil))

	// Cancelled
	src := t.TempDir()
	writeTree(t, src, map[string]string{"index.html": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(tr.Sync(ctx, src, folder, true, nil))
}

func Test_Transfer_Objects(t *testing.T) {
	assert := assert.New(t)
	tr, _ := newTransfer(t)
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "archive.zip")
	require.NoError(t, os.WriteFile(src, []byte("zipdata"), 0o644))
	key := schema.Key{Bucket: "docs", Path: "prod-owner-name-branch-cafecafe.zip"}

	// Put
	require.NoError(t, tr.Put(ctx, src, key))
	exists, err := tr.Exists(ctx, key)
	assert.NoError(err)
	assert.True(exists)

	// Copy
	dest := filepath.Join(t.TempDir(), "nested", "copy.zip")
	require.NoError(t, tr.Copy(ctx, key, dest))
	data, err := os.ReadFile(dest)
	assert.NoError(err)
	assert.Equal("zipdata", string(data))

	// Delete
	require.NoError(t, tr.Delete(ctx, key))
	exists, err = tr.Exists(ctx, key)
	assert.NoError(err)
	assert.False(exists)

	// Missing objects
	assert.Error(tr.Delete(ctx, key))
	missing := filepath.Join(t.TempDir(), "missing.zip")
	assert.Error(tr.Copy(ctx, key, missing))
	_, err = os.Stat(missing)
	assert.True(os.IsNotExist(err))
}

func Test_Transfer_Mem(t *testing.T) {
	assert := assert.New(t)
	tr, err := transfer.New(transfer.WithMem())
	require.NoError(t, err)
	defer tr.Close()
	ctx := context.Background()

	src := t.TempDir()
	writeTree(t, src, map[string]string{"a.txt": "a"})
	folder := schema.Folder{Bucket: "inbox", Path: "x"}
	require.NoError(t, tr.Sync(ctx, src, folder, true, nil))

	// The same bucket is returned for the same name
	exists, err := tr.Exists(ctx, folder.ObjectKey("a.txt"))
	assert.NoError(err)
	assert.True(exists)
}

func Test_Transfer_File(t *testing.T) {
	assert := assert.New(t)
	root := t.TempDir()
	tr, err := transfer.New(transfer.WithFileRoot(root))
	require.NoError(t, err)
	defer tr.Close()
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "a.zip")
	require.NoError(t, os.WriteFile(src, []byte("a"), 0o644))
	require.NoError(t, tr.Put(ctx, src, schema.Key{Bucket: "inbox", Path: "a.zip"}))

	data, err := os.ReadFile(filepath.Join(root, "inbox", "a.zip"))
	assert.NoError(err)
	assert.Equal("a", string(data))
}
