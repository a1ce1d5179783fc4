package schema_test

import (
	"errors"
	"testing"

	// Packages
	schema "github.com/mutablelogic/go-docuploader/schema"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

func Test_Key_ParseKey(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want schema.Key
	}{
		{"object", "s3://spi-prod-docs/owner/name/branch/index.html", schema.Key{Bucket: "spi-prod-docs", Path: "owner/name/branch/index.html"}},
		{"archive", "s3://spi-docs-inbox/prod-owner-name-branch-cafecafe.zip", schema.Key{Bucket: "spi-docs-inbox", Path: "prod-owner-name-branch-cafecafe.zip"}},
		{"folder", "s3://docs/a/b/", schema.Key{Bucket: "docs", Path: "a/b/"}},
		{"dotted bucket", "s3://my.docs.bucket/file", schema.Key{Bucket: "my.docs.bucket", Path: "file"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			key, err := schema.ParseKey(test.raw)
			require.NoError(t, err)
			assert.Equal(t, test.want, key)
			assert.Equal(t, test.raw, key.URL())
		})
	}
}

func Test_Key_ParseKeyInvalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"missing bucket", "s3:///path/to/file"},
		{"missing path", "s3://bucket"},
		{"root path", "s3://bucket/"},
		{"wrong scheme", "https://bucket/file"},
		{"no scheme", "bucket/file"},
		{"uppercase bucket", "s3://Bucket/file"},
		{"short bucket", "s3://ab/file"},
		{"underscore bucket", "s3://my_bucket/file"},
		{"double dot bucket", "s3://my..bucket/file"},
		{"port", "s3://bucket:9000/file"},
		{"query", "s3://bucket/file?versionId=1"},
		{"malformed", "s3://%zz/file"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			key, err := schema.ParseKey(test.raw)
			assert.ErrorIs(t, err, schema.ErrInvalidKey)
			assert.Equal(t, schema.Key{}, key)
		})
	}
}

func Test_Key_NewKey(t *testing.T) {
	assert := assert.New(t)

	key, err := schema.NewKey("docs", "a/b.html")
	assert.NoError(err)
	assert.Equal(schema.Key{Bucket: "docs", Path: "a/b.html"}, key)

	_, err = schema.NewKey("", "a")
	assert.ErrorIs(err, schema.ErrInvalidKey)

	_, err = schema.NewKey("docs", "")
	assert.ErrorIs(err, schema.ErrInvalidKey)

	_, err = schema.NewKey("docs", "/a")
	assert.ErrorIs(err, schema.ErrInvalidKey)
}

func Test_Key_FolderFromKey(t *testing.T) {
	assert := assert.New(t)

	folder, err := schema.FolderFromKey(schema.Key{Bucket: "spi-prod-docs", Path: "owner/name/branch/"})
	assert.NoError(err)
	assert.Equal(schema.Folder{Bucket: "spi-prod-docs", Path: "owner/name/branch"}, folder)
	assert.Equal("owner/name/branch/", folder.Prefix())
	assert.Equal("s3://spi-prod-docs/owner/name/branch/", folder.URL())
	assert.Equal(schema.Key{Bucket: "spi-prod-docs", Path: "owner/name/branch/css/main.css"}, folder.ObjectKey("css/main.css"))

	// Without trailing slash
	folder, err = schema.FolderFromKey(schema.Key{Bucket: "docs", Path: "a"})
	assert.NoError(err)
	assert.Equal(schema.Folder{Bucket: "docs", Path: "a"}, folder)

	// Only slashes
	folder, err = schema.FolderFromKey(schema.Key{Bucket: "docs", Path: "//"})
	assert.ErrorIs(err, schema.ErrInvalidKey)
	assert.Equal(schema.Folder{}, folder)

	// Missing bucket
	folder, err = schema.FolderFromKey(schema.Key{Path: "a/b"})
	assert.ErrorIs(err, schema.ErrInvalidKey)
	assert.Equal(schema.Folder{}, folder)
}

func Test_Key_FolderRoundTrip(t *testing.T) {
	folders := []schema.Folder{
		{Bucket: "spi-prod-docs", Path: "owner/name/branch"},
		{Bucket: "docs", Path: "a"},
		{Bucket: "my.bucket", Path: "a/b/c/1.0.0"},
	}
	for _, folder := range folders {
		t.Run(folder.URL(), func(t *testing.T) {
			got, err := schema.FolderFromKey(folder.Key())
			require.NoError(t, err)
			assert.Equal(t, folder, got)

			got, err = schema.ParseFolder(folder.URL())
			require.NoError(t, err)
			assert.Equal(t, folder, got)
		})
	}
}

func Test_Key_IsBucketName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"spi-prod-docs", true},
		{"my.bucket", true},
		{"a1b", true},
		{"ab", false},
		{"Docs", false},
		{"docs-", false},
		{"my..bucket", false},
		{"192.168.1.1", false},
		{"10.0.0.255", false},
		{"192.168.1", true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.valid, schema.IsBucketName(test.name))
		})
	}

	_, err := schema.ParseKey("s3://192.168.1.1/a.zip")
	assert.ErrorIs(t, err, schema.ErrInvalidKey)
}

func Test_Key_FolderValidate(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(schema.Folder{Bucket: "spi-prod-docs", Path: "owner/name/branch"}.Validate())
	for _, folder := range []schema.Folder{
		{Bucket: "spi-prod-docs", Path: ""},
		{Bucket: "spi-prod-docs", Path: "/"},
		{Bucket: "spi-prod-docs", Path: "/owner"},
		{Bucket: "spi-prod-docs", Path: "owner/"},
		{Bucket: "", Path: "owner"},
		{Bucket: "Bad_Bucket", Path: "owner"},
	} {
		assert.ErrorIs(folder.Validate(), schema.ErrInvalidKey, folder.URL())
	}
}

func Test_Err_Kinds(t *testing.T) {
	assert := assert.New(t)

	cause := errors.New("connection refused")
	err := schema.ErrNetwork.Wrap(cause)
	assert.ErrorIs(err, schema.ErrNetwork)
	assert.ErrorIs(err, cause)
	assert.NotErrorIs(err, schema.ErrSyncFailed)
	assert.Equal("network error: connection refused", err.Error())

	assert.Nil(schema.ErrSyncFailed.Wrap(nil))
	assert.EqualError(schema.ErrInvalidKey.Withf("bad %q", "x"), `invalid key: bad "x"`)
}
