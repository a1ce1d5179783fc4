package schema_test

import (
	"encoding/json"
	"errors"
	"testing"

	// Packages
	uuid "github.com/google/uuid"
	schema "github.com/mutablelogic/go-docuploader/schema"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

func Test_Report_JSON(t *testing.T) {
	assert := assert.New(t)

	// Nullable fields are always present
	data, err := json.Marshal(schema.Report{FileCount: 1234, MBSize: 123, Status: schema.StatusSkipped})
	require.NoError(t, err)
	assert.JSONEq(`{"error":null,"fileCount":1234,"logUrl":null,"mbSize":123,"status":"skipped"}`, string(data))
}

func Test_Report_Failure(t *testing.T) {
	assert := assert.New(t)
	meta := schema.Metadata{FileCount: 10, MBSize: 2}

	report := schema.NewFailureReport(meta, errors.New("too big"), "log url 1")
	assert.Equal(schema.StatusFailed, report.Status)
	if assert.NotNil(report.Error) {
		assert.Equal("too big", *report.Error)
	}
	if assert.NotNil(report.LogURL) {
		assert.Equal("log url 1", *report.LogURL)
	}
	assert.Equal(10, report.FileCount)
	assert.Equal(2, report.MBSize)

	report = schema.NewFailureReport(meta, nil, "")
	assert.Nil(report.Error)
	assert.Nil(report.LogURL)

	report = schema.NewSuccessReport(meta)
	assert.Equal(schema.StatusOK, report.Status)
	assert.Nil(report.Error)
	assert.True(report.Status.Valid())
	assert.False(schema.Status("unknown").Valid())
}

func Test_Metadata_JSON(t *testing.T) {
	assert := assert.New(t)
	meta := schema.Metadata{
		APIBaseURL:   "baseURL",
		APIToken:     "token",
		BuildID:      uuid.MustParse("cafecafe-cafe-cafe-cafe-cafecafecafe"),
		FileCount:    123,
		MBSize:       456,
		SourcePath:   "branch",
		TargetFolder: schema.Folder{Bucket: "spi-prod-docs", Path: "owner/name/branch"},
	}

	data, err := json.Marshal(meta)
	require.NoError(t, err)
	assert.JSONEq(`{
		"apiBaseURL": "baseURL",
		"apiToken": "token",
		"buildId": "cafecafe-cafe-cafe-cafe-cafecafecafe",
		"fileCount": 123,
		"mbSize": 456,
		"sourcePath": "branch",
		"targetFolder": {"bucket": "spi-prod-docs", "path": "owner/name/branch"}
	}`, string(data))

	// The token is not printed
	assert.NotContains(meta.String(), `"token"`)
}
