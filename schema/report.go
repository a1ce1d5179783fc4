package schema

import (
	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Status is the outcome of a documentation upload
type Status string

// Report is the body sent to the build API once an upload has finished
type Report struct {
	Error     *string `json:"error"`
	FileCount int     `json:"fileCount"`
	LogURL    *string `json:"logUrl"`
	MBSize    int     `json:"mbSize"`
	Status    Status  `json:"status"`
}

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	StatusOK        Status = "ok"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewSuccessReport returns a report for a completed upload
func NewSuccessReport(meta Metadata) Report {
	return Report{
		FileCount: meta.FileCount,
		MBSize:    meta.MBSize,
		Status:    StatusOK,
	}
}

// NewFailureReport returns a report for a failed upload. The log URL is
// omitted when empty.
func NewFailureReport(meta Metadata, err error, logURL string) Report {
	report := Report{
		FileCount: meta.FileCount,
		MBSize:    meta.MBSize,
		Status:    StatusFailed,
	}
	if err != nil {
		report.Error = types.StringPtr(err.Error())
	}
	if logURL != "" {
		report.LogURL = types.StringPtr(logURL)
	}
	return report
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r Report) String() string {
	return types.Stringify(r)
}

// Valid returns true if the status is one the build API understands
func (s Status) Valid() bool {
	switch s {
	case StatusOK, StatusFailed, StatusSkipped, StatusPending, StatusUploading:
		return true
	default:
		return false
	}
}
