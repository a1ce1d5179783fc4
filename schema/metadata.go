package schema

import (
	// Packages
	uuid "github.com/google/uuid"
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Metadata describes an uploaded documentation bundle. It travels inside the
// archive as metadata.json and drives both the sync and the report.
type Metadata struct {
	APIBaseURL   string    `json:"apiBaseURL"`
	APIToken     string    `json:"apiToken"`
	BuildID      uuid.UUID `json:"buildId"`
	FileCount    int       `json:"fileCount"`
	MBSize       int       `json:"mbSize"`
	SourcePath   string    `json:"sourcePath"`
	TargetFolder Folder    `json:"targetFolder"`
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (m Metadata) String() string {
	m.APIToken = redact(m.APIToken)
	return types.Stringify(m)
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func redact(v string) string {
	if v == "" {
		return v
	}
	return "***"
}
