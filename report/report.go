package report

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	// Packages
	uuid "github.com/google/uuid"
	docuploader "github.com/mutablelogic/go-docuploader"
	version "github.com/mutablelogic/go-docuploader/pkg/version"
	schema "github.com/mutablelogic/go-docuploader/schema"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Send posts the report for a build to the build API and returns the status
// code of the response. Any response is returned without judgement; an error
// is only returned when no response was received.
func Send(ctx context.Context, doer docuploader.Doer, apiBaseURL, apiToken string, buildID uuid.UUID, dto schema.Report) (int, error) {
	req, err := NewRequest(ctx, apiBaseURL, apiToken, buildID, dto)
	if err != nil {
		return 0, err
	}

	// Perform the request
	resp, err := doer.Do(req)
	if err != nil {
		return 0, schema.ErrNetwork.Wrap(err)
	}
	defer resp.Body.Close()

	// Drain the body so the connection can be reused
	if _, err := io.Copy(io.Discard, resp.Body); err != nil && ctx.Err() != nil {
		return 0, schema.ErrNetwork.Wrap(ctx.Err())
	}

	// Return the status code
	return resp.StatusCode, nil
}

// NewRequest returns the POST request which reports on a build
func NewRequest(ctx context.Context, apiBaseURL, apiToken string, buildID uuid.UUID, dto schema.Report) (*http.Request, error) {
	body, err := json.Marshal(dto)
	if err != nil {
		return nil, schema.ErrEncoding.Wrap(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ReportURL(apiBaseURL, buildID), bytes.NewReader(body))
	if err != nil {
		return nil, schema.ErrNetwork.Wrap(err)
	}
	req.Header.Set(schema.AuthorizationHeader, "Bearer "+apiToken)
	req.Header.Set(schema.ContentTypeHeader, schema.ContentTypeJSON)
	req.Header.Set(schema.UserAgentHeader, version.UserAgent())
	return req, nil
}

// ReportURL returns the endpoint for a build report. The build
// identifier is rendered upper-case with hyphens.
func ReportURL(apiBaseURL string, buildID uuid.UUID) string {
	return apiBaseURL + "/builds/" + strings.ToUpper(buildID.String()) + "/doc-report"
}
