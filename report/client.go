package report

import (
	"context"
	"net/http"
	"slices"

	// Packages
	uuid "github.com/google/uuid"
	client "github.com/mutablelogic/go-client"
	docuploader "github.com/mutablelogic/go-docuploader"
	schema "github.com/mutablelogic/go-docuploader/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client sends build reports to a build API. The transport (timeouts,
// tracing) comes from the underlying go-client.
type Client struct {
	*client.Client
	endpoint string
}

var _ docuploader.Doer = (*Client)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a report client for the build API at apiBaseURL
func New(apiBaseURL string, opts ...client.ClientOpt) (*Client, error) {
	c, err := client.New(append(slices.Clone(opts), client.OptEndpoint(apiBaseURL))...)
	if err != nil {
		return nil, err
	}
	return &Client{Client: c, endpoint: apiBaseURL}, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Endpoint returns the build API base URL
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Do sends a prepared request using the client transport. Any response is
// returned, regardless of status code.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.Client.Client.Do(req)
}

// Report sends the report for a build and returns the response status code
func (c *Client) Report(ctx context.Context, apiToken string, buildID uuid.UUID, dto schema.Report) (int, error) {
	return Send(ctx, c, c.endpoint, apiToken, buildID, dto)
}
