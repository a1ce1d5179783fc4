package main

import (
	"fmt"
	"net/http"

	// Packages
	uuid "github.com/google/uuid"
	report "github.com/mutablelogic/go-docuploader/report"
	schema "github.com/mutablelogic/go-docuploader/schema"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ReportCommands struct {
	Report ReportCommand `cmd:"" group:"REPORT" help:"Send a build report"`
	LogURL LogURLCommand `cmd:"" name:"logurl" group:"REPORT" help:"Print the console link for a log stream"`
}

type ReportCommand struct {
	BuildID    uuid.UUID `arg:"" help:"Build identifier"`
	Status     string    `arg:"" enum:"ok,failed,skipped,pending,uploading" help:"Build status (${enum})"`
	APIBaseURL string    `name:"api-base-url" env:"DOCUPLOADER_API_BASE_URL" required:"" help:"Build API base URL"`
	APIToken   string    `name:"api-token" env:"DOCUPLOADER_API_TOKEN" required:"" help:"Build API token"`
	FileCount  int       `name:"file-count" help:"Number of files uploaded"`
	MBSize     int       `name:"mb-size" help:"Size of the upload in megabytes"`
	Error      string    `name:"error" help:"Error text for a failed build"`
	LogURL     string    `name:"log-url" help:"Link to the build log"`
}

type LogURLCommand struct {
	Group  string `name:"group" env:"AWS_LAMBDA_LOG_GROUP_NAME" required:"" help:"Log group"`
	Stream string `name:"stream" env:"AWS_LAMBDA_LOG_STREAM_NAME" required:"" help:"Log stream"`
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *ReportCommand) Run(app App) error {
	u, err := app.Uploader()
	if err != nil {
		return err
	}

	dto := schema.Report{
		FileCount: cmd.FileCount,
		MBSize:    cmd.MBSize,
		Status:    schema.Status(cmd.Status),
	}
	if cmd.Error != "" {
		dto.Error = types.StringPtr(cmd.Error)
	}
	if cmd.LogURL != "" {
		dto.LogURL = types.StringPtr(cmd.LogURL)
	}
	meta := schema.Metadata{
		APIBaseURL: cmd.APIBaseURL,
		APIToken:   cmd.APIToken,
		BuildID:    cmd.BuildID,
		FileCount:  cmd.FileCount,
		MBSize:     cmd.MBSize,
	}

	status, err := u.Report(app.Context(), meta, dto)
	if err != nil {
		return err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return httpresponse.Err(status).Withf("report for build %s rejected", cmd.BuildID)
	}

	fmt.Println(status, http.StatusText(status))
	return nil
}

func (cmd *LogURLCommand) Run(app App) error {
	fmt.Println(report.LogURL(app.GetRegion(), cmd.Group, cmd.Stream))
	return nil
}
