package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Packages
	client "github.com/mutablelogic/go-client"
	transfer "github.com/mutablelogic/go-docuploader/transfer"
	uploader "github.com/mutablelogic/go-docuploader/uploader"
	zerolog "github.com/rs/zerolog"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Globals struct {
	Debug bool `help:"Enable debug output"`
	Trace bool `help:"Trace report requests"`
	JSON  bool `name:"json" help:"Log as JSON lines"`

	// Storage
	Region      string        `env:"AWS_REGION" default:"us-east-2" help:"AWS region"`
	Endpoint    string        `env:"S3_ENDPOINT" help:"S3-compatible endpoint URL"`
	FileRoot    string        `name:"file-root" env:"DOCUPLOADER_FILE_ROOT" type:"path" help:"Store buckets as directories under this path, instead of S3"`
	Timeout     time.Duration `env:"DOCUPLOADER_TIMEOUT" default:"60s" help:"Storage and report request timeout"`
	Concurrency int           `env:"DOCUPLOADER_CONCURRENCY" default:"12" help:"Maximum parallel uploads during a sync"`
	WorkDir     string        `name:"workdir" env:"DOCUPLOADER_WORKDIR" type:"existingdir" help:"Directory for temporary archives"`

	// Log location linked from failure reports
	LogGroup  string `name:"log-group" env:"AWS_LAMBDA_LOG_GROUP_NAME" help:"Log group for failure reports"`
	LogStream string `name:"log-stream" env:"AWS_LAMBDA_LOG_STREAM_NAME" help:"Log stream for failure reports"`

	ctx      context.Context
	cancel   context.CancelFunc
	logger   zerolog.Logger
	transfer *transfer.Transfer
}

type App interface {
	Context() context.Context
	GetRegion() string
	Logger() *zerolog.Logger
	Uploader() (*uploader.Uploader, error)
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func NewApp(app Globals) *Globals {
	// Create the context
	// This context is cancelled when the process receives a SIGINT or SIGTERM
	app.ctx, app.cancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// Create the logger
	app.logger = newLogger(os.Stderr, app.JSON, app.Debug)

	// Return the app
	return &app
}

func (app *Globals) Close() error {
	var result error
	if app.transfer != nil {
		result = errors.Join(result, app.transfer.Close())
	}
	app.cancel()
	return result
}

///////////////////////////////////////////////////////////////////////////////
// METHODS

func (app *Globals) Context() context.Context {
	return app.ctx
}

func (app *Globals) GetRegion() string {
	return app.Region
}

func (app *Globals) Logger() *zerolog.Logger {
	return &app.logger
}

// Uploader returns an uploader configured from the global flags
func (app *Globals) Uploader() (*uploader.Uploader, error) {
	if app.transfer == nil {
		opts := []transfer.Opt{
			transfer.WithRegion(app.Region),
			transfer.WithEndpoint(app.Endpoint),
			transfer.WithTimeout(app.Timeout),
			transfer.WithConcurrency(app.Concurrency),
		}
		if app.FileRoot != "" {
			opts = append(opts, transfer.WithFileRoot(app.FileRoot))
		}
		if tr, err := transfer.New(opts...); err != nil {
			return nil, err
		} else {
			app.transfer = tr
		}
	}

	// Report client options
	clientOpts := []client.ClientOpt{client.OptTimeout(app.Timeout)}
	if app.Trace {
		clientOpts = append(clientOpts, client.OptTrace(os.Stderr, false))
	}

	return uploader.New(
		uploader.WithTransfer(app.transfer),
		uploader.WithClientOpts(clientOpts...),
		uploader.WithLogger(app.logger),
		uploader.WithLogStream(app.Region, app.LogGroup, app.LogStream),
		uploader.WithWorkDir(app.WorkDir),
	)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func newLogger(w io.Writer, json, debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	if !json {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.DateTime,
		}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
