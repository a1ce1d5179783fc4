package main

import (
	"fmt"

	// Packages
	uuid "github.com/google/uuid"
	bundle "github.com/mutablelogic/go-docuploader/bundle"
	schema "github.com/mutablelogic/go-docuploader/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type BundleCommands struct {
	Upload  UploadCommand  `cmd:"" group:"BUNDLE" help:"Archive a documentation tree and upload it"`
	Process ProcessCommand `cmd:"" group:"BUNDLE" help:"Sync an uploaded archive into its target folder and report the outcome"`
	Sync    SyncCommand    `cmd:"" group:"BUNDLE" help:"Mirror a local directory into a folder"`
}

type UploadCommand struct {
	Path       string    `arg:"" type:"existingdir" help:"Documentation directory, ending with the reference"`
	Bucket     string    `name:"bucket" env:"DOCUPLOADER_BUCKET" required:"" help:"Bucket for the archive and the documentation"`
	Owner      string    `name:"owner" required:"" help:"Repository owner"`
	Repository string    `name:"repository" required:"" help:"Repository name"`
	Reference  string    `name:"reference" required:"" help:"Branch or tag"`
	APIBaseURL string    `name:"api-base-url" env:"DOCUPLOADER_API_BASE_URL" required:"" help:"Build API base URL"`
	APIToken   string    `name:"api-token" env:"DOCUPLOADER_API_TOKEN" required:"" help:"Build API token"`
	BuildID    uuid.UUID `name:"build-id" required:"" help:"Build identifier"`
	Env        string    `name:"env" env:"DOCUPLOADER_ENV" default:"prod" help:"Deployment environment"`
}

type ProcessCommand struct {
	Key string `arg:"" help:"Archive key, s3://bucket/archive.zip"`
}

type SyncCommand struct {
	Path   string `arg:"" type:"existingdir" help:"Local directory"`
	Folder string `arg:"" help:"Destination folder, s3://bucket/path/"`
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (cmd *UploadCommand) Run(app App) error {
	u, err := app.Uploader()
	if err != nil {
		return err
	}

	// Measure the tree
	count, size, err := bundle.Measure(cmd.Path)
	if err != nil {
		return err
	}

	// Create the bundle and upload
	b := bundle.New(cmd.Path, cmd.Bucket,
		bundle.Repository{Owner: cmd.Owner, Name: cmd.Repository}, cmd.Reference,
		cmd.APIBaseURL, cmd.APIToken, cmd.BuildID, count, size,
		bundle.WithEnv(cmd.Env),
	)
	key, err := u.Upload(app.Context(), b)
	if err != nil {
		return err
	}

	// Print the key
	fmt.Println(key)
	return nil
}

func (cmd *ProcessCommand) Run(app App) error {
	key, err := schema.ParseKey(cmd.Key)
	if err != nil {
		return err
	}
	u, err := app.Uploader()
	if err != nil {
		return err
	}
	return u.Process(app.Context(), key)
}

func (cmd *SyncCommand) Run(app App) error {
	folder, err := schema.ParseFolder(cmd.Folder)
	if err != nil {
		return err
	}
	u, err := app.Uploader()
	if err != nil {
		return err
	}
	if err := u.Sync(app.Context(), cmd.Path, folder); err != nil {
		return err
	}
	app.Logger().Info().Str("folder", folder.URL()).Msg("sync complete")
	return nil
}
