package bundle

import (
	"path/filepath"
	"strings"

	// Packages
	uuid "github.com/google/uuid"
	schema "github.com/mutablelogic/go-docuploader/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Repository identifies the repository the documentation was built from
type Repository struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// Bundle describes a documentation tree to be uploaded for one build
type Bundle struct {
	SourcePath string     `json:"sourcePath"`
	Bucket     string     `json:"bucket"`
	Repository Repository `json:"repository"`
	Reference  string     `json:"reference"`
	APIBaseURL string     `json:"apiBaseURL"`
	APIToken   string     `json:"-"`
	BuildID    uuid.UUID  `json:"buildId"`
	FileCount  int        `json:"fileCount"`
	MBSize     int        `json:"mbSize"`
	env        string
}

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a bundle. The arguments are expected to be validated by the
// caller.
func New(sourcePath, bucket string, repository Repository, reference, apiBaseURL, apiToken string, buildID uuid.UUID, fileCount, mbSize int, opts ...Opt) Bundle {
	o := opt{env: schema.DefaultEnv}
	for _, fn := range opts {
		fn(&o)
	}
	return Bundle{
		SourcePath: sourcePath,
		Bucket:     bucket,
		Repository: repository,
		Reference:  reference,
		APIBaseURL: apiBaseURL,
		APIToken:   apiToken,
		BuildID:    buildID,
		FileCount:  fileCount,
		MBSize:     mbSize,
		env:        o.env,
	}
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Env returns the deployment tag
func (b Bundle) Env() string {
	if b.env == "" {
		return schema.DefaultEnv
	}
	return b.env
}

// ArchiveName returns the file name of the archive,
// {env}-{owner}-{name}-{reference}-{buildid prefix}.zip in lower case
func (b Bundle) ArchiveName() string {
	return strings.ToLower(strings.Join([]string{
		b.Env(),
		b.Repository.Owner,
		b.Repository.Name,
		b.Reference,
		b.BuildID.String()[:8],
	}, "-")) + ".zip"
}

// Folder returns the storage folder the documentation is synced into
func (b Bundle) Folder() schema.Folder {
	return schema.Folder{
		Bucket: b.Bucket,
		Path:   strings.ToLower(b.Repository.Owner + "/" + b.Repository.Name + "/" + b.Reference),
	}
}

// Metadata returns the metadata which travels with the archive
func (b Bundle) Metadata() schema.Metadata {
	return schema.Metadata{
		APIBaseURL:   b.APIBaseURL,
		APIToken:     b.APIToken,
		BuildID:      b.BuildID,
		FileCount:    b.FileCount,
		MBSize:       b.MBSize,
		SourcePath:   filepath.Base(filepath.Clean(b.SourcePath)),
		TargetFolder: b.Folder(),
	}
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (b Bundle) String() string {
	return types.Stringify(b)
}
