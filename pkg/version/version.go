package version

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"strings"

	// Packages
	schema "github.com/mutablelogic/go-docuploader/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Info describes the build of the running executable
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Source    string `json:"source,omitempty"`
	Tag       string `json:"tag,omitempty"`
	Branch    string `json:"branch,omitempty"`
	Hash      string `json:"hash,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	Compiler  string `json:"compiler"`
	Platform  string `json:"platform,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// Set with -ldflags -X at build time
var (
	GitSource   string
	GitTag      string
	GitBranch   string
	GitHash     string
	GoBuildTime string
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Version returns the git tag, then the branch, then the short VCS revision,
// and finally "dev"
func Version() string {
	switch {
	case GitTag != "":
		return GitTag
	case GitBranch != "":
		return GitBranch
	}
	if rev := setting("vcs.revision"); rev != "" {
		return rev[:min(len(rev), 12)]
	}
	return "dev"
}

// UserAgent returns the User-Agent sent with build reports
func UserAgent() string {
	return schema.SchemaName + "/" + strings.TrimPrefix(Version(), "v")
}

// Get returns the build information for an executable name, filling gaps
// from the build information embedded by the Go toolchain
func Get(name string) Info {
	info := Info{
		Name:      name,
		Version:   Version(),
		Source:    GitSource,
		Tag:       GitTag,
		Branch:    GitBranch,
		Hash:      GitHash,
		BuildTime: GoBuildTime,
		Compiler:  runtime.Version(),
	}
	if build, ok := debug.ReadBuildInfo(); ok && info.Source == "" {
		info.Source = build.Main.Path
	}
	if info.Hash == "" {
		info.Hash = setting("vcs.revision")
	}
	if info.BuildTime == "" {
		info.BuildTime = setting("vcs.time")
	}
	info.Modified = setting("vcs.modified") == "true"
	if goos, goarch := setting("GOOS"), setting("GOARCH"); goos != "" && goarch != "" {
		info.Platform = goos + "/" + goarch
	}
	return info
}

// JSON returns the build information as indented JSON
func JSON(name string) []byte {
	data, err := json.MarshalIndent(Get(name), "", "  ")
	if err != nil {
		panic(err)
	}
	return data
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func setting(key string) string {
	if build, ok := debug.ReadBuildInfo(); ok {
		for _, s := range build.Settings {
			if s.Key == key {
				return s.Value
			}
		}
	}
	return ""
}
