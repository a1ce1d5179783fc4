package schema

////////////////////////////////////////////////////////////////////////////////
// TYPES

const (
	SchemaName = "docuploader"

	// Storage
	KeyScheme        = "s3"
	DefaultEnv       = "prod"
	MetadataFileName = "metadata.json"

	// HTTP headers
	AuthorizationHeader = "Authorization"
	ContentTypeHeader   = "Content-Type"
	ContentTypeJSON     = "application/json"
	UserAgentHeader     = "User-Agent"
)
