package bundle

////////////////////////////////////////////////////////////////////////////////
// TYPES

type opt struct {
	env string
}

// Opt is a functional option for a bundle
type Opt func(*opt)

////////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithEnv sets the deployment tag which prefixes the archive name. The
// default is "prod". An empty tag is ignored.
func WithEnv(env string) Opt {
	return func(o *opt) {
		if env != "" {
			o.env = env
		}
	}
}
