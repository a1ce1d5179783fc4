package transfer

import (
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	// Packages
	aws "github.com/aws/aws-sdk-go-v2/aws"
	schema "github.com/mutablelogic/go-docuploader/schema"
	trace "go.opentelemetry.io/otel/trace"
	blob "gocloud.dev/blob"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type opt struct {
	scheme      string                  // s3, file or mem
	root        string                  // root directory for file:// buckets
	awsConfig   *aws.Config             // optional AWS config; loaded from the environment when nil
	region      string                  // AWS region
	endpoint    string                  // S3-compatible endpoint
	anonymous   bool                    // use anonymous credentials
	accessKey   string                  // static credentials
	secretKey   string                  // static credentials
	session     string                  // static credentials
	timeout     time.Duration           // S3 HTTP client timeout
	concurrency int                     // maximum number of parallel transfers in Sync
	tracer      trace.Tracer            // when set, AWS SDK middleware is injected
	buckets     map[string]*blob.Bucket // pre-opened buckets, not closed by Close
}

// Opt is a functional option for the transfer
type Opt func(*opt) error

////////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultRegion      = "us-east-2"
	DefaultTimeout     = 60 * time.Second
	DefaultConcurrency = 12
)

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func applyOpts(opts ...Opt) (*opt, error) {
	o := opt{
		scheme:      "s3",
		region:      DefaultRegion,
		timeout:     DefaultTimeout,
		concurrency: DefaultConcurrency,
		buckets:     make(map[string]*blob.Bucket),
	}
	for _, fn := range opts {
		if err := fn(&o); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

////////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithRegion sets the AWS region. The default is us-east-2.
func WithRegion(region string) Opt {
	return func(o *opt) error {
		if region != "" {
			o.region = region
		}
		return nil
	}
}

// WithEndpoint sets the endpoint for S3-compatible services. Path-style
// addressing is used with a custom endpoint.
func WithEndpoint(endpoint string) Opt {
	return func(o *opt) error {
		if endpoint == "" {
			o.endpoint = ""
		} else if u, err := url.Parse(endpoint); err != nil {
			return err
		} else if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("endpoint must be http:// or https://, got %s://", u.Scheme)
		} else {
			o.endpoint = u.String()
		}
		return nil
	}
}

// WithAnonymous forces use of anonymous credentials
func WithAnonymous() Opt {
	return func(o *opt) error {
		o.anonymous = true
		return nil
	}
}

// WithCredentials sets static credentials instead of the default chain
func WithCredentials(accessKey, secretKey, session string) Opt {
	return func(o *opt) error {
		if accessKey == "" || secretKey == "" {
			return fmt.Errorf("access key and secret key are required")
		}
		o.accessKey, o.secretKey, o.session = accessKey, secretKey, session
		return nil
	}
}

// WithAWSConfig provides an AWS SDK v2 Config directly, instead of loading
// one from the environment
func WithAWSConfig(cfg aws.Config) Opt {
	return func(o *opt) error {
		o.awsConfig = &cfg
		return nil
	}
}

// WithTimeout sets the timeout for each S3 HTTP request
func WithTimeout(timeout time.Duration) Opt {
	return func(o *opt) error {
		if timeout < 0 {
			return fmt.Errorf("invalid timeout %v", timeout)
		}
		o.timeout = timeout
		return nil
	}
}

// WithConcurrency sets the maximum number of objects transferred in
// parallel during a sync
func WithConcurrency(n int) Opt {
	return func(o *opt) error {
		if n < 1 {
			return fmt.Errorf("invalid concurrency %d", n)
		}
		o.concurrency = n
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer. When set, AWS SDK middleware is
// injected so each S3 API call produces a span.
func WithTracer(tracer trace.Tracer) Opt {
	return func(o *opt) error {
		o.tracer = tracer
		return nil
	}
}

// WithFileRoot stores buckets as directories under root, for local runs
func WithFileRoot(root string) Opt {
	return func(o *opt) error {
		abs, err := filepath.Abs(root)
		if err != nil {
			return err
		}
		o.scheme, o.root = "file", abs
		return nil
	}
}

// WithMem keeps buckets in memory, for tests and dry runs
func WithMem() Opt {
	return func(o *opt) error {
		o.scheme = "mem"
		return nil
	}
}

// WithBucket registers an open bucket under a name. The caller remains
// responsible for closing it.
func WithBucket(name string, bucket *blob.Bucket) Opt {
	return func(o *opt) error {
		if !schema.IsBucketName(name) {
			return schema.ErrInvalidKey.Withf("invalid bucket name %q", name)
		} else if bucket == nil {
			return fmt.Errorf("bucket %q is nil", name)
		}
		o.buckets[name] = bucket
		return nil
	}
}
