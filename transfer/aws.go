package transfer

import (
	"context"

	// Packages
	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	config "github.com/aws/aws-sdk-go-v2/config"
	credentials "github.com/aws/aws-sdk-go-v2/credentials"
	s3 "github.com/aws/aws-sdk-go-v2/service/s3"
	otelaws "go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"
)

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// awsConfigFor returns the AWS configuration for the transfer, loading the
// default configuration chain when none was provided
func (o *opt) awsConfigFor(ctx context.Context) (aws.Config, error) {
	if o.awsConfig != nil {
		return o.awsConfig.Copy(), nil
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(o.region),
	}
	if o.timeout > 0 {
		loadOpts = append(loadOpts, config.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(o.timeout)))
	}
	if o.accessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.accessKey, o.secretKey, o.session)))
	}
	return config.LoadDefaultConfig(ctx, loadOpts...)
}

// newS3Client creates the S3 client used to open buckets
func (o *opt) newS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := o.awsConfigFor(ctx)
	if err != nil {
		return nil, err
	}

	// Inject tracing middleware
	if o.tracer != nil {
		otelaws.AppendMiddlewares(&cfg.APIOptions)
	}

	// Create the S3 client
	return s3.NewFromConfig(cfg, func(s3opts *s3.Options) {
		if o.endpoint != "" {
			s3opts.BaseEndpoint = aws.String(o.endpoint)
			s3opts.UsePathStyle = true
		}
		if o.anonymous {
			s3opts.Credentials = aws.AnonymousCredentials{}
		}
	}), nil
}
