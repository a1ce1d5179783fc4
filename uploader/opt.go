package uploader

import (
	"fmt"
	"os"

	// Packages
	client "github.com/mutablelogic/go-client"
	docuploader "github.com/mutablelogic/go-docuploader"
	zerolog "github.com/rs/zerolog"
	metric "go.opentelemetry.io/otel/metric"
	trace "go.opentelemetry.io/otel/trace"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Opt is a functional option for the uploader
type Opt func(*opt) error

type opt struct {
	tracer   trace.Tracer
	meter    metric.Meter
	logger   zerolog.Logger
	transfer docuploader.Transfer
	doer     docuploader.Doer
	client   []client.ClientOpt
	workdir  string
	progress func(float64)

	// Log location reported on failure
	region, group, stream string
}

////////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithTracer sets the tracer used for tracing operations.
func WithTracer(tracer trace.Tracer) Opt {
	return func(o *opt) error {
		o.tracer = tracer
		return nil
	}
}

// WithMeter sets the meter used to record sync and report counters.
func WithMeter(meter metric.Meter) Opt {
	return func(o *opt) error {
		if meter != nil {
			o.meter = meter
		}
		return nil
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Opt {
	return func(o *opt) error {
		o.logger = logger
		return nil
	}
}

// WithTransfer sets the object storage transfer. Required.
func WithTransfer(transfer docuploader.Transfer) Opt {
	return func(o *opt) error {
		if transfer == nil {
			return fmt.Errorf("transfer is nil")
		}
		o.transfer = transfer
		return nil
	}
}

// WithDoer sets the HTTP client used to send reports. When not set, a
// report client is created for the API base URL of each report.
func WithDoer(doer docuploader.Doer) Opt {
	return func(o *opt) error {
		if doer == nil {
			return fmt.Errorf("doer is nil")
		}
		o.doer = doer
		return nil
	}
}

// WithClientOpts sets the options for report clients, when no doer is set
func WithClientOpts(opts ...client.ClientOpt) Opt {
	return func(o *opt) error {
		o.client = append(o.client, opts...)
		return nil
	}
}

// WithLogStream sets the log location linked from failure reports. All
// three values are needed for a link.
func WithLogStream(region, group, stream string) Opt {
	return func(o *opt) error {
		o.region, o.group, o.stream = region, group, stream
		return nil
	}
}

// WithWorkDir sets the parent of the temporary directories used for
// archives. The default is the system temporary directory.
func WithWorkDir(dir string) Opt {
	return func(o *opt) error {
		if dir == "" {
			return nil
		}
		if info, err := os.Stat(dir); err != nil {
			return err
		} else if !info.IsDir() {
			return fmt.Errorf("%q is not a directory", dir)
		}
		o.workdir = dir
		return nil
	}
}

// WithProgress sets a function called with each throttled sync progress
// notification.
func WithProgress(fn func(float64)) Opt {
	return func(o *opt) error {
		o.progress = fn
		return nil
	}
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func applyOpts(opts []Opt) (opt, error) {
	// Set defaults
	o := opt{
		logger: zerolog.Nop(),
	}

	// Apply options
	for _, fn := range opts {
		if err := fn(&o); err != nil {
			return opt{}, err
		}
	}

	// Return success
	return o, nil
}
