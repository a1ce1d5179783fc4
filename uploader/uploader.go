package uploader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"

	// Packages
	humanize "github.com/dustin/go-humanize"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	docuploader "github.com/mutablelogic/go-docuploader"
	bundle "github.com/mutablelogic/go-docuploader/bundle"
	report "github.com/mutablelogic/go-docuploader/report"
	schema "github.com/mutablelogic/go-docuploader/schema"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	attribute "go.opentelemetry.io/otel/attribute"
	metric "go.opentelemetry.io/otel/metric"
	noop "go.opentelemetry.io/otel/metric/noop"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Uploader packages documentation into archives on the build side, and
// mirrors archives into their target folders on the upload side, reporting
// the outcome to the build API.
type Uploader struct {
	opt
	syncs   metric.Int64Counter
	reports metric.Int64Counter
}

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates an uploader. A transfer is required.
func New(opts ...Opt) (*Uploader, error) {
	self := new(Uploader)

	// Apply options
	if opt, err := applyOpts(opts); err != nil {
		return nil, err
	} else {
		self.opt = opt
	}
	if self.transfer == nil {
		return nil, fmt.Errorf("missing transfer")
	}

	// Counters
	meter := self.meter
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(schema.SchemaName)
	}
	if counter, err := meter.Int64Counter(schema.SchemaName+".syncs", metric.WithDescription("Number of folder syncs")); err != nil {
		return nil, err
	} else {
		self.syncs = counter
	}
	if counter, err := meter.Int64Counter(schema.SchemaName+".reports", metric.WithDescription("Number of reports sent to the build API")); err != nil {
		return nil, err
	} else {
		self.reports = counter
	}

	// Return success
	return self, nil
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// LogURL returns the console link to the log stream, or an empty string if
// no log stream was configured
func (u *Uploader) LogURL() string {
	if u.region == "" || u.group == "" || u.stream == "" {
		return ""
	}
	return report.LogURL(u.region, u.group, u.stream)
}

// Sync mirrors a local directory into a folder, removing objects which are
// not present locally. Progress is logged at every 10%.
func (u *Uploader) Sync(ctx context.Context, source string, dest schema.Folder) (err error) {
	ctx, endFunc := otel.StartSpan(u.tracer, ctx, spanName("Sync"))
	defer func() { endFunc(err) }()

	if err := dest.Validate(); err != nil {
		return err
	}

	// Each sync owns its throttle
	throttle := newThrottle(func(f float64) {
		u.logger.Info().Str("folder", dest.URL()).Msgf("Syncing... [%s]", FormatPercent(f))
		if u.progress != nil {
			u.progress(f)
		}
	})

	u.logger.Debug().Str("source", source).Str("folder", dest.URL()).Msg("sync started")
	if err := u.transfer.Sync(ctx, source, dest, true, throttle.update); err != nil {
		u.syncs.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "failed")))
		return schema.ErrSyncFailed.Wrap(err)
	}
	u.syncs.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "ok")))

	// Return success
	return nil
}

// Report sends a report for the build described by the metadata, and
// returns the status code from the build API
func (u *Uploader) Report(ctx context.Context, meta schema.Metadata, dto schema.Report) (status int, err error) {
	ctx, endFunc := otel.StartSpan(u.tracer, ctx, spanName("Report"))
	defer func() { endFunc(err) }()

	doer, err := u.doerFor(meta.APIBaseURL)
	if err == nil {
		status, err = report.Send(ctx, doer, meta.APIBaseURL, meta.APIToken, meta.BuildID, dto)
	}
	if err != nil {
		u.reports.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(dto.Status)), attribute.Int("code", 0)))
		return 0, err
	}
	u.reports.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(dto.Status)), attribute.Int("code", status)))
	u.logger.Info().Str("build", meta.BuildID.String()).Str("status", string(dto.Status)).Int("code", status).Msg("report sent")

	// Return the status code
	return status, nil
}

// Upload writes the bundle into an archive and puts the archive into the
// bundle bucket, named after the bundle. It returns the key of the archive.
func (u *Uploader) Upload(ctx context.Context, b bundle.Bundle) (key schema.Key, err error) {
	ctx, endFunc := otel.StartSpan(u.tracer, ctx, spanName("Upload"))
	defer func() { endFunc(err) }()

	key, err = schema.NewKey(b.Bucket, b.ArchiveName())
	if err != nil {
		return schema.Key{}, err
	}

	dir, err := os.MkdirTemp(u.workdir, "upload-")
	if err != nil {
		return schema.Key{}, err
	}
	defer os.RemoveAll(dir)

	// Create the archive
	archive, err := b.Zip(ctx, dir)
	if err != nil {
		return schema.Key{}, err
	}
	if info, err := os.Stat(archive); err == nil {
		u.logger.Info().Str("archive", filepath.Base(archive)).Str("size", humanize.Bytes(uint64(info.Size()))).Int("files", b.FileCount).Msg("archive created")
	}

	// Upload the archive
	if err := u.transfer.Put(ctx, archive, key); err != nil {
		return schema.Key{}, err
	}
	u.logger.Info().Str("key", key.URL()).Msg("archive uploaded")

	// Return success
	return key, nil
}

// Process copies an archive out of storage, syncs its contents into the
// target folder named in its metadata, reports the outcome and deletes the
// archive. The archive is kept, so it can be processed again, when its
// metadata is invalid, when the context is cancelled before the report, or
// when the report could not be delivered.
func (u *Uploader) Process(ctx context.Context, key schema.Key) (err error) {
	ctx, endFunc := otel.StartSpan(u.tracer, ctx, spanName("Process"))
	defer func() { endFunc(err) }()

	dir, err := os.MkdirTemp(u.workdir, "process-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	// Fetch and unpack the archive
	archive := filepath.Join(dir, path.Base(key.Path))
	if err := u.transfer.Copy(ctx, key, archive); err != nil {
		return err
	}
	checkout := filepath.Join(dir, "checkout")
	meta, err := bundle.Unzip(archive, checkout)
	if err != nil {
		return err
	}
	if err := validateMetadata(meta); err != nil {
		u.logger.Error().Err(err).Str("key", key.URL()).Msg("invalid metadata, not processing")
		return err
	}
	u.logger.Info().Str("key", key.URL()).Str("folder", meta.TargetFolder.URL()).Int("files", meta.FileCount).Str("size", humanize.IBytes(uint64(meta.MBSize)*humanize.MiByte)).Msg("processing archive")

	// Sync into the target folder
	syncErr := u.Sync(ctx, filepath.Join(checkout, meta.SourcePath), meta.TargetFolder)
	if ctxErr := ctx.Err(); ctxErr != nil {
		u.logger.Warn().Str("key", key.URL()).Msg("cancelled, not reporting")
		if syncErr != nil {
			return syncErr
		}
		return ctxErr
	}

	// Report the outcome
	var dto schema.Report
	if syncErr != nil {
		u.logger.Error().Err(syncErr).Str("folder", meta.TargetFolder.URL()).Msg("sync failed")
		dto = schema.NewFailureReport(meta, syncErr, u.LogURL())
	} else {
		dto = schema.NewSuccessReport(meta)
	}
	status, reportErr := u.Report(ctx, meta, dto)
	if reportErr == nil && !isSuccess(status) {
		u.logger.Error().Int("code", status).Str("build", meta.BuildID.String()).Msg("report rejected")
		reportErr = httpresponse.Err(status).Withf("report for build %s rejected", meta.BuildID)
	}

	// Keep the archive when the build API could not be reached
	if errors.Is(reportErr, schema.ErrNetwork) {
		u.logger.Warn().Err(reportErr).Str("key", key.URL()).Msg("report not delivered, keeping archive")
		return errors.Join(syncErr, reportErr)
	}

	// Remove the archive from storage
	deleteErr := u.transfer.Delete(ctx, key)
	if deleteErr == nil {
		u.logger.Debug().Str("key", key.URL()).Msg("archive deleted")
	}

	// Return any errors
	return errors.Join(syncErr, reportErr, deleteErr)
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// doerFor returns the configured doer, or a report client for the API
func (u *Uploader) doerFor(apiBaseURL string) (docuploader.Doer, error) {
	if u.doer != nil {
		return u.doer, nil
	}
	client, err := report.New(apiBaseURL, u.client...)
	if err != nil {
		return nil, schema.ErrNetwork.Wrap(err)
	}
	return client, nil
}

// validateMetadata checks the locations named in archive metadata. The
// source must be a single directory name within the checkout.
func validateMetadata(meta schema.Metadata) error {
	source := meta.SourcePath
	if source == "" || source == "." || !filepath.IsLocal(source) || filepath.Base(source) != source {
		return schema.ErrInvalidKey.Withf("invalid source path %q", source)
	}
	return meta.TargetFolder.Validate()
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func spanName(op string) string {
	return schema.SchemaName + ".uploader." + op
}
