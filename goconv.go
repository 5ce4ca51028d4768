// Package goconv provides an upload-and-convert media service built around
// ffmpeg with Rockchip RKMPP hardware acceleration.
//
// goconv accepts uploaded media files, queues them on a bounded FIFO queue,
// and converts each one to an MP4 tuned for a quality profile. Sources that
// already match the target (same codec, MP4 container, within the profile
// dimensions) are remuxed without re-encoding. When RKMPP encoders are
// available they are preferred, with a filter-chain fallback ladder ending
// in plain software encoding. Callers can poll job status, download results,
// and register a webhook that fires once per job on completion or failure.
//
// # Basic Usage
//
//	controller := goconv.NewController(goconv.Options{})
//
//	controller.Start(ctx)
//	defer controller.Stop()
//
//	http.ListenAndServe(":8080", controller.Handler())
//
// Submissions, status queries, and cancellation are also available directly
// on the Controller for embedding without the HTTP layer.
package goconv

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/eleven-am/goconv/internal/api"
	"github.com/eleven-am/goconv/internal/callback"
	"github.com/eleven-am/goconv/internal/config"
	"github.com/eleven-am/goconv/internal/domain"
	"github.com/eleven-am/goconv/internal/engine"
	"github.com/eleven-am/goconv/internal/hwaccel"
	"github.com/eleven-am/goconv/internal/jobs"
	"github.com/eleven-am/goconv/internal/probe"
	"github.com/eleven-am/goconv/internal/selftest"
)

type (
	// JobRequest carries the conversion targets for a submission.
	JobRequest = domain.JobRequest

	// JobResponse acknowledges an accepted submission.
	JobResponse = domain.JobResponse

	// JobDetail is a point-in-time snapshot of a job, including derived
	// progress and ETA figures while the conversion is running.
	JobDetail = domain.JobDetail

	// Quality names a target quality profile.
	Quality = domain.Quality

	// Codec names a target video codec.
	Codec = domain.Codec
)

const (
	// QualityAuto selects the best profile for the source resolution.
	QualityAuto = domain.QualityAuto

	// CodecAuto keeps the source codec when it is already h264 or h265.
	CodecAuto = domain.CodecAuto
)

// Options configures the Controller. The zero value is usable: settings are
// read from the environment and logs go to the default slog logger.
type Options struct {
	// Config overrides the environment-derived configuration.
	Config *config.Config

	// Logger receives all service logs.
	Logger *slog.Logger
}

func (o *Options) setDefaults() {
	if o.Config == nil {
		o.Config = config.Load()
	}
	o.Config.Validate()
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Controller is the entry point for the conversion service. It owns the job
// manager, the transcode engine, and the HTTP handler.
//
// A Controller must be started with Start before it processes jobs, and
// stopped with Stop to drain the worker cleanly.
type Controller struct {
	cfg     *config.Config
	log     *slog.Logger
	caps    *hwaccel.Capabilities
	manager *jobs.Manager
	handler http.Handler
}

// NewController wires the service from the given options. Hardware
// capabilities are detected once here and held for the controller's
// lifetime.
func NewController(opts Options) *Controller {
	opts.setDefaults()

	cfg := opts.Config
	logger := opts.Logger

	caps := hwaccel.Detect(context.Background(), cfg.FFmpegCommand)
	prober := probe.NewProber(cfg.FFprobeCommand)
	eng := engine.New(cfg, prober, caps, logger)
	dispatcher := callback.NewDispatcher(cfg.CallbackTimeout, cfg.CallbackMaxAttempts, logger)
	manager := jobs.NewManager(cfg, eng, dispatcher, logger)

	return &Controller{
		cfg:     cfg,
		log:     logger,
		caps:    caps,
		manager: manager,
		handler: api.NewRouter(api.NewHandler(manager, cfg.AppName, logger)),
	}
}

// Start launches the job worker and the retention maintenance loop. The
// context bounds their lifetime; Stop is still required for a clean drain.
func (c *Controller) Start(ctx context.Context) {
	c.manager.Start(ctx)
}

// Stop shuts down the background loops and waits for them to finish.
func (c *Controller) Stop() {
	c.manager.Stop()
}

// Handler returns the HTTP surface of the service.
func (c *Controller) Handler() http.Handler {
	return c.handler
}

// SelfTest runs the startup diagnostics against the configured tools and
// the detected hardware capabilities.
func (c *Controller) SelfTest(ctx context.Context) ([]selftest.Result, error) {
	return selftest.Run(ctx, c.cfg, c.caps)
}

// Submit stores the upload and queues a conversion job.
func (c *Controller) Submit(ctx context.Context, upload io.Reader, filename string, req JobRequest) (*JobResponse, error) {
	return c.manager.Submit(ctx, upload, filename, req)
}

// Get returns a snapshot of one job.
func (c *Controller) Get(jobID string) (JobDetail, bool) {
	return c.manager.Get(jobID)
}

// List returns snapshots of all known jobs.
func (c *Controller) List() []JobDetail {
	return c.manager.List()
}

// Cancel requests cancellation of a queued job. Jobs already converting
// run to completion.
func (c *Controller) Cancel(jobID string) bool {
	return c.manager.Cancel(jobID)
}
