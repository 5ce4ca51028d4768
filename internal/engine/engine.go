// Package engine implements the transcode pipeline for a single job:
// probe, profile and codec selection, the remux-vs-transcode decision,
// the hardware fallback chain, and progress streaming.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/eleven-am/goconv/internal/config"
	"github.com/eleven-am/goconv/internal/domain"
	"github.com/eleven-am/goconv/internal/ffmpeg"
	"github.com/eleven-am/goconv/internal/hwaccel"
	"github.com/eleven-am/goconv/internal/profile"
)

// Prober inspects a source file. Satisfied by probe.Prober.
type Prober interface {
	Probe(ctx context.Context, path string) (*domain.MediaInfo, error)
}

type Engine struct {
	prober  Prober
	caps    *hwaccel.Capabilities
	builder *ffmpeg.CommandBuilder
	command string
	workDir string
	outDir  string
	log     *slog.Logger
}

func New(cfg *config.Config, prober Prober, caps *hwaccel.Capabilities, logger *slog.Logger) *Engine {
	return &Engine{
		prober:  prober,
		caps:    caps,
		builder: ffmpeg.NewCommandBuilder(caps),
		command: cfg.FFmpegCommand,
		workDir: cfg.WorkDir,
		outDir:  cfg.OutputDir,
		log:     logger,
	}
}

// Process converts one source file. It writes into the scratch directory
// and atomically renames the finished file into the output directory, so a
// partial file is never visible at the output path. Progress is streamed
// to the sink; errors are terminal for the job and never retried here.
func (e *Engine) Process(ctx context.Context, jobID, sourcePath string, req domain.JobRequest, sink domain.ProgressSink) (*domain.TranscodeResult, error) {
	log := e.log.With("job_id", jobID)
	log.Info("transcode started", "source_path", sourcePath)

	info, err := e.prober.Probe(ctx, sourcePath)
	if err != nil {
		return nil, err
	}
	if info.Video == nil || info.Video.Width == 0 || info.Video.Height == 0 {
		return nil, domain.ErrUnknownResolution
	}
	log.Info("probe summary",
		"container", info.Container,
		"video_codec", info.Video.Codec,
		"video_width", info.Video.Width,
		"video_height", info.Video.Height,
	)

	prof := profile.Choose(info.Video.Width, info.Video.Height, req.Quality)
	codec := resolveCodec(info, prof, req)
	log.Info("profile resolved",
		"profile", string(prof.Name),
		"target_codec", string(codec),
		"requested_quality", string(req.Quality),
		"requested_codec", string(req.Codec),
	)

	if info.Duration > 0 {
		sink.MediaDuration(info.Duration)
	}

	workPath := filepath.Join(e.workDir, jobID+".mp4")
	outputPath := filepath.Join(e.outDir, jobID+".mp4")

	progress := func(seconds float64) { sink.MediaProcessed(seconds) }

	remuxed := false
	if shouldRemux(info, prof, codec) {
		log.Info("selected remux path")
		if err := e.run(ctx, e.builder.Remux(sourcePath, workPath), "remux", nil); err != nil {
			return nil, err
		}
		remuxed = true
	} else {
		encoder := e.caps.EncoderFor(codec)
		if encoder != "" {
			decoder := e.caps.DecoderFor(info.Video.Codec)
			log.Info("selected hardware transcode path", "encoder", encoder, "decoder", decoder)
			if err := e.transcodeAccel(ctx, sourcePath, workPath, prof, decoder, encoder, progress); err != nil {
				return nil, err
			}
		} else {
			log.Info("selected software transcode path", "codec", string(codec))
			args := e.builder.Software(sourcePath, workPath, prof, codec)
			if err := e.run(ctx, args, "transcode", progress); err != nil {
				return nil, err
			}
		}
	}

	if err := os.Rename(workPath, outputPath); err != nil {
		return nil, fmt.Errorf("move output into place: %w", err)
	}

	if info.Duration > 0 {
		sink.MediaProcessed(info.Duration)
	}

	log.Info("transcode finished", "output_path", outputPath, "remuxed", remuxed)
	return &domain.TranscodeResult{
		OutputPath: outputPath,
		Remuxed:    remuxed,
		Profile:    prof,
		Codec:      codec,
	}, nil
}

// transcodeAccel tries each pixel-format conversion filter in order,
// deleting any partial output between attempts, and returns the first
// success or the last failure.
func (e *Engine) transcodeAccel(ctx context.Context, src, dst string, prof domain.Profile, decoder, encoder string, progress func(float64)) error {
	var lastErr error
	for _, cand := range e.builder.FilterCandidates() {
		args := e.builder.Accel(src, dst, prof, decoder, encoder, cand.Expr)
		err := e.run(ctx, args, "transcode-rkmpp-"+cand.Label, progress)
		if err == nil {
			return nil
		}
		e.log.Warn("hardware transcode candidate failed", "filter", cand.Label, "error", err)
		lastErr = err
		_ = os.Remove(dst)
	}
	return lastErr
}

// resolveCodec picks the output codec: an explicit request wins, then the
// source codec when it is already a supported one, then the profile's
// default, then h264.
func resolveCodec(info *domain.MediaInfo, prof domain.Profile, req domain.JobRequest) domain.Codec {
	if req.Codec != domain.CodecAuto {
		return req.Codec
	}

	if info.Video != nil {
		if src := domain.MapCodecName(info.Video.Codec); src != domain.CodecAuto {
			return src
		}
	}

	if prof.Codec != domain.CodecAuto {
		return prof.Codec
	}
	return domain.CodecH264
}

// shouldRemux reports whether the cheap container-copy path is safe:
// source codec already matches the target, the container is MP4-family,
// and the source does not exceed the profile's dimensions.
func shouldRemux(info *domain.MediaInfo, prof domain.Profile, target domain.Codec) bool {
	video := info.Video
	if video == nil || video.Width == 0 || video.Height == 0 {
		return false
	}

	if domain.MapCodecName(video.Codec) != target {
		return false
	}

	if !strings.Contains(strings.ToLower(info.Container), "mp4") {
		return false
	}

	if video.Width > prof.Width || video.Height > prof.Height {
		return false
	}

	return true
}
