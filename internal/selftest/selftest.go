// Package selftest runs startup diagnostics: tool availability, a short
// synthetic encode, and the optional hardware-acceleration requirement.
package selftest

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/eleven-am/goconv/internal/config"
	"github.com/eleven-am/goconv/internal/domain"
	"github.com/eleven-am/goconv/internal/hwaccel"
)

var ErrSelfTest = errors.New("self-test failed")

type Result struct {
	Description string
	Passed      bool
	Detail      string
}

// Run executes all startup checks and returns their results. The error is
// non-nil when any check failed.
func Run(ctx context.Context, cfg *config.Config, caps *hwaccel.Capabilities) ([]Result, error) {
	var results []Result

	for _, binary := range []string{cfg.FFmpegCommand, cfg.FFprobeCommand} {
		if _, err := exec.LookPath(binary); err != nil {
			results = append(results, Result{
				Description: fmt.Sprintf("binary %q available", binary),
				Detail:      err.Error(),
			})
			continue
		}
		results = append(results, Result{
			Description: fmt.Sprintf("binary %q available", binary),
			Passed:      true,
		})
	}

	if _, err := exec.LookPath(cfg.FFmpegCommand); err == nil {
		results = append(results, encodeCheck(ctx, cfg.FFmpegCommand))
	}

	if cfg.RequireRKAccel {
		check := Result{Description: "rkmpp hardware encoder available", Passed: true}
		if caps.EncoderFor(domain.CodecH264) == "" {
			check.Passed = false
			check.Detail = "h264_rkmpp not present in encoder listing"
		}
		results = append(results, check)
	}

	for _, r := range results {
		if !r.Passed {
			return results, fmt.Errorf("%w: %s: %s", ErrSelfTest, r.Description, r.Detail)
		}
	}
	return results, nil
}

// encodeCheck runs a one-second synthetic encode to the null muxer,
// proving the tool can actually produce video.
func encodeCheck(ctx context.Context, command string) Result {
	cmd := exec.CommandContext(ctx, command,
		"-hide_banner", "-loglevel", "error",
		"-f", "lavfi",
		"-i", "testsrc2=size=320x240:rate=15",
		"-t", "1",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-f", "null", "-",
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{
			Description: "synthetic encode",
			Detail:      strings.TrimSpace(string(output)),
		}
	}
	return Result{Description: "synthetic encode", Passed: true}
}
