package selftest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eleven-am/goconv/internal/config"
	"github.com/eleven-am/goconv/internal/hwaccel"
)

const passingScript = `#!/bin/sh
exit 0
`

const failingEncodeScript = `#!/bin/sh
echo "Unknown encoder 'libx264'" >&2
exit 1
`

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRunAllChecksPass(t *testing.T) {
	cfg := &config.Config{
		FFmpegCommand:  writeScript(t, "ffmpeg", passingScript),
		FFprobeCommand: writeScript(t, "ffprobe", passingScript),
	}

	results, err := Run(context.Background(), cfg, hwaccel.NewCapabilities(nil, nil, "", false))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Fatalf("check %q failed: %s", r.Description, r.Detail)
		}
	}
}

func TestRunMissingBinary(t *testing.T) {
	cfg := &config.Config{
		FFmpegCommand:  filepath.Join(t.TempDir(), "no-such-ffmpeg"),
		FFprobeCommand: writeScript(t, "ffprobe", passingScript),
	}

	_, err := Run(context.Background(), cfg, hwaccel.NewCapabilities(nil, nil, "", false))
	if !errors.Is(err, ErrSelfTest) {
		t.Fatalf("expected ErrSelfTest, got %v", err)
	}
}

func TestRunEncodeFailure(t *testing.T) {
	cfg := &config.Config{
		FFmpegCommand:  writeScript(t, "ffmpeg", failingEncodeScript),
		FFprobeCommand: writeScript(t, "ffprobe", passingScript),
	}

	_, err := Run(context.Background(), cfg, hwaccel.NewCapabilities(nil, nil, "", false))
	if !errors.Is(err, ErrSelfTest) {
		t.Fatalf("expected ErrSelfTest, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unknown encoder") {
		t.Fatalf("expected encoder output in error, got %v", err)
	}
}

func TestRunRequireAccel(t *testing.T) {
	cfg := &config.Config{
		FFmpegCommand:  writeScript(t, "ffmpeg", passingScript),
		FFprobeCommand: writeScript(t, "ffprobe", passingScript),
		RequireRKAccel: true,
	}

	_, err := Run(context.Background(), cfg, hwaccel.NewCapabilities(nil, nil, "", false))
	if !errors.Is(err, ErrSelfTest) {
		t.Fatalf("expected ErrSelfTest without rkmpp encoders, got %v", err)
	}

	caps := hwaccel.NewCapabilities(nil, []string{"h264_rkmpp"}, "/dev/dri/renderD128", false)
	if _, err := Run(context.Background(), cfg, caps); err != nil {
		t.Fatalf("unexpected error with rkmpp present: %v", err)
	}
}
