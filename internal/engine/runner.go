package engine

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/eleven-am/goconv/internal/domain"
)

const stderrTailBytes = 4096

// run executes the transcoding tool with a machine-readable progress
// stream on stdout. Each out_time_ms line (cumulative processed media
// time in microseconds) is forwarded to the progress callback.
func (e *Engine) run(ctx context.Context, args []string, action string, progress func(float64)) error {
	full := append([]string{"-progress", "pipe:1", "-nostats"}, args...)
	cmd := exec.CommandContext(ctx, e.command, full...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrTranscodeFailed, action, err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrTranscodeFailed, action, err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		value, ok := strings.CutPrefix(scanner.Text(), "out_time_ms=")
		if !ok || progress == nil {
			continue
		}
		micros, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			continue
		}
		progress(float64(micros) / 1e6)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%w: %s: %s", domain.ErrTranscodeFailed, action, stderrTail(&stderr))
	}
	return nil
}

func stderrTail(buf *bytes.Buffer) string {
	s := strings.TrimSpace(buf.String())
	if s == "" {
		return "no diagnostic output"
	}
	if len(s) > stderrTailBytes {
		s = s[len(s)-stderrTailBytes:]
	}
	return s
}
