// Package hwaccel queries the transcoding tool once for its available
// RKMPP decoders and encoders and probes for the Rockchip acceleration
// devices. The result is held for the engine's lifetime.
package hwaccel

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/eleven-am/goconv/internal/domain"
)

var (
	rgaDevicePath  = "/dev/rga"
	drmDevicePaths = []string{
		"/dev/dri/renderD128",
		"/dev/dri/renderD129",
		"/dev/dri/card0",
	}
)

type Capabilities struct {
	decoders map[string]bool
	encoders map[string]bool
	device   string
	hasRGA   bool
}

// Detect runs the tool's capability listings and checks for acceleration
// devices. It never fails: a missing or broken tool yields empty
// capabilities and the engine falls back to software encoding.
func Detect(ctx context.Context, ffmpegCommand string) *Capabilities {
	caps := &Capabilities{
		decoders: queryList(ctx, ffmpegCommand, "-decoders"),
		encoders: queryList(ctx, ffmpegCommand, "-encoders"),
		hasRGA:   pathExists(rgaDevicePath),
	}
	for _, dev := range drmDevicePaths {
		if pathExists(dev) {
			caps.device = dev
			break
		}
	}
	return caps
}

// NewCapabilities builds a fixed capability set. Used by tests and the
// self-test path.
func NewCapabilities(decoders, encoders []string, device string, hasRGA bool) *Capabilities {
	caps := &Capabilities{
		decoders: make(map[string]bool, len(decoders)),
		encoders: make(map[string]bool, len(encoders)),
		device:   device,
		hasRGA:   hasRGA,
	}
	for _, d := range decoders {
		caps.decoders[strings.ToLower(d)] = true
	}
	for _, e := range encoders {
		caps.encoders[strings.ToLower(e)] = true
	}
	return caps
}

// EncoderFor returns the hardware encoder name for the target codec, or
// an empty string when the tool does not offer one.
func (c *Capabilities) EncoderFor(codec domain.Codec) string {
	name := EncoderName(codec)
	if c.encoders[name] {
		return name
	}
	return ""
}

// DecoderFor returns the hardware decoder matched to the source codec.
// Hardware decode additionally needs a DRM render device; without one the
// engine decodes in software and only the encode is accelerated.
func (c *Capabilities) DecoderFor(sourceCodec string) string {
	if c.device == "" {
		return ""
	}
	name := DecoderName(sourceCodec)
	if name != "" && c.decoders[name] {
		return name
	}
	return ""
}

func (c *Capabilities) HasRGA() bool {
	return c.hasRGA
}

func (c *Capabilities) Device() string {
	return c.device
}

// EncoderName maps a target codec to its RKMPP encoder.
func EncoderName(codec domain.Codec) string {
	if codec == domain.CodecH265 {
		return "hevc_rkmpp"
	}
	return "h264_rkmpp"
}

// DecoderName maps an ffprobe codec name to its RKMPP decoder, or empty
// when no hardware decoder exists for it.
func DecoderName(sourceCodec string) string {
	switch strings.ToLower(sourceCodec) {
	case "av1":
		return "av1_rkmpp"
	case "vp9":
		return "vp9_rkmpp"
	case "vp8":
		return "vp8_rkmpp"
	case "h264", "avc1", "avc":
		return "h264_rkmpp"
	case "h265", "hevc":
		return "hevc_rkmpp"
	}
	return ""
}

func queryList(ctx context.Context, command, flag string) map[string]bool {
	result := make(map[string]bool)

	cmd := exec.CommandContext(ctx, command, "-hide_banner", "-loglevel", "quiet", flag)
	output, err := cmd.Output()
	if err != nil {
		return result
	}

	scanner := bufio.NewScanner(strings.NewReader(string(output)))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		name := fields[1]
		if isCodecName(name) {
			result[strings.ToLower(name)] = true
		}
	}
	return result
}

func isCodecName(s string) bool {
	if s == "" || s == "=" {
		return false
	}
	for _, r := range s {
		ok := r == '_' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !ok {
			return false
		}
	}
	return true
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
