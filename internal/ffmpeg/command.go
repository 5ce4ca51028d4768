// Package ffmpeg builds argument lists for the external transcoding tool.
// The engine decides the strategy; this package only assembles flags.
package ffmpeg

import (
	"fmt"

	"github.com/eleven-am/goconv/internal/domain"
	"github.com/eleven-am/goconv/internal/hwaccel"
)

type CommandBuilder struct {
	caps *hwaccel.Capabilities
}

func NewCommandBuilder(caps *hwaccel.Capabilities) *CommandBuilder {
	return &CommandBuilder{caps: caps}
}

// Remux repackages the source into an MP4 container without re-encoding.
func (b *CommandBuilder) Remux(src, dst string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", src,
		"-c", "copy",
		"-movflags", "+faststart",
		dst,
	}
}

// Software builds a CPU encode scaled and padded to the profile's exact
// dimensions, preserving aspect ratio with centered padding.
func (b *CommandBuilder) Software(src, dst string, p domain.Profile, codec domain.Codec) []string {
	encoder := "libx264"
	if codec == domain.CodecH265 {
		encoder = "libx265"
	}

	vf := fmt.Sprintf(
		"scale=w=%d:h=%d:force_original_aspect_ratio=decrease,pad=w=%d:h=%d:x=(ow-iw)/2:y=(oh-ih)/2",
		p.Width, p.Height, p.Width, p.Height,
	)

	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", src,
		"-vf", vf,
		"-c:v", encoder,
		"-b:v", fmt.Sprintf("%d", p.VideoBitrate),
		"-preset", "veryfast",
		"-movflags", "+faststart",
		"-c:a", "aac",
		"-b:a", "128k",
		dst,
	}
}

// Accel builds an RKMPP hardware encode. An empty decoder means software
// decode feeding the hardware encoder, which remains a valid path.
func (b *CommandBuilder) Accel(src, dst string, p domain.Profile, decoder, encoder, filter string) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-y"}

	if decoder != "" {
		args = append(args, "-hwaccel", "rkmpp", "-c:v", decoder)
	}

	args = append(args,
		"-i", src,
		"-vf", filter,
		"-c:v", encoder,
		"-pix_fmt", "nv12",
	)

	if encoder == "hevc_rkmpp" {
		// The HEVC encoder is markedly more bitrate-efficient, so rate
		// control is tiered by output width instead of the flat profile
		// bitrate.
		bv, maxrate, bufsize := HEVCRateControl(p.Width)
		args = append(args,
			"-profile:v", "main",
			"-tag:v", "hvc1",
			"-b:v", bv,
			"-maxrate", maxrate,
			"-bufsize", bufsize,
		)
	} else {
		args = append(args, "-b:v", fmt.Sprintf("%d", p.VideoBitrate))
	}

	args = append(args,
		"-g", "240",
		"-movflags", "+faststart",
		"-c:a", "aac",
		"-b:a", "128k",
		dst,
	)

	return args
}

// FilterCandidate is one pixel-format conversion strategy for the
// hardware encode path, tried in order.
type FilterCandidate struct {
	Label string
	Expr  string
}

// FilterCandidates returns the conversion filters to try: RGA-accelerated
// scaling first when the device exists, then plain software conversion.
// The pad keeps dimensions aligned to the 16-pixel blocks RKMPP requires.
func (b *CommandBuilder) FilterCandidates() []FilterCandidate {
	var candidates []FilterCandidate
	if b.caps.HasRGA() {
		candidates = append(candidates, FilterCandidate{
			Label: "rkrga",
			Expr:  "rkrga=fmt=nv12,pad=ceil(iw/16)*16:ceil(ih/16)*16",
		})
	}
	candidates = append(candidates, FilterCandidate{
		Label: "format",
		Expr:  "format=nv12,pad=ceil(iw/16)*16:ceil(ih/16)*16",
	})
	return candidates
}

// HEVCRateControl returns bitrate/maxrate/bufsize tiers keyed on output
// width.
func HEVCRateControl(width int) (string, string, string) {
	switch {
	case width >= 3800:
		return "8M", "12M", "18M"
	case width >= 2500:
		return "5M", "8M", "12M"
	default:
		return "3M", "5M", "8M"
	}
}
