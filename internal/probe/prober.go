package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/eleven-am/goconv/internal/domain"
)

type Prober struct {
	command string
}

func NewProber(command string) *Prober {
	if command == "" {
		command = "ffprobe"
	}
	return &Prober{command: command}
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

type ffprobeStream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	BitRate   string `json:"bit_rate"`
}

type ffprobeFormat struct {
	FormatName string `json:"format_name"`
	BitRate    string `json:"bit_rate"`
	Duration   string `json:"duration"`
}

// Probe inspects a media file and returns its container, duration, and
// first video/audio stream info. All failures wrap domain.ErrProbeFailed.
func (p *Prober) Probe(ctx context.Context, path string) (*domain.MediaInfo, error) {
	cmd := exec.CommandContext(ctx, p.command,
		"-v", "error",
		"-show_entries", "stream=index,codec_type,codec_name,width,height,bit_rate:format=format_name,bit_rate,duration",
		"-print_format", "json",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrProbeFailed, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrProbeFailed, err)
	}

	var ff ffprobeOutput
	if err := json.Unmarshal(output, &ff); err != nil {
		return nil, fmt.Errorf("%w: unreadable output: %v", domain.ErrProbeFailed, err)
	}

	info := &domain.MediaInfo{
		Container: ff.Format.FormatName,
		Bitrate:   parseInt(ff.Format.BitRate),
		Duration:  parseFloat(ff.Format.Duration),
	}

	for _, s := range ff.Streams {
		switch s.CodecType {
		case "video":
			if info.Video == nil {
				info.Video = &domain.VideoStream{
					Codec:   s.CodecName,
					Width:   s.Width,
					Height:  s.Height,
					Bitrate: parseInt(s.BitRate),
				}
			}
		case "audio":
			if info.Audio == nil {
				info.Audio = &domain.AudioStream{
					Codec:   s.CodecName,
					Bitrate: parseInt(s.BitRate),
				}
			}
		}
	}

	return info, nil
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
