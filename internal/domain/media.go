package domain

import "strings"

// MediaInfo is the probe result for a source file. Zero values mean the
// tool did not report the field.
type MediaInfo struct {
	Container string
	Bitrate   int
	Duration  float64
	Video     *VideoStream
	Audio     *AudioStream
}

type VideoStream struct {
	Codec   string
	Width   int
	Height  int
	Bitrate int
}

type AudioStream struct {
	Codec   string
	Bitrate int
}

// MapCodecName normalizes an ffprobe codec name to a supported codec.
// Returns CodecAuto when the name matches neither family.
func MapCodecName(name string) Codec {
	switch strings.ToLower(name) {
	case "h264", "avc1", "avc":
		return CodecH264
	case "h265", "hevc", "hvc1":
		return CodecH265
	}
	return CodecAuto
}
