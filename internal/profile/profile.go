// Package profile holds the fixed output presets and the pure selection
// logic mapping source dimensions and a requested quality to one of them.
package profile

import "github.com/eleven-am/goconv/internal/domain"

// Ordered by descending height; auto selection walks this top down.
var profiles = []domain.Profile{
	{Name: domain.QualityUHD2160p, Width: 3840, Height: 2160, VideoBitrate: 8_000_000, Codec: domain.CodecH265},
	{Name: domain.QualityFHD1080p, Width: 1920, Height: 1080, VideoBitrate: 12_000_000, Codec: domain.CodecH264},
	{Name: domain.QualityHD720p, Width: 1280, Height: 720, VideoBitrate: 6_000_000, Codec: domain.CodecH264},
	{Name: domain.QualitySD480p, Width: 854, Height: 480, VideoBitrate: 3_000_000, Codec: domain.CodecH264},
}

// Get returns the preset for an explicit quality target.
func Get(q domain.Quality) (domain.Profile, bool) {
	for _, p := range profiles {
		if p.Name == q {
			return p, true
		}
	}
	return domain.Profile{}, false
}

// Choose selects a preset for the given source dimensions. An explicit
// quality wins verbatim. Auto mode picks the highest preset the source can
// fill in at least one dimension, falling back to the smallest preset for
// sources below all of them.
func Choose(srcWidth, srcHeight int, request domain.Quality) domain.Profile {
	if request != domain.QualityAuto {
		if p, ok := Get(request); ok {
			return p
		}
	}

	for _, p := range profiles {
		if srcHeight >= p.Height || srcWidth >= p.Width {
			return p
		}
	}
	return profiles[len(profiles)-1]
}
