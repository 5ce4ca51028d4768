package ffmpeg

import (
	"strings"
	"testing"

	"github.com/eleven-am/goconv/internal/domain"
	"github.com/eleven-am/goconv/internal/hwaccel"
)

var testProfile = domain.Profile{
	Name:         domain.QualityFHD1080p,
	Width:        1920,
	Height:       1080,
	VideoBitrate: 12_000_000,
	Codec:        domain.CodecH264,
}

func TestRemuxArgs(t *testing.T) {
	b := NewCommandBuilder(hwaccel.NewCapabilities(nil, nil, "", false))
	args := strings.Join(b.Remux("/in.mp4", "/out.mp4"), " ")

	if !strings.Contains(args, "-c copy") {
		t.Fatalf("expected stream copy, got %s", args)
	}
	if !strings.Contains(args, "-movflags +faststart") {
		t.Fatalf("expected faststart, got %s", args)
	}
}

func TestSoftwareArgsSelectEncoder(t *testing.T) {
	b := NewCommandBuilder(hwaccel.NewCapabilities(nil, nil, "", false))

	h264 := strings.Join(b.Software("/in.mkv", "/out.mp4", testProfile, domain.CodecH264), " ")
	if !strings.Contains(h264, "-c:v libx264") {
		t.Fatalf("expected libx264, got %s", h264)
	}
	if !strings.Contains(h264, "force_original_aspect_ratio=decrease") || !strings.Contains(h264, "pad=w=1920:h=1080") {
		t.Fatalf("expected scale+pad filter, got %s", h264)
	}

	h265 := strings.Join(b.Software("/in.mkv", "/out.mp4", testProfile, domain.CodecH265), " ")
	if !strings.Contains(h265, "-c:v libx265") {
		t.Fatalf("expected libx265, got %s", h265)
	}
}

func TestAccelArgsWithDecoder(t *testing.T) {
	b := NewCommandBuilder(hwaccel.NewCapabilities(nil, nil, "/dev/dri/renderD128", false))
	args := strings.Join(b.Accel("/in.mp4", "/out.mp4", testProfile, "h264_rkmpp", "h264_rkmpp", "format=nv12"), " ")

	if !strings.Contains(args, "-hwaccel rkmpp -c:v h264_rkmpp -i /in.mp4") {
		t.Fatalf("expected hardware decode flags before input, got %s", args)
	}
	if !strings.Contains(args, "-b:v 12000000") {
		t.Fatalf("expected flat h264 bitrate, got %s", args)
	}
}

func TestAccelArgsHEVCTieredRates(t *testing.T) {
	b := NewCommandBuilder(hwaccel.NewCapabilities(nil, nil, "", false))
	uhd := domain.Profile{Name: domain.QualityUHD2160p, Width: 3840, Height: 2160, VideoBitrate: 8_000_000, Codec: domain.CodecH265}

	args := strings.Join(b.Accel("/in.mp4", "/out.mp4", uhd, "", "hevc_rkmpp", "format=nv12"), " ")
	if strings.Contains(args, "-hwaccel") {
		t.Fatalf("expected software decode without decoder, got %s", args)
	}
	if !strings.Contains(args, "-b:v 8M -maxrate 12M -bufsize 18M") {
		t.Fatalf("expected uhd rate tier, got %s", args)
	}
	if !strings.Contains(args, "-profile:v main -tag:v hvc1") {
		t.Fatalf("expected hevc tagging, got %s", args)
	}
}

func TestHEVCRateControlTiers(t *testing.T) {
	cases := []struct {
		width string
		w     int
		bv    string
	}{
		{"uhd", 3840, "8M"},
		{"qhd", 2560, "5M"},
		{"fhd", 1920, "3M"},
	}
	for _, tc := range cases {
		bv, _, _ := HEVCRateControl(tc.w)
		if bv != tc.bv {
			t.Fatalf("%s: expected %s, got %s", tc.width, tc.bv, bv)
		}
	}
}

func TestFilterCandidatesOrder(t *testing.T) {
	withRGA := NewCommandBuilder(hwaccel.NewCapabilities(nil, nil, "", true))
	candidates := withRGA.FilterCandidates()
	if len(candidates) != 2 || candidates[0].Label != "rkrga" || candidates[1].Label != "format" {
		t.Fatalf("unexpected candidates with rga: %+v", candidates)
	}

	withoutRGA := NewCommandBuilder(hwaccel.NewCapabilities(nil, nil, "", false))
	candidates = withoutRGA.FilterCandidates()
	if len(candidates) != 1 || candidates[0].Label != "format" {
		t.Fatalf("unexpected candidates without rga: %+v", candidates)
	}
}
