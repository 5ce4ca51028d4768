package domain

import (
	"testing"
	"time"
)

func TestDetailClampsProgress(t *testing.T) {
	now := time.Now()
	started := now.Add(-10 * time.Second)

	rec := &JobRecord{
		ID:                    "job-1",
		Status:                StatusProcessing,
		TranscodeStartedAt:    &started,
		MediaDurationSeconds:  100,
		TranscodeMediaSeconds: 140,
	}

	d := rec.DetailAt(now)
	if d.TranscodeProgress == nil {
		t.Fatal("expected progress to be set")
	}
	if *d.TranscodeProgress != 1.0 {
		t.Fatalf("expected progress clamped to 1.0, got %f", *d.TranscodeProgress)
	}
}

func TestDetailETAWhileRunning(t *testing.T) {
	now := time.Now()
	started := now.Add(-10 * time.Second)

	rec := &JobRecord{
		Status:                StatusProcessing,
		TranscodeStartedAt:    &started,
		MediaDurationSeconds:  100,
		TranscodeMediaSeconds: 50,
	}

	d := rec.DetailAt(now)
	if d.TranscodeETASeconds == nil {
		t.Fatal("expected eta to be set")
	}
	// 50 media seconds in 10 wall seconds = 5x speed, 50 remaining -> 10s.
	if *d.TranscodeETASeconds < 9.9 || *d.TranscodeETASeconds > 10.1 {
		t.Fatalf("expected eta near 10s, got %f", *d.TranscodeETASeconds)
	}
}

func TestDetailNoETAWhenFinished(t *testing.T) {
	now := time.Now()
	started := now.Add(-20 * time.Second)
	finished := now.Add(-2 * time.Second)

	rec := &JobRecord{
		Status:                StatusCompleted,
		TranscodeStartedAt:    &started,
		TranscodeFinishedAt:   &finished,
		MediaDurationSeconds:  100,
		TranscodeMediaSeconds: 100,
	}

	d := rec.DetailAt(now)
	if d.TranscodeETASeconds != nil {
		t.Fatalf("expected no eta for finished job, got %f", *d.TranscodeETASeconds)
	}
	if d.TranscodeSeconds == nil {
		t.Fatal("expected transcode seconds")
	}
	if *d.TranscodeSeconds < 17.9 || *d.TranscodeSeconds > 18.1 {
		t.Fatalf("expected transcode seconds near 18, got %f", *d.TranscodeSeconds)
	}
}

func TestDetailNoETAWithoutDurationOrProgress(t *testing.T) {
	now := time.Now()
	started := now.Add(-5 * time.Second)

	noDuration := &JobRecord{Status: StatusProcessing, TranscodeStartedAt: &started, TranscodeMediaSeconds: 10}
	if d := noDuration.DetailAt(now); d.TranscodeETASeconds != nil || d.TranscodeProgress != nil {
		t.Fatal("expected no progress or eta without a known duration")
	}

	noProgress := &JobRecord{Status: StatusProcessing, TranscodeStartedAt: &started, MediaDurationSeconds: 100}
	if d := noProgress.DetailAt(now); d.TranscodeETASeconds != nil {
		t.Fatal("expected no eta with zero processed time")
	}
}

func TestDetailDownloadSeconds(t *testing.T) {
	now := time.Now()
	started := now.Add(-3 * time.Second)
	finished := now.Add(-1 * time.Second)

	rec := &JobRecord{Status: StatusQueued, DownloadStartedAt: &started, DownloadFinishedAt: &finished}
	d := rec.DetailAt(now)
	if d.DownloadSeconds == nil {
		t.Fatal("expected download seconds")
	}
	if *d.DownloadSeconds < 1.9 || *d.DownloadSeconds > 2.1 {
		t.Fatalf("expected download seconds near 2, got %f", *d.DownloadSeconds)
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []JobStatus{StatusCompleted, StatusFailed, StatusCancelled} {
		if !s.Terminal() {
			t.Fatalf("expected %s to be terminal", s)
		}
	}
	for _, s := range []JobStatus{StatusQueued, StatusProcessing} {
		if s.Terminal() {
			t.Fatalf("expected %s not to be terminal", s)
		}
	}
}

func TestMapCodecName(t *testing.T) {
	cases := map[string]Codec{
		"h264": CodecH264,
		"avc1": CodecH264,
		"AVC":  CodecH264,
		"hevc": CodecH265,
		"hvc1": CodecH265,
		"h265": CodecH265,
		"vp9":  CodecAuto,
		"":     CodecAuto,
	}
	for name, want := range cases {
		if got := MapCodecName(name); got != want {
			t.Fatalf("MapCodecName(%q) = %s, want %s", name, got, want)
		}
	}
}
