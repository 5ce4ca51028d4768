package domain

import (
	"path/filepath"
	"time"
)

// JobRecord is the authoritative state for one submitted job. It is owned
// by the job manager: only the worker goroutine mutates it, and all access
// goes through the manager's lock. Everything handed out to callers is a
// derived JobDetail snapshot.
type JobRecord struct {
	ID             string
	Status         JobStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
	SourcePath     string
	SourceFilename string
	OutputPath     string
	Quality        Quality
	Codec          Codec
	CallbackURL    string
	Error          string

	DownloadStartedAt   *time.Time
	DownloadFinishedAt  *time.Time
	TranscodeStartedAt  *time.Time
	TranscodeFinishedAt *time.Time

	// MediaDurationSeconds is the probed source duration, zero until known.
	MediaDurationSeconds float64
	// TranscodeMediaSeconds is the cumulative media time the tool has
	// processed so far, updated from the progress stream.
	TranscodeMediaSeconds float64
}

// Detail derives the read-side view of the record.
func (r *JobRecord) Detail() JobDetail {
	return r.DetailAt(time.Now())
}

// DetailAt derives the read-side view using the supplied clock value.
func (r *JobRecord) DetailAt(now time.Time) JobDetail {
	d := JobDetail{
		JobID:          r.ID,
		Status:         r.Status,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		SourceFilename: r.SourceFilename,
		Quality:        r.Quality,
		Codec:          r.Codec,
		CallbackURL:    r.CallbackURL,
		Error:          r.Error,
	}

	if r.OutputPath != "" {
		d.OutputPath = r.OutputPath
		d.OutputFilename = filepath.Base(r.OutputPath)
	}

	if r.MediaDurationSeconds > 0 {
		dur := r.MediaDurationSeconds
		d.MediaDurationSecs = &dur
	}

	if r.DownloadStartedAt != nil && r.DownloadFinishedAt != nil {
		secs := r.DownloadFinishedAt.Sub(*r.DownloadStartedAt).Seconds()
		d.DownloadSeconds = &secs
	}

	if r.TranscodeStartedAt != nil {
		end := now
		if r.TranscodeFinishedAt != nil {
			end = *r.TranscodeFinishedAt
		}
		secs := end.Sub(*r.TranscodeStartedAt).Seconds()
		d.TranscodeSeconds = &secs
	}

	if r.MediaDurationSeconds > 0 && r.TranscodeMediaSeconds > 0 && r.TranscodeStartedAt != nil {
		processed := min(r.TranscodeMediaSeconds, r.MediaDurationSeconds)
		progress := processed / r.MediaDurationSeconds
		d.TranscodeProgress = &progress

		// ETA only makes sense while the transcode is still running.
		if r.TranscodeFinishedAt == nil {
			elapsed := now.Sub(*r.TranscodeStartedAt).Seconds()
			if elapsed > 0 {
				speed := processed / elapsed
				if speed > 0 {
					eta := max(r.MediaDurationSeconds-processed, 0) / speed
					d.TranscodeETASeconds = &eta
				}
			}
		}
	}

	return d
}
