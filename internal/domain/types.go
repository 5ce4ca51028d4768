package domain

import "time"

// JobStatus tracks a job through its lifecycle. Transitions only move
// forward: queued -> processing -> completed/failed, or queued/processing
// -> cancelled via the cancel operation.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
	StatusCancelled  JobStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

type Quality string

const (
	QualityAuto     Quality = "auto"
	QualityUHD2160p Quality = "uhd_2160p"
	QualityFHD1080p Quality = "fhd_1080p"
	QualityHD720p   Quality = "hd_720p"
	QualitySD480p   Quality = "sd_480p"
)

func (q Quality) Valid() bool {
	switch q {
	case QualityAuto, QualityUHD2160p, QualityFHD1080p, QualityHD720p, QualitySD480p:
		return true
	}
	return false
}

type Codec string

const (
	CodecAuto Codec = "auto"
	CodecH264 Codec = "h264"
	CodecH265 Codec = "h265"
)

func (c Codec) Valid() bool {
	switch c {
	case CodecAuto, CodecH264, CodecH265:
		return true
	}
	return false
}

// JobRequest carries the caller's conversion preferences.
type JobRequest struct {
	Quality     Quality
	Codec       Codec
	CallbackURL string
}

type JobResponse struct {
	JobID   string    `json:"job_id"`
	Status  JobStatus `json:"status"`
	Message string    `json:"message,omitempty"`
}

// JobDetail is the read-side view of a job. Derived fields are computed
// from the record at query time and never stored.
type JobDetail struct {
	JobID               string    `json:"job_id"`
	Status              JobStatus `json:"status"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	SourceFilename      string    `json:"source_filename"`
	OutputFilename      string    `json:"output_filename,omitempty"`
	OutputPath          string    `json:"output_path,omitempty"`
	Quality             Quality   `json:"quality"`
	Codec               Codec     `json:"codec"`
	CallbackURL         string    `json:"callback_url,omitempty"`
	Error               string    `json:"error,omitempty"`
	MediaDurationSecs   *float64  `json:"media_duration_seconds,omitempty"`
	DownloadSeconds     *float64  `json:"download_seconds,omitempty"`
	TranscodeSeconds    *float64  `json:"transcode_seconds,omitempty"`
	TranscodeProgress   *float64  `json:"transcode_progress,omitempty"`
	TranscodeETASeconds *float64  `json:"transcode_eta_seconds,omitempty"`
}

type CallbackPayload struct {
	JobID      string    `json:"job_id"`
	Status     JobStatus `json:"status"`
	OutputPath string    `json:"output_path,omitempty"`
	Message    string    `json:"message,omitempty"`
}

// Profile is a fixed output preset. The table of presets lives in the
// profile package; values are immutable.
type Profile struct {
	Name         Quality
	Width        int
	Height       int
	VideoBitrate int
	Codec        Codec
}

// TranscodeResult summarizes a finished engine run.
type TranscodeResult struct {
	OutputPath string
	Remuxed    bool
	Profile    Profile
	Codec      Codec
}

// ProgressSink receives engine-side updates while a transcode runs.
// MediaDuration reports the probed source duration once known;
// MediaProcessed reports cumulative processed media seconds.
type ProgressSink interface {
	MediaDuration(seconds float64)
	MediaProcessed(seconds float64)
}
