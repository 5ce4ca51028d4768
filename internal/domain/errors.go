package domain

import "errors"

var (
	// ErrQueueFull is returned on submission when the bounded job queue
	// is saturated. No record is created in that case.
	ErrQueueFull = errors.New("job queue is full")

	// ErrJobNotFound is returned for lookups of unknown job IDs.
	ErrJobNotFound = errors.New("job not found")

	// ErrProbeFailed means the source could not be inspected.
	ErrProbeFailed = errors.New("probe failed")

	// ErrUnknownResolution means the probe succeeded but did not yield a
	// video width and height, so no profile can be chosen.
	ErrUnknownResolution = errors.New("unable to determine source resolution")

	// ErrTranscodeFailed means the transcoding subprocess exited
	// non-zero after all fallback candidates were tried.
	ErrTranscodeFailed = errors.New("transcode failed")
)
