// Package jobs owns the authoritative record for every submitted job, the
// bounded FIFO queue, and the single worker that drains it. Records are
// only ever mutated while holding the manager lock, with the worker as the
// sole writer after submission; reads hand out derived snapshots.
package jobs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eleven-am/goconv/internal/config"
	"github.com/eleven-am/goconv/internal/domain"
)

// Transcoder runs the conversion pipeline for one job. Satisfied by
// engine.Engine.
type Transcoder interface {
	Process(ctx context.Context, jobID, sourcePath string, req domain.JobRequest, sink domain.ProgressSink) (*domain.TranscodeResult, error)
}

// Notifier delivers terminal-state webhooks. Satisfied by
// callback.Dispatcher.
type Notifier interface {
	Dispatch(ctx context.Context, url string, payload domain.CallbackPayload)
}

type workItem struct {
	record  *domain.JobRecord
	request domain.JobRequest
}

type Manager struct {
	cfg        *config.Config
	transcoder Transcoder
	notifier   Notifier
	log        *slog.Logger

	mu      sync.RWMutex
	records map[string]*domain.JobRecord

	queue chan *workItem

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(cfg *config.Config, transcoder Transcoder, notifier Notifier, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:        cfg,
		transcoder: transcoder,
		notifier:   notifier,
		log:        logger,
		records:    make(map[string]*domain.JobRecord),
		queue:      make(chan *workItem, cfg.MaxQueueSize),
	}
}

// Start launches the worker and maintenance loops.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	ctx, m.cancel = context.WithCancel(ctx)

	m.wg.Add(2)
	go m.worker(ctx)
	go m.maintenance(ctx)
	m.log.Info("job manager started", "queue_capacity", m.cfg.MaxQueueSize)
}

// Stop cancels both background loops and waits for them to drain.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

// Submit persists the uploaded bytes, creates a queued record, and
// enqueues the work item. A saturated queue rejects the submission with
// domain.ErrQueueFull without creating a record.
func (m *Manager) Submit(ctx context.Context, upload io.Reader, filename string, req domain.JobRequest) (*domain.JobResponse, error) {
	jobID := uuid.NewString()
	now := time.Now()

	originalName := filepath.Base(filename)
	if originalName == "." || originalName == string(filepath.Separator) || originalName == "" {
		originalName = "upload"
	}
	destPath := filepath.Join(m.cfg.InputDir, jobID+"_"+originalName)

	m.log.Info("saving uploaded file", "job_id", jobID, "source_file", originalName)
	downloadStarted := time.Now()
	size, err := persistUpload(upload, destPath)
	if err != nil {
		return nil, fmt.Errorf("persist upload: %w", err)
	}
	downloadFinished := time.Now()
	m.log.Info("upload persisted", "job_id", jobID, "source_file", originalName, "file_bytes", size)

	record := &domain.JobRecord{
		ID:                 jobID,
		Status:             domain.StatusQueued,
		CreatedAt:          now,
		UpdatedAt:          now,
		SourcePath:         destPath,
		SourceFilename:     originalName,
		Quality:            req.Quality,
		Codec:              req.Codec,
		CallbackURL:        req.CallbackURL,
		DownloadStartedAt:  &downloadStarted,
		DownloadFinishedAt: &downloadFinished,
	}

	select {
	case m.queue <- &workItem{record: record, request: req}:
	default:
		_ = os.Remove(destPath)
		return nil, domain.ErrQueueFull
	}

	m.mu.Lock()
	m.records[jobID] = record
	m.mu.Unlock()

	m.log.Info("job queued", "job_id", jobID, "queue_depth", len(m.queue))
	return &domain.JobResponse{JobID: jobID, Status: domain.StatusQueued, Message: "Job accepted"}, nil
}

// Get returns a snapshot of one job.
func (m *Manager) Get(jobID string) (domain.JobDetail, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[jobID]
	if !ok {
		return domain.JobDetail{}, false
	}
	return record.Detail(), true
}

// List returns snapshots of all known jobs.
func (m *Manager) List() []domain.JobDetail {
	m.mu.RLock()
	defer m.mu.RUnlock()
	details := make([]domain.JobDetail, 0, len(m.records))
	for _, record := range m.records {
		details = append(details, record.Detail())
	}
	return details
}

// Cancel transitions a non-terminal job to cancelled. Cancellation is
// cooperative: a job still in the queue is skipped at dequeue time, but a
// job already mid-transcode runs to its natural terminal state.
func (m *Manager) Cancel(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[jobID]
	if !ok || record.Status.Terminal() {
		return false
	}
	record.Status = domain.StatusCancelled
	record.UpdatedAt = time.Now()
	return true
}

// PurgeExpired drops every job whose updated_at is older than the
// retention window, deleting its files best-effort.
func (m *Manager) PurgeExpired() {
	cutoff := time.Now().Add(-m.cfg.JobRetention)

	m.mu.Lock()
	defer m.mu.Unlock()
	for jobID, record := range m.records {
		if !record.UpdatedAt.Before(cutoff) {
			continue
		}
		delete(m.records, jobID)
		_ = os.Remove(record.SourcePath)
		if record.OutputPath != "" {
			_ = os.Remove(record.OutputPath)
		}
		m.log.Debug("purged job", "job_id", jobID)
	}
}

func (m *Manager) worker(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case item := <-m.queue:
			m.process(ctx, item)
		}
	}
}

func (m *Manager) maintenance(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.MaintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.PurgeExpired()
		}
	}
}

func (m *Manager) process(ctx context.Context, item *workItem) {
	record := item.record
	m.log.Info("dequeued job", "job_id", record.ID, "queue_depth", len(m.queue))

	m.mu.Lock()
	if record.Status == domain.StatusCancelled {
		m.mu.Unlock()
		m.log.Info("skipping cancelled job", "job_id", record.ID)
		return
	}
	now := time.Now()
	record.Status = domain.StatusProcessing
	record.TranscodeStartedAt = &now
	record.UpdatedAt = now
	m.mu.Unlock()

	m.log.Info("processing job", "job_id", record.ID,
		"quality", string(item.request.Quality), "codec", string(item.request.Codec))

	result, err := m.transcoder.Process(ctx, record.ID, record.SourcePath, item.request, &progressSink{m: m, record: record})

	m.mu.Lock()
	finished := time.Now()
	record.TranscodeFinishedAt = &finished
	record.UpdatedAt = finished

	var payload domain.CallbackPayload
	if err != nil {
		record.Status = domain.StatusFailed
		record.Error = err.Error()
		payload = domain.CallbackPayload{JobID: record.ID, Status: record.Status, Message: err.Error()}
		m.mu.Unlock()
		m.log.Error("job failed", "job_id", record.ID, "error", err)
	} else {
		record.Status = domain.StatusCompleted
		record.OutputPath = result.OutputPath
		payload = domain.CallbackPayload{
			JobID:      record.ID,
			Status:     record.Status,
			OutputPath: result.OutputPath,
			Message:    "completed",
		}
		m.mu.Unlock()
		m.log.Info("job completed", "job_id", record.ID, "output", result.OutputPath)
	}

	if record.CallbackURL != "" {
		m.notifier.Dispatch(ctx, record.CallbackURL, payload)
	}
}

// progressSink forwards engine updates into the record under the manager
// lock, so status queries always see a consistent snapshot.
type progressSink struct {
	m      *Manager
	record *domain.JobRecord
}

func (s *progressSink) MediaDuration(seconds float64) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.record.MediaDurationSeconds == 0 && seconds > 0 {
		s.record.MediaDurationSeconds = seconds
	}
	s.record.UpdatedAt = time.Now()
}

func (s *progressSink) MediaProcessed(seconds float64) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.record.TranscodeMediaSeconds = seconds
	s.record.UpdatedAt = time.Now()
}

func persistUpload(src io.Reader, destPath string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return 0, err
	}
	out, err := os.Create(destPath)
	if err != nil {
		return 0, err
	}
	size, err := io.Copy(out, src)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(destPath)
		return 0, err
	}
	return size, nil
}
