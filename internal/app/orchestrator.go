package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/downlyapp/downly/internal/domain"
	"github.com/downlyapp/downly/internal/infrastructure"
)

// Orchestrator sequences one download at a time: validate, resolve tool
// paths, run the fetcher on a worker goroutine, relay progress, report the
// terminal outcome. State machine: Idle -> Running -> terminal -> Idle.
// The single in-flight job is owned here and never exposed as mutable state.
type Orchestrator struct {
	fetcher  domain.MediaFetcher
	resolver domain.ToolResolver
	repo     domain.JobRepository
	notifier *infrastructure.NotificationService
	logger   *zap.Logger

	mu        sync.Mutex
	current   *runningJob
	lastEvent *domain.ProgressEvent
}

// runningJob is the orchestrator's owned handle on the in-flight download
type runningJob struct {
	job    *domain.Job
	cancel context.CancelFunc
}

// NewOrchestrator creates a download orchestrator. repo and notifier may be
// nil (history and notifications are then skipped).
func NewOrchestrator(
	fetcher domain.MediaFetcher,
	resolver domain.ToolResolver,
	repo domain.JobRepository,
	notifier *infrastructure.NotificationService,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		fetcher:  fetcher,
		resolver: resolver,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// Start begins a download. It returns domain.ErrAlreadyRunning when a job is
// in flight, and a DependencyNotFoundError when an external tool cannot be
// resolved — in both cases synchronously, before any process is spawned.
//
// The returned Job is a snapshot taken at start; the live record is owned by
// the orchestrator and mutated only on its worker goroutine. Progress events
// are relayed to onEvent in line-emission order from a single consumer
// goroutine; onDone is invoked exactly once with the terminal result, after
// the last event has been delivered.
func (o *Orchestrator) Start(settings domain.DownloadSettings, onEvent domain.ProgressCallback, onDone func(domain.TerminalResult)) (*domain.Job, error) {
	o.mu.Lock()
	if o.current != nil {
		o.mu.Unlock()
		return nil, domain.ErrAlreadyRunning
	}

	// Resolve dependencies while still Idle so a missing tool surfaces as a
	// synchronous start error, not an in-flight failure.
	downloader, err := o.resolver.DownloaderPath()
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	processor, err := o.resolver.ProcessorPath()
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	tools := domain.ToolPaths{Downloader: downloader, Processor: processor}

	job := domain.NewJob(settings)
	ctx, cancel := context.WithCancel(context.Background())
	o.current = &runningJob{job: job, cancel: cancel}
	o.lastEvent = nil
	o.mu.Unlock()

	if o.repo != nil {
		if err := o.repo.Create(job); err != nil {
			o.logger.Error("Failed to persist job", zap.String("id", job.ID), zap.Error(err))
		}
	}

	o.logger.Info("Download started",
		zap.String("id", job.ID),
		zap.String("url", settings.URL),
		zap.String("format", string(settings.OutputFormat)))

	// Single producer (the supervisor's read loop) feeds the channel; a
	// single consumer goroutine hands events to the subscriber. No shared
	// progress state is mutated across goroutines.
	events := make(chan domain.ProgressEvent, 64)
	drained := make(chan struct{})

	go func() {
		defer close(drained)
		for event := range events {
			event := event
			o.mu.Lock()
			o.lastEvent = &event
			o.mu.Unlock()
			if onEvent != nil {
				onEvent(event)
			}
		}
	}()

	go func() {
		defer cancel()
		result := o.fetcher.Fetch(ctx, settings, tools, func(event domain.ProgressEvent) {
			events <- event
		})
		close(events)
		<-drained
		o.finish(job, result, onDone)
	}()

	snapshot := *job
	return &snapshot, nil
}

// Cancel requests cancellation of the given job. It is a no-op — not an
// error — when the job already reached a terminal state or is unknown, so a
// cancel racing completion never surfaces as a failure.
func (o *Orchestrator) Cancel(id string) error {
	o.mu.Lock()
	rj := o.current
	if rj == nil || (id != "" && rj.job.ID != id) {
		o.mu.Unlock()
		return nil
	}
	id, cancel := rj.job.ID, rj.cancel
	o.mu.Unlock()

	o.logger.Info("Cancelling download", zap.String("id", id))
	cancel()
	return nil
}

// Current returns a snapshot of the running job and the most recent progress
// event, or (nil, nil) when Idle
func (o *Orchestrator) Current() (*domain.Job, *domain.ProgressEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current == nil {
		return nil, nil
	}
	job := *o.current.job
	return &job, o.lastEvent
}

// IsRunning reports whether a job is in flight
func (o *Orchestrator) IsRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current != nil
}

// finish transitions the job to its terminal state and returns to Idle
func (o *Orchestrator) finish(job *domain.Job, result domain.TerminalResult, onDone func(domain.TerminalResult)) {
	o.mu.Lock()
	job.ApplyResult(result)
	o.current = nil
	o.mu.Unlock()

	if o.repo != nil {
		if err := o.repo.Update(job); err != nil {
			o.logger.Error("Failed to update job", zap.String("id", job.ID), zap.Error(err))
		}
	}

	switch result.State {
	case domain.TerminalCompleted:
		o.logger.Info("Download completed", zap.String("id", job.ID), zap.String("url", job.URL))
	case domain.TerminalCancelled:
		o.logger.Info("Download cancelled", zap.String("id", job.ID), zap.String("url", job.URL))
	case domain.TerminalFailed:
		o.logger.Error("Download failed",
			zap.String("id", job.ID),
			zap.String("url", job.URL),
			zap.Int("exit_code", result.ExitCode),
			zap.String("stderr", result.Stderr),
			zap.Error(result.Err))
	}

	if o.notifier != nil {
		o.notifier.NotifyResult(job.URL, result)
	}

	if onDone != nil {
		onDone(result)
	}
}
