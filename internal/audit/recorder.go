package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultQueueSize is the recorder's channel capacity.
const DefaultQueueSize = 256

// writeTimeout bounds each repository or sink write.
const writeTimeout = 5 * time.Second

// Sink receives every event after it has been stored.
type Sink interface {
	Name() string
	Send(ctx context.Context, log *AuditLog) error
}

// Recorder queues events and writes them from a single goroutine.
type Recorder struct {
	repo   Repository
	sinks  []Sink
	logger *slog.Logger
	queue  chan *AuditLog
	now    func() time.Time

	startOnce sync.Once
	done      chan struct{}
}

// NewRecorder creates a Recorder. Call Run to start writing.
func NewRecorder(repo Repository, logger *slog.Logger, queueSize int, sinks ...Sink) *Recorder {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Recorder{
		repo:   repo,
		sinks:  sinks,
		logger: logger,
		queue:  make(chan *AuditLog, queueSize),
		now:    time.Now,
		done:   make(chan struct{}),
	}
}

// Record enqueues an event without blocking. A full queue drops the event.
// The Recorder fills in Source when empty and CreatedAt.
func (r *Recorder) Record(log AuditLog) {
	if r == nil {
		return
	}
	if log.Source == "" {
		log.Source = "api"
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = r.now().UTC()
	}

	select {
	case r.queue <- &log:
	default:
		r.logger.Warn("audit queue full, dropping entry",
			"action", string(log.Action),
			"entity_type", log.EntityType,
		)
	}
}

// Run writes queued events until ctx is cancelled, then drains what is left
// and returns. It runs at most once per Recorder.
func (r *Recorder) Run(ctx context.Context) {
	started := false
	r.startOnce.Do(func() { started = true })
	if !started {
		return
	}
	defer close(r.done)

	for {
		select {
		case log := <-r.queue:
			r.write(log)
		case <-ctx.Done():
			for {
				select {
				case log := <-r.queue:
					r.write(log)
				default:
					return
				}
			}
		}
	}
}

// Done is closed when Run has returned.
func (r *Recorder) Done() <-chan struct{} {
	return r.done
}

func (r *Recorder) write(log *AuditLog) {
	// Detached from the request: the event outlives it.
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	if err := r.repo.Create(ctx, log); err != nil {
		r.logger.Error("audit log write failed", "action", string(log.Action), "error", err)
	}
	for _, sink := range r.sinks {
		if err := sink.Send(ctx, log); err != nil {
			r.logger.Warn("audit sink failed", "sink", sink.Name(), "action", string(log.Action), "error", err)
		}
	}
}
