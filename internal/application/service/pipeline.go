package service

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/naps/internal/domain/models"
	"github.com/turtacn/naps/internal/infrastructure/monitoring"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/logger"
)

// Pipeline decouples session intake from analysis. Sessions are queued on a
// bounded channel and drained by a fixed worker pool; when the queue is full
// the incoming session is dropped and counted rather than blocking the
// producer.
type Pipeline struct {
	orchestrator AnalysisOrchestrator
	queue        chan *models.Session
	workers      int
	metrics      *monitoring.Metrics
	logger       logger.Logger

	group  *errgroup.Group
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
}

// NewPipeline creates the analysis pipeline. Non-positive sizes fall back to
// the defaults.
func NewPipeline(orchestrator AnalysisOrchestrator, queueSize, workers int, metrics *monitoring.Metrics, log logger.Logger) *Pipeline {
	if queueSize < 1 {
		queueSize = constants.DefaultPipelineQueueSize
	}
	if workers < 1 {
		workers = constants.DefaultPipelineWorkers
	}
	return &Pipeline{
		orchestrator: orchestrator,
		queue:        make(chan *models.Session, queueSize),
		workers:      workers,
		metrics:      metrics,
		logger:       log.WithComponent(constants.ComponentPipeline),
	}
}

// Start launches the worker pool. Calling Start twice is a no-op.
func (p *Pipeline) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	p.group, ctx = errgroup.WithContext(ctx)

	for i := 0; i < p.workers; i++ {
		p.group.Go(func() error {
			return p.worker(ctx)
		})
	}
	p.logger.Info(ctx, "analysis pipeline started", logger.Fields{
		"workers":    p.workers,
		"queue_size": cap(p.queue),
	})
}

// Stop cancels the workers and waits for them to drain.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return nil
	}
	p.started = false
	p.cancel()
	return p.group.Wait()
}

// Submit enqueues a session for analysis. When the queue is full the session
// is dropped, the drop is counted, and Submit reports false.
func (p *Pipeline) Submit(ctx context.Context, session *models.Session) bool {
	select {
	case p.queue <- session:
		p.metrics.SessionsIngested.Inc()
		p.metrics.PipelineQueueSize.Set(float64(len(p.queue)))
		return true
	default:
		p.metrics.SessionsDropped.Inc()
		p.logger.Warn(ctx, "pipeline queue full, session dropped", logger.Fields{
			"session_id": session.SessionID,
		})
		return false
	}
}

// QueueDepth reports how many sessions are waiting.
func (p *Pipeline) QueueDepth() int {
	return len(p.queue)
}

func (p *Pipeline) worker(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case session := <-p.queue:
			p.metrics.PipelineQueueSize.Set(float64(len(p.queue)))
			if _, err := p.orchestrator.AnalyzeSession(ctx, session); err != nil {
				p.logger.Error(ctx, "session analysis failed", err, logger.Fields{
					"session_id": session.SessionID,
				})
			}
		}
	}
}
