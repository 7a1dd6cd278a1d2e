package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const creditTimeout = 5 * time.Second

// CompletionCrediter is the part of the task store the pool needs.
type CompletionCrediter interface {
	ListUncreditedCompletions(ctx context.Context, limit int) ([]string, error)
	CreditWorker(ctx context.Context, taskID string) (bool, error)
}

// PoolService credits workers for completed tasks in the background. Task ids come
// from CompleteTask and from a poll of completions that were never credited.
type PoolService struct {
	queue        chan string
	wg           sync.WaitGroup
	requeueWG    sync.WaitGroup
	enqueued     sync.Map
	repo         CompletionCrediter
	pollInterval time.Duration
	pollBatch    int
	requeueStop  chan struct{}
	logger       *slog.Logger

	mu     sync.RWMutex
	closed bool
}

func NewPoolService(
	repo CompletionCrediter,
	workers int,
	queueSize int,
	pollInterval time.Duration,
	pollBatch int,
	logger *slog.Logger,
) *PoolService {
	p := &PoolService{
		queue:        make(chan string, queueSize),
		repo:         repo,
		pollInterval: pollInterval,
		pollBatch:    pollBatch,
		requeueStop:  make(chan struct{}),
		logger:       logger.With("component", "pool_service"),
	}

	p.requeueWG.Add(1)
	go p.requeuePendingLoop()

	for i := 1; i <= workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	return p
}

// Enqueue reports whether the task id was queued. Ids already waiting in the queue
// are not queued twice.
func (p *PoolService) Enqueue(taskID string) bool {
	ok, _ := p.enqueueIfNotPresent(taskID)
	return ok
}

func (p *PoolService) worker(workerID int) {
	defer p.wg.Done()

	p.logger.Debug("worker started", "worker", workerID)

	for taskID := range p.queue {
		p.handleTask(workerID, taskID)
	}

	p.logger.Debug("worker stopped", "worker", workerID)
}

func (p *PoolService) handleTask(workerID int, taskID string) {
	defer p.untrackEnqueued(taskID)

	ctx, cancel := context.WithTimeout(context.Background(), creditTimeout)
	defer cancel()

	credited, err := p.repo.CreditWorker(ctx, taskID)
	if err != nil {
		p.logger.Error("failed to credit worker", "worker", workerID, "task_id", taskID, "error", err)
		return
	}
	if !credited {
		p.logger.Debug("task already credited", "worker", workerID, "task_id", taskID)
		return
	}

	p.logger.Info("worker credited for completed task", "worker", workerID, "task_id", taskID)
}

func (p *PoolService) requeuePendingLoop() {
	defer p.requeueWG.Done()

	p.requeuePendingOnce()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.requeuePendingOnce()
		case <-p.requeueStop:
			return
		}
	}
}

func (p *PoolService) requeuePendingOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), creditTimeout)
	defer cancel()

	ids, err := p.repo.ListUncreditedCompletions(ctx, p.pollBatch)
	if err != nil {
		p.logger.Error("requeue: failed to list uncredited completions", "error", err)
		return
	}

	for _, id := range ids {
		if _, queueFull := p.enqueueIfNotPresent(id); queueFull {
			return
		}
	}
}

func (p *PoolService) enqueueIfNotPresent(taskID string) (bool, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return false, false
	}
	if !p.trackEnqueued(taskID) {
		return false, false
	}

	select {
	case p.queue <- taskID:
		return true, false
	default:
		p.untrackEnqueued(taskID)
		return false, true
	}
}

func (p *PoolService) trackEnqueued(taskID string) bool {
	_, loaded := p.enqueued.LoadOrStore(taskID, struct{}{})
	return !loaded
}

func (p *PoolService) untrackEnqueued(taskID string) {
	p.enqueued.Delete(taskID)
}

// Shutdown stops polling and waits for queued credits until ctx is done.
func (p *PoolService) Shutdown(ctx context.Context) {
	close(p.requeueStop)
	p.requeueWG.Wait()

	p.mu.Lock()
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool shut down cleanly")
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown timed out")
	}
}
