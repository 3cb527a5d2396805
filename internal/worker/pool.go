// Package worker runs background analysis tasks on a bounded goroutine pool.
package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Task carries everything a worker needs to analyze one job. One task is
// enqueued per job id, so a job is processed at most once end-to-end.
type Task struct {
	JobID   uuid.UUID
	OwnerID string
	Text    string
	Mode    string
}

// Handler processes a single task to its terminal outcome.
type Handler func(ctx context.Context, task Task)

// Pool consumes tasks from a buffered channel with a fixed number of worker
// goroutines. Submissions hand off through Enqueue and never wait on the
// analysis itself.
type Pool struct {
	tasks       chan Task
	concurrency int
	quit        chan struct{}
	wg          sync.WaitGroup
	stopOnce    sync.Once
}

// NewPool creates a pool with the given concurrency and queue size.
func NewPool(concurrency, queueSize int) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		tasks:       make(chan Task, queueSize),
		concurrency: concurrency,
		quit:        make(chan struct{}),
	}
}

// Start spawns the worker goroutines. The handler receives ctx, which is
// cancelled when the pool stops.
func (p *Pool) Start(ctx context.Context, handler Handler) {
	slog.Info("starting worker pool", "concurrency", p.concurrency, "queue_size", cap(p.tasks))

	for i := 0; i < p.concurrency; i++ {
		p.wg.Add(1)
		go p.workerLoop(ctx, i, handler)
	}
}

func (p *Pool) workerLoop(ctx context.Context, workerNum int, handler Handler) {
	defer p.wg.Done()

	for {
		select {
		case <-p.quit:
			p.drain(ctx, workerNum, handler)
			return
		case <-ctx.Done():
			return
		case task := <-p.tasks:
			slog.Debug("worker picked up task", "worker", workerNum, "job_id", task.JobID)
			handler(ctx, task)
		}
	}
}

// drain finishes tasks already queued when Stop was called.
func (p *Pool) drain(ctx context.Context, workerNum int, handler Handler) {
	for {
		select {
		case task := <-p.tasks:
			slog.Debug("worker draining task", "worker", workerNum, "job_id", task.JobID)
			handler(ctx, task)
		default:
			return
		}
	}
}

// Enqueue hands a task to the pool without blocking. Returns false if the
// queue is full or the pool has been stopped.
func (p *Pool) Enqueue(task Task) bool {
	select {
	case <-p.quit:
		return false
	default:
	}

	select {
	case p.tasks <- task:
		return true
	case <-p.quit:
		return false
	default:
		return false
	}
}

// Stop rejects further tasks and waits for in-flight ones to finish.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}
