package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pathstore"
)

// Orchestrator manages the outline job queue and its workers.
type Orchestrator struct {
	jobs      *JobStore
	queue     chan *Job
	builder   *outline.Builder
	publisher *Publisher
	stats     *Stats
	metrics   *Metrics
	log       *slog.Logger
	cfg       config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. ps may be nil, which disables
// publishing and dedup.
func NewOrchestrator(cfg config.Config, builder *outline.Builder, ps *pathstore.Client, log *slog.Logger) *Orchestrator {
	o := &Orchestrator{
		jobs:    NewJobStore(cfg.JobTTL),
		queue:   make(chan *Job, cfg.MaxQueueSize),
		builder: builder,
		stats:   NewStats(cfg.StatsWindow),
		log:     log,
		cfg:     cfg,
	}
	if ps != nil {
		o.publisher = NewPublisher(ps, log)
	}
	o.metrics = NewMetrics(func() float64 { return float64(o.QueueDepth()) })
	return o
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.builder, o.publisher, o.stats, o.metrics, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		o.metrics.ObserveStatus(StatusFailed)
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Builder returns the shared outline builder for synchronous requests.
func (o *Orchestrator) Builder() *outline.Builder {
	return o.builder
}

// Publisher returns the pathstore publisher, or nil when publishing is off.
func (o *Orchestrator) Publisher() *Publisher {
	return o.publisher
}

// Stats returns the rolling latency stats.
func (o *Orchestrator) Stats() *Stats {
	return o.stats
}

// Metrics returns the Prometheus collectors.
func (o *Orchestrator) Metrics() *Metrics {
	return o.metrics
}
