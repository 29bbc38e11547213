package notification

import (
	"context"
	"log"
	"sync/atomic"

	"daytrack-backend/internal/model"
)

// Job delivers one slot event to a slow handler.
type Job struct {
	Slot   model.TimeSlot
	handle func(model.TimeSlot)
}

// WorkerPool runs slot event handlers off the timeline's write path.
type WorkerPool struct {
	size    int
	jobs    chan Job
	dropped atomic.Int64
}

// NewWorkerPool creates a new worker pool with a bounded queue.
func NewWorkerPool(size, queueSize int) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if queueSize <= 0 {
		queueSize = size
	}
	return &WorkerPool{
		size: size,
		jobs: make(chan Job, queueSize), // Buffered channel
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			wp.run(id, job)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

func (wp *WorkerPool) run(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Worker %d: handler for slot %s panicked: %v", id, job.Slot.StartTime, r)
		}
	}()
	job.handle(job.Slot)
}

// Dispatch queues a job without blocking. When the queue is full the job
// is dropped and Dispatch returns false.
func (wp *WorkerPool) Dispatch(job Job) bool {
	select {
	case wp.jobs <- job:
		return true
	default:
		wp.dropped.Add(1)
		log.Printf("Worker pool queue full, dropping event for slot %s", job.Slot.StartTime)
		return false
	}
}

// Wrap returns a handler that hands slots to handle on a worker.
func (wp *WorkerPool) Wrap(handle func(model.TimeSlot)) func(model.TimeSlot) {
	return func(slot model.TimeSlot) {
		wp.Dispatch(Job{Slot: slot, handle: handle})
	}
}

// Dropped returns how many jobs were discarded because the queue was full.
func (wp *WorkerPool) Dropped() int64 {
	return wp.dropped.Load()
}
