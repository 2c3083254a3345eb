package pipeline

import (
	"runtime"
	"sync"
)

// WorkerPool runs submitted jobs on a fixed number of goroutines.
type WorkerPool struct {
	workers  int
	jobQueue chan func()
	wg       sync.WaitGroup
	start    sync.Once
	stop     sync.Once
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (wp *WorkerPool) Start() {
	wp.start.Do(func() {
		for i := 0; i < wp.workers; i++ {
			go wp.worker()
		}
	})
}

func (wp *WorkerPool) worker() {
	for job := range wp.jobQueue {
		job()
		wp.wg.Done()
	}
}

// Submit queues a job. It blocks while the queue is full and must not be
// called after Close.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.jobQueue <- job
}

// Wait blocks until every submitted job has returned.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Close stops the workers once the queue drains.
func (wp *WorkerPool) Close() {
	wp.stop.Do(func() {
		close(wp.jobQueue)
	})
}
