package reconciler

//go:generate mockgen -source=workerpool.go -destination=mock_workerpool.go -package=reconciler

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// WorkerPoolI bounds how many wallet repairs hit the database at once.
type WorkerPoolI interface {
	AddTask(ctx context.Context, task Task) error
	Close()
}

// Task repairs one drifted wallet.
type Task func() error

// WorkerPool runs repair tasks on a fixed set of goroutines fed by a channel as deep as the pool.
type WorkerPool struct {
	pool  chan Task
	close sync.Once
}

func NewWorkerPool(size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	wp := &WorkerPool{pool: make(chan Task, size)}

	for i := 0; i < size; i++ {
		go wp.worker(i)
	}
	zap.L().Debug("wallet repair workers started", zap.Int("workers", size))
	return wp
}

func (wp *WorkerPool) worker(id int) {
	for repair := range wp.pool {
		if err := repair(); err != nil {
			zap.L().Error("wallet repair failed", zap.Int("worker", id), zap.Error(err))
		}
	}
}

// AddTask queues a repair, blocking while every worker is busy and the queue is full.
func (wp *WorkerPool) AddTask(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case wp.pool <- task:
		return nil
	}
}

// Close stops accepting repairs; queued ones still run. AddTask must not be called after Close.
func (wp *WorkerPool) Close() {
	wp.close.Do(func() { close(wp.pool) })
}
