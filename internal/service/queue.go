package service

import (
	"bitwise74/usercontent-api/internal/metrics"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	ErrQueueFull   = errors.New("task queue full")
	ErrQueueClosed = errors.New("task queue closed")
)

const taskTimeout = 30 * time.Second

// Task is a fire-and-forget unit of work. Nobody waits for its result, failures
// only end up in the logs and metrics
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type TaskQueue struct {
	tasks   chan *Task
	pending atomic.Int32
	workers int

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewTaskQueue initializes a new task queue that can hold at most size
// tasks that haven't been picked up by a worker yet
func NewTaskQueue(workers, size int) *TaskQueue {
	if workers <= 0 {
		workers = 1
	}

	if size < 0 {
		size = 0
	}

	zap.L().Debug("Initializing task queue", zap.Int("workers", workers), zap.Int("size", size))

	return &TaskQueue{
		tasks:   make(chan *Task, size),
		workers: workers,
	}
}

func (q *TaskQueue) StartWorkerPool() {
	for range q.workers {
		q.wg.Add(1)
		go q.worker()
	}
}

func (q *TaskQueue) worker() {
	defer q.wg.Done()

	for task := range q.tasks {
		err := q.run(task)
		q.pending.Add(-1)

		if err != nil {
			metrics.RecordTask(task.Name, "error")
			zap.L().Error("Background task failed", zap.String("task", task.Name), zap.Error(err))
			continue
		}

		metrics.RecordTask(task.Name, "success")
		zap.L().Debug("Background task finished", zap.String("task", task.Name))
	}
}

func (q *TaskQueue) run(task *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("task panicked")
			zap.L().Error("Recovered from task panic", zap.String("task", task.Name), zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	return task.Run(ctx)
}

// Enqueue never blocks. If every slot is taken the task is rejected
func (q *TaskQueue) Enqueue(task *Task) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.pending.Add(1)

	select {
	case q.tasks <- task:
		return nil
	default:
		q.pending.Add(-1)
		metrics.RecordTask(task.Name, "dropped")
		return ErrQueueFull
	}
}

// Pending returns the amount of tasks that were enqueued but haven't finished yet
func (q *TaskQueue) Pending() int {
	return int(q.pending.Load())
}

// Close stops accepting tasks and waits until the already queued ones are done
func (q *TaskQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
}
