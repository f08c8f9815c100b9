// Package parallel runs independent tasks with bounded concurrency.
package parallel

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const (
	minConcurrency = 2
	// maxConcurrencyCap keeps image builds from saturating the Docker daemon.
	maxConcurrencyCap = 8
)

// DefaultMaxConcurrency returns the CPU count clamped to [2, 8].
func DefaultMaxConcurrency() int64 {
	return min(max(int64(runtime.NumCPU()), minConcurrency), maxConcurrencyCap)
}

// Task is a unit of work.
type Task func(ctx context.Context) error

// Executor runs tasks concurrently, at most maxConcurrency at a time.
type Executor struct {
	maxConcurrency int64
}

// NewExecutor returns an Executor. maxConcurrency <= 0 selects DefaultMaxConcurrency.
func NewExecutor(maxConcurrency int64) *Executor {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency()
	}

	return &Executor{maxConcurrency: maxConcurrency}
}

// MaxConcurrency reports the concurrency limit.
func (e *Executor) MaxConcurrency() int64 {
	return e.maxConcurrency
}

// Execute runs all tasks and returns the first error. The first failure cancels the
// context handed to the remaining tasks.
func (e *Executor) Execute(ctx context.Context, tasks ...Task) error {
	switch len(tasks) {
	case 0:
		return nil
	case 1:
		return tasks[0](ctx)
	}

	sem := semaphore.NewWeighted(e.maxConcurrency)
	group, groupCtx := errgroup.WithContext(ctx)

	for _, task := range tasks {
		group.Go(func() error {
			err := sem.Acquire(groupCtx, 1)
			if err != nil {
				return fmt.Errorf("acquire semaphore: %w", err)
			}

			defer sem.Release(1)

			return task(groupCtx)
		})
	}

	err := group.Wait()
	if err != nil {
		return fmt.Errorf("parallel execution: %w", err)
	}

	return nil
}

// ForEach runs fn for every item through executor.
func ForEach[T any](ctx context.Context, executor *Executor, items []T, fn func(ctx context.Context, item T) error) error {
	tasks := make([]Task, 0, len(items))

	for _, item := range items {
		tasks = append(tasks, func(ctx context.Context) error {
			return fn(ctx, item)
		})
	}

	return executor.Execute(ctx, tasks...)
}

// SyncWriter serializes writes from concurrent tasks.
type SyncWriter struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewSyncWriter wraps writer.
func NewSyncWriter(writer io.Writer) *SyncWriter {
	return &SyncWriter{writer: writer}
}

// Write implements io.Writer.
func (w *SyncWriter) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	written, err := w.writer.Write(data)
	if err != nil {
		return written, fmt.Errorf("sync write: %w", err)
	}

	return written, nil
}
