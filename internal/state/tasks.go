package state

import (
	"context"
	"sync"

	"github.com/kk-code-lab/rtree/internal/metrics"
	"go.uber.org/zap"
)

// TaskQueue runs filesystem operations off the control loop. Tasks are fire
// and forget: a failure is logged and counted, and the task itself is
// responsible for dispatching any completion action.
type TaskQueue struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	logger *zap.Logger
}

func NewTaskQueue(logger *zap.Logger) *TaskQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &TaskQueue{ctx: ctx, cancel: cancel, logger: logger}
}

// Spawn runs fn on its own goroutine. op and fields describe the task in logs.
func (q *TaskQueue) Spawn(op string, fn func(ctx context.Context) error, fields ...zap.Field) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := fn(q.ctx); err != nil {
			metrics.RecordTaskFailure(op)
			q.logger.Error("panel task failed", append([]zap.Field{zap.String("op", op), zap.Error(err)}, fields...)...)
		}
	}()
}

// Wait blocks until every spawned task has returned.
func (q *TaskQueue) Wait() {
	q.wg.Wait()
}

// Close cancels running tasks and waits for them.
func (q *TaskQueue) Close() {
	q.cancel()
	q.wg.Wait()
}
