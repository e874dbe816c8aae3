package signer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aegis-sign/jadesigner/pkg/apierrors"
)

const defaultMaxQueue = 64

var errQueueClosed = errors.New("unlock queue closed")

const (
	jobQueued int32 = iota
	jobRunning
	jobAbandoned
)

// unlockQueue 用单个 worker 按提交顺序执行解锁，任意时刻最多一个解锁在进行。
type unlockQueue struct {
	jobs    chan *unlockJob
	stopCh  chan struct{}
	metrics *Metrics
	wg      sync.WaitGroup

	closeOnce sync.Once
}

type unlockJob struct {
	ctx   context.Context
	fn    func(ctx context.Context) error
	state atomic.Int32
	done  chan error
}

func newUnlockQueue(capacity int, metrics *Metrics) *unlockQueue {
	if capacity <= 0 {
		capacity = defaultMaxQueue
	}
	q := &unlockQueue{
		jobs:    make(chan *unlockJob, capacity),
		stopCh:  make(chan struct{}),
		metrics: metrics,
	}
	q.wg.Add(1)
	go q.workerLoop()
	return q
}

// Do 排队执行 fn 并等待结果。排队期间 ctx 结束则放弃该任务；
// 已开始执行的任务会等待其完成。
func (q *unlockQueue) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	job := &unlockJob{ctx: ctx, fn: fn, done: make(chan error, 1)}
	select {
	case <-q.stopCh:
		return errQueueClosed
	default:
	}
	select {
	case q.jobs <- job:
		q.metrics.setQueueDepth(len(q.jobs))
	default:
		return apierrors.New(apierrors.CodeRetryLater, "unlock queue is full").WithRetryAfter(time.Second)
	}
	select {
	case err := <-job.done:
		return err
	case <-ctx.Done():
		if job.state.CompareAndSwap(jobQueued, jobAbandoned) {
			return ctx.Err()
		}
		return <-job.done
	case <-q.stopCh:
		if job.state.CompareAndSwap(jobQueued, jobAbandoned) {
			return errQueueClosed
		}
		return <-job.done
	}
}

// Depth 返回排队中的任务数。
func (q *unlockQueue) Depth() int {
	return len(q.jobs)
}

// Close 停止 worker；正在执行的任务会先完成。
func (q *unlockQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.stopCh)
		q.wg.Wait()
	})
}

func (q *unlockQueue) workerLoop() {
	defer q.wg.Done()
	for {
		select {
		case <-q.stopCh:
			return
		case job := <-q.jobs:
			q.metrics.setQueueDepth(len(q.jobs))
			q.handleJob(job)
		}
	}
}

func (q *unlockQueue) handleJob(job *unlockJob) {
	if !job.state.CompareAndSwap(jobQueued, jobRunning) {
		return
	}
	if err := job.ctx.Err(); err != nil {
		job.done <- err
		return
	}
	job.done <- job.fn(job.ctx)
}
