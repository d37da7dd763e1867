// Package worker runs per-chat job pumps bounded by one shared semaphore,
// so chats proceed independently while total concurrency stays capped.
package worker

import "context"

type Pool[J any] struct {
	ctx context.Context
	sem chan struct{}
}

func NewPool[J any](ctx context.Context, maxConcurrency int) *Pool[J] {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	return &Pool[J]{ctx: ctx, sem: make(chan struct{}, maxConcurrency)}
}

// Run consumes jobs until the pool context is cancelled or the channel
// closes. Each job acquires a semaphore slot for the duration of handle.
func (p *Pool[J]) Run(jobs <-chan J, handle func(context.Context, J)) {
	go func() {
		for {
			select {
			case <-p.ctx.Done():
				return
			case job, ok := <-jobs:
				if !ok {
					return
				}
				select {
				case p.sem <- struct{}{}:
				case <-p.ctx.Done():
					return
				}
				func() {
					defer func() { <-p.sem }()
					handle(p.ctx, job)
				}()
			}
		}
	}()
}

// Enqueue blocks until the job is queued or either context ends.
func (p *Pool[J]) Enqueue(ctx context.Context, jobs chan<- J, job J) error {
	if ctx == nil {
		ctx = p.ctx
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return p.ctx.Err()
	case jobs <- job:
		return nil
	}
}
