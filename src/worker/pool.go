package worker

import (
	"context"
	"log"
	"runtime"
	"sync"

	"fixtext/src/llm"
)

// ResultCallback is invoked on request completion (from a worker goroutine).
// The event loop should pass a closure that posts back into the event loop safely.
type ResultCallback func(text string, err error)

// Pool is a fixed-size request worker pool with a 1-slot input queue (strict back-pressure).
type Pool struct {
	corrector llm.Corrector
	jobs      chan job
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type job struct {
	ctx context.Context
	req llm.Request
	cb  ResultCallback
}

// New creates a worker pool. Size defaults to NumCPU when size<=0. Queue is 1 slot.
func New(size int, c llm.Corrector) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{corrector: c, jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				log.Printf("Worker: Starting request, prompt length=%d", len(j.req.Prompt))
				text, err := correctWithContext(j.ctx, p.corrector, j.req)
				log.Printf("Worker: Request completed, text length=%d, err=%v", len(text), err)
				j.cb(text, err)
			}
		}()
	}
}

// Submit enqueues a request if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, req llm.Request, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, req: req, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.jobs)
		p.wg.Wait()
	})
}

// correctWithContext returns at ctx expiry even if the corrector ignores ctx.
func correctWithContext(ctx context.Context, c llm.Corrector, req llm.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	type result struct {
		text string
		err  error
	}
	resCh := make(chan result, 1)
	go func() {
		text, err := c.Correct(ctx, req)
		resCh <- result{text, err}
	}()
	select {
	case r := <-resCh:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
