// Package worker provides a bounded goroutine pool for fan-out against
// rate-limited APIs.
package worker

import "sync"

type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// NewPool returns a pool that runs at most size tasks concurrently.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Run schedules fn, blocking while the pool is saturated. A panic in fn is
// contained to its task; the rest of the pool keeps running.
func (p *Pool) Run(fn func()) {
	p.wg.Add(1)
	p.sem <- struct{}{}
	go func() {
		defer func() {
			_ = recover()
			<-p.sem
			p.wg.Done()
		}()
		fn()
	}()
}

// Wait blocks until every scheduled task has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}
