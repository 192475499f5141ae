package fluid

import (
	"runtime"
	"sync"
)

// parallelThreshold is the minimum element count to use parallel processing.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 2048

// span is a range of elements for one worker to process. Index identifies
// the synchronization group, so stages can keep group-local accumulators
// (see the radix sort histogram).
type span struct {
	index      int
	start, end int
}

// pool runs data-parallel stages over persistent worker goroutines.
// forEach acts as a full barrier: it returns only after every span has
// been processed, which is what orders the pipeline stages.
type pool struct {
	numWorkers int

	workChan chan span
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool

	// fn is the body of the stage currently being dispatched. Only forEach
	// writes it, and never while spans are in flight.
	fn func(s span)
}

func newPool() *pool {
	return &pool{numWorkers: runtime.GOMAXPROCS(0)}
}

// start launches the persistent worker goroutines.
func (p *pool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan span, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *pool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case s, ok := <-p.workChan:
			if !ok {
				return
			}
			p.fn(s)
			p.doneChan <- struct{}{}
		}
	}
}

// spanSize returns the per-group span length for n elements. The same
// partition is used by every dispatch over the same n, so group-local
// state indexed by span.index stays consistent across passes.
func (p *pool) spanSize(n int) int {
	return (n + p.numWorkers - 1) / p.numWorkers
}

// forEach partitions [0, n) into at most numWorkers spans and runs fn on
// each. Small inputs run inline on the calling goroutine as span 0.
func (p *pool) forEach(n int, fn func(s span)) {
	if n <= 0 {
		return
	}

	if n < parallelThreshold {
		fn(span{index: 0, start: 0, end: n})
		return
	}

	if !p.running {
		p.start()
	}

	p.fn = fn
	size := p.spanSize(n)

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * size
		end := start + size
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		p.workChan <- span{index: w, start: start, end: end}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}
