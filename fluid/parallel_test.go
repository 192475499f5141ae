package fluid

import (
	"sync/atomic"
	"testing"
)

func TestForEachCoversRangeExactlyOnce(t *testing.T) {
	p := newPool()
	defer p.stop()

	// Well above the inline threshold so the worker path is exercised.
	n := parallelThreshold * 4
	visits := make([]uint32, n)

	p.forEach(n, func(sp span) {
		for i := sp.start; i < sp.end; i++ {
			atomic.AddUint32(&visits[i], 1)
		}
	})

	for i, v := range visits {
		if v != 1 {
			t.Fatalf("element %d visited %d times, want 1", i, v)
		}
	}
}

func TestForEachSmallInputRunsInline(t *testing.T) {
	p := newPool()
	defer p.stop()

	var spans []span
	p.forEach(10, func(sp span) {
		spans = append(spans, sp)
	})

	if len(spans) != 1 {
		t.Fatalf("got %d spans, want a single inline span", len(spans))
	}
	if spans[0] != (span{index: 0, start: 0, end: 10}) {
		t.Errorf("inline span = %+v, want {0 0 10}", spans[0])
	}
	if p.running {
		t.Error("small input must not spin up the workers")
	}
}

func TestForEachZeroElements(t *testing.T) {
	p := newPool()
	defer p.stop()

	called := false
	p.forEach(0, func(sp span) { called = true })
	if called {
		t.Error("forEach(0) must not invoke the body")
	}
}

func TestForEachSpanPartition(t *testing.T) {
	// Span indices are stable across dispatches over the same n, which is
	// what lets passes keep per-span accumulators.
	p := newPool()
	defer p.stop()

	n := parallelThreshold * 3
	size := p.spanSize(n)

	var mask uint64
	p.forEach(n, func(sp span) {
		if sp.start != sp.index*size {
			t.Errorf("span %d starts at %d, want %d", sp.index, sp.start, sp.index*size)
		}
		if sp.end-sp.start > size {
			t.Errorf("span %d has length %d, want <= %d", sp.index, sp.end-sp.start, size)
		}
		atomicOrUint64(&mask, 1<<uint(sp.index))
	})

	first := mask
	p.forEach(n, func(sp span) {
		atomicOrUint64(&mask, 1<<uint(sp.index))
	})
	if mask != first {
		t.Errorf("span index set changed between dispatches: %b vs %b", first, mask)
	}
}

// atomicOrUint64 matches atomic.OrUint64, which needs Go 1.23+.
func atomicOrUint64(addr *uint64, mask uint64) {
	for {
		old := atomic.LoadUint64(addr)
		if atomic.CompareAndSwapUint64(addr, old, old|mask) {
			return
		}
	}
}

func TestPoolStopIsIdempotent(t *testing.T) {
	p := newPool()

	p.forEach(parallelThreshold*2, func(sp span) {})
	if !p.running {
		t.Fatal("pool should be running after a parallel dispatch")
	}

	p.stop()
	p.stop()
	if p.running {
		t.Error("pool still marked running after stop")
	}
}
