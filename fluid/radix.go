package fluid

import "sync/atomic"

const (
	radixBits   = 8
	radixBins   = 1 << radixBits
	radixMask   = radixBins - 1
	radixPasses = 32 / radixBits
)

// radixSorter sorts (key, value) pairs by ascending key using fixed-width
// digit passes. Each pass histograms one 8-bit digit, scans the bin counts
// into exclusive offsets, and scatters pairs into a ping-pong buffer.
//
// The scatter is stable and deterministic: bin counts are kept per worker
// span, and each span receives its own pre-scanned starting offset for
// every bin, so equal keys keep their relative order without contending on
// shared counters. Only the histogram merge touches shared state, via
// atomic adds (one per non-empty bin per span).
type radixSorter struct {
	pool *pool

	tmpKeys []uint32
	tmpVals []uint32

	bins        [radixBins]uint32
	spanCounts  [][radixBins]uint32
	spanOffsets [][radixBins]uint32
}

func newRadixSorter(p *pool, n int) *radixSorter {
	return &radixSorter{
		pool:        p,
		tmpKeys:     make([]uint32, n),
		tmpVals:     make([]uint32, n),
		spanCounts:  make([][radixBins]uint32, p.numWorkers),
		spanOffsets: make([][radixBins]uint32, p.numWorkers),
	}
}

// sort orders the pairs in keys/vals by ascending key. The pass count is
// even, so after ping-ponging through the scratch buffers the sorted order
// lands back in the caller's slices.
func (s *radixSorter) sort(keys, vals []uint32) {
	srcKeys, srcVals := keys, vals
	dstKeys, dstVals := s.tmpKeys[:len(keys)], s.tmpVals[:len(vals)]

	for pass := 0; pass < radixPasses; pass++ {
		shift := uint(pass * radixBits)
		s.countDigits(srcKeys, shift)
		exclusiveScan(s.bins[:])
		s.spreadOffsets()
		s.scatter(srcKeys, srcVals, dstKeys, dstVals, shift)

		srcKeys, dstKeys = dstKeys, srcKeys
		srcVals, dstVals = dstVals, srcVals
	}
}

// countDigits fills the global bin counters for one digit pass. Counts are
// first accumulated span-locally, then merged with atomic adds.
func (s *radixSorter) countDigits(srcKeys []uint32, shift uint) {
	for i := range s.bins {
		s.bins[i] = 0
	}
	for i := range s.spanCounts {
		s.spanCounts[i] = [radixBins]uint32{}
	}

	s.pool.forEach(len(srcKeys), func(sp span) {
		local := &s.spanCounts[sp.index]
		for _, k := range srcKeys[sp.start:sp.end] {
			local[(k>>shift)&radixMask]++
		}
		for b, cnt := range local {
			if cnt != 0 {
				atomic.AddUint32(&s.bins[b], cnt)
			}
		}
	})
}

// spreadOffsets derives each span's starting offset per bin from the
// scanned global offsets plus the counts of all preceding spans. This is
// what keeps the parallel scatter stable.
func (s *radixSorter) spreadOffsets() {
	for b := 0; b < radixBins; b++ {
		off := s.bins[b]
		for c := range s.spanOffsets {
			s.spanOffsets[c][b] = off
			off += s.spanCounts[c][b]
		}
	}
}

// scatter writes every pair to its globally ordered slot. Each span owns
// its offset counters exclusively, so the writes are race-free.
func (s *radixSorter) scatter(srcKeys, srcVals, dstKeys, dstVals []uint32, shift uint) {
	s.pool.forEach(len(srcKeys), func(sp span) {
		offs := &s.spanOffsets[sp.index]
		for i := sp.start; i < sp.end; i++ {
			b := (srcKeys[i] >> shift) & radixMask
			dst := offs[b]
			offs[b]++
			dstKeys[dst] = srcKeys[i]
			dstVals[dst] = srcVals[i]
		}
	})
}
