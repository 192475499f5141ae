package fluid

// exclusiveScan converts counts into exclusive running offsets in place
// using a balanced-tree up-sweep/down-sweep (Blelloch) scan. The length
// must be a power of two; the radix sort runs it over its 256 bins.
func exclusiveScan(a []uint32) {
	n := len(a)

	// Up-sweep: build partial sums toward the root.
	for stride := 1; stride < n; stride *= 2 {
		for i := 2*stride - 1; i < n; i += 2 * stride {
			a[i] += a[i-stride]
		}
	}

	// Down-sweep: clear the root and push prefixes back down.
	a[n-1] = 0
	for stride := n / 2; stride > 0; stride /= 2 {
		for i := 2*stride - 1; i < n; i += 2 * stride {
			t := a[i-stride]
			a[i-stride] = a[i]
			a[i] += t
		}
	}
}
