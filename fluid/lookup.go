package fluid

// spatialLookup is the per-step neighbor acceleration structure: a pair of
// parallel arrays (cell keys and particle indices) sorted by key, plus a
// per-cell index recording where each occupied cell's run begins in the
// sorted arrays.
//
// The index is not cleared between steps. Cells empty this step keep a
// stale entry, so every consumer must go through run(), which detects the
// key mismatch and reports an empty run instead of walking into another
// cell's entries.
type spatialLookup struct {
	grid grid
	pool *pool

	keys   []uint32
	vals   []uint32
	index  []uint32
	sorter *radixSorter
}

func newSpatialLookup(p *pool, g grid, n int) *spatialLookup {
	return &spatialLookup{
		grid:   g,
		pool:   p,
		keys:   make([]uint32, n),
		vals:   make([]uint32, n),
		index:  make([]uint32, g.cellCount()),
		sorter: newRadixSorter(p, n),
	}
}

// build rebuilds the lookup from the current positions: assign a cell key
// to every particle, sort the (key, index) pairs, then record each
// distinct key's first sorted position. Each phase is a full barrier.
func (l *spatialLookup) build(positions []Vec3) {
	l.assignKeys(positions)
	l.sorter.sort(l.keys, l.vals)
	l.buildIndex()
}

// assignKeys writes one cell key per particle, paired with the particle's
// own index as the sort value.
func (l *spatialLookup) assignKeys(positions []Vec3) {
	l.pool.forEach(len(positions), func(sp span) {
		for i := sp.start; i < sp.end; i++ {
			cx, cy, cz := l.grid.cellCoord(positions[i])
			l.keys[i] = l.grid.cellKey(cx, cy, cz)
			l.vals[i] = uint32(i)
		}
	})
}

// buildIndex records, for every key present in the sorted array, the first
// position at which it appears. Boundary detection only needs the i-1
// neighbor, so each element is independent.
func (l *spatialLookup) buildIndex() {
	l.pool.forEach(len(l.keys), func(sp span) {
		for i := sp.start; i < sp.end; i++ {
			if i == 0 || l.keys[i] != l.keys[i-1] {
				l.index[l.keys[i]] = uint32(i)
			}
		}
	})
}

// run returns the [start, end) range of sorted entries for the given cell
// key, computed once per cell so neighbor walks never scan past a run on
// a stale index entry. Empty cells yield (0, 0).
func (l *spatialLookup) run(key uint32) (int, int) {
	start := int(l.index[key])
	if start >= len(l.keys) || l.keys[start] != key {
		return 0, 0
	}

	end := start
	for end < len(l.keys) && l.keys[end] == key {
		end++
	}
	return start, end
}
