package fluid

import (
	"math/rand"
	"testing"
)

func TestLookupOnePerCell(t *testing.T) {
	// One particle per cell of a 3x3x3 grid, seeded in key order, so
	// after the build both the sorted keys and values are the identity.
	g := newGrid(1, 3, 3, 3)
	p := newPool()
	defer p.stop()

	positions := make([]Vec3, 0, 27)
	for z := 0; z < 3; z++ {
		for y := 0; y < 3; y++ {
			for x := 0; x < 3; x++ {
				positions = append(positions, Vec3{float32(x) + 0.5, float32(y) + 0.5, float32(z) + 0.5})
			}
		}
	}

	l := newSpatialLookup(p, g, len(positions))
	l.build(positions)

	for i := range positions {
		if l.keys[i] != uint32(i) {
			t.Errorf("keys[%d] = %d, want %d", i, l.keys[i], i)
		}
		if l.vals[i] != uint32(i) {
			t.Errorf("vals[%d] = %d, want %d", i, l.vals[i], i)
		}
		start, end := l.run(uint32(i))
		if start != i || end != i+1 {
			t.Errorf("run(%d) = (%d, %d), want (%d, %d)", i, start, end, i, i+1)
		}
	}
}

func TestLookupIndexRecordsFirstOccurrence(t *testing.T) {
	g := newGrid(0.05, 20, 20, 20)
	p := newPool()
	defer p.stop()

	rng := rand.New(rand.NewSource(11))
	positions := make([]Vec3, 500)
	for i := range positions {
		positions[i] = Vec3{rng.Float32(), rng.Float32(), rng.Float32()}
	}

	l := newSpatialLookup(p, g, len(positions))
	l.build(positions)

	for i := 1; i < len(l.keys); i++ {
		if l.keys[i-1] > l.keys[i] {
			t.Fatalf("sorted keys not non-decreasing at %d", i)
		}
	}

	for i, k := range l.keys {
		start, end := l.run(k)
		if start > i || i >= end {
			t.Fatalf("entry %d (key %d) outside its run [%d, %d)", i, k, start, end)
		}
		if start > 0 && l.keys[start-1] == k {
			t.Fatalf("run(%d) start %d is not the first occurrence", k, start)
		}
		if int(l.index[k]) != start {
			t.Fatalf("index[%d] = %d, want %d", k, l.index[k], start)
		}
	}
}

func TestLookupEmptyCellsYieldNoEntries(t *testing.T) {
	// Deliberately sparse: all particles crowd one corner cell, leaving
	// the rest of the grid empty with stale index entries.
	g := newGrid(1, 4, 4, 4)
	p := newPool()
	defer p.stop()

	positions := make([]Vec3, 8)
	for i := range positions {
		positions[i] = Vec3{0.5, 0.5, 0.5}
	}

	l := newSpatialLookup(p, g, len(positions))
	l.build(positions)

	// Poison the index so a stale value would be caught, then rebuild.
	for i := range l.index {
		l.index[i] = 3
	}
	l.build(positions)

	occupied := g.cellKey(0, 0, 0)
	for key := uint32(0); int(key) < g.cellCount(); key++ {
		start, end := l.run(key)
		if key == occupied {
			if start != 0 || end != len(positions) {
				t.Errorf("run(%d) = (%d, %d), want (0, %d)", key, start, end, len(positions))
			}
			continue
		}
		if start != end {
			t.Errorf("empty cell %d: run = (%d, %d), want empty", key, start, end)
		}
	}
}

func TestLookupRebuildIsIdempotent(t *testing.T) {
	g := newGrid(0.1, 10, 10, 10)
	p := newPool()
	defer p.stop()

	rng := rand.New(rand.NewSource(5))
	positions := make([]Vec3, 300)
	for i := range positions {
		positions[i] = Vec3{rng.Float32(), rng.Float32(), rng.Float32()}
	}

	l := newSpatialLookup(p, g, len(positions))
	l.build(positions)

	keys := append([]uint32(nil), l.keys...)
	vals := append([]uint32(nil), l.vals...)
	index := append([]uint32(nil), l.index...)

	l.build(positions)

	for i := range keys {
		if l.keys[i] != keys[i] || l.vals[i] != vals[i] {
			t.Fatalf("sorted arrays changed on rebuild at %d", i)
		}
	}
	for i := range index {
		if l.index[i] != index[i] {
			t.Fatalf("lookup index changed on rebuild at cell %d", i)
		}
	}
}
