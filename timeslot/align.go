package timeslot

import (
	"maps"
	"slices"
)

// Missing marks an aligned position a source has no entry for
const Missing = -1

// Alignment is the sorted union of keys across several sources. Index[s][i] is the position
// of Keys[i] in source s, or Missing.
type Alignment[K comparable] struct {
	Keys  []K
	Index [][]int

	pos map[K]int
}

// AlignFunc unions the keys of every source ordered by cmp. A key repeated within one source
// keeps its first position.
func AlignFunc[K comparable](cmp func(a, b K) int, sources ...[]K) *Alignment[K] {
	seen := make(map[K]struct{})
	for _, src := range sources {
		for _, k := range src {
			seen[k] = struct{}{}
		}
	}
	keys := slices.SortedFunc(maps.Keys(seen), cmp)

	pos := make(map[K]int, len(keys))
	for i, k := range keys {
		pos[k] = i
	}

	index := make([][]int, len(sources))
	for s, src := range sources {
		idx := make([]int, len(keys))
		for i := range idx {
			idx[i] = Missing
		}
		for j, k := range src {
			if p := pos[k]; idx[p] == Missing {
				idx[p] = j
			}
		}
		index[s] = idx
	}

	return &Alignment[K]{
		Keys:  keys,
		Index: index,
		pos:   pos,
	}
}

// Align unions plain slot keys by time of day
func Align(sources ...[]Key) *Alignment[Key] {
	return AlignFunc(Key.Compare, sources...)
}

// Len returns the number of aligned keys
func (a *Alignment[K]) Len() int {
	return len(a.Keys)
}

// Position returns where k sits in the aligned keys
func (a *Alignment[K]) Position(k K) (int, bool) {
	p, exists := a.pos[k]
	return p, exists
}

// Present counts the aligned positions source s has an entry for
func (a *Alignment[K]) Present(s int) int {
	var cnt int
	for _, j := range a.Index[s] {
		if j != Missing {
			cnt++
		}
	}
	return cnt
}

// Shared counts the aligned positions every source has an entry for
func (a *Alignment[K]) Shared() int {
	var cnt int
	for i := range a.Keys {
		all := true
		for s := range a.Index {
			if a.Index[s][i] == Missing {
				all = false
				break
			}
		}
		if all {
			cnt++
		}
	}
	return cnt
}

// SortedKeys returns the keys of a slot map ordered by time of day
func SortedKeys[V any](m map[Key]V) []Key {
	return slices.SortedFunc(maps.Keys(m), Key.Compare)
}
