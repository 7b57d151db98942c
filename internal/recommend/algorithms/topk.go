// Marquee - Trust-Weighted Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package algorithms

import (
	"container/heap"
	"sort"
)

// hit is a scored row position.
type hit struct {
	pos   int
	score float64
}

// better reports whether a ranks before b: higher score first, then lower position.
func better(a, b hit) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.pos < b.pos
}

// hitHeap is a min-heap whose root is the worst retained hit.
type hitHeap []hit

func (h hitHeap) Len() int           { return len(h) }
func (h hitHeap) Less(i, j int) bool { return better(h[j], h[i]) }
func (h hitHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *hitHeap) Push(x any)        { *h = append(*h, x.(hit)) }
func (h *hitHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topK keeps the k best hits seen so far in O(n log k).
type topK struct {
	k int
	h hitHeap
}

func newTopK(k int) *topK {
	return &topK{k: k, h: make(hitHeap, 0, k)}
}

// offer considers one scored position.
func (t *topK) offer(pos int, score float64) {
	candidate := hit{pos: pos, score: score}
	if len(t.h) < t.k {
		heap.Push(&t.h, candidate)
		return
	}
	if better(candidate, t.h[0]) {
		t.h[0] = candidate
		heap.Fix(&t.h, 0)
	}
}

// sorted returns the retained hits, best first.
func (t *topK) sorted() []hit {
	out := make([]hit, len(t.h))
	copy(out, t.h)
	sort.Slice(out, func(i, j int) bool { return better(out[i], out[j]) })
	return out
}
