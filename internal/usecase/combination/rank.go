package combination

import (
	"container/heap"
	"sort"

	domcomb "github.com/kailas-cloud/billmatch/internal/domain/combination"
)

// candidate is a recorded combination plus the input indices it was built from.
type candidate struct {
	comb    domcomb.Combination
	indices []int
}

// better orders candidates best first: smaller absolute difference, fewer items,
// smaller total, then the lexicographically smaller index sequence.
func better(a, b *candidate) bool {
	da, db := a.comb.AbsoluteDifference(), b.comb.AbsoluteDifference()
	if da != db {
		return da < db
	}
	if len(a.indices) != len(b.indices) {
		return len(a.indices) < len(b.indices)
	}
	if ta, tb := a.comb.TotalAmount(), b.comb.TotalAmount(); ta != tb {
		return ta < tb
	}
	for i := range a.indices {
		if a.indices[i] != b.indices[i] {
			return a.indices[i] < b.indices[i]
		}
	}
	return false
}

// collector accumulates qualifying candidates, keeping the best limit when limit > 0.
type collector struct {
	limit   int
	items   worstFirst
	dropped bool
}

func newCollector(limit int) *collector {
	return &collector{limit: limit}
}

func (c *collector) add(cand *candidate) {
	if c.limit <= 0 {
		c.items = append(c.items, cand)
		return
	}
	if len(c.items) < c.limit {
		heap.Push(&c.items, cand)
		return
	}
	c.dropped = true
	if better(cand, c.items[0]) {
		c.items[0] = cand
		heap.Fix(&c.items, 0)
	}
}

// ranked returns the kept combinations best first.
func (c *collector) ranked() []domcomb.Combination {
	sort.Slice(c.items, func(i, j int) bool { return better(c.items[i], c.items[j]) })
	out := make([]domcomb.Combination, len(c.items))
	for i, cand := range c.items {
		out[i] = cand.comb
	}
	return out
}

// worstFirst is a max-heap by rank: the root is the worst kept candidate.
type worstFirst []*candidate

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return better(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *worstFirst) Push(x any) { *h = append(*h, x.(*candidate)) }

func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
