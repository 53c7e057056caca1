package sweep

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/katalvlaran/hydroflow/core"
	"github.com/katalvlaran/hydroflow/geometry"
)

// ActiveOrder holds the segments crossing the sweep line, index 0 on top.
type ActiveOrder struct {
	k    geometry.Kernel
	list []*core.Segment
}

// NewActiveOrder returns an empty order comparing with k.
func NewActiveOrder(k geometry.Kernel) *ActiveOrder {
	return &ActiveOrder{k: k}
}

// Len returns the number of live segments.
func (o *ActiveOrder) Len() int { return len(o.list) }

// Segments returns a snapshot, top to bottom.
func (o *ActiveOrder) Segments() []*core.Segment {
	out := make([]*core.Segment, len(o.list))
	copy(out, o.list)

	return out
}

// At returns the segment at index i, or nil when out of range.
func (o *ActiveOrder) At(i int) *core.Segment {
	if i < 0 || i >= len(o.list) {
		return nil
	}
	return o.list[i]
}

// Insert places seg at its slot for sweep coordinate x and returns the index.
// The slot is found by binary search first, then filled with one bounded move.
func (o *ActiveOrder) Insert(x decimal.Decimal, seg *core.Segment) int {
	i := sort.Search(len(o.list), func(i int) bool {
		return o.ComparePosition(x, seg, o.list[i]) > 0
	})
	o.list = append(o.list, nil)
	copy(o.list[i+1:], o.list[i:])
	o.list[i] = seg

	return i
}

// Delete removes the segment at index i. Out-of-range indexes are ignored.
func (o *ActiveOrder) Delete(i int) {
	if i < 0 || i >= len(o.list) {
		return
	}
	o.list = append(o.list[:i], o.list[i+1:]...)
}

// Swap exchanges the segments at i and j when both are in range.
func (o *ActiveOrder) Swap(i, j int) {
	if i < 0 || j < 0 || i >= len(o.list) || j >= len(o.list) {
		return
	}
	o.list[i], o.list[j] = o.list[j], o.list[i]
}

// Reorder sorts the run of segments around index i that pass through p into
// their order just right of p and returns the bounds of the run. Larger
// slope goes on top; identity breaks ties the way ComparePosition does.
//
// A crossing of more than two segments at one point is a single reorder, not
// a sequence of pairwise swaps between slots that may not be adjacent.
func (o *ActiveOrder) Reorder(p core.Vertex, i int) (lo, hi int) {
	if i < 0 || i >= len(o.list) {
		return -1, -1
	}
	through := func(j int) bool {
		q := o.k.RelativePoint(p.X, o.list[j])
		return o.k.EqualCoord(q.Y, p.Y)
	}

	// 1. Widen to every neighbour at the same height
	lo, hi = i, i
	for lo > 0 && through(lo-1) {
		lo--
	}
	for hi < len(o.list)-1 && through(hi+1) {
		hi++
	}

	// 2. Insertion sort; runs are a handful of segments
	for a := lo + 1; a <= hi; a++ {
		for b := a; b > lo && o.leaving(o.list[b], o.list[b-1]) > 0; b-- {
			o.Swap(b, b-1)
		}
	}

	return lo, hi
}

// leaving returns 1 when first leaves a shared point above second.
func (o *ActiveOrder) leaving(first, second *core.Segment) int {
	if c := o.k.CompareAngles(first, second); c != 0 {
		return c
	}
	return first.Compare(second)
}

// Above returns the segment directly above index i, or nil.
func (o *ActiveOrder) Above(i int) *core.Segment { return o.At(i - 1) }

// Below returns the segment directly below index i, or nil.
func (o *ActiveOrder) Below(i int) *core.Segment {
	if i < 0 {
		return nil
	}
	return o.At(i + 1)
}

// Locate returns the current index of seg at sweep coordinate x, or -1.
//
// The binary search can miss when tolerance makes neighbours compare equal
// or when an intersection has not been reordered yet; a linear scan covers
// those cases.
func (o *ActiveOrder) Locate(x decimal.Decimal, seg *core.Segment) int {
	lo, hi := 0, len(o.list)-1
	for lo <= hi {
		mid := int(uint(lo+hi) >> 1)
		if o.list[mid] == seg {
			return mid
		}
		if o.ComparePosition(x, seg, o.list[mid]) < 0 {
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return o.IndexOf(seg)
}

// IndexOf finds seg by a linear scan, or returns -1.
func (o *ActiveOrder) IndexOf(seg *core.Segment) int {
	for i, s := range o.list {
		if s == seg {
			return i
		}
	}
	return -1
}

// ComparePosition returns 1 when first lies above second at sweep coordinate
// x, -1 when below, 0 only for the same segment.
func (o *ActiveOrder) ComparePosition(x decimal.Decimal, first, second *core.Segment) int {
	if first == second {
		return 0
	}
	k := o.k

	pf := k.RelativePoint(x, first)
	ps := k.RelativePoint(x, second)
	if c := k.Compare(pf.Y, ps.Y); c != 0 {
		return c
	}

	// 1. Degenerate segments
	if k.IsPoint(first) || k.IsPoint(second) {
		return first.Compare(second)
	}

	fStart, fEnd := k.Equal(&pf, first.A), k.Equal(&pf, first.B)
	sStart, sEnd := k.Equal(&ps, second.A), k.Equal(&ps, second.B)
	fInner := !fStart && !fEnd
	sInner := !sStart && !sEnd

	switch {
	// 2. One enters where the other exits
	case (fStart && sEnd) || (fEnd && sStart):
		if c := k.Compare(first.A.Y, second.A.Y); c != 0 {
			return c
		}
		if c := k.CompareAngles(first, second); c != 0 {
			return c
		}
		if c := k.Compare(first.A.X, second.A.X); c != 0 {
			return c
		}

	// 3. Ending here: walk back to where both exist
	case (fEnd && sInner) || (sEnd && fInner) || (fEnd && sEnd):
		x0 := decimal.Max(first.A.X, second.A.X)
		if k.SmallerThan(x0, x) {
			return o.ComparePosition(x0, first, second)
		}
		if c := k.CompareAngles(second, first); c != 0 {
			return c
		}

	// 4. Crossing
	case fInner && sInner:
		if c := k.CompareAngles(second, first); c != 0 {
			return c
		}

	// 5. Starting here, or starting on the other's interior
	default:
		if c := k.CompareAngles(first, second); c != 0 {
			return c
		}
	}

	return first.Compare(second)
}
