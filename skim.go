// Package skim virtualizes large scrolling lists. It decides which slice of
// the list must exist at any moment, where each item sits, and how to
// compensate scroll position so that late size measurements and list
// mutations never produce a visible jump.
package skim

// SubpixelThreshold is the slack allowed when deciding whether the viewport
// sits at the very end of the content. Fractional device pixel ratios leave
// scroll positions up to ~1.5 units short of the true maximum.
const SubpixelThreshold = 1.5

// Uncached marks an item size that has not been measured yet, or a prefix
// sum that has not been computed. Valid sizes are non-negative, so -1 can
// never collide with a real measurement.
const Uncached = -1

// itemRange is an inclusive index interval. start > end means empty.
type itemRange struct {
	start, end int
}

func (r itemRange) union(o itemRange) itemRange {
	return itemRange{min(r.start, o.start), max(r.end, o.end)}
}
