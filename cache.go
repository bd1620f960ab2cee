package skim

// cache holds per-item sizes and lazily computed prefix sums. Items start
// unmeasured and fall back to defaultSize for all offset math until a real
// measurement arrives. The cache is owned by a single Store; readers go
// through Store accessors.
type cache struct {
	sizes []float64 // Uncached where unmeasured

	// offsets[i] is the sum of effective sizes of items 0..i-1. Entries up
	// to frontier are valid; everything above is stale and recomputed on
	// demand. offsets has len(sizes)+1 entries so offsets[len] is the total.
	offsets  []float64
	frontier int

	defaultSize float64
	estimated   bool // estimateDefaultSize already ran
}

// CacheSnapshot is a serializable copy of the measurement cache, suitable
// for persisting scroll state across sessions. Offsets are advisory: a
// consumer restoring from a snapshot recomputes them from Sizes.
type CacheSnapshot struct {
	Sizes       []float64 `json:"sizes"`
	Offsets     []float64 `json:"offsets"`
	DefaultSize float64   `json:"defaultSize"`
	Length      int       `json:"length"`
}

// newCache builds a cache of the given length with every item unmeasured.
// A snapshot, if provided, seeds sizes and the default size; the requested
// length wins over the snapshot's, extra entries stay unmeasured.
func newCache(length int, defaultSize float64, snap *CacheSnapshot) *cache {
	c := &cache{
		sizes:       make([]float64, length),
		offsets:     make([]float64, length+1),
		defaultSize: defaultSize,
	}
	for i := range c.sizes {
		c.sizes[i] = Uncached
	}
	if snap != nil {
		if snap.DefaultSize > 0 {
			c.defaultSize = snap.DefaultSize
		}
		copy(c.sizes, snap.Sizes)
	}
	return c
}

func (c *cache) len() int {
	return len(c.sizes)
}

// itemSize returns the measured size of item i, or the default size while
// it is unmeasured.
func (c *cache) itemSize(i int) float64 {
	if s := c.sizes[i]; s != Uncached {
		return s
	}
	return c.defaultSize
}

func (c *cache) unmeasured(i int) bool {
	return c.sizes[i] == Uncached
}

// setItemSize records a measurement for item i. Returns true if the slot
// was previously unmeasured. Writing the current measured size again is a
// no-op. Prefix sums above i go stale and are recomputed lazily.
func (c *cache) setItemSize(i int, size float64) bool {
	first := c.sizes[i] == Uncached
	if !first && c.sizes[i] == size {
		return false
	}
	changed := c.itemSize(i) != size
	c.sizes[i] = size
	if changed && i < c.frontier {
		c.frontier = i
	}
	return first
}

// offset returns the sum of effective sizes of items 0..i-1, walking
// forward from the last valid prefix and caching everything on the way.
func (c *cache) offset(i int) float64 {
	if i <= 0 {
		return 0
	}
	if i > len(c.sizes) {
		i = len(c.sizes)
	}
	if c.frontier < i {
		o := c.offsets[c.frontier]
		for j := c.frontier; j < i; j++ {
			o += c.itemSize(j)
			c.offsets[j+1] = o
		}
		c.frontier = i
	}
	return c.offsets[i]
}

func (c *cache) totalSize() float64 {
	return c.offset(len(c.sizes))
}

// visibleRange returns the inclusive index range intersecting the window
// [scrollOffset, scrollOffset+viewportSize). The walk starts at seed, so a
// monotone scroll costs O(items scrolled past) rather than a full search.
// A zero-size item sitting exactly at scrollOffset is included.
func (c *cache) visibleRange(scrollOffset float64, seed int, viewportSize float64) itemRange {
	n := len(c.sizes)
	if n == 0 {
		return itemRange{0, -1}
	}

	// covers reports whether item i reaches the window start.
	covers := func(i int) bool {
		if c.offset(i+1) > scrollOffset {
			return true
		}
		return c.itemSize(i) == 0 && c.offset(i) >= scrollOffset
	}

	i := min(max(seed, 0), n-1)
	for i > 0 && covers(i-1) {
		i--
	}
	for i < n-1 && !covers(i) {
		i++
	}

	end := i
	windowEnd := scrollOffset + viewportSize
	for end < n-1 && c.offset(end+1) < windowEnd {
		end++
	}
	return itemRange{i, end}
}

// updateLength grows or shrinks the cache. When shift is set the delta is
// applied at the start of the index space, otherwise at the end. Returns
// the absolute amount of content added or removed ahead of the remaining
// items (using effective sizes) and whether items were removed.
func (c *cache) updateLength(newLength int, shift bool) (float64, bool) {
	old := len(c.sizes)
	if newLength == old {
		return 0, false
	}

	if newLength < old {
		var amount float64
		if shift {
			removed := old - newLength
			for i := 0; i < removed; i++ {
				amount += c.itemSize(i)
			}
			c.sizes = append(c.sizes[:0], c.sizes[removed:]...)
			c.frontier = 0
		} else {
			c.sizes = c.sizes[:newLength]
			c.frontier = min(c.frontier, newLength)
		}
		c.offsets = c.offsets[:newLength+1]
		return amount, true
	}

	added := newLength - old
	sizes := make([]float64, newLength)
	offsets := make([]float64, newLength+1)
	if shift {
		for i := 0; i < added; i++ {
			sizes[i] = Uncached
		}
		copy(sizes[added:], c.sizes)
		c.frontier = 0
	} else {
		copy(sizes, c.sizes)
		for i := old; i < newLength; i++ {
			sizes[i] = Uncached
		}
		copy(offsets, c.offsets[:c.frontier+1])
	}
	c.sizes = sizes
	c.offsets = offsets
	if shift {
		return float64(added) * c.defaultSize, false
	}
	return 0, false
}

// estimateDefaultSize replaces the default size with the average of the
// measurements collected so far. Runs at most once per cache lifetime; all
// prefix sums are recomputed against the new default.
func (c *cache) estimateDefaultSize() {
	if c.estimated {
		return
	}
	c.estimated = true

	var sum float64
	var measured int
	for _, s := range c.sizes {
		if s != Uncached {
			sum += s
			measured++
		}
	}
	if measured == 0 {
		return
	}
	c.defaultSize = sum / float64(measured)
	c.frontier = 0
}

// snapshot returns a deep, serializable copy of the cache.
func (c *cache) snapshot() *CacheSnapshot {
	sizes := make([]float64, len(c.sizes))
	copy(sizes, c.sizes)
	offsets := make([]float64, len(c.sizes))
	for i := range offsets {
		if i <= c.frontier {
			offsets[i] = c.offsets[i]
		} else {
			offsets[i] = Uncached
		}
	}
	return &CacheSnapshot{
		Sizes:       sizes,
		Offsets:     offsets,
		DefaultSize: c.defaultSize,
		Length:      len(c.sizes),
	}
}
