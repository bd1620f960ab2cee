package skim

import "math"

// ScrollDirection reports which way the user is currently scrolling.
type ScrollDirection int

const (
	ScrollIdle ScrollDirection = iota
	ScrollUp
	ScrollDown
)

func (d ScrollDirection) String() string {
	switch d {
	case ScrollUp:
		return "up"
	case ScrollDown:
		return "down"
	default:
		return "idle"
	}
}

// StateFlag selects which state transitions a subscriber is notified about.
// Flags combine with |.
type StateFlag uint8

const (
	// UpdateScrollState fires on scroll position, direction, and
	// length-shift transitions.
	UpdateScrollState StateFlag = 1 << iota
	// UpdateSizeState fires on item and viewport size transitions.
	UpdateSizeState
	// UpdateScrollEvent fires only for scroll positions that arrived from a
	// real container scroll event.
	UpdateScrollEvent
)

type subscriber struct {
	interest StateFlag
	fn       func(sync bool)
}

// Store arbitrates between user scroll events, layout measurements, and
// list mutations, and owns every piece of state they contend over. All
// writes funnel through Dispatch; everything else is read-only queries.
//
// The store is single-threaded and cooperative: Dispatch is not re-entrant,
// and subscriber callbacks must not dispatch further actions.
type Store struct {
	cache *cache

	viewportSize float64 // total extent, spacers included
	startSpacer  float64
	endSpacer    float64

	scrollOffset float64
	direction    ScrollDirection

	jump        float64 // compensation ready for the next flush
	pendingJump float64 // deferred while momentum scrolling is active
	flushedJump float64 // last delivered jump; identifies its echo event
	jumpCount   int

	prepended       bool
	manualScrolling bool
	smoothRange     *itemRange
	prevRange       itemRange

	reverse      bool
	autoEstimate bool
	deferJumps   bool

	subscribers []subscriber
}

type storeConfig struct {
	initialItemCount int
	snapshot         *CacheSnapshot
	reverse          bool
	autoEstimate     bool
	deferJumps       bool
}

// Option configures a Store at creation time.
type Option func(*storeConfig)

// WithInitialItemCount seeds the viewport size estimate with the number of
// items expected to fit, reducing churn before the first real resize.
func WithInitialItemCount(n int) Option {
	return func(c *storeConfig) { c.initialItemCount = n }
}

// WithSnapshot restores item sizes from a previously persisted snapshot.
func WithSnapshot(snap *CacheSnapshot) Option {
	return func(c *storeConfig) { c.snapshot = snap }
}

// WithReverse anchors layout to the end of the viewport, so short content
// hugs the bottom instead of the top.
func WithReverse() Option {
	return func(c *storeConfig) { c.reverse = true }
}

// WithAutoEstimate re-estimates the default item size once from real
// measurements. Only fires while the viewport sits at offset zero, so users
// already scrolled into content never see the reflow.
func WithAutoEstimate() Option {
	return func(c *storeConfig) { c.autoEstimate = true }
}

// WithJumpDeferral queues scroll compensations while scrolling is in
// progress and delivers them on ScrollEnd. For platforms (iOS WebKit) that
// kill momentum scrolling when scroll position is written mid-gesture.
func WithJumpDeferral() Option {
	return func(c *storeConfig) { c.deferJumps = true }
}

// NewStore creates a store for length items with the given estimated item
// size. The estimate anchors all layout math until items are measured.
func NewStore(length int, itemSize float64, opts ...Option) *Store {
	var cfg storeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Store{
		cache:        newCache(length, itemSize, cfg.snapshot),
		reverse:      cfg.reverse,
		autoEstimate: cfg.autoEstimate,
		deferJumps:   cfg.deferJumps,
	}
	s.viewportSize = s.cache.defaultSize * float64(cfg.initialItemCount)
	s.prevRange = itemRange{0, min(max(cfg.initialItemCount, 1), max(length, 1)) - 1}
	if length == 0 {
		s.prevRange = itemRange{0, -1}
	}
	return s
}

// innerViewport is the viewport extent available to content, with the
// non-scrollable spacers taken out.
func (s *Store) innerViewport() float64 {
	return s.viewportSize - s.startSpacer - s.endSpacer
}

// ItemsLength returns the current item count.
func (s *Store) ItemsLength() int {
	return s.cache.len()
}

// ItemSize returns the measured size of item i, or the default size while
// it is unmeasured.
func (s *Store) ItemSize(i int) float64 {
	if i < 0 || i >= s.cache.len() {
		return 0
	}
	return s.cache.itemSize(i)
}

// IsUnmeasuredItem reports whether item i has no real measurement yet.
func (s *Store) IsUnmeasuredItem(i int) bool {
	return i >= 0 && i < s.cache.len() && s.cache.unmeasured(i)
}

// HasUnmeasuredItemsInSmoothScrollRange reports whether any item in or
// directly adjacent to the committed smooth-scroll range is unmeasured.
// The one-item padding covers boundary items whose measurement would shift
// the target.
func (s *Store) HasUnmeasuredItemsInSmoothScrollRange() bool {
	if s.smoothRange == nil {
		return false
	}
	lo := max(s.smoothRange.start-1, 0)
	hi := min(s.smoothRange.end+1, s.cache.len()-1)
	for i := lo; i <= hi; i++ {
		if s.cache.unmeasured(i) {
			return true
		}
	}
	return false
}

// ItemOffset returns the position of item i relative to the start of the
// content, adjusted for any jump still waiting to be delivered. In reverse
// mode short content is pushed to the end of the viewport.
func (s *Store) ItemOffset(i int) float64 {
	off := s.cache.offset(i) - s.pendingJump
	if s.reverse {
		off += max(0, s.viewportSize-s.cache.totalSize())
	}
	return off
}

// TotalSize returns the summed effective size of all items.
func (s *Store) TotalSize() float64 {
	return s.cache.totalSize()
}

// ScrollSize returns the extent the container scrolls over: the content, or
// the viewport's content area when the content is shorter.
func (s *Store) ScrollSize() float64 {
	return max(s.cache.totalSize(), s.innerViewport())
}

// MaxScrollOffset returns the largest reachable scroll offset.
func (s *Store) MaxScrollOffset() float64 {
	return s.ScrollSize() - s.innerViewport()
}

// ScrollOffset returns the last observed scroll position.
func (s *Store) ScrollOffset() float64 {
	return s.scrollOffset
}

// ScrollDirection returns which way the user is scrolling, or ScrollIdle.
func (s *Store) ScrollDirection() ScrollDirection {
	return s.direction
}

// ViewportSize returns the total viewport extent, spacers included.
func (s *Store) ViewportSize() float64 {
	return s.viewportSize
}

// StartSpacerSize returns the non-scrollable padding ahead of the content.
func (s *Store) StartSpacerSize() float64 {
	return s.startSpacer
}

// JumpCount returns a generation counter that increments every time a
// scroll compensation becomes deliverable. Renderers watch it to know a
// FlushJump is due.
func (s *Store) JumpCount() int {
	return s.jumpCount
}

// VisibleRange returns the inclusive index range the renderer must
// materialize. During a smooth programmatic scroll this is the union of the
// current window and the committed target range, so nothing unmounts
// mid-animation. While a delivered jump has not been consumed by its echo
// scroll event the previous range is returned unchanged.
func (s *Store) VisibleRange() (start, end int) {
	if s.flushedJump != 0 {
		return s.prevRange.start, s.prevRange.end
	}
	r := s.cache.visibleRange(s.scrollOffset, s.prevRange.start, s.innerViewport())
	s.prevRange = r
	if s.smoothRange != nil {
		r = r.union(*s.smoothRange)
	}
	return r.start, r.end
}

// FlushJump returns the accumulated scroll compensation and clears it. The
// renderer adds the returned value to the container's scroll position on
// its next commit. If the content cannot scroll the compensation is
// dropped.
func (s *Store) FlushJump() float64 {
	j := s.jump
	s.jump = 0
	if j == 0 {
		return 0
	}
	if s.viewportSize > s.cache.totalSize() {
		s.flushedJump = 0
		return 0
	}
	s.flushedJump = j
	return j
}

// Snapshot returns a deep, serializable copy of the size cache. Feed it to
// WithSnapshot to restore measurements in a later session.
func (s *Store) Snapshot() *CacheSnapshot {
	return s.cache.snapshot()
}

// Subscribe registers fn for state transitions matching interest. Callbacks
// run synchronously inside Dispatch after the state has been committed; the
// sync argument hints that the renderer should flush immediately rather
// than batch. Returns an unsubscribe function.
func (s *Store) Subscribe(interest StateFlag, fn func(sync bool)) func() {
	s.subscribers = append(s.subscribers, subscriber{interest, fn})
	idx := len(s.subscribers) - 1
	return func() {
		// Zero out to allow GC, don't reorder
		s.subscribers[idx].fn = nil
	}
}

// Dispatch applies an action and notifies interested subscribers. Actions
// are applied strictly in submission order.
func (s *Store) Dispatch(a Action) {
	var mutated StateFlag
	var sync bool
	var flushPending bool

	switch a := a.(type) {
	case ItemResize:
		if len(a.Resizes) == 0 {
			return
		}
		diff := s.calculateJump(a.Resizes)
		newMeasurement := false
		for _, u := range a.Resizes {
			if u.Index < 0 || u.Index >= s.cache.len() {
				continue
			}
			if s.cache.setItemSize(u.Index, u.Size) {
				newMeasurement = true
			}
		}
		if diff != 0 {
			s.applyJump(diff)
		}
		if s.autoEstimate && newMeasurement && s.scrollOffset == 0 {
			s.cache.estimateDefaultSize()
		}
		s.prepended = false
		mutated = UpdateSizeState
		sync = true

	case ViewportResize:
		if a.Size != s.viewportSize {
			s.viewportSize = a.Size
			s.startSpacer = a.StartSpacer
			s.endSpacer = a.EndSpacer
			mutated = UpdateSizeState
		}

	case LengthChange:
		if a.Length == s.cache.len() {
			return
		}
		if a.Shift {
			distanceToEnd := s.MaxScrollOffset() - s.scrollOffset
			amount, removed := s.cache.updateLength(a.Length, true)
			if removed {
				// Removing from the front pulls content toward zero; never
				// compensate past what the user could actually scroll back.
				s.applyJump(-min(amount, distanceToEnd))
			} else {
				s.applyJump(amount)
			}
			s.prepended = !removed
			mutated = UpdateScrollState
		} else {
			s.cache.updateLength(a.Length, false)
		}

	case Scroll:
		next := min(max(a.Offset, 0), s.MaxScrollOffset())
		flushed := s.flushedJump
		s.flushedJump = 0
		if next == s.scrollOffset {
			return
		}
		delta := next - s.scrollOffset
		distance := math.Abs(delta)

		// The scroll write that delivered the last jump echoes back as an
		// ordinary scroll event; recognize it by distance so it cannot flip
		// the perceived direction. One unit of sub-pixel slop.
		justJumped := flushed != 0 && distance < math.Abs(flushed)+1
		if !justJumped && !s.manualScrolling {
			if delta < 0 {
				s.direction = ScrollUp
			} else {
				s.direction = ScrollDown
			}
		}
		sync = distance > s.viewportSize
		s.scrollOffset = next
		mutated = UpdateScrollState | UpdateScrollEvent

	case ScrollEnd:
		if s.direction != ScrollIdle {
			s.direction = ScrollIdle
			flushPending = true
		}
		s.manualScrolling = false
		s.smoothRange = nil
		mutated = UpdateScrollState

	case ManualScroll:
		s.manualScrolling = true

	case BeforeSmoothScroll:
		target := min(max(a.Target, 0), s.MaxScrollOffset())
		r := s.cache.visibleRange(target, s.prevRange.start, s.innerViewport())
		s.smoothRange = &r
		mutated = UpdateScrollState
	}

	if mutated == 0 {
		return
	}
	if flushPending && s.pendingJump != 0 {
		s.jump += s.pendingJump
		s.pendingJump = 0
		s.jumpCount++
	}
	s.notify(mutated, sync)
}

// calculateJump derives the scroll compensation for a batch of size
// updates, picking the anchor the user would expect to hold still.
func (s *Store) calculateJump(updates []SizeUpdate) float64 {
	if s.scrollOffset == 0 {
		// Anchored at the very start; content below grows downward.
		return 0
	}
	atEnd := s.scrollOffset > s.MaxScrollOffset()-SubpixelThreshold
	var diff float64
	for _, u := range updates {
		if u.Index < 0 || u.Index >= s.cache.len() {
			continue
		}
		d := u.Size - s.cache.itemSize(u.Index)
		switch {
		case atEnd:
			// Keep the bottom aligned: growth pushes the view down with the
			// content, shrinkage must not drag the user up.
			if d > 0 {
				diff += d
			}
		case s.prepended:
			// Fresh prepend: every update is assumed to sit above the view.
			diff += d
		case u.Index < s.prevRange.start:
			diff += d
		}
	}
	return diff
}

// applyJump accumulates a compensation, deferring it while a momentum
// scroll is in flight on platforms that cannot take scroll writes
// mid-gesture.
func (s *Store) applyJump(diff float64) {
	if diff == 0 {
		return
	}
	if s.deferJumps && s.direction != ScrollIdle {
		s.pendingJump += diff
		return
	}
	s.jump += diff
	s.jumpCount++
}

func (s *Store) notify(mutated StateFlag, sync bool) {
	for _, sub := range s.subscribers {
		if sub.fn != nil && sub.interest&mutated != 0 {
			sub.fn(sync)
		}
	}
}
