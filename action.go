package skim

// Action is a state transition submitted to a Store through Dispatch. The
// concrete types below are the complete taxonomy; anything the outside
// world wants the store to know arrives as one of these.
type Action interface {
	isAction()
}

// SizeUpdate carries one measured item size.
type SizeUpdate struct {
	Index int
	Size  float64
}

// ItemResize absorbs layout measurements reported by the renderer. May
// schedule a scroll compensation jump to keep the user's anchor in place.
type ItemResize struct {
	Resizes []SizeUpdate
}

// ViewportResize updates viewport geometry. Size is the total extent along
// the scroll axis, spacers included.
type ViewportResize struct {
	Size        float64
	StartSpacer float64
	EndSpacer   float64
}

// LengthChange applies a list mutation. When Shift is set the delta applies
// at the start of the list and scroll position is compensated so existing
// content holds still.
type LengthChange struct {
	Length int
	Shift  bool
}

// Scroll reports a scroll position observed on the container.
type Scroll struct {
	Offset float64
}

// ScrollEnd signals that scrolling has settled. Emitted by a container-side
// quiescence detector, not by the store itself.
type ScrollEnd struct{}

// ManualScroll marks the beginning of a programmatic scroll, so the
// resulting synthetic scroll event does not register as a user gesture.
type ManualScroll struct{}

// BeforeSmoothScroll pre-commits the target range of a smooth programmatic
// scroll so items along the way stay mounted during the animation.
type BeforeSmoothScroll struct {
	Target float64
}

func (ItemResize) isAction()         {}
func (ViewportResize) isAction()     {}
func (LengthChange) isAction()       {}
func (Scroll) isAction()             {}
func (ScrollEnd) isAction()          {}
func (ManualScroll) isAction()       {}
func (BeforeSmoothScroll) isAction() {}
