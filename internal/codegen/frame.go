package codegen

import (
	"github.com/funvibe/loom/internal/config"
	"github.com/funvibe/loom/internal/descriptors"
)

// FrameMap assigns local-variable slots for one method entry. Indices are
// monotonically increasing, sized by representation width, and never
// reused; the map lives for a single generation call and is discarded.
type FrameMap struct {
	next      int
	params    map[*descriptors.ValueParameter]int
	witnesses map[*descriptors.TypeParameter]int
}

// NewFrameMap creates an empty frame.
func NewFrameMap() *FrameMap {
	return &FrameMap{
		params:    make(map[*descriptors.ValueParameter]int),
		witnesses: make(map[*descriptors.TypeParameter]int),
	}
}

func (f *FrameMap) enter(width int) int {
	slot := f.next
	f.next += width
	if f.next > config.MaxLocalSlots {
		panic("too many local variables in method")
	}
	return slot
}

// EnterThis reserves slot 0 for the receiver object. It must be the first
// allocation in the frame.
func (f *FrameMap) EnterThis() int {
	if f.next != 0 {
		panic("this must occupy slot 0")
	}
	return f.enter(1)
}

// EnterTemp reserves an anonymous slot of the given width.
func (f *FrameMap) EnterTemp(width int) int {
	return f.enter(width)
}

// EnterParam reserves a slot for a value parameter.
func (f *FrameMap) EnterParam(p *descriptors.ValueParameter, width int) int {
	slot := f.enter(width)
	f.params[p] = slot
	return slot
}

// EnterWitness reserves the slot holding a type parameter's witness.
func (f *FrameMap) EnterWitness(tp *descriptors.TypeParameter) int {
	slot := f.enter(1)
	f.witnesses[tp] = slot
	return slot
}

// Index returns the slot of a value parameter.
func (f *FrameMap) Index(p *descriptors.ValueParameter) (int, bool) {
	slot, ok := f.params[p]
	return slot, ok
}

// WitnessSlot returns the slot of a type parameter's witness.
func (f *FrameMap) WitnessSlot(tp *descriptors.TypeParameter) (int, bool) {
	slot, ok := f.witnesses[tp]
	return slot, ok
}

// Size returns the total number of slots allocated so far.
func (f *FrameMap) Size() int {
	return f.next
}
