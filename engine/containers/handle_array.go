package containers

import (
	"errors"
	"fmt"
)

var ErrInvalidHandle = errors.New("invalid handle")

// Handle identifies a live slot in a HandleArray. Zero is never issued.
//
// Layout: bits 0..19 hold slot index + 1, bits 20..30 hold the slot
// generation. Bit 31 is always clear so handles stay non-negative when
// passed around as int32.
type Handle uint32

const (
	handleIndexBits = 20
	handleIndexMask = 1<<handleIndexBits - 1
	handleGenBits   = 11
	handleGenMask   = 1<<handleGenBits - 1

	// Upper bound on the number of live slots in one array.
	MaxHandleSlots = handleIndexMask
)

const InvalidHandle Handle = 0

func makeHandle(index int, gen uint16) Handle {
	return Handle(uint32(gen)<<handleIndexBits | uint32(index+1))
}

func (h Handle) index() int {
	return int(uint32(h)&handleIndexMask) - 1
}

func (h Handle) generation() uint16 {
	return uint16(uint32(h) >> handleIndexBits & handleGenMask)
}

func (h Handle) String() string {
	if h == InvalidHandle {
		return "handle(none)"
	}
	return fmt.Sprintf("handle(%d#%d)", h.index(), h.generation())
}

type slot[T any] struct {
	value      T
	generation uint16
	live       bool
	// Retired slots are invisible to Get but stay allocated until the last
	// reference is released.
	retired bool
	refs    int
}

// HandleArray is a slot arena addressed by generational handles. A handle
// becomes stale the moment its slot is freed, even if the slot is reused.
// It is not safe for concurrent use.
type HandleArray[T any] struct {
	slots []slot[T]
	free  []int
	count int
}

func NewHandleArray[T any](reserve int) *HandleArray[T] {
	return &HandleArray[T]{
		slots: make([]slot[T], 0, reserve),
	}
}

// Alloc stores v in a free slot and returns its handle with one reference.
func (ha *HandleArray[T]) Alloc(v T) (Handle, error) {
	var index int
	if n := len(ha.free); n > 0 {
		index = ha.free[n-1]
		ha.free = ha.free[:n-1]
	} else {
		if len(ha.slots) >= MaxHandleSlots {
			return InvalidHandle, fmt.Errorf("handle array exhausted (%d slots)", MaxHandleSlots)
		}
		ha.slots = append(ha.slots, slot[T]{})
		index = len(ha.slots) - 1
	}
	s := &ha.slots[index]
	s.generation = (s.generation + 1) & handleGenMask
	if s.generation == 0 {
		s.generation = 1
	}
	s.value = v
	s.live = true
	s.retired = false
	s.refs = 1
	ha.count++
	return makeHandle(index, s.generation), nil
}

func (ha *HandleArray[T]) lookup(h Handle) (*slot[T], error) {
	i := h.index()
	if h == InvalidHandle || i < 0 || i >= len(ha.slots) {
		return nil, fmt.Errorf("%w: %d out of range", ErrInvalidHandle, uint32(h))
	}
	s := &ha.slots[i]
	if !s.live || s.generation != h.generation() {
		return nil, fmt.Errorf("%w: %s is stale", ErrInvalidHandle, h)
	}
	return s, nil
}

// Get returns a pointer to the value behind a live, non-retired handle.
func (ha *HandleArray[T]) Get(h Handle) (*T, error) {
	s, err := ha.lookup(h)
	if err != nil {
		return nil, err
	}
	if s.retired {
		return nil, fmt.Errorf("%w: %s was destroyed", ErrInvalidHandle, h)
	}
	return &s.value, nil
}

// Valid reports whether Get would succeed.
func (ha *HandleArray[T]) Valid(h Handle) bool {
	_, err := ha.Get(h)
	return err == nil
}

// Retain adds a reference to a live handle.
func (ha *HandleArray[T]) Retain(h Handle) error {
	s, err := ha.lookup(h)
	if err != nil {
		return err
	}
	if s.retired {
		return fmt.Errorf("%w: %s was destroyed", ErrInvalidHandle, h)
	}
	s.refs++
	return nil
}

// Release drops one reference. The slot is freed when no references remain;
// the returned value is the one that was stored, valid only when freed is true.
func (ha *HandleArray[T]) Release(h Handle) (v T, freed bool, err error) {
	s, err := ha.lookup(h)
	if err != nil {
		return v, false, err
	}
	s.refs--
	if s.refs > 0 {
		return v, false, nil
	}
	v = s.value
	ha.release(h.index())
	return v, true, nil
}

// Retire invalidates the handle for callers and drops the owner reference.
// The slot stays allocated while other references exist.
func (ha *HandleArray[T]) Retire(h Handle) (v T, freed bool, err error) {
	s, err := ha.lookup(h)
	if err != nil {
		return v, false, err
	}
	if s.retired {
		return v, false, fmt.Errorf("%w: %s was destroyed", ErrInvalidHandle, h)
	}
	s.retired = true
	return ha.Release(h)
}

// Free releases the slot regardless of outstanding references.
func (ha *HandleArray[T]) Free(h Handle) (T, error) {
	var zero T
	s, err := ha.lookup(h)
	if err != nil {
		return zero, err
	}
	if s.retired {
		return zero, fmt.Errorf("%w: %s was destroyed", ErrInvalidHandle, h)
	}
	v := s.value
	ha.release(h.index())
	return v, nil
}

func (ha *HandleArray[T]) release(index int) {
	var zero T
	s := &ha.slots[index]
	s.value = zero
	s.live = false
	s.retired = false
	s.refs = 0
	ha.free = append(ha.free, index)
	ha.count--
}

// Refs returns the number of references held on a handle, including retired ones.
func (ha *HandleArray[T]) Refs(h Handle) int {
	s, err := ha.lookup(h)
	if err != nil {
		return 0
	}
	return s.refs
}

// Len returns the number of allocated slots, retired ones included.
func (ha *HandleArray[T]) Len() int {
	return ha.count
}

// Each calls fn for every live, non-retired handle. fn must not alloc or free.
func (ha *HandleArray[T]) Each(fn func(h Handle, v *T)) {
	for i := range ha.slots {
		s := &ha.slots[i]
		if s.live && !s.retired {
			fn(makeHandle(i, s.generation), &s.value)
		}
	}
}

// Handles returns every live, non-retired handle.
func (ha *HandleArray[T]) Handles() []Handle {
	out := make([]Handle, 0, ha.count)
	ha.Each(func(h Handle, _ *T) {
		out = append(out, h)
	})
	return out
}
