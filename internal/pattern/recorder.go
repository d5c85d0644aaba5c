package pattern

import "sync"

// State is the fill state of a Recorder.
type State int

const (
	StateEmpty State = iota
	StateFilling
	StateFull
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFilling:
		return "filling"
	case StateFull:
		return "full"
	default:
		return "unknown"
	}
}

// Observer receives a snapshot after every change of a Recorder.
type Observer func(Pattern)

// Recorder is the click capture primitive. It holds an ordered, bounded
// buffer of points. Each capture step of a flow owns its own Recorder,
// configured with a capacity and whether clicks may be removed.
//
// Add is the only forward transition; Remove and Clear the only backward
// ones. Adding to a full recorder is a silent no-op.
type Recorder struct {
	mu       sync.Mutex
	points   Pattern
	capacity int
	editable bool
	observer Observer
}

// RecorderOption customises a Recorder.
type RecorderOption func(*Recorder)

// WithObserver registers fn to be called with a snapshot after each change.
// fn runs without the recorder lock held.
func WithObserver(fn Observer) RecorderOption {
	return func(r *Recorder) { r.observer = fn }
}

// NewRecorder creates an empty recorder. A capacity below 1 is raised to 1.
func NewRecorder(capacity int, editable bool, opts ...RecorderOption) *Recorder {
	if capacity < 1 {
		capacity = 1
	}
	r := &Recorder{
		points:   make(Pattern, 0, capacity),
		capacity: capacity,
		editable: editable,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Add appends p unless the recorder is full. It reports whether p was added.
func (r *Recorder) Add(p Point) bool {
	r.mu.Lock()
	if len(r.points) >= r.capacity {
		r.mu.Unlock()
		return false
	}
	r.points = append(r.points, p)
	snap := r.points.Clone()
	r.mu.Unlock()

	r.notify(snap)
	return true
}

// Remove deletes the point at index i, keeping the order of the rest.
// It is a no-op on a non-editable recorder or for an out-of-range index.
func (r *Recorder) Remove(i int) bool {
	r.mu.Lock()
	if !r.editable || i < 0 || i >= len(r.points) {
		r.mu.Unlock()
		return false
	}
	r.points = append(r.points[:i], r.points[i+1:]...)
	snap := r.points.Clone()
	r.mu.Unlock()

	r.notify(snap)
	return true
}

// Clear empties the recorder.
func (r *Recorder) Clear() {
	r.mu.Lock()
	wasEmpty := len(r.points) == 0
	r.points = r.points[:0]
	r.mu.Unlock()

	if !wasEmpty {
		r.notify(Pattern{})
	}
}

// Snapshot returns a copy of the recorded points.
func (r *Recorder) Snapshot() Pattern {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(Pattern, len(r.points))
	copy(out, r.points)
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.points)
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch n := len(r.points); {
	case n == 0:
		return StateEmpty
	case n >= r.capacity:
		return StateFull
	default:
		return StateFilling
	}
}

func (r *Recorder) Capacity() int { return r.capacity }

func (r *Recorder) Editable() bool { return r.editable }

func (r *Recorder) notify(p Pattern) {
	if r.observer != nil {
		r.observer(p)
	}
}
