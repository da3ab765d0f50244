package wavedit

// Snapshot is an undo checkpoint: the artifact that was current before an
// edit and the playback position at that time.
type Snapshot struct {
	Handle Handle
	Time   float64
}

// History is a bounded undo stack. Once full, pushing evicts the oldest
// snapshot and hands it to the release callback.
type History struct {
	capacity  int
	snapshots []Snapshot
	release   func(Snapshot)
}

// NewHistory creates a stack holding at most capacity snapshots. A capacity
// of 0 disables undo: every push is evicted immediately.
func NewHistory(capacity int, release func(Snapshot)) *History {
	return &History{
		capacity:  max(capacity, 0),
		snapshots: make([]Snapshot, 0, max(capacity, 0)+1),
		release:   release,
	}
}

// Push adds s on top of the stack, evicting the oldest snapshots beyond
// capacity.
func (h *History) Push(s Snapshot) {
	h.snapshots = append(h.snapshots, s)

	for len(h.snapshots) > h.capacity {
		oldest := h.snapshots[0]
		h.snapshots = append(h.snapshots[:0], h.snapshots[1:]...)

		if h.release != nil {
			h.release(oldest)
		}
	}
}

// Pop removes and returns the most recent snapshot.
func (h *History) Pop() (Snapshot, bool) {
	if len(h.snapshots) == 0 {
		return Snapshot{}, false
	}

	last := h.snapshots[len(h.snapshots)-1]
	h.snapshots = h.snapshots[:len(h.snapshots)-1]

	return last, true
}

// Len returns the number of snapshots on the stack.
func (h *History) Len() int {
	return len(h.snapshots)
}

// Cap returns the configured capacity.
func (h *History) Cap() int {
	return h.capacity
}
