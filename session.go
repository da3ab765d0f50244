package wavedit

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-audio/audio"
)

var (
	// ErrNothingToUndo is returned by Undo when the history is empty.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrReinitPending is returned while a restored artifact waits to be
	// decoded on the next Tick.
	ErrReinitPending = errors.New("waiting for reinit, call Tick first")
	// ErrBusy is returned when an edit or undo is already running.
	ErrBusy = errors.New("another edit is in progress")
)

const (
	stateIdle int32 = iota
	stateEditing
	stateUndoing
)

// Event describes the session after an edit or undo. It is delivered on the
// Tick following the call, never from inside it.
type Event struct {
	Kind            EditKind
	Handle          Handle
	Time            float64
	Duration        float64
	DurationChanged bool
	// LastEdit is nil after an undo.
	LastEdit *SampleInterval
	// Err is set when restoring an artifact failed.
	Err error
}

// Refresher is notified once the state produced by an edit or undo is ready
// for re-rendering.
type Refresher interface {
	Refresh(Event)
}

// RefreshFunc adapts a function to Refresher.
type RefreshFunc func(Event)

// Refresh calls f(e).
func (f RefreshFunc) Refresh(e Event) { f(e) }

// Export is a copy of the current state, suitable for saving.
type Export struct {
	Handle Handle
	WAV    WAV
	Buffer *audio.Float32Buffer
	Time   float64
}

// Session owns the current decoded/serialized pair of one recording and its
// undo history. Edits and undos are serialized: a call made while another is
// running fails with ErrBusy.
type Session struct {
	state atomic.Int32
	queue Queue

	log       *slog.Logger
	store     Store
	refresher Refresher

	mu           sync.Mutex
	history      *History
	buf          *audio.Float32Buffer
	wav          WAV
	handle       Handle
	time         float64
	lastEdit     *SampleInterval
	lastDuration float64
	pending      bool
}

// NewSession starts a session on a copy of buf. The initial WAV is a full
// encode of the buffer.
func NewSession(buf *audio.Float32Buffer, opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.store == nil {
		cfg.store = NewMemoryStore()
	}

	data, err := EncodeFull(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to encode initial buffer: %w", err)
	}

	handle, err := cfg.store.Put(data)
	if err != nil {
		return nil, fmt.Errorf("failed to store initial artifact: %w", err)
	}

	s := &Session{
		log:       cfg.logger,
		store:     cfg.store,
		refresher: cfg.refresher,
		buf:       cloneBuffer(buf),
		wav:       data,
		handle:    handle,
	}
	s.lastDuration = data.Duration()
	s.time = clampFloat64(cfg.time, 0, s.lastDuration)
	s.history = NewHistory(cfg.undoDepth, s.releaseSnapshot)

	s.log.Debug("session opened",
		"handle", handle,
		"sample_rate", data.SampleRate(),
		"samples", data.NumSamples(),
		"undo_capacity", s.history.Cap())

	return s, nil
}

// Open decodes a WAV file and starts a session on it.
func Open(r io.ReadSeeker, opts ...Option) (*Session, error) {
	buf, err := NewDecoder(r).FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode source: %w", err)
	}

	return NewSession(buf, opts...)
}

// ResolveInterval resolves selection points against the current duration.
func (s *Session) ResolveInterval(points ...float64) (Interval, bool) {
	return ResolveInterval(points, s.Duration())
}

// Apply resolves the selection, runs the edit and installs the result as the
// current state. The pre-edit artifact and playback time are pushed on the
// undo history. Rejected calls leave the session untouched.
func (s *Session) Apply(edit Edit, selection []float64) (*EditResult, error) {
	if !s.state.CompareAndSwap(stateIdle, stateEditing) {
		return nil, ErrBusy
	}
	defer s.state.Store(stateIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending {
		return nil, ErrReinitPending
	}

	iv, ok := ResolveInterval(selection, s.wav.Duration())
	if !ok {
		return nil, fmt.Errorf("%w: selection %v", ErrInvalidInterval, selection)
	}

	res, err := Apply(s.buf, s.wav, iv, edit)
	if err != nil {
		return nil, err
	}

	handle, err := s.store.Put(res.WAV)
	if err != nil {
		return nil, fmt.Errorf("failed to store edited artifact: %w", err)
	}

	s.history.Push(Snapshot{Handle: s.handle, Time: s.time})

	if res.Kind == KindDelete {
		s.time = shiftPlaybackTime(s.time, iv)
	}

	s.buf, s.wav, s.handle = res.Buffer, res.WAV, handle
	s.lastEdit = &SampleInterval{Start: res.Range.Start, End: res.Range.End}

	res.Handle = handle
	res.Time = s.time
	res.DurationChanged = s.noteDuration()

	s.log.Debug("applied edit",
		"kind", res.Kind,
		"start", res.Range.Start,
		"end", res.Range.End,
		"handle", handle,
		"undo_depth", s.history.Len(),
		"undo_capacity", s.history.Cap())

	ev := s.eventLocked(res.Kind, res.DurationChanged)
	s.queue.Submit(func() { s.notify(ev) })

	return res, nil
}

// Undo restores the most recent snapshot. The decoded buffer of the restored
// artifact is rebuilt on the next Tick; until then edits fail with
// ErrReinitPending.
func (s *Session) Undo() (*EditResult, error) {
	if !s.state.CompareAndSwap(stateIdle, stateUndoing) {
		return nil, ErrBusy
	}
	defer s.state.Store(stateIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending {
		return nil, ErrReinitPending
	}

	snap, ok := s.history.Pop()
	if !ok {
		return nil, ErrNothingToUndo
	}

	data, err := s.store.Get(snap.Handle)
	if err != nil {
		s.history.Push(snap)

		return nil, fmt.Errorf("failed to restore snapshot: %w", err)
	}

	abandoned := s.handle
	if err := s.store.Release(abandoned); err != nil {
		s.log.Warn("failed to release artifact", "handle", abandoned, "err", err)
	}

	s.handle, s.time, s.wav = snap.Handle, snap.Time, data
	s.lastEdit = nil
	s.pending = true

	s.log.Debug("undo", "handle", snap.Handle, "time", snap.Time, "undo_depth", s.history.Len())

	s.queue.Submit(func() { s.reinit(snap.Handle) })

	return &EditResult{
		Kind:   KindUndo,
		WAV:    data,
		Handle: snap.Handle,
		Time:   snap.Time,
	}, nil
}

// Tick runs deferred work: refresh notifications and the reinit after an
// undo. It returns the number of tasks run.
func (s *Session) Tick() int {
	return s.queue.Tick()
}

// Close releases every artifact held by the session.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error

	for {
		snap, ok := s.history.Pop()
		if !ok {
			break
		}

		errs = append(errs, s.store.Release(snap.Handle))
	}

	errs = append(errs, s.store.Release(s.handle))

	return errors.Join(errs...)
}

// Buffer returns a copy of the decoded buffer, or nil while a reinit is
// pending.
func (s *Session) Buffer() *audio.Float32Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending {
		return nil
	}

	return cloneBuffer(s.buf)
}

// WAV returns a copy of the current serialized bytes.
func (s *Session) WAV() WAV {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wav.clone()
}

// Handle returns the handle of the current artifact.
func (s *Session) Handle() Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.handle
}

// Duration returns the current duration in seconds.
func (s *Session) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wav.Duration()
}

// SampleRate returns the sample rate of the recording.
func (s *Session) SampleRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wav.SampleRate()
}

// PlaybackTime returns the playback position in seconds.
func (s *Session) PlaybackTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.time
}

// SetPlaybackTime records the transport position, clamped to the recording.
func (s *Session) SetPlaybackTime(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !isFinite(t) {
		return
	}

	s.time = clampFloat64(t, 0, s.wav.Duration())
}

// LastEdit returns the selection of the last edit in samples, as in
// EditResult.Range. After a FadeOut the sample at End was rewritten too.
// It reports false after an undo.
func (s *Session) LastEdit() (SampleInterval, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastEdit == nil {
		return SampleInterval{}, false
	}

	return *s.lastEdit, true
}

// CanUndo reports whether Undo has a snapshot to restore.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.history.Len() > 0
}

// Pending reports whether a reinit is waiting for Tick.
func (s *Session) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pending
}

// Export returns a copy of the current state.
func (s *Session) Export() (Export, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending {
		return Export{}, ErrReinitPending
	}

	return Export{
		Handle: s.handle,
		WAV:    s.wav.clone(),
		Buffer: cloneBuffer(s.buf),
		Time:   s.time,
	}, nil
}

// reinit decodes the restored artifact into the current buffer. The
// restored bytes stay as they are so the handle still names them exactly.
func (s *Session) reinit(h Handle) {
	s.mu.Lock()

	if !s.pending || s.handle != h {
		s.mu.Unlock()

		return
	}

	s.pending = false

	buf, err := Decode(s.wav)
	if err != nil {
		// edits fail on a nil buffer, Undo can still step further back
		s.log.Warn("failed to reinit restored artifact", "handle", h, "err", err)
		s.buf = nil

		ev := s.eventLocked(KindUndo, false)
		ev.Err = err
		s.mu.Unlock()

		s.notify(ev)

		return
	}

	s.buf = buf
	ev := s.eventLocked(KindUndo, s.noteDuration())
	s.mu.Unlock()

	s.notify(ev)
}

func (s *Session) notify(ev Event) {
	if s.refresher == nil {
		return
	}

	s.refresher.Refresh(ev)
}

func (s *Session) eventLocked(kind EditKind, durationChanged bool) Event {
	ev := Event{
		Kind:            kind,
		Handle:          s.handle,
		Time:            s.time,
		Duration:        s.wav.Duration(),
		DurationChanged: durationChanged,
	}

	if s.lastEdit != nil {
		r := *s.lastEdit
		ev.LastEdit = &r
	}

	return ev
}

// noteDuration records the current duration and reports whether it changed.
func (s *Session) noteDuration() bool {
	d := s.wav.Duration()
	changed := d != s.lastDuration
	s.lastDuration = d

	return changed
}

func (s *Session) releaseSnapshot(snap Snapshot) {
	if err := s.store.Release(snap.Handle); err != nil {
		s.log.Warn("failed to release evicted snapshot", "handle", snap.Handle, "err", err)

		return
	}

	s.log.Debug("evicted snapshot", "handle", snap.Handle)
}

// shiftPlaybackTime moves the playback position so it stays on the same
// audio after iv was deleted.
func shiftPlaybackTime(t float64, iv Interval) float64 {
	switch {
	case t > iv.End:
		return t - (iv.End - iv.Start)
	case t > iv.Start && t < iv.End:
		return iv.Start
	default:
		return t
	}
}
