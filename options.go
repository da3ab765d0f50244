package wavedit

import (
	"io"
	"log/slog"
)

// DefaultUndoDepth is the number of edits that can be undone by default.
const DefaultUndoDepth = 1

type config struct {
	undoDepth int
	store     Store
	logger    *slog.Logger
	refresher Refresher
	time      float64
}

// Option configures a Session.
type Option func(*config)

// WithUndoDepth sets how many edits can be undone. Negative values are
// treated as 0.
func WithUndoDepth(n int) Option {
	return func(c *config) {
		c.undoDepth = max(n, 0)
	}
}

// WithStore sets the artifact store. Defaults to a new MemoryStore.
func WithStore(s Store) Option {
	return func(c *config) {
		c.store = s
	}
}

// WithLogger sets the structured logger. Defaults to discarding output,
// a nil logger keeps the default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRefresher registers the receiver of deferred refresh events.
func WithRefresher(r Refresher) Option {
	return func(c *config) {
		c.refresher = r
	}
}

// WithPlaybackTime sets the initial playback position in seconds.
func WithPlaybackTime(t float64) Option {
	return func(c *config) {
		c.time = t
	}
}

func defaultConfig() *config {
	return &config{
		undoDepth: DefaultUndoDepth,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
