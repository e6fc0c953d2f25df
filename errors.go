package snapkeep

import (
	"errors"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/shardqueue"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

// ErrNoSession is returned by every mutation entry point when no user
// is authenticated. Reads still work against cached state.
var ErrNoSession = errors.New("snapkeep: no authenticated session")

// ErrBackPressure is returned when the mutation queue is saturated and
// the caller should retry later.
var ErrBackPressure = errors.New("snapkeep: mutation queue full, retry later")

// ErrNotFound is returned when an item or trip id is unknown.
var ErrNotFound = types.ErrNotFound

// ErrClosed is returned after Close.
var ErrClosed = errors.New("snapkeep: client closed")

// ErrExtractionDisabled is returned by SaveScreenshot when no
// extraction backend is configured.
var ErrExtractionDisabled = errors.New("snapkeep: screenshot extraction not configured")

func mapSubmitErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, shardqueue.ErrQueueFull):
		return ErrBackPressure
	case errors.Is(err, shardqueue.ErrExecutorClosed):
		return ErrClosed
	default:
		return err
	}
}
