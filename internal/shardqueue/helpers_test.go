package shardqueue

import (
	"context"
	"sync/atomic"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/errs"
)

// jobReturning counts runs and always fails irrecoverably.
func jobReturning(runs *int32) JobFunc {
	return func(context.Context) error {
		atomic.AddInt32(runs, 1)
		return errs.NewHTTPError(403, "forbidden", "test")
	}
}
