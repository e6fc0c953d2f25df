// Package ids generates opaque identifiers for saved items and trips.
package ids

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// New returns an identifier of the form "{prefix}_{time-hex}_{random}".
// The timestamp component keeps ids roughly sortable by creation time;
// the uuid fragment makes collisions within one process impossible in
// practice.
func New(prefix string) string {
	u := uuid.New()
	return fmt.Sprintf("%s_%x_%x", prefix, time.Now().UnixMilli(), u[:6])
}
