package snapkeep

import (
	"sort"
	"time"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

// NextUpcoming returns the dated item closest in the future, or false
// when nothing upcoming exists.
func (c *Client) NextUpcoming() (types.SavedItem, bool) {
	upcoming := c.Upcoming()
	if len(upcoming) == 0 {
		return types.SavedItem{}, false
	}
	return upcoming[0], true
}

// Upcoming returns items with a future date, soonest first.
func (c *Client) Upcoming() []types.SavedItem {
	return filterByDate(c.snapshotItems(), time.Now(), func(event, now time.Time) bool {
		return !event.Before(now)
	})
}

// ThisWeek returns items dated within the next seven days, soonest
// first.
func (c *Client) ThisWeek() []types.SavedItem {
	return filterByDate(c.snapshotItems(), time.Now(), func(event, now time.Time) bool {
		return !event.Before(now) && event.Before(now.AddDate(0, 0, 7))
	})
}

func filterByDate(items []types.SavedItem, now time.Time, keep func(event, now time.Time) bool) []types.SavedItem {
	type dated struct {
		item types.SavedItem
		at   time.Time
	}
	var out []dated
	for _, it := range items {
		if it.DateTimeISO == "" {
			continue
		}
		at, err := time.Parse(time.RFC3339, it.DateTimeISO)
		if err != nil {
			continue
		}
		if keep(at, now) {
			out = append(out, dated{item: it, at: at})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].at.Before(out[j].at) })

	items = make([]types.SavedItem, len(out))
	for i, d := range out {
		items[i] = d.item
	}
	return items
}
