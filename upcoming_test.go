package snapkeep

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

func datedItem(title string, at time.Time) types.SavedItem {
	it := validItem(title)
	it.DateTimeISO = at.Format(time.RFC3339)
	return it
}

func TestUpcomingFilters(t *testing.T) {
	c := newTestClient(newFakeStore())
	defer c.Close()

	now := time.Now().UTC()
	for _, it := range []types.SavedItem{
		datedItem("yesterday", now.AddDate(0, 0, -1)),
		datedItem("in three days", now.AddDate(0, 0, 3)),
		datedItem("next month", now.AddDate(0, 1, 0)),
		validItem("undated"),
	} {
		_, err := c.AddItem(context.Background(), it)
		require.NoError(t, err)
	}

	upcoming := c.Upcoming()
	require.Len(t, upcoming, 2)
	require.Equal(t, "in three days", upcoming[0].Title, "soonest first")
	require.Equal(t, "next month", upcoming[1].Title)

	week := c.ThisWeek()
	require.Len(t, week, 1)
	require.Equal(t, "in three days", week[0].Title)

	next, ok := c.NextUpcoming()
	require.True(t, ok)
	require.Equal(t, "in three days", next.Title)
}

func TestNextUpcoming_Empty(t *testing.T) {
	c := newTestClient(newFakeStore())
	defer c.Close()

	_, ok := c.NextUpcoming()
	require.False(t, ok)
}
