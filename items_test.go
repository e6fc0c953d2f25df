package snapkeep

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/auth"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/errs"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/store/postgrest"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

func testSession() auth.SessionSource {
	return auth.StaticSession{User: "user-1", Token: "jwt"}
}

func newTestClient(s *fakeStore, opts ...Option) *Client {
	return New(s, testSession(), opts...)
}

func validItem(title string) types.SavedItem {
	return types.SavedItem{Title: title, ImageURI: "https://cdn/x/a.jpg"}
}

func TestAddItem_VisibleImmediatelyAndAfterConfirm(t *testing.T) {
	s := newFakeStore()
	c := newTestClient(s)
	defer c.Close()

	var visibleMidFlight atomic.Bool
	s.beforeInsert = func() {
		visibleMidFlight.Store(len(c.Items()) == 1)
	}

	saved, err := c.AddItem(context.Background(), validItem("Tatiana"))
	require.NoError(t, err)
	require.True(t, visibleMidFlight.Load(), "item should be in memory before the remote call resolves")
	require.NotEmpty(t, saved.ID)
	require.NotEmpty(t, saved.CreatedAt)

	items := c.Items()
	require.Len(t, items, 1)
	require.Equal(t, "Tatiana", items[0].Title)
}

func TestAddItem_RollsBackOnPersistFailure(t *testing.T) {
	s := newFakeStore()
	s.insertErr = errs.NewHTTPError(500, "boom", "insert item")
	c := newTestClient(s)
	defer c.Close()

	_, err := c.AddItem(context.Background(), validItem("Tatiana"))
	require.Error(t, err)
	require.Empty(t, c.Items(), "failed insert must roll the item back out")
}

func TestAddItem_ValidationBeforeAnyStateChange(t *testing.T) {
	s := newFakeStore()
	c := newTestClient(s)
	defer c.Close()

	_, err := c.AddItem(context.Background(), types.SavedItem{ImageURI: "https://cdn/a.jpg"})
	require.ErrorIs(t, err, types.ErrMissingTitle)

	_, err = c.AddItem(context.Background(), types.SavedItem{Title: "No image"})
	require.ErrorIs(t, err, types.ErrMissingImage)

	require.Empty(t, c.Items())
	require.Empty(t, s.inserts)
}

func TestAddItem_RequiresSession(t *testing.T) {
	c := New(newFakeStore(), auth.NoSession)
	defer c.Close()

	_, err := c.AddItem(context.Background(), validItem("Tatiana"))
	require.ErrorIs(t, err, ErrNoSession)
}

func TestAddItem_MaterializesBeforePersist(t *testing.T) {
	s := newFakeStore()
	c := newTestClient(s, WithMaterializer(fakeMaterializer{result: "https://cdn/x/a.jpg"}))
	defer c.Close()

	saved, err := c.AddItem(context.Background(), types.SavedItem{Title: "Tatiana", ImageURI: "file:///tmp/a.jpg"})
	require.NoError(t, err)
	require.Equal(t, "https://cdn/x/a.jpg", saved.ImageURI)
	require.Equal(t, []string{"https://cdn/x/a.jpg"}, s.insertedURIs())
}

func TestAddItem_InlineDataNeverReachesStore(t *testing.T) {
	s := newFakeStore()
	c := newTestClient(s, WithMaterializer(fakeMaterializer{result: "https://cdn/x/b.png"}))
	defer c.Close()

	_, err := c.AddItem(context.Background(), types.SavedItem{
		Title:    "Inline capture",
		ImageURI: "data:image/png;base64,iVBORw0KGgo=",
	})
	require.NoError(t, err)
	for _, uri := range s.insertedURIs() {
		require.False(t, types.IsInlineImage(uri), "persisted %q", uri)
	}
}

func TestAddItem_MaterializationFailureIsNonFatal(t *testing.T) {
	s := newFakeStore()
	c := newTestClient(s, WithMaterializer(fakeMaterializer{err: errors.New("upload down")}))
	defer c.Close()

	saved, err := c.AddItem(context.Background(), types.SavedItem{Title: "Tatiana", ImageURI: "file:///tmp/a.jpg"})
	require.NoError(t, err, "losing the image must not fail the save")
	require.Empty(t, saved.ImageURI)
	require.Equal(t, []string{""}, s.insertedURIs())
}

func TestUpdateItem_RollsBackOnFailure(t *testing.T) {
	s := newFakeStore()
	c := newTestClient(s)
	defer c.Close()

	saved, err := c.AddItem(context.Background(), validItem("Original"))
	require.NoError(t, err)

	s.mu.Lock()
	s.updateErr = errs.NewHTTPError(500, "boom", "update item")
	s.mu.Unlock()

	title := "Renamed"
	_, err = c.UpdateItem(context.Background(), saved.ID, types.ItemPatch{Title: &title})
	require.Error(t, err)

	got, err := c.Item(saved.ID)
	require.NoError(t, err)
	require.Equal(t, "Original", got.Title)
}

func TestUpdateItem_UnknownID(t *testing.T) {
	c := newTestClient(newFakeStore())
	defer c.Close()

	title := "X"
	_, err := c.UpdateItem(context.Background(), "missing", types.ItemPatch{Title: &title})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveItem_RestoresPositionOnFailure(t *testing.T) {
	s := newFakeStore()
	c := newTestClient(s)
	defer c.Close()

	var ids []string
	for _, title := range []string{"third", "second", "first"} {
		saved, err := c.AddItem(context.Background(), validItem(title))
		require.NoError(t, err)
		ids = append(ids, saved.ID)
	}
	before := c.Items()

	s.mu.Lock()
	s.deleteErr = errs.NewHTTPError(500, "boom", "delete item")
	s.mu.Unlock()

	require.Error(t, c.RemoveItem(context.Background(), ids[1]))
	require.Equal(t, before, c.Items(), "failed removal must restore the exact list")
}

func TestRemoveItem_Succeeds(t *testing.T) {
	s := newFakeStore()
	c := newTestClient(s)
	defer c.Close()

	saved, err := c.AddItem(context.Background(), validItem("Tatiana"))
	require.NoError(t, err)

	require.NoError(t, c.RemoveItem(context.Background(), saved.ID))
	require.Empty(t, c.Items())

	_, err = c.Item(saved.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateItem_SerializedPerID(t *testing.T) {
	s := newFakeStore()
	c := newTestClient(s)
	defer c.Close()

	saved, err := c.AddItem(context.Background(), validItem("v0"))
	require.NoError(t, err)

	// Stall the first update long enough that the second is queued
	// behind it on the same shard.
	firstRunning := make(chan struct{})
	release := make(chan struct{})
	s.beforeUpdate = func(call int) {
		if call == 0 {
			close(firstRunning)
			<-release
		}
	}

	titleA, titleB := "vA", "vB"
	resA := make(chan error, 1)
	resB := make(chan error, 1)
	go func() {
		_, e := c.UpdateItem(context.Background(), saved.ID, types.ItemPatch{Title: &titleA})
		resA <- e
	}()
	<-firstRunning
	go func() {
		_, e := c.UpdateItem(context.Background(), saved.ID, types.ItemPatch{Title: &titleB})
		resB <- e
	}()

	// B must not run while A is stalled.
	select {
	case <-resB:
		t.Fatal("second update finished before the first resolved")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-resA)
	require.NoError(t, <-resB)

	got, err := c.Item(saved.ID)
	require.NoError(t, err)
	require.Equal(t, "vB", got.Title, "final state must reflect the second patch applied after the first")
}

func TestFlush_WaitsForInFlightMutations(t *testing.T) {
	s := newFakeStore()
	c := newTestClient(s)
	defer c.Close()

	saved, err := c.AddItem(context.Background(), validItem("v0"))
	require.NoError(t, err)

	updateRunning := make(chan struct{})
	release := make(chan struct{})
	s.beforeUpdate = func(call int) {
		close(updateRunning)
		<-release
	}

	title := "v1"
	go func() {
		_, _ = c.UpdateItem(context.Background(), saved.ID, types.ItemPatch{Title: &title})
	}()
	<-updateRunning

	flushed := make(chan error, 1)
	go func() { flushed <- c.Flush(context.Background()) }()

	select {
	case <-flushed:
		t.Fatal("flush returned while a mutation was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-flushed)

	got, err := c.Item(saved.ID)
	require.NoError(t, err)
	require.Equal(t, "v1", got.Title)
}

func TestAddItem_DegradesAcrossSchemaDrift(t *testing.T) {
	// End to end against a drifting backend: the full-column insert is
	// rejected for an unknown column, the reduced insert succeeds, and
	// the engine keeps the item.
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":"PGRST204","message":"Could not find the 'tiktok' column"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	remote := postgrest.New(srv.URL, "anon-key", testSession())
	c := New(remote, testSession())
	defer c.Close()

	it := validItem("Tatiana")
	it.TikTok = "@tatiana"
	saved, err := c.AddItem(context.Background(), it)
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))

	items := c.Items()
	require.Len(t, items, 1)
	require.Equal(t, saved.ID, items[0].ID)
}
