package snapkeep

import (
	"context"
	"sync"

	"github.com/JaggerB/rork-snapkeep-organizer/internal/geo"
	"github.com/JaggerB/rork-snapkeep-organizer/internal/types"
)

// fakeStore is an in-memory Store with scriptable failures.
type fakeStore struct {
	mu      sync.Mutex
	items   map[string]types.SavedItem
	trips   map[string]types.Trip
	inserts []types.SavedItem
	updates []types.ItemPatch

	insertErr error
	updateErr error
	deleteErr error
	fetchErr  error

	// beforeInsert, when set, runs inside Insert before it commits.
	// Used to observe optimistic state mid-flight.
	beforeInsert func()
	// beforeUpdate runs inside Update, once per call, receiving the
	// call ordinal.
	beforeUpdate func(call int)
	updateCalls  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items: make(map[string]types.SavedItem),
		trips: make(map[string]types.Trip),
	}
}

func (f *fakeStore) FetchAll(_ context.Context, _ string) ([]types.SavedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]types.SavedItem, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeStore) Insert(_ context.Context, _ string, it types.SavedItem) error {
	if f.beforeInsert != nil {
		f.beforeInsert()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.items[it.ID] = it
	f.inserts = append(f.inserts, it)
	return nil
}

func (f *fakeStore) Update(_ context.Context, _ string, id string, patch types.ItemPatch) error {
	f.mu.Lock()
	call := f.updateCalls
	f.updateCalls++
	hook := f.beforeUpdate
	f.mu.Unlock()
	if hook != nil {
		hook(call)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if it, ok := f.items[id]; ok {
		f.items[id] = patch.Apply(it)
	}
	f.updates = append(f.updates, patch)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, _ string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.items, id)
	return nil
}

func (f *fakeStore) ListTrips(_ context.Context, _ string) ([]types.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]types.Trip, 0, len(f.trips))
	for _, t := range f.trips {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) InsertTrip(_ context.Context, t types.Trip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.trips[t.ID] = t
	return nil
}

func (f *fakeStore) UpdateTrip(_ context.Context, _ string, id string, patch types.TripPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if t, ok := f.trips[id]; ok {
		f.trips[id] = patch.Apply(t)
	}
	return nil
}

func (f *fakeStore) DeleteTrip(_ context.Context, _ string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.trips, id)
	return nil
}

func (f *fakeStore) HealthCheck(context.Context) error { return nil }

func (f *fakeStore) insertedURIs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.inserts))
	for i, it := range f.inserts {
		out[i] = it.ImageURI
	}
	return out
}

// fakeMaterializer maps input URIs to fixed outputs.
type fakeMaterializer struct {
	result string
	err    error
}

func (f fakeMaterializer) Materialize(_ context.Context, _, _, uri string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.result != "" {
		return f.result, nil
	}
	return uri, nil
}

// fakeResolver counts lookups and returns a scripted result.
type fakeResolver struct {
	mu      sync.Mutex
	calls   int
	queries []string
	result  geo.Result
	err     error
}

func (f *fakeResolver) Resolve(_ context.Context, query string, _ geo.Hints) (geo.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, query)
	return f.result, f.err
}

func (f *fakeResolver) ResolveByPlaceID(_ context.Context, placeID string) (geo.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, "place:"+placeID)
	return f.result, f.err
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
