package eventlog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/wiptrace/internal/domain/models"
)

// fakeStore stands in for the remote sheet.
type fakeStore struct {
	events    []models.Event
	readErr   error
	appendErr error
	reads     int
	appends   int
}

func (f *fakeStore) ReadEvents(ctx context.Context) ([]models.Event, error) {
	f.reads++
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := make([]models.Event, len(f.events))
	copy(out, f.events)
	return out, nil
}

func (f *fakeStore) AppendEvent(ctx context.Context, event models.Event) error {
	f.appends++
	if f.appendErr != nil {
		return f.appendErr
	}
	f.events = append(f.events, event)
	return nil
}

func orderEvent(order, action string) models.Event {
	return models.Event{
		Timestamp: "2025-01-01 08:00:00",
		Action:    action,
		Order:     order,
		Process:   "P1",
	}
}

func TestEventsByOrder_LazyLoadAndFilter(t *testing.T) {
	store := &fakeStore{events: []models.Event{
		orderEvent("251119AA", "IN"),
		orderEvent("251119AB", "IN"),
		orderEvent("251119AA", "OUT"),
	}}
	cache := NewCache(store, nil)

	events, err := cache.EventsByOrder(context.Background(), " 251119aa ")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "IN", events[0].Action)
	assert.Equal(t, "OUT", events[1].Action)
	assert.Equal(t, 1, store.reads)

	// Second query is served from the snapshot.
	_, err = cache.EventsByOrder(context.Background(), "251119AB")
	require.NoError(t, err)
	assert.Equal(t, 1, store.reads)
}

func TestEventsByOrder_NoMatches(t *testing.T) {
	cache := NewCache(&fakeStore{}, nil)

	events, err := cache.EventsByOrder(context.Background(), "251119ZZ")
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestEventsByOrder_LoadFailure(t *testing.T) {
	store := &fakeStore{readErr: errors.New("quota exceeded")}
	cache := NewCache(store, nil)

	_, err := cache.EventsByOrder(context.Background(), "251119AA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestAppend_WritesThrough(t *testing.T) {
	store := &fakeStore{}
	cache := NewCache(store, nil)

	// Warm the snapshot first so the append lands in both places.
	require.NoError(t, cache.Refresh(context.Background()))
	require.NoError(t, cache.Append(context.Background(), orderEvent("251119AA", "IN")))

	assert.Equal(t, 1, store.appends)
	assert.Len(t, store.events, 1)

	events, err := cache.EventsByOrder(context.Background(), "251119AA")
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, 1, store.reads, "append must not trigger a reload")
}

func TestAppend_RemoteFailureLeavesSnapshotClean(t *testing.T) {
	store := &fakeStore{}
	cache := NewCache(store, nil)
	require.NoError(t, cache.Refresh(context.Background()))

	store.appendErr = errors.New("write failed")
	err := cache.Append(context.Background(), orderEvent("251119AA", "IN"))
	require.Error(t, err)

	events, queryErr := cache.EventsByOrder(context.Background(), "251119AA")
	require.NoError(t, queryErr)
	assert.Empty(t, events, "failed remote write must not appear in the snapshot")
}

func TestRefresh_ReplacesSnapshot(t *testing.T) {
	store := &fakeStore{events: []models.Event{orderEvent("251119AA", "IN")}}
	cache := NewCache(store, nil)
	require.NoError(t, cache.Refresh(context.Background()))

	store.events = []models.Event{orderEvent("251119AB", "IN")}
	require.NoError(t, cache.Refresh(context.Background()))

	events, err := cache.EventsByOrder(context.Background(), "251119AA")
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = cache.EventsByOrder(context.Background(), "251119AB")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestEventsByBarcode_NormalizesURLForm(t *testing.T) {
	scanned := "251119AA-P1-ST352-A1-01-G-0100-CD5"
	minted := "251119AA-P2-ST352-A1-01-G-0100-1A0"
	store := &fakeStore{events: []models.Event{
		{Order: "251119AA", ScannedBarcode: "https://wip.example.com/b=" + scanned, NewBarcode: minted},
		{Order: "251119AB", ScannedBarcode: "OTHER"},
	}}
	cache := NewCache(store, nil)

	t.Run("bare code matches URL-embedded scan", func(t *testing.T) {
		events, err := cache.EventsByBarcode(context.Background(), scanned)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "251119AA", events[0].Order)
	})

	t.Run("URL query matches minted code", func(t *testing.T) {
		events, err := cache.EventsByBarcode(context.Background(), "https://other.host/b="+minted)
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("no match", func(t *testing.T) {
		events, err := cache.EventsByBarcode(context.Background(), "251119ZZ-P1-ST352-A1-01-G-0100-000")
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
