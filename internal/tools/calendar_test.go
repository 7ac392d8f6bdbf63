package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scheddy/scheddy/internal/event"
	"github.com/scheddy/scheddy/internal/schedule"
)

func newCalendarFixture(t *testing.T) (*CalendarTools, *event.MemoryStore) {
	t.Helper()
	store := event.NewMemoryStore()
	return NewCalendarTools(store), store
}

func seedEvent(t *testing.T, store *event.MemoryStore, title string, start, end time.Time) *event.Event {
	t.Helper()
	created, err := store.Create(context.Background(), &event.Event{
		Title:  title,
		Start:  start,
		End:    end,
		Status: event.StatusConfirmed,
	})
	require.NoError(t, err)
	return created
}

func ts(hour, min int) time.Time {
	return time.Date(2025, 6, 10, hour, min, 0, 0, time.UTC)
}

func TestSaveEvent(t *testing.T) {
	ct, _ := newCalendarFixture(t)

	result, err := ct.handleSaveEvent(context.Background(), map[string]any{
		"title": "Client call",
		"start": "2025-06-11T15:00:00Z",
		"end":   "2025-06-11T16:00:00Z",
	})
	require.NoError(t, err)

	save := result.(*SaveResult)
	assert.Equal(t, "Client call", save.Event.Title)
	assert.Equal(t, event.StatusConfirmed, save.Event.Status)
	assert.NotEmpty(t, save.Event.ID)
	assert.Empty(t, save.Warnings)
}

func TestSaveEventDefaultTitle(t *testing.T) {
	ct, _ := newCalendarFixture(t)

	result, err := ct.handleSaveEvent(context.Background(), map[string]any{
		"start": "2025-06-11T15:00:00Z",
		"end":   "2025-06-11T16:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "Untitled Event", result.(*SaveResult).Event.Title)
}

func TestSaveEventMissingTimes(t *testing.T) {
	ct, _ := newCalendarFixture(t)

	_, err := ct.handleSaveEvent(context.Background(), map[string]any{"title": "X"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start is required")

	_, err = ct.handleSaveEvent(context.Background(), map[string]any{
		"title": "X",
		"start": "2025-06-11T15:00:00Z",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end is required")
}

func TestSaveEventInvertedInterval(t *testing.T) {
	ct, _ := newCalendarFixture(t)

	_, err := ct.handleSaveEvent(context.Background(), map[string]any{
		"start": "2025-06-11T16:00:00Z",
		"end":   "2025-06-11T15:00:00Z",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end time must be after start time")
}

func TestSaveEventTimeArgsAsTimeValues(t *testing.T) {
	ct, _ := newCalendarFixture(t)

	// The orchestrator passes draft times as time.Time, not strings.
	result, err := ct.handleSaveEvent(context.Background(), map[string]any{
		"title": "Typed times",
		"start": ts(9, 0),
		"end":   ts(10, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, ts(9, 0), result.(*SaveResult).Event.Start)
}

func TestSaveEventConflictWarning(t *testing.T) {
	ct, store := newCalendarFixture(t)
	seedEvent(t, store, "Existing", ts(14, 0), ts(15, 0))

	result, err := ct.handleSaveEvent(context.Background(), map[string]any{
		"title": "Overlap",
		"start": "2025-06-10T14:30:00Z",
		"end":   "2025-06-10T15:30:00Z",
	})
	require.NoError(t, err)

	save := result.(*SaveResult)
	require.Len(t, save.Warnings, 1)
	assert.Contains(t, save.Warnings[0], "Existing")
}

func TestSaveEventAttendees(t *testing.T) {
	ct, _ := newCalendarFixture(t)

	result, err := ct.handleSaveEvent(context.Background(), map[string]any{
		"start":     "2025-06-11T15:00:00Z",
		"end":       "2025-06-11T16:00:00Z",
		"attendees": "a@example.com, b@example.com,,",
	})
	require.NoError(t, err)

	attendees := result.(*SaveResult).Event.Attendees
	require.Len(t, attendees, 2)
	assert.Equal(t, "a@example.com", attendees[0].Email)
	assert.Equal(t, event.AttendeeNeedsAction, attendees[0].Status)
}

func TestSaveEventIdempotentReference(t *testing.T) {
	ct, store := newCalendarFixture(t)

	args := map[string]any{
		"title":               "Once",
		"start":               "2025-06-11T15:00:00Z",
		"end":                 "2025-06-11T16:00:00Z",
		"client_reference_id": "ref-42",
	}

	first, err := ct.handleSaveEvent(context.Background(), args)
	require.NoError(t, err)
	second, err := ct.handleSaveEvent(context.Background(), args)
	require.NoError(t, err)

	assert.Equal(t, first.(*SaveResult).Event.ID, second.(*SaveResult).Event.ID)

	all, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

type fakeEventGauge struct {
	total int64
}

func (f *fakeEventGauge) AddActiveEvents(_ context.Context, delta int64) {
	f.total += delta
}

func TestEventGaugeFollowsSaveAndCancel(t *testing.T) {
	ct, _ := newCalendarFixture(t)
	gauge := &fakeEventGauge{}
	ct.SetGauge(gauge)

	result, err := ct.handleSaveEvent(context.Background(), map[string]any{
		"title": "Client call",
		"start": "2025-06-11T15:00:00Z",
		"end":   "2025-06-11T16:00:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), gauge.total)

	save := result.(*SaveResult)
	_, err = ct.handleCancelEvent(context.Background(), map[string]any{
		"id": save.Event.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), gauge.total)

	// Failed operations leave the gauge untouched.
	_, err = ct.handleCancelEvent(context.Background(), map[string]any{"id": "nope"})
	require.Error(t, err)
	assert.Equal(t, int64(0), gauge.total)
}

func TestUpdateEventPartialMerge(t *testing.T) {
	ct, store := newCalendarFixture(t)
	existing := seedEvent(t, store, "A", ts(14, 0), ts(15, 0))
	existing.Location = "Room X"
	_, err := store.Update(context.Background(), existing)
	require.NoError(t, err)

	result, err := ct.handleUpdateEvent(context.Background(), map[string]any{
		"id":    existing.ID,
		"title": "B",
	})
	require.NoError(t, err)

	updated := result.(*UpdateResult).Event
	assert.Equal(t, "B", updated.Title)
	assert.Equal(t, "Room X", updated.Location)
	assert.Equal(t, ts(14, 0), updated.Start)
}

func TestUpdateEventMissingID(t *testing.T) {
	ct, _ := newCalendarFixture(t)

	_, err := ct.handleUpdateEvent(context.Background(), map[string]any{"title": "B"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id is required")
}

func TestUpdateEventUnresolvableID(t *testing.T) {
	ct, _ := newCalendarFixture(t)

	// Outsized or non-numeric ids are a not-found condition, never a crash.
	for _, id := range []string{"999999999999999999999999", "definitely-not-an-id"} {
		_, err := ct.handleUpdateEvent(context.Background(), map[string]any{"id": id, "title": "B"})
		require.Error(t, err)
		assert.ErrorIs(t, err, event.ErrNotFound)
	}
}

func TestUpdateEventValidatesMergedTimes(t *testing.T) {
	ct, store := newCalendarFixture(t)
	existing := seedEvent(t, store, "A", ts(14, 0), ts(15, 0))

	// Moving the start past the existing end must fail after the merge.
	_, err := ct.handleUpdateEvent(context.Background(), map[string]any{
		"id":    existing.ID,
		"start": "2025-06-10T16:00:00Z",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end time must be after start time")
}

func TestCancelEvent(t *testing.T) {
	ct, store := newCalendarFixture(t)
	existing := seedEvent(t, store, "Doomed", ts(14, 0), ts(15, 0))

	result, err := ct.handleCancelEvent(context.Background(), map[string]any{
		"id":     existing.ID,
		"reason": "organizer is out sick",
	})
	require.NoError(t, err)

	cancel := result.(*CancelResult)
	assert.Equal(t, event.StatusCancelled, cancel.Event.Status)
	assert.Contains(t, cancel.Message, "organizer is out sick")

	// The reason is not persisted.
	stored, err := store.GetByID(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, event.StatusCancelled, stored.Status)
}

func TestCancelEventMissing(t *testing.T) {
	ct, _ := newCalendarFixture(t)

	_, err := ct.handleCancelEvent(context.Background(), map[string]any{"id": "missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, event.ErrNotFound)

	_, err = ct.handleCancelEvent(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id is required")
}

func TestFindEventsNoFilters(t *testing.T) {
	ct, store := newCalendarFixture(t)
	seedEvent(t, store, "One", ts(9, 0), ts(10, 0))
	seedEvent(t, store, "Two", ts(11, 0), ts(12, 0))

	result, err := ct.handleFindEvents(context.Background(), map[string]any{})
	require.NoError(t, err)

	find := result.(*FindResult)
	assert.Equal(t, 2, find.Count)
	assert.Len(t, find.Events, 2)
}

func TestFindEventsConjunctiveFilters(t *testing.T) {
	ct, store := newCalendarFixture(t)
	seedEvent(t, store, "Team Standup", ts(9, 0), ts(9, 30))
	office := seedEvent(t, store, "Team Lunch", ts(12, 0), ts(13, 0))
	office.Location = "Cafeteria"
	_, err := store.Update(context.Background(), office)
	require.NoError(t, err)

	tests := []struct {
		name string
		args map[string]any
		want int
	}{
		{"title substring case-insensitive", map[string]any{"title": "team"}, 2},
		{"title and location", map[string]any{"title": "team", "location": "cafe"}, 1},
		{"start_date bound", map[string]any{"start_date": "2025-06-10T10:00:00Z"}, 1},
		{"end_date bound", map[string]any{"end_date": "2025-06-10T10:00:00Z"}, 1},
		{"status filter", map[string]any{"status": "confirmed"}, 2},
		{"no match", map[string]any{"title": "retro"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ct.handleFindEvents(context.Background(), tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.(*FindResult).Count)
		})
	}
}

func TestCheckAvailability(t *testing.T) {
	ct, store := newCalendarFixture(t)
	seedEvent(t, store, "Busy", ts(14, 0), ts(15, 0))

	result, err := ct.handleCheckAvailability(context.Background(), map[string]any{
		"start": "2025-06-10T14:30:00Z",
		"end":   "2025-06-10T15:30:00Z",
	})
	require.NoError(t, err)

	avail := result.(*schedule.Availability)
	assert.False(t, avail.Available)
	assert.Equal(t, 1, avail.ConflictCount)
}

func TestCheckAvailabilityCancelledIgnored(t *testing.T) {
	ct, store := newCalendarFixture(t)
	busy := seedEvent(t, store, "Busy", ts(14, 0), ts(15, 0))
	_, err := store.Cancel(context.Background(), busy.ID)
	require.NoError(t, err)

	result, err := ct.handleCheckAvailability(context.Background(), map[string]any{
		"start": "2025-06-10T14:30:00Z",
		"end":   "2025-06-10T15:30:00Z",
	})
	require.NoError(t, err)

	avail := result.(*schedule.Availability)
	assert.True(t, avail.Available)
	assert.Equal(t, 0, avail.ConflictCount)
}

func TestCheckAvailabilityExcludeID(t *testing.T) {
	ct, store := newCalendarFixture(t)
	busy := seedEvent(t, store, "Rescheduling", ts(14, 0), ts(15, 0))

	result, err := ct.handleCheckAvailability(context.Background(), map[string]any{
		"start":      "2025-06-10T14:30:00Z",
		"end":        "2025-06-10T15:30:00Z",
		"exclude_id": busy.ID,
	})
	require.NoError(t, err)
	assert.True(t, result.(*schedule.Availability).Available)
}

func TestCheckAvailabilityMissingArgs(t *testing.T) {
	ct, _ := newCalendarFixture(t)

	_, err := ct.handleCheckAvailability(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start is required")
}

func TestSuggestTimes(t *testing.T) {
	ct, store := newCalendarFixture(t)
	seedEvent(t, store, "Blocker", ts(9, 0), ts(12, 0))

	result, err := ct.handleSuggestTimes(context.Background(), map[string]any{
		"window_start":     "2025-06-10T09:00:00Z",
		"window_end":       "2025-06-10T17:00:00Z",
		"duration_minutes": float64(60),
		"limit":            float64(2),
	})
	require.NoError(t, err)

	suggest := result.(*SuggestResult)
	require.Equal(t, 2, suggest.Count)
	assert.Equal(t, ts(12, 0), suggest.Slots[0].Start)
}

func TestRegisterCalendarTools(t *testing.T) {
	reg := NewRegistry()
	RegisterCalendarTools(reg, event.NewMemoryStore())

	names := make(map[string]bool)
	for _, tool := range reg.List() {
		names[tool.Name] = true
	}

	for _, want := range []string{
		ToolSaveEvent, ToolUpdateEvent, ToolCancelEvent,
		ToolFindEvents, ToolCheckAvailability, ToolSuggestTimes,
	} {
		assert.True(t, names[want], "missing tool %s", want)
	}

	// Registering twice leaves the catalog unchanged.
	before := reg.Len()
	RegisterCalendarTools(reg, event.NewMemoryStore())
	assert.Equal(t, before, reg.Len())
}
