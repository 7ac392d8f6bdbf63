package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/scheddy/scheddy/internal/event"
	"github.com/scheddy/scheddy/internal/schedule"
)

// Tool names for the calendar operation set. The set is fixed and small;
// handlers are registered ahead of time, never discovered dynamically.
const (
	ToolSaveEvent         = "calendar.save_event"
	ToolUpdateEvent       = "calendar.update_event"
	ToolCancelEvent       = "calendar.cancel_event"
	ToolFindEvents        = "calendar.find_events"
	ToolCheckAvailability = "calendar.check_availability"
	ToolSuggestTimes      = "calendar.suggest_times"
)

// defaultEventTitle is used when save_event receives no title; creation
// never rejects a command for a missing title.
const defaultEventTitle = "Untitled Event"

// SaveResult is the result payload of calendar.save_event.
type SaveResult struct {
	Event    *event.Event `json:"event"`
	Message  string       `json:"message"`
	Warnings []string     `json:"warnings,omitempty"`
}

// UpdateResult is the result payload of calendar.update_event.
type UpdateResult struct {
	Event   *event.Event `json:"event"`
	Message string       `json:"message"`
}

// CancelResult is the result payload of calendar.cancel_event.
type CancelResult struct {
	Event   *event.Event `json:"event"`
	Message string       `json:"message"`
}

// FindResult is the result payload of calendar.find_events.
type FindResult struct {
	Events []*event.Event `json:"events"`
	Count  int            `json:"count"`
}

// SuggestResult is the result payload of calendar.suggest_times.
type SuggestResult struct {
	Slots []schedule.Slot `json:"slots"`
	Count int             `json:"count"`
}

// EventGauge tracks the number of active events on the calendar. Satisfied
// by instrumentation.Metrics; kept as a local interface so this package
// does not depend on the instrumentation wiring.
type EventGauge interface {
	AddActiveEvents(ctx context.Context, delta int64)
}

// CalendarTools implements the calendar operation handlers over an event
// store. Each handler coerces its loosely-typed arguments locally; there is
// no shared generic validator.
type CalendarTools struct {
	store event.Store
	gauge EventGauge
}

// NewCalendarTools creates the handler set over the given store.
func NewCalendarTools(store event.Store) *CalendarTools {
	return &CalendarTools{store: store}
}

// SetGauge attaches a gauge that follows event creations and cancellations.
func (ct *CalendarTools) SetGauge(g EventGauge) {
	ct.gauge = g
}

// RegisterCalendarTools registers the calendar tool catalog with the
// registry and returns the handler set so the server can attach metrics
// once instrumentation is configured.
func RegisterCalendarTools(registry *Registry, store event.Store) *CalendarTools {
	ct := NewCalendarTools(store)

	registry.Register(Tool{
		Name:        ToolSaveEvent,
		Description: "Create a new calendar event",
		Parameters: []Param{
			{Name: "title", Type: "string", Description: "Event title (defaults to 'Untitled Event')"},
			{Name: "start", Type: "string", Description: "Start time (RFC3339)", Required: true},
			{Name: "end", Type: "string", Description: "End time (RFC3339)", Required: true},
			{Name: "description", Type: "string", Description: "Event description"},
			{Name: "location", Type: "string", Description: "Event location"},
			{Name: "attendees", Type: "string", Description: "Comma-separated attendee email addresses"},
			{Name: "client_reference_id", Type: "string", Description: "Caller-supplied key for idempotent creation"},
		},
	}, ct.handleSaveEvent)

	registry.Register(Tool{
		Name:        ToolUpdateEvent,
		Description: "Update fields of an existing calendar event",
		Parameters: []Param{
			{Name: "id", Type: "string", Description: "Event id", Required: true},
			{Name: "title", Type: "string", Description: "New title"},
			{Name: "start", Type: "string", Description: "New start time (RFC3339)"},
			{Name: "end", Type: "string", Description: "New end time (RFC3339)"},
			{Name: "description", Type: "string", Description: "New description"},
			{Name: "location", Type: "string", Description: "New location"},
		},
	}, ct.handleUpdateEvent)

	registry.Register(Tool{
		Name:        ToolCancelEvent,
		Description: "Cancel a calendar event and decline all attendees",
		Parameters: []Param{
			{Name: "id", Type: "string", Description: "Event id", Required: true},
			{Name: "reason", Type: "string", Description: "Human-supplied cancellation reason"},
		},
	}, ct.handleCancelEvent)

	registry.Register(Tool{
		Name:        ToolFindEvents,
		Description: "Find calendar events matching optional filters",
		Parameters: []Param{
			{Name: "start_date", Type: "string", Description: "Inclusive lower bound on event start (RFC3339)"},
			{Name: "end_date", Type: "string", Description: "Inclusive upper bound on event start (RFC3339)"},
			{Name: "title", Type: "string", Description: "Case-insensitive title substring"},
			{Name: "location", Type: "string", Description: "Case-insensitive location substring"},
			{Name: "status", Type: "string", Description: "Event status (confirmed, tentative, cancelled)"},
		},
	}, ct.handleFindEvents)

	registry.Register(Tool{
		Name:        ToolCheckAvailability,
		Description: "Check whether a time interval is free of conflicting events",
		Parameters: []Param{
			{Name: "start", Type: "string", Description: "Interval start (RFC3339)", Required: true},
			{Name: "end", Type: "string", Description: "Interval end (RFC3339)", Required: true},
			{Name: "exclude_id", Type: "string", Description: "Event id to ignore (used when rescheduling)"},
		},
	}, ct.handleCheckAvailability)

	registry.Register(Tool{
		Name:        ToolSuggestTimes,
		Description: "Suggest free time slots for a meeting",
		Parameters: []Param{
			{Name: "duration_minutes", Type: "number", Description: "Meeting length in minutes (default 60)"},
			{Name: "window_start", Type: "string", Description: "Search window start (default now)"},
			{Name: "window_end", Type: "string", Description: "Search window end (default one week out)"},
			{Name: "limit", Type: "number", Description: "Maximum number of slots (default 5)"},
		},
	}, ct.handleSuggestTimes)

	return ct
}

func (ct *CalendarTools) handleSaveEvent(ctx context.Context, args map[string]any) (any, error) {
	title := argString(args, "title")
	if title == "" {
		title = defaultEventTitle
	}

	start, err := argTime(args, "start")
	if err != nil {
		return nil, err
	}
	end, err := argTime(args, "end")
	if err != nil {
		return nil, err
	}
	if !end.After(start) {
		return nil, fmt.Errorf("end time must be after start time")
	}

	ev := &event.Event{
		Title:             title,
		Description:       argString(args, "description"),
		Location:          argString(args, "location"),
		Start:             start,
		End:               end,
		Status:            event.StatusConfirmed,
		ClientReferenceID: argString(args, "client_reference_id"),
	}

	if attendeesStr := argString(args, "attendees"); attendeesStr != "" {
		for _, email := range strings.Split(attendeesStr, ",") {
			email = strings.TrimSpace(email)
			if email != "" {
				ev.Attendees = append(ev.Attendees, event.Attendee{
					Email:  email,
					Status: event.AttendeeNeedsAction,
				})
			}
		}
	}

	// A conflicting interval is a warning, not a rejection; double-booking
	// is the user's call.
	var warnings []string
	if existing, listErr := ct.store.List(ctx); listErr == nil {
		for _, c := range schedule.Conflicts(start, end, existing, "") {
			warnings = append(warnings, fmt.Sprintf("overlaps with %q (%s - %s)",
				c.Title, c.Start.Format(time.RFC3339), c.End.Format(time.RFC3339)))
		}
	}

	created, err := ct.store.Create(ctx, ev)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	if ct.gauge != nil {
		ct.gauge.AddActiveEvents(ctx, 1)
	}

	return &SaveResult{
		Event:    created,
		Message:  fmt.Sprintf("Created event %q", created.Title),
		Warnings: warnings,
	}, nil
}

func (ct *CalendarTools) handleUpdateEvent(ctx context.Context, args map[string]any) (any, error) {
	id := argString(args, "id")
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}

	existing, err := ct.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("event %q: %w", id, err)
	}

	// Partial update: only fields present in the argument map overwrite the
	// stored values.
	if argPresent(args, "title") {
		existing.Title = argString(args, "title")
	}
	if argPresent(args, "description") {
		existing.Description = argString(args, "description")
	}
	if argPresent(args, "location") {
		existing.Location = argString(args, "location")
	}
	if start, err := argOptionalTime(args, "start"); err != nil {
		return nil, err
	} else if !start.IsZero() {
		existing.Start = start
	}
	if end, err := argOptionalTime(args, "end"); err != nil {
		return nil, err
	} else if !end.IsZero() {
		existing.End = end
	}

	if !existing.End.After(existing.Start) {
		return nil, fmt.Errorf("end time must be after start time")
	}

	updated, err := ct.store.Update(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return &UpdateResult{
		Event:   updated,
		Message: fmt.Sprintf("Updated event %q", updated.Title),
	}, nil
}

func (ct *CalendarTools) handleCancelEvent(ctx context.Context, args map[string]any) (any, error) {
	id := argString(args, "id")
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}

	cancelled, err := ct.store.Cancel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("event %q: %w", id, err)
	}
	if ct.gauge != nil {
		ct.gauge.AddActiveEvents(ctx, -1)
	}

	// The reason lives in the response message only; the store does not
	// persist it.
	msg := fmt.Sprintf("Cancelled event %q", cancelled.Title)
	if reason := argString(args, "reason"); reason != "" {
		msg = fmt.Sprintf("%s (%s)", msg, reason)
	}

	return &CancelResult{Event: cancelled, Message: msg}, nil
}

func (ct *CalendarTools) handleFindEvents(ctx context.Context, args map[string]any) (any, error) {
	startDate, err := argOptionalTime(args, "start_date")
	if err != nil {
		return nil, err
	}
	endDate, err := argOptionalTime(args, "end_date")
	if err != nil {
		return nil, err
	}
	titleFilter := strings.ToLower(argString(args, "title"))
	locationFilter := strings.ToLower(argString(args, "location"))
	statusFilter := event.Status(argString(args, "status"))

	all, err := ct.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	// Filters combine conjunctively.
	matched := make([]*event.Event, 0, len(all))
	for _, ev := range all {
		if !startDate.IsZero() && ev.Start.Before(startDate) {
			continue
		}
		if !endDate.IsZero() && ev.Start.After(endDate) {
			continue
		}
		if titleFilter != "" && !strings.Contains(strings.ToLower(ev.Title), titleFilter) {
			continue
		}
		if locationFilter != "" && !strings.Contains(strings.ToLower(ev.Location), locationFilter) {
			continue
		}
		if statusFilter != "" && ev.Status != statusFilter {
			continue
		}
		matched = append(matched, ev)
	}

	return &FindResult{Events: matched, Count: len(matched)}, nil
}

func (ct *CalendarTools) handleCheckAvailability(ctx context.Context, args map[string]any) (any, error) {
	start, err := argTime(args, "start")
	if err != nil {
		return nil, err
	}
	end, err := argTime(args, "end")
	if err != nil {
		return nil, err
	}

	all, err := ct.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	availability := schedule.CheckAvailability(start, end, all, argString(args, "exclude_id"))
	return &availability, nil
}

func (ct *CalendarTools) handleSuggestTimes(ctx context.Context, args map[string]any) (any, error) {
	duration := time.Duration(argInt(args, "duration_minutes", 60)) * time.Minute
	limit := argInt(args, "limit", 5)

	windowStart, err := argOptionalTime(args, "window_start")
	if err != nil {
		return nil, err
	}
	if windowStart.IsZero() {
		windowStart = time.Now().UTC().Truncate(slotStepTruncation).Add(slotStepTruncation)
	}

	windowEnd, err := argOptionalTime(args, "window_end")
	if err != nil {
		return nil, err
	}
	if windowEnd.IsZero() {
		windowEnd = windowStart.Add(7 * 24 * time.Hour)
	}

	all, err := ct.store.ListRange(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	slots := schedule.SuggestSlots(windowStart, windowEnd, duration, all, limit)
	return &SuggestResult{Slots: slots, Count: len(slots)}, nil
}

// slotStepTruncation aligns a defaulted window start to a clean quarter
// hour so suggested slots do not begin at odd seconds.
const slotStepTruncation = 15 * time.Minute
