// Package event defines the calendar event domain model and the Store
// contract used by the tool handlers, together with an in-memory Store
// implementation.
//
// Stores provide per-call atomicity only. Cancellation is a domain
// operation: Cancel marks the event cancelled and declines all attendees
// in a single call, so the cascade cannot be skipped by callers.
package event
