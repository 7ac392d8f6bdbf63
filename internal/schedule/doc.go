// Package schedule implements pure time-interval computations: conflict
// detection over half-open intervals and free-slot suggestion. It has no
// dependency beyond the event set passed in, which keeps it trivially
// testable and usable from both tool handlers and pre-save warnings.
package schedule
