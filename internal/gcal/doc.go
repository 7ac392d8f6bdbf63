// Package gcal implements the event store on top of the Google Calendar
// API.
//
// The store operates on a single calendar (the account's primary calendar
// by default) and maps domain events onto Google Calendar events. The
// client reference id used for idempotent creation travels as a private
// extended property, so duplicate-create detection works across restarts.
//
// Authentication uses an OAuth2 token cached under the user cache
// directory. Client credentials are read from SCHEDDY_GOOGLE_CLIENT_ID and
// SCHEDDY_GOOGLE_CLIENT_SECRET.
package gcal
