// Package tools implements the tool registry, the dispatcher, and the
// calendar operation handlers.
//
// The dispatcher is the trust boundary between parsed free text and
// deterministic state mutation: requests arrive with loosely-typed argument
// maps, handlers coerce and validate locally, and every handler failure,
// including a panic, is converted to a failed response rather than an
// error that could crash the orchestrating request.
package tools
