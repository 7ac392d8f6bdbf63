// Package assistant contains the top-level command pipeline: the
// Orchestrator sequences intent extraction, tool dispatch and response
// synthesis, and the Synthesizer renders confirmation messages.
//
// Routing is deliberately conservative: an operation the extractor could
// not classify is sent to the search tool, never to a mutating one.
package assistant
