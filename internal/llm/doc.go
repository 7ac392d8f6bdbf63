// Package llm provides a minimal HTTP client for an Ollama-compatible
// text-generation endpoint. The service is an untrusted collaborator: it
// may be slow, unavailable, or return text that ignores the prompt's
// formatting instructions. This package only reports such failures; the
// intent extractor owns the degradation policy.
package llm
