// Package intent converts free-text calendar commands into typed,
// confidence-scored Operations by prompting an external text-generation
// endpoint and salvaging whatever comes back.
//
// The model is untrusted: its reply may wrap the requested JSON in prose,
// violate the schema, or be nonsense. The extractor therefore never fails
// on malformed output; it degrades to a low-confidence unknown Operation
// that downstream routing treats as a search, not a mutation. Only an
// unreachable endpoint surfaces as an error.
package intent
