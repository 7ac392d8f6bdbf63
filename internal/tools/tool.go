package tools

import (
	"context"
)

// Param describes a single named parameter of a tool. The schema is
// documentation plus handler-side validation guidance; handlers perform
// their own coercion because argument values originate from parsed free
// text and may arrive as strings even for structured fields.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Tool is a named, schema-described unit of calendar functionality exposed
// for dispatch.
type Tool struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  []Param `json:"parameters,omitempty"`
}

// Handler executes a tool invocation. Errors returned here are converted to
// failed responses at the dispatch boundary and never propagate further.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Request is the dispatch envelope for a tool invocation. Arguments are
// loosely typed since they originate from parsed free text or client
// context.
type Request struct {
	ID        string         `json:"id"`
	Tool      string         `json:"tool"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// Response carries the outcome of a dispatched request. Its ID always
// equals the request's. Result is handler-specific; callers must not assume
// a shape beyond the handler's documented contract.
type Response struct {
	ID      string            `json:"id"`
	Success bool              `json:"success"`
	Result  any               `json:"result,omitempty"`
	Error   string            `json:"error,omitempty"`
	Meta    map[string]string `json:"meta,omitempty"`
}
