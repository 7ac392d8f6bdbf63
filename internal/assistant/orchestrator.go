package assistant

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/scheddy/scheddy/internal/event"
	"github.com/scheddy/scheddy/internal/intent"
	"github.com/scheddy/scheddy/internal/logging"
	"github.com/scheddy/scheddy/internal/schedule"
	"github.com/scheddy/scheddy/internal/tools"
)

// Stable error codes for failed results, so callers can distinguish input
// problems from collaborator failures without parsing messages.
const (
	CodeEmptyCommand     = "empty_command"
	CodeExtractionFailed = "extraction_failed"
	CodeExecutionFailed  = "execution_failed"
)

// Result is the aggregate outcome of processing one command.
type Result struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message"`
	Code        string            `json:"code,omitempty"`
	Operation   *intent.Operation `json:"operation,omitempty"`
	Event       *event.Event      `json:"event,omitempty"`
	Events      []*event.Event    `json:"events,omitempty"`
	Suggestions []schedule.Slot   `json:"suggestions,omitempty"`
}

// Extractor is the intent extraction contract consumed by the
// orchestrator. Implemented by intent.Extractor.
type Extractor interface {
	Extract(ctx context.Context, rawText string, reqContext map[string]string) (*intent.Operation, error)
}

// kindToTool is the fixed mapping from operation kind to tool name.
// Anything not listed, including unknown, routes to find_events: when
// unsure, search rather than mutate.
var kindToTool = map[intent.Kind]string{
	intent.KindCreateEvent:        tools.ToolSaveEvent,
	intent.KindUpdateEvent:        tools.ToolUpdateEvent,
	intent.KindDeleteEvent:        tools.ToolCancelEvent,
	intent.KindFindEvent:          tools.ToolFindEvents,
	intent.KindCheckAvailability:  tools.ToolCheckAvailability,
	intent.KindSuggestMeetingTime: tools.ToolSuggestTimes,
}

// Orchestrator sequences the pipeline: extract, map to a tool call,
// dispatch, synthesize. Each call is an independent, stateless request.
type Orchestrator struct {
	extractor   Extractor
	dispatcher  *tools.Dispatcher
	synthesizer *Synthesizer
	logger      *slog.Logger
}

// NewOrchestrator wires the pipeline components together.
func NewOrchestrator(extractor Extractor, dispatcher *tools.Dispatcher, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		extractor:   extractor,
		dispatcher:  dispatcher,
		synthesizer: NewSynthesizer(),
		logger:      logger,
	}
}

// Process runs one command through the pipeline. It always returns a
// Result; no failure path leaves the caller without a response.
func (o *Orchestrator) Process(ctx context.Context, rawText string, reqContext map[string]string) *Result {
	if strings.TrimSpace(rawText) == "" {
		return &Result{
			Success: false,
			Code:    CodeEmptyCommand,
			Message: "Please provide a command describing what you want to do.",
		}
	}

	op, err := o.extractor.Extract(ctx, rawText, reqContext)
	if err != nil || op == nil {
		o.logger.Warn("intent extraction failed", logging.Command(rawText), logging.Err(err))
		return &Result{
			Success: false,
			Code:    CodeExtractionFailed,
			Message: "I couldn't understand that command. Check that the local model service is running.",
		}
	}

	toolName, ok := kindToTool[op.Kind]
	if !ok {
		toolName = tools.ToolFindEvents
	}

	resp := o.dispatcher.Dispatch(ctx, tools.Request{
		ID:        op.ID,
		Tool:      toolName,
		Arguments: o.buildArguments(op, toolName, reqContext),
	})

	o.logger.Info("command processed",
		logging.Command(rawText),
		logging.Operation(string(op.Kind)),
		logging.Tool(toolName),
		logging.Status(statusOf(resp.Success)),
	)

	if !resp.Success {
		return &Result{
			Success:   false,
			Code:      CodeExecutionFailed,
			Message:   o.synthesizer.SynthesizeFailure(op, resp.Error),
			Operation: op,
		}
	}

	result := &Result{
		Success:   true,
		Message:   o.synthesizer.Synthesize(op, resp.Result),
		Operation: op,
	}
	attachPayload(result, resp.Result)
	return result
}

// buildArguments maps the Operation's draft, entities and request context
// onto the target tool's argument names. Values that came from the parse
// may be absent; handlers own the final validation.
func (o *Orchestrator) buildArguments(op *intent.Operation, toolName string, reqContext map[string]string) map[string]any {
	args := make(map[string]any)
	draft := op.Draft
	if draft == nil {
		draft = &intent.Draft{}
	}

	switch toolName {
	case tools.ToolSaveEvent:
		if draft.Title != "" {
			args["title"] = draft.Title
		}
		if draft.Description != "" {
			args["description"] = draft.Description
		}
		if draft.Location != "" {
			args["location"] = draft.Location
		}
		if !draft.Start.IsZero() {
			args["start"] = draft.Start
		}
		if !draft.End.IsZero() {
			args["end"] = draft.End
		}
		if ref := reqContext["client_reference_id"]; ref != "" {
			args["client_reference_id"] = ref
		}

	case tools.ToolUpdateEvent, tools.ToolCancelEvent:
		if id := reqContext["event_id"]; id != "" {
			args["id"] = id
		}
		if toolName == tools.ToolUpdateEvent {
			if draft.Title != "" {
				args["title"] = draft.Title
			}
			if draft.Location != "" {
				args["location"] = draft.Location
			}
			if !draft.Start.IsZero() {
				args["start"] = draft.Start
			}
			if !draft.End.IsZero() {
				args["end"] = draft.End
			}
		}

	case tools.ToolFindEvents:
		if draft.Title != "" {
			args["title"] = draft.Title
		}
		if draft.Location != "" {
			args["location"] = draft.Location
		}
		if !draft.Start.IsZero() {
			args["start_date"] = draft.Start
		}
		if !draft.End.IsZero() {
			args["end_date"] = draft.End
		}
		// The joined entities and intent summary travel along as a free-text
		// query; the handler ignores keys it does not filter on.
		if len(op.Entities) > 0 {
			args["query"] = strings.Join(op.Entities, " ")
		}
		if op.Intent != "" {
			args["intent"] = op.Intent
		}

	case tools.ToolCheckAvailability:
		if !draft.Start.IsZero() {
			args["start"] = draft.Start
		}
		if !draft.End.IsZero() {
			args["end"] = draft.End
		}
		if id := reqContext["event_id"]; id != "" {
			args["exclude_id"] = id
		}

	case tools.ToolSuggestTimes:
		if !draft.Start.IsZero() {
			args["window_start"] = draft.Start
		}
		if !draft.End.IsZero() {
			args["window_end"] = draft.End
		}
		if !draft.Start.IsZero() && draft.End.After(draft.Start) {
			if minutes := int(draft.End.Sub(draft.Start) / time.Minute); minutes > 0 {
				args["duration_minutes"] = minutes
			}
		}
	}

	return args
}

// attachPayload lifts handler-specific result payloads into the aggregate
// Result fields the caller consumes.
func attachPayload(result *Result, payload any) {
	switch r := payload.(type) {
	case *tools.SaveResult:
		result.Event = r.Event
	case *tools.UpdateResult:
		result.Event = r.Event
	case *tools.CancelResult:
		result.Event = r.Event
	case *tools.FindResult:
		result.Events = r.Events
	case *tools.SuggestResult:
		result.Suggestions = r.Slots
	}
}

func statusOf(success bool) string {
	if success {
		return logging.StatusSuccess
	}
	return logging.StatusError
}

// Example is a static sample command served by the examples endpoint.
type Example struct {
	Command     string `json:"command"`
	Description string `json:"description"`
}

// Examples returns sample commands demonstrating each operation kind.
func Examples() []Example {
	return []Example{
		{Command: "Schedule a team standup tomorrow at 9am for 30 minutes", Description: "Create an event"},
		{Command: "Move the client call to 3pm tomorrow", Description: "Update an event"},
		{Command: "Cancel my 10am appointment", Description: "Cancel an event"},
		{Command: "What meetings do I have this week?", Description: "Find events"},
		{Command: "Am I free on Friday between 2pm and 4pm?", Description: "Check availability"},
		{Command: "Find an hour for a design review next week", Description: "Suggest meeting times"},
	}
}
