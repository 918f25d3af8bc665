package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// ValidationError reports a single invalid field in a PublicChatRequest.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

var functionNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Validate checks the invariants spec.md §3 places on PublicChatRequest and
// its nested messages/tools. It does not mutate the request.
func (r *PublicChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return invalid("messages", "messages array cannot be empty")
	}

	if r.Temperature != nil && (*r.Temperature < 0 || *r.Temperature > 2) {
		return invalid("temperature", "must be between 0.0 and 2.0")
	}

	if r.TopP != nil && (*r.TopP < 0 || *r.TopP > 1) {
		return invalid("top_p", "must be between 0.0 and 1.0")
	}

	if r.MaxTokens != nil && *r.MaxTokens <= 0 {
		return invalid("max_tokens", "must be positive")
	}

	if r.N != nil {
		if *r.N < 1 || *r.N > 10 {
			return invalid("n", "must be between 1 and 10")
		}
		if *r.N > 1 && r.Stream {
			return invalid("stream", "streaming is not supported when n > 1")
		}
	}

	if len(r.ToolChoice) > 0 && string(r.ToolChoice) != "null" && len(r.Tools) == 0 {
		return invalid("tool_choice", "tool_choice requires a non-empty tools array")
	}

	for i, tool := range r.Tools {
		if tool.Type != ToolTypeFunction {
			return invalid(fmt.Sprintf("tools[%d].type", i), "must be %q", ToolTypeFunction)
		}
		if tool.Function.Name == "" {
			return invalid(fmt.Sprintf("tools[%d].function.name", i), "must be non-empty")
		}
		if !functionNamePattern.MatchString(tool.Function.Name) {
			return invalid(fmt.Sprintf("tools[%d].function.name", i), "must match [A-Za-z0-9_]+")
		}
	}

	for i, msg := range r.Messages {
		if err := msg.validate(i); err != nil {
			return err
		}
	}

	return nil
}

func (m *PublicMessage) validate(index int) error {
	switch m.Role {
	case RolePublicSystem, RolePublicUser, RolePublicAssistant, RolePublicTool:
	default:
		return invalid(fmt.Sprintf("messages[%d].role", index), "unknown role %q", m.Role)
	}

	if m.Role == RolePublicTool && !hasNonEmptyContent(m.Content) {
		return invalid(fmt.Sprintf("messages[%d].content", index), "tool messages must carry non-empty content")
	}

	if len(m.ToolCalls) > 0 && m.Role != RolePublicAssistant {
		return invalid(fmt.Sprintf("messages[%d].tool_calls", index), "tool_calls permitted only on role assistant")
	}

	return nil
}

func hasNonEmptyContent(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s != ""
	}
	var arr []PublicContentPart
	if err := json.Unmarshal(raw, &arr); err == nil {
		return len(arr) > 0
	}
	return false
}
