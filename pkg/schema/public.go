// Package schema defines the typed request/response shapes for both the
// public (OpenAI-style chat completions) and upstream (Gemini-style) wire
// formats, including tool-calling sub-schemas.
package schema

import "encoding/json"

// Role constants for PublicMessage.Role.
const (
	RolePublicSystem    = "system"
	RolePublicUser      = "user"
	RolePublicAssistant = "assistant"
	RolePublicTool      = "tool"
)

// ToolType is always "function" in the public schema.
const ToolTypeFunction = "function"

// PublicChatRequest is the public (OpenAI-style) chat completion request.
type PublicChatRequest struct {
	Model            string             `json:"model"`
	Messages         []PublicMessage    `json:"messages"`
	MaxTokens        *int               `json:"max_tokens,omitempty"`
	Temperature      *float64           `json:"temperature,omitempty"`
	TopP             *float64           `json:"top_p,omitempty"`
	Stream           bool               `json:"stream,omitempty"`
	Tools            []PublicToolDef    `json:"tools,omitempty"`
	ToolChoice       json.RawMessage    `json:"tool_choice,omitempty"`
	ResponseFormat   *PublicRespFormat  `json:"response_format,omitempty"`
	N                *int               `json:"n,omitempty"`
	ParallelToolCall *bool              `json:"parallel_tool_calls,omitempty"`
}

// PublicRespFormat carries the response_format hint.
type PublicRespFormat struct {
	Type string `json:"type"`
}

// PublicContentPart is one element of a list-form message content.
// Exactly one of Text or ImageURL is populated, selected by Type.
type PublicContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *PublicImageURL `json:"image_url,omitempty"`
}

// PublicImageURL is the image_url sub-object of a content part.
type PublicImageURL struct {
	URL string `json:"url"`
}

// PublicMessage is a single message in PublicChatRequest.Messages.
//
// Content is stored as raw JSON because it may be either a bare string or a
// list of PublicContentPart; callers use Message.ContentString/ContentParts
// to access it.
type PublicMessage struct {
	Role       string              `json:"role"`
	Content    json.RawMessage     `json:"content,omitempty"`
	Name       string              `json:"name,omitempty"`
	ToolCallID string              `json:"tool_call_id,omitempty"`
	ToolCalls  []PublicToolCall    `json:"tool_calls,omitempty"`
}

// ContentString returns the message content as a plain string, decoding a
// JSON string literal if that's how the content arrived. Returns false if
// the content is absent or is a list (use ContentParts for that case).
func (m *PublicMessage) ContentString() (string, bool) {
	if len(m.Content) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(m.Content, &s); err != nil {
		return "", false
	}
	return s, true
}

// ContentParts returns the message content as a list of content parts.
// Returns false if the content is absent or is a bare string.
func (m *PublicMessage) ContentParts() ([]PublicContentPart, bool) {
	if len(m.Content) == 0 {
		return nil, false
	}
	var parts []PublicContentPart
	if err := json.Unmarshal(m.Content, &parts); err != nil {
		return nil, false
	}
	return parts, true
}

// HasContent reports whether Content carries any value at all.
func (m *PublicMessage) HasContent() bool {
	return len(m.Content) > 0 && string(m.Content) != "null"
}

// PublicToolDef is a function tool definition offered to the model.
type PublicToolDef struct {
	Type     string              `json:"type"`
	Function PublicFunctionDef   `json:"function"`
}

// PublicFunctionDef describes a single callable function.
type PublicFunctionDef struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// PublicToolCall is a function call requested by the assistant.
type PublicToolCall struct {
	ID       string                `json:"id"`
	Type     string                `json:"type"`
	Function PublicFunctionCall    `json:"function"`
}

// PublicFunctionCall names the function and its JSON-encoded arguments.
type PublicFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// PublicChatResponse is the public non-streaming response envelope.
type PublicChatResponse struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []PublicChoice `json:"choices"`
	Usage   PublicUsage    `json:"usage"`
}

// PublicChoice is one completion choice.
type PublicChoice struct {
	Index        int                `json:"index"`
	Message      PublicRespMessage  `json:"message"`
	FinishReason string             `json:"finish_reason"`
}

// PublicRespMessage is the assistant message within a PublicChoice.
type PublicRespMessage struct {
	Role      string           `json:"role"`
	Content   *string          `json:"content"`
	ToolCalls []PublicToolCall `json:"tool_calls,omitempty"`
}

// PublicUsage carries normalized token accounting.
type PublicUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// PublicStreamChunk is one "data: " line of a streaming response.
type PublicStreamChunk struct {
	ID      string               `json:"id"`
	Object  string               `json:"object"`
	Created int64                `json:"created"`
	Model   string               `json:"model"`
	Choices []PublicStreamChoice `json:"choices"`
}

// PublicStreamChoice is the single choice carried by a stream chunk.
type PublicStreamChoice struct {
	Index        int                `json:"index"`
	Delta        PublicDelta        `json:"delta"`
	FinishReason *string            `json:"finish_reason"`
}

// PublicDelta is the incremental content of a stream chunk.
type PublicDelta struct {
	Role      string                 `json:"role,omitempty"`
	Content   string                 `json:"content,omitempty"`
	ToolCalls []PublicToolCallDelta  `json:"tool_calls,omitempty"`
}

// PublicToolCallDelta is the incremental form of a tool call within a
// stream chunk: Index is always present, the rest populated only when new.
type PublicToolCallDelta struct {
	Index    int                      `json:"index"`
	ID       string                   `json:"id,omitempty"`
	Type     string                   `json:"type,omitempty"`
	Function *PublicFunctionCallDelta `json:"function,omitempty"`
}

// PublicFunctionCallDelta carries the incremental function name/arguments.
type PublicFunctionCallDelta struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}
