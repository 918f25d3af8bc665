package schema

import "encoding/json"

// Role constants for UpstreamContent.Role.
const (
	RoleUpstreamUser  = "user"
	RoleUpstreamModel = "model"
)

// Tool-config modes.
const (
	ToolModeAuto = "AUTO"
	ToolModeNone = "NONE"
	ToolModeAny  = "ANY"
)

// Finish reasons reported by the public schema (output side).
const (
	FinishStop          = "stop"
	FinishLength         = "length"
	FinishToolCalls      = "tool_calls"
	FinishContentFilter  = "content_filter"
)

// UpstreamRequest is the Gemini-shaped request body.
type UpstreamRequest struct {
	Contents          []UpstreamContent    `json:"contents"`
	SystemInstruction *UpstreamContent     `json:"system_instruction,omitempty"`
	GenerationConfig  UpstreamGenConfig    `json:"generation_config,omitempty"`
	Tools             []UpstreamToolDecl   `json:"tools,omitempty"`
	ToolConfig        *UpstreamToolConfig  `json:"tool_config,omitempty"`
}

// UpstreamGenConfig mirrors Gemini's generation_config object.
type UpstreamGenConfig struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"topP,omitempty"`
	MaxOutputTokens  int      `json:"maxOutputTokens,omitempty"`
	CandidateCount   int      `json:"candidateCount,omitempty"`
	ResponseMimeType string   `json:"responseMimeType,omitempty"`
}

// UpstreamToolDecl declares a set of callable functions.
type UpstreamToolDecl struct {
	FunctionDeclarations []UpstreamFunctionDecl `json:"functionDeclarations"`
}

// UpstreamFunctionDecl is a single Gemini-shaped function schema.
type UpstreamFunctionDecl struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  *UpstreamSchema `json:"parameters,omitempty"`
}

// UpstreamToolConfig restricts which functions the model may call.
type UpstreamToolConfig struct {
	FunctionCallingConfig UpstreamFunctionCallingConfig `json:"functionCallingConfig"`
}

// UpstreamFunctionCallingConfig is the mode + optional allow-list.
type UpstreamFunctionCallingConfig struct {
	Mode                 string   `json:"mode"`
	AllowedFunctionNames  []string `json:"allowedFunctionNames,omitempty"`
}

// UpstreamSchema is a Gemini-shaped (OpenAPI-subset) JSON Schema node.
type UpstreamSchema struct {
	Type        string                     `json:"type"`
	Description string                     `json:"description,omitempty"`
	Enum        []string                   `json:"enum,omitempty"`
	Format      string                     `json:"format,omitempty"`
	Properties  map[string]*UpstreamSchema `json:"properties,omitempty"`
	Required    []string                   `json:"required,omitempty"`
	Items       *UpstreamSchema            `json:"items,omitempty"`
	Minimum     *float64                   `json:"minimum,omitempty"`
	Maximum     *float64                   `json:"maximum,omitempty"`
	MinLength   *int64                     `json:"minLength,omitempty"`
	MaxLength   *int64                     `json:"maxLength,omitempty"`
}

// Gemini JSON-Schema-ish type tokens.
const (
	SchemaTypeString  = "STRING"
	SchemaTypeNumber  = "NUMBER"
	SchemaTypeInteger = "INTEGER"
	SchemaTypeBoolean = "BOOLEAN"
	SchemaTypeObject  = "OBJECT"
	SchemaTypeArray   = "ARRAY"
)

// UpstreamContent is one turn of the conversation.
type UpstreamContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []UpstreamPart `json:"parts"`
}

// UpstreamPartKind discriminates the tagged UpstreamPart variant.
type UpstreamPartKind int

// Part kinds.
const (
	PartUnknown UpstreamPartKind = iota
	PartText
	PartFunctionCall
	PartFunctionResponse
	PartInlineData
)

// UpstreamPart is a tagged union: exactly one of Text, FunctionCall,
// FunctionResponse, InlineData is populated, selected by Kind.
//
// It marshals/unmarshals against Gemini's untagged wire representation
// (each variant is a distinct JSON object shape sharing one "parts" array),
// so Kind is derived on decode and consulted (not re-derived) on encode.
type UpstreamPart struct {
	Kind             UpstreamPartKind
	Text             string
	FunctionCall     *UpstreamFunctionCall
	FunctionResponse *UpstreamFunctionResponse
	InlineData       *UpstreamInlineData
}

// UpstreamFunctionCall is the functionCall part payload.
type UpstreamFunctionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

// UpstreamFunctionResponse is the functionResponse part payload.
type UpstreamFunctionResponse struct {
	Name     string                 `json:"name"`
	Response map[string]interface{} `json:"response"`
}

// UpstreamInlineData is the inlineData part payload (base64 media).
type UpstreamInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type wirePart struct {
	Text             *string                   `json:"text,omitempty"`
	FunctionCall     *UpstreamFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *UpstreamFunctionResponse `json:"functionResponse,omitempty"`
	InlineData       *UpstreamInlineData       `json:"inlineData,omitempty"`
}

// MarshalJSON encodes the active variant only.
func (p UpstreamPart) MarshalJSON() ([]byte, error) {
	w := wirePart{}
	switch p.Kind {
	case PartText:
		w.Text = &p.Text
	case PartFunctionCall:
		w.FunctionCall = p.FunctionCall
	case PartFunctionResponse:
		w.FunctionResponse = p.FunctionResponse
	case PartInlineData:
		w.InlineData = p.InlineData
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes the wire object and derives Kind. An object matching
// none of the known shapes decodes to PartUnknown and is dropped by callers
// (non-fatal; spec §9 "Dynamic typing in the source").
func (p *UpstreamPart) UnmarshalJSON(data []byte) error {
	var w wirePart
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.Text != nil:
		p.Kind = PartText
		p.Text = *w.Text
	case w.FunctionCall != nil:
		p.Kind = PartFunctionCall
		p.FunctionCall = w.FunctionCall
	case w.FunctionResponse != nil:
		p.Kind = PartFunctionResponse
		p.FunctionResponse = w.FunctionResponse
	case w.InlineData != nil:
		p.Kind = PartInlineData
		p.InlineData = w.InlineData
	default:
		p.Kind = PartUnknown
	}
	return nil
}

// UpstreamResponse is the non-streaming generateContent response.
type UpstreamResponse struct {
	Candidates     []UpstreamCandidate `json:"candidates"`
	UsageMetadata  UpstreamUsage       `json:"usageMetadata"`
}

// UpstreamCandidate is one generated candidate.
type UpstreamCandidate struct {
	Content      UpstreamContent `json:"content"`
	FinishReason string          `json:"finishReason"`
	Index        int             `json:"index"`
}

// UpstreamUsage mirrors Gemini's usageMetadata object.
type UpstreamUsage struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// UpstreamStreamChunk is one streamGenerateContent SSE payload. Text and
// function_call args within it are cumulative, not incremental — see
// spec.md §4.1.3.
type UpstreamStreamChunk struct {
	Candidates    []UpstreamCandidate `json:"candidates"`
	UsageMetadata *UpstreamUsage      `json:"usageMetadata,omitempty"`
}
