package translate

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"gemini-gateway/pkg/schema"
)

const maxOutputTokensCap = 8192

// ToUpstream converts a validated PublicChatRequest into the Gemini-shaped
// UpstreamRequest the dispatcher will send. The caller is expected to have
// already run PublicChatRequest.Validate.
func ToUpstream(req *schema.PublicChatRequest) (*schema.UpstreamRequest, error) {
	out := &schema.UpstreamRequest{}

	var systemParts []string
	for _, msg := range req.Messages {
		if msg.Role != schema.RolePublicSystem {
			continue
		}
		text, ok := msg.ContentString()
		if !ok {
			if parts, ok := msg.ContentParts(); ok {
				text = joinTextParts(parts)
			}
		}
		if text != "" {
			systemParts = append(systemParts, text)
		}
	}
	if len(systemParts) > 0 {
		out.SystemInstruction = &schema.UpstreamContent{
			Parts: []schema.UpstreamPart{{Kind: schema.PartText, Text: strings.Join(systemParts, "\n\n")}},
		}
	}

	for _, msg := range req.Messages {
		if msg.Role == schema.RolePublicSystem {
			continue
		}
		content, err := convertMessage(&msg)
		if err != nil {
			return nil, fmt.Errorf("translate message (role=%s): %w", msg.Role, err)
		}
		if content != nil {
			out.Contents = append(out.Contents, *content)
		}
	}

	out.GenerationConfig = buildGenerationConfig(req)

	if len(req.Tools) > 0 {
		decl := schema.UpstreamToolDecl{}
		for _, t := range req.Tools {
			decl.FunctionDeclarations = append(decl.FunctionDeclarations, schema.UpstreamFunctionDecl{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  jsonSchemaToUpstream(t.Function.Parameters),
			})
		}
		out.Tools = []schema.UpstreamToolDecl{decl}

		toolConfig, err := toolChoiceToUpstream(req.ToolChoice, req.Tools)
		if err != nil {
			return nil, err
		}
		out.ToolConfig = toolConfig
	}

	return out, nil
}

// convertMessage maps one non-system PublicMessage to an UpstreamContent.
// A tool message becomes a functionResponse part on a "user" turn (Gemini
// has no separate tool role); an assistant message with tool calls becomes
// one or more functionCall parts on a "model" turn.
func convertMessage(msg *schema.PublicMessage) (*schema.UpstreamContent, error) {
	role := schema.RoleUpstreamUser
	if msg.Role == schema.RolePublicAssistant {
		role = schema.RoleUpstreamModel
	}

	var parts []schema.UpstreamPart

	if msg.Role == schema.RolePublicTool {
		text, _ := msg.ContentString()
		var responseObj map[string]interface{}
		if err := json.Unmarshal([]byte(text), &responseObj); err != nil || responseObj == nil {
			responseObj = map[string]interface{}{"result": text}
		}
		parts = append(parts, schema.UpstreamPart{
			Kind: schema.PartFunctionResponse,
			FunctionResponse: &schema.UpstreamFunctionResponse{
				Name:     msg.Name,
				Response: responseObj,
			},
		})
		return &schema.UpstreamContent{Role: role, Parts: parts}, nil
	}

	if text, ok := msg.ContentString(); ok && text != "" {
		parts = append(parts, schema.UpstreamPart{Kind: schema.PartText, Text: text})
	} else if contentParts, ok := msg.ContentParts(); ok {
		for _, p := range contentParts {
			switch p.Type {
			case "text":
				if p.Text != "" {
					parts = append(parts, schema.UpstreamPart{Kind: schema.PartText, Text: p.Text})
				}
			case "image_url":
				if p.ImageURL == nil {
					continue
				}
				if mimeType, data, ok := parseDataURL(p.ImageURL.URL); ok {
					parts = append(parts, schema.UpstreamPart{
						Kind:       schema.PartInlineData,
						InlineData: &schema.UpstreamInlineData{MimeType: mimeType, Data: data},
					})
				} else {
					slog.Warn("dropping image_url content part: only data: URLs are forwarded upstream", "url", p.ImageURL.URL)
				}
			}
		}
	}

	for _, tc := range msg.ToolCalls {
		var args map[string]interface{}
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return nil, fmt.Errorf("tool_call %s: invalid arguments JSON: %w", tc.ID, err)
		}
		parts = append(parts, schema.UpstreamPart{
			Kind: schema.PartFunctionCall,
			FunctionCall: &schema.UpstreamFunctionCall{
				Name: tc.Function.Name,
				Args: args,
			},
		})
	}

	if len(parts) == 0 {
		return nil, nil
	}
	return &schema.UpstreamContent{Role: role, Parts: parts}, nil
}

// parseDataURL extracts the MIME type and base64 body from a "data:" URL
// (RFC 2397: data:[<mediatype>][;base64],<data>). Only base64-encoded data
// URLs are recognized, matching what inline_data expects on the wire;
// anything else (including http(s) URLs) returns ok=false.
func parseDataURL(raw string) (mimeType, data string, ok bool) {
	const prefix = "data:"
	if !strings.HasPrefix(raw, prefix) {
		return "", "", false
	}
	rest := raw[len(prefix):]
	comma := strings.IndexByte(rest, ',')
	if comma < 0 {
		return "", "", false
	}
	header := rest[:comma]
	if !strings.HasSuffix(header, ";base64") {
		return "", "", false
	}
	mimeType = strings.TrimSuffix(header, ";base64")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return mimeType, rest[comma+1:], true
}

func joinTextParts(parts []schema.PublicContentPart) string {
	var out []string
	for _, p := range parts {
		if p.Type == "text" && p.Text != "" {
			out = append(out, p.Text)
		}
	}
	return strings.Join(out, "\n\n")
}

func buildGenerationConfig(req *schema.PublicChatRequest) schema.UpstreamGenConfig {
	cfg := schema.UpstreamGenConfig{}

	if req.Temperature != nil {
		cfg.Temperature = req.Temperature
	}
	if req.TopP != nil {
		cfg.TopP = req.TopP
	}
	if req.MaxTokens != nil {
		cfg.MaxOutputTokens = *req.MaxTokens
		if cfg.MaxOutputTokens > maxOutputTokensCap {
			cfg.MaxOutputTokens = maxOutputTokensCap
		}
	}
	if req.N != nil {
		cfg.CandidateCount = *req.N
	}
	if req.ResponseFormat != nil && req.ResponseFormat.Type == "json_object" {
		cfg.ResponseMimeType = "application/json"
	}

	return cfg
}

// toolChoiceToUpstream translates the public tool_choice field (absent,
// "auto", "none", "required", or {"type":"function","function":{"name":...}})
// into Gemini's functionCallingConfig mode + allow-list.
//
// "required" has no exact Gemini analog; it is approximated as ANY with no
// allow-list, matching Gemini's closest "must call some function" mode
// (resolved Open Question: approximate rather than reject).
func toolChoiceToUpstream(raw json.RawMessage, tools []schema.PublicToolDef) (*schema.UpstreamToolConfig, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		switch asString {
		case "none":
			return &schema.UpstreamToolConfig{FunctionCallingConfig: schema.UpstreamFunctionCallingConfig{Mode: schema.ToolModeNone}}, nil
		case "required":
			return &schema.UpstreamToolConfig{FunctionCallingConfig: schema.UpstreamFunctionCallingConfig{Mode: schema.ToolModeAny}}, nil
		case "auto", "":
			return &schema.UpstreamToolConfig{FunctionCallingConfig: schema.UpstreamFunctionCallingConfig{Mode: schema.ToolModeAuto}}, nil
		default:
			return nil, fmt.Errorf("unrecognized tool_choice string %q", asString)
		}
	}

	var asObject struct {
		Type     string `json:"type"`
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
	}
	if err := json.Unmarshal(raw, &asObject); err != nil {
		return nil, fmt.Errorf("tool_choice: %w", err)
	}
	if asObject.Function.Name == "" {
		return nil, fmt.Errorf("tool_choice object missing function.name")
	}
	return &schema.UpstreamToolConfig{
		FunctionCallingConfig: schema.UpstreamFunctionCallingConfig{
			Mode:                 schema.ToolModeAny,
			AllowedFunctionNames: []string{asObject.Function.Name},
		},
	}, nil
}
