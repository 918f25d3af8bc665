package translate

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gemini-gateway/pkg/schema"
)

// FromUpstream converts a non-streaming Gemini generateContent response into
// the public (OpenAI-style) chat completion envelope. requestedModel is
// echoed back verbatim (the client's original model name, not the mapped
// upstream one), matching the original adapter's behavior.
func FromUpstream(resp *schema.UpstreamResponse, requestedModel string) (*schema.PublicChatResponse, error) {
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("upstream response carried no candidates")
	}
	cand := resp.Candidates[0]

	var textBuf strings.Builder
	var toolCalls []schema.PublicToolCall
	for _, part := range cand.Content.Parts {
		switch part.Kind {
		case schema.PartText:
			textBuf.WriteString(part.Text)
		case schema.PartFunctionCall:
			args, err := json.Marshal(part.FunctionCall.Args)
			if err != nil {
				return nil, fmt.Errorf("marshal function call args: %w", err)
			}
			toolCalls = append(toolCalls, schema.PublicToolCall{
				ID:   "call_" + uuid.NewString(),
				Type: schema.ToolTypeFunction,
				Function: schema.PublicFunctionCall{
					Name:      part.FunctionCall.Name,
					Arguments: string(args),
				},
			})
		case schema.PartFunctionResponse, schema.PartInlineData:
			// Not expected in a model-authored candidate; ignored.
		case schema.PartUnknown:
			// Unrecognized part shape; translation proceeds without this part.
		}
	}

	finishReason := mapFinishReason(cand.FinishReason, len(toolCalls) > 0)

	var content *string
	if text := textBuf.String(); text != "" || len(toolCalls) == 0 {
		content = &text
	}

	return &schema.PublicChatResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   requestedModel,
		Choices: []schema.PublicChoice{
			{
				Index: 0,
				Message: schema.PublicRespMessage{
					Role:      schema.RolePublicAssistant,
					Content:   content,
					ToolCalls: toolCalls,
				},
				FinishReason: finishReason,
			},
		},
		Usage: schema.PublicUsage{
			PromptTokens:     resp.UsageMetadata.PromptTokenCount,
			CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      resp.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

// mapFinishReason normalizes Gemini's finishReason token to the public
// schema's finish_reason vocabulary by case-insensitive substring match,
// since upstream values vary more than a fixed enum (e.g.
// MALFORMED_FUNCTION_CALL must still route to tool_calls). hasToolCalls
// takes precedence: Gemini reports STOP even when the candidate is actually
// a function call.
func mapFinishReason(upstream string, hasToolCalls bool) string {
	if hasToolCalls {
		return schema.FinishToolCalls
	}
	u := strings.ToUpper(upstream)
	switch {
	case strings.Contains(u, "LENGTH") || strings.Contains(u, "MAX_TOKENS"):
		return schema.FinishLength
	case strings.Contains(u, "SAFETY") || strings.Contains(u, "BLOCKED"):
		return schema.FinishContentFilter
	case strings.Contains(u, "TOOL") || strings.Contains(u, "FUNCTION"):
		return schema.FinishToolCalls
	case strings.Contains(u, "STOP") || strings.Contains(u, "FINISH"):
		return schema.FinishStop
	default:
		return schema.FinishStop
	}
}
