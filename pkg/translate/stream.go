package translate

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"gemini-gateway/pkg/schema"
)

// StreamTranslator holds the per-stream state needed to turn Gemini's
// cumulative streamGenerateContent chunks into OpenAI-style incremental
// delta chunks. Gemini resends the full text-so-far and the full
// arguments-so-far on every chunk; the public wire format wants only what's
// new since the last chunk. One StreamTranslator is used for exactly one
// upstream stream and is not safe for concurrent use.
type StreamTranslator struct {
	responseID     string
	requestedModel string
	firstChunkSent bool
	contentBuffer  string
	toolCalls      []*streamToolCall
}

// streamToolCall tracks one function-call slot across chunks, keyed by its
// position among the candidate's function-call parts (Gemini has no call id
// of its own).
type streamToolCall struct {
	index      int
	id         string
	name       string
	mergedArgs map[string]interface{} // shallow-merged args across every chunk seen for this call
	argsBuffer string                 // last-sent serialization of mergedArgs, sorted by key for stable diffing
	announced  bool
}

// NewStreamTranslator starts state for one streaming response.
func NewStreamTranslator(requestedModel string) *StreamTranslator {
	return &StreamTranslator{
		responseID:     "chatcmpl-" + uuid.NewString(),
		requestedModel: requestedModel,
	}
}

// Translate converts one upstream cumulative chunk into zero or more public
// stream chunks. Each distinct event — the one-time role announcement, a
// text extension, a tool-call announce, and that tool call's following
// argument-diff — is its own chunk, never merged into another, even when
// several of them stem from the same upstream chunk.
func (s *StreamTranslator) Translate(chunk *schema.UpstreamStreamChunk) ([]schema.PublicStreamChunk, error) {
	if len(chunk.Candidates) == 0 {
		return nil, nil
	}
	cand := chunk.Candidates[0]

	var out []schema.PublicStreamChunk

	if !s.firstChunkSent {
		s.firstChunkSent = true
		out = append(out, s.wrap(schema.PublicDelta{Role: schema.RolePublicAssistant}, ""))
	}

	textIdx := 0
	for _, part := range cand.Content.Parts {
		switch part.Kind {
		case schema.PartText:
			if diff, ok := s.diffText(part.Text); ok && diff != "" {
				out = append(out, s.wrap(schema.PublicDelta{Content: diff}, ""))
			}
		case schema.PartFunctionCall:
			announce, argDelta, err := s.diffToolCall(textIdx, part.FunctionCall)
			if err != nil {
				return nil, err
			}
			if announce != nil {
				out = append(out, s.wrap(schema.PublicDelta{ToolCalls: []schema.PublicToolCallDelta{*announce}}, ""))
			}
			if argDelta != nil {
				out = append(out, s.wrap(schema.PublicDelta{ToolCalls: []schema.PublicToolCallDelta{*argDelta}}, ""))
			}
			textIdx++
		case schema.PartFunctionResponse, schema.PartInlineData, schema.PartUnknown:
			// Not expected from a model-authored stream; skipped.
		}
	}

	if cand.FinishReason != "" {
		hasToolCalls := len(s.toolCalls) > 0
		finishReason := mapFinishReason(cand.FinishReason, hasToolCalls)
		out = append(out, s.wrap(schema.PublicDelta{}, finishReason))
	}

	return out, nil
}

// diffText implements the append-only assumption: each chunk's text must be
// a prefix extension of the last. If a chunk ever sends text that is not an
// extension of the buffered text (upstream resending from scratch, or
// truncating), the buffer is reset and the new text is emitted whole — a
// corrective resync rather than silently dropping or duplicating content.
func (s *StreamTranslator) diffText(cumulative string) (string, bool) {
	if len(cumulative) >= len(s.contentBuffer) && cumulative[:len(s.contentBuffer)] == s.contentBuffer {
		diff := cumulative[len(s.contentBuffer):]
		s.contentBuffer = cumulative
		return diff, true
	}
	s.contentBuffer = cumulative
	return cumulative, true
}

// diffToolCall returns an announce delta (only on the call's first sighting,
// carrying id/type/name and no arguments) and, separately, an args delta
// diffed against the merged-so-far arguments object — each non-nil only
// when it has something new to report, and never combined into one delta.
func (s *StreamTranslator) diffToolCall(partPosition int, call *schema.UpstreamFunctionCall) (announce, argDelta *schema.PublicToolCallDelta, err error) {
	tc := s.toolCallAt(partPosition, call.Name)

	if !tc.announced {
		tc.announced = true
		announce = &schema.PublicToolCallDelta{
			Index:    tc.index,
			ID:       tc.id,
			Type:     schema.ToolTypeFunction,
			Function: &schema.PublicFunctionCallDelta{Name: tc.name},
		}
	}

	if len(call.Args) > 0 {
		if tc.mergedArgs == nil {
			tc.mergedArgs = make(map[string]interface{}, len(call.Args))
		}
		for k, v := range call.Args {
			tc.mergedArgs[k] = v
		}
	}

	serialized, err := stableJSON(tc.mergedArgs)
	if err != nil {
		return announce, nil, fmt.Errorf("tool call %q: %w", call.Name, err)
	}

	var diff string
	if len(serialized) >= len(tc.argsBuffer) && serialized[:len(tc.argsBuffer)] == tc.argsBuffer {
		diff = serialized[len(tc.argsBuffer):]
	} else {
		// Non-extension resync, mirroring diffText's policy.
		diff = serialized
	}
	tc.argsBuffer = serialized

	if diff != "" {
		argDelta = &schema.PublicToolCallDelta{
			Index:    tc.index,
			Function: &schema.PublicFunctionCallDelta{Arguments: diff},
		}
	}

	return announce, argDelta, nil
}

func (s *StreamTranslator) toolCallAt(position int, name string) *streamToolCall {
	for _, tc := range s.toolCalls {
		if tc.index == position {
			return tc
		}
	}
	tc := &streamToolCall{
		index: position,
		id:    "call_" + uuid.NewString(),
		name:  name,
	}
	s.toolCalls = append(s.toolCalls, tc)
	return tc
}

func (s *StreamTranslator) wrap(delta schema.PublicDelta, finishReason string) schema.PublicStreamChunk {
	choice := schema.PublicStreamChoice{Index: 0, Delta: delta}
	if finishReason != "" {
		fr := finishReason
		choice.FinishReason = &fr
	}
	return schema.PublicStreamChunk{
		ID:      s.responseID,
		Object:  "chat.completion.chunk",
		Created: time.Now().Unix(),
		Model:   s.requestedModel,
		Choices: []schema.PublicStreamChoice{choice},
	}
}

// stableJSON serializes args with sorted object keys so that successive
// cumulative snapshots of a growing arguments object diff as a clean prefix
// extension instead of an unrelated byte sequence from Go map iteration
// order.
func stableJSON(args map[string]interface{}) (string, error) {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make(map[string]interface{}, len(args))
	for _, k := range keys {
		ordered[k] = args[k]
	}

	buf, err := json.Marshal(orderedMap{keys: keys, values: ordered})
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// orderedMap marshals to a JSON object with keys in the given fixed order,
// since encoding/json always sorts map[string]interface{} keys already —
// this exists to make that ordering an explicit, documented invariant
// rather than an incidental stdlib behavior the diffing logic depends on.
type orderedMap struct {
	keys   []string
	values map[string]interface{}
}

func (o orderedMap) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range o.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}
