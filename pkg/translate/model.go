// Package translate converts between the public (OpenAI-style) chat
// completion schema and the upstream (Gemini-style) generateContent schema,
// in both directions and for both non-streaming and streaming responses.
package translate

// modelMapping mirrors MODEL_MAPPING from the original adapter: public
// model names a client might request, aliased to a concrete upstream model.
var modelMapping = map[string]string{
	"gpt-4o":                    "gemini-1.5-pro-latest",
	"gpt-4o-mini":                "gemini-1.5-flash-latest",
	"gpt-4-turbo":                "gemini-1.5-pro-latest",
	"gpt-4":                      "gemini-1.5-pro-latest",
	"gpt-3.5-turbo":              "gemini-1.5-flash-latest",
	"gpt-4o-2024-05-13":         "gemini-1.5-pro-latest",
	"gpt-4o-mini-2024-07-18":    "gemini-1.5-flash-latest",
	"gpt-4-turbo-preview":        "gemini-1.5-pro-latest",
}

// MapModel resolves a client-requested model name to the upstream model id.
// A name already naming a gemini-* model, or one absent from the table, is
// passed through unchanged: the pool/dispatcher layer never rejects a model
// name the translator doesn't recognize.
func MapModel(requested string) string {
	if mapped, ok := modelMapping[requested]; ok {
		return mapped
	}
	return requested
}
