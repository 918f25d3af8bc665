package translate

import "gemini-gateway/pkg/schema"

// jsonSchemaToUpstream recursively translates a JSON-Schema-shaped map (as
// carried by schema.PublicFunctionDef.Parameters) into a Gemini-shaped
// *schema.UpstreamSchema. Unknown or unsupported keywords are dropped rather
// than rejected: the upstream schema format is a strict subset of JSON
// Schema and has no room for e.g. oneOf/anyOf/const.
func jsonSchemaToUpstream(raw map[string]interface{}) *schema.UpstreamSchema {
	if raw == nil {
		return nil
	}
	out := &schema.UpstreamSchema{}

	if t, ok := raw["type"].(string); ok {
		out.Type = jsonTypeToUpstream(t)
	}
	if out.Type == "" {
		out.Type = schema.SchemaTypeObject
	}

	if d, ok := raw["description"].(string); ok {
		out.Description = d
	}
	if f, ok := raw["format"].(string); ok {
		out.Format = f
	}

	if enumVal, ok := raw["enum"].([]interface{}); ok {
		for _, v := range enumVal {
			if s, ok := v.(string); ok {
				out.Enum = append(out.Enum, s)
			}
		}
	}

	if req, ok := raw["required"].([]interface{}); ok {
		for _, v := range req {
			if s, ok := v.(string); ok {
				out.Required = append(out.Required, s)
			}
		}
	}

	if props, ok := raw["properties"].(map[string]interface{}); ok {
		out.Properties = make(map[string]*schema.UpstreamSchema, len(props))
		for name, v := range props {
			if sub, ok := v.(map[string]interface{}); ok {
				out.Properties[name] = jsonSchemaToUpstream(sub)
			}
		}
	}

	if items, ok := raw["items"].(map[string]interface{}); ok {
		out.Items = jsonSchemaToUpstream(items)
	}

	if min, ok := numberField(raw, "minimum"); ok {
		out.Minimum = &min
	}
	if max, ok := numberField(raw, "maximum"); ok {
		out.Maximum = &max
	}
	if minLen, ok := intField(raw, "minLength"); ok {
		out.MinLength = &minLen
	}
	if maxLen, ok := intField(raw, "maxLength"); ok {
		out.MaxLength = &maxLen
	}

	return out
}

func numberField(raw map[string]interface{}, key string) (float64, bool) {
	v, ok := raw[key].(float64)
	return v, ok
}

func intField(raw map[string]interface{}, key string) (int64, bool) {
	v, ok := raw[key].(float64)
	if !ok {
		return 0, false
	}
	return int64(v), true
}

// jsonTypeToUpstream maps a JSON Schema "type" keyword to Gemini's
// upper-cased type token. An unrecognized type defaults to STRING, matching
// the permissive stance the rest of this function takes on unknown keywords.
func jsonTypeToUpstream(t string) string {
	switch t {
	case "string":
		return schema.SchemaTypeString
	case "number":
		return schema.SchemaTypeNumber
	case "integer":
		return schema.SchemaTypeInteger
	case "boolean":
		return schema.SchemaTypeBoolean
	case "object":
		return schema.SchemaTypeObject
	case "array":
		return schema.SchemaTypeArray
	default:
		return schema.SchemaTypeString
	}
}
