package openai

import "github.com/phrazzld/ankigen/internal/generation"

// jsonSchema renders the provider-neutral schema as the map form the
// json_schema response format expects. Strict mode requires every object to
// forbid additional properties.
func jsonSchema(s *generation.Schema) map[string]any {
	if s == nil {
		return nil
	}

	out := map[string]any{"type": string(s.Type)}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if s.Items != nil {
		out["items"] = jsonSchema(s.Items)
	}
	if s.Type == generation.TypeObject {
		props := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			props[name] = jsonSchema(prop)
		}
		out["properties"] = props
		out["additionalProperties"] = false
		required := s.Required
		if required == nil {
			required = []string{}
		}
		out["required"] = required
	}
	return out
}
