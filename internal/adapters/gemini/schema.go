package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// jsonSchema is the subset of JSON Schema the trust server's tool
// declarations use.
type jsonSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description"`
	Format      string                 `json:"format"`
	Enum        []string               `json:"enum"`
	Properties  map[string]*jsonSchema `json:"properties"`
	Required    []string               `json:"required"`
	Items       *jsonSchema            `json:"items"`
}

// schemaFromJSON converts a discovered tool's JSON schema into the
// typed schema the Gemini API requires. Unknown or absent schemas map
// to nil (a declaration without parameters).
func schemaFromJSON(raw json.RawMessage) (*genai.Schema, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var parsed jsonSchema
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode tool schema: %w", err)
	}
	return convertSchema(&parsed), nil
}

func convertSchema(s *jsonSchema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Description: s.Description,
		Format:      s.Format,
		Enum:        s.Enum,
		Required:    s.Required,
	}

	switch s.Type {
	case "string":
		out.Type = genai.TypeString
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	case "array":
		out.Type = genai.TypeArray
		out.Items = convertSchema(s.Items)
	default:
		out.Type = genai.TypeObject
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = convertSchema(prop)
		}
	}
	return out
}
