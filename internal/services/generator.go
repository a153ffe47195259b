package services

import (
	"context"
	"strings"
)

// Schema is the JSON Schema subset accepted by structured-output LLM APIs.
// Types use lowercase JSON Schema names; clients translate where needed.
type Schema struct {
	Type       string             `json:"type"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Required   []string           `json:"required,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
}

// StructuredGenerator produces a JSON document conforming to a schema
type StructuredGenerator interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, schema *Schema) ([]byte, error)
}

// songSchema describes one resolved song record
func songSchema() *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"title":       {Type: "string"},
			"artist":      {Type: "string"},
			"externalUrl": {Type: "string"},
		},
		Required: []string{"title", "artist", "externalUrl"},
	}
}

// ResolvedSongsSchema is the response contract for metadata finalization
func ResolvedSongsSchema() *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"current":    songSchema(),
			"favorite":   songSchema(),
			"underrated": songSchema(),
		},
		Required: []string{"current", "favorite", "underrated"},
	}
}

// withUpperTypes returns a copy with type names upper-cased (OBJECT, STRING)
func (s *Schema) withUpperTypes() *Schema {
	if s == nil {
		return nil
	}
	out := &Schema{
		Type:     strings.ToUpper(s.Type),
		Required: append([]string(nil), s.Required...),
		Items:    s.Items.withUpperTypes(),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = prop.withUpperTypes()
		}
	}
	return out
}
