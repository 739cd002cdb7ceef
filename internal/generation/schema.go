package generation

import "github.com/phrazzld/ankigen/internal/domain"

// SchemaType names a JSON Schema type.
type SchemaType string

const (
	TypeObject SchemaType = "object"
	TypeArray  SchemaType = "array"
	TypeString SchemaType = "string"
)

// Schema is a provider-neutral subset of JSON Schema describing the shape the
// model must produce. Adapters translate it into their SDK's schema type.
type Schema struct {
	Type        SchemaType         `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	// PropertyOrder lists Properties keys in a stable order.
	PropertyOrder []string `json:"-"`
	Items         *Schema  `json:"items,omitempty"`
	Required      []string `json:"required,omitempty"`
}

// CardSchema returns the Generation Result schema for a card style: an object
// with a required "cards" array whose items are {text} for cloze and
// {front, back} otherwise.
func CardSchema(style domain.CardStyle) *Schema {
	var item *Schema
	if style.CardKind() == domain.CardKindCloze {
		item = &Schema{
			Type: TypeObject,
			Properties: map[string]*Schema{
				"text": {
					Type:        TypeString,
					Description: "The full sentence with cloze deletion syntax, e.g., 'The capital of France is {{c1::Paris}}.'",
				},
			},
			PropertyOrder: []string{"text"},
			Required:      []string{"text"},
		}
	} else {
		item = &Schema{
			Type: TypeObject,
			Properties: map[string]*Schema{
				"front": {Type: TypeString, Description: "The question or term."},
				"back":  {Type: TypeString, Description: "The answer or definition."},
			},
			PropertyOrder: []string{"front", "back"},
			Required:      []string{"front", "back"},
		}
	}

	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"cards": {Type: TypeArray, Items: item},
		},
		PropertyOrder: []string{"cards"},
		Required:      []string{"cards"},
	}
}
