package gemini

import (
	"encoding/base64"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/generation"
)

var schemaTypes = map[generation.SchemaType]genai.Type{
	generation.TypeObject: genai.TypeObject,
	generation.TypeArray:  genai.TypeArray,
	generation.TypeString: genai.TypeString,
}

// toSchema converts the provider-neutral schema into the SDK's schema type.
func toSchema(s *generation.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:             schemaTypes[s.Type],
		Description:      s.Description,
		Items:            toSchema(s.Items),
		Required:         s.Required,
		PropertyOrdering: s.PropertyOrder,
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toSchema(prop)
		}
	}
	return out
}

// documentParts builds the content parts carrying the document. The prompt
// part is appended by the caller.
func documentParts(doc domain.DocumentInput) ([]*genai.Part, error) {
	switch doc.Kind {
	case domain.DocumentKindInline:
		data, err := base64.StdEncoding.DecodeString(doc.Data)
		if err != nil {
			return nil, fmt.Errorf("decoding inline document: %w", err)
		}
		return []*genai.Part{{InlineData: &genai.Blob{Data: data, MIMEType: doc.MIMEType}}}, nil
	case domain.DocumentKindText:
		return []*genai.Part{{Text: doc.Text}}, nil
	default:
		return nil, fmt.Errorf("unknown document kind %q", doc.Kind)
	}
}

// responseText concatenates the text parts of the first candidate, skipping
// thought summaries.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", ErrContentBlocked, resp.PromptFeedback.BlockReason)
		}
		return "", nil
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", ErrContentBlocked
	}
	if candidate.Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}
