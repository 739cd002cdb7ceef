package generation

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/phrazzld/ankigen/internal/domain"
)

// ParseResult decodes the model's response text into cards of the style's
// kind. Blank text, invalid JSON, a missing or non-array "cards" field, and
// non-object items are all malformed output, as is an item missing one of its
// style's required fields. An empty array is a valid result with no cards.
func ParseResult(text string, style domain.CardStyle) ([]domain.Card, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrMalformedOutput)
	}

	cards := gjson.Get(text, "cards")
	if !cards.Exists() {
		return nil, fmt.Errorf("%w: expected a 'cards' array", ErrMalformedOutput)
	}
	if !cards.IsArray() {
		return nil, fmt.Errorf("%w: 'cards' is %s, not an array", ErrMalformedOutput, cards.Type)
	}

	kind := style.CardKind()
	items := cards.Array()
	result := make([]domain.Card, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, fmt.Errorf("%w: card %d is not an object", ErrMalformedOutput, i)
		}
		if kind == domain.CardKindCloze {
			text, err := requiredField(item, i, "text")
			if err != nil {
				return nil, err
			}
			result = append(result, domain.NewClozeCard(text))
			continue
		}
		front, err := requiredField(item, i, "front")
		if err != nil {
			return nil, err
		}
		back, err := requiredField(item, i, "back")
		if err != nil {
			return nil, err
		}
		result = append(result, domain.NewBasicCard(front, back))
	}
	return result, nil
}

func requiredField(item gjson.Result, index int, name string) (string, error) {
	field := item.Get(name)
	if !field.Exists() || field.Type != gjson.String {
		return "", fmt.Errorf("%w: card %d has no %q string", ErrMalformedOutput, index, name)
	}
	return field.String(), nil
}
