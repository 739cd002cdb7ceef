// Package generation turns a document input into flashcards by calling a
// language model through a Provider. It owns the prompt templates, the
// structured output schema, parsing of the model's JSON result and the
// reduction of provider failures to a single user-facing message.
//
// Provider adapters live in internal/platform (gemini, openai) and only move
// bytes; everything model-agnostic happens here.
package generation
