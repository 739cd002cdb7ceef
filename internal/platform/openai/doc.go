// Package openai implements generation.Provider on the OpenAI chat
// completions API using github.com/openai/openai-go.
//
// The output shape is enforced with a strict json_schema response format.
// PDFs travel as a base64 file content part; extracted text as a text part.
package openai
