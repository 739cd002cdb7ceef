// Package gemini implements generation.Provider on Google's Gemini API using
// the google.golang.org/genai SDK.
//
// PDFs are sent as an inline blob next to the instruction; extracted text is
// sent as a text part. The output shape is enforced with a response schema and
// the application/json response MIME type.
package gemini
