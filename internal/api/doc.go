// Package api exposes the flashcard workflow over HTTP. A client creates a
// session, uploads a document into it, asks for cards in one of the supported
// styles, edits or deletes individual cards and finally downloads the deck as
// an Anki import file. Errors are returned as JSON with a user-facing message
// and the request's trace ID.
package api
