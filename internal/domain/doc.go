// Package domain contains the core entities of the flashcard generator:
// card styles, flashcards, decks, document inputs and the request-scoped
// session that ties one upload to one generation result. It is independent
// of any specific infrastructure or delivery mechanism.
package domain
