package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	t.Parallel()

	s := NewSession()
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Nil(t, s.Document)
	assert.False(t, s.Generating)
	assert.NoError(t, s.Validate())
}

func TestSessionGenerationLifecycle(t *testing.T) {
	t.Parallel()

	s := NewSession()

	// Nothing to generate from yet.
	assert.ErrorIs(t, s.BeginGeneration(CardStyleBasic), ErrNoDocument)

	s.AttachDocument("notes.docx", NewTextDocument("some text"))
	require.NoError(t, s.BeginGeneration(CardStyleCloze))
	assert.True(t, s.Generating)
	assert.Equal(t, CardStyleCloze, s.Deck.Style)

	// A second request while the first is outstanding is refused.
	assert.ErrorIs(t, s.BeginGeneration(CardStyleCloze), ErrGenerationInProgress)

	s.CompleteGeneration(NewDeck(CardStyleCloze, []Card{NewClozeCard("{{c1::x}}")}))
	assert.False(t, s.Generating)
	assert.Nil(t, s.Document, "document input is discarded after a successful generation")
	assert.Equal(t, "notes.docx", s.FileName)
	assert.Equal(t, 1, s.Deck.Len())
}

func TestSessionFailGenerationClearsCards(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.AttachDocument("a.pdf", NewInlineDocument("JVBERi0=", MIMETypePDF))
	require.NoError(t, s.BeginGeneration(CardStyleBasic))

	s.FailGeneration("Failed to generate cards.")
	assert.False(t, s.Generating)
	assert.Equal(t, "Failed to generate cards.", s.LastError)
	assert.Empty(t, s.Deck.Cards)
	assert.NotNil(t, s.Document, "failed generations keep the document for another attempt")
}

func TestSessionAttachDocumentResetsResult(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.Deck = NewDeck(CardStyleBasic, []Card{NewBasicCard("a", "b")})
	s.LastError = "old error"

	s.AttachDocument("b.pptx", NewTextDocument("slides"))
	assert.Empty(t, s.Deck.Cards)
	assert.Empty(t, s.LastError)
	assert.Equal(t, "b.pptx", s.FileName)
}

func TestSessionCloneIsDeep(t *testing.T) {
	t.Parallel()

	s := NewSession()
	s.AttachDocument("a.docx", NewTextDocument("x"))
	s.Deck = NewDeck(CardStyleBasic, []Card{NewBasicCard("a", "b")})

	clone := s.Clone()
	clone.Deck.Cards[0].Front = "changed"
	clone.Document.Text = "changed"

	assert.Equal(t, "a", s.Deck.Cards[0].Front)
	assert.Equal(t, "x", s.Document.Text)
}

func TestDocumentInputValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NewInlineDocument("AAAA", MIMETypePDF).Validate())
	assert.NoError(t, NewTextDocument("hello").Validate())
	assert.ErrorIs(t, NewInlineDocument("", MIMETypePDF).Validate(), ErrEmptyDocument)
	assert.ErrorIs(t, NewTextDocument("").Validate(), ErrEmptyDocument)
	assert.ErrorIs(t, DocumentInput{Kind: "binary"}.Validate(), ErrValidation)

	assert.True(t, IsSupportedMIMEType(MIMETypeDOCX))
	assert.False(t, IsSupportedMIMEType("image/png"))
}
