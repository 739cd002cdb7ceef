package domain

// Supported upload MIME types.
const (
	MIMETypePDF  = "application/pdf"
	MIMETypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMETypePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// SupportedMIMETypes lists the MIME types accepted by the upload surface.
var SupportedMIMETypes = []string{MIMETypePDF, MIMETypeDOCX, MIMETypePPTX}

// IsSupportedMIMEType reports whether uploads of the given type are accepted.
func IsSupportedMIMEType(mimeType string) bool {
	for _, supported := range SupportedMIMETypes {
		if mimeType == supported {
			return true
		}
	}
	return false
}

// DocumentKind discriminates the two forms a document can take when sent to
// the model.
type DocumentKind string

// Document input forms.
const (
	// DocumentKindInline carries the raw file as base64 data plus its MIME type.
	DocumentKindInline DocumentKind = "inline"

	// DocumentKindText carries plain text extracted from the file.
	DocumentKindText DocumentKind = "text"
)

// DocumentInput is the payload produced once per upload and sent to the model.
// Exactly one of (Data, MIMEType) or Text is populated, according to Kind.
type DocumentInput struct {
	Kind     DocumentKind `json:"kind"`
	Data     string       `json:"data,omitempty"`
	MIMEType string       `json:"mime_type,omitempty"`
	Text     string       `json:"text,omitempty"`
}

// NewInlineDocument creates an inline document input from base64 data.
func NewInlineDocument(base64Data, mimeType string) DocumentInput {
	return DocumentInput{Kind: DocumentKindInline, Data: base64Data, MIMEType: mimeType}
}

// NewTextDocument creates a plain-text document input.
func NewTextDocument(text string) DocumentInput {
	return DocumentInput{Kind: DocumentKindText, Text: text}
}

// Validate checks that the populated fields match the kind.
func (d DocumentInput) Validate() error {
	switch d.Kind {
	case DocumentKindInline:
		if d.Data == "" || d.MIMEType == "" {
			return ErrEmptyDocument
		}
	case DocumentKindText:
		if d.Text == "" {
			return ErrEmptyDocument
		}
	default:
		return NewValidationError("kind", "must be inline or text", ErrValidation)
	}
	return nil
}

// Upload is a file as received from the client, before encoding.
type Upload struct {
	Name     string
	MIMEType string
	Data     []byte
}
