package document

import (
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// genericTypes are declared types that say nothing about the document format.
// Browsers and HTTP clients send them for unknown extensions.
var genericTypes = map[string]bool{
	"":                             true,
	"application/octet-stream":     true,
	"application/zip":              true,
	"application/x-zip-compressed": true,
	"binary/octet-stream":          true,
}

// DetectMIME resolves the MIME type of an upload. A specific declared type is
// trusted as-is (parameters stripped); a generic or missing one is replaced by
// sniffing the content.
func DetectMIME(declared string, data []byte) string {
	mediaType := strings.ToLower(strings.TrimSpace(declared))
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	if !genericTypes[mediaType] {
		return mediaType
	}

	detected := mimetype.Detect(data).String()
	if parsed, _, err := mime.ParseMediaType(detected); err == nil {
		return parsed
	}
	return detected
}
