// Package extract pulls plain text out of OOXML documents (DOCX and PPTX).
// Both formats are zip archives of XML parts; the extractors open the archive,
// pick the parts that carry body text and concatenate their text runs.
package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrCorruptDocument is returned when a document cannot be opened or parsed.
var ErrCorruptDocument = errors.New("unreadable or corrupt document")

// maxPartSize bounds the decompressed size of a single XML part.
const maxPartSize = 64 << 20

// ExtractionError carries the format that failed and a message suitable for
// showing to the user.
type ExtractionError struct {
	Format  string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s extraction failed: %v", e.Format, e.Err)
	}
	return e.Format + " extraction failed"
}

// Unwrap lets errors.Is match ErrCorruptDocument as well as the cause.
func (e *ExtractionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCorruptDocument}
	}
	return []error{ErrCorruptDocument, e.Err}
}

// UserMessage returns the message shown to the user.
func (e *ExtractionError) UserMessage() string {
	return e.Message
}

func openArchive(data []byte) (*zip.Reader, error) {
	return zip.NewReader(bytes.NewReader(data), int64(len(data)))
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxPartSize {
		return nil, fmt.Errorf("part %s exceeds %d bytes", f.Name, maxPartSize)
	}
	return data, nil
}
