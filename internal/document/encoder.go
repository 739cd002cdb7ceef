// Package document turns an uploaded file into the payload sent to the
// language model. PDFs are forwarded inline as base64 data; DOCX and PPTX
// files are reduced to plain text by the extract package first.
package document

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/extract"
	"github.com/phrazzld/ankigen/internal/platform/logger"
)

// TextWrapper frames extracted text for the model.
const TextWrapper = "Here is the document content to analyze:\n\n"

// ErrEncodingFailed is returned when an inline payload cannot be split back
// into data and MIME type.
var ErrEncodingFailed = errors.New("failed to parse file data")

// Encoder converts uploads into document inputs.
type Encoder interface {
	Encode(ctx context.Context, upload domain.Upload) (domain.DocumentInput, error)
}

// OOXMLEncoder is the default Encoder. It inlines PDFs and extracts text from
// Office Open XML documents.
type OOXMLEncoder struct {
	logger *slog.Logger
}

// NewEncoder creates an encoder. If logger is nil, the default logger is used.
func NewEncoder(logger *slog.Logger) *OOXMLEncoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &OOXMLEncoder{logger: logger.With(slog.String("component", "document_encoder"))}
}

var _ Encoder = (*OOXMLEncoder)(nil)

// Encode validates the upload's MIME type and produces the document input.
// Unsupported types fail with domain.ErrUnsupportedFileType before any
// decoding is attempted.
func (e *OOXMLEncoder) Encode(ctx context.Context, upload domain.Upload) (domain.DocumentInput, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	switch upload.MIMEType {
	case domain.MIMETypePDF:
		input, err := encodeInline(upload.Data, upload.MIMEType)
		if err != nil {
			log.Warn("failed to encode pdf", slog.String("file_name", upload.Name), slog.String("error", err.Error()))
			return domain.DocumentInput{}, err
		}
		log.Debug("encoded pdf for inline submission",
			slog.String("file_name", upload.Name),
			slog.Int("size_bytes", len(upload.Data)))
		return input, nil

	case domain.MIMETypeDOCX:
		return e.encodeText(ctx, upload, extract.DOCX)

	case domain.MIMETypePPTX:
		return e.encodeText(ctx, upload, extract.PPTX)

	default:
		log.Info("rejected upload with unsupported type",
			slog.String("file_name", upload.Name),
			slog.String("mime_type", upload.MIMEType))
		return domain.DocumentInput{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, upload.MIMEType)
	}
}

func (e *OOXMLEncoder) encodeText(
	ctx context.Context,
	upload domain.Upload,
	extractFn func([]byte) (string, error),
) (domain.DocumentInput, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	text, err := extractFn(upload.Data)
	if err != nil {
		log.Warn("text extraction failed",
			slog.String("file_name", upload.Name),
			slog.String("mime_type", upload.MIMEType),
			slog.String("error", err.Error()))
		return domain.DocumentInput{}, err
	}

	log.Debug("extracted document text",
		slog.String("file_name", upload.Name),
		slog.Int("text_length", len(text)))
	return domain.NewTextDocument(TextWrapper + text), nil
}

// encodeInline builds a data URL from the raw bytes and parses it back, so
// that an empty or malformed payload is caught before it reaches the model.
func encodeInline(data []byte, mimeType string) (domain.DocumentInput, error) {
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)

	encoded, parsedType, err := parseDataURL(dataURL)
	if err != nil {
		return domain.DocumentInput{}, err
	}
	return domain.NewInlineDocument(encoded, parsedType), nil
}

func parseDataURL(dataURL string) (string, string, error) {
	header, payload, found := strings.Cut(dataURL, ",")
	if !found {
		return "", "", ErrEncodingFailed
	}
	mimeType, _, _ := strings.Cut(strings.TrimPrefix(header, "data:"), ";")
	if payload == "" || mimeType == "" {
		return "", "", ErrEncodingFailed
	}
	return payload, mimeType, nil
}
