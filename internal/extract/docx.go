package extract

import (
	"bytes"
	"errors"
	"strings"

	"github.com/antchfx/xmlquery"
)

const docxBodyPart = "word/document.xml"

// docxFailureMessage is shown to the user when a DOCX cannot be read.
const docxFailureMessage = "Failed to process the DOCX file. It might be corrupted."

var errNoDocumentPart = errors.New("word/document.xml not found")

// DOCX returns the raw text of a Word document: one paragraph per line group,
// paragraphs separated by a blank line. Runs inside a paragraph are joined
// without separators, tabs and breaks are kept as whitespace.
func DOCX(data []byte) (string, error) {
	text, err := docxText(data)
	if err != nil {
		return "", &ExtractionError{Format: "docx", Message: docxFailureMessage, Err: err}
	}
	return text, nil
}

func docxText(data []byte) (string, error) {
	archive, err := openArchive(data)
	if err != nil {
		return "", err
	}

	var body []byte
	for _, f := range archive.File {
		if f.Name == docxBodyPart {
			body, err = readPart(f)
			if err != nil {
				return "", err
			}
			break
		}
	}
	if body == nil {
		return "", errNoDocumentPart
	}

	doc, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	paragraphs := xmlquery.Find(doc, "//*[local-name()='body']//*[local-name()='p']")
	lines := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		lines = append(lines, paragraphText(p))
	}

	return strings.TrimSpace(strings.Join(lines, "\n\n")), nil
}

func paragraphText(p *xmlquery.Node) string {
	var sb strings.Builder
	// Only run content counts; w:pPr/w:tabs also holds w:tab tab-stop definitions.
	runs := xmlquery.Find(p, ".//*[local-name()='r']/*[local-name()='t' or local-name()='tab' or local-name()='br' or local-name()='cr']")
	for _, run := range runs {
		switch run.Data {
		case "t":
			sb.WriteString(run.InnerText())
		case "tab":
			sb.WriteByte('\t')
		default:
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
