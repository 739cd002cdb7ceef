package extract

import (
	"archive/zip"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// NoTextPlaceholder is returned instead of an error when a presentation has
// no extractable text, e.g. slides made only of images.
const NoTextPlaceholder = "Could not extract any text from the presentation. " +
	"The file might contain only images, or the text is in an unsupported format."

const (
	pptxSlidesDir = "ppt/slides/"

	// pptxFailureMessage is shown to the user when a PPTX cannot be read.
	pptxFailureMessage = "Failed to process the PPTX file. It might be corrupted or in an unsupported format."
)

var (
	textRunPattern    = regexp.MustCompile(`<a:t>([^<]+)</a:t>`)
	slideNumberSuffix = regexp.MustCompile(`(\d+)\.xml$`)
)

// PPTX returns the text of a presentation. Text runs within a slide are
// joined by single spaces and slides are separated by a blank line.
func PPTX(data []byte) (string, error) {
	archive, err := openArchive(data)
	if err != nil {
		return "", &ExtractionError{Format: "pptx", Message: pptxFailureMessage, Err: err}
	}

	slides := slideParts(archive)
	texts := make([]string, 0, len(slides))
	for _, f := range slides {
		xml, err := readPart(f)
		if err != nil {
			return "", &ExtractionError{Format: "pptx", Message: pptxFailureMessage, Err: err}
		}
		texts = append(texts, slideText(string(xml)))
	}

	joined := strings.Join(texts, "\n\n")
	if strings.TrimSpace(joined) == "" {
		return NoTextPlaceholder, nil
	}
	return joined, nil
}

// slideParts selects ppt/slides/slideN.xml entries, skipping relationship
// parts, ordered by slide number.
func slideParts(archive *zip.Reader) []*zip.File {
	var slides []*zip.File
	for _, f := range archive.File {
		if !strings.HasPrefix(f.Name, pptxSlidesDir) {
			continue
		}
		rel := strings.TrimPrefix(f.Name, pptxSlidesDir)
		if strings.HasPrefix(rel, "slide") && !strings.Contains(rel, "rels") && strings.HasSuffix(rel, ".xml") {
			slides = append(slides, f)
		}
	}

	sort.SliceStable(slides, func(i, j int) bool {
		return slideNumber(slides[i].Name) < slideNumber(slides[j].Name)
	})
	return slides
}

func slideNumber(name string) int {
	m := slideNumberSuffix.FindStringSubmatch(path.Base(name))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func slideText(xml string) string {
	matches := textRunPattern.FindAllStringSubmatch(xml, -1)
	runs := make([]string, 0, len(matches))
	for _, m := range matches {
		runs = append(runs, m[1])
	}
	return strings.Join(runs, " ")
}
