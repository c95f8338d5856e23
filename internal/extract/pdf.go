// Package extract pulls plain text out of PDF files.
package extract

import (
	"regexp"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/munidigital/tramites-rag/internal/domain"
)

var (
	hyphenBreak = regexp.MustCompile(`(\w+)-\n(\w+)`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// Result holds the extracted text of one PDF.
type Result struct {
	Text     string
	NumPages int
}

// PDF extracts the plain text of every page in the file at path. Pages that
// cannot be decoded are skipped; the remaining pages are joined with blank
// lines so paragraph chunking still finds boundaries.
func PDF(path string) (*Result, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, domain.ExtractionError("open pdf", err)
	}
	defer f.Close()

	numPages := reader.NumPage()
	if numPages == 0 {
		return nil, domain.ExtractionError("pdf has no pages", nil)
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text = CleanText(text); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return nil, domain.ExtractionError("no extractable text in pdf", nil)
	}

	return &Result{
		Text:     strings.Join(pages, "\n\n"),
		NumPages: numPages,
	}, nil
}

// CleanText normalizes extracted text: rejoins words hyphenated across line
// breaks, collapses whitespace runs and trims the result.
func CleanText(text string) string {
	text = hyphenBreak.ReplaceAllString(text, "$1$2")
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
