// Package chunker splits extracted document text into chunks sized for
// embedding. The strategy depends on the document type: short forms and
// guides stay whole, legal texts split on article headings, and everything
// else falls back to paragraph grouping with overlap.
package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var articlePattern = regexp.MustCompile(`(?i)ART[ÍI]CULO\s+\d+[º°]?\s*\.?\s*-`)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Options control chunk sizing for the paragraph strategy.
type Options struct {
	MaxChunkSize int
	Overlap      int
}

// DefaultOptions mirrors the service defaults.
func DefaultOptions() Options {
	return Options{MaxChunkSize: 1000, Overlap: 200}
}

// Chunk splits text according to the document type and page count.
//
// Documents of five pages or fewer that are forms, guides or general
// documents are kept as a single chunk. Legal documents are split on
// article headings when at least two articles are present. Everything else
// uses paragraph grouping bounded by opts.MaxChunkSize.
func Chunk(text, documentType string, numPages int, opts Options) []string {
	if numPages <= 5 {
		switch documentType {
		case "formulario", "guia", "documento_general":
			return []string{text}
		}
	}

	switch documentType {
	case "ley", "ordenanza", "decreto", "reglamento":
		if articles := chunkByArticles(text); len(articles) > 1 {
			return articles
		}
	}

	return chunkByParagraphs(text, opts.MaxChunkSize)
}

// chunkByArticles splits legal text on "ARTÍCULO N.-" style headings. Each
// chunk starts at a heading and runs to the next one.
func chunkByArticles(text string) []string {
	locs := articlePattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	var chunks []string
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		chunk := strings.TrimSpace(text[loc[0]:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// chunkByParagraphs groups whole paragraphs until maxSize is reached,
// carrying the last paragraph of the previous chunk forward for context.
// Paragraphs larger than maxSize are broken up by sentence.
func chunkByParagraphs(text string, maxSize int) []string {
	var paragraphs []string
	for _, p := range paragraphBreak.Split(text, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) == 0 {
		return []string{text}
	}

	var chunks []string
	var current []string
	size := 0

	for _, paragraph := range paragraphs {
		pSize := len(paragraph)

		if pSize > maxSize {
			if len(current) > 0 {
				chunks = append(chunks, strings.Join(current, "\n\n"))
				current = nil
				size = 0
			}
			chunks = append(chunks, splitBySentences(paragraph, maxSize)...)
			continue
		}

		if size+pSize > maxSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n\n"))
			if len(current) > 1 {
				last := current[len(current)-1]
				current = []string{last, paragraph}
				size = len(last) + pSize
			} else {
				current = []string{paragraph}
				size = pSize
			}
		} else {
			current = append(current, paragraph)
			size += pSize
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n\n"))
	}
	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// splitBySentences accumulates sentences up to maxSize. A single sentence
// longer than maxSize is hard-split into two pieces.
func splitBySentences(text string, maxSize int) []string {
	sentences := splitSentences(text)

	var chunks []string
	var current []string
	size := 0

	for _, sentence := range sentences {
		sSize := len(sentence)

		if sSize > maxSize {
			if len(current) > 0 {
				chunks = append(chunks, strings.Join(current, " "))
				current = nil
				size = 0
			}
			cut := splitOffset(sentence, maxSize)
			chunks = append(chunks, sentence[:cut], sentence[cut:])
			continue
		}

		if size+sSize > maxSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = []string{sentence}
			size = sSize
		} else {
			current = append(current, sentence)
			size += sSize
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// splitOffset backs max up to the nearest rune boundary so a hard split
// never cuts a multi-byte character in half.
func splitOffset(s string, max int) int {
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		return max
	}
	return cut
}

// splitSentences breaks text at whitespace runs that follow a terminal
// punctuation mark. The terminator stays with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j == i+1 {
			continue
		}
		sentences = append(sentences, string(runes[start:i+1]))
		start = j
		i = j - 1
	}

	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	if len(sentences) == 0 {
		return []string{text}
	}
	return sentences
}
