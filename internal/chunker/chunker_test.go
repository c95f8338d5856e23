package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkSmallDocumentStaysWhole(t *testing.T) {
	text := "Requisitos:\n\n1. Copia de DNI\n\n2. Recibo de pago"

	for _, docType := range []string{"formulario", "guia", "documento_general"} {
		chunks := Chunk(text, docType, 3, DefaultOptions())
		require.Len(t, chunks, 1, "type %s", docType)
		assert.Equal(t, text, chunks[0])
	}

	// Legal types never use the whole-document shortcut.
	chunks := Chunk("texto corto", "ley", 2, DefaultOptions())
	require.Len(t, chunks, 1)
}

func TestChunkByArticles(t *testing.T) {
	text := "TÍTULO PRELIMINAR\n\n" +
		"ARTÍCULO 1.- Las municipalidades son órganos de gobierno local.\n\n" +
		"Artículo 2º.- Gozan de autonomía política y administrativa.\n\n" +
		"ARTICULO 3 .- Se rigen por la presente ley."

	chunks := Chunk(text, "ley", 40, DefaultOptions())
	require.Len(t, chunks, 3)
	assert.True(t, strings.HasPrefix(chunks[0], "ARTÍCULO 1.-"))
	assert.True(t, strings.HasPrefix(chunks[1], "Artículo 2º.-"))
	assert.True(t, strings.HasPrefix(chunks[2], "ARTICULO 3 .-"))
	assert.Contains(t, chunks[1], "autonomía política")
}

func TestChunkLegalWithoutArticlesFallsBack(t *testing.T) {
	// One article heading is not enough to split; a single-article document
	// goes through paragraph chunking instead.
	text := "ARTÍCULO 1.- Disposición única.\n\nConsiderando los fines del servicio público."
	chunks := Chunk(text, "ordenanza", 10, DefaultOptions())
	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0], "Disposición única")
}

func TestChunkByParagraphsGrouping(t *testing.T) {
	p1 := strings.Repeat("a", 400)
	p2 := strings.Repeat("b", 400)
	p3 := strings.Repeat("c", 400)
	text := p1 + "\n\n" + p2 + "\n\n" + p3

	chunks := Chunk(text, "documento_general", 10, Options{MaxChunkSize: 1000, Overlap: 200})
	require.Len(t, chunks, 2)
	assert.Equal(t, p1+"\n\n"+p2, chunks[0])
	// The last paragraph of the closed chunk carries over for continuity.
	assert.Equal(t, p2+"\n\n"+p3, chunks[1])
}

func TestChunkByParagraphsNoOverlapForSingleParagraphChunk(t *testing.T) {
	p1 := strings.Repeat("a", 900)
	p2 := strings.Repeat("b", 900)
	text := p1 + "\n\n" + p2

	chunks := Chunk(text, "documento_general", 10, Options{MaxChunkSize: 1000, Overlap: 200})
	require.Len(t, chunks, 2)
	assert.Equal(t, p1, chunks[0])
	assert.Equal(t, p2, chunks[1])
}

func TestOversizedParagraphSplitsBySentences(t *testing.T) {
	s1 := "Primera oración del trámite " + strings.Repeat("x", 400) + "."
	s2 := "Segunda oración " + strings.Repeat("y", 470) + "."
	s3 := "Tercera oración final."
	paragraph := s1 + " " + s2 + " " + s3

	chunks := chunkByParagraphs(paragraph, 500)
	require.Len(t, chunks, 3)
	assert.Equal(t, s1, chunks[0])
	assert.Equal(t, s2, chunks[1])
	assert.Equal(t, s3, chunks[2])
}

func TestOversizedSentenceHardSplit(t *testing.T) {
	sentence := strings.Repeat("z", 1200)
	chunks := splitBySentences(sentence, 1000)
	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("z", 1000), chunks[0])
	assert.Equal(t, strings.Repeat("z", 200), chunks[1])
}

func TestHardSplitKeepsRuneBoundaries(t *testing.T) {
	// "á" is two bytes and straddles the size limit; the split must back up
	// to the previous rune boundary instead of cutting it in half.
	sentence := strings.Repeat("a", 9) + "á" + strings.Repeat("b", 10)
	chunks := splitBySentences(sentence, 10)

	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("a", 9), chunks[0])
	assert.Equal(t, "á"+strings.Repeat("b", 10), chunks[1])
	for i, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk), "chunk %d", i)
	}
	assert.Equal(t, sentence, strings.Join(chunks, ""))
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("Hola. ¿Cómo está? Bien!  Gracias.")
	assert.Equal(t, []string{"Hola.", "¿Cómo está?", "Bien!", "Gracias."}, got)

	// A period with no trailing whitespace does not end a sentence.
	got = splitSentences("Ver art. 5 de la norma")
	assert.Equal(t, []string{"Ver art.", "5 de la norma"}, got)

	got = splitSentences("sin puntuacion final")
	assert.Equal(t, []string{"sin puntuacion final"}, got)
}
