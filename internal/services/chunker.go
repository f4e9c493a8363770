package services

import (
	"strings"
	"unicode/utf8"
)

// TextChunker splits the curated market/salary reference documents into
// overlapping chunks small enough to embed individually. Used by the
// ingest tooling, not by the request pipeline.
type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText implements TextChunker. Paragraphs are packed into chunks up
// to maxChunkSize; a paragraph that is itself too long is packed sentence
// by sentence. Each new chunk starts with the tail of the previous one so
// no statement loses its surrounding context at a boundary.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, current.String())
		current.Reset()
		if overlap > 0 {
			current.WriteString(tailRunes(chunks[len(chunks)-1], overlap))
		}
	}

	appendPiece := func(piece, separator string) {
		if current.Len()+len(piece)+len(separator) > maxChunkSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString(separator)
		}
		current.WriteString(piece)
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if utf8.RuneCountInString(para) > maxChunkSize {
			for _, sentence := range splitSentences(para) {
				appendPiece(sentence, " ")
			}
			continue
		}

		appendPiece(para, "\n\n")
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

func splitSentences(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	var sentences []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			sentences = append(sentences, f)
		}
	}
	return sentences
}

// tailRunes returns the last n runes of text.
func tailRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
