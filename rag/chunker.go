package rag

import "strings"

// ChunkTargetSize and ChunkOverlap are spec §4.2's fixed chunking
// parameters ("target 500 characters, overlap 50").
const (
	ChunkTargetSize = 500
	ChunkOverlap    = 50
)

// Chunk splits normalised text into overlapping chunks of roughly
// ChunkTargetSize characters, preferring to break on paragraph boundaries.
// Each chunk after the first repeats the final ChunkOverlap characters of
// the previous one, so retrieval doesn't lose context at a hard cut.
func Chunk(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	paragraphs := splitParagraphs(text)

	var chunks []string
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, strings.TrimSpace(current.String()))
		current.Reset()
	}

	for _, p := range paragraphs {
		if current.Len() > 0 && current.Len()+1+len(p) > ChunkTargetSize {
			flush()
			if len(chunks) > 0 {
				current.WriteString(overlapTail(chunks[len(chunks)-1]))
			}
		}

		// a single paragraph longer than the target must itself be split,
		// since there's no smaller boundary to prefer.
		if len(p) > ChunkTargetSize {
			splitLongParagraph(p, &current, &chunks)
			continue
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(p)
	}
	flush()

	return chunks
}

func splitParagraphs(text string) []string {
	raw := strings.Split(text, "\n\n")
	var out []string
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}

// splitLongParagraph hard-splits a paragraph larger than ChunkTargetSize
// into fixed-size overlapping windows, appending them to *chunks. Any
// overlap already seeded into current is carried into the first window; on
// return current holds the last window's overlap tail for the caller to
// keep accumulating onto.
func splitLongParagraph(p string, current *strings.Builder, chunks *[]string) {
	if current.Len() > 0 {
		p = current.String() + " " + p
	}
	runes := []rune(p)
	start := 0
	for start < len(runes) {
		end := start + ChunkTargetSize
		if end > len(runes) {
			end = len(runes)
		}
		*chunks = append(*chunks, strings.TrimSpace(string(runes[start:end])))
		if end == len(runes) {
			start = end
			break
		}
		start = end - ChunkOverlap
	}
	current.Reset()
	if len(*chunks) > 0 {
		current.WriteString(overlapTail((*chunks)[len(*chunks)-1]))
	}
}

// overlapTail returns the last ChunkOverlap characters of s, for seeding
// the next chunk's leading overlap.
func overlapTail(s string) string {
	runes := []rune(s)
	if len(runes) <= ChunkOverlap {
		return s
	}
	return string(runes[len(runes)-ChunkOverlap:])
}
