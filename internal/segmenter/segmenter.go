// Package segmenter partitions long texts into bounded-size segments for
// per-chunk translation while preserving paragraph and sentence integrity.
package segmenter

import "strings"

// separatorLength accounts for the blank line re-inserted between
// paragraphs when a segment is reassembled.
const separatorLength = 2

// sentenceTerminators covers both Latin and CJK sentence-ending
// punctuation.
const sentenceTerminators = ".!?。！？"

// Segment splits text into segments each at most maxLength runes long.
//
// Paragraphs (blank-line separated) are accumulated into a running segment
// until adding the next paragraph would exceed maxLength; the segment is
// then flushed. A paragraph that alone exceeds maxLength is split again at
// sentence boundaries with the same accumulate/flush rule. A single
// sentence longer than maxLength is returned whole, never cut — callers
// must tolerate this oversize edge case.
//
// If text fits within maxLength a single-element slice is returned.
func Segment(text string, maxLength int) []string {
	if maxLength <= 0 || len([]rune(text)) <= maxLength {
		return []string{text}
	}

	var segments []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if current.Len() > 0 {
			segments = append(segments, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	appendPart := func(part string, partLen int) {
		if current.Len() > 0 {
			current.WriteString("\n\n")
			currentLen += separatorLength
		}
		current.WriteString(part)
		currentLen += partLen
	}

	for _, paragraph := range strings.Split(text, "\n\n") {
		paraLen := len([]rune(paragraph))

		if currentLen+paraLen+separatorLength <= maxLength {
			appendPart(paragraph, paraLen)
			continue
		}
		flush()

		if paraLen <= maxLength {
			appendPart(paragraph, paraLen)
			continue
		}

		// Paragraph alone is oversize: fall back to sentence granularity.
		sentenceLen := 0
		for _, sentence := range splitSentences(paragraph) {
			sl := len([]rune(sentence))
			if sentenceLen+sl <= maxLength {
				current.WriteString(sentence)
				sentenceLen += sl
				continue
			}
			if current.Len() > 0 {
				segments = append(segments, current.String())
				current.Reset()
			}
			current.WriteString(sentence)
			sentenceLen = sl
		}
		currentLen = sentenceLen
	}

	flush()
	return segments
}

// splitSentences cuts text after each sentence-terminating rune. Trailing
// text without a terminator forms a final sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		if strings.ContainsRune(sentenceTerminators, r) {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}
