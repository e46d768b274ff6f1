package chunker

import (
	"regexp"
	"strings"
)

// Segment is one emitted chunk of text with informational offsets into the
// normalized input. Offsets are approximate once overlap re-seeds a buffer
// with reused text.
type Segment struct {
	Text  string
	Start int
	End   int
}

// Chunker splits raw text into overlapping, sentence-aligned segments.
// It is pure and safe for concurrent use over independent inputs.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	sentenceRe   = regexp.MustCompile(`[.!?]+`)
)

func New(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = defaultChunkOverlap
	}
	return &Chunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// SplitText splits text into overlapping chunks. Empty or whitespace-only
// input yields no chunks. Sentences are never split: a single sentence
// longer than the chunk size is emitted as an oversized chunk, trading the
// size bound for sentence atomicity.
func (c *Chunker) SplitText(text string) []Segment {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	text = cleanText(text)
	sentences := splitSentences(text)

	var chunks []Segment
	var current strings.Builder
	startPos := 0

	for _, sentence := range sentences {
		if current.Len()+len(sentence) <= c.chunkSize {
			current.WriteString(sentence + " ")
			continue
		}

		if strings.TrimSpace(current.String()) != "" {
			emitted := strings.TrimSpace(current.String())
			chunks = append(chunks, Segment{Text: emitted, Start: startPos, End: startPos + len(emitted)})
		}
		current.Reset()

		// Seed the next buffer with the last sentence found in the
		// overlap tail of the emitted chunk, never a raw character tail.
		if c.chunkOverlap > 0 && len(chunks) > 0 {
			last := chunks[len(chunks)-1]
			tail := last.Text
			if len(tail) > c.chunkOverlap {
				tail = tail[len(tail)-c.chunkOverlap:]
			}
			if seed := lastSentence(tail); seed != "" {
				current.WriteString(seed + " ")
				startPos = last.End - len(seed)
			} else {
				startPos = last.End
			}
		} else if len(chunks) > 0 {
			startPos = chunks[len(chunks)-1].End
		}
		current.WriteString(sentence + " ")
	}

	if strings.TrimSpace(current.String()) != "" {
		emitted := strings.TrimSpace(current.String())
		chunks = append(chunks, Segment{Text: emitted, Start: startPos, End: startPos + len(emitted)})
	}

	return chunks
}

// SplitByParagraphs splits on blank lines instead of sentence accumulation.
func SplitByParagraphs(text string) []Segment {
	paragraphs := strings.Split(text, "\n\n")
	var chunks []Segment
	pos := 0
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p != "" {
			chunks = append(chunks, Segment{Text: p, Start: pos, End: pos + len(p)})
			pos += len(p) + 2
		}
	}
	return chunks
}

// SplitByWords splits into fixed-size word windows; offsets are word counts.
func SplitByWords(text string, wordsPerChunk int) []Segment {
	if wordsPerChunk <= 0 {
		wordsPerChunk = 200
	}
	words := strings.Fields(text)
	var chunks []Segment
	for i := 0; i < len(words); i += wordsPerChunk {
		end := i + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, Segment{
			Text:  strings.Join(words[i:end], " "),
			Start: i,
			End:   end,
		})
	}
	return chunks
}

// cleanText collapses whitespace runs (spaces, newlines, tabs) into single
// spaces.
func cleanText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// splitSentences splits on terminal punctuation and re-attaches a period to
// each sentence so emitted chunks stay well terminated.
func splitSentences(text string) []string {
	parts := sentenceRe.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.HasSuffix(part, ".") && !strings.HasSuffix(part, "!") && !strings.HasSuffix(part, "?") {
			part += "."
		}
		sentences = append(sentences, part)
	}
	return sentences
}

// lastSentence returns the final sentence in the overlap tail, or "" when
// the tail holds no sentence boundary.
func lastSentence(tail string) string {
	if !strings.ContainsAny(tail, ".!?") {
		return ""
	}
	sentences := splitSentences(tail)
	if len(sentences) == 0 {
		return ""
	}
	return sentences[len(sentences)-1]
}
