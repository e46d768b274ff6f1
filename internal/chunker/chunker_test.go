package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextEmptyInput(t *testing.T) {
	c := New(1000, 200)
	assert.Nil(t, c.SplitText(""))
	assert.Nil(t, c.SplitText("   \n\t  "))
}

func TestSplitTextSingleSentence(t *testing.T) {
	c := New(1000, 200)
	chunks := c.SplitText("Paris is the capital of France.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Paris is the capital of France.", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len(chunks[0].Text), chunks[0].End)
}

func TestSplitTextNormalizesWhitespace(t *testing.T) {
	c := New(1000, 0)
	chunks := c.SplitText("First  sentence.\n\nSecond\tsentence.")
	require.Len(t, chunks, 1)
	assert.Equal(t, "First sentence. Second sentence.", chunks[0].Text)
}

func TestSplitTextNoSentenceLost(t *testing.T) {
	var sentences []string
	var text strings.Builder
	for i := 0; i < 40; i++ {
		s := "Sentence number " + strings.Repeat("x", i%7+1) + " tells a small story"
		sentences = append(sentences, s+".")
		text.WriteString(s + ". ")
	}

	c := New(120, 40)
	chunks := c.SplitText(text.String())
	require.Greater(t, len(chunks), 1)

	joined := ""
	for _, chunk := range chunks {
		joined += chunk.Text + " "
	}
	for _, sentence := range sentences {
		assert.Contains(t, joined, sentence)
	}
}

func TestSplitTextOverlapSeedsWithSentence(t *testing.T) {
	c := New(60, 30)
	chunks := c.SplitText("Alpha went home. Bravo stayed out late. Charlie read a book. Delta slept early.")
	require.Greater(t, len(chunks), 1)
	// Each follow-up chunk starts with the previous chunk's trailing
	// sentence, not a raw character tail.
	for i := 1; i < len(chunks); i++ {
		first := strings.SplitAfter(chunks[i].Text, ".")[0]
		assert.Contains(t, chunks[i-1].Text, first)
	}
}

func TestSplitTextOversizedSentenceNotSplit(t *testing.T) {
	long := "This sentence goes on " + strings.Repeat("and on ", 50) + "until it ends."
	c := New(50, 10)
	chunks := c.SplitText(long + " Short one.")
	require.NotEmpty(t, chunks)
	assert.Contains(t, chunks[0].Text, "until it ends.")
	assert.Greater(t, len(chunks[0].Text), 50)
}

func TestSplitByParagraphs(t *testing.T) {
	chunks := SplitByParagraphs("First paragraph.\n\nSecond paragraph.\n\n\n")
	require.Len(t, chunks, 2)
	assert.Equal(t, "First paragraph.", chunks[0].Text)
	assert.Equal(t, "Second paragraph.", chunks[1].Text)
}

func TestSplitByWords(t *testing.T) {
	chunks := SplitByWords("one two three four five six seven", 3)
	require.Len(t, chunks, 3)
	assert.Equal(t, "one two three", chunks[0].Text)
	assert.Equal(t, "seven", chunks[2].Text)
	assert.Equal(t, 6, chunks[2].Start)
}
