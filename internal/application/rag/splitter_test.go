package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-rag-api/pkg/errors"
)

func TestSplitWordsOverlappingWindows(t *testing.T) {
	chunks, err := SplitWords("The sky is blue. Grass is green.", 5, 1)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "The sky is blue. Grass", chunks[0])
	assert.Equal(t, "Grass is green.", chunks[1])

	// 重叠 1 个词：前块末词等于后块首词
	first := strings.Fields(chunks[0])
	second := strings.Fields(chunks[1])
	assert.Equal(t, first[len(first)-1], second[0])
}

func TestSplitWordsCoversAllWords(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 100; i++ {
		b.WriteString("word")
		b.WriteString(strings.Repeat("x", i%3))
		b.WriteString(" ")
	}
	text := strings.TrimSpace(b.String())

	chunkSize, overlap := 10, 3
	chunks, err := SplitWords(text, chunkSize, overlap)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	words := strings.Fields(text)
	step := chunkSize - overlap

	for i, chunk := range chunks {
		got := strings.Fields(chunk)
		assert.LessOrEqual(t, len(got), chunkSize, "chunk %d exceeds window size", i)

		// 每个窗口从 i*step 开始，与原文逐词一致
		start := i * step
		for j, w := range got {
			assert.Equal(t, words[start+j], w, "chunk %d word %d", i, j)
		}
	}

	// 末块覆盖到最后一个词
	last := strings.Fields(chunks[len(chunks)-1])
	assert.Equal(t, words[len(words)-1], last[len(last)-1])
}

func TestSplitWordsExactOverlap(t *testing.T) {
	text := "a b c d e f g h i j k l m n o p q r s t"
	chunks, err := SplitWords(text, 8, 2)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1])
		cur := strings.Fields(chunks[i])
		if len(prev) < 8 {
			continue
		}
		assert.Equal(t, prev[len(prev)-2:], cur[:2], "chunks %d/%d overlap", i-1, i)
	}
}

func TestSplitWordsShorterThanWindow(t *testing.T) {
	chunks, err := SplitWords("only three words", 300, 20)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "only three words", chunks[0])
}

func TestSplitWordsEmptyText(t *testing.T) {
	chunks, err := SplitWords("", 5, 1)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = SplitWords("   \n\t  ", 5, 1)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSplitWordsConfigErrors(t *testing.T) {
	cases := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"zero chunk size", 0, 0},
		{"negative chunk size", -1, 0},
		{"negative overlap", 5, -1},
		{"overlap equals chunk size", 5, 5},
		{"overlap exceeds chunk size", 5, 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SplitWords("some text here", tc.chunkSize, tc.overlap)
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidParam, errors.AsAppError(err).Code)
		})
	}
}

func TestTokenizeAttachesPunctuation(t *testing.T) {
	tokens := tokenize("Hello, world! How are you?")
	assert.Len(t, tokens, 5)
	assert.Equal(t, "Hello, world! How are you?", strings.Join(tokens, ""))
}
