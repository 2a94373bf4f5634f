package tokenizer

import (
	"strings"
	"testing"

	"github.com/poiesic/notesearch/core"
	"github.com/poiesic/notesearch/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVocabulary() *vocab.Vocabulary {
	return vocab.New([]string{
		"[PAD]", "[UNK]", "[CLS]", "[SEP]", "hello", "world",
		"un", "##believ", "##able", "ab", "a", "##c", "##bc",
	})
}

// contentIDs returns the ids under the attention mask.
func contentIDs(in core.TokenizedInput) []int {
	return in.IDs[:in.Len()]
}

func TestTokenize_HelloWorld(t *testing.T) {
	tok := New(vocab.New([]string{"[PAD]", "[UNK]", "[CLS]", "[SEP]", "hello", "world"}))

	in := tok.Tokenize("hello world")

	wantIDs := make([]int, core.MaxLen)
	copy(wantIDs, []int{2, 4, 5, 3})
	wantMask := make([]int, core.MaxLen)
	copy(wantMask, []int{1, 1, 1, 1})

	assert.Equal(t, wantIDs, in.IDs)
	assert.Equal(t, wantMask, in.AttentionMask)
}

func TestTokenize_EmptyText(t *testing.T) {
	tok := New(testVocabulary())

	for _, text := range []string{"", "   ", "\n\t \r\n"} {
		in := tok.Tokenize(text)
		require.Len(t, in.IDs, core.MaxLen)
		assert.Equal(t, []int{2, 3}, contentIDs(in))
		assert.Equal(t, 0, in.IDs[2])
	}
}

func TestTokenize_CaseAndWhitespace(t *testing.T) {
	tok := New(testVocabulary())

	want := tok.Tokenize("hello world")
	assert.Equal(t, want, tok.Tokenize("HELLO World"))
	assert.Equal(t, want, tok.Tokenize("  hello\n\n\tworld  "))
}

func TestTokenize_WordPiece(t *testing.T) {
	tok := New(testVocabulary())

	tests := []struct {
		name string
		text string
		want []int
	}{
		{"verbatim word is one token", "hello", []int{2, 4, 3}},
		{"subword split", "unbelievable", []int{2, 6, 7, 8, 3}},
		{"longest prefix first", "abc", []int{2, 9, 11, 3}},
		{"unknown per rune", "xyz", []int{2, 1, 1, 1, 3}},
		{"unknown per rune multibyte", "ñü", []int{2, 1, 1, 3}},
		{"precomposed accent is one rune", "\u00e9", []int{2, 1, 3}},
		{"combining mark is its own rune", "e\u0301", []int{2, 1, 1, 3}},
		{"known prefix unknown tail", "helloq", []int{2, 4, 1, 3}},
		{"mixed words", "hello xyz world", []int{2, 4, 1, 1, 1, 5, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tok.Tokenize(tt.text)
			assert.Equal(t, tt.want, contentIDs(in))
		})
	}
}

func TestTokenize_Truncation(t *testing.T) {
	tok := New(testVocabulary())

	t.Run("long input loses end marker", func(t *testing.T) {
		in := tok.Tokenize(strings.Repeat("hello ", 200))
		require.Len(t, in.IDs, core.MaxLen)
		assert.Equal(t, core.MaxLen, in.Len())
		assert.Equal(t, 2, in.IDs[0])
		assert.Equal(t, 4, in.IDs[core.MaxLen-1])
		assert.NotContains(t, in.IDs, 3)
	})

	t.Run("exact fit keeps end marker", func(t *testing.T) {
		in := tok.Tokenize(strings.Repeat("hello ", core.MaxLen-2))
		assert.Equal(t, core.MaxLen, in.Len())
		assert.Equal(t, 3, in.IDs[core.MaxLen-1])
	})
}

func TestTokenize_MissingUnknownToken(t *testing.T) {
	tok := New(vocab.New([]string{"[PAD]", "[CLS]", "[SEP]", "hello"}))

	in := tok.Tokenize("hello zzz")
	assert.Equal(t, []int{1, 3, 2}, contentIDs(in))
}

func TestTokenize_EmptyVocabulary(t *testing.T) {
	tok := New(vocab.Empty())

	in := tok.Tokenize("anything at all")
	require.Len(t, in.IDs, core.MaxLen)
	require.Len(t, in.AttentionMask, core.MaxLen)
	assert.Equal(t, 0, in.Len())
	for i := range in.IDs {
		assert.Equal(t, 0, in.IDs[i])
	}
}

func TestTokenize_NilVocabulary(t *testing.T) {
	tok := New(nil)
	in := tok.Tokenize("hello")
	assert.Equal(t, 0, in.Len())
}

func TestTokenize_NonZeroPad(t *testing.T) {
	tok := New(vocab.New([]string{"[UNK]", "[CLS]", "[SEP]", "[PAD]", "hi"}))

	in := tok.Tokenize("hi")
	assert.Equal(t, []int{1, 4, 2}, contentIDs(in))
	for _, id := range in.IDs[3:] {
		assert.Equal(t, 3, id)
	}
}

func TestTokenize_Invariants(t *testing.T) {
	tok := New(testVocabulary())
	padID := tok.Vocabulary().PadID()

	inputs := []string{
		"",
		"hello",
		"Hello, world!",
		"unbelievable abc ab a",
		strings.Repeat("xyz ", 100),
		strings.Repeat("unbelievable ", 60),
		"日本語のテキスト",
		"line one\nline two\r\nline three",
	}

	for _, text := range inputs {
		in := tok.Tokenize(text)
		require.Len(t, in.IDs, core.MaxLen, text)
		require.Len(t, in.AttentionMask, core.MaxLen, text)

		seenZero := false
		for i, m := range in.AttentionMask {
			require.Contains(t, []int{0, 1}, m)
			if m == 0 {
				seenZero = true
				assert.Equal(t, padID, in.IDs[i], "padding id at %d for %q", i, text)
			} else {
				assert.False(t, seenZero, "mask rises after padding at %d for %q", i, text)
			}
		}
	}
}

func TestTokenize_Deterministic(t *testing.T) {
	tok := New(testVocabulary())
	assert.Equal(t, tok.Tokenize("unbelievable hello"), tok.Tokenize("unbelievable hello"))
}
