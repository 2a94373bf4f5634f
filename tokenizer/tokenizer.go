package tokenizer

import (
	"strings"

	"github.com/poiesic/notesearch/core"
	"github.com/poiesic/notesearch/vocab"
)

// continuationPrefix marks a non-initial subword piece.
const continuationPrefix = "##"

// Tokenizer converts text into fixed-length vocabulary ids and an attention mask.
// It holds no mutable state and is safe for concurrent use.
type Tokenizer struct {
	vocab  *vocab.Vocabulary
	maxLen int
}

// New creates a tokenizer over v. A nil vocabulary is treated as empty.
func New(v *vocab.Vocabulary) *Tokenizer {
	if v == nil {
		v = vocab.Empty()
	}
	return &Tokenizer{
		vocab:  v,
		maxLen: core.MaxLen,
	}
}

// Vocabulary returns the vocabulary the tokenizer resolves ids against.
func (t *Tokenizer) Vocabulary() *vocab.Vocabulary {
	return t.vocab
}

// Tokenize lowercases text, splits it on whitespace, applies WordPiece to each
// word and frames the result with [CLS] and [SEP]. Sequences longer than
// core.MaxLen are cut at core.MaxLen, which can drop the trailing [SEP].
func (t *Tokenizer) Tokenize(text string) core.TokenizedInput {
	words := strings.Fields(strings.ToLower(text))

	tokens := make([]string, 0, len(words)+2)
	tokens = append(tokens, vocab.StartToken)
	for _, word := range words {
		tokens = append(tokens, t.wordPiece(word)...)
	}
	tokens = append(tokens, vocab.EndToken)

	unknownID, hasUnknown := t.vocab.UnknownID()
	ids := make([]int, 0, t.maxLen)
	for _, token := range tokens {
		if len(ids) == t.maxLen {
			break
		}
		if id, ok := t.vocab.IDOf(token); ok {
			ids = append(ids, id)
		} else if hasUnknown {
			ids = append(ids, unknownID)
		}
	}

	mask := make([]int, t.maxLen)
	for i := range ids {
		mask[i] = 1
	}

	padID := t.vocab.PadID()
	for len(ids) < t.maxLen {
		ids = append(ids, padID)
	}

	return core.TokenizedInput{
		IDs:           ids,
		AttentionMask: mask,
	}
}

// wordPiece splits word into the longest vocabulary pieces, scanning each
// remaining suffix from its longest candidate down to a single rune.
func (t *Tokenizer) wordPiece(word string) []string {
	if t.vocab.Contains(word) {
		return []string{word}
	}

	runes := []rune(word)
	var pieces []string
	start := 0
	for start < len(runes) {
		end := len(runes)
		found := ""
		for end > start {
			piece := string(runes[start:end])
			if start > 0 {
				piece = continuationPrefix + piece
			}
			if t.vocab.Contains(piece) {
				found = piece
				break
			}
			end--
		}

		if found == "" {
			// Always advance so the loop terminates.
			pieces = append(pieces, vocab.UnknownToken)
			start++
			continue
		}
		pieces = append(pieces, found)
		start = end
	}
	return pieces
}
