package tokenizer

import (
	"strings"

	"github.com/poiesic/notesearch/core"
	"github.com/poiesic/notesearch/vocab"
)

// Decode renders the content positions of input back into text.
// Continuation pieces are glued onto the preceding piece and the framing
// tokens are skipped, so Decode(Tokenize(s)) is the lowercased,
// whitespace-normalized s whenever every word is covered by the vocabulary.
// Ids without a vocabulary line render as [UNK].
func (t *Tokenizer) Decode(input core.TokenizedInput) string {
	var sb strings.Builder
	for i, id := range input.IDs {
		if i >= len(input.AttentionMask) || input.AttentionMask[i] == 0 {
			break
		}

		token, ok := t.vocab.TokenOf(id)
		if !ok {
			token = vocab.UnknownToken
		} else if t.vocab.IsReserved(id) && token != vocab.UnknownToken {
			continue
		}

		if rest, isContinuation := strings.CutPrefix(token, continuationPrefix); isContinuation && sb.Len() > 0 {
			sb.WriteString(rest)
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(token)
	}
	return sb.String()
}
