// Package tokenizer turns free-form text into the fixed-length input consumed
// by embedding providers.
//
// Tokenize lowercases the text, splits it on whitespace and applies greedy
// longest-match-first WordPiece splitting to every word, using "##" to mark
// non-initial pieces. The sequence is framed by [CLS] and [SEP], mapped to
// vocabulary ids, cut to core.MaxLen and right-padded with the pad id. The
// attention mask flags the content prefix with 1 and padding with 0.
//
// Decode performs the approximate inverse for providers that accept text.
package tokenizer
