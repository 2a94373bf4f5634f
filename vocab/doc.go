// Package vocab provides the subword vocabulary used by the tokenizer.
//
// A vocabulary is read once at startup from a newline-delimited token list;
// the 0-based line index of a token is its id. The reserved tokens [UNK],
// [PAD], [CLS] and [SEP] must appear in the list for the tokenizer to
// resolve them. A vocabulary that fails to load is empty rather than nil, so
// tokenization keeps working with degraded output.
package vocab
