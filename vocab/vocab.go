package vocab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/poiesic/notesearch/core"
)

// Reserved tokens resolved by the tokenizer.
const (
	UnknownToken = "[UNK]"
	PadToken     = "[PAD]"
	StartToken   = "[CLS]"
	EndToken     = "[SEP]"
)

// maxLineSize bounds a single vocabulary line.
const maxLineSize = 1024 * 1024

// Vocabulary maps subword tokens to integer ids.
// It is immutable after construction and safe for concurrent use.
type Vocabulary struct {
	ids    map[string]int
	tokens []string
}

// New builds a vocabulary from tokens where each token's id is its index.
// When a token occurs more than once the last occurrence's id wins.
func New(tokens []string) *Vocabulary {
	v := &Vocabulary{
		ids:    make(map[string]int, len(tokens)),
		tokens: make([]string, len(tokens)),
	}
	copy(v.tokens, tokens)
	for i, token := range tokens {
		v.ids[token] = i
	}
	return v
}

// Empty returns a vocabulary with no entries. Every lookup misses.
func Empty() *Vocabulary {
	return New(nil)
}

// Load reads one token per line from r. Line order defines id assignment.
// Both "\n" and "\r\n" terminate a line; blank lines still consume an id.
// No other character separates tokens, so a lone "\r" inside a line is kept.
func Load(r io.Reader) (*Vocabulary, error) {
	var tokens []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Empty(), fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	return New(tokens), nil
}

// LoadFile reads a vocabulary from the file at path.
// The returned vocabulary is never nil: when the file cannot be read an empty
// vocabulary is returned together with the error so callers can degrade.
func LoadFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Empty(), fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	defer f.Close()
	return Load(f)
}

// IDOf returns the id of token.
func (v *Vocabulary) IDOf(token string) (int, bool) {
	id, ok := v.ids[token]
	return id, ok
}

// Contains reports whether token has an id.
func (v *Vocabulary) Contains(token string) bool {
	_, ok := v.ids[token]
	return ok
}

// TokenOf returns the token on line id.
func (v *Vocabulary) TokenOf(id int) (string, bool) {
	if id < 0 || id >= len(v.tokens) {
		return "", false
	}
	return v.tokens[id], true
}

// Len returns the number of lines the vocabulary was built from.
func (v *Vocabulary) Len() int {
	return len(v.tokens)
}

// Digest returns a hash of the token list. Vocabularies with the same
// digest assign the same ids.
func (v *Vocabulary) Digest() string {
	return core.ContentHash(strings.Join(v.tokens, "\n"))
}

// UnknownID returns the id of the unknown token.
func (v *Vocabulary) UnknownID() (int, bool) {
	return v.IDOf(UnknownToken)
}

// StartID returns the id of the sequence-start token.
func (v *Vocabulary) StartID() (int, bool) {
	return v.IDOf(StartToken)
}

// EndID returns the id of the sequence-end token.
func (v *Vocabulary) EndID() (int, bool) {
	return v.IDOf(EndToken)
}

// PadID returns the id of the padding token, or 0 when the vocabulary
// does not list one.
func (v *Vocabulary) PadID() int {
	if id, ok := v.IDOf(PadToken); ok {
		return id
	}
	return 0
}

// IsReserved reports whether id belongs to one of the reserved tokens.
func (v *Vocabulary) IsReserved(id int) bool {
	token, ok := v.TokenOf(id)
	if !ok {
		return false
	}
	switch token {
	case UnknownToken, PadToken, StartToken, EndToken:
		// A shadowed duplicate line is not the reserved id.
		return v.ids[token] == id
	}
	return false
}
