// Package tokbridge adapts the tiktoken BPE tokenizer to the
// chunkpipe.Tokenizer capability.
//
// A Codec is immutable after construction and safe for concurrent use
// across documents; callers that prefer full isolation can instantiate
// one per worker. Encode and Decode always use the same encoding, as the
// windowing contract requires.
//
// BPE boundary merges are not perfectly invertible for every possible
// token slice; for the substrings the sliding window produces (slices of
// a full-text encoding) decode/encode round-trips hold. This is the
// documented tokenizer limitation.
package tokbridge

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used when none is named.
const DefaultEncoding = "cl100k_base"

// Codec wraps one tiktoken encoding.
type Codec struct {
	name string
	enc  *tiktoken.Tiktoken
}

// New loads the named tiktoken encoding (e.g. "cl100k_base",
// "o200k_base"). An empty name selects DefaultEncoding.
func New(name string) (*Codec, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("tokbridge: load encoding %q: %w", name, err)
	}
	return &Codec{name: name, enc: enc}, nil
}

// Name returns the encoding name.
func (c *Codec) Name() string { return c.name }

// Encode converts text to BPE token ids. Special-token text is encoded
// as ordinary text, never as control tokens.
func (c *Codec) Encode(text string) ([]int, error) {
	return c.enc.Encode(text, nil, nil), nil
}

// Decode converts token ids back to text.
func (c *Codec) Decode(ids []int) (string, error) {
	return c.enc.Decode(ids), nil
}

// Count returns the token count of text under this encoding.
func (c *Codec) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}
