package chunkpipe

import "fmt"

// span is one window over an element's token stream: the half-open token
// range [start, end) and its decoded text.
type span struct {
	start, end int
	text       string
}

// windows tokenizes text and slides a MaxTokens window with
// OverlapTokens overlap. Empty text yields no spans. The loop terminates
// because validate guarantees overlap < max, so the cursor strictly
// advances, and the final window stops exactly at the token count
// instead of sliding back over the tail.
//
// Consecutive spans satisfy next.start == prev.end - OverlapTokens; the
// union of spans covers [0, N) with no gaps. The last span may be
// shorter than MaxTokens.
func (p *Pipeline) windows(text string) ([]span, error) {
	ids, err := p.tok.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	n := len(ids)
	if n == 0 {
		return nil, nil
	}

	var out []span
	start := 0
	for start < n {
		end := start + p.cfg.MaxTokens
		if end > n {
			end = n
		}
		piece, err := p.tok.Decode(ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("decode tokens [%d,%d): %w", start, end, err)
		}
		out = append(out, span{start: start, end: end, text: piece})
		if end == n {
			break
		}
		start = end - p.cfg.OverlapTokens
	}
	return out, nil
}
