package tokbridge

import (
	"strings"
	"testing"
)

// newTestCodec skips the test when the encoding dictionary cannot be
// loaded (tiktoken fetches it on first use in unprimed environments).
func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := New("")
	if err != nil {
		t.Skipf("encoding unavailable: %v", err)
	}
	return c
}

func TestNew_DefaultEncoding(t *testing.T) {
	c := newTestCodec(t)
	if c.Name() != DefaultEncoding {
		t.Fatalf("name: got %q, want %q", c.Name(), DefaultEncoding)
	}
}

func TestNew_UnknownEncoding(t *testing.T) {
	if _, err := New("no_such_encoding"); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}

func TestRoundTrip(t *testing.T) {
	c := newTestCodec(t)

	texts := []string{
		"Hello world.",
		"Mixed ASCII and Unicode: café, naïve, 東京, emoji 🚀.",
		strings.Repeat("standard operating procedure ", 40),
	}
	for _, text := range texts {
		ids, err := c.Encode(text)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := c.Decode(ids)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got != text {
			t.Errorf("round trip mismatch:\n got %q\nwant %q", got, text)
		}
	}
}

func TestSliceRoundTrip(t *testing.T) {
	// Adjacent slices of one encoding must rebuild the original text:
	// this is exactly how the sliding window consumes the codec.
	c := newTestCodec(t)

	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 30)
	ids, _ := c.Encode(text)
	if len(ids) < 10 {
		t.Fatalf("expected more tokens, got %d", len(ids))
	}

	var rebuilt strings.Builder
	for start := 0; start < len(ids); start += 25 {
		end := start + 25
		if end > len(ids) {
			end = len(ids)
		}
		piece, err := c.Decode(ids[start:end])
		if err != nil {
			t.Fatalf("decode slice [%d,%d): %v", start, end, err)
		}
		rebuilt.WriteString(piece)
	}
	if rebuilt.String() != text {
		t.Fatal("adjacent slices did not rebuild the original text")
	}
}

func TestCount(t *testing.T) {
	c := newTestCodec(t)
	if got := c.Count(""); got != 0 {
		t.Fatalf("count of empty text: got %d, want 0", got)
	}
	if got := c.Count("hello world"); got == 0 {
		t.Fatal("count of non-empty text: got 0")
	}
}
