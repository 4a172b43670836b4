package chunkpipe

import "errors"

// runeCodec is a deterministic test tokenizer: one token per rune, ids
// are code points. Trivially invertible, so every window decode
// round-trips exactly.
type runeCodec struct{}

func (runeCodec) Encode(text string) ([]int, error) {
	runes := []rune(text)
	ids := make([]int, len(runes))
	for i, r := range runes {
		ids[i] = int(r)
	}
	return ids, nil
}

func (runeCodec) Decode(ids []int) (string, error) {
	runes := make([]rune, len(ids))
	for i, id := range ids {
		runes[i] = rune(id)
	}
	return string(runes), nil
}

// failCodec simulates a tokenizer failure on malformed input.
type failCodec struct {
	failEncode bool
	failDecode bool
}

var errCodec = errors.New("codec failure")

func (f failCodec) Encode(text string) ([]int, error) {
	if f.failEncode {
		return nil, errCodec
	}
	return runeCodec{}.Encode(text)
}

func (f failCodec) Decode(ids []int) (string, error) {
	if f.failDecode {
		return "", errCodec
	}
	return runeCodec{}.Decode(ids)
}
