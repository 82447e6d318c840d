package llm

import (
	"context"
	"errors"
	"strings"
)

// ErrStreamClosed is returned when a stream ends without a Done event
var ErrStreamClosed = errors.New("stream closed before completion")

// Collect drains a stream and returns the fragments joined in arrival order,
// which is the same text Complete would have returned. onChunk, if set, sees
// each fragment as it arrives. On error nothing partial is returned.
func Collect(ctx context.Context, events <-chan StreamEvent, onChunk func(string)) (string, error) {
	var b strings.Builder

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return "", ErrStreamClosed
			}
			if ev.Error != nil {
				return "", ev.Error
			}
			if ev.Chunk != "" {
				b.WriteString(ev.Chunk)
				if onChunk != nil {
					onChunk(ev.Chunk)
				}
			}
			if ev.Done {
				return b.String(), nil
			}
		}
	}
}

// Fragments splits text into pieces of at most size bytes on rune boundaries
func Fragments(text string, size int) []string {
	if size <= 0 || len(text) <= size {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	var out []string
	for len(text) > 0 {
		n := size
		if n >= len(text) {
			n = len(text)
		} else {
			for n > 0 && !isRuneStart(text[n]) {
				n--
			}
			if n == 0 {
				n = size
				for n < len(text) && !isRuneStart(text[n]) {
					n++
				}
			}
		}
		out = append(out, text[:n])
		text = text[n:]
	}
	return out
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
