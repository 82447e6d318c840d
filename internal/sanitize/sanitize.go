// Package sanitize removes code-fence markers from model output.
package sanitize

import "strings"

// Fences are the markers Clean removes, in the order they are applied
var Fences = []string{"```html", "```latex", "```"}

// Clean removes every fence marker from raw, wherever it appears, and leaves all
// other bytes in order. Clean(Clean(x)) == Clean(x).
func Clean(raw string) string {
	return Strip(raw, Fences...)
}

// Strip removes every occurrence of each marker, one global pass per marker in
// the order given, and repeats until nothing changes. A removal can join its
// neighbours into a new occurrence.
func Strip(raw string, markers ...string) string {
	s := raw
	for {
		next := s
		for _, m := range markers {
			if m != "" {
				next = strings.ReplaceAll(next, m, "")
			}
		}
		if next == s {
			return s
		}
		s = next
	}
}
