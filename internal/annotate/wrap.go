package annotate

import "strings"

// Wrap fills text into lines of at most width characters. Runs of whitespace
// collapse to a single space. Words longer than width are split, and the
// first piece fills whatever room is left on the current line. Hyphens are
// ordinary characters: a line never breaks after one.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}

	var lines []string
	var cur []rune

	for _, word := range strings.Fields(text) {
		w := []rune(word)

		if len(cur) > 0 && len(cur)+1+len(w) <= width {
			cur = append(cur, ' ')
			cur = append(cur, w...)
			continue
		}
		if len(cur) == 0 && len(w) <= width {
			cur = w
			continue
		}

		if len(w) > width {
			if len(cur) > 0 {
				if room := width - len(cur) - 1; room > 0 {
					cur = append(cur, ' ')
					cur = append(cur, w[:room]...)
					w = w[room:]
				}
				lines = append(lines, string(cur))
			}
			for len(w) > width {
				lines = append(lines, string(w[:width]))
				w = w[width:]
			}
			cur = w
			continue
		}

		lines = append(lines, string(cur))
		cur = w
	}

	if len(cur) > 0 {
		lines = append(lines, string(cur))
	}
	return lines
}
