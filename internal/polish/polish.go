// Package polish implements S10 Polish: the final cosmetic cleanup applied
// to generated target-language text before it leaves the pipeline. It
// strips trailing whitespace from every line and guarantees the output
// ends with exactly one trailing newline (none if the input is empty).
package polish

import "strings"

// Clean strips trailing whitespace from each line of text and normalizes
// the file to end with a single trailing newline.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r\v\f")
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	if len(lines) == 0 {
		return ""
	}

	return strings.Join(lines, "\n") + "\n"
}
