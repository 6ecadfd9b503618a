package normalize

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var invisibles = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\u200b", "",
	"\ufeff", "",
	"\u00ad", "",
)

// cleanText applies NFKC normalization and collapses whitespace inside each
// line. Tab-separated cells become "a | b" so that pasted spreadsheet tables
// look like the tables produced from HTML. Runs of blank lines collapse to
// one.
func cleanText(s string) string {
	s = norm.NFKC.String(invisibles.Replace(s))

	var out []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = cleanLine(line)
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func cleanLine(line string) string {
	if !strings.Contains(line, "\t") {
		return strings.Join(strings.Fields(line), " ")
	}
	var cells []string
	for _, c := range strings.Split(line, "\t") {
		cells = append(cells, strings.Join(strings.Fields(c), " "))
	}
	for len(cells) > 0 && cells[0] == "" {
		cells = cells[1:]
	}
	for len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return strings.Join(cells, " | ")
}

// truncate cuts s to at most max runes and reports whether it did.
func truncate(s string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s, false
	}
	n := 0
	for i := range s {
		if n == max {
			return strings.TrimRight(s[:i], " \n"), true
		}
		n++
	}
	return s, false
}
