package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// All positions in this package are byte offsets into the normalized text.

// forward returns the offset reached by advancing n runes from start.
func forward(s string, start, n int) int {
	i := start
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}

// backward returns the offset reached by moving n runes back from end.
func backward(s string, end, n int) int {
	i := end
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return i
}

var abbreviations = map[string]bool{
	"rs": true, "no": true, "nos": true, "dr": true, "mr": true, "mrs": true, "ms": true,
	"st": true, "vs": true, "etc": true, "approx": true, "sr": true, "jr": true,
	"govt": true, "dept": true, "advt": true, "min": true, "max": true, "yrs": true,
	"q": true, "ans": true, "e.g": true, "i.e": true, "b.tech": true, "m.tech": true,
}

// sentenceEnd reports whether the '.' at s[i] closes a sentence.
func sentenceEnd(s string, i int) bool {
	if i+1 >= len(s) {
		return true
	}
	if s[i+1] != ' ' && s[i+1] != '\n' {
		return false
	}
	j := i
	for j > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:j])
		if !unicode.IsLetter(r) && r != '.' {
			break
		}
		j -= size
	}
	word := strings.ToLower(s[j:i])
	if word == "" {
		// "500." or "/-." closes a sentence only when followed by a capital.
		next, _ := utf8.DecodeRuneInString(strings.TrimLeft(s[i+1:], " "))
		return unicode.IsUpper(next) || next == utf8.RuneError
	}
	return !abbreviations[word] && utf8.RuneCountInString(word) > 1
}

// scanEnd bounds a value search that starts at from: n runes ahead, stopping
// early at a line break or a sentence end, and at table cell or bullet
// separators when cells is set.
func scanEnd(s string, from, n int, cells bool) int {
	limit := forward(s, from, n)
	for i := from; i < limit; {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '\n':
			return i
		case cells && (r == '|' || r == '•'):
			return i
		case r == '.' && sentenceEnd(s, i):
			return i
		}
		i += size
	}
	return limit
}

// clauseEnd shortens [from, end) to the first clause break: a ';', or a ','
// followed by a space. When digits is false a comma that is followed by a
// number ("March 5, 2026") does not break the clause.
func clauseEnd(s string, from, end int, digits bool) int {
	for i := from; i < end; i++ {
		switch s[i] {
		case ';':
			return i
		case ',':
			if i+1 >= end || s[i+1] != ' ' {
				continue
			}
			rest := strings.TrimLeft(s[i+1:end], " ")
			if !digits && rest != "" && rest[0] >= '0' && rest[0] <= '9' {
				continue
			}
			return i
		}
	}
	return end
}

// segmentStart walks back from end, at most n runes, to the start of the
// current cell, bullet, clause or line.
func segmentStart(s string, end, n int) int {
	limit := backward(s, end, n)
	for i := end; i > limit; {
		r, size := utf8.DecodeLastRuneInString(s[:i])
		switch r {
		case '\n', '|', '•', ';', ',':
			return i
		case '.':
			if sentenceEnd(s, i-size) {
				return i
			}
		}
		i -= size
	}
	return limit
}

// skipSeparators moves past the punctuation that sits between a label and
// its value.
func skipSeparators(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == '\n' || !(unicode.IsSpace(r) || strings.ContainsRune(":-–—=|>*", r)) {
			break
		}
		i += size
	}
	return i
}

func lineBounds(s string, i int) (int, int) {
	start := strings.LastIndexByte(s[:i], '\n') + 1
	end := strings.IndexByte(s[i:], '\n')
	if end < 0 {
		return start, len(s)
	}
	return start, i + end
}

// trimValue removes surrounding space and trailing clause punctuation.
func trimValue(v string) string {
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(v), ".,;:"))
}

func lines(s string) []string {
	return strings.Split(s, "\n")
}
