package extract

import (
	"regexp"
	"strings"

	"github.com/amishk599/jobpress/internal/schema"
)

var (
	itemSplitRe = regexp.MustCompile(`\s*(?:;|→|->|»|,\s)\s*`)
	bulletRe    = regexp.MustCompile(`(?i)^\s*(?:[-*•●▪]|\d{1,2}[.)]|[a-h][.)]|step\s*\d+\s*[:.)\-]?)\s*(.+)$`)
)

// listAfter collects every item announced by a list label: the items on the
// label's own line, then any bullet or numbered lines directly below it.
func listAfter(text string, f schema.Field, loc []int) (candidate, bool) {
	start := skipSeparators(text, loc[1])
	end := scanEnd(text, start, f.Window, true)
	if rejected(text, f, loc[0], loc[1], start) {
		return candidate{}, false
	}

	var items []string
	inline := strings.TrimSpace(text[start:end])
	if inline != "" && !strings.HasSuffix(inline, ":") {
		for _, it := range itemSplitRe.Split(inline, -1) {
			if it = trimValue(it); it != "" {
				items = append(items, it)
			}
		}
	}

	spanEnd := end
	_, lineEnd := lineBounds(text, start)
	if end >= lineEnd && lineEnd < len(text) {
		rest := text[lineEnd+1:]
		offset := lineEnd + 1
		for _, line := range lines(rest) {
			m := bulletRe.FindStringSubmatch(line)
			if m == nil {
				break
			}
			if it := trimValue(m[1]); it != "" {
				items = append(items, it)
			}
			offset += len(line) + 1
			spanEnd = offset - 1
		}
	}

	if len(items) == 0 {
		return candidate{}, false
	}
	if spanEnd > len(text) {
		spanEnd = len(text)
	}
	return candidate{
		items:  items,
		key:    strings.ToLower(strings.Join(items, "\x00")),
		offset: start,
		span:   text[loc[0]:spanEnd],
	}, true
}
