package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/amishk599/jobpress/internal/model"
	"github.com/amishk599/jobpress/internal/schema"
)

var (
	urlRe = regexp.MustCompile(`https?://[^\s|<>"()\[\]]+`)

	// noValueRe matches a label followed by a word that says there is no value.
	noValueRe = regexp.MustCompile(`(?i)^(?:nil|none|n/?a|free|exempt(?:ed)?|no fee|update soon|not (?:specified|applicable|available|announced|mentioned|notified))\b`)

	yearRe     = regexp.MustCompile(`^(?:19|20)\d{2}$`)
	yearWordRe = regexp.MustCompile(`(?i)\b(?:recruitment|notification|bharti|exam(?:ination)?|advt\.?|jobs?|online form|year|session|batch|cycle)\s*$`)
)

const rejectReach = 24

// candidate is one value found for a field, with where it came from.
type candidate struct {
	value  string
	iso    string
	items  []string
	rows   [][]string
	key    string // equality key used to detect conflicting values
	offset int    // byte offset of the value in the text
	span   string // verbatim label-to-value substring
	weak   bool   // found only by a value-first label such as "500 Posts"
}

// labelStarts returns the sorted offsets at which any label of s begins.
// A value search after one label never runs into the next one.
func labelStarts(text string, s *schema.Schema) []int {
	var out []int
	for _, f := range s.Fields {
		for _, label := range f.Labels {
			if label.ValueFirst {
				continue
			}
			for _, loc := range label.Re.FindAllStringIndex(text, -1) {
				if contextOK(text, f, loc[0]) {
					out = append(out, loc[0])
				}
			}
		}
	}
	sort.Ints(out)
	return out
}

// nextStop returns the first offset in stops at or after from, or end.
func nextStop(stops []int, from, end int) int {
	i := sort.SearchInts(stops, from)
	if i < len(stops) && stops[i] < end {
		return stops[i]
	}
	return end
}

// scalarCandidates runs every label rule of f over text and collects the
// values they point at. stops are the label offsets from labelStarts.
func scalarCandidates(text string, f schema.Field, stops []int) []candidate {
	var out []candidate
	for _, label := range f.Labels {
		for _, loc := range label.Re.FindAllStringIndex(text, -1) {
			if !contextOK(text, f, loc[0]) {
				continue
			}
			var c candidate
			var ok bool
			if label.ValueFirst {
				c, ok = valueBefore(text, f, loc)
			} else {
				c, ok = valueAfter(text, f, label, loc, stops)
			}
			if ok {
				out = append(out, c)
			}
		}
	}
	return out
}

func contextOK(text string, f schema.Field, labelStart int) bool {
	if f.ContextRe == nil {
		return true
	}
	return f.ContextRe.MatchString(text[backward(text, labelStart, f.ContextWindow):labelStart])
}

func rejected(text string, f schema.Field, labelStart, labelEnd, valueStart int) bool {
	if f.RejectRe == nil {
		return false
	}
	prefix := text[segmentStart(text, labelStart, rejectReach):labelStart]
	gap := ""
	if valueStart > labelEnd {
		gap = text[labelEnd:valueStart]
	}
	return f.RejectRe.MatchString(prefix + " " + gap)
}

// valueBefore handles "500 Posts" style labels where the number comes first.
func valueBefore(text string, f schema.Field, loc []int) (candidate, bool) {
	if f.Shape != model.ShapeInteger && f.Shape != model.ShapeCurrency {
		return candidate{}, false
	}
	from := backward(text, loc[0], rejectReach)
	if i := strings.LastIndexByte(text[from:loc[0]], '\n'); i >= 0 {
		from += i + 1
	}
	m := trailingNum.FindStringSubmatchIndex(text[from:loc[0]])
	if m == nil {
		return candidate{}, false
	}
	start, end := from+m[2], from+m[3]
	if overlaps(dateSpans(text, from, loc[1]), start, end) {
		return candidate{}, false
	}
	if rejected(text, f, start, start, start) {
		return candidate{}, false
	}
	v := text[start:end]
	if yearRe.MatchString(v) && yearWordRe.MatchString(text[from:start]) {
		return candidate{}, false
	}
	return candidate{value: v, key: digitKey(v), offset: start, span: text[start:loc[1]], weak: true}, true
}

// valueAfter searches the window after a label for the label's pick-th value.
// The window ends at the next label and, for numbers and dates, at the end
// of the clause.
func valueAfter(text string, f schema.Field, label schema.Label, loc []int, stops []int) (candidate, bool) {
	switch f.Shape {
	case model.ShapeText:
		return textAfter(text, f, loc)
	case model.ShapeList:
		return listAfter(text, f, loc)
	}

	start := loc[1]
	if noValueRe.MatchString(text[skipSeparators(text, start):]) {
		return candidate{}, false
	}
	end := nextStop(stops, start, scanEnd(text, start, f.Window, false))
	if f.Shape != model.ShapeURL {
		end = clauseEnd(text, start, end, f.Shape != model.ShapeDate)
	}
	window := text[start:end]

	var spans [][]int // absolute [start, end) of the candidate values, in order
	switch {
	case label.Range:
		spans = rangeValues(text, f.Shape, start, end)
	case f.Shape == model.ShapeDate:
		spans = dateSpans(text, start, end)
	case f.Shape == model.ShapeURL:
		for _, m := range urlRe.FindAllStringIndex(window, -1) {
			spans = append(spans, []int{start + m[0], start + m[0] + len(strings.TrimRight(window[m[0]:m[1]], ".,;"))})
		}
	case f.Shape == model.ShapeCurrency:
		dates := dateSpans(text, start, end)
		for _, m := range moneyRe.FindAllStringSubmatchIndex(window, -1) {
			if !overlaps(dates, start+m[0], start+m[1]) {
				spans = append(spans, []int{start + m[2], start + m[3]})
			}
		}
	case f.Shape == model.ShapeInteger:
		dates := dateSpans(text, start, end)
		for _, m := range numberRe.FindAllStringIndex(window, -1) {
			if !overlaps(dates, start+m[0], start+m[1]) {
				spans = append(spans, []int{start + m[0], start + m[1]})
			}
		}
	}

	if label.Pick > len(spans) {
		return candidate{}, false
	}
	sp := spans[label.Pick-1]
	if rejected(text, f, loc[0], loc[1], sp[0]) {
		return candidate{}, false
	}
	v := text[sp[0]:sp[1]]
	c := candidate{value: v, offset: sp[0], span: text[loc[0]:sp[1]]}
	switch f.Shape {
	case model.ShapeDate:
		c.iso = isoDate(v)
		c.key = c.iso
		if c.key == "" {
			c.key = strings.ToLower(strings.Join(strings.Fields(v), " "))
		}
	case model.ShapeCurrency, model.ShapeInteger:
		c.key = digitKey(v)
	default:
		c.key = v
	}
	return c, true
}

// rangeValues finds the first "A to B" range in the window and returns the
// spans of both ends.
func rangeValues(text string, shape model.Shape, start, end int) [][]int {
	window := text[start:end]
	switch shape {
	case model.ShapeDate:
		m := dateRangeRe.FindStringSubmatchIndex(window)
		if m == nil {
			return nil
		}
		return [][]int{{start + m[2], start + m[3]}, {start + m[4], start + m[5]}}
	case model.ShapeInteger, model.ShapeCurrency:
		dates := dateSpans(text, start, end)
		for _, m := range numRangeRe.FindAllStringSubmatchIndex(window, -1) {
			if overlaps(dates, start+m[0], start+m[1]) {
				continue
			}
			return [][]int{{start + m[2], start + m[3]}, {start + m[4], start + m[5]}}
		}
	}
	return nil
}

// textAfter takes the rest of the clause after a label, verbatim.
func textAfter(text string, f schema.Field, loc []int) (candidate, bool) {
	start := skipSeparators(text, loc[1])
	end := scanEnd(text, start, f.Window, true)
	raw := text[start:end]
	v := trimValue(raw)
	if v == "" {
		return candidate{}, false
	}
	if rejected(text, f, loc[0], loc[1], start) {
		return candidate{}, false
	}
	offset := start + strings.Index(raw, v)
	return candidate{
		value:  v,
		key:    strings.ToLower(v),
		offset: offset,
		span:   text[loc[0] : offset+len(v)],
	}, true
}
