package extract

import (
	"regexp"
	"strings"

	"github.com/amishk599/jobpress/internal/model"
)

var topicNoiseRe = regexp.MustCompile(`(?i)\s*\b(?:\d{4}|recruitment|vacancy|vacancies|notification|online form|apply online|bharti|exam|jobs?)\b\s*`)

// topicAnchors returns offsets where the job topic is mentioned. When the
// full topic never appears, its core (without years and words like
// "Recruitment") is tried instead.
func topicAnchors(text, topic string) []int {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil
	}
	if a := findAll(text, topic); len(a) > 0 {
		return a
	}
	core := strings.TrimSpace(topicNoiseRe.ReplaceAllString(topic, " "))
	if len([]rune(core)) < 3 || core == topic {
		return nil
	}
	return findAll(text, core)
}

func findAll(text, needle string) []int {
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(needle))
	if err != nil {
		return nil
	}
	var out []int
	for _, loc := range re.FindAllStringIndex(text, -1) {
		out = append(out, loc[0])
	}
	return out
}

// resolve picks one candidate. Explicitly labelled values outrank value-first
// ones. A single distinct value wins outright. Conflicting values are
// settled by proximity to a topic mention; without an anchor, or on a tie
// between different values, the field is ambiguous.
func resolve(text string, cands []candidate, anchors []int) (candidate, string) {
	if len(cands) == 0 {
		return candidate{}, model.ReasonNotFound
	}
	cands = preferLabelled(cands)
	distinct := map[string]bool{}
	for _, c := range cands {
		distinct[c.key] = true
	}
	if len(distinct) == 1 {
		return cands[0], ""
	}
	if len(anchors) == 0 {
		return candidate{}, model.ReasonAmbiguous
	}

	best := -1
	var winners []candidate
	for _, c := range cands {
		d := distance(text, c.offset, anchors)
		switch {
		case best < 0 || d < best:
			best = d
			winners = []candidate{c}
		case d == best:
			winners = append(winners, c)
		}
	}
	for _, w := range winners[1:] {
		if w.key != winners[0].key {
			return candidate{}, model.ReasonAmbiguous
		}
	}
	return winners[0], ""
}

// distance from offset to the nearest anchor; zero when they share a line.
func distance(text string, offset int, anchors []int) int {
	start, end := lineBounds(text, offset)
	best := -1
	for _, a := range anchors {
		d := offset - a
		if d < 0 {
			d = -d
		}
		if a >= start && a < end {
			d = 0
		}
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

func preferLabelled(cands []candidate) []candidate {
	var strong []candidate
	for _, c := range cands {
		if !c.weak {
			strong = append(strong, c)
		}
	}
	if len(strong) == 0 {
		return cands
	}
	return strong
}
