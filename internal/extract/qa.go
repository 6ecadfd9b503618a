package extract

import (
	"regexp"
	"strings"
)

var (
	questionRe     = regexp.MustCompile(`(?i)^\s*(?:\*\*)?(?:q(?:ues(?:tion)?)?\s*\d{0,2}\s*[.:)\-]|प्रश्न\s*\d{0,2}\s*[.:)\-]?)\s*(.+?)(?:\*\*)?\s*$`)
	answerRe       = regexp.MustCompile(`(?i)^\s*(?:ans(?:wer)?|a|उत्तर)\s*[.:)\-]\s*(.+)$`)
	inlineAnswerRe = regexp.MustCompile(`(?i)\s(?:ans(?:wer)?|उत्तर)\s*[.:\-]\s*`)
)

// qaCandidates pairs every question line with the answer that follows it,
// either on the same line or on the next one. Questions without an answer
// are skipped rather than answered.
func qaCandidates(text string) []candidate {
	ls := lines(text)
	var rows [][]string
	first := -1
	offset := 0
	for i := 0; i < len(ls); i++ {
		lineOffset := offset
		offset += len(ls[i]) + 1

		m := questionRe.FindStringSubmatch(ls[i])
		if m == nil {
			continue
		}
		q := strings.TrimSpace(m[1])
		var a string
		if loc := inlineAnswerRe.FindStringIndex(q); loc != nil {
			q, a = strings.TrimSpace(q[:loc[0]]), strings.TrimSpace(q[loc[1]:])
		} else if i+1 < len(ls) {
			if am := answerRe.FindStringSubmatch(ls[i+1]); am != nil {
				a = strings.TrimSpace(am[1])
				offset += len(ls[i+1]) + 1
				i++
			}
		}
		if q == "" || a == "" {
			continue
		}
		if first < 0 {
			first = lineOffset
		}
		rows = append(rows, []string{q, a})
	}
	if len(rows) == 0 {
		return nil
	}
	return []candidate{{rows: rows, key: rowsKey(rows), offset: first}}
}
