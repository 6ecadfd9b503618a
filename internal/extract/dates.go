package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	numPattern   = `(?:\d{1,3}(?:,\d{2,3})+|\d+)`
	monthPattern = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`
	datePattern  = `(?:\b\d{1,2}[-/.]\d{1,2}[-/.]\d{4}\b|\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}(?:st|nd|rd|th)?\s+` + monthPattern + `\.?,?\s+\d{4}\b|\b` + monthPattern + `\.?\s+\d{1,2}(?:st|nd|rd|th)?,?\s+\d{4}\b)`
	rangeSep     = `\s*(?:-|–|—|to|till|until|se|से)\s*`
)

var (
	dateRe      = regexp.MustCompile(`(?i)` + datePattern)
	dateRangeRe = regexp.MustCompile(`(?i)(` + datePattern + `)` + rangeSep + `(` + datePattern + `)`)
	numberRe    = regexp.MustCompile(`\b` + numPattern + `\b`)
	numRangeRe  = regexp.MustCompile(`(?i)\b(` + numPattern + `)` + rangeSep + `(` + numPattern + `)\b`)
	moneyRe     = regexp.MustCompile(`(?i)(?:₹|rs\.?|inr)?\s*(` + numPattern + `)(?:\.\d{1,2})?(?:\s*/-)?`)
	trailingNum = regexp.MustCompile(`(?:^|[^\d,])(` + numPattern + `)\s*\+?\s*$`)

	numericDMY = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})$`)
	numericYMD = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dayMonth   = regexp.MustCompile(`(?i)^(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthPattern + `)\.?,?\s+(\d{4})$`)
	monthDay   = regexp.MustCompile(`(?i)^(` + monthPattern + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})$`)
)

var monthNumbers = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// isoDate converts a literal date to YYYY-MM-DD when only one reading of it
// is possible. Numeric day/month pairs that are valid both ways and differ
// are ambiguous and yield "".
func isoDate(literal string) string {
	literal = strings.TrimSpace(literal)
	if m := numericYMD.FindStringSubmatch(literal); m != nil {
		return validISO(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}
	if m := numericDMY.FindStringSubmatch(literal); m != nil {
		a, b, y := atoi(m[1]), atoi(m[2]), atoi(m[3])
		dayFirst := validISO(y, b, a)
		monthFirst := validISO(y, a, b)
		switch {
		case dayFirst != "" && monthFirst != "" && dayFirst != monthFirst:
			return ""
		case dayFirst != "":
			return dayFirst
		default:
			return monthFirst
		}
	}
	if m := dayMonth.FindStringSubmatch(literal); m != nil {
		return validISO(atoi(m[3]), int(monthOf(m[2])), atoi(m[1]))
	}
	if m := monthDay.FindStringSubmatch(literal); m != nil {
		return validISO(atoi(m[3]), int(monthOf(m[1])), atoi(m[2]))
	}
	return ""
}

func validISO(year, month, day int) string {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func monthOf(name string) time.Month {
	name = strings.ToLower(name)
	if len(name) > 3 {
		name = name[:3]
	}
	return monthNumbers[name]
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// dateSpans returns the byte ranges of all dates in s[from:to], shifted to
// absolute offsets.
func dateSpans(s string, from, to int) [][]int {
	spans := dateRe.FindAllStringIndex(s[from:to], -1)
	for _, sp := range spans {
		sp[0] += from
		sp[1] += from
	}
	return spans
}

func overlaps(spans [][]int, start, end int) bool {
	for _, sp := range spans {
		if start < sp[1] && end > sp[0] {
			return true
		}
	}
	return false
}

// digitKey strips grouping commas so "1,000" and "1000" compare equal.
func digitKey(v string) string {
	return strings.ReplaceAll(v, ",", "")
}
