package normalize

import (
	"strings"
	"unicode"
)

// DefaultBoilerplate lists the class/id keywords of page chrome that never
// carries posting facts.
var DefaultBoilerplate = []string{
	"sidebar", "widget", "advert", "ads", "banner", "menu", "breadcrumb",
	"share", "social", "cookie", "popup", "related",
}

// BoilerplateFilter matches elements whose class or id marks them as page
// chrome. Matching is case-insensitive on whole name tokens or token
// prefixes, so "sidebar-left" and "advertisement" match while "downloads"
// does not match "ads".
type BoilerplateFilter struct {
	keywords []string
}

// NewBoilerplateFilter returns a filter for the given keywords. An empty list
// matches nothing.
func NewBoilerplateFilter(keywords []string) *BoilerplateFilter {
	lower := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			lower = append(lower, kw)
		}
	}
	return &BoilerplateFilter{keywords: lower}
}

// Match reports whether any class or id token starts with a keyword.
func (f *BoilerplateFilter) Match(class, id string) bool {
	if len(f.keywords) == 0 {
		return false
	}
	tokens := strings.FieldsFunc(strings.ToLower(class+" "+id), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		for _, kw := range f.keywords {
			if strings.HasPrefix(tok, kw) {
				return true
			}
		}
	}
	return false
}
