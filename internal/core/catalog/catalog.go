// Package catalog holds the ordered pattern catalogs used by the extraction stages.
// Order inside a catalog is significant: the first pattern that matches wins.
package catalog

import (
	"regexp"
)

// Catalog is an ordered list of compiled patterns.
type Catalog []*regexp.Regexp

// Named is a pattern with a stable identifier.
type Named struct {
	Name string
	Re   *regexp.Regexp
}

// Match describes the winning pattern of a catalog lookup.
// Value is capture group 1, or the whole match when the pattern has no group.
type Match struct {
	Pattern    int
	Start, End int
	Value      string
	ValueStart int
	ValueEnd   int
}

// New compiles patterns in order and panics on a bad pattern.
func New(patterns ...string) Catalog {
	c := make(Catalog, len(patterns))
	for i, p := range patterns {
		c[i] = regexp.MustCompile(p)
	}
	return c
}

// Lookup returns the first match of the first pattern that matches text.
func (c Catalog) Lookup(text string) (Match, bool) {
	return c.LookupValid(text, nil)
}

// LookupValid is Lookup with an acceptance check. A pattern whose first match is rejected
// does not stop the search; the next pattern is tried.
func (c Catalog) LookupValid(text string, accept func(string) bool) (Match, bool) {
	for i, re := range c {
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		m := Match{Pattern: i, Start: loc[0], End: loc[1], ValueStart: loc[0], ValueEnd: loc[1]}
		if len(loc) >= 4 && loc[2] >= 0 {
			m.ValueStart, m.ValueEnd = loc[2], loc[3]
		}
		m.Value = text[m.ValueStart:m.ValueEnd]
		if accept != nil && !accept(m.Value) {
			continue
		}
		return m, true
	}
	return Match{}, false
}

// First returns the value of the first matching pattern.
func (c Catalog) First(text string) (string, bool) {
	m, ok := c.Lookup(text)
	return m.Value, ok
}

// MatchString reports whether any pattern matches.
func (c Catalog) MatchString(text string) bool {
	for _, re := range c {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// FindAll returns every value of every pattern, pattern by pattern.
func (c Catalog) FindAll(text string) []string {
	var out []string
	for _, re := range c {
		out = append(out, FindAllValues(re, text)...)
	}
	return out
}

// FindAllValues returns group 1 (or the whole match) of every match of re.
func FindAllValues(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if len(m) > 1 {
			out = append(out, m[1])
		} else {
			out = append(out, m[0])
		}
	}
	return out
}
