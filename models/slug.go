package models

import (
	"sort"
	"strings"
	"unicode"
)

// SlugMaxLength caps derived url slugs.
const SlugMaxLength = 50

// Slugify lowercases s, strips every rune outside the letter, number and
// separator classes, collapses whitespace runs to a single dash and
// truncates the result to max runes. Empty input yields an empty slug.
func Slugify(s string, max int) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	slug := strings.Join(strings.Fields(b.String()), "-")
	rs := []rune(slug)
	if max > 0 && len(rs) > max {
		slug = string(rs[:max])
		slug = strings.TrimRight(slug, "-")
	}
	return slug
}

// DedupKeywords returns a copy of ks with duplicates removed, first
// occurrence order preserved. A nil input yields an empty set.
func DedupKeywords(ks []string) []string {
	out := make([]string, 0, len(ks))
	seen := make(map[string]struct{}, len(ks))
	for _, k := range ks {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// KeywordsEqual compares two keyword sets by set equality, ignoring order.
func KeywordsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
