package scoring

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// TextNormalization selects how free-text answers are compared.
type TextNormalization string

const (
	// NormalizeStrict folds case and trims surrounding whitespace.
	NormalizeStrict TextNormalization = "strict"
	// NormalizeStemmed additionally strips common English suffixes from
	// both sides. It tolerates "colours" for "colour" but also conflates
	// unrelated words that share a stem after stripping.
	NormalizeStemmed TextNormalization = "stemmed"
)

// ParseTextNormalization validates a configured normalization name.
func ParseTextNormalization(s string) (TextNormalization, error) {
	switch TextNormalization(strings.ToLower(strings.TrimSpace(s))) {
	case NormalizeStrict:
		return NormalizeStrict, nil
	case NormalizeStemmed:
		return NormalizeStemmed, nil
	}
	return "", fmt.Errorf("unknown text normalization %q", s)
}

// Matcher decides whether a submitted answer is equivalent to a correct
// answer. The zero value compares free text strictly. A Matcher holds no
// mutable state and is safe for concurrent use.
type Matcher struct {
	Text TextNormalization
}

// NewMatcher returns a matcher using the given free-text normalization.
func NewMatcher(text TextNormalization) Matcher {
	return Matcher{Text: text}
}

// IsCorrect grades one answer. Unanswered questions are always wrong.
func (m Matcher) IsCorrect(user, correct Answer, kind QuestionKind) bool {
	if user.IsEmpty() || correct.IsEmpty() {
		return false
	}

	switch {
	case kind == KindMultiSelect:
		return sameSet(user.Values, correct.Values)
	case kind.IsChoice():
		got, ok := user.Single()
		if !ok {
			return false
		}
		got = fold(got)
		for _, c := range correct.Values {
			if fold(c) == got {
				return true
			}
		}
		return false
	default:
		got, ok := user.Single()
		if !ok {
			return false
		}
		got = m.normalizeText(got)
		for _, alt := range Alternatives(correct) {
			if m.normalizeText(alt) == got {
				return true
			}
		}
		return false
	}
}

func (m Matcher) normalizeText(s string) string {
	s = fold(s)
	if m.Text == NormalizeStemmed {
		s = StripSuffix(s)
	}
	return s
}

// Alternatives lists every acceptable form of a free-text answer: each
// value of the answer split on "/", trimmed, blanks dropped.
func Alternatives(correct Answer) []string {
	var out []string
	for _, v := range correct.Values {
		for _, alt := range strings.Split(v, "/") {
			if alt = strings.TrimSpace(alt); alt != "" {
				out = append(out, alt)
			}
		}
	}
	return out
}

// fold trims and case-folds s. Composed and decomposed forms of accented
// letters compare equal.
func fold(s string) string {
	// Casers carry state, so one is built per call.
	s = cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
	return apostrophes.Replace(s)
}

// apostrophes maps typographic apostrophes to ASCII so "cat’s" strips
// like "cat's".
var apostrophes = strings.NewReplacer("\u2019", "'", "\u2018", "'")

func sameSet(a, b []string) bool {
	left := toSet(a)
	right := toSet(b)
	if len(left) == 0 || len(left) != len(right) {
		return false
	}
	for k := range left {
		if _, ok := right[k]; !ok {
			return false
		}
	}
	return true
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = fold(v); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
