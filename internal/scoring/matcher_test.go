package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allKinds = []QuestionKind{
	KindGapFill, KindMultipleChoice, KindTrueFalseNotGiven, KindYesNoNotGiven,
	KindMultiSelect, KindMatching, KindTableCell,
}

func TestMatcher_UnansweredIsAlwaysWrong(t *testing.T) {
	for _, m := range []Matcher{NewMatcher(NormalizeStrict), NewMatcher(NormalizeStemmed)} {
		for _, kind := range allKinds {
			assert.False(t, m.IsCorrect(Answer{}, Text("a"), kind), kind)
			assert.False(t, m.IsCorrect(Text("   "), Text("a"), kind), kind)
			assert.False(t, m.IsCorrect(List(), List("a"), kind), kind)
			assert.False(t, m.IsCorrect(List("", " "), List("a"), kind), kind)
		}
	}
}

func TestMatcher_MissingCorrectAnswerIsWrong(t *testing.T) {
	m := Matcher{}
	for _, kind := range allKinds {
		assert.False(t, m.IsCorrect(Text("a"), Answer{}, kind), kind)
	}
}

func TestMatcher_Choice(t *testing.T) {
	m := Matcher{}
	tests := []struct {
		name    string
		user    Answer
		correct Answer
		kind    QuestionKind
		want    bool
	}{
		{"label case-insensitive", Text("a"), Text("A"), KindMatching, true},
		{"label trimmed", Text(" B "), Text("B"), KindMultipleChoice, true},
		{"wrong label", Text("C"), Text("B"), KindMultipleChoice, false},
		{"any of a correct list", Text("c"), List("B", "C"), KindMultipleChoice, true},
		{"not given phrase", Text("not given"), Text("NOT GIVEN"), KindTrueFalseNotGiven, true},
		{"tfng wrong", Text("TRUE"), Text("FALSE"), KindTrueFalseNotGiven, false},
		{"ynng", Text("yes"), Text("YES"), KindYesNoNotGiven, true},
		{"option text is not accepted", Text("Climate"), Text("A"), KindMatching, false},
		{"single element list answer", List("B"), Text("B"), KindMultipleChoice, true},
		{"two element list answer", List("B", "C"), Text("B"), KindMultipleChoice, false},
		{"no slash splitting for labels", Text("A"), Text("A/B"), KindMatching, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.IsCorrect(tc.user, tc.correct, tc.kind))
		})
	}
}

func TestMatcher_MultiSelect(t *testing.T) {
	m := Matcher{}
	assert.True(t, m.IsCorrect(List("B", "A"), List("A", "B"), KindMultiSelect))
	assert.True(t, m.IsCorrect(List("b", " a "), List("A", "B"), KindMultiSelect))
	assert.False(t, m.IsCorrect(List("A"), List("A", "B"), KindMultiSelect))
	assert.False(t, m.IsCorrect(List("A", "B", "C"), List("A", "B"), KindMultiSelect))
	assert.True(t, m.IsCorrect(Text("B"), Text("B"), KindMultiSelect))
	assert.False(t, m.IsCorrect(Text("D"), Text("B"), KindMultiSelect))
}

func TestMatcher_TextStrict(t *testing.T) {
	m := NewMatcher(NormalizeStrict)
	tests := []struct {
		name    string
		user    string
		correct Answer
		want    bool
	}{
		{"case and whitespace", "  Paris ", Text("paris"), true},
		{"second slash alternative", "color", Text("colour/color"), true},
		{"first slash alternative", "colour", Text("colour/color"), true},
		{"alternatives with spaces", "car park", Text(" parking lot / car park "), true},
		{"list of answers", "northern", List("north", "northern"), true},
		{"list entries split on slash", "NE", List("north-east/NE"), true},
		{"inflection is strict", "colours", Text("colour"), false},
		{"different word", "horse", Text("dog"), false},
		{"composed and decomposed accents", "cafe\u0301", Text("caf\u00e9"), true},
		{"whole slash answer is not an alternative", "colour/color", Text("colour/color"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.IsCorrect(Text(tc.user), tc.correct, KindGapFill))
			assert.Equal(t, tc.want, m.IsCorrect(Text(tc.user), tc.correct, KindTableCell))
		})
	}
}

func TestMatcher_TextStemmed(t *testing.T) {
	m := NewMatcher(NormalizeStemmed)
	tests := []struct {
		name    string
		user    string
		correct string
		want    bool
	}{
		{"plural", "colours", "colour", true},
		{"possessive", "city's", "city", true},
		{"alternatives still apply", "colors", "colour/color", true},
		{"ing form", "running", "runner", true},
		{"derivational", "happiness", "happy", false},
		{"unrelated", "river", "bridge", false},
		{"heuristic conflation", "ring", "r", true},
		{"strict case still applies", " Colours ", "COLOUR", true},
		{"typographic possessive", "cat\u2019s", "cat", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, m.IsCorrect(Text(tc.user), Text(tc.correct), KindGapFill))
		})
	}
}

func TestMatcher_TypographicApostrophe(t *testing.T) {
	for _, m := range []Matcher{NewMatcher(NormalizeStrict), NewMatcher(NormalizeStemmed)} {
		assert.True(t, m.IsCorrect(Text("cat\u2019s"), Text("cat's"), KindGapFill))
		assert.True(t, m.IsCorrect(Text("\u2018O\u2019Neill"), Text("'o'neill"), KindGapFill))
	}
}

func TestStripSuffix(t *testing.T) {
	tests := map[string]string{
		"colours":   "colour",
		"running":   "runn",
		"walked":    "walk",
		"happiness": "happi",
		"quickly":   "quick",
		"nation":    "na",
		"careful":   "care",
		"farmer's":  "farmer",
		"s":         "s",
		"ing":       "ing",
		"bus":       "bu",
		"":          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, StripSuffix(in), in)
	}
}

func TestParseTextNormalization(t *testing.T) {
	n, err := ParseTextNormalization(" Stemmed ")
	assert.NoError(t, err)
	assert.Equal(t, NormalizeStemmed, n)

	_, err = ParseTextNormalization("fuzzy")
	assert.Error(t, err)
}
