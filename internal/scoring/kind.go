package scoring

import "strings"

// QuestionKind selects the comparison rule applied to a question.
type QuestionKind string

const (
	KindGapFill           QuestionKind = "gap-fill"
	KindMultipleChoice    QuestionKind = "multiple-choice"
	KindTrueFalseNotGiven QuestionKind = "true-false-notgiven"
	KindYesNoNotGiven     QuestionKind = "yes-no-notgiven"
	KindMultiSelect       QuestionKind = "multi-select"
	KindMatching          QuestionKind = "matching"
	KindTableCell         QuestionKind = "table-cell"
)

// IsChoice reports whether answers of this kind are single option labels.
func (k QuestionKind) IsChoice() bool {
	switch k {
	case KindMultipleChoice, KindTrueFalseNotGiven, KindYesNoNotGiven, KindMatching:
		return true
	}
	return false
}

var formatAliases = map[string]QuestionKind{
	"gap-fill":              KindGapFill,
	"gapfill":               KindGapFill,
	"fill-in":               KindGapFill,
	"short-answer":          KindGapFill,
	"sentence-completion":   KindGapFill,
	"multiple-choice":       KindMultipleChoice,
	"mcq":                   KindMultipleChoice,
	"true-false-notgiven":   KindTrueFalseNotGiven,
	"true-false-not-given":  KindTrueFalseNotGiven,
	"tfng":                  KindTrueFalseNotGiven,
	"yes-no-notgiven":       KindYesNoNotGiven,
	"yes-no-not-given":      KindYesNoNotGiven,
	"ynng":                  KindYesNoNotGiven,
	"multi-select":          KindMultiSelect,
	"multiple-select":       KindMultiSelect,
	"matching":              KindMatching,
	"matching-headings":     KindMatching,
	"matching-information":  KindMatching,
	"matching-features":     KindMatching,
	"table":                 KindTableCell,
	"table-cell":            KindTableCell,
	"table-completion":      KindTableCell,
	"note-completion":       KindGapFill,
	"summary-completion":    KindGapFill,
	"form-completion":       KindGapFill,
	"flow-chart-completion": KindGapFill,
}

// ParseKind maps an authoring format string to a QuestionKind.
// Unknown or empty formats grade as gap-fill.
func ParseKind(format string) QuestionKind {
	f := strings.ToLower(strings.TrimSpace(format))
	f = strings.ReplaceAll(f, "_", "-")
	if k, ok := formatAliases[f]; ok {
		return k
	}
	return KindGapFill
}
