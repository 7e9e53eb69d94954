// Package scoring grades IELTS listening and reading submissions against
// authored test content. It performs no I/O and keeps no state between
// calls.
package scoring

import (
	"math"
	"sort"
	"strings"
)

// CanonicalQuestion is one gradable question, flattened out of whatever
// shape the authoring tools stored it in.
type CanonicalQuestion struct {
	QID           string       `json:"qId"`
	Kind          QuestionKind `json:"kind"`
	CorrectAnswer Answer       `json:"correctAnswer"`
	Options       []Option     `json:"options,omitempty"`
	Prompt        string       `json:"prompt,omitempty"`
	// Section is the zero-based index of the section or passage.
	Section int `json:"section"`
}

// ContentShape identifies how a section stores its questions.
type ContentShape int

const (
	ShapeEmpty ContentShape = iota
	// ShapeContentList is the current listening shape: a typed content list.
	ShapeContentList
	// ShapeQuestionList is the reading shape: a typed question list.
	ShapeQuestionList
	// ShapeLegacyKeyed carries only section-level multiSelect/matching keys.
	ShapeLegacyKeyed
	// ShapeMixed carries an item list plus legacy keyed groups.
	ShapeMixed
)

func (s ContentShape) String() string {
	switch s {
	case ShapeContentList:
		return "content-list"
	case ShapeQuestionList:
		return "question-list"
	case ShapeLegacyKeyed:
		return "legacy-keyed"
	case ShapeMixed:
		return "mixed"
	}
	return "empty"
}

// ClassifySection reports the storage shape of a section.
func ClassifySection(s Section) ContentShape {
	hasItems := len(s.Content) > 0 || len(s.Questions) > 0
	legacy := len(s.legacyGroups()) > 0
	switch {
	case hasItems && legacy:
		return ShapeMixed
	case legacy:
		return ShapeLegacyKeyed
	case len(s.Content) > 0:
		return ShapeContentList
	case len(s.Questions) > 0:
		return ShapeQuestionList
	}
	return ShapeEmpty
}

type legacyGroup struct {
	group    *LegacyGroup
	matching bool
}

func (s Section) legacyGroups() []legacyGroup {
	var out []legacyGroup
	for _, g := range []*LegacyGroup{s.MultiSelect, s.MultiSelect1, s.MultiSelect2} {
		if g != nil {
			out = append(out, legacyGroup{group: g})
		}
	}
	if s.Matching != nil {
		out = append(out, legacyGroup{group: s.Matching, matching: true})
	}
	return out
}

// Extract flattens a test document into its gradable questions in
// document order. Listening sections come before reading passages when a
// document carries both. The first occurrence of a question id wins.
func Extract(doc TestDocument) []CanonicalQuestion {
	e := extractor{seen: make(map[string]struct{})}
	sections := append(append([]Section{}, doc.Sections...), doc.Passages...)
	for i, s := range sections {
		e.section(i, s)
	}
	return e.out
}

type extractor struct {
	out  []CanonicalQuestion
	seen map[string]struct{}
}

func (e *extractor) emit(q CanonicalQuestion) {
	if q.QID == "" {
		return
	}
	if _, dup := e.seen[q.QID]; dup {
		return
	}
	e.seen[q.QID] = struct{}{}
	e.out = append(e.out, q)
}

func (e *extractor) section(idx int, s Section) {
	start := len(e.out)

	switch ClassifySection(s) {
	case ShapeEmpty:
		return
	case ShapeContentList, ShapeQuestionList:
		e.items(idx, s)
	case ShapeLegacyKeyed:
		e.legacyGroups(idx, s)
	case ShapeMixed:
		e.items(idx, s)
		e.legacyGroups(idx, s)
		// Keyed groups have no document position; place them by number.
		sortByNumber(e.out[start:])
	}
}

func (e *extractor) items(idx int, s Section) {
	for _, item := range s.Content {
		e.item(idx, item)
	}
	for _, item := range s.Questions {
		e.item(idx, item)
	}
}

func (e *extractor) legacyGroups(idx int, s Section) {
	for _, g := range s.legacyGroups() {
		e.legacy(idx, g)
	}
}

func (e *extractor) item(section int, item ContentItem) {
	switch item.Type {
	case "question":
		kind := ParseKind(item.Format)
		if kind == KindGapFill && item.CorrectAnswer.IsEmpty() {
			// Gap-fill items without an answer are headers or running text.
			return
		}
		e.emit(CanonicalQuestion{
			QID:           item.QuestionID,
			Kind:          kind,
			CorrectAnswer: item.CorrectAnswer,
			Options:       item.Options,
			Prompt:        item.Prompt,
			Section:       section,
		})
	case "question-group":
		switch strings.ReplaceAll(item.GroupType, "_", "-") {
		case "multi-select", "multiple-select":
			for _, sub := range item.Questions {
				e.emit(CanonicalQuestion{
					QID:           sub.QuestionID,
					Kind:          KindMultiSelect,
					CorrectAnswer: sub.CorrectAnswer,
					Options:       firstOptions(sub.Options, item.Options),
					Prompt:        sub.Prompt,
					Section:       section,
				})
			}
		case "matching":
			e.matching(section, item)
		}
	case "matching":
		e.matching(section, item)
	case "table":
		for _, cell := range item.Answer {
			e.emit(CanonicalQuestion{
				QID:           CanonicalQID(cell.Key),
				Kind:          KindTableCell,
				CorrectAnswer: cell.Answer,
				Section:       section,
			})
		}
	}
}

// matching emits one question per sub-question; options always come from
// the enclosing item.
func (e *extractor) matching(section int, item ContentItem) {
	for _, sub := range item.Questions {
		e.emit(CanonicalQuestion{
			QID:           sub.QuestionID,
			Kind:          KindMatching,
			CorrectAnswer: sub.CorrectAnswer,
			Options:       item.Options,
			Prompt:        sub.Prompt,
			Section:       section,
		})
	}
}

func (e *extractor) legacy(section int, lg legacyGroup) {
	g := lg.group
	if lg.matching {
		for _, row := range g.MatchingQuestions {
			e.emit(CanonicalQuestion{
				QID:           row.QID,
				Kind:          KindMatching,
				CorrectAnswer: row.Correct,
				Options:       g.Options,
				Prompt:        row.Prompt,
				Section:       section,
			})
		}
		return
	}
	for _, kv := range g.Answer {
		for _, cell := range ExpandGroupedKey(kv.Key, kv.Answer) {
			e.emit(CanonicalQuestion{
				QID:           cell.Key,
				Kind:          KindMultiSelect,
				CorrectAnswer: cell.Answer,
				Options:       g.Options,
				Section:       section,
			})
		}
	}
}

// ExpandGroupedKey splits an underscore-joined legacy answer key across
// its questions. Element i of the answer goes to question i of the key:
// "3_4" with ["B","D"] yields q3 -> "B" and q4 -> "D". A key naming a
// single question keeps the whole answer. Questions past the end of the
// answer list get an empty answer.
func ExpandGroupedKey(key string, answer Answer) []KeyedAnswer {
	parts := strings.Split(key, "_")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if id := CanonicalQID(p); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	if len(ids) == 1 {
		return []KeyedAnswer{{Key: ids[0], Answer: answer}}
	}

	out := make([]KeyedAnswer, 0, len(ids))
	for i, id := range ids {
		var a Answer
		if i < len(answer.Values) {
			a = Text(answer.Values[i])
		}
		out = append(out, KeyedAnswer{Key: id, Answer: a})
	}
	return out
}

func firstOptions(candidates ...[]Option) []Option {
	for _, c := range candidates {
		if len(c) > 0 {
			return c
		}
	}
	return nil
}

func sortByNumber(qs []CanonicalQuestion) {
	sort.SliceStable(qs, func(i, j int) bool {
		return questionOrder(qs[i].QID) < questionOrder(qs[j].QID)
	})
}

func questionOrder(qID string) int {
	if n, ok := QuestionNumber(qID); ok {
		return n
	}
	return math.MaxInt
}
