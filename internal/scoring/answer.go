package scoring

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Answer is a submitted or correct answer: a single string, a list of
// strings, or nothing. It decodes from any of those JSON shapes and
// degrades to the empty answer on anything else.
type Answer struct {
	Values []string
	// Multi is set when the answer was given as a list, even a one-element one.
	Multi bool
}

// Text builds a single-valued answer.
func Text(s string) Answer {
	return Answer{Values: []string{s}}
}

// List builds a multi-valued answer.
func List(values ...string) Answer {
	return Answer{Values: values, Multi: true}
}

// IsEmpty reports whether the answer carries no non-blank value.
func (a Answer) IsEmpty() bool {
	for _, v := range a.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Single returns the only value of the answer. ok is false for empty or
// multi-valued answers.
func (a Answer) Single() (string, bool) {
	var found string
	n := 0
	for _, v := range a.Values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		found = v
		n++
	}
	return found, n == 1
}

// String renders the answer for display and export.
func (a Answer) String() string {
	return strings.Join(a.Values, ", ")
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	*a = Answer{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		a.Multi = true
		for _, item := range raw {
			if s, ok := scalarString(item); ok {
				a.Values = append(a.Values, s)
			}
		}
	case '{':
		// Object-shaped answers are not gradable.
	default:
		if s, ok := scalarString(data); ok {
			a.Values = []string{s}
		}
	}
	return nil
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if !a.Multi {
		switch len(a.Values) {
		case 0:
			return []byte("null"), nil
		case 1:
			return json.Marshal(a.Values[0])
		}
	}
	if a.Values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.Values)
}

// scalarString decodes a JSON string, number or bool into its text form.
func scalarString(data json.RawMessage) (string, bool) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// Submission maps question ids to the answers given for them.
type Submission map[string]Answer

// Lookup returns the answer for qID. Keys stored in a non-canonical form
// ("5", "Q5") are found too; when several aliases are present the
// lexically smallest key wins.
func (s Submission) Lookup(qID string) Answer {
	if a, ok := s[qID]; ok {
		return a
	}
	var aliases []string
	for k := range s {
		if CanonicalQID(k) == qID {
			aliases = append(aliases, k)
		}
	}
	if len(aliases) == 0 {
		return Answer{}
	}
	sort.Strings(aliases)
	return s[aliases[0]]
}
