package scoring

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// TestDocument is authored test content as stored by the admin tooling.
// Listening tests carry sections, reading tests carry passages.
type TestDocument struct {
	Title    string    `json:"title,omitempty"`
	Module   string    `json:"module,omitempty"`
	Sections []Section `json:"sections,omitempty"`
	Passages []Section `json:"passages,omitempty"`
}

// Section is a listening section or a reading passage.
type Section struct {
	Title     string        `json:"title,omitempty"`
	Content   []ContentItem `json:"content,omitempty"`
	Questions []ContentItem `json:"questions,omitempty"`

	// Legacy keyed groups attached to the section itself.
	MultiSelect  *LegacyGroup `json:"multiSelect,omitempty"`
	MultiSelect1 *LegacyGroup `json:"multiSelect1,omitempty"`
	MultiSelect2 *LegacyGroup `json:"multiSelect2,omitempty"`
	Matching     *LegacyGroup `json:"matching,omitempty"`
}

// ContentItem is one entry of a section's content or question list.
type ContentItem struct {
	Type          string        `json:"type,omitempty"`
	GroupType     string        `json:"groupType,omitempty"`
	Format        string        `json:"format,omitempty"`
	QuestionID    string        `json:"questionId,omitempty"`
	Prompt        string        `json:"question,omitempty"`
	CorrectAnswer Answer        `json:"correctAnswer"`
	Options       []Option      `json:"options,omitempty"`
	Questions     []ContentItem `json:"questions,omitempty"`
	// Answer holds table cell answers keyed by question id, in document order.
	Answer AnswerMap `json:"answer,omitempty"`
}

// LegacyGroup is the pre-content-list shape of multi-select and matching
// groups.
type LegacyGroup struct {
	Options           []Option         `json:"options,omitempty"`
	Answer            AnswerMap        `json:"answer,omitempty"`
	MatchingQuestions []LegacyQuestion `json:"matchingQuestions,omitempty"`
}

// LegacyQuestion is one row of a legacy matching group.
type LegacyQuestion struct {
	QID     string `json:"qId"`
	Prompt  string `json:"question,omitempty"`
	Correct Answer `json:"correct"`
}

// Option is one labelled choice.
type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// KeyedAnswer is one entry of an answer map.
type KeyedAnswer struct {
	Key    string `json:"key"`
	Answer Answer `json:"answer"`
}

// AnswerMap is a JSON object of answers that keeps its key order.
type AnswerMap []KeyedAnswer

func (m AnswerMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		val, err := kv.Answer.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *AnswerMap) UnmarshalJSON(data []byte) error {
	*m = decodeKeyedAnswers(data)
	return nil
}

// ===== TOLERANT DECODING =====

// rawObject is a decoded JSON object whose fields are read leniently:
// a field of the wrong shape reads as its zero value.
type rawObject map[string]json.RawMessage

func decodeObject(data []byte) rawObject {
	var obj rawObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	return obj
}

func (o rawObject) str(keys ...string) string {
	for _, k := range keys {
		raw, ok := o[k]
		if !ok {
			continue
		}
		if s, ok := scalarString(raw); ok {
			return s
		}
	}
	return ""
}

func (o rawObject) has(key string) bool {
	raw, ok := o[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (o rawObject) answer(keys ...string) Answer {
	for _, k := range keys {
		if !o.has(k) {
			continue
		}
		var a Answer
		_ = a.UnmarshalJSON(o[k])
		return a
	}
	return Answer{}
}

func (o rawObject) items(key string) []ContentItem {
	var raws []json.RawMessage
	if err := json.Unmarshal(o[key], &raws); err != nil {
		return nil
	}
	items := make([]ContentItem, 0, len(raws))
	for _, raw := range raws {
		var item ContentItem
		_ = item.UnmarshalJSON(raw)
		items = append(items, item)
	}
	return items
}

func (o rawObject) group(key string) *LegacyGroup {
	if !o.has(key) {
		return nil
	}
	obj := decodeObject(o[key])
	if obj == nil {
		return nil
	}
	g := &LegacyGroup{
		Options: decodeOptions(obj["options"]),
		Answer:  decodeKeyedAnswers(obj["answer"]),
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(obj["matchingQuestions"], &rows); err == nil {
		for _, raw := range rows {
			row := decodeObject(raw)
			if row == nil {
				continue
			}
			g.MatchingQuestions = append(g.MatchingQuestions, LegacyQuestion{
				QID:     CanonicalQID(row.str("qId", "questionId")),
				Prompt:  row.str("question", "text"),
				Correct: row.answer("correct", "correctAnswer"),
			})
		}
	}
	return g
}

func (t *TestDocument) UnmarshalJSON(data []byte) error {
	*t = TestDocument{}
	obj := decodeObject(data)
	if obj == nil {
		return nil
	}
	t.Title = obj.str("title")
	t.Module = obj.str("module")
	t.Sections = decodeSections(obj["sections"])
	t.Passages = decodeSections(obj["passages"])
	return nil
}

func decodeSections(data json.RawMessage) []Section {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil
	}
	sections := make([]Section, 0, len(raws))
	for _, raw := range raws {
		var s Section
		_ = s.UnmarshalJSON(raw)
		sections = append(sections, s)
	}
	return sections
}

func (s *Section) UnmarshalJSON(data []byte) error {
	*s = Section{}
	obj := decodeObject(data)
	if obj == nil {
		return nil
	}
	s.Title = obj.str("title")
	s.Content = obj.items("content")
	s.Questions = obj.items("questions")
	s.MultiSelect = obj.group("multiSelect")
	s.MultiSelect1 = obj.group("multiSelect1")
	s.MultiSelect2 = obj.group("multiSelect2")
	// A section-level "matching" key is the legacy group; it is never a
	// content item.
	s.Matching = obj.group("matching")
	return nil
}

func (c *ContentItem) UnmarshalJSON(data []byte) error {
	*c = ContentItem{}
	obj := decodeObject(data)
	if obj == nil {
		return nil
	}
	c.Type = strings.ToLower(strings.TrimSpace(obj.str("type")))
	c.GroupType = strings.ToLower(strings.TrimSpace(obj.str("groupType")))
	c.Format = obj.str("format", "questionType")
	c.QuestionID = CanonicalQID(obj.str("questionId", "qId"))
	c.Prompt = obj.str("question", "text")
	c.CorrectAnswer = obj.answer("correctAnswer", "correct")
	c.Options = decodeOptions(obj["options"])
	c.Questions = obj.items("questions")
	c.Answer = decodeKeyedAnswers(obj["answer"])
	if len(c.Answer) == 0 && c.Type == "table" {
		// Tables may key their cells under correctAnswer instead.
		c.Answer = decodeKeyedAnswers(obj["correctAnswer"])
	}
	return nil
}

// decodeOptions accepts a label->text map, a list of {label,text}
// objects, or a list of plain strings lettered A, B, C...
func decodeOptions(data json.RawMessage) []Option {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '{':
		var opts []Option
		for _, kv := range decodeKeyedAnswers(data) {
			opts = append(opts, Option{Label: kv.Key, Text: kv.Answer.String()})
		}
		return opts
	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil
		}
		opts := make([]Option, 0, len(raws))
		for i, raw := range raws {
			if s, ok := scalarString(raw); ok {
				opts = append(opts, Option{Label: optionLetter(i), Text: s})
				continue
			}
			obj := decodeObject(raw)
			if obj == nil {
				continue
			}
			label := obj.str("label", "letter", "key")
			if label == "" {
				label = optionLetter(i)
			}
			opts = append(opts, Option{Label: label, Text: obj.str("text", "value")})
		}
		return opts
	}
	return nil
}

func optionLetter(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return strconv.Itoa(i + 1)
}

// decodeKeyedAnswers reads a JSON object as an ordered list of entries,
// keeping the key order of the document.
func decodeKeyedAnswers(data json.RawMessage) AnswerMap {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil
	}
	var out AnswerMap
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		key, ok := tok.(string)
		if !ok {
			return out
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return out
		}
		var a Answer
		_ = a.UnmarshalJSON(raw)
		out = append(out, KeyedAnswer{Key: key, Answer: a})
	}
	return out
}

// ===== QUESTION IDS =====

// CanonicalQID normalizes a question id to the "q<N>" form. "5", "Q5" and
// "q05" all become "q5". Ids that carry no number are returned trimmed.
func CanonicalQID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	digits := id
	if id[0] == 'q' || id[0] == 'Q' {
		digits = id[1:]
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return id
	}
	return "q" + strconv.Itoa(n)
}

// QuestionNumber returns the numeric suffix of a canonical question id.
func QuestionNumber(qID string) (int, bool) {
	if len(qID) < 2 || qID[0] != 'q' {
		return 0, false
	}
	n, err := strconv.Atoi(qID[1:])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
