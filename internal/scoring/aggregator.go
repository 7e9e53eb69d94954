package scoring

// QuestionOutcome is the grading detail kept for one question.
type QuestionOutcome struct {
	UserAnswer    Answer       `json:"userAnswer"`
	CorrectAnswer Answer       `json:"correctAnswer"`
	IsCorrect     bool         `json:"isCorrect"`
	Kind          QuestionKind `json:"kind"`
}

// ScoreResult is the outcome of one scoring pass.
type ScoreResult struct {
	Total       int                        `json:"total"`
	Correct     int                        `json:"correct"`
	Order       []string                   `json:"order"`
	PerQuestion map[string]QuestionOutcome `json:"perQuestion"`
	// Per-section tallies are only present when a layout was requested.
	PerSectionCorrect []int `json:"perSectionCorrect,omitempty"`
	PerSectionTotal   []int `json:"perSectionTotal,omitempty"`
}

// SectionLayout buckets questions by number. Bounds holds the last
// question number of each section in ascending order.
type SectionLayout struct {
	Bounds []int
}

var (
	// ListeningLayout is four sections of ten questions.
	ListeningLayout = SectionLayout{Bounds: []int{10, 20, 30, 40}}
	// ReadingLayout is three passages: 1-13, 14-26, 27-40.
	ReadingLayout = SectionLayout{Bounds: []int{13, 26, 40}}
)

// Bucket returns the section index of question number n, or -1 when n
// falls outside the layout.
func (l SectionLayout) Bucket(n int) int {
	if n <= 0 {
		return -1
	}
	for i, b := range l.Bounds {
		if n <= b {
			return i
		}
	}
	return -1
}

// ScoreOption adjusts a scoring pass.
type ScoreOption func(*scoreConfig)

type scoreConfig struct {
	layout *SectionLayout
}

// WithSectionLayout enables per-section tallies.
func WithSectionLayout(l SectionLayout) ScoreOption {
	return func(c *scoreConfig) { c.layout = &l }
}

// Score grades every question against the submission. Every question
// counts towards the total; missing answers and questions without a
// correct answer score as incorrect.
func Score(questions []CanonicalQuestion, submitted Submission, m Matcher, opts ...ScoreOption) ScoreResult {
	cfg := scoreConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	res := ScoreResult{
		Order:       make([]string, 0, len(questions)),
		PerQuestion: make(map[string]QuestionOutcome, len(questions)),
	}
	if cfg.layout != nil {
		res.PerSectionCorrect = make([]int, len(cfg.layout.Bounds))
		res.PerSectionTotal = make([]int, len(cfg.layout.Bounds))
	}

	for _, q := range questions {
		user := submitted.Lookup(q.QID)
		ok := m.IsCorrect(user, q.CorrectAnswer, q.Kind)

		res.Total++
		if ok {
			res.Correct++
		}
		res.Order = append(res.Order, q.QID)
		res.PerQuestion[q.QID] = QuestionOutcome{
			UserAnswer:    user,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     ok,
			Kind:          q.Kind,
		}

		if cfg.layout == nil {
			continue
		}
		n, numbered := QuestionNumber(q.QID)
		if !numbered {
			continue
		}
		if b := cfg.layout.Bucket(n); b >= 0 {
			res.PerSectionTotal[b]++
			if ok {
				res.PerSectionCorrect[b]++
			}
		}
	}
	return res
}

// CorrectAnswers returns the correct answer of every scored question,
// keyed by question id.
func (r ScoreResult) CorrectAnswers() map[string]Answer {
	out := make(map[string]Answer, len(r.PerQuestion))
	for id, o := range r.PerQuestion {
		out[id] = o.CorrectAnswer
	}
	return out
}
