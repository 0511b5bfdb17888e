package quiz

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoQuestion        = errors.New("no question available")
	ErrAnswerKeyMismatch = errors.New("answer key does not match the selected question")
)

// Selection is the question picked for a turn.
type Selection struct {
	MainTopic string
	Subtopic  string
	Type      QuestionType
	Single    *SingleQuestion
	Multi     *MultiQuestion
	// Fallback is set when no question matched the level and an unfiltered pick was used.
	Fallback bool
}

func (s *Selection) Text() string {
	if s.Multi != nil {
		return s.Multi.Question
	}
	if s.Single != nil {
		return s.Single.Question
	}
	return ""
}

func (s *Selection) URL() string {
	if s.Multi != nil {
		return s.Multi.URL
	}
	if s.Single != nil {
		return s.Single.URL
	}
	return ""
}

// CheckAnswerKey compares options written for this selection with its known answers.
// An option that literally matches a correct answer must be marked correct, and one that
// matches a wrong answer must not be. Options matching nothing (translations, invented
// distractors) are not judged.
func (s *Selection) CheckAnswerKey(options []string, correct []int) error {
	var right, wrong []string
	switch {
	case s.Multi != nil:
		right, wrong = s.Multi.CorrectAnswers, s.Multi.WrongAnswers
	case s.Single != nil:
		right = []string{s.Single.Answer}
	default:
		return nil
	}

	marked := make(map[int]bool, len(correct))
	for _, i := range correct {
		marked[i] = true
	}
	for i, opt := range options {
		key := normalizeAnswer(opt)
		switch {
		case containsAnswer(right, key) && !marked[i]:
			return fmt.Errorf("%w: option %d %q is a correct answer but is not marked", ErrAnswerKeyMismatch, i, opt)
		case containsAnswer(wrong, key) && marked[i]:
			return fmt.Errorf("%w: option %d %q is marked correct but is a wrong answer", ErrAnswerKeyMismatch, i, opt)
		}
	}
	return nil
}

func normalizeAnswer(s string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	return strings.TrimRight(s, ".")
}

func containsAnswer(answers []string, key string) bool {
	for _, a := range answers {
		if normalizeAnswer(a) == key {
			return true
		}
	}
	return false
}

// Selector picks random questions from a bank. It is safe for concurrent use.
type Selector struct {
	bank *Bank
	log  logrus.FieldLogger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector builds a selector. A nil rng is seeded from the clock; a nil log discards output.
func NewSelector(bank *Bank, rng *rand.Rand, log logrus.FieldLogger) *Selector {
	if rng == nil {
		now := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(now, now>>1|1))
	}
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = l
	}
	return &Selector{bank: bank, rng: rng, log: log}
}

// Select picks a random topic and subtopic, prefers a multi-answer question half of the
// time, and filters by level. When nothing is eligible it falls back to any question of
// the chosen type so a session is never blocked by a sparse bank.
func (s *Selector) Select(level Level) (*Selection, error) {
	if !level.Valid() {
		level = LevelIntermediate
	}
	if s.bank == nil || len(s.bank.Questions) == 0 {
		return nil, ErrNoQuestion
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	topic := s.bank.Questions[s.rng.IntN(len(s.bank.Questions))]
	if len(topic.Subtopics) == 0 {
		return nil, fmt.Errorf("%w: topic %q has no subtopics", ErrNoQuestion, topic.MainTopic)
	}
	sub := topic.Subtopics[s.rng.IntN(len(topic.Subtopics))]

	sel := &Selection{MainTopic: topic.MainTopic, Subtopic: sub.Name}
	wantMulti := s.rng.Float64() < 0.5
	useMulti := len(sub.QuizMultiQuestions) > 0 && (wantMulti || len(sub.QuizQuestions) == 0)

	if useMulti {
		q, fallback := pick(s.rng, sub.QuizMultiQuestions, level, func(q MultiQuestion) DifficultyRange { return q.Difficulty })
		sel.Type, sel.Multi, sel.Fallback = QuestionTypeMulti, &q, fallback
	} else {
		if len(sub.QuizQuestions) == 0 {
			return nil, fmt.Errorf("%w: %s / %s has no single-answer questions", ErrNoQuestion, topic.MainTopic, sub.Name)
		}
		q, fallback := pick(s.rng, sub.QuizQuestions, level, func(q SingleQuestion) DifficultyRange { return q.Difficulty })
		sel.Type, sel.Single, sel.Fallback = QuestionTypeNormal, &q, fallback
	}

	if sel.Fallback {
		s.log.WithFields(logrus.Fields{
			"main_topic": sel.MainTopic,
			"subtopic":   sel.Subtopic,
			"type":       sel.Type,
			"level":      level,
		}).Warn("no eligible question for level, using unfiltered pick")
	}

	return sel, nil
}

func pick[Q any](rng *rand.Rand, questions []Q, level Level, rangeOf func(Q) DifficultyRange) (Q, bool) {
	eligible := make([]Q, 0, len(questions))
	for _, q := range questions {
		if rangeOf(q).Contains(level) {
			eligible = append(eligible, q)
		}
	}

	if len(eligible) == 0 {
		return questions[rng.IntN(len(questions))], true
	}
	return eligible[rng.IntN(len(eligible))], false
}
