package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the explicit flow state of a session. Consolidating the scattered
// speaking/recording/index flags into one tagged value makes invalid
// combinations (submitting while submitting, narrating two questions at once)
// unrepresentable.
type State int

const (
	StateInitializing State = iota
	StateNarrating
	StateAwaitingAnswer
	StateAnalyzing
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateNarrating:
		return "narrating"
	case StateAwaitingAnswer:
		return "awaiting_answer"
	case StateAnalyzing:
		return "analyzing"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// MarshalJSON renders the state name rather than the numeric tag.
func (s State) MarshalJSON() ([]byte, error) { return []byte(`"` + s.String() + `"`), nil }

// UnmarshalJSON parses a state name back into its tag.
func (s *State) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for st := StateInitializing; st <= StateFailed; st++ {
		if st.String() == name {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("interview: unknown state %q", name)
}

const analysisTimeout = 30 * time.Second

// Session drives one interview from question generation through answer
// collection to analysis handoff. All mutation happens under one mutex; the
// asynchronous parts (narration chains, final analysis) run on the session's
// own context so an abandoned HTTP request cannot cut narration short.
type Session struct {
	ID string

	jobTitle       string
	jobDescription string
	experience     string

	generator QuestionGenerator
	analyzer  AnswerAnalyzer
	store     FeedbackStore
	narrator  Narrator

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	questions []Question
	answers   []Answer
	index     int
	buffer    string
	feedback  *Feedback
	lastErr   error
}

// Snapshot is a read-only view of the session for the HTTP layer.
type Snapshot struct {
	ID        string     `json:"id"`
	State     State      `json:"state"`
	Questions []Question `json:"questions,omitempty"`
	Index     int        `json:"currentIndex"`
	Answers   []Answer   `json:"answers,omitempty"`
	Feedback  *Feedback  `json:"feedback,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// NewSession constructs a session in the Initializing state.
func NewSession(jobTitle, jobDescription, experience string, gen QuestionGenerator, an AnswerAnalyzer, store FeedbackStore, narrator Narrator) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:             uuid.NewString(),
		jobTitle:       jobTitle,
		jobDescription: jobDescription,
		experience:     experience,
		generator:      gen,
		analyzer:       an,
		store:          store,
		narrator:       narrator,
		ctx:            ctx,
		cancel:         cancel,
		state:          StateInitializing,
	}
}

// Begin fetches the question list and, on success, starts the welcome
// narration chain. On failure or an empty list the session moves to Failed
// and the caller may Retry.
func (s *Session) Begin(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateInitializing {
		s.mu.Unlock()
		return fmt.Errorf("interview: cannot begin from state %s", s.state)
	}
	s.mu.Unlock()

	questions, err := s.generator.GenerateQuestions(ctx, QuestionRequest{
		JobTitle:       s.jobTitle,
		JobDescription: s.jobDescription,
		Experience:     s.experience,
	})
	if err == nil && len(questions) == 0 {
		err = fmt.Errorf("empty question list")
	}
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrQuestionGeneration, err)
		s.mu.Lock()
		s.state = StateFailed
		s.lastErr = wrapped
		s.mu.Unlock()
		return wrapped
	}

	s.mu.Lock()
	s.questions = questions
	s.index = 0
	s.answers = nil
	s.lastErr = nil
	s.state = StateNarrating
	total := len(questions)
	s.mu.Unlock()

	go s.narrateThenAsk(s.narrator.WelcomeMessage(s.jobTitle, total), 0)
	return nil
}

// Retry re-enters Begin after a question-generation failure.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateFailed {
		s.mu.Unlock()
		return ErrNotFailed
	}
	s.state = StateInitializing
	s.mu.Unlock()
	return s.Begin(ctx)
}

// SetBuffer replaces the answer buffer. Typed edits and live transcription
// both land here; last writer wins, no merge.
func (s *Session) SetBuffer(text string) {
	s.mu.Lock()
	s.buffer = text
	s.mu.Unlock()
}

// Buffer returns the current answer buffer.
func (s *Session) Buffer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer
}

// CurrentQuestion returns the question awaiting an answer, if any.
func (s *Session) CurrentQuestion() (Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= len(s.questions) {
		return Question{}, false
	}
	return s.questions[s.index], true
}

// Submit records the buffer as the answer to the current question and
// advances the flow: transition line plus next question, or completion line
// plus analysis when the last question was answered. An empty or
// whitespace-only buffer is rejected with no state change.
func (s *Session) Submit() error {
	s.mu.Lock()
	if s.state != StateAwaitingAnswer {
		s.mu.Unlock()
		return fmt.Errorf("%w (state %s)", ErrNotAwaitingAnswer, s.state)
	}
	if strings.TrimSpace(s.buffer) == "" {
		s.mu.Unlock()
		return ErrEmptyAnswer
	}
	q := s.questions[s.index]
	s.answers = append(s.answers, Answer{QuestionID: q.ID, QuestionText: q.Text, Answer: s.buffer})
	s.buffer = ""
	last := s.index == len(s.questions)-1
	s.index++
	s.state = StateNarrating
	total := len(s.questions)
	next := s.index
	s.mu.Unlock()

	if !last {
		go s.narrateThenAsk(s.narrator.TransitionMessage(), next)
		return nil
	}
	go s.concludeAfter(s.narrator.CompletionMessage(total))
	return nil
}

// End force-terminates the interview at the current index. A non-empty
// pending buffer is appended as the final answer before analysis, so ending
// mid-question never loses text the candidate already produced.
func (s *Session) End() error {
	s.mu.Lock()
	switch s.state {
	case StateInitializing, StateFailed:
		s.mu.Unlock()
		return ErrNotStarted
	case StateAnalyzing, StateCompleted:
		s.mu.Unlock()
		return nil
	}
	if text := strings.TrimSpace(s.buffer); text != "" && s.index < len(s.questions) {
		q := s.questions[s.index]
		s.answers = append(s.answers, Answer{QuestionID: q.ID, QuestionText: q.Text, Answer: s.buffer})
		s.buffer = ""
		s.index++
	}
	s.state = StateNarrating
	total := len(s.questions)
	s.mu.Unlock()

	go s.concludeAfter(s.narrator.CompletionMessage(total))
	return nil
}

// Snapshot returns a copy of the observable session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:        s.ID,
		State:     s.state,
		Questions: append([]Question(nil), s.questions...),
		Index:     s.index,
		Answers:   append([]Answer(nil), s.answers...),
		Feedback:  s.feedback,
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	return snap
}

// JobTitle returns the role this session interviews for.
func (s *Session) JobTitle() string { return s.jobTitle }

// Experience returns the experience requirement the session was created with.
func (s *Session) Experience() string { return s.experience }

// Close releases the session: in-flight narration chains unpark and exit.
func (s *Session) Close() {
	s.narrator.Stop()
	s.cancel()
}

// narrateThenAsk speaks the lead-in line, then the question at idx, then
// opens the floor. Waiting on the narrator's completion channel (never a
// fixed delay) guarantees question i+1 cannot start before the transition
// for step i fully resolved. A chain superseded by barge-in parks on its
// stale completion channel and exits when the session closes.
func (s *Session) narrateThenAsk(lead string, idx int) {
	if lead != "" {
		select {
		case <-s.narrator.Speak(s.ctx, lead):
		case <-s.ctx.Done():
			return
		}
	}
	s.mu.Lock()
	if idx >= len(s.questions) {
		s.mu.Unlock()
		return
	}
	q := s.questions[idx]
	s.mu.Unlock()

	select {
	case <-s.narrator.Speak(s.ctx, q.Text):
	case <-s.ctx.Done():
		return
	}

	s.mu.Lock()
	if s.state == StateNarrating && s.index == idx {
		s.state = StateAwaitingAnswer
	}
	s.mu.Unlock()
}

// concludeAfter speaks the completion line and then runs the final analysis.
func (s *Session) concludeAfter(completion string) {
	select {
	case <-s.narrator.Speak(s.ctx, completion):
	case <-s.ctx.Done():
		return
	}
	s.finish()
}

// finish invokes the analysis collaborator with the full answer list and
// persists the result. Guarded so it runs at most once per session; answers
// survive an analysis failure via the fallback payload.
func (s *Session) finish() {
	s.mu.Lock()
	if s.state == StateAnalyzing || s.state == StateCompleted {
		s.mu.Unlock()
		return
	}
	s.state = StateAnalyzing
	answers := append([]Answer(nil), s.answers...)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.ctx, analysisTimeout)
	fb, err := s.analyzer.AnalyzeInterview(ctx, answers, s.jobTitle, s.experience)
	cancel()
	if err != nil || fb == nil {
		log.Printf("interview[%s]: analysis failed, using fallback feedback: %v", s.ID, err)
		fb = FallbackFeedback(answers)
	}

	result := &Result{
		Answers:        answers,
		Feedback:       fb,
		JobTitle:       s.jobTitle,
		Experience:     s.experience,
		JobDescription: s.jobDescription,
	}
	if s.store != nil {
		if err := s.store.Put(s.ctx, s.ID, result); err != nil {
			log.Printf("interview[%s]: persist result: %v", s.ID, err)
		}
	}

	s.mu.Lock()
	s.feedback = fb
	s.state = StateCompleted
	s.mu.Unlock()
}
