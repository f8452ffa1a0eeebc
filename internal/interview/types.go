package interview

import (
	"context"
	"errors"
)

// Question is one interview question, immutable once fetched for a session.
type Question struct {
	ID             int      `json:"id"`
	Text           string   `json:"text"`
	Category       string   `json:"category"`
	Difficulty     string   `json:"difficulty"`
	ExpectedTopics []string `json:"expectedTopics,omitempty"`
}

// Answer pairs a question with the text the candidate submitted for it.
// Answers are appended in question order and never mutated afterwards.
type Answer struct {
	QuestionID   int    `json:"questionId"`
	QuestionText string `json:"questionText"`
	Answer       string `json:"answer"`
}

// AnswerFeedback is the per-question part of the analysis result.
type AnswerFeedback struct {
	QuestionID   int      `json:"questionId"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// OverallFeedback summarizes the whole interview.
type OverallFeedback struct {
	Rating           int      `json:"rating"`
	PositivePoints   []string `json:"positivePoints"`
	ImprovementAreas []string `json:"improvementAreas"`
	Summary          string   `json:"summary"`
}

// Feedback is the full analysis payload for a completed interview.
type Feedback struct {
	Answers []AnswerFeedback `json:"answers"`
	Overall OverallFeedback  `json:"overallFeedback"`
}

// Result is what gets persisted for the downstream feedback view.
type Result struct {
	Answers        []Answer  `json:"answers"`
	Feedback       *Feedback `json:"feedback"`
	JobTitle       string    `json:"jobTitle"`
	Experience     string    `json:"experience"`
	JobDescription string    `json:"jobDescription,omitempty"`
}

// QuestionRequest describes the interview to generate questions for.
type QuestionRequest struct {
	JobTitle       string
	JobDescription string
	Experience     string
}

// QuestionGenerator produces the ordered question list for a session.
// Returning zero questions is treated as failure by the session.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, req QuestionRequest) ([]Question, error)
}

// AnswerAnalyzer turns the collected transcript into feedback.
// AnalyzeAnswer gives quick coaching feedback on a single answer without
// advancing the interview.
type AnswerAnalyzer interface {
	AnalyzeInterview(ctx context.Context, answers []Answer, jobTitle, experience string) (*Feedback, error)
	AnalyzeAnswer(ctx context.Context, question, answer, jobTitle, experience string) (string, error)
}

// FeedbackStore persists the final Result under an opaque key.
type FeedbackStore interface {
	Put(ctx context.Context, key string, result *Result) error
}

// Narrator serializes all spoken output for a session. Speak cancels any
// utterance in progress; the returned channel closes exactly once when
// playback ends naturally and never closes for a cancelled utterance.
type Narrator interface {
	Speak(ctx context.Context, text string) <-chan struct{}
	WelcomeMessage(jobTitle string, totalQuestions int) string
	TransitionMessage() string
	CompletionMessage(totalQuestions int) string
	Stop()
}

var (
	// ErrQuestionGeneration marks a failed or empty question fetch; the
	// session stays retriable in the Failed state.
	ErrQuestionGeneration = errors.New("interview: question generation failed")
	// ErrEmptyAnswer rejects submission of an empty or whitespace-only buffer.
	ErrEmptyAnswer = errors.New("interview: answer is empty")
	// ErrNotAwaitingAnswer rejects submit outside AwaitingAnswer.
	ErrNotAwaitingAnswer = errors.New("interview: no question awaiting an answer")
	// ErrNotFailed rejects retry when the session is not in the Failed state.
	ErrNotFailed = errors.New("interview: session is not in a retriable state")
	// ErrNotStarted rejects operations that need a loaded question list.
	ErrNotStarted = errors.New("interview: session has no questions yet")
)

// FallbackFeedback is substituted when the analysis collaborator fails, so a
// finished interview always reaches Completed with non-null feedback.
func FallbackFeedback(answers []Answer) *Feedback {
	per := make([]AnswerFeedback, 0, len(answers))
	for _, a := range answers {
		per = append(per, AnswerFeedback{
			QuestionID:   a.QuestionID,
			Strengths:    []string{"Good attempt at answering the question"},
			Improvements: []string{"Consider providing more specific examples"},
		})
	}
	return &Feedback{
		Answers: per,
		Overall: OverallFeedback{
			Rating: 70,
			PositivePoints: []string{
				"Completed all questions",
				"Showed willingness to engage with the interview process",
			},
			ImprovementAreas: []string{
				"Add more specific examples from your experience",
				"Elaborate on technical details where applicable",
			},
			Summary: "Overall satisfactory performance with room for improvement in specific areas.",
		},
	}
}
