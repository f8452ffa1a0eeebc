package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sanath0106/mockview/internal/capture"
	"github.com/sanath0106/mockview/internal/interview"
	"github.com/sanath0106/mockview/internal/narration"
	"github.com/sanath0106/mockview/internal/transcript"
	"github.com/sanath0106/mockview/internal/tts"
)

const (
	beginTimeout    = 60 * time.Second
	feedbackTimeout = 20 * time.Second
)

// EngineFactory builds a narration engine bound to a per-session audio sink.
// Returning nil means synthesis is unavailable and narration degrades to
// instant no-op completions.
type EngineFactory func(sink tts.Sink) narration.Engine

// Deps are the collaborator implementations the server wires into sessions.
type Deps struct {
	Generator interview.QuestionGenerator
	Analyzer  interview.AnswerAnalyzer
	Store     interview.FeedbackStore
	NewEngine EngineFactory
}

// liveSession bundles a session with its per-connection media plumbing.
type liveSession struct {
	sess  *interview.Session
	sink  *wsSink
	relay *transcript.Relay
	cap   *capture.Controller
}

// Server bundles the router and live sessions.
type Server struct {
	Router *echo.Echo

	deps Deps

	mu       sync.Mutex
	sessions map[string]*liveSession
}

type requestValidator struct{ validate *validator.Validate }

func (v *requestValidator) Validate(i interface{}) error { return v.validate.Struct(i) }

// New constructs the HTTP server with routes.
func New(deps Deps) *Server {
	s := &Server{
		deps:     deps,
		sessions: make(map[string]*liveSession),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Validator = &requestValidator{validate: validator.New()}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	api := e.Group("/api/interviews")
	api.POST("", s.handleCreate)
	api.GET("/:id", s.handleGet)
	api.PUT("/:id/answer", s.handleSetAnswer)
	api.POST("/:id/submit", s.handleSubmit)
	api.POST("/:id/answer/feedback", s.handleAnswerFeedback)
	api.POST("/:id/end", s.handleEnd)
	api.POST("/:id/retry", s.handleRetry)
	api.DELETE("/:id", s.handleDelete)
	api.GET("/:id/stream", s.handleStream)

	s.Router = e
	return s
}

type createRequest struct {
	JobTitle       string `json:"jobTitle" validate:"required"`
	JobDescription string `json:"jobDescription"`
	Experience     string `json:"experience" validate:"required"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCreate(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "job title and experience are required"})
	}
	if s.deps.Generator == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "question generation not configured"})
	}

	sink := newWSSink()
	var engine narration.Engine
	if s.deps.NewEngine != nil {
		engine = s.deps.NewEngine(sink)
	}
	narrator := narration.NewController(engine)
	sess := interview.NewSession(req.JobTitle, req.JobDescription, req.Experience,
		s.deps.Generator, s.deps.Analyzer, s.deps.Store, narrator)

	relay := transcript.NewRelay()
	live := &liveSession{
		sess:  sess,
		sink:  sink,
		relay: relay,
		cap:   capture.NewController(relay, sess.SetBuffer),
	}
	s.mu.Lock()
	s.sessions[sess.ID] = live
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(c.Request().Context(), beginTimeout)
	defer cancel()
	if err := sess.Begin(ctx); err != nil {
		// Session stays registered in the Failed state; the client may retry.
		log.Printf("interview[%s]: begin failed: %v", sess.ID, err)
	}
	return c.JSON(http.StatusCreated, sess.Snapshot())
}

func (s *Server) lookup(id string) (*liveSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live, ok := s.sessions[id]
	return live, ok
}

func (s *Server) handleGet(c echo.Context) error {
	live, ok := s.lookup(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "session not found"})
	}
	return c.JSON(http.StatusOK, live.sess.Snapshot())
}

type answerRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleSetAnswer(c echo.Context) error {
	live, ok := s.lookup(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "session not found"})
	}
	var req answerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	live.sess.SetBuffer(req.Text)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleSubmit(c echo.Context) error {
	live, ok := s.lookup(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "session not found"})
	}
	if err := live.sess.Submit(); err != nil {
		switch {
		case errors.Is(err, interview.ErrEmptyAnswer):
			return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		case errors.Is(err, interview.ErrNotAwaitingAnswer):
			return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
	}
	return c.JSON(http.StatusOK, live.sess.Snapshot())
}

type feedbackResponse struct {
	Feedback string `json:"feedback"`
}

// handleAnswerFeedback gives quick coaching feedback on the current buffer
// without advancing the interview.
func (s *Server) handleAnswerFeedback(c echo.Context) error {
	live, ok := s.lookup(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "session not found"})
	}
	if s.deps.Analyzer == nil {
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "answer analysis not configured"})
	}
	q, ok := live.sess.CurrentQuestion()
	if !ok {
		return c.JSON(http.StatusConflict, errorResponse{Error: "no current question"})
	}
	answer := live.sess.Buffer()
	if answer == "" {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "answer is empty"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), feedbackTimeout)
	defer cancel()
	text, err := s.deps.Analyzer.AnalyzeAnswer(ctx, q.Text, answer, live.sess.JobTitle(), live.sess.Experience())
	if err != nil {
		log.Printf("interview[%s]: answer feedback failed: %v", live.sess.ID, err)
		return c.JSON(http.StatusBadGateway, errorResponse{Error: "failed to analyze answer"})
	}
	return c.JSON(http.StatusOK, feedbackResponse{Feedback: text})
}

func (s *Server) handleEnd(c echo.Context) error {
	live, ok := s.lookup(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "session not found"})
	}
	live.cap.Stop()
	if err := live.sess.End(); err != nil {
		return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, live.sess.Snapshot())
}

func (s *Server) handleRetry(c echo.Context) error {
	live, ok := s.lookup(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "session not found"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), beginTimeout)
	defer cancel()
	if err := live.sess.Retry(ctx); err != nil {
		if errors.Is(err, interview.ErrNotFailed) {
			return c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusBadGateway, live.sess.Snapshot())
	}
	return c.JSON(http.StatusOK, live.sess.Snapshot())
}

func (s *Server) handleDelete(c echo.Context) error {
	id := c.Param("id")
	s.mu.Lock()
	live, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "session not found"})
	}
	live.cap.Stop()
	live.sess.Close()
	return c.NoContent(http.StatusNoContent)
}
