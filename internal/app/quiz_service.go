package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"web3-quiz-service/internal/domain"
)

// SessionRepository abstracts where live quiz sessions are registered (in-memory, Redis, etc).
type SessionRepository interface {
	Add(c *Controller)
	Get(sessionID string) (*Controller, bool)
	Remove(sessionID string)
}

// QuizService contains the quiz-taking use cases.
type QuizService struct {
	sessions     SessionRepository
	questions    QuestionProvider
	gateway      Gateway
	sched        Scheduler
	advanceDelay time.Duration
	log          zerolog.Logger
	newID        func() string
}

// QuizOption customizes a QuizService.
type QuizOption func(*QuizService)

// WithScheduler replaces the runtime timers, mainly for tests.
func WithScheduler(s Scheduler) QuizOption {
	return func(q *QuizService) { q.sched = s }
}

// WithAdvanceDelay overrides the pause after each submitted answer.
func WithAdvanceDelay(d time.Duration) QuizOption {
	return func(q *QuizService) { q.advanceDelay = d }
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) QuizOption {
	return func(q *QuizService) { q.log = l }
}

func NewQuizService(store SessionRepository, questions QuestionProvider, gateway Gateway, opts ...QuizOption) *QuizService {
	s := &QuizService{
		sessions:     store,
		questions:    questions,
		gateway:      gateway,
		sched:        SystemScheduler,
		advanceDelay: DefaultAdvanceDelay,
		log:          zerolog.Nop(),
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open registers a new session in the loading state.
func (s *QuizService) Open(params domain.SessionParams, player domain.Player) *Controller {
	c := NewController(ControllerConfig{
		ID:           s.newID(),
		Params:       params,
		Player:       player,
		Gateway:      s.gateway,
		Scheduler:    s.sched,
		AdvanceDelay: s.advanceDelay,
		Logger:       s.log,
	})
	s.sessions.Add(c)
	return c
}

// Load fetches the questions for c exactly once. A failed fetch is logged and
// leaves the session with no questions.
func (s *QuizService) Load(ctx context.Context, c *Controller) {
	p := c.params
	questions, err := s.questions.FetchQuestions(ctx, p.Category, p.Difficulty, p.Count)
	if err != nil {
		s.log.Error().Err(err).
			Str("session", c.ID()).
			Str("category", p.Category).
			Msg("failed to generate questions")
		questions = nil
	}
	c.Load(questions)
}

// Start opens a session and loads its questions.
func (s *QuizService) Start(ctx context.Context, params domain.SessionParams, player domain.Player) *Controller {
	c := s.Open(params, player)
	s.Load(ctx, c)
	return c
}

// Select records an option for the session's current question.
func (s *QuizService) Select(sessionID string, index int) (Snapshot, error) {
	c, ok := s.sessions.Get(sessionID)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	if err := c.Select(index); err != nil {
		return Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// Submit submits the selected option for the session's current question.
func (s *QuizService) Submit(sessionID string) (Snapshot, error) {
	c, ok := s.sessions.Get(sessionID)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	if err := c.Submit(); err != nil {
		return Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// Snapshot returns the current state of a session.
func (s *QuizService) Snapshot(sessionID string) (Snapshot, error) {
	c, ok := s.sessions.Get(sessionID)
	if !ok {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	return c.Snapshot(), nil
}

// End closes a session and drops it from the registry.
func (s *QuizService) End(sessionID string) {
	c, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	c.Close()
	s.sessions.Remove(sessionID)
}
