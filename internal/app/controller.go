package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"web3-quiz-service/internal/domain"
)

// Phase is the lifecycle state of a quiz session.
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseInProgress Phase = "in_progress"
	PhaseCompleted  Phase = "completed"
)

// DefaultAdvanceDelay is the pause between submitting an answer and moving on.
const DefaultAdvanceDelay = 1500 * time.Millisecond

// QuestionView is the client-facing form of the current question.
type QuestionView struct {
	ID      string   `json:"questionId,omitempty"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
	// CorrectAnswer is only filled once the question has been submitted.
	CorrectAnswer string `json:"correctAnswer,omitempty"`
}

// Snapshot is a point-in-time copy of a session's state.
type Snapshot struct {
	SessionID       string                   `json:"sessionId"`
	Phase           Phase                    `json:"phase"`
	Params          domain.SessionParams     `json:"params"`
	Total           int                      `json:"total"`
	CurrentIndex    int                      `json:"currentIndex"`
	Question        *QuestionView            `json:"question,omitempty"`
	Selected        *int                     `json:"selected"`
	Submitted       bool                     `json:"submitted"`
	Answers         []*int                   `json:"answers"`
	Answered        int                      `json:"answered"`
	TimeRemaining   int                      `json:"timeRemaining"`
	Submitting      bool                     `json:"submitting"`
	SubmissionError string                   `json:"submissionError,omitempty"`
	Result          *domain.SubmissionResult `json:"result,omitempty"`
	Empty           bool                     `json:"empty,omitempty"`
}

// ControllerConfig wires a Controller.
type ControllerConfig struct {
	ID           string
	Params       domain.SessionParams
	Player       domain.Player
	Gateway      Gateway
	Scheduler    Scheduler
	AdvanceDelay time.Duration
	Logger       zerolog.Logger
}

// Controller drives one quiz session: selection, per-question countdown,
// advancing, and the final submission.
//
// Every scheduled callback captures the epoch it was created in. Any
// transition bumps the epoch, so a callback belonging to a previous question
// (or to a closed session) finds a stale epoch and does nothing.
type Controller struct {
	id           string
	params       domain.SessionParams
	player       domain.Player
	gateway      Gateway
	sched        Scheduler
	advanceDelay time.Duration
	log          zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	phase         Phase
	questions     []domain.Question
	current       int
	selected      *int
	submitted     bool
	answers       []*int
	remaining     int
	submitting    bool
	submissionErr string
	result        *domain.SubmissionResult
	empty         bool
	closed        bool
	epoch         uint64
	tick          Timer
	advance       Timer
	subscribers   map[chan Snapshot]struct{}
}

// NewController creates a session in the loading state.
func NewController(cfg ControllerConfig) *Controller {
	if cfg.Scheduler == nil {
		cfg.Scheduler = SystemScheduler
	}
	if cfg.AdvanceDelay <= 0 {
		cfg.AdvanceDelay = DefaultAdvanceDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		id:           cfg.ID,
		params:       cfg.Params,
		player:       cfg.Player,
		gateway:      cfg.Gateway,
		sched:        cfg.Scheduler,
		advanceDelay: cfg.AdvanceDelay,
		log:          cfg.Logger.With().Str("session", cfg.ID).Logger(),
		ctx:          ctx,
		cancel:       cancel,
		phase:        PhaseLoading,
		remaining:    cfg.Params.TimeLimit,
		subscribers:  make(map[chan Snapshot]struct{}),
	}
}

// ID returns the session id.
func (c *Controller) ID() string { return c.id }

// Params returns the settings the session was started with.
func (c *Controller) Params() domain.SessionParams { return c.params }

// Load moves the session out of loading. Zero questions complete the session
// immediately without a submission.
func (c *Controller) Load(questions []domain.Question) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.phase != PhaseLoading {
		return
	}

	c.questions = questions
	c.answers = make([]*int, len(questions))
	if len(questions) == 0 {
		c.phase = PhaseCompleted
		c.empty = true
		c.remaining = 0
		c.broadcastLocked()
		return
	}

	c.phase = PhaseInProgress
	c.current = 0
	c.startQuestionLocked()
	c.broadcastLocked()
}

// Select records the chosen option for the current question. It does nothing
// once the question has been submitted.
func (c *Controller) Select(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrSessionNotFound
	}
	if c.phase != PhaseInProgress {
		return domain.ErrNotInProgress
	}
	if c.submitted {
		return nil
	}
	if index < 0 || index >= len(c.questions[c.current].Options) {
		return domain.ErrOptionOutOfRange
	}
	c.selected = &index
	c.broadcastLocked()
	return nil
}

// Submit records the selected option for the current question. A submit that
// arrives after the question was already submitted (by the countdown or an
// earlier click) is ignored.
func (c *Controller) Submit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrSessionNotFound
	}
	if c.phase != PhaseInProgress {
		return domain.ErrNotInProgress
	}
	if c.submitted {
		return nil
	}
	if c.selected == nil {
		return domain.ErrNoSelection
	}
	choice := *c.selected
	c.submitLocked(&choice)
	c.broadcastLocked()
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe returns a channel of state snapshots, starting with the current
// one. The caller must invoke cancel; Close also closes every channel.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subscribers[ch] = struct{}{}
	ch <- c.snapshotLocked()
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// Close tears the session down: pending callbacks are cancelled, an in-flight
// submission is aborted and subscribers are released. Safe to call twice.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.epoch++
	c.stopTimersLocked()
	c.cancel()
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
}

func (c *Controller) startQuestionLocked() {
	c.epoch++
	c.stopTimersLocked()
	c.selected = nil
	c.submitted = false
	c.remaining = c.params.TimeLimit
	if c.params.TimeLimit > 0 {
		c.scheduleTickLocked()
	}
}

func (c *Controller) scheduleTickLocked() {
	epoch := c.epoch
	c.tick = c.sched.AfterFunc(time.Second, func() { c.onTick(epoch) })
}

func (c *Controller) onTick(epoch uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || epoch != c.epoch || c.phase != PhaseInProgress || c.submitted {
		return
	}

	c.remaining--
	if c.remaining <= 0 {
		c.remaining = 0
		c.log.Debug().Int("question", c.current).Msg("time expired")
		c.submitLocked(nil)
	} else {
		c.scheduleTickLocked()
	}
	c.broadcastLocked()
}

// submitLocked writes the answer for the current question exactly once and
// schedules the advance.
func (c *Controller) submitLocked(answer *int) {
	if c.submitted {
		return
	}
	c.answers[c.current] = answer
	c.submitted = true

	c.epoch++
	c.stopTimersLocked()
	epoch := c.epoch
	c.advance = c.sched.AfterFunc(c.advanceDelay, func() { c.onAdvance(epoch) })
}

func (c *Controller) onAdvance(epoch uint64) {
	c.mu.Lock()
	if c.closed || epoch != c.epoch || c.phase != PhaseInProgress {
		c.mu.Unlock()
		return
	}

	if c.current < len(c.questions)-1 {
		c.current++
		c.startQuestionLocked()
		c.broadcastLocked()
		c.mu.Unlock()
		return
	}

	// Last question: grade once. The epoch bump rejects any duplicate advance.
	c.epoch++
	c.advance = nil
	c.submitting = true
	sub := Submission{
		Player:    c.player,
		Questions: append([]domain.Question(nil), c.questions...),
		Answers:   copyAnswers(c.answers),
	}
	ctx := c.ctx
	c.broadcastLocked()
	c.mu.Unlock()

	result, err := c.gateway.Submit(ctx, sub)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.submitting = false
	if err != nil {
		c.log.Error().Err(err).Msg("submit quiz")
		c.submissionErr = err.Error()
	} else {
		c.result = &result
	}
	c.phase = PhaseCompleted
	c.broadcastLocked()
}

func (c *Controller) stopTimersLocked() {
	if c.tick != nil {
		c.tick.Stop()
		c.tick = nil
	}
	if c.advance != nil {
		c.advance.Stop()
		c.advance = nil
	}
}

func (c *Controller) broadcastLocked() {
	if len(c.subscribers) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for ch := range c.subscribers {
		select {
		case ch <- snap:
		default:
			// Drop the oldest update so a slow reader never blocks the session.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:       c.id,
		Phase:           c.phase,
		Params:          c.params,
		Total:           len(c.questions),
		CurrentIndex:    c.current,
		Submitted:       c.submitted,
		Answers:         copyAnswers(c.answers),
		TimeRemaining:   c.remaining,
		Submitting:      c.submitting,
		SubmissionError: c.submissionErr,
		Empty:           c.empty,
	}
	if c.selected != nil {
		sel := *c.selected
		snap.Selected = &sel
	}
	for _, a := range c.answers {
		if a != nil {
			snap.Answered++
		}
	}
	if c.result != nil {
		res := *c.result
		snap.Result = &res
	}
	if c.phase == PhaseInProgress && c.current < len(c.questions) {
		q := c.questions[c.current]
		view := &QuestionView{
			ID:      q.ID,
			Prompt:  q.Prompt,
			Options: append([]string(nil), q.Options...),
		}
		if c.submitted {
			view.CorrectAnswer = q.CorrectAnswer
		}
		snap.Question = view
	}
	return snap
}

func copyAnswers(in []*int) []*int {
	out := make([]*int, len(in))
	for i, a := range in {
		if a != nil {
			v := *a
			out[i] = &v
		}
	}
	return out
}
