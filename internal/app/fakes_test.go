package app_test

import (
	"context"
	"sync"
	"time"

	"web3-quiz-service/internal/app"
	"web3-quiz-service/internal/domain"
)

// manualScheduler records callbacks instead of running them; tests fire them.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) app.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// pending lists timers of duration d that are neither stopped nor fired.
func (s *manualScheduler) pending(d time.Duration) []*manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*manualTimer
	for _, t := range s.timers {
		if t.d == d && !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fire runs the oldest pending timer of duration d and reports whether one existed.
func (s *manualScheduler) fire(d time.Duration) bool {
	s.mu.Lock()
	var next *manualTimer
	for _, t := range s.timers {
		if t.d == d && !t.stopped && !t.fired {
			next = t
			break
		}
	}
	if next != nil {
		next.fired = true
	}
	s.mu.Unlock()
	if next == nil {
		return false
	}
	next.f()
	return true
}

// last returns the most recently scheduled timer of duration d.
func (s *manualScheduler) last(d time.Duration) *manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.timers) - 1; i >= 0; i-- {
		if s.timers[i].d == d {
			return s.timers[i]
		}
	}
	return nil
}

type fakeGateway struct {
	mu     sync.Mutex
	calls  []app.Submission
	result domain.SubmissionResult
	err    error

	// when hold is set, Submit signals entered and waits for hold to close
	entered chan struct{}
	hold    chan struct{}
}

func (g *fakeGateway) Submit(_ context.Context, sub app.Submission) (domain.SubmissionResult, error) {
	g.mu.Lock()
	g.calls = append(g.calls, sub)
	res, err, hold := g.result, g.err, g.hold
	g.mu.Unlock()
	if hold != nil {
		close(g.entered)
		<-hold
	}
	return res, err
}

func (g *fakeGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type fakeQuestions struct {
	mu        sync.Mutex
	calls     int
	questions []domain.Question
	err       error
}

func (f *fakeQuestions) FetchQuestions(_ context.Context, _, _ string, _ int) ([]domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.questions, f.err
}

func sampleQuestions(n int) []domain.Question {
	qs := make([]domain.Question, n)
	for i := range qs {
		qs[i] = domain.Question{
			Prompt:        "What is a block?",
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: "B",
		}
	}
	return qs
}

func intPtr(v int) *int { return &v }

type fakeIdentityProvider struct {
	mu         sync.Mutex
	users      map[string]domain.Identity
	lookups    int
	signUpID   string
	signUpErr  error
	signInErr  error
	signOutErr error
	signOuts   int
}

func newFakeIdentityProvider() *fakeIdentityProvider {
	return &fakeIdentityProvider{users: make(map[string]domain.Identity)}
}

func (p *fakeIdentityProvider) CurrentUser(_ context.Context, token string) (domain.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lookups++
	id, ok := p.users[token]
	if !ok {
		return domain.Identity{}, domain.ErrNoIdentity
	}
	return id, nil
}

func (p *fakeIdentityProvider) SignUp(_ context.Context, email, _, _, _ string) (domain.Identity, error) {
	if p.signUpErr != nil {
		return domain.Identity{}, p.signUpErr
	}
	return domain.Identity{ID: p.signUpID, Email: email}, nil
}

func (p *fakeIdentityProvider) SignIn(_ context.Context, email, _ string) (app.AuthSession, error) {
	if p.signInErr != nil {
		return app.AuthSession{}, p.signInErr
	}
	return app.AuthSession{AccessToken: "token-" + email, User: domain.Identity{ID: "uid-" + email, Email: email}}, nil
}

func (p *fakeIdentityProvider) SignOut(context.Context, string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signOuts++
	return p.signOutErr
}

func (p *fakeIdentityProvider) OAuthURL(provider, redirectTo string) string {
	return "https://auth.example/authorize?provider=" + provider + "&redirect_to=" + redirectTo
}

func (p *fakeIdentityProvider) lookupCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lookups
}
