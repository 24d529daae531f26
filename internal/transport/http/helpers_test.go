package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"web3-quiz-service/internal/app"
	"web3-quiz-service/internal/domain"
	"web3-quiz-service/internal/infra/chain"
	"web3-quiz-service/internal/infra/memory"
)

const testToken = "valid-token"

type stubProvider struct{}

func (stubProvider) CurrentUser(_ context.Context, token string) (domain.Identity, error) {
	if token != testToken {
		return domain.Identity{}, domain.ErrNoIdentity
	}
	return domain.Identity{ID: "U001", Email: "ada@example.com"}, nil
}

func (stubProvider) SignUp(_ context.Context, email, _, _, _ string) (domain.Identity, error) {
	return domain.Identity{ID: "U002", Email: email}, nil
}

func (stubProvider) SignIn(_ context.Context, email, _ string) (app.AuthSession, error) {
	return app.AuthSession{AccessToken: testToken, ExpiresIn: 3600, User: domain.Identity{ID: "U001", Email: email}}, nil
}

func (stubProvider) SignOut(context.Context, string) error { return nil }

func (stubProvider) OAuthURL(provider, redirectTo string) string {
	return "https://auth.example/authorize?provider=" + provider
}

type stubQuestions struct {
	questions []domain.Question
}

func (s stubQuestions) FetchQuestions(context.Context, string, string, int) ([]domain.Question, error) {
	return s.questions, nil
}

type recordingGateway struct {
	mu    sync.Mutex
	subs  []app.Submission
	score float64
}

func (g *recordingGateway) Submit(_ context.Context, sub app.Submission) (domain.SubmissionResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.subs = append(g.subs, sub)
	score := g.score
	return domain.SubmissionResult{Kind: domain.ResultScore, Score: &score}, nil
}

func (g *recordingGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.subs)
}

type testEnv struct {
	server   *httptest.Server
	sessions *memory.SessionStore
	profiles *memory.ProfileStore
	gateway  *recordingGateway
}

func newTestEnv(t *testing.T, questions []domain.Question) *testEnv {
	t.Helper()
	log := zerolog.Nop()

	sessions := memory.NewSessionStore()
	profiles := memory.NewProfileStore()
	gateway := &recordingGateway{score: float64(len(questions))}

	cache := app.NewIdentityCache(memory.NewIdentityStore(), stubProvider{}, time.Minute, log)
	quiz := app.NewQuizService(sessions, stubQuestions{questions: questions}, gateway,
		app.WithAdvanceDelay(10*time.Millisecond), app.WithLogger(log))
	auth := app.NewAuthService(stubProvider{}, cache, profiles, "http://localhost/profile", log)
	profile := app.NewProfileService(profiles, chain.NewClaimer(log))

	router := NewRouter(Handlers{
		Quiz:    NewQuizHandler(),
		Auth:    NewAuthHandler(auth),
		Profile: NewProfileHandler(profile),
		WS:      NewWSHandler(quiz, nil, log),
	}, NewAuthGate(cache, "/login", log), nil, log)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testEnv{server: server, sessions: sessions, profiles: profiles, gateway: gateway}
}

// noRedirect returns a client that reports redirects instead of following them.
func noRedirect() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+testToken)
	return req
}

func stubIdentity() domain.Identity {
	return domain.Identity{ID: "U001", Email: "ada@example.com"}
}
