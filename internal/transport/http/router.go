package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Quiz    *QuizHandler
	Auth    *AuthHandler
	Profile *ProfileHandler
	WS      *WSHandler
}

// NewRouter wires the middlewares and routes. Gated routes go through gate.
func NewRouter(h Handlers, gate *AuthGate, allowedOrigins []string, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	origins := allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", h.Auth.SignUp)
		r.Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)
		r.Get("/oauth/{provider}", h.Auth.OAuth)
		r.Get("/me", h.Auth.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(gate.Require)

		r.Get("/api/categories", h.Quiz.Categories)
		r.Get("/api/quiz/options", h.Quiz.Options)
		r.Post("/api/quiz/new", h.Quiz.NewQuiz)
		r.Get("/api/profile", h.Profile.Profile)
		r.Post("/api/rewards/{id}/claim", h.Profile.ClaimReward)
		r.Get("/ws/play", h.WS.ServePlay)
	})

	return r
}

// requestLogger logs one line per request.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}
