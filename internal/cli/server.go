package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"web3-quiz-service/internal/app"
	"web3-quiz-service/internal/config"
	"web3-quiz-service/internal/infra/chain"
	"web3-quiz-service/internal/infra/generator"
	"web3-quiz-service/internal/infra/identity"
	"web3-quiz-service/internal/infra/memory"
	"web3-quiz-service/internal/infra/postgres"
	redisstore "web3-quiz-service/internal/infra/redis"
	"web3-quiz-service/internal/infra/webhook"
	"web3-quiz-service/internal/logger"
	transport "web3-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg.Postgres.URL, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis not reachable, continuing")
		}
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var sessions app.SessionRepository
	var identities app.IdentityStore
	if redisClient != nil {
		sessions = redisstore.NewSessionStore(redisClient, redisTTL)
		identities = redisstore.NewIdentityStore(redisClient)
	} else {
		sessions = memory.NewSessionStore()
		identities = memory.NewIdentityStore()
	}

	var profiles app.ProfileRepository
	if pool != nil {
		profiles = postgres.NewProfileStore(pool)
	} else {
		log.Warn().Msg("postgres not configured, profile data is kept in memory")
		profiles = memory.NewProfileStore()
	}

	if cfg.Generator.URL == "" {
		log.Warn().Msg("generator url not configured, sessions will have no questions")
	}
	questions := generator.NewClient(cfg.Generator.URL, cfg.Generator.APIKey,
		&http.Client{Timeout: config.TTLDuration(cfg.Generator.Timeout, 60*time.Second)})
	grader := webhook.NewClient(cfg.Webhook.URL,
		&http.Client{Timeout: config.TTLDuration(cfg.Webhook.Timeout, 30*time.Second)}, log)
	provider := identity.NewClient(cfg.Identity.URL, cfg.Identity.AnonKey, cfg.Identity.JWTSecret,
		&http.Client{Timeout: 15 * time.Second})

	identityCache := app.NewIdentityCache(identities, provider,
		config.TTLDuration(cfg.Identity.CacheTTL, 5*time.Minute), log)
	go logIdentityEvents(ctx, identityCache, log)

	quizService := app.NewQuizService(sessions, questions, grader,
		app.WithAdvanceDelay(config.TTLDuration(cfg.Quiz.AdvanceDelay, app.DefaultAdvanceDelay)),
		app.WithLogger(log))
	authService := app.NewAuthService(provider, identityCache, profiles, cfg.Identity.RedirectTo, log)
	profileService := app.NewProfileService(profiles, chain.NewClaimer(log))

	router := transport.NewRouter(transport.Handlers{
		Quiz:    transport.NewQuizHandler(),
		Auth:    transport.NewAuthHandler(authService),
		Profile: transport.NewProfileHandler(profileService),
		WS:      transport.NewWSHandler(quizService, cfg.Server.AllowedOrigins, log),
	}, transport.NewAuthGate(identityCache, cfg.Server.LoginPath, log), cfg.Server.AllowedOrigins, log)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("starting quiz service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// logIdentityEvents records sign-ins and sign-outs seen by the identity cache.
func logIdentityEvents(ctx context.Context, cache *app.IdentityCache, log zerolog.Logger) {
	events, cancel := cache.Subscribe()
	defer cancel()
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.SignedOut {
				log.Info().Str("user", ev.UserID).Msg("signed out")
			} else {
				log.Debug().Str("user", ev.UserID).Msg("identity resolved")
			}
		case <-ctx.Done():
			return
		}
	}
}
