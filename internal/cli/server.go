package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trivia-service/internal/app"
	"trivia-service/internal/config"
	"trivia-service/internal/domain"
	"trivia-service/internal/infra/memory"
	pgloader "trivia-service/internal/infra/postgres"
	redisinfra "trivia-service/internal/infra/redis"
	"trivia-service/internal/questions"
	transport "trivia-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
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
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.ActivityLoader = memory.NewStaticActivityLoader(sampleActivities())
	if pool != nil {
		loader = pgloader.NewActivityLoader(pool)
	}

	activityTTL := config.TTLDuration(cfg.Activities.TTL, 10*time.Minute)
	var activities questions.ActivityRepository
	if redisClient != nil {
		activities = redisinfra.NewActivityRepository(redisClient, loader, activityTTL)
	} else {
		activities = memory.NewActivityRepository(loader, activityTTL)
	}

	var store app.SessionStore
	if redisClient != nil {
		store = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	generator := questions.NewGenerator(activities)
	service := app.NewGameService(store, generator, app.StandardScorer{})
	queue := app.NewQueue()
	queue.SetOnStart(service.StartGame)

	handler := transport.NewHandler(service, queue, log.Logger)
	router := transport.NewRouter(handler, log.Logger)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("port", finalPort).Msg("starting trivia service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleActivities is a minimal catalog used when no Postgres is
// configured; production deployments load the real catalog instead.
func sampleActivities() []domain.Activity {
	return []domain.Activity{
		{ID: "act-01", Title: "Taking a hot shower for 6 minutes", Consumption: 4000, Source: "https://energuide.be"},
		{ID: "act-02", Title: "Boiling a liter of water", Consumption: 120, Source: "https://energuide.be"},
		{ID: "act-03", Title: "Watching TV for an hour", Consumption: 100, Source: "https://energy.gov"},
		{ID: "act-04", Title: "Running a dishwasher cycle", Consumption: 1800, Source: "https://energy.gov"},
		{ID: "act-05", Title: "Charging a smartphone", Consumption: 12, Source: "https://energy.gov"},
		{ID: "act-06", Title: "Baking a pizza in an electric oven", Consumption: 2500, Source: "https://energuide.be"},
		{ID: "act-07", Title: "Using a laptop for 8 hours", Consumption: 400, Source: "https://energy.gov"},
		{ID: "act-08", Title: "Washing laundry at 60 degrees", Consumption: 1300, Source: "https://energuide.be"},
		{ID: "act-09", Title: "Vacuuming the living room", Consumption: 450, Source: "https://energy.gov"},
		{ID: "act-10", Title: "Driving an electric car for 10 km", Consumption: 2000, Source: "https://ev-database.org"},
		{ID: "act-11", Title: "Toasting two slices of bread", Consumption: 60, Source: "https://energy.gov"},
		{ID: "act-12", Title: "Running a ceiling fan overnight", Consumption: 600, Source: "https://energy.gov"},
	}
}
