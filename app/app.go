package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/dvergaray/quizarena/internal/cache"
	"github.com/dvergaray/quizarena/internal/config"
	"github.com/dvergaray/quizarena/internal/database"
	apperrors "github.com/dvergaray/quizarena/internal/errors"
	"github.com/dvergaray/quizarena/internal/events"
	"github.com/dvergaray/quizarena/internal/events/publisher"
	"github.com/dvergaray/quizarena/internal/events/subscriber"
	"github.com/dvergaray/quizarena/internal/handler"
	"github.com/dvergaray/quizarena/internal/logger"
	"github.com/dvergaray/quizarena/internal/matchmaking"
	"github.com/dvergaray/quizarena/internal/natsjetstream"
	"github.com/dvergaray/quizarena/internal/repository"
	"github.com/dvergaray/quizarena/internal/reward"
	"github.com/dvergaray/quizarena/internal/sampler"
	"github.com/dvergaray/quizarena/internal/scheduler"
	"github.com/dvergaray/quizarena/internal/service"
)

type App struct {
	cfg        *config.Config
	logger     *logger.Logger
	db         *database.DynamoDBClient
	redis      *cache.RedisClient
	natsClient *natsjetstream.Client

	eventPublisher  *publisher.EventPublisher
	eventSubscriber *subscriber.ArenaEventSubscriber

	tournamentService service.TournamentService
	scoreService      service.ScoreService
	rankingService    service.RankingService
	arenaService      service.ArenaService
	questionService   service.QuestionService

	httpServer *http.Server
	scheduler  *scheduler.Scheduler

	cleanup []func() error
}

func New(ctx context.Context, cfg *config.Config) (*App, *apperrors.AppError) {
	app := &App{
		cfg:     cfg,
		cleanup: make([]func() error, 0),
	}

	if err := app.initLogger(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalServer, "failed to init logger")
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalServer, "failed to init database")
	}

	if err := app.initRedis(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalServer, "failed to init redis")
	}

	if err := app.initNATS(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalServer, "failed to init nats client")
	}

	app.initServices()

	if err := app.initMessageSubscriber(ctx); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternalServer, "failed to init messaging subscriber")
	}

	app.initHTTP()
	app.initScheduler()

	return app, nil
}

func (a *App) initLogger() error {
	if a.cfg.Server.Environment == "production" {
		a.logger = logger.Default("quizarena")
	} else {
		a.logger = logger.Development("quizarena")
	}
	return nil
}

func (a *App) initDatabase(ctx context.Context) error {
	db, err := database.NewDynamoDBClient(a.cfg)
	if err != nil {
		return err
	}
	a.db = db
	return nil
}

func (a *App) initRedis(ctx context.Context) error {
	redisClient, err := cache.NewRedisClient(a.cfg.Redis)
	if err != nil {
		return err
	}
	if err := redisClient.Ping(ctx); err != nil {
		return err
	}

	a.redis = redisClient
	a.cleanup = append(a.cleanup, redisClient.Close)
	return nil
}

func (a *App) initNATS(ctx context.Context) error {
	natsClient, err := natsjetstream.NewClient(&natsjetstream.Config{
		URL:           a.cfg.NATS.URL,
		MaxReconnect:  a.cfg.NATS.MaxReconnect,
		ReconnectWait: time.Duration(a.cfg.NATS.ReconnectWaitSeconds) * time.Second,
		Timeout:       time.Duration(a.cfg.NATS.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return err
	}
	a.natsClient = natsClient
	a.cleanup = append(a.cleanup, natsClient.Close)

	streams := []jetstream.StreamConfig{
		{Name: events.ArenaEventsStream, Subjects: []string{events.ArenaEventsWildcard}},
		{Name: events.TournamentEventsStream, Subjects: []string{events.TournamentEventsWildcard}},
	}
	for _, stream := range streams {
		if _, err := a.natsClient.JetStream().CreateOrUpdateStream(ctx, stream); err != nil {
			a.logger.Error("Failed to create stream", "error", err, "stream", stream.Name)
			return err
		}
		a.logger.Info("Stream ready", "stream", stream.Name)
	}

	a.eventPublisher = publisher.NewEventPublisher(a.natsClient, a.logger)

	return nil
}

func (a *App) initServices() {
	tournamentRepo := repository.NewTournamentRepository(a.db)
	challengeRepo := repository.NewChallengeRepository(a.db)
	playerRepo := repository.NewPlayerRepository(a.db)
	attemptRepo := repository.NewAttemptRepository(a.db)
	rankingRepo := repository.NewRankingRepository(a.db)
	arenaRepo := repository.NewArenaRepository(a.db)
	questionRepo := repository.NewQuestionRepository(a.db)
	profileRepo := repository.NewProfileRepository(a.db)
	transactionRepo := database.NewTransactionRepository(a.db)

	board := cache.NewRankingBoard(a.redis)

	a.rankingService = service.NewRankingService(
		tournamentRepo, playerRepo, rankingRepo, profileRepo, board, a.logger)

	a.scoreService = service.NewScoreService(
		challengeRepo, tournamentRepo, playerRepo, attemptRepo,
		transactionRepo, a.rankingService, a.eventPublisher, a.logger)

	a.tournamentService = service.NewTournamentService(
		tournamentRepo, challengeRepo, playerRepo, attemptRepo, questionRepo,
		transactionRepo, a.rankingService, reward.NewEventPayer(a.eventPublisher),
		a.eventPublisher, sampler.New(), a.logger)

	a.arenaService = service.NewArenaService(arenaRepo, a.eventPublisher, a.logger)
	a.questionService = service.NewQuestionService(questionRepo, a.logger)
}

func (a *App) initMessageSubscriber(ctx context.Context) error {
	arenaRepo := repository.NewArenaRepository(a.db)
	matchmaker := matchmaking.NewQueueMatchmaker(arenaRepo, a.logger)

	a.eventSubscriber = subscriber.NewArenaEventSubscriber(a.natsClient, matchmaker, a.logger)
	return a.eventSubscriber.Start(ctx)
}

func (a *App) initHTTP() {
	router := handler.NewRouter(
		handler.NewTournamentHandler(a.tournamentService, a.scoreService, a.logger),
		handler.NewRankingHandler(a.rankingService, a.logger),
		handler.NewArenaHandler(a.arenaService, a.logger),
		handler.NewQuestionHandler(a.questionService, a.logger),
	)

	a.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Server.HTTPPort),
		Handler: router,
	}
}

func (a *App) initScheduler() {
	if a.cfg.Server.ExpiryCheckSeconds <= 0 {
		a.logger.Info("Tournament expiry scheduler disabled")
		return
	}

	tournamentRepo := repository.NewTournamentRepository(a.db)
	expiryScheduler := scheduler.NewExpiryScheduler(tournamentRepo, a.tournamentService, a.logger)

	a.scheduler = scheduler.NewScheduler(
		expiryScheduler,
		time.Duration(a.cfg.Server.ExpiryCheckSeconds)*time.Second,
		a.logger,
	)
	a.cleanup = append(a.cleanup, a.scheduler.Stop)
}

func (a *App) Start() {
	if a.scheduler != nil {
		go a.scheduler.Start()
	}

	go func() {
		a.logger.Info(fmt.Sprintf("HTTP server listening on %d", a.cfg.Server.HTTPPort))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatal("Failed to serve", "error", err)
		}
	}()

	a.logger.Info("Application started successfully")
}

func (a *App) Stop() {
	a.logger.Info("Stopping application...")

	if a.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Error("HTTP shutdown error", "error", err)
		}
	}

	for _, cleanup := range a.cleanup {
		if err := cleanup(); err != nil {
			a.logger.Error(fmt.Sprintf("Cleanup error: %v", err))
		}
	}

	a.logger.Info("Application stopped")
}
