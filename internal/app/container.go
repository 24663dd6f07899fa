package app

import (
	"context"
	"fmt"
	"time"

	"hireboard/internal/config"
	"hireboard/internal/database"
	"hireboard/internal/database/migration"
	dbpostgres "hireboard/internal/database/postgres"
	"hireboard/internal/domain/assessment"
	"hireboard/internal/domain/board"
	"hireboard/internal/domain/candidate"
	"hireboard/internal/domain/job"
	"hireboard/internal/domain/user"
	"hireboard/internal/infrastructure/cache"
	"hireboard/internal/pkg/jwt"
	"hireboard/internal/pkg/logger"
	"hireboard/internal/repository"
	"hireboard/internal/repository/memory"
	"hireboard/internal/usecase"
	"hireboard/internal/worker"
	"hireboard/internal/ws"

	"github.com/sirupsen/logrus"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Repositories struct {
	Users       user.Repository
	Jobs        job.Repository
	Candidates  candidate.Repository
	History     candidate.HistoryRepository
	Notes       candidate.NoteRepository
	Assessments assessment.Repository
	Responses   assessment.ResponseRepository
}

func PostgresRepositories(db database.DB) Repositories {
	return Repositories{
		Users:       repository.NewPostgresUserRepository(db),
		Jobs:        repository.NewPostgresJobRepository(db),
		Candidates:  repository.NewPostgresCandidateRepository(db),
		History:     repository.NewPostgresHistoryRepository(db),
		Notes:       repository.NewPostgresNoteRepository(db),
		Assessments: repository.NewPostgresAssessmentRepository(db),
		Responses:   repository.NewPostgresResponseRepository(db),
	}
}

func MemoryRepositories(s *memory.Store) Repositories {
	return Repositories{
		Users:       s.Users(),
		Jobs:        s.Jobs(),
		Candidates:  s.Candidates(),
		History:     s.History(),
		Notes:       s.Notes(),
		Assessments: s.Assessments(),
		Responses:   s.Responses(),
	}
}

type Usecases struct {
	Auth        usecase.AuthUsecase
	Jobs        usecase.JobUsecase
	Candidates  usecase.CandidateUsecase
	Stages      usecase.StageUsecase
	Assessments usecase.AssessmentUsecase
	Sessions    *usecase.Sessions
	Dashboard   usecase.DashboardUsecase
}

type Container struct {
	Config config.Config
	Logger logrus.FieldLogger

	// DB is nil with the memory driver.
	DB    database.DB
	Repos Repositories

	Cache   *cache.Redis
	Locks   *cache.KeyLock
	Hub     *ws.Hub
	Tracker *board.Tracker
	Pool    *worker.Pool
	JWT     jwt.Service

	Usecases Usecases

	cancel context.CancelFunc
}

func NewLogger(cfg config.Config) logrus.FieldLogger {
	return logger.New(logger.Options{
		Level:      cfg.App.LogLevel,
		Production: cfg.App.IsProduction(),
		App:        cfg.App.AppName,
		Env:        cfg.App.Environment,
	})
}

// OpenDatabase connects to Postgres and, when enabled, applies pending
// migrations before returning.
func OpenDatabase(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (database.DB, error) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(cctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if cfg.Store.MigrationsOnStart {
		if err := RunMigrations(ctx, db, log); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func RunMigrations(ctx context.Context, db database.DB, log logrus.FieldLogger) error {
	if err := (migration.Runner{Logger: log}).Run(ctx, db.SQLDB()); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func NewContainer(cfg config.Config) (*Container, error) {
	log := NewLogger(cfg)

	c := &Container{Config: cfg, Logger: log}

	switch cfg.Store.Driver {
	case DriverMemory:
		c.Repos = MemoryRepositories(memory.NewStore())
		log.Info("using in-memory store")
	default:
		db, err := OpenDatabase(context.Background(), cfg, log)
		if err != nil {
			return nil, err
		}
		c.DB = db
		c.Repos = PostgresRepositories(db)
	}

	c.Cache = cache.NewRedis(cfg.Redis, log)
	c.Locks = cache.NewKeyLock(c.Cache, log)
	c.Hub = ws.NewHub(log)
	c.Tracker = board.NewTracker()
	c.Pool = worker.NewPool(cfg.Session.AutosaveWorkers, 64, log.WithField("component", "autosave"))
	c.JWT = jwt.NewHMACService(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	c.Usecases = BuildUsecases(c.Repos, Deps{
		JWT:           c.JWT,
		Cache:         c.Cache,
		Locks:         c.Locks,
		Events:        c.Hub,
		Tracker:       c.Tracker,
		Pool:          c.Pool,
		AutosaveDelay: cfg.Session.AutosaveDelay,
		Logger:        log,
	})

	return c, nil
}

// Deps are the shared collaborators of the usecases. Nil Cache and Locks
// disable caching and cross-instance locking.
type Deps struct {
	JWT           jwt.Service
	Cache         usecase.Cache
	Locks         usecase.KeyLocker
	Events        usecase.Broadcaster
	Tracker       *board.Tracker
	Pool          *worker.Pool
	AutosaveDelay time.Duration
	Logger        logrus.FieldLogger
}

func BuildUsecases(r Repositories, d Deps) Usecases {
	if d.Tracker == nil {
		d.Tracker = board.NewTracker()
	}
	if d.Logger == nil {
		d.Logger = logrus.StandardLogger()
	}

	sessions := usecase.NewSessionUsecase(r.Assessments, r.Responses, r.Candidates, usecase.SessionOptions{
		AutosaveDelay: d.AutosaveDelay,
		Pool:          d.Pool,
	}, d.Logger.WithField("usecase", "sessions"))

	return Usecases{
		Auth: usecase.NewAuthUsecase(r.Users, d.JWT),
		Jobs: usecase.NewJobUsecase(r.Jobs, r.Candidates, d.Tracker, d.Cache, d.Logger.WithField("usecase", "jobs")).
			WithEvents(d.Events),
		Candidates: usecase.NewCandidateUsecase(r.Candidates, r.History, r.Notes, r.Jobs, d.Tracker, d.Logger.WithField("usecase", "candidates")),
		Stages:     usecase.NewStageUsecase(r.Candidates, r.History, r.Notes, d.Tracker, d.Locks, d.Events, d.Logger.WithField("usecase", "stages")),
		Assessments: usecase.NewAssessmentUsecase(r.Assessments, r.Responses, r.Jobs, r.Candidates, d.Cache, d.Logger.WithField("usecase", "assessments")).
			WithSessions(sessions),
		Sessions:  sessions,
		Dashboard: usecase.NewDashboardUsecase(r.Jobs, r.Candidates, r.Responses, d.Logger.WithField("usecase", "dashboard")),
	}
}

// Start runs the background loops: the websocket hub and the autosave pool.
func (c *Container) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	go c.Hub.Run(ctx)
	c.Pool.Start(ctx)
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Usecases.Sessions != nil {
		c.Usecases.Sessions.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.cancel != nil {
		c.cancel()
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
