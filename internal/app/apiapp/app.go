package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ivankudzin/swipematch/internal/config"
	"github.com/ivankudzin/swipematch/internal/jobs/cleanup"
	memrepo "github.com/ivankudzin/swipematch/internal/repo/memory"
	pgrepo "github.com/ivankudzin/swipematch/internal/repo/postgres"
	redrepo "github.com/ivankudzin/swipematch/internal/repo/redis"
	authsvc "github.com/ivankudzin/swipematch/internal/services/auth"
	"github.com/ivankudzin/swipematch/internal/services/connections"
	"github.com/ivankudzin/swipematch/internal/services/delivery"
	"github.com/ivankudzin/swipematch/internal/services/eventbus"
	matchessvc "github.com/ivankudzin/swipematch/internal/services/matches"
	ratesvc "github.com/ivankudzin/swipematch/internal/services/rate"
	swipesvc "github.com/ivankudzin/swipematch/internal/services/swipes"
	"github.com/ivankudzin/swipematch/internal/transport/ws"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	bus        *eventbus.Bus
	registry   *connections.Registry
	pump       *delivery.Pump
	cleanupJob *cleanup.Job
	wsHandler  *ws.Handler
	httpRouter http.Handler
	runCtx     context.Context
	cancelRun  context.CancelFunc
}

// swipeBackend is the user swipe table as seen by the gateway, the detector
// and the reconciliation service.
type swipeBackend interface {
	swipesvc.SwipeStore
	matchessvc.SwipeReader
	matchessvc.MatchStore
}

type stores struct {
	swipes        swipeBackend
	projectSwipes swipesvc.ProjectSwipeStore
	users         swipesvc.UserDirectory
	projects      swipesvc.ProjectDirectory
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	var pool *pgxpool.Pool
	var st stores
	switch cfg.Storage.Driver {
	case "postgres":
		p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		if err := pgrepo.EnsureSchema(ctx, p); err != nil {
			p.Close()
			return nil, err
		}
		pool = p
		st = stores{
			swipes:        pgrepo.NewSwipeRepo(pool),
			projectSwipes: pgrepo.NewProjectSwipeRepo(pool),
			users:         pgrepo.NewUserRepo(pool),
			projects:      pgrepo.NewProjectRepo(pool),
		}
	default:
		directory := memrepo.NewDirectory()
		for _, userID := range cfg.Storage.Seed.Users {
			directory.AddUser(userID)
		}
		for _, project := range cfg.Storage.Seed.Projects {
			directory.AddProject(project.ID, project.OwnerID)
		}
		st = stores{
			swipes:        memrepo.NewSwipeStore(),
			projectSwipes: memrepo.NewProjectSwipeStore(),
			users:         directory,
			projects:      directory,
		}
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	redisReady := true
	if err := redrepo.Ping(ctx, redisClient, 2*time.Second); err != nil {
		redisReady = false
		log.Warn("redis init failed, continuing in degraded mode", zap.Error(err))
	}

	var guard matchessvc.AnnounceGuard
	switch cfg.Realtime.Guard {
	case "postgres":
		guard = pgrepo.NewMatchRepo(pool)
	case "redis":
		if !redisReady {
			closeAll(pool, redisClient)
			return nil, fmt.Errorf("realtime.guard redis requires a reachable redis")
		}
		guard = redrepo.NewAnnounceRepo(redisClient, cfg.Realtime.GuardTTL)
	default:
		guard = memrepo.NewAnnounceGuard()
	}

	var windows ratesvc.WindowStore = memrepo.NewRateWindows()
	if redisReady {
		windows = redrepo.NewRateRepo(redisClient)
	}
	rateLimiter := ratesvc.NewLimiter(windows, cfg.Limits.SwipesPerMinute, cfg.Limits.SwipesPer10Seconds)

	bus := eventbus.New(cfg.Realtime.BusQueueSize, cfg.Realtime.SubscriberBuffer, log.Named("eventbus"))
	registry := connections.NewRegistry()
	detector := matchessvc.NewDetector(st.swipes, guard)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(jwtManager)
	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Swipes:        st.swipes,
		ProjectSwipes: st.projectSwipes,
		Users:         st.users,
		Projects:      st.projects,
		Detector:      detector,
		Publisher:     bus,
		RateLimiter:   rateLimiter,
		Logger:        log.Named("swipes"),
	})
	matchesService := matchessvc.NewService(matchessvc.Dependencies{
		MatchStore: st.swipes,
		Guard:      guard,
		Logger:     log.Named("matches"),
	})

	wsHandler := ws.NewHandler(authService, registry, ws.Options{
		SendBuffer:        cfg.Realtime.ConnSendBuffer,
		WriteWait:         cfg.Realtime.WriteWait,
		PongWait:          cfg.Realtime.PongWait,
		PingPeriod:        cfg.Realtime.PingPeriod,
		MaxMessageBytes:   cfg.Realtime.MaxMessageBytes,
		MessagesPerSecond: cfg.Realtime.ClientMsgPerSecond,
		MessageBurst:      cfg.Realtime.ClientMsgBurst,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
	}, log.Named("ws"))

	cleanupJob := cleanup.New(registry, cfg.Realtime.SweepInterval, log.Named("cleanup"))
	cleanupJob.AttachDropCounter(bus)

	r := chi.NewRouter()
	ApplyMiddlewares(r, log, cfg.CORS)
	RegisterRoutes(r, Dependencies{
		AuthService:  authService,
		SwipeService: swipeService,
		MatchService: matchesService,
		Registry:     registry,
		Realtime:     wsHandler,
		Logger:       log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	runCtx, cancelRun := context.WithCancel(context.Background())

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		bus:        bus,
		registry:   registry,
		pump:       delivery.NewPump(bus, registry, log.Named("delivery")),
		cleanupJob: cleanupJob,
		wsHandler:  wsHandler,
		httpRouter: r,
		runCtx:     runCtx,
		cancelRun:  cancelRun,
	}, nil
}

// Run serves HTTP and the background delivery workers until the server stops
// or one of the workers fails.
func (a *App) Run() error {
	g, gctx := errgroup.WithContext(a.runCtx)
	g.Go(func() error {
		return a.StartBackground(gctx)
	})
	g.Go(func() error {
		a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
		err := a.server.ListenAndServe()
		a.cancelRun()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	return g.Wait()
}

// StartBackground runs the delivery pump and the cleanup loop until ctx ends.
func (a *App) StartBackground(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.pump.Run(gctx); err != nil && !errors.Is(err, eventbus.ErrBusClosed) {
			return fmt.Errorf("delivery pump: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return a.cleanupJob.Loop(gctx)
	})
	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if err := a.wsHandler.Close(ctx); err != nil && shutdownErr == nil {
		shutdownErr = err
	}
	a.bus.Close()
	a.cancelRun()
	if err := closeAll(a.postgres, a.redis); err != nil && shutdownErr == nil {
		shutdownErr = err
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

func closeAll(pool *pgxpool.Pool, redisClient *goredis.Client) error {
	if pool != nil {
		pool.Close()
	}
	if redisClient != nil {
		return redisClient.Close()
	}
	return nil
}
