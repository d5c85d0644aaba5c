// Package server wires the clickpass backend together: storage, services,
// the gRPC API, the HTTP endpoint and the session janitor.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/cryptox"
	"github.com/dmitrijs2005/clickpass/internal/logging"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
	"github.com/dmitrijs2005/clickpass/internal/server/config"
	gs "github.com/dmitrijs2005/clickpass/internal/server/grpc"
	"github.com/dmitrijs2005/clickpass/internal/server/httpapi"
	"github.com/dmitrijs2005/clickpass/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/clickpass/internal/server/services"
	"github.com/dmitrijs2005/clickpass/internal/server/storage"
	"github.com/dmitrijs2005/clickpass/internal/server/throttle"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	sessions *services.SessionService
	users    *services.UserService
	limiter  throttle.Limiter
	image    *httpapi.ReferenceImage
	closers  []func() error
}

// NewApp connects to the database, applies migrations and builds the
// services. Close releases what it opened.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(os.Stdout, level)
	app := &App{config: c, logger: logger}

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db
	app.closers = append(app.closers, db.Close)

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	sealer, err := cryptox.NewSealer([]byte(c.SecretKey))
	if err != nil {
		app.Close()
		return nil, err
	}

	limiter, err := app.newLimiter()
	if err != nil {
		app.Close()
		return nil, err
	}
	app.limiter = limiter

	app.image = app.loadReferenceImage(ctx)

	settings := services.Settings{
		Tolerance:    c.Tolerance,
		MinClicks:    c.MinClicks,
		MaxClicks:    c.MaxClicks,
		MinNewClicks: c.MinNewClicks,
		Bounds:       pattern.Dimensions{Width: c.ImageWidth, Height: c.ImageHeight},
	}

	var images services.ImageSigner
	if c.S3Bucket != "" {
		images = storage.NewS3(storage.Options{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			BaseEndpoint: c.S3BaseEndpoint,
		})
	}

	app.sessions = services.NewSessionService(db, repos, []byte(c.SecretKey), c.SessionValidityDuration, logger)
	app.users = services.NewUserService(db, repos, app.sessions, sealer, limiter, images, settings, logger)

	return app, nil
}

func (app *App) newLimiter() (throttle.Limiter, error) {
	policy := throttle.Policy{Max: app.config.MaxFailedAttempts, Window: app.config.FailedAttemptsWindow}
	if app.config.RedisURL == "" {
		return throttle.NewMemoryLimiter(policy), nil
	}
	rdb, err := throttle.NewRedisClient(app.config.RedisURL)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, rdb.Close)
	return throttle.NewRedisLimiter(rdb, policy), nil
}

// loadReferenceImage is best effort: without the file the API still works,
// only the image route answers 404.
func (app *App) loadReferenceImage(ctx context.Context) *httpapi.ReferenceImage {
	if app.config.ReferenceImagePath == "" {
		return nil
	}
	img, err := httpapi.LoadReferenceImage(app.config.ReferenceImagePath)
	if err != nil {
		app.logger.Warn(ctx, "reference image not served", "error", err)
		return nil
	}
	if !img.Matches(app.config.ImageWidth, app.config.ImageHeight) {
		app.logger.Warn(ctx, "reference image size differs from the configured canonical size; stored credentials will not match",
			"image_width", img.Width, "image_height", img.Height,
			"configured_width", app.config.ImageWidth, "configured_height", app.config.ImageHeight)
	}
	return img
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a signal arrives or one of the components fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.users, app.sessions).Run(ctx)
	})
	g.Go(func() error {
		router := httpapi.NewRouter(app.image, app.config.AllowedOrigins, app.logger)
		return httpapi.NewServer(app.config.EndpointAddrHTTP, router, app.logger).Run(ctx)
	})
	g.Go(func() error {
		runJanitor(ctx, app.config.SessionPurgeInterval, app.purge)
		return nil
	})

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}

type sweeper interface{ Sweep() }

func (app *App) purge(ctx context.Context) {
	n, err := app.sessions.Purge(ctx)
	if err != nil {
		app.logger.Error(ctx, "session purge failed", "error", err)
	} else if n > 0 {
		app.logger.Info(ctx, "expired sessions purged", "count", n)
	}
	if s, ok := app.limiter.(sweeper); ok {
		s.Sweep()
	}
}

// runJanitor calls fn every interval until ctx is done.
func runJanitor(ctx context.Context, interval time.Duration, fn func(context.Context)) {
	if interval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Error(context.Background(), "close failed", "error", err)
		}
	}
	app.closers = nil
}
