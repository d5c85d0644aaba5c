package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/client/client"
	"github.com/dmitrijs2005/clickpass/internal/client/config"
	"github.com/dmitrijs2005/clickpass/internal/client/flows"
	"github.com/dmitrijs2005/clickpass/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clickpass/internal/client/session"
	"github.com/dmitrijs2005/clickpass/internal/filex"
	"github.com/dmitrijs2005/clickpass/internal/logging"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config    *config.Config
	client    client.Client
	binding   *session.Binding
	log       logging.Logger
	settings  flows.Settings
	rendered  pattern.Dimensions
	intrinsic pattern.Dimensions

	stateDir   string
	httpClient *http.Client

	reader *bufio.Reader
	out    io.Writer
	hidden bool

	modeMu sync.RWMutex
	mode   Mode

	closers []func() error
}

// NewApp opens the local store under cfg.StateDir, connects to the backend
// and starts the initial session refresh.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	dir, err := filex.EnsureStateDir(cfg.StateDir)
	if err != nil {
		return nil, err
	}

	logFile, err := os.OpenFile(filepath.Join(dir, "client.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	l := logging.NewJSONLogger(logFile, slog.LevelInfo)

	db, err := client.InitDatabase(ctx, filepath.Join(dir, "client.db"))
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}

	var binding *session.Binding
	apiClient, err := client.NewGRPCClient(cfg.ServerEndpointAddr,
		client.WithRequestTimeout(cfg.RequestTimeout),
		client.WithTokenSource(func() string {
			if binding == nil {
				return ""
			}
			return binding.Token()
		}),
	)
	if err != nil {
		_ = db.Close()
		_ = logFile.Close()
		return nil, err
	}
	binding = session.NewBinding(apiClient, metadata.NewSQLiteRepository(db), l)

	a := newApp(cfg, apiClient, binding, os.Stdin, os.Stdout, l)
	a.hidden = isTerminal(int(os.Stdin.Fd()))
	a.stateDir = dir
	a.closers = []func() error{apiClient.Close, db.Close, logFile.Close}

	binding.Start(ctx)
	return a, nil
}

func newApp(cfg *config.Config, c client.Client, b *session.Binding, in io.Reader, out io.Writer, l logging.Logger) *App {
	return &App{
		config:  cfg,
		client:  c,
		binding: b,
		log:     l,
		settings: flows.Settings{
			Tolerance:    cfg.Tolerance,
			MinClicks:    cfg.MinClicks,
			MaxClicks:    cfg.MaxClicks,
			MinNewClicks: cfg.MinNewClicks,
		},
		rendered:   pattern.Dimensions{Width: cfg.RenderedWidth, Height: cfg.RenderedHeight},
		intrinsic:  pattern.Dimensions{Width: cfg.IntrinsicWidth, Height: cfg.IntrinsicHeight},
		stateDir:   cfg.StateDir,
		httpClient: &http.Client{Timeout: imageFetchTimeout},
		reader:     bufio.NewReader(in),
		out:        out,
	}
}

// Run starts the connectivity watcher and blocks in the REPL until the
// user exits or stdin ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	fmt.Fprintln(a.out, "Welcome to clickpass (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader, a.out)
}

// Close waits for the session refresh and releases local resources.
func (a *App) Close() error {
	a.binding.Close()
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (a *App) isLoggedIn() bool {
	return a.binding.IsAuthenticated()
}

func (a *App) Mode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()
	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.client.Ping(ctx); err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

// StartOnlineStatusWatcher pings the backend every interval until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// status is shown in the prompt.
func (a *App) status() string {
	s := ""
	if u := a.binding.CurrentUser(); u != nil {
		s = u.Username + " "
	}
	s += string(a.Mode())
	if s == "" {
		return ""
	}
	return fmt.Sprintf("(%s)", s)
}
