package server

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/clickpass/internal/logging"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
	"github.com/dmitrijs2005/clickpass/internal/server/config"
	"github.com/dmitrijs2005/clickpass/internal/server/throttle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunJanitor_TicksUntilCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	done := make(chan struct{})
	go func() {
		runJanitor(ctx, 5*time.Millisecond, func(context.Context) { calls.Add(1) })
		close(done)
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()
	<-done
}

func TestRunJanitor_DisabledWaitsForCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runJanitor(ctx, 0, func(context.Context) { t.Error("must not run") })
		close(done)
	}()
	cancel()
	<-done
}

func TestNewLimiter(t *testing.T) {
	app := &App{config: &config.Config{MaxFailedAttempts: 3, FailedAttemptsWindow: time.Minute}, logger: logging.Nop()}
	l, err := app.newLimiter()
	require.NoError(t, err)
	assert.IsType(t, &throttle.MemoryLimiter{}, l)

	app.config.RedisURL = "redis://localhost:6379/0"
	l, err = app.newLimiter()
	require.NoError(t, err)
	assert.IsType(t, &throttle.RedisLimiter{}, l)
	assert.Len(t, app.closers, 1)
	app.Close()
	assert.Empty(t, app.closers)

	app.config.RedisURL = "::bad::"
	_, err = app.newLimiter()
	require.Error(t, err)
}

func TestLoadReferenceImage_Optional(t *testing.T) {
	app := &App{config: &config.Config{}, logger: logging.Nop()}
	assert.Nil(t, app.loadReferenceImage(context.Background()))

	app.config.ReferenceImagePath = "does/not/exist.png"
	assert.Nil(t, app.loadReferenceImage(context.Background()))
}

func TestNewApp_RejectsUnknownLogLevel(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()
	c.LogLevel = "chatty"

	_, err := NewApp(context.Background(), c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}

func TestNewApp_RejectsInvalidPatternSettings(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()
	c.MaxClicks = 0

	_, err := NewApp(context.Background(), c)
	require.ErrorIs(t, err, pattern.ErrInvalidLimits)
}
