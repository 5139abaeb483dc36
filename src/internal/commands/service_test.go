package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maksimkurb/keen-threatfeed/src/internal/feed"
)

type countingRefresher struct {
	calls  atomic.Int32
	cancel context.CancelFunc
	stopAt int32
}

func (c *countingRefresher) Refresh(ctx context.Context, periodInput any) feed.Result {
	if c.calls.Add(1) == c.stopAt {
		c.cancel()
	}
	return feed.Result{Outcome: feed.OutcomeUpToDate}
}

func TestRefreshLoop_RefreshesImmediatelyAndOnTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &countingRefresher{cancel: cancel, stopAt: 3}

	done := make(chan error, 1)
	go func() { done <- refreshLoop(ctx, r, 3600, 10*time.Millisecond) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("refresh loop did not stop")
	}
	assert.Equal(t, int32(3), r.calls.Load())
}

func TestRestartableRunner_RestartsAfterFailure(t *testing.T) {
	quietLogs(t)
	var attempts atomic.Int32
	runner := NewRestartableRunner(RunnerConfig{Name: "test", RestartBackoff: time.Millisecond}, func(ctx context.Context) error {
		switch attempts.Add(1) {
		case 1:
			return errors.New("transient")
		case 2:
			panic("boom")
		default:
			return nil
		}
	})

	require.NoError(t, runner.Run(context.Background()))
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, 2, runner.RestartCount())
	assert.NoError(t, runner.LastError())
}

func TestRestartableRunner_GivesUp(t *testing.T) {
	quietLogs(t)
	runner := NewRestartableRunner(RunnerConfig{Name: "test", MaxRestarts: 2, RestartBackoff: time.Millisecond}, func(ctx context.Context) error {
		return errors.New("always failing")
	})

	err := runner.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max restarts")
	assert.Equal(t, 2, runner.RestartCount())
}

func TestRestartableRunner_StopsOnCancel(t *testing.T) {
	quietLogs(t)
	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRestartableRunner(RunnerConfig{Name: "test"}, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})

	assert.NoError(t, runner.Run(ctx))
	assert.Zero(t, runner.RestartCount())
}

func TestServiceCommand_RefreshesUntilCancelled(t *testing.T) {
	quietLogs(t)
	srv := newTestFeed(t)
	configPath := writeTestConfig(t, srv.URL, "\n[service]\nlisten_addr = \"127.0.0.1:0\"\n")

	cmd := CreateServiceCommand()
	require.NoError(t, cmd.Init([]string{"-check-interval", "3600"}, &AppContext{ConfigPath: configPath}))
	assert.Equal(t, time.Hour, cmd.interval())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.run(ctx) }()

	output := filepath.Join(filepath.Dir(configPath), "lists", "malicious_ips.txt")
	require.Eventually(t, func() bool {
		_, err := os.Stat(output + ".md5")
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("service did not stop")
	}
	assert.Equal(t, int32(1), srv.downloads.Load())
}
