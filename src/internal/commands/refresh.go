package commands

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/maksimkurb/keen-threatfeed/src/internal/config"
	"github.com/maksimkurb/keen-threatfeed/src/internal/log"
	"github.com/maksimkurb/keen-threatfeed/src/internal/sink"
)

func CreateRefreshCommand() *RefreshCommand {
	rc := &RefreshCommand{
		fs: flag.NewFlagSet("refresh", flag.ExitOnError),
	}
	rc.fs.StringVar(&rc.period, "period", "", "Override the update period in seconds (0 disables updating)")
	return rc
}

type RefreshCommand struct {
	fs     *flag.FlagSet
	ctx    *AppContext
	cfg    *config.Config
	period string
}

func (r *RefreshCommand) Name() string {
	return r.fs.Name()
}

func (r *RefreshCommand) Init(args []string, ctx *AppContext) error {
	r.ctx = ctx

	if err := r.fs.Parse(args); err != nil {
		return err
	}

	if cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath); err != nil {
		return err
	} else {
		r.cfg = cfg
	}

	return nil
}

// Run performs one refresh cycle. Refresh outcomes are reported as messages,
// never as errors.
func (r *RefreshCommand) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newFeedApp(r.cfg, sink.NewWriter(r.ctx.stdout()))
	if err != nil {
		return err
	}
	defer app.Close()

	var period any = r.cfg.Feed.UpdatePeriod
	if r.period != "" {
		period = r.period
	}

	outcome := app.coordinator.Refresh(ctx, period)
	log.Debugf("Refresh finished with outcome %s", outcome)
	return nil
}
