package commands

import (
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/maksimkurb/keen-threatfeed/src/internal/config"
	"github.com/maksimkurb/keen-threatfeed/src/internal/feed"
	"github.com/maksimkurb/keen-threatfeed/src/internal/sink"
)

func CreateStatusCommand() *StatusCommand {
	return &StatusCommand{
		fs: flag.NewFlagSet("status", flag.ExitOnError),
	}
}

type StatusCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config
	now func() time.Time
}

func (s *StatusCommand) Name() string {
	return s.fs.Name()
}

func (s *StatusCommand) Init(args []string, ctx *AppContext) error {
	s.ctx = ctx

	if err := s.fs.Parse(args); err != nil {
		return err
	}

	if cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath); err != nil {
		return err
	} else {
		s.cfg = cfg
	}

	return nil
}

func (s *StatusCommand) Run() error {
	app, err := newFeedApp(s.cfg, sink.Log{})
	if err != nil {
		return err
	}
	defer app.Close()

	now := time.Now
	if s.now != nil {
		now = s.now
	}

	st := app.coordinator.State()

	w := tabwriter.NewWriter(s.ctx.stdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Feed:\t%s\n", s.cfg.Feed.Name)
	fmt.Fprintf(w, "URL:\t%s\n", s.cfg.Feed.URL)
	fmt.Fprintf(w, "Output file:\t%s\n", app.remote.OutputPath())
	fmt.Fprintf(w, "ETag:\t%s\n", valueOr(st.Token, st.HasToken, "(none)"))
	if st.HasLastUpdate {
		fmt.Fprintf(w, "Last update:\t%s\n", st.LastUpdate.Local().Format(time.RFC3339))
	} else {
		fmt.Fprintf(w, "Last update:\tnever\n")
	}
	fmt.Fprintf(w, "Next update:\t%s\n", nextUpdate(st, s.cfg.Feed.UpdatePeriod, now()))
	return w.Flush()
}

func nextUpdate(st feed.PersistedState, periodInput any, now time.Time) string {
	period, ok := feed.ParsePeriod(periodInput)
	if !ok {
		return "disabled"
	}
	next := st.NextEligible(period)
	if next.Before(now) {
		return "due now"
	}
	return next.Local().Format(time.RFC3339)
}

func valueOr(value string, ok bool, fallback string) string {
	if !ok {
		return fallback
	}
	return value
}
