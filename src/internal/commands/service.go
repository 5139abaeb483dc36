package commands

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/maksimkurb/keen-threatfeed/src/internal/api"
	"github.com/maksimkurb/keen-threatfeed/src/internal/config"
	"github.com/maksimkurb/keen-threatfeed/src/internal/feed"
	"github.com/maksimkurb/keen-threatfeed/src/internal/log"
	"github.com/maksimkurb/keen-threatfeed/src/internal/metrics"
	"github.com/maksimkurb/keen-threatfeed/src/internal/sink"
)

const (
	messageHistorySize = 50
	messageQueueSize   = 16
	shutdownTimeout    = 10 * time.Second
)

func CreateServiceCommand() *ServiceCommand {
	sc := &ServiceCommand{
		fs: flag.NewFlagSet("service", flag.ExitOnError),
	}
	sc.fs.IntVar(&sc.CheckInterval, "check-interval", 0, "Seconds between refresh attempts (default: service.check_interval_seconds)")
	return sc
}

// ServiceCommand invokes a refresh cycle on a fixed interval. The update
// period still decides whether a cycle downloads anything.
type ServiceCommand struct {
	fs            *flag.FlagSet
	cfg           *config.Config
	ctx           *AppContext
	CheckInterval int
}

func (s *ServiceCommand) Name() string {
	return s.fs.Name()
}

func (s *ServiceCommand) Init(args []string, ctx *AppContext) error {
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

func (s *ServiceCommand) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.run(ctx)
}

func (s *ServiceCommand) run(ctx context.Context) error {
	log.Infof("Starting keen-threatfeed service...")

	history := sink.NewHistory(messageHistorySize)
	queue := sink.NewQueue(messageQueueSize)

	var drained sync.WaitGroup
	drained.Add(1)
	go func() {
		defer drained.Done()
		for message := range queue.Messages() {
			log.Infof("%s", message)
		}
	}()
	defer func() {
		queue.Close()
		drained.Wait()
		if dropped := queue.Dropped(); dropped > 0 {
			log.Warnf("%d messages were dropped from the output queue", dropped)
		}
	}()

	app, err := newFeedApp(s.cfg, sink.Tee(history, queue))
	if err != nil {
		return err
	}
	defer app.Close()

	refresher := feed.NewSerialized(app.coordinator)

	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	refresher.OnResult(metrics.NewRecorder(reg).Observe)

	if addr := s.cfg.Service.ListenAddr; addr != "" {
		info := api.FeedInfo{Name: s.cfg.Feed.Name, URL: s.cfg.Feed.URL, OutputFile: app.remote.OutputPath()}
		handler := api.NewHandler(refresher, history, info, s.cfg.Feed.UpdatePeriod)
		server := api.NewServer(addr, api.NewRouter(handler, metrics.HTTPHandler(reg)))

		ln, err := server.Listen()
		if err != nil {
			return err
		}
		go func() {
			if err := server.Serve(ln); err != nil {
				log.Errorf("API server stopped: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Stop(shutdownCtx); err != nil {
				log.Warnf("Failed to stop API server: %v", err)
			}
		}()
	} else {
		log.Infof("HTTP API is disabled")
	}

	interval := s.interval()
	log.Infof("Refreshing every %v", interval)

	loop := NewRestartableRunner(RunnerConfig{Name: "refresh loop"}, func(ctx context.Context) error {
		return refreshLoop(ctx, refresher, s.cfg.Feed.UpdatePeriod, interval)
	})
	return loop.Run(ctx)
}

func (s *ServiceCommand) interval() time.Duration {
	if s.CheckInterval > 0 {
		return time.Duration(s.CheckInterval) * time.Second
	}
	if interval := s.cfg.Service.CheckInterval(); interval > 0 {
		return interval
	}
	return config.DefaultCheckIntervalSeconds * time.Second
}

type refresher interface {
	Refresh(ctx context.Context, periodInput any) feed.Result
}

// refreshLoop refreshes immediately and then on every tick until ctx is done.
func refreshLoop(ctx context.Context, r refresher, period any, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		r.Refresh(ctx, period)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
