package commands

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yyt520/ahooks-code-analysis/internal/eventstore"
	"github.com/yyt520/ahooks-code-analysis/internal/logfields"
	"github.com/yyt520/ahooks-code-analysis/internal/metrics"
	"github.com/yyt520/ahooks-code-analysis/internal/notify"
	"github.com/yyt520/ahooks-code-analysis/internal/server"
	"github.com/yyt520/ahooks-code-analysis/internal/watch"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr          string        `short:"a" default:":8080" help:"Listen address" env:"SITECFG_ADDR"`
	MaxConns      int           `name:"max-conns" default:"256" help:"Maximum concurrent connections (0 for unlimited)"`
	Docs          string        `short:"d" help:"Docs directory to check periodically (optional)"`
	CheckInterval time.Duration `name:"check-interval" default:"5m" help:"Interval between docs checks"`
	NoWatch       bool          `name:"no-watch" help:"Do not reload the manifest when its file changes"`
	History       string        `help:"SQLite file recording manifest events (':memory:' keeps them in memory; empty disables)" env:"SITECFG_HISTORY"`
	NATSURL       string        `name:"nats-url" help:"Publish manifest events to this NATS server (optional)" env:"SITECFG_NATS_URL"`
	NATSSubject   string        `name:"nats-subject" default:"sitecfg.events" help:"Subject prefix for published events"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadManifest()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(reg)
	opts := []server.Option{
		server.WithLogger(g.Logger),
		server.WithRecorder(recorder),
		server.WithMetricsHandler(recorder.Handler()),
		server.WithMaxConnections(s.MaxConns),
	}
	if root.Config != "" {
		opts = append(opts, server.WithSource(root.Config))
	}

	if s.History != "" {
		store, err := eventstore.NewSQLiteStore(s.History)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		opts = append(opts, server.WithEventStore(store))
	}

	if s.NATSURL != "" {
		notifier, err := notify.Connect(s.NATSURL, s.NATSSubject)
		if err != nil {
			return err
		}
		defer func() { _ = notifier.Close() }()
		opts = append(opts, server.WithNotifier(notifier))
	}

	srv := server.New(opts...)
	srv.ApplyReload(cfg, nil)

	ctx, cancel := g.runContext()
	defer cancel()

	if root.Config != "" && !s.NoWatch {
		watcher, err := watch.New(root.Config, srv.ApplyReload, watch.WithRecorder(recorder))
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			_ = watcher.Stop()
			return err
		}
		defer func() {
			if err := watcher.Stop(); err != nil {
				slog.Warn("Failed to stop manifest watcher", logfields.Error(err))
			}
		}()
	}

	if s.Docs != "" {
		checker, err := server.NewCheckScheduler(srv, s.Docs)
		if err != nil {
			return err
		}
		if err := checker.Start(ctx, s.CheckInterval); err != nil {
			return err
		}
		defer func() {
			if err := checker.Stop(); err != nil {
				slog.Warn("Failed to stop docs check scheduler", logfields.Error(err))
			}
		}()
	}

	return srv.ListenAndServe(ctx, s.Addr)
}
