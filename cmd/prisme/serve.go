package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"Prisme/internal/analysis"
	"Prisme/internal/api"
	"Prisme/internal/scheduler"
	"Prisme/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the API, refresh on schedule and answer Telegram commands",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Bool("etl-on-start", false, "fetch fresh data before the first analysis")
}

func runServe(cmd *cobra.Command, args []string) error {
	horizon, err := cfg.Horizon()
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.New(cfg.Data.Dir)
	rec := newRecorder(cfg)
	defer rec.Close()
	tn := newNotifier(cfg)
	latest := &analysis.Latest{}

	deps := scheduler.Deps{
		Collector: newCollector(cfg, st),
		Store:     st,
		Analyzer:  analyzer,
		Latest:    latest,
		Recorder:  rec,
		Products:  cfg.Products(),
		Horizon:   horizon,
		Recommend: cfg.Analysis.Recommend,
	}
	if tn != nil {
		deps.Notifier = tn
	}
	sched := scheduler.NewScheduler(ctx, deps)
	if err := sched.Register(cfg.Schedule.RefreshCron); err != nil {
		return err
	}

	etlOnStart, _ := cmd.Flags().GetBool("etl-on-start")
	if _, err := sched.Refresh(ctx, etlOnStart); err != nil {
		log.Warn().Err(err).Msg("initial analysis failed, waiting for the next refresh")
	}

	sched.Start()
	defer sched.Stop()

	srvCfg := api.DefaultServerConfig()
	srvCfg.Addr = cfg.Server.Addr
	srvCfg.Recommend = cfg.Analysis.Recommend
	srv := api.NewServer(srvCfg, latest)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		return srv.Shutdown(context.Background())
	})
	if tn != nil {
		g.Go(func() error {
			tn.StartPolling(gctx, sched.HandleCommand)
			return nil
		})
	}

	log.Info().Str("addr", cfg.Server.Addr).Str("cron", cfg.Schedule.RefreshCron).Msg("prisme is running, press Ctrl+C to stop")
	err = g.Wait()
	log.Info().Msg("prisme stopped")
	return err
}
