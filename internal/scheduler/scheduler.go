package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"

	"Prisme/internal/analysis"
	"Prisme/internal/collector"
	"Prisme/internal/model"
	"Prisme/internal/notifier"
	"Prisme/internal/recorder"
	"Prisme/internal/store"
)

// Sender delivers notifications. *notifier.TelegramNotifier implements it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Deps are the collaborators of a Scheduler. Collector and Notifier are
// optional: without a collector refreshes only re-analyse stored data,
// without a notifier nothing is sent.
type Deps struct {
	Collector *collector.Collector
	Store     *store.Store
	Analyzer  *analysis.Analyzer
	Latest    *analysis.Latest
	Notifier  Sender
	Recorder  recorder.Recorder
	Products  []model.Product
	Horizon   model.Horizon
	Recommend int
}

// Scheduler manages the refresh cron task and answers chat commands.
type Scheduler struct {
	Cron *cron.Cron
	Deps
	Ctx context.Context

	mu sync.Mutex // one refresh at a time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, deps Deps) *Scheduler {
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	if deps.Recommend < 1 {
		deps.Recommend = 3
	}
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds()),
		Deps: deps,
		Ctx:  ctx,
	}
}

// Register schedules the refresh task.
func (s *Scheduler) Register(refreshCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes the refresh task immediately (manual trigger / startup).
func (s *Scheduler) RunNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	log.Info().Msg("running refresh task")
	report, err := s.Refresh(s.Ctx, s.Collector != nil)
	if err != nil {
		log.Error().Err(err).Msg("refresh failed")
		s.trySend(fmt.Sprintf("❌ Refresh failed: %v", err))
		return
	}
	s.trySend(notifier.FormatDigest(report))
}

// Refresh optionally runs the ETL, then analyses the stored data, records
// the run and publishes the report to Latest.
func (s *Scheduler) Refresh(ctx context.Context, etl bool) (*model.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if etl && s.Collector != nil {
		res, err := s.Collector.Run(ctx, s.Products)
		if res != nil {
			if rerr := s.Recorder.RecordETL(&recorder.ETLEvent{
				Source:  s.Collector.Source(),
				Period:  s.Collector.Period(),
				Written: res.Written,
				Failed:  res.Failed,
			}); rerr != nil {
				log.Error().Err(rerr).Msg("record etl")
			}
			if len(res.Failed) > 0 {
				s.trySend(notifier.FormatETLSummary(res.Written, res.Failed))
			}
		}
		if err != nil {
			return nil, fmt.Errorf("etl: %w", err)
		}
	}

	u, err := s.Store.Load(productIDs(s.Products))
	if err != nil {
		return nil, fmt.Errorf("load data: %w", err)
	}
	report, err := s.Analyzer.Run(ctx, u, s.Horizon)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	if err := s.Recorder.RecordRun(report); err != nil {
		log.Error().Err(err).Str("run_id", report.RunID).Msg("record run")
	}
	s.Latest.Set(report, u)
	return report, nil
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Telegram appends the bot name in groups: /ranking@prisme_bot
	cmd, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]

	if cmd == "/refresh" {
		go s.refreshTask()
		return "🔄 Refresh started"
	}

	res := s.Latest.Get()
	if res == nil {
		switch cmd {
		case "/digest", "/ranking", "/profile", "/etf":
			return "No analysis available yet, try /refresh"
		}
		return notifier.FormatHelp()
	}

	switch cmd {
	case "/digest":
		return notifier.FormatDigest(res.Report)
	case "/ranking":
		return notifier.FormatRanking(res.Report)
	case "/profile":
		if len(args) == 0 {
			return "Usage: /profile &lt;defensive|balanced|dynamic&gt; [n]"
		}
		profile, err := model.ParseRiskProfile(args[0])
		if err != nil {
			return "Unknown profile, use defensive, balanced or dynamic"
		}
		n := s.Recommend
		if len(args) > 1 {
			if v, err := strconv.Atoi(args[1]); err == nil && v > 0 {
				n = v
			}
		}
		rec, err := analysis.Recommend(res.Report, profile, n)
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return notifier.FormatRecommendation(rec)
	case "/etf":
		if len(args) == 0 {
			return "Usage: /etf &lt;id&gt;"
		}
		return notifier.FormatETF(res.Report, args[0])
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}

func productIDs(products []model.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ETF
	}
	return ids
}
