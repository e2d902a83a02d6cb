package main

import (
	"github.com/phuslu/log"

	"Prisme/internal/analysis"
	"Prisme/internal/calculator"
	"Prisme/internal/collector"
	"Prisme/internal/config"
	"Prisme/internal/notifier"
	"Prisme/internal/ranking"
	"Prisme/internal/recorder"
	"Prisme/internal/risk"
	"Prisme/internal/store"
)

// newAnalyzer builds the core components from validated config.
func newAnalyzer(c *config.Config) (*analysis.Analyzer, error) {
	engine, err := calculator.NewEngine(c.IndicatorOptions())
	if err != nil {
		return nil, err
	}
	classifier, err := risk.NewClassifier(c.Risk)
	if err != nil {
		return nil, err
	}
	ranker, err := ranking.NewRanker(c.RankingOptions())
	if err != nil {
		return nil, err
	}
	return analysis.New(engine, classifier, ranker, c.Analysis.Workers), nil
}

func newCollector(c *config.Config, st *store.Store) *collector.Collector {
	fetcher := collector.NewYahooFetcher(c.Proxy)
	log.Info().Str("source", fetcher.Name()).Msg("data source")
	return collector.NewCollector(fetcher, st, c.CollectorOptions())
}

// newRecorder falls back to a no-op recorder when SQLite cannot be opened.
func newRecorder(c *config.Config) recorder.Recorder {
	if c.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(c.Database.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

// newNotifier returns nil when Telegram is not configured.
func newNotifier(c *config.Config) *notifier.TelegramNotifier {
	if !c.TelegramEnabled() {
		log.Info().Msg("telegram not configured, notifications disabled")
		return nil
	}
	return notifier.NewTelegramNotifier(c.Telegram.BotToken, c.Telegram.ChatID, c.Proxy)
}
