package config

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"Prisme/internal/calculator"
	"Prisme/internal/collector"
	"Prisme/internal/model"
	"Prisme/internal/ranking"
	"Prisme/internal/risk"
)

// Product is one universe entry, keyed by identifier in Config.Universe.
type Product struct {
	Ticker string `yaml:"ticker"`
	Family string `yaml:"family"`
}

// Config holds all application configuration.
type Config struct {
	Data struct {
		Dir    string `yaml:"dir"`
		Period string `yaml:"period"`
	} `yaml:"data"`
	Universe   map[string]Product `yaml:"universe"`
	Indicators struct {
		PeriodsPerYear int   `yaml:"periods_per_year"`
		Annualize      *bool `yaml:"annualize"`
	} `yaml:"indicators"`
	Risk    risk.Thresholds `yaml:"risk"`
	Ranking struct {
		RiskFreeRate float64 `yaml:"risk_free_rate"`
	} `yaml:"ranking"`
	Analysis struct {
		Horizon   string `yaml:"horizon"`
		Workers   int    `yaml:"workers"`
		Recommend int    `yaml:"recommend"`
	} `yaml:"analysis"`
	ETL struct {
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"etl"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
	Proxy string `yaml:"proxy"`
}

// DefaultUniverse is the PEA-eligible selection the dashboard ships with.
func DefaultUniverse() map[string]Product {
	return map[string]Product{
		"S&P500_PEA":    {Ticker: "PE500.PA", Family: "Amundi"},
		"NASDAQ_PEA":    {Ticker: "PUST.PA", Family: "Lyxor"},
		"CAC40_ETF":     {Ticker: "C40.PA", Family: "Amundi"},
		"EMERGING_PEA":  {Ticker: "PAEEM.PA", Family: "Amundi"},
		"EUROSTOXX_ETF": {Ticker: "C50.PA", Family: "Amundi"},
	}
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PRISME_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("PRISME_PERIOD"); v != "" {
		c.Data.Period = v
	}
	if v := os.Getenv("PRISME_HORIZON"); v != "" {
		c.Analysis.Horizon = v
	}
	if v := os.Getenv("PRISME_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("PRISME_RISK_FREE_RATE"); v != "" {
		if rf, err := strconv.ParseFloat(v, 64); err == nil {
			c.Ranking.RiskFreeRate = rf
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		c.Schedule.RefreshCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) applyDefaults() {
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Data.Period == "" {
		c.Data.Period = "5y"
	}
	if len(c.Universe) == 0 {
		c.Universe = DefaultUniverse()
	}
	if c.Indicators.PeriodsPerYear == 0 {
		c.Indicators.PeriodsPerYear = calculator.DefaultPeriodsPerYear
	}
	if c.Indicators.Annualize == nil {
		annualize := true
		c.Indicators.Annualize = &annualize
	}
	if c.Risk == (risk.Thresholds{}) {
		c.Risk = risk.DefaultThresholds()
	}
	if c.Analysis.Horizon == "" {
		c.Analysis.Horizon = string(model.Horizon1Y)
	}
	if c.Analysis.Workers == 0 {
		c.Analysis.Workers = 4
	}
	if c.Analysis.Recommend == 0 {
		c.Analysis.Recommend = 3
	}
	if c.ETL.RequestsPerSecond == 0 {
		c.ETL.RequestsPerSecond = 2
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 30 18 * * 1-5"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/prisme.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks every value the analysis depends on. Telegram settings
// are optional; the notifier is disabled when they are missing.
func (c *Config) Validate() error {
	if !collector.ValidPeriod(c.Data.Period) {
		return &model.ConfigurationError{Field: "data.period", Reason: fmt.Sprintf("unsupported range %q", c.Data.Period)}
	}
	for id, p := range c.Universe {
		if p.Ticker == "" {
			return &model.ConfigurationError{Field: "universe." + id + ".ticker", Reason: "required"}
		}
	}
	if err := c.IndicatorOptions().Validate(); err != nil {
		return err
	}
	if err := c.Risk.Validate(); err != nil {
		return err
	}
	if err := c.RankingOptions().Validate(); err != nil {
		return err
	}
	if _, err := c.Horizon(); err != nil {
		return &model.ConfigurationError{Field: "analysis.horizon", Reason: err.Error()}
	}
	if c.Analysis.Workers < 1 {
		return &model.ConfigurationError{Field: "analysis.workers", Reason: "must be at least 1"}
	}
	if c.Analysis.Recommend < 1 {
		return &model.ConfigurationError{Field: "analysis.recommend", Reason: "must be at least 1"}
	}
	if c.ETL.RequestsPerSecond < 0 || math.IsNaN(c.ETL.RequestsPerSecond) {
		return &model.ConfigurationError{Field: "etl.requests_per_second", Reason: "must not be negative"}
	}
	return nil
}

// TelegramEnabled reports whether both bot token and chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Products returns the universe sorted by identifier.
func (c *Config) Products() []model.Product {
	out := make([]model.Product, 0, len(c.Universe))
	for id, p := range c.Universe {
		out = append(out, model.Product{ETF: id, Ticker: p.Ticker, Family: p.Family})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ETF < out[j].ETF })
	return out
}

// Horizon parses the configured analysis window.
func (c *Config) Horizon() (model.Horizon, error) {
	return model.ParseHorizon(c.Analysis.Horizon)
}

// IndicatorOptions maps the indicators section to engine options.
func (c *Config) IndicatorOptions() calculator.Options {
	annualize := c.Indicators.Annualize == nil || *c.Indicators.Annualize
	return calculator.Options{PeriodsPerYear: c.Indicators.PeriodsPerYear, Annualize: annualize}
}

// RankingOptions maps the ranking section to ranker options. Ranking
// annualizes with the same period count as the indicator engine.
func (c *Config) RankingOptions() ranking.Options {
	return ranking.Options{RiskFreeRate: c.Ranking.RiskFreeRate, PeriodsPerYear: c.Indicators.PeriodsPerYear}
}

// CollectorOptions maps the data and etl sections to collector options.
func (c *Config) CollectorOptions() collector.Options {
	return collector.Options{
		Period:            c.Data.Period,
		RequestsPerSecond: c.ETL.RequestsPerSecond,
		Workers:           c.Analysis.Workers,
	}
}
