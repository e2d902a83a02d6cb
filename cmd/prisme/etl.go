package main

import (
	"fmt"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"Prisme/internal/collector"
	"Prisme/internal/recorder"
	"Prisme/internal/store"
)

var etlCmd = &cobra.Command{
	Use:   "etl",
	Short: "Fetch ETF history and metadata into the data directory",
	Long:  "Downloads daily bars and listing metadata for every configured ETF, keeps the raw payloads as JSON and writes processed Parquet files.",
	RunE:  runETL,
}

func init() {
	etlCmd.Flags().String("period", "", "history range to fetch (1mo, 3mo, 6mo, ytd, 1y, 2y, 5y, 10y, max)")
}

func runETL(cmd *cobra.Command, args []string) error {
	if p, _ := cmd.Flags().GetString("period"); p != "" {
		if !collector.ValidPeriod(p) {
			return fmt.Errorf("unsupported period %q", p)
		}
		cfg.Data.Period = p
	}

	col := newCollector(cfg, store.New(cfg.Data.Dir))
	rec := newRecorder(cfg)
	defer rec.Close()

	res, err := col.Run(cmd.Context(), cfg.Products())
	if res != nil {
		if rerr := rec.RecordETL(&recorder.ETLEvent{
			Source:  col.Source(),
			Period:  col.Period(),
			Written: res.Written,
			Failed:  res.Failed,
		}); rerr != nil {
			log.Error().Err(rerr).Msg("record etl")
		}
		for etf, reason := range res.Failed {
			fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %s\n", etf, reason)
		}
		for _, etf := range res.Written {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", etf)
		}
	}
	return err
}
