package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"Prisme/internal/analysis"
	"Prisme/internal/model"
	"Prisme/internal/report"
	"Prisme/internal/store"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyse the stored data and print a report",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("horizon", "", "analysis window (1m, 3m, 6m, 1y, 5y, max)")
	analyzeCmd.Flags().Bool("render", false, "render the markdown report for the terminal")
	analyzeCmd.Flags().Bool("json", false, "print the report as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if h, _ := cmd.Flags().GetString("horizon"); h != "" {
		cfg.Analysis.Horizon = h
	}
	horizon, err := cfg.Horizon()
	if err != nil {
		return err
	}

	analyzer, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}
	u, err := store.New(cfg.Data.Dir).Load(nil)
	if err != nil {
		return fmt.Errorf("load data (run `prisme etl` first?): %w", err)
	}

	start := time.Now()
	rep, err := analyzer.Run(cmd.Context(), u, horizon)
	if err != nil {
		return err
	}
	rec := newRecorder(cfg)
	defer rec.Close()
	if err := rec.RecordRun(rep); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	var recs []*model.Recommendation
	for _, p := range model.Profiles {
		r, err := analysis.Recommend(rep, p, cfg.Analysis.Recommend)
		if err != nil {
			return err
		}
		recs = append(recs, r)
	}
	md, err := report.Markdown(rep, recs)
	if err != nil {
		return err
	}
	if render, _ := cmd.Flags().GetBool("render"); render {
		if md, err = report.Render(md, report.StyleDark); err != nil {
			return err
		}
	}
	fmt.Fprint(out, md)
	fmt.Fprintf(cmd.ErrOrStderr(), "analysed %d ETFs in %s\n", len(rep.Snapshots), time.Since(start).Round(time.Millisecond))
	return nil
}
