package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/liamashdown/holderscope/internal/holders"
	"github.com/liamashdown/holderscope/internal/market"
	"github.com/liamashdown/holderscope/internal/processor"
	"github.com/liamashdown/holderscope/internal/publish"
	"github.com/liamashdown/holderscope/internal/report"
)

//nolint:gochecknoglobals // Cobra boilerplate
var analyzeCmd = &cobra.Command{
	Use:   "analyze <event-url-or-slug>",
	Short: "Analyse the top holders of a market",
	Long: `Fetch the top holders of each side of a binary market and enrich them
with positions, trading activity and all-time P&L.

Events with several markets need --market, either the 1-based index shown by
the markets command or a condition id.

Examples:
  # Single-market event, table output
  holderscope analyze https://polymarket.com/event/will-it-rain-tomorrow

  # Second market of an event, NO side only, four workers
  holderscope analyze fed-decision-in-december --market 2 --side no --workers 4

  # CSV files per side
  holderscope analyze fed-decision-in-december --market 1 --out ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().Int("top", 0, "Holders per side (default TOP_HOLDERS)")
	analyzeCmd.Flags().Int("workers", 0, "Holders enriched concurrently (default ENRICH_WORKERS)")
	analyzeCmd.Flags().Duration("delay", -1, "Minimum delay between holder starts (default HOLDER_DELAY)")
	analyzeCmd.Flags().String("market", "", "Market index or condition id")
	analyzeCmd.Flags().String("side", "both", "Side to analyse: yes, no or both")
	analyzeCmd.Flags().String("format", string(report.FormatTable), "Output format: table, csv or json")
	analyzeCmd.Flags().String("out", "", "Directory to write one CSV file per side")
	analyzeCmd.Flags().Bool("no-publish", false, "Skip publishing even when PUBLISH_MODE is set")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	top, _ := flags.GetInt("top")
	workers, _ := flags.GetInt("workers")
	delay, _ := flags.GetDuration("delay")
	selector, _ := flags.GetString("market")
	sideFlag, _ := flags.GetString("side")
	formatFlag, _ := flags.GetString("format")
	outDir, _ := flags.GetString("out")
	noPublish, _ := flags.GetBool("no-publish")

	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	sides, err := parseSideFlag(sideFlag)
	if err != nil {
		return err
	}
	if top < 0 || top > 100 {
		return fmt.Errorf("--top must be between 1 and 100, got %d", top)
	}

	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	event, err := a.resolver.Resolve(ctx, args[0])
	if err != nil {
		return err
	}
	m, err := event.Select(selector)
	if err != nil {
		if errors.Is(err, market.ErrMarketNotSelected) {
			printMarkets(os.Stderr, event)
		}
		return err
	}

	opts := a.processor.DefaultOptions()
	if workers > 0 {
		opts.Workers = workers
	}
	if delay >= 0 {
		opts.Delay = delay
	}

	analysis, err := a.processor.AnalyzeMarket(ctx, event, m, processor.Request{
		Top:     top,
		Sides:   sides,
		Options: opts,
	})
	if err != nil {
		return err
	}

	r := report.Build(analysis)
	if outDir != "" {
		if err := writeCSVFiles(outDir, r, a.log); err != nil {
			return err
		}
	} else if err := report.Render(os.Stdout, r, format); err != nil {
		return err
	}

	if !noPublish {
		publishReport(a, r)
	}
	return nil
}

func parseSideFlag(v string) ([]holders.Side, error) {
	if v == "" || strings.EqualFold(v, "both") {
		return holders.Sides, nil
	}
	side, err := holders.ParseSide(v)
	if err != nil {
		return nil, err
	}
	return []holders.Side{side}, nil
}

func writeCSVFiles(dir string, r *report.Report, log *logrus.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	for _, s := range r.Sides {
		path := filepath.Join(dir, csvFileName(r, s.Side))
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		err = report.WriteCSV(f, s.Holders)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}

		log.WithFields(logrus.Fields{
			"side":    s.Side,
			"holders": len(s.Holders),
			"path":    path,
		}).Info("Wrote holder CSV")
	}
	return nil
}

func csvFileName(r *report.Report, side holders.Side) string {
	id := strings.TrimPrefix(r.ConditionID, "0x")
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("%s_%s_%s_%s.csv",
		r.EventSlug, id, strings.ToLower(string(side)), r.GeneratedAt.Format("20060102T150405"))
}

// publishReport delivers the report to the configured senders. Failures are
// logged and never fail the command.
func publishReport(a *app, r *report.Report) {
	sender, err := publish.FromConfig(a.cfg, a.log)
	if err != nil {
		a.log.WithError(err).Warn("Publishing disabled")
		return
	}
	if sender == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := sender.Send(ctx, publish.NewPayload(r)); err != nil {
		a.log.WithError(err).WithField("run_id", r.RunID).Warn("Failed to publish report")
	}
}
