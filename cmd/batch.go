package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/claim-router/internal/fetcher"
	"github.com/sells-group/claim-router/internal/model"
	"github.com/sells-group/claim-router/internal/monitoring"
	"github.com/sells-group/claim-router/internal/pipeline"
)

var (
	batchFile        string
	batchOutput      string
	batchConcurrency int
	batchSave        bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Route a file of claims (CSV, XLSX, JSON) and write JSON lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if batchConcurrency > 0 {
			cfg.Batch.MaxConcurrentClaims = batchConcurrency
		}

		env, err := initEnv(ctx, cfg, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		claims, err := fetcher.ReadClaims(ctx, batchFile)
		if err != nil {
			return eris.Wrap(err, "batch: read claims")
		}

		out := cmd.OutOrStdout()
		if batchOutput != "" {
			f, err := os.Create(batchOutput)
			if err != nil {
				return eris.Wrap(err, "batch: create output")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}

		return processBatch(ctx, env.Pipeline, claims, pipeline.BatchOptions{
			Concurrency: cfg.Batch.MaxConcurrentClaims,
			Save:        batchSave,
		}, out, cmd.ErrOrStderr())
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "claims file (.csv, .xlsx, .json, .jsonl)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "write JSON lines here instead of stdout")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max claims in flight (default from config)")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "save decisions to the configured store")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

// processBatch routes claims and writes one JSON line per claim in input
// order, then a summary to summaryOut. Failed claims do not fail the batch.
func processBatch(ctx context.Context, p *pipeline.Pipeline, claims []model.ClaimInput, opts pipeline.BatchOptions, out, summaryOut io.Writer) error {
	if len(claims) == 0 {
		zap.L().Info("no claims found")
		return nil
	}

	zap.L().Info("processing batch",
		zap.Int("claims", len(claims)),
		zap.Int("concurrency", opts.Concurrency),
	)

	results, err := p.RunBatch(ctx, claims, opts)
	if err != nil {
		return eris.Wrap(err, "batch: run")
	}

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
		if err := enc.Encode(r); err != nil {
			return eris.Wrap(err, "batch: write result")
		}
	}

	snap := monitoring.Summarize(pipeline.Decisions(results))
	zap.L().Info("batch complete",
		zap.Int("succeeded", len(results)-failed),
		zap.Int("failed", failed),
		zap.Int("fraud", snap.FraudCount),
	)
	writeSummary(summaryOut, snap, failed)
	return nil
}

func writeSummary(w io.Writer, snap *monitoring.Snapshot, failed int) {
	fmt.Fprintf(w, "Routed %d claims (%d failed)\n", snap.Total, failed)
	fmt.Fprintf(w, "Potential fraud: %d (%.1f%%)\n", snap.FraudCount, snap.FraudRate*100)
	fmt.Fprintf(w, "Average risk score: %.2f\n", snap.AvgRiskScore)
	fmt.Fprintf(w, "Classifier applied: %d of %d suggestions\n", snap.ClassifierApplied, snap.ClassifierSuggested)
	fmt.Fprintln(w, "By team:")
	for _, team := range sortedKeys(snap.ByTeam) {
		fmt.Fprintf(w, "  %-36s %d\n", team, snap.ByTeam[team])
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})
	return keys
}
