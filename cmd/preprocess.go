package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jsphweid/kernprep/config"
	"github.com/jsphweid/kernprep/corpus"
	"github.com/jsphweid/kernprep/logger"
	"github.com/jsphweid/kernprep/pipeline"
	"github.com/jsphweid/kernprep/util"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var ErrNoScores = errors.New("no scores loaded")

func init() {
	flags := preprocessCmd.Flags()
	flags.String("dataset", "", "dataset root, instead of the positional argument")
	flags.StringSlice("durations", nil, "allowed quarter lengths, e.g. 0.25,0.5,3/2")
	flags.String("target-major", "", "tonic major pieces are moved to")
	flags.String("target-minor", "", "tonic minor pieces are moved to")
	flags.Int("workers", 0, "scores processed in parallel")
	flags.StringSlice("extensions", nil, "file extensions to load")
	flags.Int("max-files", 0, "stop after this many files, 0 for all")
	flags.String("key-strategy", "", "where explicit keys come from: scan, position or catalog")
	flags.Int("key-index", 0, "element index of the key for the position strategy")
	flags.String("catalog-table", "", "DynamoDB table for the catalog strategy")
	flags.String("catalog-region", "", "AWS region of the catalog")
	flags.String("catalog-endpoint", "", "DynamoDB endpoint override, e.g. http://localhost:8000")
	rootCmd.AddCommand(preprocessCmd)
}

var preprocessCmd = &cobra.Command{
	Use:   "preprocess [dataset]",
	Short: "Filters and transposes a corpus",
	Long:  `Filters a corpus by duration and transposes every score to C major or A minor.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, func(v *viper.Viper) {
			if len(args) == 1 {
				v.Set("dataset", args[0])
			}
		})
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		_, err = Preprocess(ctx, cfg, cfg.Logger(), cmd.OutOrStdout(), nil)
		return err
	},
}

// Preprocess runs the whole corpus. onOutcome may be nil.
func Preprocess(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer, onOutcome func(pipeline.Outcome)) (pipeline.Report, error) {
	if cfg.Dataset == "" {
		return pipeline.Report{}, errors.New("a dataset directory is required")
	}
	loader := corpus.NewLoader(cfg.Dataset, cfg.Extensions, cfg.MaxFiles)

	log.Info("Loading songs...", "dataset", cfg.Dataset)
	paths, err := loader.GatherPaths()
	if err != nil {
		return pipeline.Report{}, err
	}
	log.Info("found files", "count", len(paths))

	normalizer, err := cfg.Normalizer(log)
	if err != nil {
		return pipeline.Report{}, err
	}
	runner := &pipeline.Runner{
		Processor: &pipeline.Processor{
			Whitelist:  cfg.Durations,
			Normalizer: normalizer,
		},
		Workers:       cfg.Workers,
		Log:           log,
		OnOutcome:     onOutcome,
		ProgressEvery: 100,
	}
	report, err := runner.Run(ctx, loader.Load(ctx, paths))
	printReport(out, cfg, report)
	if err != nil {
		return report, err
	}
	if report.Loaded() == 0 {
		return report, errors.Wrapf(ErrNoScores, "from %s", cfg.Dataset)
	}
	return report, nil
}

func printReport(w io.Writer, cfg *config.Config, report pipeline.Report) {
	fmt.Fprintf(w, "run: %v\n", report.RunID)
	fmt.Fprintf(w, "Loaded %v songs from %v.\n", report.Loaded(), cfg.Dataset)
	fmt.Fprintf(w, "whitelist: %v\n", cfg.Durations)
	for _, status := range pipeline.Statuses {
		fmt.Fprintf(w, "%-22s %v\n", status+":", report.ByStatus[status])
	}
	for _, key := range util.SortedKeys(report.ByKey) {
		fmt.Fprintf(w, "  from %-10s %v\n", key, report.ByKey[key])
	}
	if report.Cancelled {
		fmt.Fprintf(w, "cancelled after %v of the corpus\n", report.Total)
	}
}
