package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/jsphweid/kernprep/chord"
	"github.com/jsphweid/kernprep/config"
	"github.com/jsphweid/kernprep/midi"
	"github.com/jsphweid/kernprep/model"
	"github.com/jsphweid/kernprep/pipeline"
	"github.com/spf13/cobra"
)

func init() {
	flags := inspectCmd.Flags()
	flags.String("key-strategy", "", "where explicit keys come from: scan, position or catalog")
	flags.Int("key-index", 0, "element index of the key for the position strategy")
	flags.Bool("elements", false, "print every element, not just the summary")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Inspects a single score",
	Long:  `Prints the parts and measures of a score and what preprocessing would do with it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		elements, _ := cmd.Flags().GetBool("elements")
		return Inspect(cmd.Context(), cfg, args[0], elements, cmd.OutOrStdout())
	},
}

// Inspect prints the layout of one score and its preprocessing outcome.
func Inspect(ctx context.Context, cfg *config.Config, path string, elements bool, out io.Writer) error {
	score, err := midi.LoadScore(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "title: %v\n", score.Title)
	for _, part := range score.Parts {
		fmt.Fprintf(out, "part %q: %v measures\n", part.Name, len(part.Measures))
		if !elements {
			continue
		}
		for _, m := range part.Measures {
			for i, el := range m.Elements {
				fmt.Fprintf(out, "  m%v[%v] %v\n", m.Number, i, describe(el))
			}
		}
	}

	log := cfg.Logger()
	normalizer, err := cfg.Normalizer(log)
	if err != nil {
		return err
	}
	p := &pipeline.Processor{Whitelist: cfg.Durations, Normalizer: normalizer}
	o := p.Process(ctx, path, score)
	fmt.Fprintf(out, "events: %v\n", o.NumEvents)
	fmt.Fprintf(out, "status: %v\n", o.Status)
	if o.Key.Tonic.Step != 0 {
		fmt.Fprintf(out, "key: %v (%v)\n", o.Key, o.KeySource)
	}
	if o.Status == pipeline.StatusNormalized {
		fmt.Fprintf(out, "interval: %v\n", o.Interval.Name())
	}
	if o.Err != nil {
		fmt.Fprintf(out, "error: %v\n", o.Err)
	}
	return nil
}

func describe(el model.Element) string {
	switch e := el.(type) {
	case *model.Note:
		return fmt.Sprintf("note %v %v @%v", e.Pitch, e.Length.RatString(), e.Start.RatString())
	case *model.Chord:
		keys := make([]uint8, 0, len(e.Pitches))
		for _, p := range e.Pitches {
			keys = append(keys, uint8(p.MIDI()))
		}
		return fmt.Sprintf("chord %v %v @%v", chord.CreateChordKey(keys), e.Length.RatString(), e.Start.RatString())
	case *model.Rest:
		return fmt.Sprintf("rest %v @%v", e.Length.RatString(), e.Start.RatString())
	case *model.KeySignature:
		return fmt.Sprintf("key %v (%+d)", e.Key, e.Sharps)
	case *model.TimeSignature:
		return fmt.Sprintf("meter %v/%v", e.Numerator, e.Denominator)
	case *model.Tempo:
		return fmt.Sprintf("tempo %.1f", e.BPM)
	case *model.TrackName:
		return fmt.Sprintf("name %q", e.Name)
	}
	return fmt.Sprintf("%T", el)
}
