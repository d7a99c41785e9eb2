package cmd

import (
	"github.com/jsphweid/kernprep/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "kernprep",
	Short: "Prepares symbolic music corpora",
	Long: `Loads a corpus of scores, drops scores with durations outside the
whitelist and transposes the rest to C major or A minor.`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.String("log-level", "info", "debug, info, warn or error")
	flags.Bool("log-json", false, "log as JSON")
}

// loadConfig merges defaults, config file, env and flags, in increasing order
// of precedence.
func loadConfig(cmd *cobra.Command, set func(v *viper.Viper)) (*config.Config, error) {
	v, err := config.NewViper(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	if err := config.BindFlags(v, cmd.InheritedFlags()); err != nil {
		return nil, err
	}
	if set != nil {
		set(v)
	}
	return config.Load(v)
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
