package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bahria/bahria-go/cmd/analyze"
	"github.com/bahria/bahria-go/cmd/serve"
	"github.com/bahria/bahria-go/cmd/species"
	"github.com/bahria/bahria-go/cmd/sst"
	"github.com/bahria/bahria-go/internal/conf"
	"github.com/bahria/bahria-go/internal/logging"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bahria",
		Short:         "BAHRIA biological rest decision engine",
		Long:          "Evaluate field samples against species reference data and ocean conditions to decide whether a fishery needs a biological rest.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		rootCmd.PrintErrf("error setting up flags: %v\n", err)
	}

	subcommands := []*cobra.Command{
		analyze.Command(settings),
		serve.Command(settings),
		species.Command(settings),
		sst.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initialize(settings)
	}

	return rootCmd
}

// initialize runs after flags are parsed and before any subcommand.
func initialize(settings *conf.Settings) error {
	if err := conf.ValidateSettings(settings); err != nil {
		return err
	}

	if settings.Debug {
		logging.SetLevel(slog.LevelDebug)
	}

	return nil
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Main.Name, "name", viper.GetString("main.name"), "Node name reported in published decisions")
	rootCmd.PersistentFlags().StringVar(&settings.Species.File, "species-file", viper.GetString("species.file"), "Species catalog YAML file, built-in catalog when empty")
	rootCmd.PersistentFlags().StringVar(&settings.Ocean.Provider, "ocean", viper.GetString("ocean.provider"), "SST provider (erddap or static)")
	rootCmd.PersistentFlags().StringVar(&settings.Advisor.Provider, "advisor", viper.GetString("advisor.provider"), "Recommendation provider (none, anthropic or openai)")
	rootCmd.PersistentFlags().StringVar(&settings.Advisor.Locale, "locale", viper.GetString("advisor.locale"), "Locale of fallback recommendations (fr or en)")

	bindings := map[string]string{
		"debug":            "debug",
		"main.name":        "name",
		"species.file":     "species-file",
		"ocean.provider":   "ocean",
		"advisor.provider": "advisor",
		"advisor.locale":   "locale",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			return fmt.Errorf("error binding flag %s: %w", flag, err)
		}
	}

	return nil
}
