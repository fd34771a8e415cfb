package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/treetranslate/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "treetranslate",
		Short: "Batch translator for trees of structured text files",
		Long: `treetranslate translates every matching file below an input directory
with a generative AI model and writes the results into a mirrored output
directory. Tags and attributes are preserved; only text content is translated.

Files that cannot be translated are copied unchanged, so the output tree
is always complete.

Examples:
  treetranslate                                  # ./input -> ./output, .xml files
  treetranslate -i docs -o docs-de -l German     # translate docs/ to German
  treetranslate --ext .html --delay 2s           # other files, shorter pause
  treetranslate history                          # show previous runs`,
		Args:         cobra.NoArgs,
		Version:      internal.Version,
		SilenceUsage: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

// CreateHistoryCommand creates the history subcommand
func CreateHistoryCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show previous translation runs",
		Long: `history lists recorded runs, newest first. With a run id it shows the
outcome of every file of that run.`,
		Args: cobra.MaximumNArgs(1),
	}

	cmd.Flags().IntVarP(&flags.Limit, "limit", "n", flags.Limit, "Number of runs to show")

	return cmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.treetranslate.yaml)")
	cmd.PersistentFlags().StringVar(&flags.HistoryPath, "history-db", "", "Run history database (default ~/.local/state/treetranslate/history.db)")

	// Local flags
	cmd.Flags().StringVarP(&flags.InputDir, "input", "i", flags.InputDir, "Input directory")
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output directory")
	cmd.Flags().StringVarP(&flags.Extension, "ext", "e", flags.Extension, "Extension of the files to translate")
	cmd.Flags().StringVar(&flags.TaskList, "files", "", "Only translate the relative paths listed in this file (one per line)")
	cmd.Flags().DurationVar(&flags.Delay, "delay", flags.Delay, "Pause between files to stay below the provider quota")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move an existing output directory to archive/ before the run")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "List the files that would be translated and exit")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List available models for the selected provider")
	cmd.Flags().BoolVar(&flags.NoProgress, "no-progress", false, "Disable the progress bar")
	cmd.Flags().BoolVar(&flags.NoHistory, "no-history", false, "Do not record this run in the history database")

	// Translation flags
	cmd.Flags().StringVarP(&flags.TargetLanguage, "language", "l", flags.TargetLanguage, "Target language")
	cmd.Flags().StringVarP(&flags.Provider, "provider", "p", flags.Provider, "Translation provider: gemini or openai")
	cmd.Flags().StringVarP(&flags.Model, "model", "m", "", "Model identifier (default depends on provider)")
	cmd.Flags().IntVar(&flags.MaxAttempts, "max-attempts", flags.MaxAttempts, "Attempts per file when the provider is rate limited")
	cmd.Flags().DurationVar(&flags.BaseDelay, "base-delay", flags.BaseDelay, "First retry delay, doubled on every further retry")
	cmd.Flags().IntVar(&flags.BreakerFailures, "breaker-failures", flags.BreakerFailures, "Consecutive provider errors before calls are suspended (0 disables)")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("batch.input", cmd.Flags().Lookup("input"))
	viper.BindPFlag("batch.output", cmd.Flags().Lookup("output"))
	viper.BindPFlag("batch.extension", cmd.Flags().Lookup("ext"))
	viper.BindPFlag("batch.delay", cmd.Flags().Lookup("delay"))
	viper.BindPFlag("translate.language", cmd.Flags().Lookup("language"))
	viper.BindPFlag("translate.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("translate.model", cmd.Flags().Lookup("model"))
	viper.BindPFlag("translate.max_attempts", cmd.Flags().Lookup("max-attempts"))
	viper.BindPFlag("translate.base_delay", cmd.Flags().Lookup("base-delay"))
	viper.BindPFlag("translate.breaker_failures", cmd.Flags().Lookup("breaker-failures"))
	viper.BindPFlag("history.path", cmd.PersistentFlags().Lookup("history-db"))
}

// ResolveFlags copies the effective values (flag, then config file or
// environment, then default) from viper back into flags
func ResolveFlags(flags *Flags) {
	flags.InputDir = viper.GetString("batch.input")
	flags.OutputDir = viper.GetString("batch.output")
	flags.Extension = viper.GetString("batch.extension")
	flags.Delay = viper.GetDuration("batch.delay")
	flags.TargetLanguage = viper.GetString("translate.language")
	flags.Provider = viper.GetString("translate.provider")
	flags.Model = viper.GetString("translate.model")
	flags.MaxAttempts = viper.GetInt("translate.max_attempts")
	flags.BaseDelay = viper.GetDuration("translate.base_delay")
	flags.BreakerFailures = viper.GetInt("translate.breaker_failures")
	flags.HistoryPath = viper.GetString("history.path")
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".treetranslate" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".treetranslate")
	}

	// Environment variables
	viper.SetEnvPrefix("TREETRANSLATE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	for _, env := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}

	return viper.GetString("translate.gemini_key")
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("translate.openai_key")
}

// GetAPIKey returns the key for the named provider
func GetAPIKey(provider string) string {
	switch provider {
	case "openai":
		return GetOpenAIKey()
	default:
		return GetGeminiKey()
	}
}
