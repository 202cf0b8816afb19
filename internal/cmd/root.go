package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/linefilter/internal/cmd/config"
	appconfig "github.com/Iron-Ham/linefilter/internal/config"
)

// envFiles are loaded, when present, before configuration is read.
var envFiles = []string{".env", ".env.local"}

var rootCmd = newRootCmd()

// newRootCmd builds the full command tree. Tests build a fresh tree per run
// so flag values never leak between executions.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "linefilter",
		Short: "Filter text documents down to the lines that matter",
		Long: `Linefilter shows only the lines of a document that match a set of
regular expressions, keeping the indented children and heading sections
around each match. The active filters of every document are remembered
between runs, and frequently used patterns can be saved and pinned.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/linefilter/config.yaml)")
	_ = viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))

	root.AddCommand(
		newApplyCmd(),
		newFilterCmd(),
		newSavedCmd(),
		newResolveCmd(),
		newWatchCmd(),
		newViewCmd(),
		newLogsCmd(),
	)
	config.Register(root)

	return root
}

// SetVersion sets the version reported by --version.
func SetVersion(version, commit string) {
	rootCmd.Version = fmt.Sprintf("%s (%s)", version, commit)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	appconfig.SetDefaults()

	for _, envFile := range envFiles {
		// Missing .env files are fine
		_ = godotenv.Load(envFile)
	}

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		for _, envFile := range envFiles {
			_ = godotenv.Load(filepath.Join(filepath.Dir(cfgFile), envFile))
		}
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(appconfig.ConfigDir())
		viper.AddConfigPath("$HOME/.config/linefilter")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("LINEFILTER")
	// Replace dots with underscores for nested keys in env vars
	// e.g., LINEFILTER_FILTER_HIDE_EMPTY_LINES for filter.hide_empty_lines
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// documentArg resolves a command-line document path to the absolute form
// used as its identity.
func documentArg(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, nil
}
