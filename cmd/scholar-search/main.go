// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholar-search CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-search/internal/logger"
	"github.com/pdiddy/scholar-search/internal/secrets"
	"github.com/pdiddy/scholar-search/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Prepared by the root command before any subcommand runs.
var (
	appConfig types.Config
	appLog    logger.Logger = logger.NewNop()
)

// rootCmd is the base command for the scholar-search CLI.
var rootCmd = &cobra.Command{
	Use:   "scholar-search",
	Short: "Search Google Scholar and Semantic Scholar for articles",
	Long: `scholar-search retrieves article metadata from Google Scholar (by scraping
its result pages) or from the Semantic Scholar Graph API, normalizes it into
one record shape, and prints it or saves it as a pipe-delimited file.

Google Scholar throttles automated clients aggressively. A rate-limit
response ends the search; wait before trying again.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadEnvFiles(); err != nil {
			return err
		}
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		log, err := logger.New(logger.Config{Level: cfg.LogLevel})
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}

		s, err := secrets.Load(secrets.DefaultDir, log)
		if err != nil {
			return err
		}
		if cfg.Semantic.APIKey == "" {
			cfg.Semantic.APIKey = s[secrets.SemanticScholarAPIKey]
		}

		appConfig = cfg
		appLog = log
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = appLog.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scholar-search.yaml or ~/.config/scholar-search/scholar-search.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default warn)")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scholar-search")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scholar-search"))
		}
	}

	configureEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configureEnv maps SCHOLAR_SEARCH_<SECTION>_<KEY> variables onto config
// keys. The API key is also read from SEMANTIC_SCHOLAR_API_KEY.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("SCHOLAR_SEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	_ = v.BindEnv("semantic_scholar.api_key", "SCHOLAR_SEARCH_SEMANTIC_SCHOLAR_API_KEY", "SEMANTIC_SCHOLAR_API_KEY")
}

// setDefaults registers every config key so environment overrides reach
// Unmarshal.
func setDefaults(v *viper.Viper) {
	d := types.DefaultConfig()
	v.SetDefault("scholar.timeout", d.Scholar.Timeout)
	v.SetDefault("scholar.user_agent", d.Scholar.UserAgent)
	v.SetDefault("scholar.page_delay", d.Scholar.PageDelay)
	v.SetDefault("semantic_scholar.timeout", d.Semantic.Timeout)
	v.SetDefault("semantic_scholar.user_agent", d.Semantic.UserAgent)
	v.SetDefault("semantic_scholar.api_key", d.Semantic.APIKey)
	v.SetDefault("semantic_scholar.page_delay", d.Semantic.PageDelay)
	v.SetDefault("output.data_dir", d.Output.DataDir)
	v.SetDefault("log_level", d.LogLevel)
}

// loadConfig decodes the merged viper settings over the defaults.
func loadConfig(v *viper.Viper) (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = types.DefaultConfig().LogLevel
	}
	return cfg, nil
}

// loadEnvFiles loads ENV_FILE when set, otherwise .env.local then .env.
// Missing files are ignored.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("load %s: %w", name, err)
		}
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
