package main

import (
	"context"
	"fmt"
	"os"

	"github.com/baserah/baserah/internal/app"
	"github.com/baserah/baserah/internal/config"
	"github.com/baserah/baserah/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "baserah",
	Short: "Rule-based Arabic conversational assistant",
	Long: `Baserah classifies Arabic utterances into intents, answers questions
from a seeded knowledge base and replies from templates otherwise.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = loaded

		logger, err = logging.New(logging.Options{
			Debug:   cfg.Debug,
			Console: cmd.Name() == "chat" || cfg.Debug,
		})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.baserah.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("style", "", "writing style: FRIENDLY, FORMAL or INFORMAL")
	rootCmd.PersistentFlags().String("detail", "", "detail level: BRIEF, MEDIUM, DETAILED or COMPREHENSIVE")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("settings.writing_style", rootCmd.PersistentFlags().Lookup("style"))
	viper.BindPFlag("settings.detail_level", rootCmd.PersistentFlags().Lookup("detail"))

	rootCmd.Version = version
	rootCmd.AddCommand(chatCmd, askCmd, selftestCmd, serveCmd, walkCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	v := viper.GetViper()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".baserah")
	}

	config.ConfigureEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

// buildApp wires the assistant from the loaded configuration
func buildApp(ctx context.Context) (*app.App, error) {
	return app.Build(ctx, cfg, logger)
}
