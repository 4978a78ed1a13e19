package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/baserah/baserah/internal/config"
	"github.com/baserah/baserah/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the assistant as an MCP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		a, err := buildApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(a.Engine, server.Config{
			Name:      "baserah",
			Version:   version,
			RateLimit: cfg.Server.RateLimit,
			Burst:     cfg.Server.Burst,
		}, logger.Named("server"))

		switch cfg.Server.Transport {
		case config.TransportStdio:
			return srv.RunStdio(ctx)
		case config.TransportHTTP:
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		default:
			return fmt.Errorf("unknown transport: %s (use stdio or http)", cfg.Server.Transport)
		}
	},
}

func init() {
	serveCmd.Flags().String("transport", config.TransportStdio, "transport mode: stdio or http")
	serveCmd.Flags().String("addr", "localhost:8090", "HTTP listen address (only used with --transport http)")

	viper.BindPFlag("server.transport", serveCmd.Flags().Lookup("transport"))
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
