// File: cmd/serve.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"vulnserve/internal/assets"
	"vulnserve/internal/config"
	"vulnserve/internal/labels"
	"vulnserve/internal/observability"
	"vulnserve/internal/predictor"
	"vulnserve/internal/runtime"
	"vulnserve/internal/server"
)

// newServeCmd creates and configures the `serve` command.
func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts the prediction API server",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr")); err != nil {
				return err
			}
			return viper.BindPFlag("runtime.base_url", cmd.Flags().Lookup("runtime-url"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Label maps ship as an object-store artifact; a local path in the
			// config short-circuits the download.
			labelPath, err := assets.ResolveLabelMap(ctx, cfg.Assets)
			if err != nil {
				return fmt.Errorf("failed to resolve label map: %w", err)
			}
			labelMap, err := labels.Load(labelPath)
			if err != nil {
				return fmt.Errorf("failed to load label map %q: %w", labelPath, err)
			}
			logger.Info("Label map loaded", zap.String("path", labelPath))

			rt := runtime.NewClient(cfg.Runtime, logger)
			pred := predictor.New(rt, labelMap, cfg.Models, logger)
			srv := server.New(cfg.Server, pred, rt, logger)

			logger.Info("Serving predictions",
				zap.String("addr", cfg.Server.Addr),
				zap.String("runtime", cfg.Runtime.BaseURL),
				zap.Int("max_sequence_length", cfg.Models.MaxSequenceLength),
			)
			return srv.Run(ctx)
		},
	}

	serveCmd.Flags().String("addr", "", "listen address (overrides config)")
	serveCmd.Flags().String("runtime-url", "", "inference runtime base URL (overrides config)")

	return serveCmd
}
