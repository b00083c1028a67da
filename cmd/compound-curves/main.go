package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/compound-curves/internal/chart"
	"github.com/iwvelando/compound-curves/internal/config"
	"github.com/iwvelando/compound-curves/internal/curve"
	"github.com/iwvelando/compound-curves/internal/server"
	"github.com/iwvelando/compound-curves/internal/session"
	"github.com/iwvelando/compound-curves/internal/tui"
	"github.com/iwvelando/compound-curves/pkg/constants"
	"github.com/iwvelando/compound-curves/pkg/mathutil"
	"github.com/iwvelando/compound-curves/pkg/output"
	"github.com/iwvelando/compound-curves/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// app carries what every subcommand needs after the root pre-run.
type app struct {
	configLocation string
	logLevel       string

	mode        string
	principal   float64
	years       int
	ratePercent float64

	conf   *config.Configuration
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "compound-curves",
		Short:         "compare compound interest growth and discounting curves",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configLocation, "config", constants.DefaultConfigFile, "path to configuration file, - reads it from stdin")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	addParamFlags(rootCmd, a)

	var outputFormat string
	tableCmd := &cobra.Command{
		Use:   "table",
		Short: "print the year-by-year table for one set of parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTable(cmd, outputFormat)
		},
	}
	tableCmd.Flags().StringVar(&outputFormat, "output-format", "", "type of output override: pretty, csv")
	addParamFlags(tableCmd, a)

	var width, height int
	chartCmd := &cobra.Command{
		Use:   "chart",
		Short: "plot the curve for one set of parameters in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChart(cmd, width, height)
		},
	}
	chartCmd.Flags().IntVar(&width, "width", 60, "plot width in columns")
	chartCmd.Flags().IntVar(&height, "height", 12, "plot height in rows")
	addParamFlags(chartCmd, a)

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive terminal calculator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
	addParamFlags(tuiCmd, a)

	var serverConfig, address, maxBodySize string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the web calculator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd, serverConfig, address, maxBodySize)
		},
	}
	serveCmd.Flags().StringVar(&serverConfig, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	serveCmd.Flags().StringVar(&address, "address", "", "listen address override")
	serveCmd.Flags().StringVar(&maxBodySize, "max-body-size", "", "request body limit override, e.g. 64K or 1M")

	rootCmd.AddCommand(tableCmd, chartCmd, tuiCmd, serveCmd)
	return rootCmd
}

func addParamFlags(cmd *cobra.Command, a *app) {
	cmd.Flags().StringVar(&a.mode, "mode", "", "calculation mode: fv or pv")
	cmd.Flags().Float64Var(&a.principal, "principal", 0, "principal amount")
	cmd.Flags().IntVar(&a.years, "years", 0, "horizon in years")
	cmd.Flags().Float64Var(&a.ratePercent, "rate", 0, "annual rate in percent")
}

func (a *app) setup(cmd *cobra.Command) error {
	var conf *config.Configuration
	var err error
	if a.configLocation == "-" {
		conf, err = config.LoadConfigurationFromReader(cmd.InOrStdin())
	} else {
		conf, err = config.LoadConfiguration(a.configLocation)
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", a.configLocation, err)
	}
	if err := validation.ValidateLogLevel(a.logLevel); err != nil {
		return err
	}
	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := initializeLogger(conf.Logging, a.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	a.conf = conf
	a.logger = logger
	return nil
}

// params merges the configured defaults with any parameter flags given on cmd.
func (a *app) params(cmd *cobra.Command) (session.Params, error) {
	p := a.conf.Params()
	flags := cmd.Flags()
	if flags.Changed("mode") {
		mode, err := curve.ParseMode(a.mode)
		if err != nil {
			return p, err
		}
		p.Mode = mode
	}
	if flags.Changed("principal") {
		p.Principal = a.principal
	}
	if flags.Changed("years") {
		p.Years = a.years
	}
	if flags.Changed("rate") {
		p.Rate = mathutil.PercentToRate(a.ratePercent)
	}
	return p.Clamp(), nil
}

func (a *app) preview(cmd *cobra.Command) (session.Frame, error) {
	p, err := a.params(cmd)
	if err != nil {
		return session.Frame{}, err
	}
	_, frame, err := session.Render(a.logger, session.NewState(a.conf.EffectivePalette()), p, session.ActionNone)
	if err != nil {
		a.logger.Error("failed to compute curve",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return frame, err
	}
	return frame, nil
}

func (a *app) runTable(cmd *cobra.Command, outputFormatFlag string) error {
	// CLI override takes precedence over config
	outputFormat := a.conf.Output.Format
	if outputFormatFlag != "" {
		outputFormat = outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	frame, err := a.preview(cmd)
	if err != nil {
		return err
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(cmd.OutOrStdout(), frame)
	case constants.OutputFormatCSV:
		output.CsvFormat(cmd.OutOrStdout(), frame)
	}
	return nil
}

func (a *app) runChart(cmd *cobra.Command, width, height int) error {
	frame, err := a.preview(cmd)
	if err != nil {
		return err
	}
	series := []chart.Series{{
		Name:   frame.Label,
		Color:  frame.NextColor,
		Points: frame.Preview,
	}}
	plot := chart.ASCII(series, chart.Options{
		Title:     frame.Label,
		Width:     width,
		Height:    height,
		Principal: frame.Params.Principal,
		Years:     frame.Params.Years,
	})
	fmt.Fprintln(cmd.OutOrStdout(), plot)
	fmt.Fprint(cmd.OutOrStdout(), chart.Legend(series))
	return nil
}

func (a *app) runTUI(cmd *cobra.Command) error {
	p, err := a.params(cmd)
	if err != nil {
		return err
	}
	return tui.Run(a.logger, a.conf.EffectivePalette(), p)
}

// loadServerConfig reads the server configuration and applies the CLI overrides.
func loadServerConfig(path, addressOverride, maxBodySizeOverride string) (*server.Config, error) {
	srvCfg, err := server.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if addressOverride != "" {
		srvCfg.Address = addressOverride
	}
	if maxBodySizeOverride != "" {
		size, err := server.ParseSize(maxBodySizeOverride)
		if err != nil {
			return nil, fmt.Errorf("invalid --max-body-size: %w", err)
		}
		srvCfg.SetBodySizeBytes(size)
	}
	return srvCfg, nil
}

func (a *app) runServe(cmd *cobra.Command, serverConfigPath, addressOverride, maxBodySizeOverride string) error {
	srvCfg, err := loadServerConfig(serverConfigPath, addressOverride, maxBodySizeOverride)
	if err != nil {
		return err
	}

	logger := a.logger
	if srvCfg.Logging != (config.LoggingConfig{}) {
		logger, err = initializeLogger(srvCfg.Logging, a.logLevel)
		if err != nil {
			return fmt.Errorf("failed to initialize server logger: %w", err)
		}
		defer func() {
			_ = logger.Sync()
		}()
	}

	p, err := a.params(cmd)
	if err != nil {
		return err
	}

	handler := server.NewHandler(logger, server.Options{
		MaxBodySize: srvCfg.BodySizeBytes(),
		SessionTTL:  srvCfg.SessionTTLDuration(),
		Palette:     a.conf.EffectivePalette(),
		Defaults:    p,
		Version:     version,
	})

	httpServer := &http.Server{
		Addr:              srvCfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting web server",
			zap.String("op", "main.serve"),
			zap.String("address", srvCfg.Address),
			zap.Int64("maxBodySize", srvCfg.BodySizeBytes()),
			zap.Duration("sessionTTL", srvCfg.SessionTTLDuration()),
		)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("web server stopped",
				zap.String("op", "main.serve"),
				zap.Error(err),
			)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down web server", zap.String("op", "main.serve"))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down web server: %w", err)
	}
	return nil
}
