// Package main provides the MindfulU CLI application entry point.
// MindfulU is a wellbeing companion for students: a mood journal with
// sentiment analysis and a supportive chat companion.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abiosoft/ishell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mindfulu/internal/api"
	"mindfulu/internal/app"
	"mindfulu/internal/config"
	"mindfulu/internal/logger"
	"mindfulu/internal/output"
	"mindfulu/internal/shell"
	"mindfulu/internal/version"
)

const shutdownTimeout = 5 * time.Second

var (
	configFile string
	envFile    string
	detailed   bool

	v   = config.New()
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mindfulu",
	Short: "MindfulU - a wellbeing companion for students",
	Long: `MindfulU is a mood journal and supportive companion for students.
Write journal entries with a mood score, get gentle analysis and recommendations,
and talk things through with a companion that is always there to listen.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initConfig()
	},
	RunE: runShell, // Default behavior is to run the interactive shell
}

// shellCmd represents the shell command (explicit version of default behavior)
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start interactive shell mode",
	Long:  `Start the interactive MindfulU shell. Anything that is not a command is sent to your companion.`,
	RunE:  runShell,
}

// batchCmd represents the batch command for non-interactive script execution
var batchCmd = &cobra.Command{
	Use:   "batch <script.mind>",
	Short: "Execute a .mind script file in batch mode",
	Long: `Execute a .mind script file line by line without entering interactive mode.
Lines starting with %% are comments. Execution stops at the first failing line.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

// serveCmd represents the serve command for the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MindfulU JSON API",
	Long:  `Serve the MindfulU JSON API and Prometheus metrics until interrupted.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of MindfulU.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if detailed {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersion())
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), version.GetFormattedVersion())
		return err
	},
}

func main() {
	err := rootCmd.Execute()
	_ = logger.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Add global flags
	flags := rootCmd.PersistentFlags()
	flags.String(config.KeyLogLevel, "", "Set log level (debug|info|warn|error) [default: info]")
	flags.String(config.KeyLogFile, "", "Write logs to file instead of stderr")
	flags.Bool(config.KeyTestMode, false, "Run in deterministic test mode (no delays, no history, plain output)")
	flags.StringVar(&configFile, "config", "", "Config file (default: mindfulu.yaml in . or the user config dir)")
	flags.StringVar(&envFile, "env-file", ".env", "Load environment variables from this file if it exists")

	serveCmd.Flags().String("addr", "", "Listen address [default: :8080]")
	versionCmd.Flags().BoolVar(&detailed, "detailed", false, "Show build details")

	// Bind flags to viper
	for _, key := range []string{config.KeyLogLevel, config.KeyLogFile, config.KeyTestMode} {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", key, err)
			os.Exit(1)
		}
	}
	if err := v.BindPFlag(config.KeyHTTPAddr, serveCmd.Flags().Lookup("addr")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding addr flag: %v\n", err)
		os.Exit(1)
	}

	// Add subcommands
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() error {
	loaded, err := config.Load(v, config.Options{ConfigFile: configFile, EnvFile: envFile})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg = loaded

	if err := logger.Configure(cfg); err != nil {
		return fmt.Errorf("failed to configure logger: %w", err)
	}
	if cfg.ConfigFile != "" {
		logger.Debug("Configuration loaded", "file", cfg.ConfigFile)
	}
	return nil
}

func newPrinter(w io.Writer) *output.Printer {
	return output.NewPrinter(output.ForConfig(cfg, w)...)
}

func runShell(cmd *cobra.Command, _ []string) error {
	logger.Info("Starting MindfulU", "version", version.GetVersion())

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to start MindfulU: %w", err)
	}
	defer a.Close()

	handler := shell.NewHandler(a, newPrinter(cmd.OutOrStdout()))

	sh := ishell.New()
	defer sh.Close()
	if cfg.HistoryFile != "" {
		sh.SetHistoryPath(cfg.HistoryFile)
	}

	for _, line := range handler.Banner(version.GetVersion()) {
		sh.Println(line)
	}

	// Lines are read raw and tokenized by the handler, so apostrophes in
	// journal text survive.
	return handler.Run(cmd.Context(), sh)
}

func runBatch(cmd *cobra.Command, args []string) error {
	scriptPath := args[0]

	logger.Info("Starting MindfulU batch mode", "version", version.GetVersion(), "script", scriptPath)

	// Validate script file exists and has correct extension
	if err := shell.ValidateScriptFile(scriptPath); err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to start MindfulU: %w", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := shell.NewHandler(a, newPrinter(cmd.OutOrStdout()))
	if err := handler.ExecuteScript(ctx, scriptPath); err != nil {
		return fmt.Errorf("script execution failed: %w", err)
	}

	logger.Info("Script executed successfully", "script", scriptPath)
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to start MindfulU: %w", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.HTTPAddr, err)
	}
	return serve(ctx, a, listener, cmd.OutOrStdout())
}

// serve runs the API on listener until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, a *app.App, listener net.Listener, out io.Writer) error {
	server := &http.Server{
		Handler:           api.NewServer(a).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Serving MindfulU API", "addr", listener.Addr().String(), "version", version.GetVersion())
		_, _ = fmt.Fprintf(out, "MindfulU API listening on http://%s\n", listener.Addr())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down MindfulU API")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
