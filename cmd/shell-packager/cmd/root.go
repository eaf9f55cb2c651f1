package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wmshell/shell-packager/internal/config"
	"github.com/wmshell/shell-packager/internal/logger"
	"github.com/wmshell/shell-packager/internal/service/packager"
	"github.com/wmshell/shell-packager/internal/version"
)

// defaultEnvFile is loaded when present; a missing default is not an error.
const defaultEnvFile = ".env"

var (
	// configPath to the configuration YAML file.
	configPath string
	// platform overrides the configured target platform.
	platform string
	// arch overrides the configured target architecture.
	arch string
	// logLevel is the minimum level of log entries.
	logLevel string
	// logFormat selects the console or json encoder.
	logFormat string
	// envFile is loaded into the environment before any command runs.
	envFile string

	// rootCmd is the base command; subcommands run the pipeline or a part of it.
	rootCmd = &cobra.Command{
		Use:   "shell-packager",
		Short: "Package the desktop shell and its window-manager binaries",
		Long: "shell-packager generates the settings type definitions, drives the packaging framework " +
			"and stages the window-manager binaries and merged license into the packaged application.",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}
)

// Execute runs the shell-packager CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	// Setup graceful shutdown handling.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)

	err := rootCmd.ExecuteContext(ctx)

	stop()
	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}

// setup loads the env file and configures the logger.
func setup(cmd *cobra.Command, _ []string) error {
	if err := loadEnvFile(cmd.Flags().Changed("env-file")); err != nil {
		return err
	}

	applyConfiguredLogging(cmd)

	if !logger.Configure(logLevel, logFormat) {
		logger.WarnKV(cmd.Context(), "Unknown log level, using info", "log_level", logLevel)
	}

	return nil
}

// applyConfiguredLogging takes log settings from the configuration file unless
// the flags were given. An unreadable configuration is reported by the command itself.
func applyConfiguredLogging(cmd *cobra.Command) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return
	}

	if !cmd.Flags().Changed("log-level") {
		logLevel = cfg.LogLevel
	}

	if !cmd.Flags().Changed("log-format") {
		logFormat = cfg.LogFormat
	}
}

func loadEnvFile(explicit bool) error {
	if _, err := os.Stat(envFile); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("env file: %w", err)
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("load env file %s: %w", envFile, err)
	}

	return nil
}

// options builds packager options from the persistent flags.
func options(cmd *cobra.Command) *packager.Options {
	return &packager.Options{
		ConfigPath: configPath,
		Platform:   platform,
		Arch:       arch,
		Output:     cmd.ErrOrStderr(),
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()

	// Setup command flags with consistent naming and descriptions.
	flags.StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVar(&platform, "platform", "", "target platform (win32, darwin, linux); defaults to the configuration or the host")
	flags.StringVar(&arch, "arch", "", "target architecture (x64, ia32, arm64, armv7l); defaults to the configuration or the host")
	flags.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", logger.FormatConsole, "log format (console, json)")
	flags.StringVar(&envFile, "env-file", defaultEnvFile, "file with KEY=VALUE pairs loaded into the environment")

	rootCmd.AddCommand(
		newRunCommand(),
		newGenerateAssetsCommand(),
		newPrePackageCommand(),
		newPostCopyCommand(),
		newPublishCommand(),
		newCheckCommand(),
		newRenderConfigCommand(),
		newInitCommand(),
		newWatchCommand(),
	)
}
