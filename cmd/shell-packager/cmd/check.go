package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wmshell/shell-packager/internal/service/packager"
	"github.com/wmshell/shell-packager/internal/service/watcher"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and verify every build input exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return packager.Check(cmd.Context(), options(cmd))
		},
	}
}

func newRenderConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "render-config",
		Short: "Write the packaging framework configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := packager.RenderConfig(cmd.Context(), options(cmd))
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)

			return nil
		},
	}
}

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration for the desktop shell project",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return packager.Init(configPath)
		},
	}
}

func newWatchCommand() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate type definitions whenever a settings schema changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return watcher.Run(cmd.Context(), &watcher.Options{
				ConfigPath: configPath,
				Debounce:   debounce,
			})
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "quiet period before regenerating")

	return cmd
}
