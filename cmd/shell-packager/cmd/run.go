package cmd

import (
	"github.com/spf13/cobra"

	"github.com/wmshell/shell-packager/internal/pipeline"
	"github.com/wmshell/shell-packager/internal/service/packager"
)

func newRunCommand() *cobra.Command {
	var (
		publish bool
		stages  []string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the packaging pipeline",
		Long: "Run generate-assets, package, pre-package, copy, post-copy and make in this order. " +
			"The first failing stage stops the run.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := options(cmd)
			opts.Publish = publish

			for _, stage := range stages {
				opts.Stages = append(opts.Stages, pipeline.StageName(stage))
			}

			return packager.Run(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&publish, "publish", false, "upload final artifacts to s3 publishers after make")
	cmd.Flags().StringSliceVar(&stages, "stage", nil, "run only the named stages, keeping their order")

	return cmd
}

// newStageCommand runs a single pipeline stage.
func newStageCommand(use, short string, stage pipeline.StageName) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := options(cmd)
			opts.Stages = []pipeline.StageName{stage}

			return packager.Run(cmd.Context(), opts)
		},
	}
}

func newGenerateAssetsCommand() *cobra.Command {
	return newStageCommand("generate-assets", "Generate settings type definitions and bundle the UI", pipeline.StageGenerateAssets)
}

func newPrePackageCommand() *cobra.Command {
	return newStageCommand("pre-package", "Run the platform pre-package script on the output folder", pipeline.StagePrePackage)
}

func newPublishCommand() *cobra.Command {
	return newStageCommand("publish", "Upload final artifacts to s3 publishers", pipeline.StagePublish)
}

func newPostCopyCommand() *cobra.Command {
	var buildPath string

	cmd := &cobra.Command{
		Use:   "post-copy",
		Short: "Merge licenses and stage window-manager files into the build path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := options(cmd)
			opts.Stages = []pipeline.StageName{pipeline.StagePostCopy}
			opts.BuildPath = buildPath

			return packager.Run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&buildPath, "build-path", "", "staging directory filled by the copy phase (defaults to layout.staging_dir)")

	return cmd
}
