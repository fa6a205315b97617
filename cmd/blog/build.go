package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate the static site",
	Long: `Fetch the listing and every post from the CMS and write the rendered
pages into the output directory.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("output", "", "output directory (overrides site.output_dir)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		cfg.Site.OutputDir = output
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("build site: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "built %d of %d posts into %s in %s\n",
		stats.Built, stats.Slugs, cfg.Site.OutputDir, stats.Duration)
	return nil
}
