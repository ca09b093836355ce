package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/labelpack/internal/config"
	"github.com/jackzampolin/labelpack/internal/inbox"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Annotate whenever new label PDFs arrive in the work dir",
	Long: `Watch waits for label PDFs to appear in the work dir and runs annotate once
they stop changing. Failed runs are logged and the watcher keeps going. Config
file changes are picked up for the next run.

Stop with Ctrl+C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, logger, err := setup()
		if err != nil {
			return err
		}
		mgr.OnChange(func(cfg *config.Config) {
			logger.Info("config reloaded", "file", mgr.ConfigFile())
		})
		mgr.WatchConfig()

		cfg := mgr.Get()
		debounce, err := cfg.DebounceDuration()
		if err != nil {
			return err
		}

		w, err := inbox.New(inbox.Config{
			Dir:          cfg.WorkDir,
			OutputSuffix: cfg.OutputSuffix,
			Debounce:     debounce,
			Logger:       logger,
			Run: func(ctx context.Context) error {
				p, err := newPipeline(mgr.Get(), logger, pipelineOptions{})
				if err != nil {
					return err
				}
				_, err = p.Run(ctx)
				return err
			},
		})
		if err != nil {
			return err
		}
		return w.Watch(cmd.Context())
	},
}
