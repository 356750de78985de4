package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/kairos-face-client/pkg/manifest"
)

func (c *cli) newBatchCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "batch <manifest>",
		Short: "Run the jobs of a manifest file, optionally on an interval",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := manifest.Load(args[0])
			if err != nil {
				return err
			}
			jobs := m.Enabled()
			if len(jobs) == 0 {
				return fmt.Errorf("manifest %s has no enabled jobs", args[0])
			}

			if interval > 0 {
				return c.app.Runner.Watch(cmd.Context(), jobs, interval)
			}
			if err := c.app.Runner.Run(cmd.Context(), jobs); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%d jobs completed\n", len(jobs))
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Repeat the batch on this interval until interrupted")
	return cmd
}
