package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/kairos-face-client/internal/app"
	"github.com/samvad-hq/kairos-face-client/internal/config"
	"github.com/samvad-hq/kairos-face-client/internal/logger"
	"github.com/samvad-hq/kairos-face-client/pkg/kairos"
	"github.com/samvad-hq/kairos-face-client/pkg/manifest"
)

// Version is the application version.
const Version = "0.1.0"

// cli holds state shared by all subcommands.
type cli struct {
	cfg *config.Config
	log logger.Logger
	out io.Writer

	appID   string
	appKey  string
	baseURL string

	app *app.App
}

// execute runs the command line in args and releases the runtime afterwards.
func execute(ctx context.Context, cfg *config.Config, log logger.Logger, out io.Writer, args []string) error {
	c := &cli{cfg: cfg, log: log, out: out}
	root := c.newRootCmd()
	root.SetArgs(args)
	defer c.close()
	return root.ExecuteContext(ctx)
}

func (c *cli) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kairos",
		Short:         "Client for the Kairos face recognition API",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(cmd.Context(), c.cfg, c.log, c.overrides())
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}
	root.SetOut(c.out)
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.PersistentFlags().StringVar(&c.appID, "app-id", "", "Kairos app_id (default from KAIROS_APP_ID)")
	root.PersistentFlags().StringVar(&c.appKey, "app-key", "", "Kairos app_key (default from KAIROS_APP_KEY)")
	root.PersistentFlags().StringVar(&c.baseURL, "base-url", "", "API base URL (default from KAIROS_BASE_URL)")

	root.AddCommand(
		c.newEnrollCmd(),
		c.newRecognizeCmd(),
		c.newDetectCmd(),
		c.newGalleryCmd(),
		c.newBatchCmd(),
		c.newHistoryCmd(),
	)
	return root
}

// overrides returns the client options set explicitly on the command line.
func (c *cli) overrides() kairos.Options {
	opts := kairos.Options{}
	if c.appID != "" {
		opts[kairos.KeyAppID] = c.appID
	}
	if c.appKey != "" {
		opts[kairos.KeyAppKey] = c.appKey
	}
	if c.baseURL != "" {
		opts[kairos.KeyBaseURL] = c.baseURL
	}
	return opts
}

// call runs a single operation through the runner and prints the response.
func (c *cli) call(cmd *cobra.Command, job manifest.Job) error {
	if job.ID == "" {
		job.ID = job.Operation
	}
	resp, err := c.app.Runner.RunJob(cmd.Context(), job)
	if resp != nil {
		fmt.Fprintln(c.out, kairos.Text(resp))
	}
	return err
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
		c.app = nil
	}
}
