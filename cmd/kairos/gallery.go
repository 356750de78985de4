package main

import (
	"github.com/spf13/cobra"

	"github.com/samvad-hq/kairos-face-client/pkg/kairos"
	"github.com/samvad-hq/kairos-face-client/pkg/manifest"
)

func (c *cli) newGalleryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Inspect and manage galleries",
	}
	cmd.AddCommand(c.newGalleryListCmd(), c.newGalleryViewCmd(), c.newGalleryRemoveSubjectCmd())
	return cmd
}

func (c *cli) newGalleryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all galleries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.call(cmd, manifest.Job{Operation: kairos.EndpointGalleryListAll.Name()})
		},
	}
}

func (c *cli) newGalleryViewCmd() *cobra.Command {
	var gallery string
	cmd := &cobra.Command{
		Use:   "view",
		Short: "List the subjects enrolled in a gallery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := kairos.GalleryViewRequest{GalleryName: gallery}
			return c.call(cmd, manifest.Job{Operation: kairos.EndpointGalleryView.Name(), Options: req.Options()})
		},
	}
	cmd.Flags().StringVar(&gallery, "gallery", "", "Gallery name")
	_ = cmd.MarkFlagRequired("gallery")
	return cmd
}

func (c *cli) newGalleryRemoveSubjectCmd() *cobra.Command {
	var gallery, subject string
	cmd := &cobra.Command{
		Use:   "remove-subject",
		Short: "Remove a subject and its faces from a gallery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := kairos.RemoveSubjectRequest{GalleryName: gallery, SubjectID: subject}
			return c.call(cmd, manifest.Job{Operation: kairos.EndpointGalleryRemoveSubject.Name(), Options: req.Options()})
		},
	}
	cmd.Flags().StringVar(&gallery, "gallery", "", "Gallery name")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject id")
	_ = cmd.MarkFlagRequired("gallery")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
