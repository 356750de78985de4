package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/kairos-face-client/pkg/kairos"
	"github.com/samvad-hq/kairos-face-client/pkg/manifest"
)

// imageSource is the --url/--image/--page flag group shared by image operations.
type imageSource struct {
	url   string
	image string
	page  string
}

func (s *imageSource) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.url, "url", "", "Public URL of the image")
	cmd.Flags().StringVar(&s.image, "image", "", "Base64 encoded image data")
	cmd.Flags().StringVar(&s.page, "page", "", "Web page whose preview image is used")
	cmd.MarkFlagsMutuallyExclusive("url", "image", "page")
	cmd.MarkFlagsOneRequired("url", "image", "page")
}

func (s *imageSource) job(op string, opts kairos.RequestOptions) manifest.Job {
	return manifest.Job{Operation: op, Page: s.page, Options: opts}
}

func (c *cli) newEnrollCmd() *cobra.Command {
	var (
		src     imageSource
		gallery string
		subject string
	)
	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Enroll a face image under a subject in a gallery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := kairos.EnrollRequest{
				URL:         src.url,
				Image:       src.image,
				SubjectID:   subject,
				GalleryName: gallery,
			}
			return c.call(cmd, src.job(kairos.EndpointEnroll.Name(), req.Options()))
		},
	}
	src.register(cmd)
	cmd.Flags().StringVar(&gallery, "gallery", "", "Gallery name")
	cmd.Flags().StringVar(&subject, "subject", "", "Subject id")
	_ = cmd.MarkFlagRequired("gallery")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func (c *cli) newRecognizeCmd() *cobra.Command {
	var (
		src        imageSource
		gallery    string
		threshold  float64
		maxResults int
	)
	cmd := &cobra.Command{
		Use:   "recognize",
		Short: "Match a face image against a gallery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if threshold < 0 || threshold > 1 {
				return fmt.Errorf("threshold must be between 0 and 1")
			}
			req := kairos.RecognizeRequest{
				URL:           src.url,
				Image:         src.image,
				GalleryName:   gallery,
				Threshold:     threshold,
				MaxNumResults: maxResults,
			}
			return c.call(cmd, src.job(kairos.EndpointRecognize.Name(), req.Options()))
		},
	}
	src.register(cmd)
	cmd.Flags().StringVar(&gallery, "gallery", "", "Gallery name")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Match threshold between 0 and 1 (service default when unset)")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Maximum candidates returned (service default when unset)")
	_ = cmd.MarkFlagRequired("gallery")
	return cmd
}

func (c *cli) newDetectCmd() *cobra.Command {
	var (
		src      imageSource
		selector string
	)
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Detect faces and their attributes in an image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := kairos.DetectRequest{URL: src.url, Image: src.image, Selector: selector}
			return c.call(cmd, src.job(kairos.EndpointDetect.Name(), req.Options()))
		},
	}
	src.register(cmd)
	cmd.Flags().StringVar(&selector, "selector", "", "Detection mode, e.g. FULL or FACE")
	return cmd
}
