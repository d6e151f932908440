package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/oszuidwest/hotelsite/internal/content"
	"github.com/oszuidwest/hotelsite/internal/media"
	"github.com/oszuidwest/hotelsite/internal/notify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// imageCheckLimit bounds concurrent image probes.
const imageCheckLimit = 4

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hotelsite %s (commit %s, built %s)\n", Version, Commit, BuildTime)
	},
}

var checkImagesCmd = &cobra.Command{
	Use:   "check-images",
	Short: "Verify that every hero image and the fallback image load",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		snap := cfg.Snapshot()
		assets := siteAssets(snap.AssetsDir)
		store, err := content.NewStore(snap.ContentPath, assets)
		if err != nil {
			return fmt.Errorf("loading content: %w", err)
		}

		results := checkImages(cmd.Context(), media.NewLoader(assets), store.Current(), snap.FallbackImage)
		return reportImages(cmd.OutOrStdout(), results)
	},
}

var testNotifyCmd = &cobra.Command{
	Use:   "test-notify",
	Short: "Send a test mail and a test webhook through the configured channels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		snap := cfg.Snapshot()

		var errs []error
		if snap.HasWebhook() {
			if err := notify.SendTestWebhook(snap.WebhookURL); err != nil {
				errs = append(errs, fmt.Errorf("webhook: %w", err))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "webhook: sent")
			}
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "webhook: not configured")
		}

		if snap.HasEmail() {
			if err := notify.SendTestEmail(notify.EmailConfigFromSnapshot(snap)); err != nil {
				errs = append(errs, fmt.Errorf("email: %w", err))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "email: sent")
			}
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "email: not configured")
		}

		return errors.Join(errs...)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd, checkImagesCmd, testNotifyCmd)
}

// imageResult is the outcome of probing one image.
type imageResult struct {
	Src  string
	Info media.Info
	Err  error
}

// checkImages probes the hero images of c and the fallback image. Results
// keep the order of the images.
func checkImages(ctx context.Context, loader *media.Loader, c *content.Content, fallback string) []imageResult {
	images := c.Images()
	if fallback != "" {
		images = append(images, fallback)
	}

	results := make([]imageResult, len(images))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(imageCheckLimit)
	for i, src := range images {
		g.Go(func() error {
			info, err := loader.Probe(ctx, src)
			results[i] = imageResult{Src: src, Info: info, Err: err}
			return nil
		})
	}
	_ = g.Wait() // probes report through results

	return results
}

// reportImages prints results and returns an error when any image failed.
func reportImages(w io.Writer, results []imageResult) error {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "FAIL  %s: %v\n", r.Src, r.Err)
			continue
		}
		fmt.Fprintf(w, "ok    %s (%s %dx%d)\n", r.Src, r.Info.Format, r.Info.Width, r.Info.Height)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed to load", failed, len(results))
	}
	return nil
}

// logImageProblems probes the images of freshly loaded content and logs
// the ones the slider will replace with the fallback.
func logImageProblems(ctx context.Context, loader *media.Loader, c *content.Content, fallback string) {
	for _, r := range checkImages(ctx, loader, c, fallback) {
		if r.Err != nil {
			slog.Warn("content image does not load", "src", r.Src, "error", r.Err)
		}
	}
}
