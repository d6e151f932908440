// Package main implements the hotel website server: server-rendered pages
// whose hero slider and other widgets are driven over a WebSocket.
//
// Usage:
//
//	hotelsite [serve] [--config path/to/hotelsite.yaml] [--verbose]
//	hotelsite check-images
//	hotelsite test-notify
//	hotelsite version
//
// If --config is not specified, hotelsite looks for hotelsite.yaml in the
// same directory as the binary.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/oszuidwest/hotelsite/internal/config"
	"github.com/oszuidwest/hotelsite/internal/content"
	"github.com/oszuidwest/hotelsite/internal/util"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "hotelsite",
	Short: "Hotel website with a server-driven hero slider",
	Long: `hotelsite serves the hotel's home, rooms and explore pages. Widget state
such as the hero slider, menu and modals lives on the server and is pushed
to the browser over a WebSocket.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: hotelsite.yaml next to binary)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the config path and loads it.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		execPath, err := os.Executable()
		if err != nil {
			return nil, util.WrapError("get executable path", err)
		}
		path = filepath.Join(filepath.Dir(execPath), "hotelsite.yaml")
	}

	slog.Info("using config file", "path", path)

	cfg := config.New(path)
	if err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), util.ShutdownSignals()...)
	defer stop()

	assets := siteAssets(cfg.AssetsDir())
	store, err := content.NewStore(cfg.ContentPath(), assets)
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}
	if err := store.Watch(ctx); err != nil {
		slog.Warn("content hot reload disabled", "error", err)
	}

	srv, err := NewServer(cfg, store, assets)
	if err != nil {
		return err
	}
	srv.version.Start(ctx)

	fallback := cfg.Snapshot().FallbackImage
	store.OnReload(func(c *content.Content) {
		go logImageProblems(ctx, srv.loader, c, fallback)
	})
	go logImageProblems(ctx, srv.loader, store.Current(), fallback)

	httpServer := srv.Start(ctx)

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		slog.Error("HTTP server shutdown error", "error", err)
	}
	srv.notifier.Wait()

	slog.Info("shutdown complete")
	return nil
}
