package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/iiif-gallery/internal/handlers"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/manifests"
	"github.com/lehigh-university-libraries/iiif-gallery/internal/storage"
)

func newServeCmd() *cobra.Command {
	var port string
	var staticDir string
	var vocabularyPath string
	var languages string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the gallery interface",
		Long: `Starts the gallery API and web interface on the specified port.

Sessions collect canvases from IIIF manifests, resolve their display fields,
and export the arranged gallery as an IIIF Collection.`,
		Example: `  # Start server on default port 8888
  iiif-gallery serve

  # Prefer French labels and use a custom vocabulary
  iiif-gallery serve --lang "fr, en;q=0.8" --vocabulary vocabulary.yaml

  # Start server on custom port
  iiif-gallery serve --port 3000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := newResolver(vocabularyPath, languages)
			if err != nil {
				return err
			}

			handler := handlers.New(storage.New(res), manifests.NewClient(), staticDir)

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Gallery interface available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&staticDir, "static", "static", "Directory of the web interface files")
	cmd.Flags().StringVar(&vocabularyPath, "vocabulary", "", "Vocabulary YAML (defaults to $GALLERY_VOCABULARY or the built-in vocabulary)")
	cmd.Flags().StringVar(&languages, "lang", "", "Preferred label languages, e.g. \"fr, en;q=0.8\" (defaults to $GALLERY_LANGUAGES)")

	return cmd
}
