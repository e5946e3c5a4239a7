package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nabilh/coursepilot/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the coursepilot HTTP server",
	Long:  `Serves the document, query, session and content-generation APIs on the configured port.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Bool("cors-allow-all", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	allowAll, _ := cmd.Flags().GetBool("cors-allow-all")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(server.Config{
		Port:      cfg.Port,
		UploadDir: cfg.UploadsDir(),
		AllowAll:  allowAll || cfg.CORSAllowAll,
	}, a.db, server.Deps{
		Documents: a.docs,
		Pipeline:  persistingPipeline{a: a},
		Engine:    a.engine,
		Sessions:  a.sessions,
		Generator: a.generator,
		Content:   a.contents,
		Index:     a.index,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := a.persistIndex(shutdownCtx); err != nil {
		return fmt.Errorf("persisting vector index: %w", err)
	}
	fmt.Println("Server stopped.")
	return nil
}

// persistingPipeline persists the vector index after every mutation so a
// crash cannot leave completed documents without their indexed chunks.
type persistingPipeline struct {
	a *app
}

func (p persistingPipeline) Ingest(ctx context.Context, documentID string, data []byte) error {
	err := p.a.orch.Ingest(ctx, documentID, data)
	p.persist(ctx)
	return err
}

func (p persistingPipeline) Resubmit(ctx context.Context, documentID string) error {
	err := p.a.orch.Resubmit(ctx, documentID)
	p.persist(ctx)
	return err
}

func (p persistingPipeline) DeleteDocument(ctx context.Context, documentID string) error {
	err := p.a.orch.DeleteDocument(ctx, documentID)
	p.persist(ctx)
	return err
}

func (p persistingPipeline) persist(ctx context.Context) {
	if err := p.a.persistIndex(ctx); err != nil {
		log.Printf("persisting vector index: %v", err)
	}
}
