package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/kilianp07/trikesim/api/runs"
	"github.com/kilianp07/trikesim/core/eventlog"
	"github.com/kilianp07/trikesim/infra/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve finished runs over HTTP",
	RunE:  serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log := logger.New("api")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := eventlog.New(ctx, cfg.EventLog.Module())
	if err != nil {
		return fmt.Errorf("event log: %w", err)
	}
	defer store.Close()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           runs.NewRouter(store, cfg.Output.Dir),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorf("api shutdown: %v", err)
		}
	}()
	log.Infof("serving runs from %s on %s", cfg.Output.Dir, cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
