package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/linesmerrill/casetrack-api/api/handlers"
	"github.com/linesmerrill/casetrack-api/config"
)

func main() {
	conf, err := config.New()
	if err != nil {
		log.Fatal(err)
	}

	a := handlers.App{Config: *conf}
	if err := a.Initialize(); err != nil { //initialize database and router
		zap.S().Fatalw("failed to initialize", "error", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", conf.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		zap.S().Infow("casetrack-api is up and running",
			"port", conf.Port,
			"url", conf.BaseURL,
			"store", conf.Store,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.S().Fatalw("server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	zap.S().Info("casetrack-api is shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorw("failed to shut down cleanly", "error", err)
	}
	if err := a.Close(shutdownCtx); err != nil {
		zap.S().Errorw("failed to disconnect from database", "error", err)
	}
	_ = zap.L().Sync()
}
