package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"procomp-service/config"
	"procomp-service/internal/app"
	"procomp-service/pkg/logger"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	defer logger.Sync()
	log := logger.WithComponent("server")

	cfg := config.LoadConfig()
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := app.New(ctx, cfg, true)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer container.Close()

	// 先對帳重啟前遺留的到期項目，再開始定期掃描
	if err := container.Reaper.Start(ctx, container.Quotes); err != nil {
		log.Fatal("Failed to start expiry reaper", zap.Error(err))
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: container.Router(),
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", zap.Error(err))
	}
}
