package main

import (
	"bitwise74/usercontent-api/app"
	"bitwise74/usercontent-api/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	if err := app.MakeLogger(viper.GetString("app.log_level")); err != nil {
		panic(err)
	}
	defer zap.L().Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := app.Build(ctx)
	if err != nil {
		zap.L().Fatal("Failed to build dependencies", zap.Error(err))
	}
	defer d.Close()

	if viper.GetBool("reconcile") {
		removed, err := d.Reconciler.Run(ctx)
		if err != nil {
			zap.L().Error("Orphan reconciliation failed", zap.Int("removed", removed), zap.Error(err))
			return
		}

		zap.L().Info("Orphan reconciliation finished", zap.Int("removed", removed))
		return
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", viper.GetInt("host.port")),
		Handler:           app.NewRouter(ctx, d),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("Server starting", zap.String("addr", srv.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("Server stopped unexpectedly", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zap.L().Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Failed to shut down gracefully", zap.Error(err))
	}
}
