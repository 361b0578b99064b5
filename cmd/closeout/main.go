// Command closeout runs the end-of-day sweep once, for backfills and
// for days the worker missed.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tabintel/attendance/internal/app"
	"github.com/Tabintel/attendance/internal/config"
	"github.com/Tabintel/attendance/internal/shared/apperror"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	date := pflag.StringP("date", "d", "", "work date to close out, YYYY-MM-DD (default: yesterday)")
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	storage := pflag.String("storage", "", "override STORAGE_DRIVER (postgres or memory)")
	pflag.Parse()

	_ = godotenv.Load(*envFile)
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()
	cfg := config.Load()
	if *storage != "" {
		cfg.StorageDriver = *storage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := app.RunCloseOut(ctx, cfg, *date)
	if err != nil {
		logger.Fatal("close out failed", zap.String("date", *date), zap.Error(err))
	}
	logger.Info("close out finished",
		zap.String("work_date", result.Date),
		zap.Int("absent_created", result.Created),
		zap.Int("already_present", result.AlreadyPresent),
		zap.Strings("still_open", result.StillOpen),
	)
}
