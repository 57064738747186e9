package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/commoncode/coffeebot/backup"
	"github.com/commoncode/coffeebot/cliparse"
	"github.com/commoncode/coffeebot/handlers"
	"github.com/commoncode/coffeebot/migrate"
	"github.com/commoncode/coffeebot/router"
)

func main() {
	// A .env file is optional; real deployments set the environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("invalid timezone", "timezone", cfg.Timezone, "error", err)
		os.Exit(1)
	}

	// Connect to PostgreSQL
	dbConn, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// The ledger is the only table created at startup; everything else
	// waits for `/coffee migrate`
	if err := migrate.EnsureLedger(context.Background(), dbConn); err != nil {
		slog.Error("migration ledger creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Migration ledger ready")

	// Backups run only when a bucket is configured
	var backups handlers.BackupRunner
	if cfg.AWSBucket != "" {
		uploader, err := backup.NewS3Uploader(context.Background(), cfg)
		if err != nil {
			slog.Error("backup uploader setup failed", "error", err)
			os.Exit(1)
		}
		svc := backup.NewService(dbConn, uploader, cfg.AWSBackupPrefix, loc)
		backups = svc

		scheduler, err := backup.Schedule(svc, loc)
		if err != nil {
			slog.Error("backup scheduling failed", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				slog.Error("backup scheduler shutdown failed", "error", err)
			}
		}()
	} else {
		slog.Info("No backup bucket configured, backups disabled")
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg, backups)

	// Create server
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "timezone", loc.String())
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}
