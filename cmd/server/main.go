package main

import (
	"context"
	cryptoRand "crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/santasdraw/server/config"
	"github.com/santasdraw/server/internal/auth"
	"github.com/santasdraw/server/internal/database"
	"github.com/santasdraw/server/internal/draw"
	"github.com/santasdraw/server/internal/invite"
	"github.com/santasdraw/server/internal/match"
	"github.com/santasdraw/server/internal/notify"
	"github.com/santasdraw/server/internal/scheduler"
	"github.com/santasdraw/server/internal/token"
	"github.com/santasdraw/server/internal/web"
	"github.com/santasdraw/server/internal/web/handlers"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("santasdraw-server %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", buildDate)
		os.Exit(0)
	}

	// Local development keeps its settings in .env; absence is fine.
	_ = godotenv.Load()

	cfg := config.Load()

	if cfg.JWT.SigningKey == "" {
		log.Println("WARNING: JWT_SIGNING_KEY is empty — using a random key, tokens will not survive restarts")
		cfg.JWT.SigningKey = randomKey()
	}

	// Initialize SQLite database.
	db, err := database.New(cfg.DB.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Wire services.
	tokens := token.New(cfg.JWT.SigningKey, cfg.JWT.Issuer, time.Duration(cfg.JWT.LifetimeMinute)*time.Minute)
	authService := auth.New(db, tokens)

	var notifier notify.Notifier = notify.LogNotifier{}
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := notify.NewPublisher(cfg.Kafka.Brokers)
		defer publisher.Close()
		notifier = publisher
	} else {
		log.Println("KAFKA_BROKERS not set — match notifications will be logged only")
	}

	executor := draw.New(db, match.New(), notifier)
	invites := invite.New(db)
	h := handlers.New(db, cfg, authService, executor, invites)
	r := web.NewRouter(h, authService)

	// Background execution of scheduled draws.
	schedCtx, stopSched := context.WithCancel(context.Background())
	defer stopSched()
	sched := scheduler.New(db, executor, time.Duration(cfg.Scheduler.IntervalSeconds)*time.Second)
	go sched.Run(schedCtx)

	// Start server.
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down server...")
		stopSched()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Santa's Draw API starting on %s (env: %s)", addr, cfg.Server.Env)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}

func randomKey() string {
	buf := make([]byte, 32)
	if _, err := cryptoRand.Read(buf); err != nil {
		log.Fatalf("Failed to generate signing key: %v", err)
	}
	return hex.EncodeToString(buf)
}
