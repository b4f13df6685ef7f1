package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/kfarkas-hq/dripfeed/internal/api"
	"github.com/kfarkas-hq/dripfeed/internal/cache"
	"github.com/kfarkas-hq/dripfeed/internal/campaign"
	"github.com/kfarkas-hq/dripfeed/internal/config"
	"github.com/kfarkas-hq/dripfeed/internal/dispatch"
	"github.com/kfarkas-hq/dripfeed/internal/enroll"
	"github.com/kfarkas-hq/dripfeed/internal/repo"
	"github.com/kfarkas-hq/dripfeed/internal/replies"
	"github.com/kfarkas-hq/dripfeed/internal/scheduler"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAll()
	if err != nil {
		log.Fatal(err)
	}

	db, err := sql.Open("pgx", cfg.Database.PostgresURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}
	if err := repo.InitSchema(ctx, db); err != nil {
		log.Fatalf("failed to initialize schema: %v", err)
	}

	subs := repo.NewPostgresSubscriberStore(db)
	templates := repo.NewPostgresTemplateStore(db)

	mailer, err := dispatch.NewSMTPMailer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)
	if err != nil {
		log.Fatalf("failed to create mailer: %v", err)
	}

	var sms dispatch.SMSClient
	if cfg.SMS.Enabled {
		sms = dispatch.NewTwilioSMS(cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.FromNumber)
	}
	dispatcher := dispatch.NewComposite(mailer, sms)

	runner := campaign.NewRunner(subs, templates, dispatcher, campaign.Options{
		Location:       cfg.Campaign.Location,
		Workers:        cfg.Campaign.WorkerLimit,
		DefaultSubject: cfg.Campaign.DefaultSubject,
	})

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		sentLog := cache.NewRedisLog(rdb, cfg.Redis.TTL)
		runner.WithHooks(sentLog.StoreSent, nil)
	}

	sched := scheduler.New()
	processor := replies.New()
	ensureJobs := func() error {
		if _, err := sched.Ensure("drip", cfg.Campaign.DripCron, func() {
			if _, err := runner.Run(context.Background()); err != nil {
				slog.Error("drip run failed", "err", err)
			}
		}); err != nil {
			return err
		}
		_, err := sched.Ensure("replies", cfg.Campaign.RepliesCron, func() {
			processor.Poll(context.Background())
		})
		return err
	}
	if err := ensureJobs(); err != nil {
		log.Fatalf("failed to register jobs: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	enroller := enroll.New(subs, templates, runner, cfg.Campaign.Location, ensureJobs)

	handler := api.NewHandler(enroller, runner, sched, subs)
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: loggingMiddleware(api.Router(handler)),
	}

	go func() {
		log.Printf("dripfeed starting (addr=%s, drip=%q, sms=%v, redis=%v)",
			cfg.Server.Address,
			cfg.Campaign.DripCron,
			cfg.SMS.Enabled,
			cfg.Redis.Enabled,
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
