package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/numguess/internal/config"
	"github.com/robalobadob/numguess/internal/httpserver"
	"github.com/robalobadob/numguess/internal/play"
	"github.com/robalobadob/numguess/internal/records"
	"github.com/robalobadob/numguess/internal/store"
)

func main() {
	// numguess hash-password <password> prints a bcrypt hash for ADMIN_PASSWORD_HASH.
	if len(os.Args) == 3 && os.Args[1] == "hash-password" {
		h, err := bcrypt.GenerateFromPassword([]byte(os.Args[2]), bcrypt.DefaultCost)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(h))
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupLogging(cfg)

	db, err := records.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening sqlite: %w", err)
	}
	defer db.Close()
	if err := records.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info().Str("path", cfg.DBPath).Msg("connected to sqlite")

	recs := records.NewSQLStore(db)
	svc := play.NewService(store.NewMemoryStore(), recs)
	if best := svc.RefreshBest(ctx); best != nil {
		log.Info().Str("player", best.Name).Int("attempts", best.Attempts).Msg("loaded best record")
	}

	if cfg.AdminPasswordHash == "" {
		log.Warn().Msg("ADMIN_PASSWORD_HASH not set, admin routes disabled")
	}
	srv := httpserver.New(svc, recs, httpserver.Options{
		SessionSecret:     cfg.SessionSecret,
		SessionTTL:        cfg.SessionTTL,
		CookieSecure:      cfg.CookieSecure,
		ClientOrigin:      cfg.ClientOrigin,
		RequestTimeout:    cfg.RequestTimeout,
		AdminUser:         cfg.AdminUser,
		AdminPasswordHash: cfg.AdminPasswordHash,
		Health:            db.PingContext,
	}).HTTPServer(cfg.Addr())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("starting numguess server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down http server")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	g.Go(func() error {
		t := time.NewTicker(cfg.SweepInterval)
		defer t.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-t.C:
				if n := svc.Sweep(gctx, cfg.SessionTTL); n > 0 {
					log.Debug().Int("sessions", n).Msg("swept idle sessions")
				}
			}
		}
	})

	return g.Wait()
}

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
