package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ablomov/remindd/internal/api"
	"github.com/ablomov/remindd/internal/config"
	"github.com/ablomov/remindd/internal/delivery"
	"github.com/ablomov/remindd/internal/scheduler"
	"github.com/ablomov/remindd/internal/store"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// closer lets the app shut both delivery ports down uniformly.
type closer interface{ Close() }

// App wires the store, delivery port, scheduler and HTTP surface together.
type App struct {
	cfg     config.Config
	log     *zap.Logger
	repo    store.Repo
	port    scheduler.DeliveryPort
	sched   *scheduler.Scheduler
	rpc     *api.Server
	httpSrv *http.Server
}

// New builds the application. The delivery port is Telegram when a bot
// token is configured, otherwise a log port so the daemon stays usable
// without credentials.
func New(cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log}

	if cfg.BotToken != "" {
		bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
		if err != nil {
			return nil, err
		}
		bot.Debug = false
		a.port = delivery.NewTelegramPort(bot, log, cfg.ChatID)
		log.Info("telegram delivery configured", zap.Int64("chat_id", cfg.ChatID))
	} else {
		a.port = delivery.NewLogPort(log)
		log.Info("no bot token, using log delivery")
	}

	return a, nil
}

// Run starts the daemon and blocks until a shutdown signal.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting remindd",
		zap.String("user", a.cfg.UserID),
		zap.String("http", a.cfg.HTTPAddr),
		zap.Duration("horizon", a.cfg.Horizon),
	)

	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready", zap.String("path", a.cfg.DBPath))

	a.sched = scheduler.New(repo, a.port, a.log, a.cfg.UserID, scheduler.Options{
		Horizon:   a.cfg.Horizon,
		DefaultTZ: a.cfg.DefaultTZ,
	})
	if err := a.sched.Initialize(ctx); err != nil {
		a.log.Error("scheduler initialize failed", zap.Error(err))
		return err
	}

	a.rpc = api.NewServer(a.sched, Version)
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/rpc", a.rpc.Handler())
	a.httpSrv = &http.Server{
		Addr:         a.cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.sched.Run(ctx, a.cfg.RefreshInterval)

	a.log.Info("shutdown signal received")
	a.shutdown()
	return nil
}

func (a *App) shutdown() {
	shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := a.httpSrv.Shutdown(shCtx)
	cancel()
	if err != nil {
		a.log.Warn("http server shutdown error", zap.Error(err))
	}
	if a.rpc != nil {
		_ = a.rpc.Close()
	}
	if c, ok := a.port.(closer); ok {
		c.Close()
	}
	if a.repo != nil {
		_ = a.repo.Close()
	}
}
