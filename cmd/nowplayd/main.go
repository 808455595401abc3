package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/stationops/nowplayd/internal/announce"
	"github.com/stationops/nowplayd/internal/api"
	"github.com/stationops/nowplayd/internal/config"
	"github.com/stationops/nowplayd/internal/history"
	"github.com/stationops/nowplayd/internal/monitor"
	"github.com/stationops/nowplayd/internal/submit"
	"github.com/stationops/nowplayd/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(cfg.LogLevel)
	logger.Log.Info("Starting nowplayd")

	var journal *history.Store
	if cfg.HistoryDB != "" {
		journal, err = history.Open(cfg.HistoryDB)
		if err != nil {
			logger.Log.Fatalf("Failed to open submission journal: %v", err)
		}
		defer journal.Close()
		logger.Log.Infof("Submission journal: %s", cfg.HistoryDB)
	}

	announcers, err := buildAnnouncers(cfg)
	if err != nil {
		logger.Log.Fatalf("Failed to connect announcer: %v", err)
	}
	defer func() {
		for _, a := range announcers {
			if err := a.Close(); err != nil {
				logger.Log.Warnf("Failed to close announcer %s: %v", a.Name(), err)
			}
		}
	}()

	mon := monitor.New(cfg, submit.New(cfg), journal, announcers)

	var statusServer *http.Server
	if cfg.StatusAddr != "" {
		router := api.SetupRouter(api.NewHandler(mon), cfg.StatusUsername, cfg.StatusPassword)
		statusServer = &http.Server{Addr: cfg.StatusAddr, Handler: router}
		go func() {
			logger.Log.Infof("Status API listening on %s", cfg.StatusAddr)
			if err := statusServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Fatalf("Status API failed: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitorErr := make(chan error, 1)
	go func() {
		monitorErr <- mon.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Log.Info("Shutting down nowplayd...")
		cancel()
		<-monitorErr
	case err := <-monitorErr:
		if err != nil {
			logger.Log.Fatalf("Monitor failed: %v", err)
		}
	}

	if statusServer != nil {
		if err := statusServer.Shutdown(context.Background()); err != nil {
			logger.Log.Warnf("Status API shutdown: %v", err)
		}
	}

	logger.Log.Info("nowplayd exited")
}

// buildAnnouncers connects the optional local sinks. A configured sink that
// cannot be reached at startup is fatal, the same fail-fast behavior as a
// bad config value.
func buildAnnouncers(cfg *config.Config) ([]announce.Announcer, error) {
	var announcers []announce.Announcer

	redisAnnouncer, err := announce.NewRedis(announce.RedisConfig{
		Address:  cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, err
	}
	if redisAnnouncer != nil {
		announcers = append(announcers, redisAnnouncer)
	}

	natsAnnouncer, err := announce.NewNATS(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, err
	}
	if natsAnnouncer != nil {
		announcers = append(announcers, natsAnnouncer)
	}

	return announcers, nil
}
