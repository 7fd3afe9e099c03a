package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hareeshbabu82ns/devhub-search/internal/conf"
	"github.com/hareeshbabu82ns/devhub-search/internal/data"
	dictbiz "github.com/hareeshbabu82ns/devhub-search/internal/dictionary/biz"
	dictdata "github.com/hareeshbabu82ns/devhub-search/internal/dictionary/data"
	dictservice "github.com/hareeshbabu82ns/devhub-search/internal/dictionary/service"
	"github.com/hareeshbabu82ns/devhub-search/internal/dictionary/session"
	"github.com/hareeshbabu82ns/devhub-search/internal/history"
	"github.com/hareeshbabu82ns/devhub-search/internal/pkg/logger"
	savedbiz "github.com/hareeshbabu82ns/devhub-search/internal/savedsearch/biz"
	saveddata "github.com/hareeshbabu82ns/devhub-search/internal/savedsearch/data"
	savedservice "github.com/hareeshbabu82ns/devhub-search/internal/savedsearch/service"
	"github.com/hareeshbabu82ns/devhub-search/internal/server"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.New(&config.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("config loaded successfully")

	d, cleanup, err := data.NewData(config, log)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// repositories
	wordRepo := dictdata.NewWordRepo(d.DB)
	savedSearchRepo := saveddata.NewSavedSearchRepo(d.DB.GetDB())

	// use cases
	searchUseCase := dictbiz.NewSearchUseCase(wordRepo, log.Logger)
	savedSearchUseCase := savedbiz.NewSavedSearchUseCase(savedSearchRepo)

	// response cache, Redis when available
	var cache session.ResponseCache
	if d.Redis != nil {
		cache = session.NewRedisCache(d.Redis, log.Logger)
	} else {
		cache = session.NewMemoryCache()
	}

	hist := history.NewLog(history.NewMemoryStorage())

	sessionConfig := session.Config{
		DebounceWindow: config.Search.DebounceWindow,
		CacheTTL:       config.Search.CacheTTL,
		MaxRetries:     config.Search.MaxRetries,
		RetryBackoff:   config.Search.RetryBackoff,
		DefaultLimit:   config.Search.DefaultLimit,
	}

	// services
	searchService := dictservice.NewSearchService(searchUseCase, cache, config.Search.CacheTTL, config.Search.DefaultLimit, log.Logger)
	liveService := dictservice.NewLiveService(sessionConfig, searchUseCase, cache, hist, config.Search.SessionTTL, log.Logger)
	defer liveService.Close()
	savedSearchService := savedservice.NewSavedSearchService(savedSearchUseCase, log.Logger)

	httpServer := server.NewHTTPServer(config, log, d.DB, searchService, liveService, savedSearchService)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
