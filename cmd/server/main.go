package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/wiptrace/internal/config"
	"github.com/mamadbah2/wiptrace/internal/eventlog"
	"github.com/mamadbah2/wiptrace/internal/flow"
	"github.com/mamadbah2/wiptrace/internal/repository/mongodb"
	"github.com/mamadbah2/wiptrace/internal/repository/sheets"
	"github.com/mamadbah2/wiptrace/internal/scheduler"
	"github.com/mamadbah2/wiptrace/internal/server/handlers"
	"github.com/mamadbah2/wiptrace/internal/server/router"
	scansvc "github.com/mamadbah2/wiptrace/internal/service/scan"
	"github.com/mamadbah2/wiptrace/internal/trace"
	"github.com/mamadbah2/wiptrace/pkg/clients/qrimage"
	"github.com/mamadbah2/wiptrace/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	vocab, err := config.LoadVocabulary(cfg.Vocab.Path)
	if err != nil {
		baseLogger.Fatal("failed to load vocabulary", zap.Error(err))
	}

	sheetStore, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
	if err != nil {
		baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
	}
	if err := sheetStore.EnsureHeader(context.Background()); err != nil {
		baseLogger.Warn("could not ensure header row", zap.Error(err))
	}

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	eventCache := eventlog.NewCache(sheetStore, baseLogger.Named("eventlog"))
	if err := eventCache.Refresh(context.Background()); err != nil {
		baseLogger.Warn("initial event snapshot load failed, will retry on first read", zap.Error(err))
	}

	engine := trace.NewEngine(vocab.StationCodes(), baseLogger.Named("trace"))
	flowValidator := flow.NewValidator(vocab.Flows)
	qrClient := qrimage.NewClient(cfg.QR)

	svc := scansvc.NewService(eventCache, mongoRepo, engine, flowValidator, vocab, qrClient, baseLogger.Named("svc.scan"))

	scanHandler := handlers.NewScanHandler(svc, baseLogger.Named("handlers.scan"))
	vocabHandler := handlers.NewVocabHandler(vocab)
	engineRouter := router.New(scanHandler, vocabHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Cache, eventCache, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engineRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
