package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"gofinances/internal/amqp"
	"gofinances/internal/backend"
	"gofinances/internal/cache"
	"gofinances/internal/category"
	"gofinances/internal/cli"
	"gofinances/internal/config"
	"gofinances/internal/format"
	apphttp "gofinances/internal/http"
	"gofinances/internal/ledger"
	"gofinances/internal/log"
	"gofinances/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp, os.Stdout)
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return err
	}
	if res.Cleanup != nil {
		defer func() {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", log.FieldError, err.Error())
			}
		}()
	}

	cacheManager := cache.NewManager(logger)
	if res.Cache != nil {
		cacheManager.Register(res.Cache)
		cacheManager.Start(ctx, time.Minute)
		defer cacheManager.Stop()
	}

	formatter, err := format.New(cfg.Locale, cfg.CurrencySymbol, category.Default(), cfg.Location())
	if err != nil {
		return err
	}

	opts := []services.Option{services.WithLogger(logger)}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err.Error())
		} else {
			defer client.Close()
			opts = append(opts, services.WithPublisher(client))
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewTransactionService(ledger.New(res.Store, cfg.StorageNamespace), formatter, opts...)
	srv := apphttp.NewServer(svc, apphttp.Options{
		Addr:           ":" + cfg.Port,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Ready:          res.Ready,
		Logger:         logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting gofinances server",
			"port", cfg.Port,
			log.FieldBackend, cfg.DataBackend,
			"locale", formatter.Locale().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
