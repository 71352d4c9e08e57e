package main

import (
	"context"
	"os"
	"time"
	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"gofinances/internal/amqp"
	"gofinances/internal/cli"
	"gofinances/internal/config"
	"gofinances/internal/log"
	"gofinances/internal/services"
	gsheet "gofinances/internal/sheets/google"
	"gofinances/internal/worker"
)

const statsInterval = time.Minute

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig((*config.Config).ValidateWorker)
	logger := cli.SetupLogger(cfg, log.ComponentWorker, os.Stdout)
	if err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Starting gofinances-worker")

	if err := run(cfg, logger); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.SignalContext(logger)
	defer stop()

	sheetsClient, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, cfg.Location(), logger)
	if err != nil {
		return err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		return err
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(amqpClient, services.NewExportProcessor(sheetsClient, logger), logger)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		// the stats reporter only stops on cancellation
		defer cancel()
		return exportWorker.Run(gctx)
	})
	g.Go(func() error {
		return exportWorker.ReportStats(gctx, statsInterval)
	})
	return g.Wait()
}
