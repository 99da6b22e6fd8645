// Command ilsos-downloader fetches the Illinois Secretary of State
// corporate and LLC bulk-data archives, decodes their fixed-width
// mainframe exports, and writes one CSV per dataset.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/landlordmapper/ilsos-downloader/internal/config"
	"github.com/landlordmapper/ilsos-downloader/internal/etl"
	"github.com/landlordmapper/ilsos-downloader/internal/etl/sources"
	"github.com/landlordmapper/ilsos-downloader/internal/logging"
	"github.com/landlordmapper/ilsos-downloader/internal/service"
	"github.com/landlordmapper/ilsos-downloader/internal/storage"
)

func main() {
	var (
		datasetList = flag.String("datasets", "", "comma-separated dataset ids to process (default: all)")
		schedule    = flag.String("schedule", "", "cron expression; run the batch on a schedule instead of once")
		watch       = flag.Bool("watch", false, "watch the drop directory for {id}.zip archives")
	)
	flag.Parse()

	if err := run(*datasetList, *schedule, *watch); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(datasetList, schedule string, watch bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	datasets, err := selectDatasets(datasetList)
	if err != nil {
		return err
	}

	// Configure the registered sources, then pick one. Watch mode always
	// reads from the drop directory.
	sources.SetHTTPOptions(cfg.HTTPTimeout, sources.RetryPolicy{
		MaxAttempts: cfg.RetryMaxAttempts,
		MinWait:     cfg.RetryMinWait,
		MaxWait:     cfg.RetryMaxWait,
	})
	sources.SetDropDir(cfg.DropDir)

	sourceType := cfg.SourceType
	if watch {
		sourceType = "localdir"
	}
	src, err := etl.GetSource(sourceType)
	if err != nil {
		return err
	}

	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer db.Close()

	engine := &etl.Engine{
		Source: src,
		Dest:   &etl.CSVWriter{Dir: cfg.OutputDir},
	}
	svc := service.NewExtractService(
		engine,
		storage.NewRunStore(db),
		&service.LogReporter{},
		datasets,
		cfg.Concurrency,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case schedule != "":
		if err := svc.StartSchedule(ctx, schedule); err != nil {
			return err
		}
		<-ctx.Done()
		drain(svc)

	case watch:
		if err := svc.StartWatch(ctx, cfg.DropDir); err != nil {
			return err
		}
		<-ctx.Done()
		drain(svc)

	default:
		summary := svc.RunBatch(ctx)
		slog.Info("done")
		if !summary.OK() {
			return fmt.Errorf("%d of %d datasets failed", len(summary.Failed()), len(summary.Results))
		}
	}
	return nil
}

// selectDatasets parses the -datasets flag, failing loudly on ids with
// no registered schema.
func selectDatasets(list string) ([]etl.Dataset, error) {
	if strings.TrimSpace(list) == "" {
		return etl.Datasets, nil
	}
	var ids []string
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return etl.SelectDatasets(ids)
}

// drain lets in-flight pipelines finish before exit, bounded so a hung
// download cannot block shutdown forever.
func drain(svc *service.ExtractService) {
	slog.Info("shutting down, waiting for running pipelines")
	svc.Stop()
	waitCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	svc.WaitRunning(waitCtx)
}
