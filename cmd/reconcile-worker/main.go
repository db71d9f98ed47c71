package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/trove/backend/internal/config"
	"github.com/trove/backend/internal/services"
)

const reconcileBatchSize = 50

// The worker runs the repair reconciler on a schedule and purges processed
// reports past their retention window. It shares no process state with the API
// server; everything flows through Mongo.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[worker] failed to load config: %v", err)
	}

	ctx := context.Background()

	reportSvc, err := services.NewMongoReportService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("[worker] mongo report service init failed: %v", err)
	}
	defer reportSvc.Close(ctx)

	accountSvc, err := services.NewMongoAccountService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("[worker] mongo account service init failed: %v", err)
	}
	defer accountSvc.Close(ctx)

	listingSvc, err := services.NewMongoListingService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("[worker] mongo listing service init failed: %v", err)
	}
	defer listingSvc.Close(ctx)

	repairSvc, err := services.NewMongoRepairService(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("[worker] mongo repair service init failed: %v", err)
	}
	defer repairSvc.Close(ctx)

	log.Printf("[worker] MongoDB services connected (db=%s)", cfg.MongoDB)

	var cleaner services.ContentCleaner
	if cfg.StorageBucket != "" {
		storageSvc, err := services.NewStorageCleanupService(ctx, cfg.StorageBucket)
		if err != nil {
			log.Printf("[worker] storage cleanup disabled: %v", err)
		} else {
			cleaner = storageSvc
		}
	}

	reconciler := services.NewReconciler(repairSvc, reportSvc, accountSvc, listingSvc, cleaner)

	c := cron.New()

	_, err = c.AddFunc(cfg.ReconcileSchedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
		defer cancel()

		repaired, err := reconciler.Run(runCtx, reconcileBatchSize)
		if err != nil {
			log.Printf("[worker] reconcile pass failed: %v", err)
			return
		}
		if repaired > 0 {
			log.Printf("[worker] reconcile pass repaired %d", repaired)
		}
	})
	if err != nil {
		log.Fatalf("[worker] invalid reconcile schedule %q: %v", cfg.ReconcileSchedule, err)
	}

	_, err = c.AddFunc(cfg.PurgeSchedule, func() {
		runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()

		cutoff := time.Now().UTC().AddDate(0, 0, -cfg.ReportRetentionDays)
		purged, err := reportSvc.PurgeProcessedBefore(runCtx, cutoff)
		if err != nil {
			log.Printf("[worker] report purge failed: %v", err)
			return
		}
		log.Printf("[worker] purged %d processed reports older than %s", purged, cutoff.Format(time.RFC3339))
	})
	if err != nil {
		log.Fatalf("[worker] invalid purge schedule %q: %v", cfg.PurgeSchedule, err)
	}

	c.Start()
	log.Printf("[worker] schedules started: reconcile=%q purge=%q", cfg.ReconcileSchedule, cfg.PurgeSchedule)

	// Health endpoint for the platform's liveness checks.
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	log.Printf("[worker] reconcile-worker listening on %s", cfg.ServerAddress)
	log.Fatal(http.ListenAndServe(cfg.ServerAddress, nil))
}
