package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dvloznov/docai-extract/internal/annotation"
	"github.com/dvloznov/docai-extract/internal/api/handlers"
	"github.com/dvloznov/docai-extract/internal/api/middleware"
	"github.com/dvloznov/docai-extract/internal/audit"
	"github.com/dvloznov/docai-extract/internal/config"
	"github.com/dvloznov/docai-extract/internal/extraction"
	"github.com/dvloznov/docai-extract/internal/jobs/inmemory"
	"github.com/dvloznov/docai-extract/internal/logger"
	"github.com/dvloznov/docai-extract/internal/storage"
)

func main() {
	var configPath = flag.String("config", os.Getenv("CONFIG_PATH"), "Path to YAML config file (or set CONFIG_PATH env)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewWithLevel(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	// Document AI processor client
	processor, err := annotation.NewProcessor(ctx, annotation.Config{
		ProjectID:       cfg.ProjectID,
		Location:        cfg.Location,
		FormProcessorID: cfg.FormProcessorID,
		BankProcessorID: cfg.BankProcessorID,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Document AI processor")
	}
	defer processor.Close()

	// GCS content provider for storage_path requests
	content, err := storage.NewGCSProvider(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create storage provider")
	}
	defer content.Close()

	// Run recorder: BigQuery when a dataset is configured, no-op otherwise
	var recorder audit.Recorder = audit.NopRecorder{}
	if cfg.AuditDataset != "" {
		bqRecorder, err := audit.NewBigQueryRecorder(ctx, cfg.ProjectID, cfg.AuditDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create audit recorder")
		}
		defer bqRecorder.Close()
		recorder = bqRecorder
	}

	extractor := extraction.NewExtractor()
	extractHandler := handlers.NewExtractHandler(processor, content, extractor, recorder, log)

	// Job infrastructure for the async extraction path
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	go func() {
		log.Info().Msg("Starting extraction job worker")
		if err := jobQueue.Start(workerCtx, extractHandler.HandleJob); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/process/form", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			extractHandler.ProcessForm(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/process/bank", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			extractHandler.ProcessBank(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/extract", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			extractHandler.EnqueueExtract(jobQueue)(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", handlers.HealthCheck)

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(
					middleware.APIKey(cfg.APIKey)(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting extraction API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
