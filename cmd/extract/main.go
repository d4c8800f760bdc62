package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dvloznov/docai-extract/internal/annotation"
	"github.com/dvloznov/docai-extract/internal/config"
	"github.com/dvloznov/docai-extract/internal/extraction"
	"github.com/dvloznov/docai-extract/internal/logger"
	"github.com/dvloznov/docai-extract/internal/storage"
)

func main() {
	var (
		kind       = flag.String("kind", "", "Document kind: form or bank")
		uri        = flag.String("uri", "", "GCS URI of the document (gs://bucket/path)")
		file       = flag.String("file", "", "Path to a local document file")
		mimeType   = flag.String("mime", "application/pdf", "MIME type of the document")
		configPath = flag.String("config", os.Getenv("CONFIG_PATH"), "Path to YAML config file")
	)
	flag.Parse()

	log := logger.New()

	if *kind != string(annotation.KindForm) && *kind != string(annotation.KindBank) {
		log.Fatal().Msg("Error: -kind must be \"form\" or \"bank\"")
	}
	if (*uri == "") == (*file == "") {
		log.Fatal().Msg("Error: exactly one of -uri or -file is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	var content []byte
	switch {
	case *file != "":
		content, err = os.ReadFile(*file)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read local file")
		}
	default:
		provider, err := storage.NewGCSProvider(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage provider")
		}
		defer provider.Close()

		log.Info().Str("uri", *uri).Msg("Fetching document from GCS")
		content, err = provider.Fetch(ctx, *uri)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to fetch document")
		}
	}

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

	doc, err := processor.Process(ctx, content, *mimeType, annotation.Kind(*kind))
	if err != nil {
		log.Fatal().Err(err).Msg("Annotation failed")
	}

	extractor := extraction.NewExtractor()

	var record interface{}
	if *kind == string(annotation.KindForm) {
		record = extractor.ExtractForm(doc)
	} else {
		record = extractor.ExtractStatement(doc)
	}

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal record")
	}
	fmt.Println(string(out))
}
