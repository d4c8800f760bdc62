// Package annotation calls the Document AI service and converts its response
// into the extraction engine's document model.
package annotation

import (
	"context"
	"fmt"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/dvloznov/docai-extract/internal/extraction"
)

// Kind selects which configured processor annotates a document.
type Kind string

const (
	KindForm Kind = "form"
	KindBank Kind = "bank"
)

// Config identifies the Document AI processors to use.
type Config struct {
	ProjectID       string
	Location        string
	FormProcessorID string
	BankProcessorID string
}

// Processor wraps a Document AI client for the two configured processors.
type Processor struct {
	client *documentai.DocumentProcessorClient
	cfg    Config
}

// NewProcessor creates a processor client against the configured location's
// regional endpoint.
func NewProcessor(ctx context.Context, cfg Config) (*Processor, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("annotation: project ID is required")
	}
	if cfg.Location == "" {
		cfg.Location = "us"
	}

	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
	client, err := documentai.NewDocumentProcessorClient(ctx, option.WithEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("annotation: create client: %w", err)
	}

	return &Processor{client: client, cfg: cfg}, nil
}

// Process sends raw document bytes to the processor for the given kind and
// returns the converted annotated document.
func (p *Processor) Process(ctx context.Context, content []byte, mimeType string, kind Kind) (*extraction.AnnotatedDocument, error) {
	name, err := p.processorName(kind)
	if err != nil {
		return nil, err
	}
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	req := &documentaipb.ProcessRequest{
		Name: name,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  content,
				MimeType: mimeType,
			},
		},
	}

	resp, err := p.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("annotation: process document: %w", err)
	}

	return convertDocument(resp.GetDocument()), nil
}

// processorName builds the processor resource name for the given kind.
// A missing processor ID is a configuration error.
func (p *Processor) processorName(kind Kind) (string, error) {
	var id string
	switch kind {
	case KindForm:
		id = p.cfg.FormProcessorID
	case KindBank:
		id = p.cfg.BankProcessorID
	default:
		return "", fmt.Errorf("annotation: unknown processor kind: %q", kind)
	}
	if id == "" {
		return "", fmt.Errorf("annotation: processor ID not configured for kind %q", kind)
	}
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", p.cfg.ProjectID, p.cfg.Location, id), nil
}

// Close releases the underlying client connection.
func (p *Processor) Close() error {
	return p.client.Close()
}
