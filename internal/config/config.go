// Package config loads service configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds everything the service needs to run.
type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	ProjectID       string `yaml:"gcp_project_id"`
	Location        string `yaml:"document_ai_location"`
	FormProcessorID string `yaml:"document_ai_form_processor"`
	BankProcessorID string `yaml:"document_ai_bank_statement_processor"`

	Bucket string `yaml:"storage_bucket_name"`

	// If set, requests must carry the X-API-Key header with this value.
	APIKey string `yaml:"api_key"`

	// If set, extraction runs are recorded in this BigQuery dataset.
	AuditDataset string `yaml:"audit_dataset"`
}

// Load builds the configuration from defaults, an optional YAML file at
// path, and environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:     "8080",
		LogLevel: "info",
		Location: "us",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	overrideEnv(&cfg.Port, "PORT")
	overrideEnv(&cfg.LogLevel, "LOG_LEVEL")
	overrideEnv(&cfg.ProjectID, "GCP_PROJECT_ID")
	overrideEnv(&cfg.Location, "DOCUMENT_AI_LOCATION")
	overrideEnv(&cfg.FormProcessorID, "DOCUMENT_AI_FORM_PROCESSOR")
	overrideEnv(&cfg.BankProcessorID, "DOCUMENT_AI_BANK_STATEMENT_PROCESSOR")
	overrideEnv(&cfg.Bucket, "STORAGE_BUCKET_NAME")
	overrideEnv(&cfg.APIKey, "API_KEY")
	overrideEnv(&cfg.AuditDataset, "AUDIT_DATASET")

	return cfg, nil
}

// Validate reports missing settings the service cannot start without.
func (c *Config) Validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("config: GCP_PROJECT_ID is required")
	}
	if c.FormProcessorID == "" && c.BankProcessorID == "" {
		return fmt.Errorf("config: at least one Document AI processor must be configured")
	}
	return nil
}

func overrideEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
