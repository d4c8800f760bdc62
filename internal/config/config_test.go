package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Location != "us" {
		t.Errorf("Location = %q, want us", cfg.Location)
	}
}

func TestLoad_FileAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "port: \"9090\"\ngcp_project_id: from-file\ndocument_ai_form_processor: form-abc\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GCP_PROJECT_ID", "from-env")
	t.Setenv("PORT", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want file value 9090", cfg.Port)
	}
	if cfg.ProjectID != "from-env" {
		t.Errorf("ProjectID = %q, want env override", cfg.ProjectID)
	}
	if cfg.FormProcessorID != "form-abc" {
		t.Errorf("FormProcessorID = %q", cfg.FormProcessorID)
	}
}

func TestLoad_MissingFileIsNotFatal(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want default", cfg.Port)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("port: [not, a, string"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "form processor only",
			cfg:  Config{ProjectID: "p", FormProcessorID: "f"},
		},
		{
			name: "bank processor only",
			cfg:  Config{ProjectID: "p", BankProcessorID: "b"},
		},
		{
			name:    "missing project",
			cfg:     Config{FormProcessorID: "f"},
			wantErr: true,
		},
		{
			name:    "no processors",
			cfg:     Config{ProjectID: "p"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
