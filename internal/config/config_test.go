package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	if cfg.DPI != 300 || cfg.Margin != 4 || cfg.OffsetX != 35 || cfg.LabelLength != 8 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if cfg.CaptionLabel != "Author: " || cfg.Placeholder != "text" {
		t.Errorf("Unexpected caption defaults: %q %q", cfg.CaptionLabel, cfg.Placeholder)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uloha.yaml")
	data := []byte("dpi: 150\nmargin: 6\ncollision: page-suffix\ntrace_qr: true\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DPI != 150 || cfg.Margin != 6 || cfg.Collision != CollisionPageSuffix || !cfg.TraceQR {
		t.Errorf("File values not applied: %+v", cfg)
	}
	if cfg.OffsetX != 35 || cfg.Format != FormatDocx {
		t.Errorf("Missing keys should keep defaults: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("dpi: [1, 2"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero dpi", func(c *Config) { c.DPI = 0 }},
		{"negative margin", func(c *Config) { c.Margin = -1 }},
		{"zero width", func(c *Config) { c.ImageWidthInches = 0 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"bad format", func(c *Config) { c.Format = "odt" }},
		{"bad mode", func(c *Config) { c.Mode = "merge" }},
		{"append pdf", func(c *Config) { c.Format = FormatPDF; c.Mode = ModeAppend }},
		{"bad collision", func(c *Config) { c.Collision = "rename" }},
		{"bad policy", func(c *Config) { c.OnError = "retry" }},
		{"bad backend", func(c *Config) { c.Backend = "ocr" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestDerivePaths(t *testing.T) {
	p := DerivePaths(filepath.Join("lessons", "set 1.pdf"), FormatDocx, "jana")

	if p.OutputDir != filepath.Join("lessons", "set 1", ImagesDirName) {
		t.Errorf("Unexpected output dir: %s", p.OutputDir)
	}
	if p.OutputDocPath != filepath.Join("lessons", "set 1.docx") {
		t.Errorf("Unexpected document path: %s", p.OutputDocPath)
	}
	if p.AuthorName != "jana" || p.InputPath != filepath.Join("lessons", "set 1.pdf") {
		t.Errorf("Unexpected paths: %+v", p)
	}

	upper := DerivePaths("SCAN.PDF", FormatPDF, "")
	if upper.OutputDocPath != "SCAN_ulohy.pdf" {
		t.Errorf("Expected SCAN_ulohy.pdf, got %s", upper.OutputDocPath)
	}
	if upper.OutputDir != filepath.Join("SCAN", ImagesDirName) {
		t.Errorf("Unexpected output dir: %s", upper.OutputDir)
	}

	other := DerivePaths("notes.pdf.bak", FormatDocx, "")
	if other.OutputDocPath != "notes.pdf.bak.docx" {
		t.Errorf("Only a trailing .pdf should be stripped, got %s", other.OutputDocPath)
	}
}
