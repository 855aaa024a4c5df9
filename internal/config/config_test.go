package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"invoicebooks/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr got=%q want=%q", cfg.Addr, ":8080")
	}
	if cfg.DBPath != "./data/invoicebooks.db" {
		t.Errorf("DBPath got=%q", cfg.DBPath)
	}
	if cfg.UploadsDir != "./data/uploads" {
		t.Errorf("UploadsDir got=%q", cfg.UploadsDir)
	}
	if cfg.Mail.Port != 587 {
		t.Errorf("Mail.Port got=%d want=587", cfg.Mail.Port)
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `addr: ":9000"
db_path: /tmp/test.db
mail:
  host: smtp.example.com
  port: 2525
  username: billing@example.com
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ADDR", ":7000")
	t.Setenv("SMTP_PASSWORD", "hunter2")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// Environment wins over the file.
	if cfg.Addr != ":7000" {
		t.Errorf("Addr got=%q want=%q", cfg.Addr, ":7000")
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("DBPath got=%q want=%q", cfg.DBPath, "/tmp/test.db")
	}
	if cfg.Mail.Host != "smtp.example.com" {
		t.Errorf("Mail.Host got=%q", cfg.Mail.Host)
	}
	if cfg.Mail.Port != 2525 {
		t.Errorf("Mail.Port got=%d want=2525", cfg.Mail.Port)
	}
	if cfg.Mail.Password != "hunter2" {
		t.Errorf("Mail.Password got=%q", cfg.Mail.Password)
	}
	// From defaults to the username when unset.
	if cfg.Mail.From != "billing@example.com" {
		t.Errorf("Mail.From got=%q want username fallback", cfg.Mail.From)
	}
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: [unclosed"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.Load(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}
