package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Invoice.Prefix != "KST-INV" || cfg.Invoice.Counter != "invoice" {
		t.Errorf("invoice defaults = %+v", cfg.Invoice)
	}
	if cfg.Sequence.Backend != SequenceBackendDB {
		t.Errorf("sequence backend = %q", cfg.Sequence.Backend)
	}
	if cfg.Rabbit.URL != "" {
		t.Errorf("broker should be disabled by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("INVOICE_PREFIX", "ABC-INV")
	t.Setenv("SEQUENCE_BACKEND", "redis")
	t.Setenv("PUBLIC_BASE_URL", "https://tailor.example/")
	t.Setenv("MIGRATIONS", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Database.Driver != DriverSQLite {
		t.Errorf("unexpected server/db config: %+v %+v", cfg.Server, cfg.Database)
	}
	if cfg.Invoice.Prefix != "ABC-INV" || cfg.Sequence.Backend != SequenceBackendRedis {
		t.Errorf("unexpected invoice config: %+v %+v", cfg.Invoice, cfg.Sequence)
	}
	if cfg.App.PublicBaseURL != "https://tailor.example" {
		t.Errorf("trailing slash should be trimmed, got %q", cfg.App.PublicBaseURL)
	}
	if !cfg.App.Migrations {
		t.Errorf("MIGRATIONS=true not honoured")
	}
}

func TestLoadSequenceStart(t *testing.T) {
	t.Setenv("INVOICE_SEQUENCE_START", "120")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Invoice.SequenceStart != 120 {
		t.Errorf("sequence start = %d, want 120", cfg.Invoice.SequenceStart)
	}

	t.Setenv("INVOICE_SEQUENCE_START", "-1")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative sequence start")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestDatabaseURLs(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "shop", SSLMode: "disable"}
	if got, want := d.DSN(), "host=db port=5432 user=u password=p@ss dbname=shop sslmode=disable"; got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
	if got, want := d.URL(), "postgres://u:p%40ss@db:5432/shop?sslmode=disable"; got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}
